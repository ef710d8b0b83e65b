// Package compiler wires the pipeline stages into a single compilation
// run: read, lex, parse, check, generate, write. Stages communicate
// through the diagnostic list; the driver turns a non-empty list into an
// error only at the very end of the front half.
package compiler

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/lumen-lang/lumen/internal/compiler/check"
	"github.com/lumen-lang/lumen/internal/compiler/codegen"
	"github.com/lumen-lang/lumen/internal/compiler/diag"
	"github.com/lumen-lang/lumen/internal/compiler/lexer"
	"github.com/lumen-lang/lumen/internal/compiler/parser"
	"github.com/lumen-lang/lumen/internal/compiler/types"
)

// Options configures one compilation run.
type Options struct {
	// OutPath overrides where the generated C++ is written. Empty means
	// next to the input with a .cpp extension.
	OutPath string
	// Shaders compiles pipeline shader stages for embedding. Nil skips
	// compilation and the pipeline descriptors carry only source paths.
	Shaders ShaderCompiler
}

// DiagnosticError carries rendered diagnostics, one per line, already
// prefixed with the source path. The CLI prints it verbatim.
type DiagnosticError struct {
	Rendered string
}

func (e *DiagnosticError) Error() string { return e.Rendered }

// CompileAndWrite compiles one .lm source file and writes the generated
// C++ translation unit, returning the output path.
func CompileAndWrite(srcPath string, opts Options) (string, error) {
	if filepath.Ext(srcPath) != ".lm" {
		return "", fmt.Errorf("source must have .lm extension, got %q", filepath.Base(srcPath))
	}

	src, err := os.ReadFile(srcPath)
	if err != nil {
		return "", errors.Wrap(err, "reading source")
	}

	out, err := compile(srcPath, string(src), opts.Shaders)
	if err != nil {
		return "", err
	}

	outPath := opts.OutPath
	if outPath == "" {
		outPath = strings.TrimSuffix(srcPath, ".lm") + ".cpp"
	}
	if err := os.WriteFile(outPath, []byte(out), 0o644); err != nil {
		return "", errors.Wrap(err, "writing output")
	}
	return outPath, nil
}

func compile(srcPath, src string, shaders ShaderCompiler) (string, error) {
	toks, err := lexer.Lex(src)
	if err != nil {
		return "", &DiagnosticError{Rendered: fmt.Sprintf("%s:%s\n", srcPath, err)}
	}

	var diags diag.List
	file := parser.Parse(toks, &diags)
	if diags.HasErrors() {
		return "", &DiagnosticError{Rendered: diags.Render(srcPath)}
	}

	ctx := check.Check(file, &diags)
	if diags.HasErrors() {
		return "", &DiagnosticError{Rendered: diags.Render(srcPath)}
	}

	blobs, err := compileShaders(srcPath, ctx, shaders)
	if err != nil {
		return "", err
	}

	return codegen.Generate(file, ctx, blobs)
}

// compileShaders runs the external shader compiler over every pipeline
// stage, resolving paths relative to the source file. A failed invocation
// is a fatal diagnostic, not a retry.
func compileShaders(srcPath string, ctx *types.Context, shaders ShaderCompiler) (map[string][]byte, error) {
	if shaders == nil || len(ctx.Pipelines) == 0 {
		return nil, nil
	}
	blobs := make(map[string][]byte)
	dir := filepath.Dir(srcPath)
	for _, p := range ctx.Pipelines {
		for _, s := range p.Shaders {
			if _, done := blobs[s.Path]; done {
				continue
			}
			blob, err := shaders.Compile(filepath.Join(dir, s.Path))
			if err != nil {
				rendered := fmt.Sprintf("%s:%s: shader compilation failed for %q: %v\n",
					srcPath, s.Pos, s.Path, err)
				return nil, &DiagnosticError{Rendered: rendered}
			}
			blobs[s.Path] = blob
		}
	}
	return blobs, nil
}

// Run compiles srcPath, builds the generated C++ with the system
// toolchain, and executes the result with inherited stdio. The
// intermediate .cpp is removed unless keepCpp is set.
func Run(srcPath string, opts Options, keepCpp bool) error {
	cppPath, err := CompileAndWrite(srcPath, opts)
	if err != nil {
		return err
	}
	if !keepCpp {
		defer os.Remove(cppPath)
	}

	binPath := strings.TrimSuffix(cppPath, ".cpp")
	build := exec.Command("c++", "-std=c++17", "-o", binPath, cppPath)
	if out, err := build.CombinedOutput(); err != nil {
		return errors.Wrapf(err, "c++ build failed:\n%s", out)
	}
	defer os.Remove(binPath)

	run := exec.Command(binPath)
	run.Stdin = os.Stdin
	run.Stdout = os.Stdout
	run.Stderr = os.Stderr
	return errors.Wrap(run.Run(), "running program")
}
