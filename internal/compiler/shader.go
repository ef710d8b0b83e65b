package compiler

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ShaderCompiler turns a shader source file into a SPIR-V blob for
// embedding. The contract with the external tool is minimal: exit zero
// and produce output bytes, or fail.
type ShaderCompiler interface {
	Compile(path string) ([]byte, error)
}

// Glslc invokes the glslc binary (or a replacement named by Bin) as a
// synchronous subprocess. Precompiled .spv inputs are read directly.
type Glslc struct {
	Bin string
}

// NewGlslc returns a compiler using the given binary name, defaulting to
// glslc on PATH.
func NewGlslc(bin string) *Glslc {
	if bin == "" {
		bin = "glslc"
	}
	return &Glslc{Bin: bin}
}

func (c *Glslc) Compile(path string) ([]byte, error) {
	if strings.HasSuffix(path, ".spv") {
		blob, err := os.ReadFile(path)
		return blob, errors.Wrap(err, "reading precompiled shader")
	}

	tmpDir, err := os.MkdirTemp("", "lumenc-shader-")
	if err != nil {
		return nil, errors.Wrap(err, "creating shader scratch dir")
	}
	defer os.RemoveAll(tmpDir)

	outPath := filepath.Join(tmpDir, filepath.Base(path)+".spv")
	cmd := exec.Command(c.Bin, path, "-o", outPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, errors.Wrapf(err, "%s:\n%s", c.Bin, out)
	}

	blob, err := os.ReadFile(outPath)
	return blob, errors.Wrap(err, "reading compiled shader")
}
