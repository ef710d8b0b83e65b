package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubShaders records requested paths and hands back a fixed blob.
type stubShaders struct {
	requested []string
	fail      bool
}

func (s *stubShaders) Compile(path string) ([]byte, error) {
	s.requested = append(s.requested, path)
	if s.fail {
		return nil, fmt.Errorf("exit status 1")
	}
	return []byte{0x03, 0x02, 0x23, 0x07}, nil
}

func writeSource(t *testing.T, name, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestCompileAndWrite(t *testing.T) {
	path := writeSource(t, "game.lm", `
		component Position { x: f32, y: f32 }

		@system(physics) fn step(q: query<Position>) {
			for e in q {
				e.Position.x += 1.0;
			}
		}

		fn main() {
			print("starting");
		}
	`)

	outPath, err := CompileAndWrite(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "game.cpp"), outPath)

	out, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(out), "void lumen_main()")
	assert.Contains(t, string(out), "void lumen_run_systems()")
	assert.Contains(t, string(out), "q.positions[e_index].x += 1.0f;")
}

func TestCompileAndWriteOutOverride(t *testing.T) {
	path := writeSource(t, "game.lm", `fn main() {}`)
	outPath := filepath.Join(t.TempDir(), "custom.cpp")

	got, err := CompileAndWrite(path, Options{OutPath: outPath})
	require.NoError(t, err)
	assert.Equal(t, outPath, got)
	_, err = os.Stat(outPath)
	assert.NoError(t, err)
}

func TestCompileRejectsExtension(t *testing.T) {
	path := writeSource(t, "game.txt", `fn main() {}`)
	_, err := CompileAndWrite(path, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".lm extension")
}

func TestCompileLexErrorNamesPosition(t *testing.T) {
	path := writeSource(t, "bad.lm", "fn main() { let x = 1 $ 2; }")
	_, err := CompileAndWrite(path, Options{})
	require.Error(t, err)
	var de *DiagnosticError
	require.ErrorAs(t, err, &de)
	assert.Contains(t, de.Rendered, path+":1:")
}

func TestCompileReportsTypeErrors(t *testing.T) {
	path := writeSource(t, "bad.lm", `
		fn main() {
			let x: i32 = "nope";
		}
	`)
	_, err := CompileAndWrite(path, Options{})
	require.Error(t, err)
	var de *DiagnosticError
	require.ErrorAs(t, err, &de)
	assert.Contains(t, de.Rendered, path+":")
	assert.Contains(t, de.Rendered, "i32")
	assert.Contains(t, de.Rendered, "string")
}

func TestCompileEmbedsShaders(t *testing.T) {
	path := writeSource(t, "game.lm", `
		pipeline Sprite {
			shader vertex "sprite.vert"
			shader fragment "sprite.frag"
		}
	`)
	stub := &stubShaders{}
	outPath, err := CompileAndWrite(path, Options{Shaders: stub})
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(filepath.Dir(path), "sprite.vert"),
		filepath.Join(filepath.Dir(path), "sprite.frag"),
	}, stub.requested)

	out, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(out), "0x03, 0x02, 0x23, 0x07,")
	assert.Contains(t, string(out), "create_pipeline_sprite")
}

func TestCompileShaderFailureIsFatal(t *testing.T) {
	path := writeSource(t, "game.lm", `
		pipeline Sprite {
			shader vertex "sprite.vert"
		}
	`)
	_, err := CompileAndWrite(path, Options{Shaders: &stubShaders{fail: true}})
	require.Error(t, err)
	var de *DiagnosticError
	require.ErrorAs(t, err, &de)
	assert.Contains(t, de.Rendered, "shader compilation failed")
	assert.Contains(t, de.Rendered, "sprite.vert")
}
