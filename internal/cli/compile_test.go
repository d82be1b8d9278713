package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/routegen/internal/ir"
)

func TestCompileValidSpecs(t *testing.T) {
	out, err := execute(t, NewCompileCommand(&RootOptions{Format: "text"}), specsDir)
	require.NoError(t, err)

	var result CompilationResult
	require.NoError(t, json.Unmarshal([]byte(out), &result), "text mode without -o prints the IR")
	assert.Equal(t, ir.IRVersion, result.IRVersion)
	require.NotNil(t, result.API)
	assert.Len(t, result.API.Namespaces, 2)

	want, err := ir.APIHash(result.API)
	require.NoError(t, err)
	assert.Equal(t, want, result.APIHash, "hash survives the JSON round trip")
}

func TestCompileValidSpecsJSON(t *testing.T) {
	out, err := execute(t, NewCompileCommand(&RootOptions{Format: "json"}), specsDir)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
}

func TestCompileOutputToFile(t *testing.T) {
	outputFile := filepath.Join(t.TempDir(), "compiled.json")

	out, err := execute(t, NewCompileCommand(&RootOptions{Format: "text"}), specsDir, "--output", outputFile)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Compiled 2 namespace(s), 4 route(s), 9 type(s)")
	assert.Contains(t, out, "1 deprecated route(s)")
	assert.Contains(t, out, "Wrote IR")

	data, err := os.ReadFile(outputFile)
	require.NoError(t, err)

	var result CompilationResult
	require.NoError(t, json.Unmarshal(data, &result))
	require.NotNil(t, result.API)
	assert.Equal(t, "files", result.API.Namespaces[0].Name)
}

func TestCompileSameHashAcrossFormats(t *testing.T) {
	// The JSON IR written by compile loads back to the same API.
	outputFile := filepath.Join(t.TempDir(), "compiled.json")
	_, err := execute(t, NewCompileCommand(&RootOptions{Format: "text"}), specsDir, "-o", outputFile)
	require.NoError(t, err)

	data, err := os.ReadFile(outputFile)
	require.NoError(t, err)
	var result CompilationResult
	require.NoError(t, json.Unmarshal(data, &result))

	irFile := filepath.Join(t.TempDir(), "api.json")
	apiOnly, err := json.Marshal(result.API)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(irFile, apiOnly, 0644))

	loaded, err := LoadAPI(irFile)
	require.NoError(t, err)
	got, err := ir.APIHash(loaded.API)
	require.NoError(t, err)
	assert.Equal(t, result.APIHash, got)
}

func TestCompileNonExistentDirectory(t *testing.T) {
	out, err := execute(t, NewCompileCommand(&RootOptions{Format: "text"}), "/nonexistent/directory/path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "E005") // ErrCodeNotFound
	assert.Contains(t, out, "not found")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCompileEmptyDirectory(t *testing.T) {
	out, err := execute(t, NewCompileCommand(&RootOptions{Format: "text"}), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "E003")
	assert.Contains(t, out, "no CUE files found")
}

func TestCompileInvalidSpec(t *testing.T) {
	out, err := execute(t, NewCompileCommand(&RootOptions{Format: "text"}), invalidDir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, "E105")
}

func TestCompileInvalidSpecJSON(t *testing.T) {
	out, err := execute(t, NewCompileCommand(&RootOptions{Format: "json"}), invalidDir)
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Contains(t, resp.Error.Message, "not declared")
}

func TestCompileYAMLInput(t *testing.T) {
	out, err := execute(t, NewCompileCommand(&RootOptions{Format: "text"}), yamlIRFile)
	require.NoError(t, err)
	assert.Contains(t, out, `"get_account"`)
}
