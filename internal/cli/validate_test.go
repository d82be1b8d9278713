package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/routegen/internal/compiler"
)

func TestValidateValidSpecs(t *testing.T) {
	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), specsDir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ API valid")
}

func TestValidateValidSpecsJSON(t *testing.T) {
	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "json"}), specsDir)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestValidateNonExistentDirectory(t *testing.T) {
	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), "/nonexistent/directory/path")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "E005")
}

func TestValidateReportsEveryError(t *testing.T) {
	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), invalidDir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "3 error(s)")

	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, compiler.ErrUnresolvedType)
	assert.Contains(t, out, compiler.ErrDuplicateRoute)
	assert.Contains(t, out, compiler.ErrInvalidStyle)
}

func TestValidateReportsEveryErrorJSON(t *testing.T) {
	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "json"}), invalidDir)
	require.Error(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  *CLIError        `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	require.Len(t, resp.Data.Errors, 3)
	assert.Equal(t, compiler.ErrUnresolvedType, resp.Error.Code)
}

func TestValidateWarnsAboutDeprecationCycles(t *testing.T) {
	dir := t.TempDir()
	spec := `package api

namespace: files: {
	types: Arg: {}
	routes: [{
		name: "copy"
		arg:  "Arg"
		deprecated: by: {namespace: "files", name: "copy", version: 2}
	}, {
		name:    "copy"
		version: 2
		arg:     "Arg"
		deprecated: by: {namespace: "files", name: "copy"}
	}]
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "api.cue"), []byte(spec), 0644))

	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), dir)
	require.NoError(t, err, "deprecation warnings do not fail validation")
	assert.Contains(t, out, "✓ API valid")
	assert.Contains(t, out, "warning:")
	assert.Contains(t, out, "files/copy")
}

func TestValidateAPI(t *testing.T) {
	res, err := LoadAPI(yamlIRFile)
	require.NoError(t, err)

	errs, warnings := ValidateAPI(res.API)
	assert.Empty(t, errs)
	assert.Empty(t, warnings)
}
