package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/routegen/internal/ir"
)

func TestLoadAPICUEDirectory(t *testing.T) {
	res, err := LoadAPI(specsDir)
	require.NoError(t, err)
	assert.Equal(t, SourceCUE, res.Source)
	assert.Equal(t, 1, res.FileCount)

	api := res.API
	require.Len(t, api.Namespaces, 2)
	files := api.Namespaces[0]
	assert.Equal(t, "files", files.Name)
	require.Len(t, files.Routes, 4)
	assert.Equal(t, "get_metadata", files.Routes[0].Name)
	assert.Equal(t, 2, files.Routes[1].Version)
	assert.True(t, files.Routes[2].IsDeprecated())
	assert.Equal(t, ir.StyleUpload, files.Routes[3].Style())
	assert.Equal(t, "content", files.Routes[3].Host())

	async := api.Namespaces[1]
	assert.Equal(t, "async", async.Name)
	assert.False(t, async.HasRoutes())
}

func TestLoadAPICUEFile(t *testing.T) {
	res, err := LoadAPI(filepath.Join(specsDir, "api.cue"))
	require.NoError(t, err)
	assert.Equal(t, SourceCUE, res.Source)
	require.Len(t, res.API.Namespaces, 2)
}

func TestLoadAPIYAML(t *testing.T) {
	res, err := LoadAPI(yamlIRFile)
	require.NoError(t, err)
	assert.Equal(t, SourceYAML, res.Source)

	require.Len(t, res.API.Namespaces, 1)
	users := res.API.Namespaces[0]
	assert.Equal(t, "users", users.Name)
	require.Len(t, users.Types, 3)
	assert.Equal(t, ir.DefStruct, users.Types[0].Kind, "kind defaults to struct")
	assert.Equal(t, ir.DefUnion, users.Types[2].Kind)

	require.Len(t, users.Routes, 2)
	assert.Equal(t, ir.Named("GetAccountArg"), users.Routes[0].Arg)
	assert.Equal(t, "user", users.Routes[0].Auth())
	assert.True(t, users.Routes[1].Arg.IsVoid())
	assert.True(t, users.Routes[1].Error.IsVoid())
}

func TestLoadAPIJSON(t *testing.T) {
	res, err := LoadAPI(jsonIRFile)
	require.NoError(t, err)
	assert.Equal(t, SourceJSON, res.Source)

	require.Len(t, res.API.Namespaces, 1)
	r := res.API.Namespaces[0].Routes[0]
	assert.Equal(t, "user", r.Name)
	assert.Equal(t, ir.Named("EchoResult"), r.Result)
	assert.True(t, r.Error.IsVoid())
}

func TestLoadAPIErrors(t *testing.T) {
	emptyDir := t.TempDir()
	txt := filepath.Join(t.TempDir(), "api.txt")
	require.NoError(t, os.WriteFile(txt, []byte("namespaces: []"), 0644))

	badCUE := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(badCUE, "api.cue"), []byte("package api\n\nnamespace: files: routes: [{arg: \"X\"}]\n"), 0644))

	tests := []struct {
		name string
		path string
		code string
	}{
		{"missing", filepath.Join("testdata", "nope"), ErrCodeNotFound},
		{"empty dir", emptyDir, ErrCodeNoFiles},
		{"unsupported", txt, ErrCodeUnsupported},
		{"unknown field", unknownYAML, ErrCodeDecodeFailed},
		{"route without name", badCUE, ErrCodeCompileFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadAPI(tt.path)
			require.Error(t, err)

			var loadErr *LoadError
			require.True(t, errors.As(err, &loadErr), "got %T: %v", err, err)
			assert.Equal(t, tt.code, loadErr.Code)
		})
	}
}

func TestLoadErrorMessage(t *testing.T) {
	err := &LoadError{Code: ErrCodeNotFound, Message: "path not found: x"}
	assert.Equal(t, "E005: path not found: x", err.Error())
}
