package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/routegen/internal/gen"
)

func generateFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	cmd := NewGenerateCommand(&RootOptions{Format: "text"})
	require.NoError(t, cmd.Flags().Parse(args))
	return cmd.Flags()
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "routegen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadConfigFromFile(t *testing.T) {
	path := writeConfig(t, `
out: gen/dropbox
sdk_package: example.com/sdk/v2/dropbox
header:
  - "Code generated by routegen. DO NOT EDIT."
  - "Source: api.cue"
strict_unions: true
ledger: routegen.db
`)

	cfg, err := LoadConfig(path, generateFlags(t))
	require.NoError(t, err)
	assert.Equal(t, "gen/dropbox", cfg.Out)
	assert.Equal(t, "example.com/sdk/v2/dropbox", cfg.SDKPackage)
	assert.Equal(t, []string{"Code generated by routegen. DO NOT EDIT.", "Source: api.cue"}, cfg.Header)
	assert.True(t, cfg.StrictUnions)
	assert.Equal(t, "routegen.db", cfg.Ledger)
}

func TestLoadConfigFlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, "out: from-file\nsdk_package: example.com/file/dropbox\n")

	cfg, err := LoadConfig(path, generateFlags(t, "--out", "from-flag", "--strict-unions"))
	require.NoError(t, err)
	assert.Equal(t, "from-flag", cfg.Out)
	assert.Equal(t, "example.com/file/dropbox", cfg.SDKPackage, "unset flags keep file values")
	assert.True(t, cfg.StrictUnions)
}

func TestLoadConfigHeaderFlagKeepsCommas(t *testing.T) {
	cfg, err := LoadConfig("", generateFlags(t, "--header", "Generated, do not edit", "--header", "second"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Generated, do not edit", "second"}, cfg.Header)
}

func TestLoadConfigEnvironment(t *testing.T) {
	t.Setenv("ROUTEGEN_SDK_PACKAGE", "example.com/env/dropbox")

	cfg, err := LoadConfig("", generateFlags(t))
	require.NoError(t, err)
	assert.Equal(t, "example.com/env/dropbox", cfg.SDKPackage)
}

func TestLoadConfigNoFile(t *testing.T) {
	cfg, err := LoadConfig("", generateFlags(t))
	require.NoError(t, err)
	assert.Empty(t, cfg.Out)
	assert.Empty(t, cfg.Header)
	assert.False(t, cfg.StrictUnions)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config")
}

func TestConfigGenOptions(t *testing.T) {
	opts := (&Config{}).GenOptions()
	assert.Equal(t, gen.DefaultSDKPackage, opts.SDKPackage)
	assert.Equal(t, []string{gen.DefaultHeader}, opts.Header)

	opts = (&Config{SDKPackage: "example.com/sdk/", StrictUnions: true}).GenOptions()
	assert.Equal(t, "example.com/sdk", opts.SDKPackage)
	assert.True(t, opts.StrictUnions)
}
