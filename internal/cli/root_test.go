package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	specsDir    = filepath.Join("testdata", "specs")
	invalidDir  = filepath.Join("testdata", "invalid")
	yamlIRFile  = filepath.Join("testdata", "api.yaml")
	jsonIRFile  = filepath.Join("testdata", "api.json")
	unknownYAML = filepath.Join("testdata", "unknown_field.yaml")
)

// execute runs cmd with args and returns what it wrote to stdout.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "routegen", cmd.Use)
	assert.Contains(t, cmd.Long, "client.go")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"compile", "validate", "generate", "history"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "", configFlag.DefValue)
}

func TestCompileCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	compileCmd, _, err := cmd.Find([]string{"compile"})
	require.NoError(t, err)

	outputFlag := compileCmd.Flags().Lookup("output")
	require.NotNil(t, outputFlag)
	assert.Equal(t, "o", outputFlag.Shorthand)
}

func TestGenerateCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	genCmd, _, err := cmd.Find([]string{"generate"})
	require.NoError(t, err)

	for _, name := range []string{"out", "check", "sdk-package", "strict-unions", "header", "ledger"} {
		assert.NotNil(t, genCmd.Flags().Lookup(name), "flag %s", name)
	}
	assert.Equal(t, "stringArray", genCmd.Flags().Lookup("header").Value.Type())
}

func TestHistoryCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	historyCmd, _, err := cmd.Find([]string{"history"})
	require.NoError(t, err)

	assert.Equal(t, "20", historyCmd.Flags().Lookup("limit").DefValue)
	assert.Equal(t, "", historyCmd.Flags().Lookup("ledger").DefValue)
}

func TestInvalidFormat(t *testing.T) {
	err := Execute([]string{"--format", "xml", "validate", specsDir}, &bytes.Buffer{}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid format")
}

func TestExecuteExitCodes(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"valid", []string{"validate", specsDir}, ExitSuccess},
		{"invalid api", []string{"validate", invalidDir}, ExitFailure},
		{"missing path", []string{"validate", "testdata/does-not-exist"}, ExitCommandError},
		{"unknown command", []string{"frobnicate"}, ExitCommandError},
		{"missing argument", []string{"compile"}, ExitCommandError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stderr := &bytes.Buffer{}
			err := Execute(tt.args, &bytes.Buffer{}, stderr)
			assert.Equal(t, tt.want, GetExitCode(err))
		})
	}
}
