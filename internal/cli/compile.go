package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/routegen/internal/compiler"
	"github.com/roach88/routegen/internal/ir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompilationResult is the compiled IR together with its identity.
type CompilationResult struct {
	IRVersion string  `json:"ir_version"`
	APIHash   string  `json:"api_hash"`
	API       *ir.API `json:"api"`
}

// CompilationStats holds summary statistics.
type CompilationStats struct {
	NamespaceCount int
	RouteCount     int
	TypeCount      int
	Deprecated     int
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <specs>",
		Short: "Compile an API description to IR JSON",
		Long: `Compile a CUE API description (or a JSON/YAML IR file) to IR JSON.

The input is loaded and validated. The IR, its version and its content
hash are printed, or written to --output.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, specs string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	loaded, err := LoadAPI(specs)
	if err != nil {
		code, message := loadErrorCode(err)
		return outputCompileError(formatter, code, message, nil)
	}
	formatter.VerboseLog("Loaded %d %s file(s) from %s", loaded.FileCount, loaded.Source, specs)

	if errs := compiler.Validate(loaded.API); len(errs) > 0 {
		return outputValidationErrors(formatter, errs, nil)
	}

	hash, err := ir.APIHash(loaded.API)
	if err != nil {
		return outputCompileError(formatter, ErrCodeGeneric, fmt.Sprintf("hashing API: %v", err), nil)
	}

	result := &CompilationResult{
		IRVersion: ir.IRVersion,
		APIHash:   hash,
		API:       loaded.API,
	}

	if opts.Output != "" {
		if err := writeIRToFile(result, opts.Output); err != nil {
			return outputCompileError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
		}
	}

	return outputCompileSuccess(formatter, result, calculateStats(loaded.API), opts.Output)
}

// calculateStats computes summary statistics for an API.
func calculateStats(api *ir.API) CompilationStats {
	stats := CompilationStats{NamespaceCount: len(api.Namespaces)}
	for _, ns := range api.Namespaces {
		stats.RouteCount += len(ns.Routes)
		stats.TypeCount += len(ns.Types)
		for _, r := range ns.Routes {
			if r.IsDeprecated() {
				stats.Deprecated++
			}
		}
	}
	return stats
}

// outputCompileSuccess outputs successful compilation results. Without
// --output, text mode prints the IR itself so it can be piped.
func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult, stats CompilationStats, outputFile string) error {
	if formatter.IsJSON() {
		return formatter.Success(result)
	}

	if outputFile == "" {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(formatter.Writer, string(data))
		return err
	}

	fmt.Fprintf(formatter.Writer, "✓ Compiled %d namespace(s), %d route(s), %d type(s)\n",
		stats.NamespaceCount, stats.RouteCount, stats.TypeCount)
	if stats.Deprecated > 0 {
		fmt.Fprintf(formatter.Writer, "  %d deprecated route(s)\n", stats.Deprecated)
	}
	fmt.Fprintf(formatter.Writer, "Wrote IR %s to %s\n", shortHash(result.APIHash), outputFile)
	return nil
}

// outputCompileError outputs a single compilation error.
func outputCompileError(formatter *OutputFormatter, code, message string, details interface{}) error {
	_ = formatter.Error(code, message, details)
	// Compilation errors are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// writeIRToFile writes the compilation result as indented JSON.
func writeIRToFile(result *CompilationResult, filename string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling IR: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	return nil
}

// shortHash trims a content hash for text output.
func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
