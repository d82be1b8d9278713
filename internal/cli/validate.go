package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/routegen/internal/compiler"
	"github.com/roach88/routegen/internal/ir"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool                          `json:"valid"`
	Errors   []compiler.ValidationError    `json:"errors,omitempty"`
	Warnings []compiler.DeprecationWarning `json:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <specs>",
		Short: "Validate an API description without generating code",
		Long: `Validate an API description without generating code.

Reports every validation error, not just the first, and warns about
deprecation chains that never reach a live route.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, specs string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	loaded, err := LoadAPI(specs)
	if err != nil {
		code, message := loadErrorCode(err)
		_ = formatter.Error(code, message, nil)
		// Unreadable input is a command-level error (exit code 2)
		return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
	}
	formatter.VerboseLog("Loaded %d %s file(s) from %s", loaded.FileCount, loaded.Source, specs)

	errs, warnings := ValidateAPI(loaded.API)
	if len(errs) > 0 {
		return outputValidationErrors(formatter, errs, warnings)
	}
	return outputValidateSuccess(formatter, warnings)
}

// ValidateAPI runs every validation rule and the deprecation analysis.
// Warnings are computed only for APIs that pass validation.
func ValidateAPI(api *ir.API) ([]compiler.ValidationError, []compiler.DeprecationWarning) {
	if errs := compiler.Validate(api); len(errs) > 0 {
		return errs, nil
	}
	return nil, compiler.AnalyzeDeprecations(api)
}

// outputValidateSuccess outputs successful validation.
func outputValidateSuccess(formatter *OutputFormatter, warnings []compiler.DeprecationWarning) error {
	if formatter.IsJSON() {
		return formatter.Success(ValidationResult{Valid: true, Warnings: warnings})
	}

	fmt.Fprintln(formatter.Writer, "✓ API valid")
	writeWarnings(formatter, warnings)
	return nil
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []compiler.ValidationError, warnings []compiler.DeprecationWarning) error {
	if formatter.IsJSON() {
		first := CLIError{Code: errs[0].Code, Message: errs[0].Message}
		if err := formatter.Failure(first, ValidationResult{Valid: false, Errors: errs, Warnings: warnings}); err != nil {
			return err
		}
		// Validation failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		fmt.Fprintf(formatter.Writer, "%s\n  %s: %s\n\n", err.Field, err.Code, err.Message)
	}

	// Validation failures = exit code 1
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}

func writeWarnings(formatter *OutputFormatter, warnings []compiler.DeprecationWarning) {
	if len(warnings) == 0 {
		return
	}
	fmt.Fprintln(formatter.Writer)
	for _, w := range warnings {
		fmt.Fprintf(formatter.Writer, "%s: %s\n  %s\n", w.Level, w.Message, strings.Join(w.Path, " → "))
	}
}
