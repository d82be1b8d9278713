package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/routegen/internal/gen"
	"github.com/roach88/routegen/internal/ir"
	"github.com/roach88/routegen/internal/store"
)

// GenerateOptions holds flags for the generate command. The generation
// settings themselves are read through LoadConfig so a config file can
// supply them.
type GenerateOptions struct {
	*RootOptions
	Check bool
}

// GenerateResult is the JSON payload of a generate run.
type GenerateResult struct {
	*gen.Result
	RunID string `json:"run_id,omitempty"`
	Seq   int64  `json:"seq,omitempty"`
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate <specs>",
		Short: "Generate client bindings",
		Long: `Generate one <namespace>/client.go per namespace with routes.

Files whose content is unchanged are not rewritten. With --check nothing
is written; the command fails if any file is missing or out of date.
With --ledger the run and a hash of every output are recorded.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(opts, args[0], cmd)
		},
	}

	cmd.Flags().String("out", "", "output directory (required unless set in config)")
	cmd.Flags().BoolVar(&opts.Check, "check", false, "fail if generated files are out of date instead of writing")
	cmd.Flags().String("sdk-package", "", "runtime package import path (default "+gen.DefaultSDKPackage+")")
	cmd.Flags().Bool("strict-unions", false, "report unknown union tags as errors")
	cmd.Flags().StringArray("header", nil, "header comment line (repeatable)")
	cmd.Flags().String("ledger", "", "SQLite ledger to record the run in")

	return cmd
}

func runGenerate(opts *GenerateOptions, specs string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := LoadConfig(opts.ConfigFile, cmd.Flags())
	if err != nil {
		return commandError(formatter, ErrCodeConfig, err.Error())
	}
	if cfg.Out == "" {
		return commandError(formatter, ErrCodeGeneric, "no output directory: pass --out or set out in the config file")
	}

	loaded, err := LoadAPI(specs)
	if err != nil {
		code, message := loadErrorCode(err)
		return commandError(formatter, code, message)
	}
	formatter.VerboseLog("Loaded %d %s file(s) from %s", loaded.FileCount, loaded.Source, specs)

	if errs, _ := ValidateAPI(loaded.API); len(errs) > 0 {
		return outputValidationErrors(formatter, errs, nil)
	}

	g := gen.New(gen.Config{
		OutDir:  cfg.Out,
		Check:   opts.Check,
		Options: cfg.GenOptions(),
		Logger:  opts.newLogger(formatter.GetErrWriter()),
	})
	res, genErr := g.Generate(ctx, loaded.API)

	var drift *gen.DriftError
	switch {
	case genErr == nil, errors.As(genErr, &drift):
	case errors.Is(genErr, gen.ErrInvalidAPI):
		_ = formatter.Error(ErrCodeGeneric, genErr.Error(), nil)
		return WrapExitError(ExitFailure, "invalid API", genErr)
	default:
		return commandError(formatter, ErrCodeWriteFailed, genErr.Error())
	}

	out := GenerateResult{Result: res}
	if cfg.Ledger != "" {
		run, err := recordRun(ctx, cfg.Ledger, res)
		if err != nil {
			return commandError(formatter, ErrCodeLedger, err.Error())
		}
		out.RunID, out.Seq = run.ID, run.Seq
		formatter.VerboseLog("Recorded run %s (seq %d) in %s", run.ID, run.Seq, cfg.Ledger)
	}

	if drift != nil {
		return outputDrift(formatter, out, drift)
	}
	return outputGenerateSuccess(formatter, out)
}

// recordRun stores a generation result in the ledger at path.
func recordRun(ctx context.Context, path string, res *gen.Result) (store.Run, error) {
	st, err := store.Open(path)
	if err != nil {
		return store.Run{}, err
	}
	defer st.Close()

	run := store.Run{
		APIHash:          res.APIHash,
		GeneratorVersion: res.GeneratorVersion,
		IRVersion:        ir.IRVersion,
		OutDir:           res.OutDir,
		Check:            res.Check,
	}
	for _, f := range res.Files {
		run.Outputs = append(run.Outputs, store.Output{
			Namespace:   f.Namespace,
			Path:        f.Path,
			ContentHash: f.ContentHash,
			Written:     f.Written,
			Stale:       f.Stale,
		})
	}
	return st.RecordRun(ctx, run)
}

func outputGenerateSuccess(formatter *OutputFormatter, out GenerateResult) error {
	if formatter.IsJSON() {
		return formatter.Success(out)
	}

	written := 0
	for _, f := range out.Files {
		if f.Written {
			written++
		}
	}

	if out.Check {
		fmt.Fprintf(formatter.Writer, "✓ %d file(s) up to date in %s\n", len(out.Files), out.OutDir)
	} else {
		fmt.Fprintf(formatter.Writer, "✓ Generated %d file(s) in %s (%d written, %d unchanged)\n",
			len(out.Files), out.OutDir, written, len(out.Files)-written)
	}
	if formatter.Verbose {
		for _, f := range out.Files {
			state := "unchanged"
			if f.Written {
				state = "written"
			}
			fmt.Fprintf(formatter.Writer, "  %-9s %s\n", state, f.Path)
		}
		for _, ns := range out.Skipped {
			fmt.Fprintf(formatter.Writer, "  %-9s %s (no routes)\n", "skipped", ns)
		}
	}
	return nil
}

func outputDrift(formatter *OutputFormatter, out GenerateResult, drift *gen.DriftError) error {
	message := fmt.Sprintf("%d file(s) out of date", len(drift.Paths))
	if formatter.IsJSON() {
		if err := formatter.Failure(CLIError{Code: ErrCodeDrift, Message: message, Details: drift.Paths}, out); err != nil {
			return err
		}
		return WrapExitError(ExitFailure, message, drift)
	}

	fmt.Fprintf(formatter.Writer, "✗ %s in %s\n", message, out.OutDir)
	for _, p := range drift.Paths {
		fmt.Fprintf(formatter.Writer, "  %s\n", p)
	}
	return WrapExitError(ExitFailure, message, drift)
}

// commandError reports an error that is not the API's fault (exit code 2).
func commandError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}
