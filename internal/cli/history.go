package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/roach88/routegen/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Limit int
	RunID string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List generate runs recorded in a ledger",
		Long: `List generate runs recorded with generate --ledger, newest first.

With --run, print one run and the content hash of every file it produced.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().String("ledger", "", "SQLite ledger path (required unless set in config)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of runs to list (0 for all)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "show a single run by id")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := LoadConfig(opts.ConfigFile, cmd.Flags())
	if err != nil {
		return commandError(formatter, ErrCodeConfig, err.Error())
	}
	if cfg.Ledger == "" {
		return commandError(formatter, ErrCodeGeneric, "no ledger: pass --ledger or set ledger in the config file")
	}

	st, err := store.Open(cfg.Ledger)
	if err != nil {
		return commandError(formatter, ErrCodeLedger, err.Error())
	}
	defer st.Close()

	if opts.RunID != "" {
		run, err := st.ReadRun(ctx, opts.RunID)
		if errors.Is(err, store.ErrRunNotFound) {
			return commandError(formatter, ErrCodeNotFound, fmt.Sprintf("run %s not found", opts.RunID))
		}
		if err != nil {
			return commandError(formatter, ErrCodeLedger, err.Error())
		}
		return outputRun(formatter, run)
	}

	runs, err := st.ListRuns(ctx, opts.Limit)
	if err != nil {
		return commandError(formatter, ErrCodeLedger, err.Error())
	}
	return outputRuns(formatter, runs)
}

func outputRuns(formatter *OutputFormatter, runs []store.Run) error {
	if formatter.IsJSON() {
		return formatter.Success(runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(formatter.Writer, "No runs recorded")
		return nil
	}
	table := tablewriter.NewWriter(formatter.Writer)
	table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	table.SetCenterSeparator("|")
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Seq", "Run", "API", "Mode", "Files", "Out"})
	for _, run := range runs {
		table.Append([]string{
			strconv.FormatInt(run.Seq, 10),
			run.ID,
			shortHash(run.APIHash),
			runMode(run),
			strconv.Itoa(len(run.Outputs)),
			run.OutDir,
		})
	}
	table.Render()
	return nil
}

func outputRun(formatter *OutputFormatter, run store.Run) error {
	if formatter.IsJSON() {
		return formatter.Success(run)
	}

	fmt.Fprintf(formatter.Writer, "Run %s (seq %d)\n", run.ID, run.Seq)
	fmt.Fprintf(formatter.Writer, "  mode:      %s\n", runMode(run))
	fmt.Fprintf(formatter.Writer, "  api:       %s\n", run.APIHash)
	fmt.Fprintf(formatter.Writer, "  generator: %s (IR %s)\n", run.GeneratorVersion, run.IRVersion)
	fmt.Fprintf(formatter.Writer, "  out:       %s\n", run.OutDir)
	for _, o := range run.Outputs {
		state := "unchanged"
		switch {
		case o.Stale:
			state = "stale"
		case o.Written:
			state = "written"
		}
		fmt.Fprintf(formatter.Writer, "  %-9s %s  %s\n", state, shortHash(o.ContentHash), o.Path)
	}
	return nil
}

func runMode(run store.Run) string {
	if run.Check {
		return "check"
	}
	return "generate"
}
