package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/simscan/domain"
	"github.com/ludo-technologies/simscan/internal/config"
	"github.com/ludo-technologies/simscan/service"
)

// HistoryCommand lists recorded runs
type HistoryCommand struct {
	historyPath string
	configFile  string
	limit       int
}

// NewHistoryCommand creates a new history command
func NewHistoryCommand() *HistoryCommand {
	return &HistoryCommand{limit: 20}
}

// CreateCobraCommand creates the cobra command for listing runs
func (h *HistoryCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recorded scans",
		Long: `List the scans recorded with --history, newest first, or the flagged
pairs of one run.

Examples:
  # List the last 20 runs
  simscan history --history runs.db

  # Show the pairs flagged by run 7
  simscan history --history runs.db 7`,
		Args: cobra.MaximumNArgs(1),
		RunE: h.runHistory,
	}

	cmd.Flags().StringVar(&h.historyPath, service.FlagHistory, "", "SQLite history database (defaults to history.path in the config)")
	cmd.Flags().StringVarP(&h.configFile, "config", "c", "", "Path to configuration file")
	cmd.Flags().IntVarP(&h.limit, "limit", "n", h.limit, "Maximum number of runs to list (0 lists all)")

	return cmd
}

// runHistory executes the history command
func (h *HistoryCommand) runHistory(cmd *cobra.Command, args []string) error {
	path := h.historyPath
	if path == "" {
		cfg, err := config.LoadConfig(h.configFile, ".")
		if err != nil {
			return domain.NewConfigError("failed to load configuration", err)
		}
		path = cfg.History.Path
	}
	if path == "" {
		return domain.NewInvalidInputError("no history database: pass --history or set history.path", nil)
	}

	history, err := service.OpenHistory(path)
	if err != nil {
		return err
	}
	defer history.Close()

	out := cmd.OutOrStdout()
	if len(args) == 1 {
		runID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return domain.NewInvalidInputError(fmt.Sprintf("invalid run id %q", args[0]), err)
		}
		return h.printFlags(cmd, out, history, runID)
	}

	runs, err := history.ListRuns(cmd.Context(), h.limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded")
		return nil
	}

	fmt.Fprintf(out, "%-6s %-20s %-24s %5s %8s %8s %s\n", "ID", "DATE", "FILE", "DOCS", "MEAN", "CUTOFF", "ROOT")
	for _, r := range runs {
		fmt.Fprintf(out, "%-6d %-20s %-24s %5d %8.3f %8.3f %s\n",
			r.ID, r.CreatedAt.Local().Format(time.DateTime), r.FileName, r.Documents, r.Mean, r.Cutoff, r.Root)
	}
	return nil
}

func (h *HistoryCommand) printFlags(cmd *cobra.Command, out io.Writer, history *service.HistoryService, runID int64) error {
	flags, err := history.Flags(cmd.Context(), runID)
	if err != nil {
		return err
	}
	if len(flags) == 0 {
		fmt.Fprintf(out, "Run %d flagged no pairs\n", runID)
		return nil
	}

	for _, f := range flags {
		fmt.Fprintf(out, "%.3f %s %s\n", f.Similarity, f.Label, f.Other)
	}
	return nil
}

// NewHistoryCmd creates and returns the history cobra command
func NewHistoryCmd() *cobra.Command {
	return NewHistoryCommand().CreateCobraCommand()
}
