package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/kokjohn0824/financial-researcher/internal/crew"
	apperrors "github.com/kokjohn0824/financial-researcher/internal/errors"
	"github.com/kokjohn0824/financial-researcher/internal/history"
	"github.com/kokjohn0824/financial-researcher/internal/i18n"
	"github.com/kokjohn0824/financial-researcher/internal/ui"
)

var (
	historyLimit      int
	historyRaw        bool
	historyTranscript bool
	historyForce      bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: i18n.CmdHistoryShort,
	Long:  i18n.CmdHistoryLong,
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: i18n.CmdHistoryListShort,
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: i18n.CmdHistoryShowShort,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("%s", i18n.ErrRunIDRequired)
		}
		return nil
	},
	RunE: runHistoryShow,
}

var historyCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: i18n.CmdHistoryCleanShort,
	Args:  cobra.NoArgs,
	RunE:  runHistoryClean,
}

func init() {
	historyCmd.PersistentFlags().IntVarP(&historyLimit, "limit", "n", 20, i18n.FlagLimit)
	historyShowCmd.Flags().BoolVar(&historyRaw, "raw", false, i18n.FlagRaw)
	historyShowCmd.Flags().BoolVar(&historyTranscript, "transcript", false, i18n.FlagTranscript)
	historyCleanCmd.Flags().BoolVarP(&historyForce, "force", "f", false, i18n.FlagForce)

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyCleanCmd)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	store := history.NewStore(cfg.HistoryDir)

	records, err := store.List()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		ui.PrintInfo(w, i18n.MsgNoHistory)
		return nil
	}

	ui.PrintHeader(w, i18n.UIHistory)

	var completed, failed int
	var tokens uint64
	for _, r := range records {
		switch r.Status {
		case history.StatusCompleted:
			completed++
		case history.StatusFailed:
			failed++
		}
		tokens += r.Usage.TotalTokens
	}
	ui.NewRunSummary(completed, failed, tokens).Render(w)

	if historyLimit > 0 && len(records) > historyLimit {
		records = records[:historyLimit]
	}

	table := ui.NewTable(i18n.UIColID, i18n.UIColCompany, i18n.UIColStatus, i18n.UIColStarted, i18n.UIColDuration, i18n.UIColTokens)
	for _, r := range records {
		table.AddRow(
			shortID(r.ID),
			ui.Truncate(r.Company, 32),
			ui.RunStatusStyle(r.Status.String()).Render(r.Status.String()),
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			r.Duration().Round(time.Second).String(),
			fmt.Sprintf("%d", r.Usage.TotalTokens),
		)
	}
	table.Render(w)
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	store := history.NewStore(cfg.HistoryDir)

	rec, err := store.Load(args[0])
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			return apperrors.ErrRunNotFound(args[0])
		}
		return err
	}

	if historyRaw {
		fmt.Fprintln(w, rec.Raw)
		return nil
	}

	ui.PrintHeader(w, fmt.Sprintf("%s  %s", rec.Company, ui.RunStatusStyle(rec.Status.String()).Render(rec.Status.String())))
	table := ui.NewTable(i18n.UITableKey, i18n.UITableValue)
	table.AddRow(i18n.UIColID, rec.ID)
	table.AddRow(i18n.UIColStarted, rec.StartedAt.Local().Format(time.RFC3339))
	table.AddRow(i18n.UIColDuration, rec.Duration().Round(time.Millisecond).String())
	table.AddRow(i18n.UIColTokens, fmt.Sprintf("%d (%d requests)", rec.Usage.TotalTokens, rec.Usage.Requests))
	for _, f := range rec.ReportFiles {
		table.AddRow(i18n.UIColReport, f)
	}
	if rec.LogPath != "" {
		table.AddRow(i18n.UIColLog, rec.LogPath)
	}
	table.Render(w)

	if rec.Error != "" {
		fmt.Fprintln(w)
		ui.PrintError(w, rec.Error)
	}

	for _, t := range rec.Tasks {
		fmt.Fprintln(w)
		ui.PrintSubheader(w, fmt.Sprintf("%s (%s)", t.Name, t.Agent))
		fmt.Fprintln(w, t.Raw)
	}

	if historyTranscript {
		return printTranscripts(cmd, w, store, rec)
	}
	return nil
}

func printTranscripts(cmd *cobra.Command, w io.Writer, store *history.Store, rec *history.Record) error {
	if rec.KickoffID == "" {
		ui.PrintInfo(w, i18n.MsgNoTranscript)
		return nil
	}

	tasks := make([]string, 0, len(rec.Tasks))
	for _, t := range rec.Tasks {
		tasks = append(tasks, t.Name)
	}
	if len(tasks) == 0 {
		// failed runs keep no task list; fall back to the crew definition
		def, err := crew.LoadDefinition(cfg.CrewFile)
		if err != nil {
			return err
		}
		for _, t := range def.Tasks {
			tasks = append(tasks, t.Name)
		}
	}

	found := false
	for _, task := range tasks {
		entries, err := store.Transcript(cmd.Context(), rec.KickoffID, task)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			continue
		}
		found = true
		fmt.Fprintln(w)
		ui.PrintSubheader(w, fmt.Sprintf(i18n.UITranscript, task))
		for _, e := range entries {
			fmt.Fprintf(w, "%s %s\n", ui.StyleHighlight.Render(e.Role+":"), e.Text)
		}
	}
	if !found {
		ui.PrintInfo(w, i18n.MsgNoTranscript)
	}
	return nil
}

func runHistoryClean(cmd *cobra.Command, args []string) error {
	w := cmd.ErrOrStderr()
	store := history.NewStore(cfg.HistoryDir)

	total, err := store.Count()
	if err != nil {
		return err
	}
	n := total[history.StatusCompleted] + total[history.StatusFailed]
	if n == 0 {
		ui.PrintInfo(w, i18n.MsgNoHistory)
		return nil
	}

	if !historyForce {
		ui.PrintWarning(w, fmt.Sprintf(i18n.MsgCleanWarning, n, cfg.HistoryDir))
		ok, err := ui.NewPrompt(cmd.InOrStdin(), w).Confirm(i18n.MsgConfirmClean, false)
		if err != nil || !ok {
			ui.PrintInfo(w, i18n.MsgCancelled)
			return nil
		}
	}

	if err := store.Clean(); err != nil {
		return err
	}
	ui.PrintSuccess(w, i18n.MsgHistoryCleaned)
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
