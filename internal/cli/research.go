package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nlpodyssey/openai-agents-go/memory"
	"github.com/spf13/cobra"

	"github.com/kokjohn0824/financial-researcher/internal/config"
	"github.com/kokjohn0824/financial-researcher/internal/crew"
	apperrors "github.com/kokjohn0824/financial-researcher/internal/errors"
	"github.com/kokjohn0824/financial-researcher/internal/history"
	"github.com/kokjohn0824/financial-researcher/internal/i18n"
	"github.com/kokjohn0824/financial-researcher/internal/logging"
	"github.com/kokjohn0824/financial-researcher/internal/ui"
)

func runResearch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(cfg.Timeout)*time.Second)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	stderr := cmd.ErrOrStderr()

	logDir := cfg.LogsDir
	if cfg.DisableDetailedLog {
		logDir = ""
	}
	runLog, err := logging.Open(logging.Options{Dir: logDir, Debug: cfg.Debug, Console: stderr})
	if err != nil {
		return err
	}
	defer runLog.Close()

	store := history.NewStore(cfg.HistoryDir)
	if err := store.Init(); err != nil {
		ui.PrintWarning(stderr, fmt.Sprintf(i18n.MsgHistorySaveWarn, err))
		store = nil
	}

	var companyFlag *string
	if cmd.Flags().Changed("company") {
		companyFlag = &company
	}

	d := &Driver{
		Input:   cmd.InOrStdin(),
		Prompt:  stderr,
		Output:  cmd.OutOrStdout(),
		Company: companyFlag,
		NewCrew: func() (Kickoffer, error) {
			return buildCrew(cfg, store, runLog, stderr)
		},
		History: store,
		Logger:  runLog.Logger,
		LogPath: runLog.Path,
	}
	return d.Run(ctx)
}

// buildCrew assembles the crew described by cfg. store may be nil.
func buildCrew(c *config.Config, store *history.Store, runLog *logging.RunLog, stderr io.Writer) (Kickoffer, error) {
	if c.OpenAIAPIKey == "" && !c.DryRun {
		return nil, apperrors.ErrAPIKeyMissing()
	}

	def, err := crew.LoadDefinition(c.CrewFile)
	if err != nil {
		return nil, err
	}

	p := newProgress(stderr, c.Quiet, c.Verbose)

	opts := []crew.Option{
		crew.WithDefaultModel(c.Model),
		crew.WithMaxTurns(c.MaxTurns),
		crew.WithTracing(c.Tracing),
		crew.WithOutputDir(c.OutputDir),
		crew.WithLogger(runLog.Logger),
		crew.WithWebSearch(c.WebSearch),
		crew.WithTaskHook(p.onTask),
	}
	if c.DryRun {
		if !c.Quiet {
			ui.PrintWarning(stderr, i18n.MsgDryRunNotice)
		}
		opts = append(opts, crew.WithModel(crew.DryRunModel{Name: c.Model}))
	} else {
		opts = append(opts, crew.WithModelProvider(crew.NewProvider(crew.ProviderParams{
			APIKey:       c.OpenAIAPIKey,
			BaseURL:      c.OpenAIBaseURL,
			UseResponses: c.UseResponses,
		})))
	}
	if c.Transcripts && store != nil {
		opts = append(opts, crew.WithSessions(func(ctx context.Context, sessionID string) (memory.Session, error) {
			s, err := store.OpenSession(ctx, sessionID)
			if err != nil {
				return nil, err
			}
			return s, nil
		}))
	}

	cr, err := crew.New(def, opts...)
	if err != nil {
		return nil, err
	}
	return &progressCrew{crew: cr, progress: p, logPath: runLog.Path}, nil
}

// progressCrew reports kickoff progress on stderr around a crew run.
type progressCrew struct {
	crew     *crew.Crew
	progress *progress
	logPath  string
}

func (pc *progressCrew) Kickoff(ctx context.Context, inputs crew.Inputs) (*crew.Output, error) {
	p := pc.progress
	start := time.Now()
	p.begin(fmt.Sprintf(i18n.MsgKickoff, inputs["company"]))

	out, err := pc.crew.Kickoff(ctx, inputs)
	p.stop()
	if err != nil {
		return nil, err
	}

	p.success(fmt.Sprintf(i18n.MsgKickoffDone, time.Since(start).Round(time.Millisecond), out.Usage.Requests, out.Usage.TotalTokens))
	for _, f := range out.ReportFiles() {
		p.info(fmt.Sprintf(i18n.MsgReportWritten, f))
	}
	if p.verbose && pc.logPath != "" {
		p.info(fmt.Sprintf(i18n.MsgLogPath, pc.logPath))
	}
	return out, nil
}

// progress prints task progress. On a terminal it animates a spinner;
// otherwise it prints one step line per task.
type progress struct {
	w       io.Writer
	quiet   bool
	verbose bool
	spinner *ui.Spinner
}

func newProgress(w io.Writer, quiet, verbose bool) *progress {
	p := &progress{w: w, quiet: quiet, verbose: verbose}
	if !quiet && ui.IsTerminal(w) {
		p.spinner = ui.NewSpinner("", w)
	}
	return p
}

func (p *progress) begin(msg string) {
	switch {
	case p.quiet:
	case p.spinner != nil:
		p.spinner.UpdateMessage(msg)
		p.spinner.Start()
	default:
		ui.PrintInfo(p.w, msg)
	}
}

func (p *progress) onTask(ev crew.TaskEvent) {
	if p.quiet {
		return
	}
	if !ev.Done {
		msg := fmt.Sprintf(i18n.MsgTaskStarted, ev.Index, ev.Total, ev.Task, ev.Agent)
		if p.spinner != nil {
			p.spinner.UpdateMessage(msg)
			return
		}
		ui.PrintStep(p.w, ev.Index, ev.Total, fmt.Sprintf("%s (%s)", ev.Task, ev.Agent))
		return
	}
	if ev.Err != nil || !p.verbose {
		return
	}
	msg := fmt.Sprintf(i18n.MsgTaskFinished, ev.Task, ev.Elapsed.Round(time.Millisecond))
	if p.spinner != nil {
		p.spinner.Println(ui.StyleMuted.Render(msg))
		return
	}
	ui.PrintInfo(p.w, msg)
}

func (p *progress) success(msg string) {
	switch {
	case p.quiet:
	case p.spinner != nil:
		p.spinner.Success(msg)
	default:
		ui.PrintSuccess(p.w, msg)
	}
}

// stop clears the spinner line; errors are printed by the caller.
func (p *progress) stop() {
	if p.spinner != nil {
		p.spinner.Stop()
	}
}

func (p *progress) info(msg string) {
	if p.quiet {
		return
	}
	ui.PrintInfo(p.w, msg)
}
