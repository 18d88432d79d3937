package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/kokjohn0824/financial-researcher/internal/crew"
	apperrors "github.com/kokjohn0824/financial-researcher/internal/errors"
	"github.com/kokjohn0824/financial-researcher/internal/history"
	"github.com/kokjohn0824/financial-researcher/internal/i18n"
	"github.com/kokjohn0824/financial-researcher/internal/ui"
)

// Kickoffer runs a crew once for the given inputs.
type Kickoffer interface {
	Kickoff(ctx context.Context, inputs crew.Inputs) (*crew.Output, error)
}

// Driver asks for a company, kicks off the crew once and prints the raw result.
type Driver struct {
	// Input supplies the company name line.
	Input io.Reader
	// Prompt receives the question and any warnings.
	Prompt io.Writer
	// Output receives the raw result and nothing else.
	Output io.Writer
	// Company skips the prompt when set. An empty value is used as is.
	Company *string
	// NewCrew builds the crew after the company is known.
	NewCrew func() (Kickoffer, error)
	// History records the run when set.
	History *history.Store
	Logger  *zap.Logger
	LogPath string
}

// Run performs one research run. The crew is kicked off at most once; on any
// error nothing is written to Output.
func (d *Driver) Run(ctx context.Context) error {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	company, err := d.readCompany()
	if err != nil {
		return apperrors.ErrReadInput(err)
	}
	inputs := crew.Inputs{"company": company}

	c, err := d.NewCrew()
	if err != nil {
		if _, ok := err.(apperrors.ResearcherError); ok {
			return err
		}
		return apperrors.ErrCrewConfig(err)
	}

	rec := history.NewRecord(company)
	rec.LogPath = d.LogPath

	out, err := c.Kickoff(ctx, inputs)
	if err == nil && out == nil {
		err = errors.New("crew returned no output")
	}
	if err != nil {
		logger.Error("kickoff failed", zap.Error(err))
		var taskErr *crew.TaskError
		if errors.As(err, &taskErr) {
			rec.KickoffID = taskErr.KickoffID
		}
		rec.Fail(err)
		d.record(logger, rec)
		return apperrors.ErrKickoff(err)
	}

	if _, err := io.WriteString(d.Output, out.Raw+"\n"); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}

	rec.Complete(out.Raw)
	rec.KickoffID = out.ID
	rec.ReportFiles = out.ReportFiles()
	rec.Usage = history.Usage{
		Requests:     out.Usage.Requests,
		InputTokens:  out.Usage.InputTokens,
		OutputTokens: out.Usage.OutputTokens,
		TotalTokens:  out.Usage.TotalTokens,
	}
	for _, t := range out.Tasks {
		rec.Tasks = append(rec.Tasks, history.TaskRecord{
			Name:       t.Name,
			Agent:      t.Agent,
			Raw:        t.Raw,
			OutputFile: t.OutputFile,
		})
	}
	d.record(logger, rec)
	return nil
}

func (d *Driver) readCompany() (string, error) {
	if d.Company != nil {
		return *d.Company, nil
	}
	return ui.NewPrompt(d.Input, d.Prompt).AskLine(i18n.MsgCompanyPrompt)
}

// record saves the run; failures are reported but never fail the command.
func (d *Driver) record(logger *zap.Logger, rec *history.Record) {
	if d.History == nil {
		return
	}
	if err := d.History.Save(rec); err != nil {
		warn := apperrors.ErrSaveHistory(rec.ID, err)
		logger.Warn("history not saved", zap.Error(warn))
		ui.PrintWarning(d.Prompt, fmt.Sprintf(i18n.MsgHistorySaveWarn, warn))
		return
	}
	logger.Info("run recorded", zap.String("run_id", rec.ID), zap.String("status", rec.Status.String()))
}
