package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nlpodyssey/openai-agents-go/usage"

	"github.com/kokjohn0824/financial-researcher/internal/crew"
	apperrors "github.com/kokjohn0824/financial-researcher/internal/errors"
	"github.com/kokjohn0824/financial-researcher/internal/history"
	"github.com/kokjohn0824/financial-researcher/internal/i18n"
)

type fakeKickoffer struct {
	calls  int
	inputs crew.Inputs
	out    *crew.Output
	err    error
}

func (f *fakeKickoffer) Kickoff(_ context.Context, inputs crew.Inputs) (*crew.Output, error) {
	f.calls++
	f.inputs = inputs
	return f.out, f.err
}

// newTestDriver wires a driver to in-memory streams and the given crew.
func newTestDriver(input string, k *fakeKickoffer) (*Driver, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	d := &Driver{
		Input:   strings.NewReader(input),
		Prompt:  &stderr,
		Output:  &stdout,
		NewCrew: func() (Kickoffer, error) { return k, nil },
	}
	return d, &stdout, &stderr
}

func TestDriverRun_PrintsRawResult(t *testing.T) {
	k := &fakeKickoffer{out: &crew.Output{ID: "k1", Raw: "Acme is doing fine."}}
	d, stdout, stderr := newTestDriver("Acme Corp\n", k)

	if err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if got := stdout.String(); got != "Acme is doing fine.\n" {
		t.Errorf("stdout = %q, want the raw result and a newline", got)
	}
	if k.calls != 1 {
		t.Errorf("Kickoff called %d times, want 1", k.calls)
	}
	if len(k.inputs) != 1 || k.inputs["company"] != "Acme Corp" {
		t.Errorf("inputs = %v, want exactly {company: Acme Corp}", k.inputs)
	}
	if got := stderr.String(); got != i18n.MsgCompanyPrompt {
		t.Errorf("prompt = %q, want %q", got, i18n.MsgCompanyPrompt)
	}
}

func TestDriverRun_InputPassedThrough(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty line", "\n", ""},
		{"whitespace kept", "  Acme  \n", "  Acme  "},
		{"no trailing newline", "Acme", "Acme"},
		{"CRLF", "Acme\r\n", "Acme"},
		{"second line ignored", "Acme\nGlobex\n", "Acme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := &fakeKickoffer{out: &crew.Output{Raw: "ok"}}
			d, _, _ := newTestDriver(tt.input, k)

			if err := d.Run(context.Background()); err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if got := k.inputs["company"]; got != tt.want {
				t.Errorf("company = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDriverRun_EOFBeforeInput(t *testing.T) {
	k := &fakeKickoffer{out: &crew.Output{Raw: "ok"}}
	d, stdout, _ := newTestDriver("", k)

	err := d.Run(context.Background())
	if err == nil {
		t.Fatal("Run() error = nil, want an input error")
	}
	if !errors.Is(err, io.EOF) {
		t.Errorf("Run() error = %v, want it to wrap io.EOF", err)
	}
	if !apperrors.IsFatal(err) {
		t.Errorf("input error should be fatal: %v", err)
	}
	if k.calls != 0 {
		t.Errorf("Kickoff called %d times, want 0", k.calls)
	}
	if stdout.Len() != 0 {
		t.Errorf("stdout = %q, want nothing", stdout.String())
	}
}

func TestDriverRun_KickoffError(t *testing.T) {
	boom := errors.New("model unavailable")
	k := &fakeKickoffer{err: &crew.TaskError{KickoffID: "k1", Task: "research_task", Err: boom}}
	d, stdout, _ := newTestDriver("Acme\n", k)

	err := d.Run(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("Run() error = %v, want it to wrap %v", err, boom)
	}
	if !apperrors.IsFatal(err) {
		t.Errorf("kickoff error should be fatal: %v", err)
	}
	if k.calls != 1 {
		t.Errorf("Kickoff called %d times, want exactly 1", k.calls)
	}
	if stdout.Len() != 0 {
		t.Errorf("stdout = %q, want nothing on failure", stdout.String())
	}
}

func TestDriverRun_NilOutputIsError(t *testing.T) {
	d, stdout, _ := newTestDriver("Acme\n", &fakeKickoffer{})

	if err := d.Run(context.Background()); err == nil {
		t.Fatal("Run() error = nil, want an error for a missing result")
	}
	if stdout.Len() != 0 {
		t.Errorf("stdout = %q, want nothing", stdout.String())
	}
}

func TestDriverRun_CompanyFlagSkipsPrompt(t *testing.T) {
	k := &fakeKickoffer{out: &crew.Output{Raw: "ok"}}
	d, _, stderr := newTestDriver("", k)
	name := ""
	d.Company = &name

	if err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got, ok := k.inputs["company"]; !ok || got != "" {
		t.Errorf("inputs = %v, want an empty company", k.inputs)
	}
	if stderr.Len() != 0 {
		t.Errorf("prompt shown with --company: %q", stderr.String())
	}
}

func TestDriverRun_NewCrewError(t *testing.T) {
	t.Run("plain error becomes a crew config error", func(t *testing.T) {
		d, _, _ := newTestDriver("Acme\n", nil)
		bad := errors.New("task research_task: unknown agent")
		d.NewCrew = func() (Kickoffer, error) { return nil, bad }

		err := d.Run(context.Background())
		if !errors.Is(err, bad) {
			t.Fatalf("Run() error = %v, want it to wrap %v", err, bad)
		}
		if !strings.Contains(err.Error(), i18n.ErrMsgCrewConfig) {
			t.Errorf("Run() error = %q, want %q in it", err, i18n.ErrMsgCrewConfig)
		}
	})

	t.Run("researcher error is returned as is", func(t *testing.T) {
		d, _, _ := newTestDriver("Acme\n", nil)
		d.NewCrew = func() (Kickoffer, error) { return nil, apperrors.ErrAPIKeyMissing() }

		err := d.Run(context.Background())
		var fatal *apperrors.FatalError
		if !errors.As(err, &fatal) || fatal.Message != i18n.ErrMsgAPIKeyMissing {
			t.Errorf("Run() error = %v, want the API key error", err)
		}
	})
}

func TestDriverRun_RecordsHistory(t *testing.T) {
	store := history.NewStore(filepath.Join(t.TempDir(), "history"))

	k := &fakeKickoffer{out: &crew.Output{
		ID:  "kickoff-1",
		Raw: "final report",
		Tasks: []crew.TaskOutput{
			{Name: "research_task", Agent: "researcher", Raw: "findings"},
			{Name: "analysis_task", Agent: "analyst", Raw: "final report", OutputFile: "/tmp/report.md"},
		},
		Usage: usage.Usage{Requests: 2, InputTokens: 20, OutputTokens: 10, TotalTokens: 30},
	}}
	d, _, _ := newTestDriver("Acme\n", k)
	d.History = store
	d.LogPath = "/tmp/crew.log"

	if err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	records, err := store.LoadByStatus(history.StatusCompleted)
	if err != nil {
		t.Fatalf("LoadByStatus() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("completed records = %d, want 1", len(records))
	}
	r := records[0]
	if r.Company != "Acme" || r.Raw != "final report" || r.KickoffID != "kickoff-1" {
		t.Errorf("record = %+v", r)
	}
	if r.Usage.TotalTokens != 30 || r.Usage.Requests != 2 {
		t.Errorf("usage = %+v, want 2 requests and 30 tokens", r.Usage)
	}
	if len(r.Tasks) != 2 || r.Tasks[0].Raw != "findings" {
		t.Errorf("tasks = %+v", r.Tasks)
	}
	if len(r.ReportFiles) != 1 || r.ReportFiles[0] != "/tmp/report.md" {
		t.Errorf("report files = %v", r.ReportFiles)
	}
	if r.LogPath != "/tmp/crew.log" {
		t.Errorf("log path = %q", r.LogPath)
	}
}

func TestDriverRun_RecordsFailedRun(t *testing.T) {
	store := history.NewStore(filepath.Join(t.TempDir(), "history"))

	k := &fakeKickoffer{err: &crew.TaskError{KickoffID: "kickoff-2", Task: "analysis_task", Err: errors.New("quota exceeded")}}
	d, _, _ := newTestDriver("Acme\n", k)
	d.History = store

	if err := d.Run(context.Background()); err == nil {
		t.Fatal("Run() error = nil, want the kickoff error")
	}

	records, err := store.LoadByStatus(history.StatusFailed)
	if err != nil {
		t.Fatalf("LoadByStatus() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("failed records = %d, want 1", len(records))
	}
	if records[0].KickoffID != "kickoff-2" {
		t.Errorf("KickoffID = %q, want kickoff-2", records[0].KickoffID)
	}
	if !strings.Contains(records[0].Error, "quota exceeded") {
		t.Errorf("Error = %q, want the task error", records[0].Error)
	}
}

func TestDriverRun_HistorySaveFailureIsWarning(t *testing.T) {
	// a regular file where the history directory should be
	base := filepath.Join(t.TempDir(), "history")
	if err := os.WriteFile(base, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}

	k := &fakeKickoffer{out: &crew.Output{Raw: "ok"}}
	d, stdout, stderr := newTestDriver("Acme\n", k)
	d.History = history.NewStore(base)

	if err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v, want nil when only history fails", err)
	}
	if stdout.String() != "ok\n" {
		t.Errorf("stdout = %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "Could not record the run") {
		t.Errorf("stderr = %q, want a history warning", stderr.String())
	}
}
