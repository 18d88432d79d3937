package crew

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nlpodyssey/openai-agents-go/agents"
	"github.com/nlpodyssey/openai-agents-go/agentstesting"
	"github.com/nlpodyssey/openai-agents-go/memory"
	"github.com/nlpodyssey/openai-agents-go/tracing"
	"github.com/nlpodyssey/openai-agents-go/usage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingModel wraps the fake model and keeps every prompt it receives.
type recordingModel struct {
	*agentstesting.FakeModel
	prompts      []string
	instructions []string
}

func newRecordingModel(outputs ...agentstesting.FakeModelTurnOutput) *recordingModel {
	m := &recordingModel{FakeModel: agentstesting.NewFakeModel(false, nil)}
	m.AddMultipleTurnOutputs(outputs)
	return m
}

func (m *recordingModel) GetResponse(ctx context.Context, params agents.ModelResponseParams) (*agents.ModelResponse, error) {
	m.prompts = append(m.prompts, lastUserText(params.Input))
	m.instructions = append(m.instructions, params.SystemInstructions.Or(""))
	return m.FakeModel.GetResponse(ctx, params)
}

func textOutput(s string) agentstesting.FakeModelTurnOutput {
	return agentstesting.FakeModelTurnOutput{
		Value: []agents.TResponseOutputItem{agentstesting.GetTextMessage(s)},
	}
}

func newTestCrew(t *testing.T, def *Definition, model agents.Model, opts ...Option) *Crew {
	t.Helper()
	opts = append([]Option{WithModel(model), WithOutputDir(t.TempDir())}, opts...)
	c, err := New(def, opts...)
	require.NoError(t, err)
	return c
}

func TestKickoff_DefaultCrew(t *testing.T) {
	def, err := DefaultDefinition()
	require.NoError(t, err)

	model := newRecordingModel(textOutput("research notes"), textOutput("# Acme report"))
	outDir := t.TempDir()
	c := newTestCrew(t, def, model, WithOutputDir(outDir))

	out, err := c.Kickoff(context.Background(), Inputs{"company": "Acme Corp"})
	require.NoError(t, err)

	assert.Equal(t, "# Acme report", out.Raw)
	require.Len(t, out.Tasks, 2)
	assert.Equal(t, "research_task", out.Tasks[0].Name)
	assert.Equal(t, "researcher", out.Tasks[0].Agent)
	assert.Equal(t, "research notes", out.Tasks[0].Raw)
	assert.Equal(t, "analysis_task", out.Tasks[1].Name)
	assert.NotEmpty(t, out.ID)

	require.Len(t, model.prompts, 2, "one model call per task")
	assert.Contains(t, model.prompts[0], "Conduct thorough research on Acme Corp.")
	assert.Contains(t, model.prompts[1], "research notes", "analysis receives research output as context")
	assert.Contains(t, model.instructions[0], "You are Senior Financial Researcher for Acme Corp.")
	assert.Contains(t, model.instructions[1], "Market Analyst and Report writer focused on Acme Corp")

	reportPath := filepath.Join(outDir, "output", "report.md")
	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	assert.Equal(t, "# Acme report", string(data))
	assert.Equal(t, []string{reportPath}, out.ReportFiles())
}

func TestKickoff_CompanyPassedThroughUnchanged(t *testing.T) {
	for _, company := range []string{"", "  Acme  ", "{curly} & Sons"} {
		def := &Definition{
			Agents: map[string]AgentSpec{"a": {Role: "Analyst of {company}"}},
			Tasks:  []TaskSpec{{Name: "t", Agent: "a", Description: "Study [{company}]"}},
		}
		model := newRecordingModel(textOutput("ok"))
		c := newTestCrew(t, def, model)

		_, err := c.Kickoff(context.Background(), Inputs{"company": company})
		require.NoError(t, err)
		require.Len(t, model.prompts, 1)
		assert.Equal(t, "Study ["+company+"]", model.prompts[0])
	}
}

func TestKickoff_MissingInputFailsBeforeModelCall(t *testing.T) {
	def, err := DefaultDefinition()
	require.NoError(t, err)

	model := newRecordingModel(textOutput("unused"))
	c := newTestCrew(t, def, model)

	_, err = c.Kickoff(context.Background(), Inputs{"ticker": "ACME"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"company"`)
	assert.Empty(t, model.prompts)
}

func TestKickoff_TaskErrorAborts(t *testing.T) {
	def, err := DefaultDefinition()
	require.NoError(t, err)

	boom := errors.New("rate limited")
	model := newRecordingModel(agentstesting.FakeModelTurnOutput{Error: boom}, textOutput("never"))
	outDir := t.TempDir()
	c := newTestCrew(t, def, model, WithOutputDir(outDir))

	out, err := c.Kickoff(context.Background(), Inputs{"company": "Acme"})
	require.Error(t, err)
	assert.Nil(t, out)
	assert.ErrorIs(t, err, boom)

	var taskErr *TaskError
	require.ErrorAs(t, err, &taskErr)
	assert.Equal(t, "research_task", taskErr.Task)
	assert.NotEmpty(t, taskErr.KickoffID)
	assert.Len(t, model.prompts, 1, "later tasks must not run")

	_, statErr := os.Stat(filepath.Join(outDir, "output", "report.md"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestKickoff_ContextSelection(t *testing.T) {
	def := &Definition{
		Agents: map[string]AgentSpec{"a": {Role: "worker"}},
		Tasks: []TaskSpec{
			{Name: "first", Agent: "a", Description: "one"},
			{Name: "second", Agent: "a", Description: "two"},
			{Name: "third", Agent: "a", Description: "three", Context: []string{"first"}},
		},
	}
	model := newRecordingModel(textOutput("out-1"), textOutput("out-2"), textOutput("out-3"))
	c := newTestCrew(t, def, model)

	out, err := c.Kickoff(context.Background(), Inputs{"company": "Acme"})
	require.NoError(t, err)
	assert.Equal(t, "out-3", out.Raw)

	require.Len(t, model.prompts, 3)
	assert.Equal(t, "one", model.prompts[0])
	assert.Contains(t, model.prompts[1], "out-1", "implicit context is the previous task")
	assert.Contains(t, model.prompts[2], "out-1")
	assert.NotContains(t, model.prompts[2], "out-2", "explicit context replaces the previous task")
}

func TestKickoff_AggregatesUsage(t *testing.T) {
	def, err := DefaultDefinition()
	require.NoError(t, err)

	model := newRecordingModel(textOutput("a"), textOutput("b"))
	model.SetHardcodedUsage(usage.Usage{Requests: 1, InputTokens: 10, OutputTokens: 5, TotalTokens: 15})
	c := newTestCrew(t, def, model)

	out, err := c.Kickoff(context.Background(), Inputs{"company": "Acme"})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), out.Usage.Requests)
	assert.Equal(t, uint64(30), out.Usage.TotalTokens)
}

// perCallUsageModel reports usage the way the OpenAI models do: a fresh
// value with one request on every response.
type perCallUsageModel struct {
	*recordingModel
}

func (m perCallUsageModel) GetResponse(ctx context.Context, params agents.ModelResponseParams) (*agents.ModelResponse, error) {
	resp, err := m.recordingModel.GetResponse(ctx, params)
	if err != nil {
		return nil, err
	}
	resp.Usage = &usage.Usage{Requests: 1, InputTokens: 7, OutputTokens: 3, TotalTokens: 10}
	return resp, nil
}

func TestKickoff_CountsOneRequestPerModelCall(t *testing.T) {
	def, err := DefaultDefinition()
	require.NoError(t, err)

	model := perCallUsageModel{newRecordingModel(textOutput("a"), textOutput("b"))}
	c := newTestCrew(t, def, model)

	out, err := c.Kickoff(context.Background(), Inputs{"company": "Acme"})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), out.Usage.Requests)
	assert.Equal(t, uint64(14), out.Usage.InputTokens)
	assert.Equal(t, uint64(6), out.Usage.OutputTokens)
	assert.Equal(t, uint64(20), out.Usage.TotalTokens)
}

func TestKickoff_TracingSwitchesProvider(t *testing.T) {
	def, err := DefaultDefinition()
	require.NoError(t, err)
	t.Cleanup(func() { tracing.SetTracingDisabled(false) })

	for _, enabled := range []bool{false, true} {
		c := newTestCrew(t, def, DryRunModel{}, WithTracing(enabled))
		_, err := c.Kickoff(context.Background(), Inputs{"company": "Acme"})
		require.NoError(t, err)

		trace := tracing.NewTrace(context.Background(), tracing.TraceParams{WorkflowName: "check"})
		_, noop := trace.(*tracing.NoOpTrace)
		assert.Equal(t, !enabled, noop, "tracing enabled=%v", enabled)
	}
}

func TestKickoff_TaskEvents(t *testing.T) {
	def, err := DefaultDefinition()
	require.NoError(t, err)

	var events []TaskEvent
	model := newRecordingModel(textOutput("a"), textOutput("b"))
	c := newTestCrew(t, def, model, WithTaskHook(func(ev TaskEvent) { events = append(events, ev) }))

	_, err = c.Kickoff(context.Background(), Inputs{"company": "Acme"})
	require.NoError(t, err)

	require.Len(t, events, 4)
	assert.Equal(t, TaskEvent{Index: 1, Total: 2, Task: "research_task", Agent: "researcher"}, events[0])
	assert.True(t, events[1].Done)
	assert.NoError(t, events[1].Err)
	assert.Equal(t, "analysis_task", events[2].Task)
	assert.True(t, events[3].Done)
}

func TestKickoff_DryRunModel(t *testing.T) {
	def, err := DefaultDefinition()
	require.NoError(t, err)

	c := newTestCrew(t, def, DryRunModel{Name: "gpt-4o-mini"})
	out, err := c.Kickoff(context.Background(), Inputs{"company": "Acme"})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out.Raw, "[DRY RUN] gpt-4o-mini would answer:"))
	assert.Contains(t, out.Raw, "comprehensive report on Acme")
	assert.Equal(t, uint64(2), out.Usage.Requests)
}

type fakeSession struct {
	id     string
	items  []memory.TResponseInputItem
	closed bool
}

func (s *fakeSession) SessionID(context.Context) string { return s.id }

func (s *fakeSession) GetItems(context.Context, int) ([]memory.TResponseInputItem, error) {
	return s.items, nil
}

func (s *fakeSession) AddItems(_ context.Context, items []memory.TResponseInputItem) error {
	s.items = append(s.items, items...)
	return nil
}

func (s *fakeSession) PopItem(context.Context) (*memory.TResponseInputItem, error) { return nil, nil }

func (s *fakeSession) ClearSession(context.Context) error {
	s.items = nil
	return nil
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

func TestKickoff_RecordsSessions(t *testing.T) {
	def, err := DefaultDefinition()
	require.NoError(t, err)

	var sessions []*fakeSession
	open := func(_ context.Context, id string) (memory.Session, error) {
		s := &fakeSession{id: id}
		sessions = append(sessions, s)
		return s, nil
	}

	model := newRecordingModel(textOutput("a"), textOutput("b"))
	c := newTestCrew(t, def, model, WithSessions(open))

	out, err := c.Kickoff(context.Background(), Inputs{"company": "Acme"})
	require.NoError(t, err)

	require.Len(t, sessions, 2)
	assert.Equal(t, out.ID+"/research_task", sessions[0].id)
	assert.Equal(t, out.ID+"/analysis_task", sessions[1].id)
	for _, s := range sessions {
		assert.True(t, s.closed)
		assert.NotEmpty(t, s.items, "conversation saved to session")
	}
}

func TestBuildAgent_WebSearch(t *testing.T) {
	def, err := DefaultDefinition()
	require.NoError(t, err)

	for _, enabled := range []bool{false, true} {
		c := newTestCrew(t, def, DryRunModel{}, WithWebSearch(enabled))
		agent := c.buildAgent("researcher", def.Agents["researcher"])
		if enabled {
			require.Len(t, agent.Tools, 1)
			assert.Equal(t, ToolWebSearch, agent.Tools[0].ToolName())
		} else {
			assert.Empty(t, agent.Tools)
		}
	}
}

func TestNew_RequiresModel(t *testing.T) {
	def, err := DefaultDefinition()
	require.NoError(t, err)

	_, err = New(def)
	assert.Error(t, err)

	_, err = New(nil, WithModel(DryRunModel{}))
	assert.Error(t, err)

	c, err := New(def, WithModelProvider(NewProvider(ProviderParams{APIKey: "sk-test"})))
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", c.buildAgent("analyst", def.Agents["analyst"]).Model.Value.ModelName())
}
