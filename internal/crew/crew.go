// Package crew runs a sequential crew of LLM agents.
//
// A crew is loaded from a Definition (agents plus an ordered task list).
// Kickoff interpolates the inputs into every template, then runs each task
// with its agent, feeding earlier task outputs forward as context. The raw
// output of the last task is the crew's result.
package crew

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nlpodyssey/openai-agents-go/agents"
	"github.com/nlpodyssey/openai-agents-go/memory"
	"github.com/nlpodyssey/openai-agents-go/tracing"
	"github.com/nlpodyssey/openai-agents-go/usage"
	"go.uber.org/zap"

	"github.com/kokjohn0824/financial-researcher/internal/i18n"
)

const (
	// DefaultModel is used when neither the agent nor the crew names one.
	DefaultModel = "gpt-4o-mini"
	// DefaultMaxTurns bounds the model calls of a single task.
	DefaultMaxTurns = 10

	workflowName = "financial-researcher"
)

// TaskOutput is the result of one task.
type TaskOutput struct {
	Name        string
	Agent       string
	Description string
	Raw         string
	OutputFile  string // absolute path, empty when the task has none
	Duration    time.Duration
}

// Output is the result of a kickoff.
type Output struct {
	// ID identifies the kickoff; transcript sessions are keyed by it.
	ID    string
	Raw   string
	Tasks []TaskOutput
	Usage usage.Usage
}

// ReportFiles lists the files written by tasks with an output_file.
func (o *Output) ReportFiles() []string {
	var files []string
	for _, t := range o.Tasks {
		if t.OutputFile != "" {
			files = append(files, t.OutputFile)
		}
	}
	return files
}

// TaskError reports the task that aborted a kickoff.
type TaskError struct {
	KickoffID string
	Task      string
	Err       error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("task %s: %v", e.Task, e.Err)
}

func (e *TaskError) Unwrap() error {
	return e.Err
}

// TaskEvent is reported before and after each task runs.
type TaskEvent struct {
	Index   int // 1-based
	Total   int
	Task    string
	Agent   string
	Done    bool
	Elapsed time.Duration
	Err     error
}

// SessionFunc opens the conversation session a task is recorded into.
// Sessions implementing io.Closer are closed when the task ends.
type SessionFunc func(ctx context.Context, sessionID string) (memory.Session, error)

// Option configures a Crew.
type Option func(*Crew)

// WithModelProvider sets the provider that resolves model names.
func WithModelProvider(p agents.ModelProvider) Option {
	return func(c *Crew) { c.provider = p }
}

// WithModel makes every agent use m, ignoring model names.
func WithModel(m agents.Model) Option {
	return func(c *Crew) { c.model = m }
}

// WithDefaultModel sets the model name for agents without an llm entry.
func WithDefaultModel(name string) Option {
	return func(c *Crew) {
		if name != "" {
			c.defaultModel = name
		}
	}
}

// WithMaxTurns sets the turn limit for agents without a max_turns entry.
func WithMaxTurns(n int) Option {
	return func(c *Crew) {
		if n > 0 {
			c.maxTurns = n
		}
	}
}

// WithTracing enables the agents SDK trace export.
func WithTracing(enabled bool) Option {
	return func(c *Crew) { c.tracing = enabled }
}

// WithOutputDir sets the directory relative output_file paths resolve against.
func WithOutputDir(dir string) Option {
	return func(c *Crew) { c.outputDir = dir }
}

// WithLogger sets the execution logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Crew) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithWebSearch attaches the hosted web search tool to agents that list it.
func WithWebSearch(enabled bool) Option {
	return func(c *Crew) { c.webSearch = enabled }
}

// WithSessions records every task conversation into sessions from fn.
func WithSessions(fn SessionFunc) Option {
	return func(c *Crew) { c.sessions = fn }
}

// WithTaskHook registers a callback for task progress.
func WithTaskHook(fn func(TaskEvent)) Option {
	return func(c *Crew) { c.onTask = fn }
}

// Crew is a configured, reusable crew. Kickoff may be called repeatedly;
// each call is independent.
type Crew struct {
	def          *Definition
	provider     agents.ModelProvider
	model        agents.Model
	defaultModel string
	maxTurns     int
	tracing      bool
	outputDir    string
	logger       *zap.Logger
	webSearch    bool
	sessions     SessionFunc
	onTask       func(TaskEvent)
}

// New creates a crew from a validated definition.
func New(def *Definition, opts ...Option) (*Crew, error) {
	if def == nil {
		return nil, fmt.Errorf("crew definition is required")
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}

	c := &Crew{
		def:          def,
		defaultModel: DefaultModel,
		maxTurns:     DefaultMaxTurns,
		outputDir:    ".",
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.model == nil && c.provider == nil {
		return nil, fmt.Errorf("a model provider or a fixed model is required")
	}
	return c, nil
}

// preparedTask is a task with every template resolved.
type preparedTask struct {
	spec           TaskSpec
	description    string
	expectedOutput string
	outputFile     string
	agentName      string
	agent          AgentSpec
}

// prepare interpolates all templates so a missing input fails before any model call.
func (c *Crew) prepare(inputs Inputs) ([]preparedTask, error) {
	resolved := make(map[string]AgentSpec, len(c.def.Agents))
	for name, a := range c.def.Agents {
		var err error
		out := a
		if out.Role, err = interpolateField("agent "+name+" role", a.Role, inputs); err != nil {
			return nil, err
		}
		if out.Goal, err = interpolateField("agent "+name+" goal", a.Goal, inputs); err != nil {
			return nil, err
		}
		if out.Backstory, err = interpolateField("agent "+name+" backstory", a.Backstory, inputs); err != nil {
			return nil, err
		}
		resolved[name] = out
	}

	tasks := make([]preparedTask, 0, len(c.def.Tasks))
	for _, t := range c.def.Tasks {
		p := preparedTask{spec: t, agentName: t.Agent, agent: resolved[t.Agent]}
		var err error
		if p.description, err = interpolateField("task "+t.Name+" description", t.Description, inputs); err != nil {
			return nil, err
		}
		if p.expectedOutput, err = interpolateField("task "+t.Name+" expected_output", t.ExpectedOutput, inputs); err != nil {
			return nil, err
		}
		if p.outputFile, err = interpolateField("task "+t.Name+" output_file", t.OutputFile, inputs); err != nil {
			return nil, err
		}
		tasks = append(tasks, p)
	}
	return tasks, nil
}

// Kickoff runs every task in order and returns the crew's output.
// The first failing task aborts the kickoff with a *TaskError.
func (c *Crew) Kickoff(ctx context.Context, inputs Inputs) (*Output, error) {
	out := &Output{ID: uuid.NewString()}
	log := c.logger.With(zap.String("kickoff_id", out.ID))

	// spans opened under a disabled run config are otherwise logged on stderr
	tracing.SetTracingDisabled(!c.tracing)

	tasks, err := c.prepare(inputs)
	if err != nil {
		log.Error("kickoff rejected", zap.Error(err))
		return nil, err
	}

	log.Info("kickoff started", zap.Int("tasks", len(tasks)), zap.Any("inputs", inputs))
	start := time.Now()

	raws := make(map[string]string, len(tasks))
	previous := ""
	for i, t := range tasks {
		c.notify(TaskEvent{Index: i + 1, Total: len(tasks), Task: t.spec.Name, Agent: t.agentName})
		taskStart := time.Now()

		taskCtx := t.contextText(raws, previous)
		raw, u, err := c.runTask(ctx, log, out.ID, t, taskCtx)
		elapsed := time.Since(taskStart)
		if err == nil && t.outputFile != "" {
			var path string
			path, err = c.writeOutputFile(t.outputFile, raw)
			t.outputFile = path
		}
		c.notify(TaskEvent{Index: i + 1, Total: len(tasks), Task: t.spec.Name, Agent: t.agentName, Done: true, Elapsed: elapsed, Err: err})
		if err != nil {
			log.Error("task failed", zap.String("task", t.spec.Name), zap.Error(err))
			return nil, &TaskError{KickoffID: out.ID, Task: t.spec.Name, Err: err}
		}

		out.Usage.Add(u)
		out.Tasks = append(out.Tasks, TaskOutput{
			Name:        t.spec.Name,
			Agent:       t.agentName,
			Description: t.description,
			Raw:         raw,
			OutputFile:  t.outputFile,
			Duration:    elapsed,
		})
		raws[t.spec.Name] = raw
		previous = raw
		log.Info("task finished", zap.String("task", t.spec.Name), zap.Duration("elapsed", elapsed))
	}

	out.Raw = previous
	log.Info("kickoff finished",
		zap.Duration("elapsed", time.Since(start)),
		zap.Uint64("requests", out.Usage.Requests),
		zap.Uint64("total_tokens", out.Usage.TotalTokens),
	)
	return out, nil
}

// contextText joins the outputs of the tasks named in context, or returns the
// previous task's output when the task lists none.
func (t preparedTask) contextText(raws map[string]string, previous string) string {
	if len(t.spec.Context) == 0 {
		return previous
	}
	parts := make([]string, 0, len(t.spec.Context))
	for _, name := range t.spec.Context {
		parts = append(parts, raws[name])
	}
	return strings.Join(parts, "\n\n----------\n\n")
}

func (t preparedTask) prompt(contextText string) string {
	var sb strings.Builder
	sb.WriteString(t.description)
	if t.expectedOutput != "" {
		fmt.Fprintf(&sb, i18n.CrewTaskExpected, t.expectedOutput)
	}
	if contextText != "" {
		fmt.Fprintf(&sb, i18n.CrewTaskContext, contextText)
	}
	return sb.String()
}

func (c *Crew) buildAgent(name string, spec AgentSpec) *agents.Agent {
	a := agents.New(name).
		WithInstructions(fmt.Sprintf(i18n.CrewAgentInstructions, spec.Role, spec.Backstory, spec.Goal))

	if c.model != nil {
		a = a.WithModelInstance(c.model)
	} else {
		a = a.WithModel(cmp.Or(spec.LLM, c.defaultModel))
	}

	for _, tool := range spec.Tools {
		if tool == ToolWebSearch && c.webSearch {
			a = a.WithTools(agents.WebSearchTool{})
		}
	}
	return a
}

func (c *Crew) runTask(ctx context.Context, log *zap.Logger, kickoffID string, t preparedTask, contextText string) (string, *usage.Usage, error) {
	maxTurns := c.maxTurns
	if t.agent.MaxTurns > 0 {
		maxTurns = t.agent.MaxTurns
	}

	cfg := agents.RunConfig{
		ModelProvider:   c.provider,
		MaxTurns:        uint64(maxTurns),
		TracingDisabled: !c.tracing,
		WorkflowName:    workflowName,
		GroupID:         kickoffID,
		Hooks:           logHooks{logger: log.With(zap.String("task", t.spec.Name))},
	}

	if c.sessions != nil {
		session, err := c.sessions(ctx, kickoffID+"/"+t.spec.Name)
		if err != nil {
			return "", nil, fmt.Errorf("failed to open transcript session: %w", err)
		}
		if closer, ok := session.(io.Closer); ok {
			defer closer.Close()
		}
		cfg.Session = session
	}

	agent := c.buildAgent(t.agentName, t.agent)
	prompt := t.prompt(contextText)
	log.Debug("task prompt", zap.String("task", t.spec.Name), zap.String("prompt", prompt))

	result, err := agents.Runner{Config: cfg}.Run(ctx, agent, prompt)
	if err != nil {
		return "", nil, err
	}

	return finalText(result), responseUsage(result.RawResponses), nil
}

// responseUsage sums token counts over the model responses of one run and
// counts one request per response. The runner bumps Requests on the response
// usage it is handed, so that field is not summed.
func responseUsage(responses []agents.ModelResponse) *usage.Usage {
	total := usage.NewUsage()
	for _, resp := range responses {
		total.Requests++
		if resp.Usage == nil {
			continue
		}
		total.InputTokens += resp.Usage.InputTokens
		total.OutputTokens += resp.Usage.OutputTokens
		total.TotalTokens += resp.Usage.TotalTokens
		total.InputTokensDetails.CachedTokens += resp.Usage.InputTokensDetails.CachedTokens
		total.OutputTokensDetails.ReasoningTokens += resp.Usage.OutputTokensDetails.ReasoningTokens
	}
	return total
}

func finalText(result *agents.RunResult) string {
	if s, ok := result.FinalOutput.(string); ok {
		return s
	}
	if result.FinalOutput != nil {
		return fmt.Sprint(result.FinalOutput)
	}
	return agents.ItemHelpers().TextMessageOutputs(result.NewItems)
}

func (c *Crew) writeOutputFile(name, raw string) (string, error) {
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.outputDir, name)
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(raw), 0644); err != nil {
		return "", fmt.Errorf("failed to write output file: %w", err)
	}
	return path, nil
}

func (c *Crew) notify(ev TaskEvent) {
	if c.onTask != nil {
		c.onTask(ev)
	}
}
