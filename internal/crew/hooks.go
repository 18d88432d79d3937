package crew

import (
	"context"
	"fmt"

	"github.com/nlpodyssey/openai-agents-go/agents"
	"github.com/openai/openai-go/v2/packages/param"
	"go.uber.org/zap"
)

// logHooks writes agent lifecycle events to the execution log.
type logHooks struct {
	logger *zap.Logger
}

var _ agents.RunHooks = logHooks{}

func (h logHooks) OnLLMStart(_ context.Context, agent *agents.Agent, systemPrompt param.Opt[string], inputItems []agents.TResponseInputItem) error {
	h.logger.Debug("llm request",
		zap.String("agent", agent.Name),
		zap.String("system_prompt", systemPrompt.Or("")),
		zap.Int("input_items", len(inputItems)),
	)
	return nil
}

func (h logHooks) OnLLMEnd(_ context.Context, agent *agents.Agent, response agents.ModelResponse) error {
	fields := []zap.Field{
		zap.String("agent", agent.Name),
		zap.Int("output_items", len(response.Output)),
	}
	if response.Usage != nil {
		fields = append(fields,
			zap.Uint64("input_tokens", response.Usage.InputTokens),
			zap.Uint64("output_tokens", response.Usage.OutputTokens),
		)
	}
	h.logger.Debug("llm response", fields...)
	return nil
}

func (h logHooks) OnAgentStart(_ context.Context, agent *agents.Agent) error {
	h.logger.Info("agent started", zap.String("agent", agent.Name))
	return nil
}

func (h logHooks) OnAgentEnd(_ context.Context, agent *agents.Agent, output any) error {
	h.logger.Info("agent finished",
		zap.String("agent", agent.Name),
		zap.String("output", fmt.Sprint(output)),
	)
	return nil
}

func (h logHooks) OnHandoff(_ context.Context, fromAgent, toAgent *agents.Agent) error {
	h.logger.Info("handoff", zap.String("from", fromAgent.Name), zap.String("to", toAgent.Name))
	return nil
}

func (h logHooks) OnToolStart(_ context.Context, agent *agents.Agent, tool agents.Tool) error {
	h.logger.Info("tool started", zap.String("agent", agent.Name), zap.String("tool", tool.ToolName()))
	return nil
}

func (h logHooks) OnToolEnd(_ context.Context, agent *agents.Agent, tool agents.Tool, result any) error {
	h.logger.Info("tool finished",
		zap.String("agent", agent.Name),
		zap.String("tool", tool.ToolName()),
		zap.String("result", fmt.Sprint(result)),
	)
	return nil
}
