package crew

import (
	"github.com/nlpodyssey/openai-agents-go/agents"
	"github.com/openai/openai-go/v2/packages/param"
)

// ProviderParams configures the OpenAI-compatible model provider.
type ProviderParams struct {
	APIKey       string
	BaseURL      string // empty uses the OpenAI default
	UseResponses bool   // Responses API instead of Chat Completions
}

// NewProvider returns a model provider that resolves plain model names to
// OpenAI models and prefixed names (e.g. "openai/gpt-4o") through the
// multi-provider mapping.
func NewProvider(p ProviderParams) agents.ModelProvider {
	params := agents.NewMultiProviderParams{
		OpenaiUseResponses: param.NewOpt(p.UseResponses),
	}
	if p.APIKey != "" {
		params.OpenaiAPIKey = param.NewOpt(p.APIKey)
	}
	if p.BaseURL != "" {
		params.OpenaiBaseURL = param.NewOpt(p.BaseURL)
	}
	return agents.NewMultiProvider(params)
}
