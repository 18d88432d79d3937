package crew

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nlpodyssey/openai-agents-go/agents"
	"github.com/nlpodyssey/openai-agents-go/usage"
	"github.com/openai/openai-go/v2/responses"
	"github.com/openai/openai-go/v2/shared/constant"

	"github.com/kokjohn0824/financial-researcher/internal/i18n"
)

// DryRunModel answers every request by echoing the prompt it was given.
// It lets the whole crew run offline.
type DryRunModel struct {
	// Name labels the echoed answer.
	Name string
}

var _ agents.Model = DryRunModel{}

// GetResponse returns a single assistant message quoting the last user message.
func (m DryRunModel) GetResponse(_ context.Context, params agents.ModelResponseParams) (*agents.ModelResponse, error) {
	name := m.Name
	if name == "" {
		name = "dry-run"
	}
	text := fmt.Sprintf(i18n.CrewDryRunOutput, name, lastUserText(params.Input))

	return &agents.ModelResponse{
		Output: []agents.TResponseOutputItem{{
			ID:   "dry-run",
			Type: "message",
			Role: constant.ValueOf[constant.Assistant](),
			Content: []responses.ResponseOutputMessageContentUnion{{
				Text: text,
				Type: "output_text",
			}},
			Status: string(responses.ResponseOutputMessageStatusCompleted),
		}},
		Usage: &usage.Usage{},
	}, nil
}

// StreamResponse is not supported; the crew never streams.
func (DryRunModel) StreamResponse(context.Context, agents.ModelResponseParams, agents.ModelStreamResponseCallback) error {
	return errors.New("dry-run model does not stream")
}

func lastUserText(input agents.Input) string {
	switch v := input.(type) {
	case agents.InputString:
		return string(v)
	case agents.InputItems:
		for i := len(v) - 1; i >= 0; i-- {
			if msg := v[i].OfMessage; msg != nil && msg.Role == responses.EasyInputMessageRoleUser {
				return strings.TrimSpace(msg.Content.OfString.Or(""))
			}
		}
	}
	return ""
}
