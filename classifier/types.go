package classifier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/tbxark/voiceagent/structured"
	"github.com/tbxark/voiceagent/types"
)

// ErrInvalidResponse marks classifier output that does not match the
// AgentResponse shape or names an unknown intent.
var ErrInvalidResponse = errors.New("invalid classifier response")

type Classifier interface {
	Classify(ctx context.Context, req *types.ClassifyRequest) (*types.AgentResponse, error)
}

// ClassifierFunc adapts a plain function to Classifier.
type ClassifierFunc func(ctx context.Context, req *types.ClassifyRequest) (*types.AgentResponse, error)

func (f ClassifierFunc) Classify(ctx context.Context, req *types.ClassifyRequest) (*types.AgentResponse, error) {
	return f(ctx, req)
}

// Decode parses raw classifier output. Markdown fences and text around the
// outermost JSON object are tolerated.
func Decode(raw string) (*types.AgentResponse, error) {
	body := structured.ExtractJSONObject(raw)
	if body == "" {
		return nil, fmt.Errorf("%w: no JSON object in %q", ErrInvalidResponse, truncate(raw, 80))
	}
	var resp types.AgentResponse
	if err := sonic.UnmarshalString(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if err := Validate(&resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Validate normalizes the intent in place and rejects unknown kinds.
func Validate(resp *types.AgentResponse) error {
	if resp == nil {
		return fmt.Errorf("%w: empty response", ErrInvalidResponse)
	}
	resp.Intent = types.Intent(strings.ToUpper(strings.TrimSpace(string(resp.Intent))))
	if !resp.Intent.Valid() {
		return fmt.Errorf("%w: unknown intent %q", ErrInvalidResponse, resp.Intent)
	}
	if resp.Intent != types.IntentUpdateForm {
		resp.FormData = nil
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
