package classifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cloudwego/eino/callbacks"
	"github.com/tbxark/voiceagent/structured"
	"github.com/tbxark/voiceagent/types"
)

const (
	// ConnectionApology is spoken when the classifier could not be reached.
	ConnectionApology = "I am having trouble connecting to the server."
	// ConfusedApology is spoken when the classifier answered with something unusable.
	ConfusedApology = "I understood, but I got confused executing the command."
)

// Client wraps a Classifier so that every call yields a usable response.
// Transport failures and malformed output both become an INFO apology.
type Client struct {
	classifier Classifier
}

func NewClient(classifier Classifier) *Client {
	return &Client{classifier: classifier}
}

// Classify never returns nil.
func (c *Client) Classify(ctx context.Context, req *types.ClassifyRequest) (resp *types.AgentResponse) {
	ctx = callbacks.EnsureRunInfo(ctx, "IntentClassifier", "Classifier")
	ctx = callbacks.OnStart(ctx, map[string]any{
		"request": req,
	})

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic in classifier: %v", r)
			callbacks.OnError(ctx, err)
			resp = Fallback(err)
		}
	}()

	if c == nil || c.classifier == nil {
		return Fallback(errors.New("classifier not configured"))
	}
	result, err := c.classifier.Classify(ctx, req)
	if err == nil {
		err = Validate(result)
	}
	if err != nil {
		slog.Warn("classification failed", "error", err)
		callbacks.OnError(ctx, err)
		return Fallback(err)
	}

	callbacks.OnEnd(ctx, map[string]any{
		"intent": string(result.Intent),
	})
	return result
}

// Fallback builds the INFO apology for a failed classification.
func Fallback(err error) *types.AgentResponse {
	says := ConnectionApology
	if errors.Is(err, ErrInvalidResponse) ||
		errors.Is(err, structured.ErrNoStructuredOutput) ||
		errors.Is(err, structured.ErrMalformedOutput) {
		says = ConfusedApology
	}
	return &types.AgentResponse{AgentSays: says, Intent: types.IntentInfo}
}
