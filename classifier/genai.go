package classifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tbxark/voiceagent/types"
	"google.golang.org/genai"
)

// DefaultGeminiModels is tried in order until one answers.
var DefaultGeminiModels = []string{
	"gemini-2.0-flash",
	"gemini-2.0-flash-lite",
	"gemini-flash-latest",
	"gemini-pro-latest",
}

// ContentGenerator is the subset of *genai.Models used by GenAIClassifier.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GenAIClassifier classifies with Gemini in JSON mode, falling through its
// model list on transport errors.
type GenAIClassifier struct {
	models       ContentGenerator
	modelNames   []string
	systemPrompt string
	options      *options
}

func NewGenAIClassifier(ctx context.Context, apiKey string, opts ...Option) (*GenAIClassifier, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is empty")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return NewGenAIClassifierWithGenerator(client.Models, opts...), nil
}

func NewGenAIClassifierWithGenerator(generator ContentGenerator, opts ...Option) *GenAIClassifier {
	options := newOptions(opts...)
	names := options.models
	if len(names) == 0 {
		names = DefaultGeminiModels
	}
	return &GenAIClassifier{
		models:       generator,
		modelNames:   names,
		systemPrompt: jsonModePrompt(options.systemPrompt),
		options:      options,
	}
}

func (c *GenAIClassifier) Classify(ctx context.Context, req *types.ClassifyRequest) (*types.AgentResponse, error) {
	prompt, err := RenderUserPrompt(c.options.spec, req)
	if err != nil {
		return nil, err
	}
	config := &genai.GenerateContentConfig{
		ResponseMIMEType:  "application/json",
		SystemInstruction: genai.NewContentFromText(c.systemPrompt, genai.RoleUser),
	}
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	var lastErr error
	for _, name := range c.modelNames {
		resp, err := c.models.GenerateContent(ctx, name, contents, config)
		if err != nil {
			slog.Warn("gemini model failed", "model", name, "error", err)
			lastErr = fmt.Errorf("gemini %s: %w", name, err)
			continue
		}
		text := resp.Text()
		if strings.TrimSpace(text) == "" {
			lastErr = fmt.Errorf("gemini %s: empty response", name)
			continue
		}
		// A model that answered but produced garbage is not retried.
		return Decode(text)
	}
	if lastErr == nil {
		lastErr = errors.New("no gemini models configured")
	}
	return nil, lastErr
}

func jsonModePrompt(systemPrompt string) string {
	prompt := strings.Replace(systemPrompt, "Answer by calling the '%s' tool.", "Return ONLY a JSON object matching the AgentResponse shape:\n"+
		`{"agent_says": string, "intent": string, "target"?: string, "direction"?: string, "formData"?: {"name"?: string, "email"?: string, "message"?: string, "isConfirmed"?: boolean}}`+
		".", 1)
	return withToolName(prompt)
}
