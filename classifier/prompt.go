package classifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/tbxark/voiceagent/dialogue"
	"github.com/tbxark/voiceagent/structured"
	"github.com/tbxark/voiceagent/types"
)

const (
	classifyToolName        = "classify_intent"
	classifyToolDescription = "Classify the user's latest utterance and return what the assistant says next."
)

// DefaultSystemPrompt is the instruction block shared by every LLM-backed
// classifier. It may contain a single "%s" placeholder for the tool name.
const DefaultSystemPrompt = `
You are a website assistant agent for a developer portfolio.
Your job is to understand the user command and decide the next step.

MODES:
1. Navigation/Control: user wants to go somewhere or scroll.
2. Information: user asks general questions about the portfolio owner.
3. Form Filling: user wants to "contact", "hire", or "send a message".

FORM FILLING RULES:
- If user intent is to contact, check if required fields (name, email, message) are missing.
- Ask ONE question at a time to fill missing fields, using intent CLARIFY.
- If the user provides data, return intent UPDATE_FORM with only the extracted fields in "formData".
- If all fields are present, ask for confirmation to send.
- Return SUBMIT_FORM only after explicit confirmation.

Allowed intents:
NAVIGATE (target: home, projects, contact)
SCROLL (direction: up, down)
INFO
CLARIFY
UPDATE_FORM
SUBMIT_FORM

Answer by calling the '%s' tool. Do not explain anything.
`

func withToolName(systemPrompt string) string {
	return strings.ReplaceAll(systemPrompt, "%s", classifyToolName)
}

type PromptBuilder func(systemPrompt string) structured.PromptBuilder[*types.ClassifyRequest]

type options struct {
	systemPrompt  string
	promptBuilder PromptBuilder
	spec          dialogue.FormSpec
	models        []string
}

type Option func(*options)

func WithSystemPrompt(prompt string) Option {
	return func(o *options) {
		o.systemPrompt = prompt
	}
}

func WithPromptBuilder(builder PromptBuilder) Option {
	return func(o *options) {
		o.promptBuilder = builder
	}
}

func WithFormSpec(spec dialogue.FormSpec) Option {
	return func(o *options) {
		o.spec = spec
	}
}

// WithModels sets the ordered model list tried by GenAIClassifier.
func WithModels(models ...string) Option {
	return func(o *options) {
		o.models = models
	}
}

func newOptions(opts ...Option) *options {
	opt := &options{
		systemPrompt: DefaultSystemPrompt,
		spec:         dialogue.ContactSpec{},
	}
	opt.promptBuilder = func(systemPrompt string) structured.PromptBuilder[*types.ClassifyRequest] {
		return func(ctx context.Context, req *types.ClassifyRequest) ([]*schema.Message, error) {
			message, err := RenderUserPrompt(opt.spec, req)
			if err != nil {
				return nil, fmt.Errorf("render classify prompt failed: %w", err)
			}
			return []*schema.Message{
				schema.SystemMessage(systemPrompt),
				schema.UserMessage(message),
			}, nil
		}
	}
	for _, o := range opts {
		o(opt)
	}
	return opt
}

// RenderUserPrompt renders the per-turn context: the utterance, the pending
// question, the full form and what is still missing from it.
func RenderUserPrompt(spec dialogue.FormSpec, req *types.ClassifyRequest) (string, error) {
	formSchema, err := types.ContactFormSchema()
	if err != nil {
		return "", err
	}
	pc := &types.PromptContext{
		Request:    req,
		FormSchema: formSchema,
	}
	if spec != nil && req != nil && req.CurrentFormState != nil {
		pc.MissingFields = spec.MissingFacts(*req.CurrentFormState)
		pc.ValidationErrors = spec.ValidateFacts(*req.CurrentFormState)
	}
	return types.FormatClassifyRequest(pc)
}
