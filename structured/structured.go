package structured

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
)

var (
	ErrNoStructuredOutput = errors.New("no structured output in model response")
	ErrMalformedOutput    = errors.New("malformed structured output")
)

type PromptBuilder[TInput any] func(ctx context.Context, input TInput) ([]*schema.Message, error)

// Chain asks a tool-calling model for exactly one forced tool call and decodes
// its arguments into TOutput. Models that answer with plain JSON text instead
// of a tool call are accepted when TextFallback is set.
type Chain[TInput, TOutput any] struct {
	PromptBuilder PromptBuilder[TInput]
	ChatModel     model.ToolCallingChatModel
	ToolInfo      *schema.ToolInfo
	TextFallback  bool
}

func NewChain[TInput, TOutput any](
	chatModel model.ToolCallingChatModel,
	promptBuilder PromptBuilder[TInput],
	toolName string,
	toolDesc string,
) (*Chain[TInput, TOutput], error) {
	toolInfo, err := utils.GoStruct2ToolInfo[TOutput](toolName, toolDesc)
	if err != nil {
		return nil, fmt.Errorf("convert tool info failed: %w", err)
	}
	return &Chain[TInput, TOutput]{
		PromptBuilder: promptBuilder,
		ChatModel:     chatModel,
		ToolInfo:      toolInfo,
		TextFallback:  true,
	}, nil
}

func (s *Chain[TInput, TOutput]) Invoke(ctx context.Context, input TInput) (*TOutput, error) {
	messages, err := s.PromptBuilder(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("build prompt failed: %w", err)
	}

	response, err := s.ChatModel.Generate(ctx, messages,
		model.WithTools([]*schema.ToolInfo{s.ToolInfo}),
		model.WithToolChoice(schema.ToolChoiceForced, s.ToolInfo.Name),
	)
	if err != nil {
		return nil, fmt.Errorf("call model failed: %w", err)
	}
	return s.decode(response)
}

func (s *Chain[TInput, TOutput]) decode(msg *schema.Message) (*TOutput, error) {
	if msg == nil {
		return nil, ErrNoStructuredOutput
	}
	for _, tc := range msg.ToolCalls {
		if tc.Function.Name != "" && tc.Function.Name != s.ToolInfo.Name {
			continue
		}
		var result TOutput
		if err := sonic.UnmarshalString(tc.Function.Arguments, &result); err != nil {
			return nil, fmt.Errorf("%w: parse ToolCall arguments failed: %v", ErrMalformedOutput, err)
		}
		return &result, nil
	}
	if s.TextFallback && strings.TrimSpace(msg.Content) != "" {
		return DecodeJSONText[TOutput](msg.Content)
	}
	return nil, fmt.Errorf("%w: %s", ErrNoStructuredOutput, msg.Content)
}

func (s *Chain[TInput, TOutput]) GetToolInfo() *schema.ToolInfo {
	return s.ToolInfo
}

// DecodeJSONText decodes a JSON object embedded in free model text: markdown
// code fences are stripped and the outermost braces are taken.
func DecodeJSONText[T any](text string) (*T, error) {
	cleaned := ExtractJSONObject(text)
	if cleaned == "" {
		return nil, fmt.Errorf("%w: no JSON object found", ErrNoStructuredOutput)
	}
	var result T
	if err := sonic.UnmarshalString(cleaned, &result); err != nil {
		return nil, fmt.Errorf("%w: parse JSON text failed: %v", ErrMalformedOutput, err)
	}
	return &result, nil
}

func ExtractJSONObject(text string) string {
	cleaned := strings.ReplaceAll(text, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)
	first := strings.IndexByte(cleaned, '{')
	last := strings.LastIndexByte(cleaned, '}')
	if first < 0 || last <= first {
		return ""
	}
	return cleaned[first : last+1]
}
