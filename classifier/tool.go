package classifier

import (
	"context"

	"github.com/cloudwego/eino/components/model"
	"github.com/tbxark/voiceagent/structured"
	"github.com/tbxark/voiceagent/types"
)

// ToolBasedClassifier asks a tool-calling chat model to answer through the
// classify_intent tool.
type ToolBasedClassifier struct {
	chain *structured.Chain[*types.ClassifyRequest, types.AgentResponse]
}

func NewToolBasedClassifier(chatModel model.ToolCallingChatModel, opts ...Option) (*ToolBasedClassifier, error) {
	options := newOptions(opts...)
	chain, err := structured.NewChain[*types.ClassifyRequest, types.AgentResponse](
		chatModel,
		options.promptBuilder(withToolName(options.systemPrompt)),
		classifyToolName,
		classifyToolDescription,
	)
	if err != nil {
		return nil, err
	}
	return &ToolBasedClassifier{chain: chain}, nil
}

func (c *ToolBasedClassifier) Classify(ctx context.Context, req *types.ClassifyRequest) (*types.AgentResponse, error) {
	result, err := c.chain.Invoke(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := Validate(result); err != nil {
		return nil, err
	}
	return result, nil
}
