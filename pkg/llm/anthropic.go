package llm

import (
	"context"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type anthropicClient struct {
	spec   ModelSpec
	client anthropic.Client
}

func newAnthropicClient(spec ModelSpec) Client {
	opts := []option.RequestOption{option.WithAPIKey(spec.APIKey)}
	if spec.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(spec.BaseURL))
	}
	return &anthropicClient{spec: spec, client: anthropic.NewClient(opts...)}
}

func (a *anthropicClient) Generate(ctx context.Context, req Request) (Response, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.spec.ModelID),
		MaxTokens: int64(maxTokensOrDefault(req.MaxTokens)),
		Messages:  toAnthropicMessages(req.Messages),
	}
	if t := temperature(req.Temperature, a.spec.Temperature); t != nil {
		params.Temperature = anthropic.Float(*t)
	}

	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return Response{}, newLLMError(a.spec, 1, err)
	}

	var content string
	for _, block := range msg.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			content += text.Text
		}
	}

	return Response{
		Content: content,
		Model:   string(msg.Model),
		Usage: &Usage{
			InputTokens:  int(msg.Usage.InputTokens),
			OutputTokens: int(msg.Usage.OutputTokens),
		},
	}, nil
}

func (a *anthropicClient) CountTokens(text string) int {
	return approxTokenCount(text)
}

func toAnthropicMessages(msgs []Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(msgs))
	for _, m := range msgs {
		block := anthropic.NewTextBlock(m.Content)
		switch m.Role {
		case RoleAssistant:
			out = append(out, anthropic.NewAssistantMessage(block))
		default:
			out = append(out, anthropic.NewUserMessage(block))
		}
	}
	return out
}

func maxTokensOrDefault(n int) int {
	if n <= 0 {
		return 4096
	}
	return n
}

func temperature(req, spec *float64) *float64 {
	if req != nil {
		return req
	}
	return spec
}
