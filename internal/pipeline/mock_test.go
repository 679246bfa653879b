package pipeline

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/forecast-cli/pkg/openrouter"
)

// --- OpenRouter Mock ---

type mockCompletionClient struct {
	mock.Mock
}

func (m *mockCompletionClient) ChatCompletion(ctx context.Context, req openrouter.ChatCompletionRequest) (*openrouter.ChatCompletionResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*openrouter.ChatCompletionResponse), args.Error(1)
}

// completionResponse builds a single-choice response around content.
func completionResponse(content string) *openrouter.ChatCompletionResponse {
	return &openrouter.ChatCompletionResponse{
		ID: "gen-1",
		Choices: []openrouter.Choice{
			{Index: 0, Message: openrouter.Message{Role: "assistant", Content: content}},
		},
		Usage: openrouter.Usage{PromptTokens: 100, CompletionTokens: 50},
	}
}
