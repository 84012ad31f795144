package judge

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient implements Client for OpenAI-compatible chat endpoints.
type OpenAIClient struct {
	client *openai.Client
}

// NewOpenAIClient creates a new OpenAI judge client. A non-empty baseURL
// points the client at an OpenAI-compatible server.
func NewOpenAIClient(apiKey, baseURL string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, &PermanentError{Provider: "openai", Message: "API key is required"}
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIClient{client: openai.NewClientWithConfig(cfg)}, nil
}

// Query sends text to the named model as a chat completion.
func (c *OpenAIClient) Query(ctx context.Context, text, model string, opts *QueryOptions) (string, error) {
	if model == "" {
		return "", &PermanentError{Provider: "openai", Message: "no model specified"}
	}

	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	}
	if opts != nil {
		if opts.SystemPrompt != "" {
			req.Messages = append([]openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: opts.SystemPrompt},
			}, req.Messages...)
		}
		if opts.Temperature > 0 {
			req.Temperature = opts.Temperature
		}
		if opts.MaxTokens > 0 {
			req.MaxTokens = opts.MaxTokens
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classifyOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return "", &TransientError{Provider: "openai", Message: "no choices in response"}
	}
	return resp.Choices[0].Message.Content, nil
}

// Close is a no-op; the underlying client holds no persistent resources.
func (c *OpenAIClient) Close() error {
	return nil
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus("openai", apiErr.HTTPStatusCode, err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &TransientError{Provider: "openai", Message: "request failed", Cause: err}
}
