// Package judge provides LLM judge clients, retry policy, and the scoring
// oracle that converts raw judge responses into Verdicts.
package judge

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// QueryOptions carries optional per-query parameters.
type QueryOptions struct {
	SystemPrompt string
	Temperature  float32
	MaxTokens    int
}

// Client is an abstraction over LLM judge providers.
type Client interface {
	// Query sends text to the named model and returns the raw response text.
	// Failures are *TransientError or *PermanentError.
	Query(ctx context.Context, text, model string, opts *QueryOptions) (string, error)
	// Close releases any resources held by the client.
	Close() error
}

// GeminiClient implements Client for Google Gemini.
type GeminiClient struct {
	client *genai.Client
}

// NewGeminiClient creates a new Gemini judge client.
func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, &PermanentError{Provider: "gemini", Message: "API key is required"}
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{client: client}, nil
}

// Query sends text to the named Gemini model.
func (c *GeminiClient) Query(ctx context.Context, text, model string, opts *QueryOptions) (string, error) {
	if model == "" {
		return "", &PermanentError{Provider: "gemini", Message: "no model specified"}
	}

	gm := c.client.GenerativeModel(model)
	if opts != nil {
		if opts.SystemPrompt != "" {
			gm.SystemInstruction = &genai.Content{
				Parts: []genai.Part{genai.Text(opts.SystemPrompt)},
			}
		}
		if opts.Temperature > 0 {
			gm.SetTemperature(opts.Temperature)
		}
		if opts.MaxTokens > 0 {
			gm.SetMaxOutputTokens(int32(opts.MaxTokens))
		}
	}

	resp, err := gm.GenerateContent(ctx, genai.Text(text))
	if err != nil {
		return "", classifyGeminiError(err)
	}

	return extractGeminiText(resp)
}

// Close releases resources held by the client.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func classifyGeminiError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return classifyStatus("gemini", apiErr.Code, err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &TransientError{Provider: "gemini", Message: "request failed", Cause: err}
}

// extractGeminiText extracts text from a Gemini API response.
func extractGeminiText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", &TransientError{Provider: "gemini", Message: "no candidates in response"}
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", &TransientError{Provider: "gemini", Message: "no content in response"}
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", &TransientError{Provider: "gemini", Message: "no text parts in response"}
	}

	return strings.Join(parts, ""), nil
}
