package llm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	ProviderOpenAI = "openai"
	// DefaultOpenAIModel matches the model the quiz prompt was tuned against
	DefaultOpenAIModel = openai.GPT3Dot5Turbo
)

// OpenAI is a Provider backed by the chat completions API.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates an OpenAI provider. BaseURL may point at any compatible endpoint.
func NewOpenAI(opts Options) (*OpenAI, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}

	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}

	model := opts.Model
	if model == "" {
		model = DefaultOpenAIModel
	}

	return &OpenAI{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}, nil
}

func (o *OpenAI) Name() string { return ProviderOpenAI }

func (o *OpenAI) Close() {}

// Complete sends the prompt as a single user message and returns the first choice's content.
func (o *OpenAI) Complete(ctx context.Context, req Request) (string, error) {
	start := time.Now()
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		if isOpenAIQuotaError(err) {
			return "", quotaError(err)
		}
		return "", fmt.Errorf("openai chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in openai response")
	}

	log.Printf("INFO: openai completion model=%s tokens=%d took %s", o.model, resp.Usage.TotalTokens, time.Since(start))
	return resp.Choices[0].Message.Content, nil
}

func isOpenAIQuotaError(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return true
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests {
		return true
	}
	return false
}
