package llm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	ProviderGemini = "gemini"
	// DefaultGeminiModel is the Gemini model to use
	DefaultGeminiModel = "gemini-2.0-flash"
)

// Gemini wraps the Gemini client
type Gemini struct {
	client    *genai.Client
	modelName string
}

// NewGemini creates a new Gemini provider
func NewGemini(ctx context.Context, opts Options) (*Gemini, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(opts.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	modelName := opts.Model
	if modelName == "" {
		modelName = DefaultGeminiModel
	}

	return &Gemini{
		client:    client,
		modelName: modelName,
	}, nil
}

func (g *Gemini) Name() string { return ProviderGemini }

// Close closes the Gemini client
func (g *Gemini) Close() {
	g.client.Close()
}

// Complete sends the prompt to Gemini and concatenates the text parts of the first candidate.
func (g *Gemini) Complete(ctx context.Context, req Request) (string, error) {
	// Models are configured per call so concurrent requests never share mutable settings.
	model := g.client.GenerativeModel(g.modelName)
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(req.Temperature)
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens))
	}

	start := time.Now()
	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", classifyGeminiError(err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	var totalTokens int32
	if resp.UsageMetadata != nil {
		totalTokens = resp.UsageMetadata.TotalTokenCount
	}
	log.Printf("INFO: gemini completion model=%s tokens=%d took %s", g.modelName, totalTokens, time.Since(start))

	return sb.String(), nil
}

// classifyGeminiError marks rate limiting and exhausted quota with ErrQuotaExceeded.
func classifyGeminiError(err error) error {
	if isGeminiQuotaError(err) {
		return quotaError(err)
	}
	return fmt.Errorf("failed to generate content: %w", err)
}

func isGeminiQuotaError(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusTooManyRequests {
		return true
	}
	return status.Code(err) == codes.ResourceExhausted
}
