// Package llm wraps the text-generation APIs used to produce quiz questions.
package llm

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrQuotaExceeded is wrapped into provider errors caused by rate limiting or exhausted quota.
var ErrQuotaExceeded = errors.New("llm quota exceeded")

// Request is a single-prompt completion request.
type Request struct {
	Prompt      string
	Temperature float32
	MaxTokens   int
}

// Provider turns a prompt into free text.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req Request) (string, error)
	Close()
}

// Options selects and configures a provider.
type Options struct {
	Provider string // "openai" or "gemini"
	APIKey   string
	Model    string
	BaseURL  string // openai only, for compatible gateways
}

// NewProvider builds the provider named in opts.
func NewProvider(ctx context.Context, opts Options) (Provider, error) {
	switch strings.ToLower(opts.Provider) {
	case "", ProviderOpenAI:
		return NewOpenAI(opts)
	case ProviderGemini:
		return NewGemini(ctx, opts)
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", opts.Provider)
	}
}

// quotaError marks err as a quota failure while keeping the provider error reachable.
func quotaError(err error) error {
	return fmt.Errorf("%w: %w", ErrQuotaExceeded, err)
}

var codeFencePattern = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// ExtractJSON pulls the JSON payload out of a model reply that may be wrapped in a
// markdown code block or surrounded by prose. Text with no JSON is returned trimmed.
func ExtractJSON(text string) string {
	text = strings.TrimSpace(text)
	if m := codeFencePattern.FindStringSubmatch(text); len(m) > 1 {
		text = strings.TrimSpace(m[1])
	}
	if strings.HasPrefix(text, "[") || strings.HasPrefix(text, "{") {
		return text
	}

	start := strings.IndexAny(text, "[{")
	if start < 0 {
		return text
	}
	closing := byte(']')
	if text[start] == '{' {
		closing = '}'
	}
	if end := strings.LastIndexByte(text, closing); end > start {
		return text[start : end+1]
	}
	return text
}
