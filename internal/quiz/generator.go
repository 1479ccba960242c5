package quiz

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"quizgen/internal/db"
	"quizgen/internal/llm"
	"quizgen/internal/models"
	"quizgen/internal/retry"

	"github.com/google/uuid"
)

// Archiver keeps an extra copy of generated sets outside the store.
type Archiver interface {
	ArchiveQuestionSet(ctx context.Context, set *models.QuestionSet) (string, error)
}

// Generator asks the model for a question set and stores it.
type Generator struct {
	Store    db.Store
	Provider llm.Provider
	Executor *retry.Executor
	Archiver Archiver // optional
}

// NewGenerator creates a generator with the default retry policy
func NewGenerator(store db.Store, provider llm.Provider) *Generator {
	return &Generator{
		Store:    store,
		Provider: provider,
		Executor: retry.New(),
	}
}

// Generate produces and persists a question set for topic. Only the store write is
// retried; the model call is made once.
func (g *Generator) Generate(ctx context.Context, topic string) (*models.QuestionSet, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, fmt.Errorf("%w: topic must be a non-empty string", ErrValidation)
	}

	if !g.Store.Ready(ctx) {
		return nil, fmt.Errorf("%w: database connection not ready", ErrServiceUnavailable)
	}

	log.Printf("INFO: Generating %d questions for topic %q with %s", QuestionCount, topic, g.Provider.Name())
	reply, err := g.Provider.Complete(ctx, llm.Request{
		Prompt:      BuildPrompt(topic, QuestionCount),
		Temperature: Temperature,
		MaxTokens:   MaxTokens,
	})
	if err != nil {
		if errors.Is(err, llm.ErrQuotaExceeded) {
			return nil, fmt.Errorf("%w: %w", ErrQuotaExceeded, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	questions, err := ParseQuestions(reply, QuestionCount)
	if err != nil {
		log.Printf("DEBUG: Raw reply for topic %q before parse error: %s", topic, reply)
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	// The ID is fixed before the first attempt so a retried insert cannot create a second document.
	now := time.Now().UTC()
	set := &models.QuestionSet{
		ID:        uuid.New(),
		Topic:     topic,
		Questions: questions,
		CreatedAt: now,
		UpdatedAt: now,
	}

	executor := g.Executor
	if executor == nil {
		executor = retry.New()
	}
	stored, err := retry.Run(ctx, executor, func(ctx context.Context) (*models.QuestionSet, error) {
		return g.Store.InsertQuestionSet(ctx, set)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	log.Printf("INFO: Stored question set %s (%d questions) for topic %q", stored.ID, len(stored.Questions), topic)

	if g.Archiver != nil {
		if url, err := g.Archiver.ArchiveQuestionSet(ctx, stored); err != nil {
			log.Printf("WARN: Failed to archive question set %s: %v", stored.ID, err)
		} else {
			log.Printf("INFO: Archived question set %s to %s", stored.ID, url)
		}
	}

	return stored, nil
}
