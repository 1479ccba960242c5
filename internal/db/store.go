package db

import (
	"context"
	"errors"
	"fmt"

	"quizgen/internal/config"
	"quizgen/internal/models"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("document not found")

// Store is the document store the generator and verifier write to. Inserts are
// keyed by the caller-assigned ID and are idempotent: writing the same ID twice
// leaves a single document.
type Store interface {
	Ready(ctx context.Context) bool
	InsertQuestionSet(ctx context.Context, set *models.QuestionSet) (*models.QuestionSet, error)
	InsertScoredSession(ctx context.Context, session *models.ScoredSession) (*models.ScoredSession, error)
	GetQuestionSet(ctx context.Context, id uuid.UUID) (*models.QuestionSet, error)
	Close()
}

// Open connects to the store selected by cfg.StoreDriver and applies migrations.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		if err := Migrate(ctx, config.DriverPostgres, cfg.DatabaseURL); err != nil {
			return nil, err
		}
		return NewDB(ctx, cfg.DatabaseURL)
	case config.DriverSQLite:
		return OpenSQLite(ctx, cfg.SQLitePath)
	case config.DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}
