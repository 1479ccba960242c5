package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"quizgen/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB holds the Postgres connection pool. Documents are stored as JSONB.
type DB struct {
	Pool *pgxpool.Pool
}

// NewDB creates a new DB instance
func NewDB(ctx context.Context, dbURL string) (*DB, error) {
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	log.Printf("INFO: Postgres pool created (max conns %d)", pool.Config().MaxConns)
	return &DB{Pool: pool}, nil
}

// Close closes the database connection
func (db *DB) Close() {
	db.Pool.Close()
}

// Ready pings the pool. The pool reconnects on its own; this only reports the current state.
func (db *DB) Ready(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := db.Pool.Ping(ctx); err != nil {
		log.Printf("WARN: database ping failed: %v", err)
		return false
	}
	return true
}

// InsertQuestionSet stores set under its ID. A repeated insert of the same ID is a no-op.
func (db *DB) InsertQuestionSet(ctx context.Context, set *models.QuestionSet) (*models.QuestionSet, error) {
	questions, err := json.Marshal(set.Questions)
	if err != nil {
		return nil, fmt.Errorf("failed to encode questions: %w", err)
	}

	_, err = db.Pool.Exec(ctx,
		`INSERT INTO question_sets (id, topic, questions, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO NOTHING`,
		set.ID, set.Topic, questions, set.CreatedAt, set.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert question set %s: %w", set.ID, err)
	}
	return set, nil
}

// InsertScoredSession stores session under its ID. A repeated insert of the same ID is a no-op.
func (db *DB) InsertScoredSession(ctx context.Context, session *models.ScoredSession) (*models.ScoredSession, error) {
	answers, err := json.Marshal(session.UserAnswers)
	if err != nil {
		return nil, fmt.Errorf("failed to encode user answers: %w", err)
	}

	_, err = db.Pool.Exec(ctx,
		`INSERT INTO scored_sessions (id, question_set_id, topic, user_answers, correct_count, incorrect_count, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO NOTHING`,
		session.ID, session.QuestionSetID, session.Topic, answers,
		session.CorrectCount, session.IncorrectCount, session.Timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert scored session %s: %w", session.ID, err)
	}
	return session, nil
}

// GetQuestionSet loads a set together with the sessions that scored it.
func (db *DB) GetQuestionSet(ctx context.Context, id uuid.UUID) (*models.QuestionSet, error) {
	var (
		set       models.QuestionSet
		questions []byte
	)
	err := db.Pool.QueryRow(ctx,
		`SELECT id, topic, questions, created_at, updated_at FROM question_sets WHERE id = $1`, id,
	).Scan(&set.ID, &set.Topic, &questions, &set.CreatedAt, &set.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get question set %s: %w", id, err)
	}
	if err := json.Unmarshal(questions, &set.Questions); err != nil {
		return nil, fmt.Errorf("failed to decode questions of set %s: %w", id, err)
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT id, question_set_id, topic, user_answers, correct_count, incorrect_count, created_at
		 FROM scored_sessions WHERE question_set_id = $1 ORDER BY created_at`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions of set %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			s       models.ScoredSession
			answers []byte
		)
		if err := rows.Scan(&s.ID, &s.QuestionSetID, &s.Topic, &answers, &s.CorrectCount, &s.IncorrectCount, &s.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan session of set %s: %w", id, err)
		}
		if err := json.Unmarshal(answers, &s.UserAnswers); err != nil {
			return nil, fmt.Errorf("failed to decode answers of session %s: %w", s.ID, err)
		}
		set.GameResults = append(set.GameResults, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions of set %s: %w", id, err)
	}

	return &set, nil
}
