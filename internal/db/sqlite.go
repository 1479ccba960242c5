package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"quizgen/internal/config"
	"quizgen/internal/models"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// SQLite is a single-file document store. JSON documents are kept in TEXT columns.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and applies migrations.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	conn, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := migrateDB(ctx, config.DriverSQLite, conn); err != nil {
		conn.Close()
		return nil, err
	}

	log.Printf("INFO: SQLite store opened at %s", path)
	return &SQLite{db: conn}, nil
}

func (s *SQLite) Close() {
	if err := s.db.Close(); err != nil {
		log.Printf("WARN: failed to close sqlite database: %v", err)
	}
}

func (s *SQLite) Ready(ctx context.Context) bool {
	return s.db.PingContext(ctx) == nil
}

func (s *SQLite) InsertQuestionSet(ctx context.Context, set *models.QuestionSet) (*models.QuestionSet, error) {
	questions, err := json.Marshal(set.Questions)
	if err != nil {
		return nil, fmt.Errorf("failed to encode questions: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO question_sets (id, topic, questions, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		set.ID.String(), set.Topic, string(questions), set.CreatedAt, set.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert question set %s: %w", set.ID, err)
	}
	return set, nil
}

func (s *SQLite) InsertScoredSession(ctx context.Context, session *models.ScoredSession) (*models.ScoredSession, error) {
	answers, err := json.Marshal(session.UserAnswers)
	if err != nil {
		return nil, fmt.Errorf("failed to encode user answers: %w", err)
	}

	var setID sql.NullString
	if session.QuestionSetID != nil {
		setID = sql.NullString{String: session.QuestionSetID.String(), Valid: true}
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO scored_sessions (id, question_set_id, topic, user_answers, correct_count, incorrect_count, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		session.ID.String(), setID, session.Topic, string(answers),
		session.CorrectCount, session.IncorrectCount, session.Timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert scored session %s: %w", session.ID, err)
	}
	return session, nil
}

func (s *SQLite) GetQuestionSet(ctx context.Context, id uuid.UUID) (*models.QuestionSet, error) {
	var (
		set       models.QuestionSet
		rawID     string
		questions string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, topic, questions, created_at, updated_at FROM question_sets WHERE id = ?", id.String(),
	).Scan(&rawID, &set.Topic, &questions, &set.CreatedAt, &set.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get question set %s: %w", id, err)
	}
	if set.ID, err = uuid.Parse(rawID); err != nil {
		return nil, fmt.Errorf("corrupt question set id %q: %w", rawID, err)
	}
	if err := json.Unmarshal([]byte(questions), &set.Questions); err != nil {
		return nil, fmt.Errorf("failed to decode questions of set %s: %w", id, err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, topic, user_answers, correct_count, incorrect_count, created_at FROM scored_sessions WHERE question_set_id = ? ORDER BY created_at",
		id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions of set %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			sess      models.ScoredSession
			sessionID string
			answers   string
		)
		if err := rows.Scan(&sessionID, &sess.Topic, &answers, &sess.CorrectCount, &sess.IncorrectCount, &sess.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan session of set %s: %w", id, err)
		}
		if sess.ID, err = uuid.Parse(sessionID); err != nil {
			return nil, fmt.Errorf("corrupt session id %q: %w", sessionID, err)
		}
		if err := json.Unmarshal([]byte(answers), &sess.UserAnswers); err != nil {
			return nil, fmt.Errorf("failed to decode answers of session %s: %w", sessionID, err)
		}
		setID := set.ID
		sess.QuestionSetID = &setID
		set.GameResults = append(set.GameResults, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions of set %s: %w", id, err)
	}

	return &set, nil
}
