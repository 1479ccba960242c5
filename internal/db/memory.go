package db

import (
	"context"
	"sync"

	"quizgen/internal/models"

	"github.com/google/uuid"
)

// Memory is an in-process Store for local development and tests.
type Memory struct {
	mu       sync.RWMutex
	sets     map[uuid.UUID]models.QuestionSet
	sessions []models.ScoredSession
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{sets: make(map[uuid.UUID]models.QuestionSet)}
}

func (m *Memory) Ready(context.Context) bool { return true }

func (m *Memory) Close() {}

func (m *Memory) InsertQuestionSet(_ context.Context, set *models.QuestionSet) (*models.QuestionSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sets[set.ID]; !exists {
		stored := *set
		stored.Questions = append([]models.Question(nil), set.Questions...)
		stored.GameResults = nil
		m.sets[set.ID] = stored
	}
	return set, nil
}

func (m *Memory) InsertScoredSession(_ context.Context, session *models.ScoredSession) (*models.ScoredSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.sessions {
		if s.ID == session.ID {
			return session, nil
		}
	}
	stored := *session
	stored.UserAnswers = append([]string(nil), session.UserAnswers...)
	if session.QuestionSetID != nil {
		setID := *session.QuestionSetID
		stored.QuestionSetID = &setID
	}
	m.sessions = append(m.sessions, stored)
	return session, nil
}

func (m *Memory) GetQuestionSet(_ context.Context, id uuid.UUID) (*models.QuestionSet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	set, ok := m.sets[id]
	if !ok {
		return nil, ErrNotFound
	}
	set.Questions = append([]models.Question(nil), set.Questions...)
	for _, s := range m.sessions {
		if s.QuestionSetID != nil && *s.QuestionSetID == id {
			set.GameResults = append(set.GameResults, s)
		}
	}
	return &set, nil
}

// SessionCount returns how many scored sessions have been stored.
func (m *Memory) SessionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// SetCount returns how many question sets have been stored.
func (m *Memory) SetCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sets)
}
