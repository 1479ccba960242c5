package quiz

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"quizgen/internal/db"
	"quizgen/internal/llm"
	"quizgen/internal/models"
	"quizgen/internal/retry"

	"github.com/google/uuid"
)

// fakeStore wraps the memory store with a readiness switch and injectable failures.
type fakeStore struct {
	*db.Memory

	mu          sync.Mutex
	ready       bool
	failInserts int // number of inserts to fail before succeeding; -1 fails forever
	insertCalls int
	insertErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{Memory: db.NewMemory(), ready: true, insertErr: fmt.Errorf("connection reset")}
}

func (s *fakeStore) Ready(context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

func (s *fakeStore) shouldFail() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertCalls++
	if s.failInserts < 0 {
		return true
	}
	if s.failInserts > 0 {
		s.failInserts--
		return true
	}
	return false
}

func (s *fakeStore) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertCalls
}

func (s *fakeStore) InsertQuestionSet(ctx context.Context, set *models.QuestionSet) (*models.QuestionSet, error) {
	if s.shouldFail() {
		return nil, s.insertErr
	}
	return s.Memory.InsertQuestionSet(ctx, set)
}

func (s *fakeStore) InsertScoredSession(ctx context.Context, session *models.ScoredSession) (*models.ScoredSession, error) {
	if s.shouldFail() {
		return nil, s.insertErr
	}
	return s.Memory.InsertScoredSession(ctx, session)
}

// fakeProvider returns a canned reply and records the requests it saw.
type fakeProvider struct {
	mu       sync.Mutex
	reply    string
	err      error
	requests []llm.Request
}

func (p *fakeProvider) Name() string { return "fake" }
func (p *fakeProvider) Close() {}

func (p *fakeProvider) Complete(_ context.Context, req llm.Request) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(p.requests, req)
	return p.reply, p.err
}

func (p *fakeProvider) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.requests)
}

type fakeArchiver struct {
	archived []uuid.UUID
	err      error
}

func (a *fakeArchiver) ArchiveQuestionSet(_ context.Context, set *models.QuestionSet) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	a.archived = append(a.archived, set.ID)
	return "https://archive.test/" + set.ID.String() + ".json", nil
}

func fastExecutor() *retry.Executor {
	return &retry.Executor{MaxAttempts: 3, Timeout: time.Second, BaseDelay: time.Millisecond}
}

func sampleQuestions(topic string, n int) []models.Question {
	questions := make([]models.Question, n)
	for i := range questions {
		questions[i] = models.Question{
			Question:      fmt.Sprintf("%s question %d?", topic, i+1),
			Options:       []string{"A. one", "B. two", "C. three", "D. four"},
			CorrectAnswer: "B",
		}
	}
	return questions
}

func sampleReply(topic string, n int) string {
	b, err := json.Marshal(sampleQuestions(topic, n))
	if err != nil {
		panic(err)
	}
	return string(b)
}
