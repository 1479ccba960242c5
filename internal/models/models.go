package models

import (
	"time"

	"github.com/google/uuid"
)

// QuestionSet is a topic plus the multiple-choice questions generated for it.
type QuestionSet struct {
	ID          uuid.UUID       `json:"id"`
	Topic       string          `json:"topic"`
	Questions   []Question      `json:"questions"`
	GameResults []ScoredSession `json:"gameResults,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Question represents a single generated question. CorrectAnswer is either a bare
// option letter ("B") or the full option text, depending on what the model returned.
type Question struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}

// ScoredSession is one verification pass over a set of answers.
type ScoredSession struct {
	ID             uuid.UUID  `json:"id"`
	QuestionSetID  *uuid.UUID `json:"questionSetId,omitempty"`
	Topic          string     `json:"topic,omitempty"`
	UserAnswers    []string   `json:"userAnswers"`
	CorrectCount   int        `json:"correctCount"`
	IncorrectCount int        `json:"incorrectCount"`
	Timestamp      time.Time  `json:"timestamp"`
}

// AnswerDetail is the per-question verdict returned by the verifier
type AnswerDetail struct {
	Question          string `json:"question"`
	UserAnswer        string `json:"userAnswer"`
	CorrectAnswer     string `json:"correctAnswer"`
	NormalizedUser    string `json:"normalizedUserAnswer"`
	NormalizedCorrect string `json:"normalizedCorrectAnswer"`
	IsCorrect         bool   `json:"isCorrect"`
}

// ScoringResult is the aggregate outcome of verifying a set of answers.
type ScoringResult struct {
	Correct   int            `json:"correct"`
	Incorrect int            `json:"incorrect"`
	Details   []AnswerDetail `json:"details"`
	Saved     bool           `json:"saved"`
	SessionID *uuid.UUID     `json:"sessionId,omitempty"`
}

// GenerateRequest is the body of POST /generate
type GenerateRequest struct {
	Topic string `json:"topic"`
}

// GenerateResponse is returned after a question set has been generated and stored.
type GenerateResponse struct {
	Success   bool       `json:"success"`
	ID        uuid.UUID  `json:"id"`
	Topic     string     `json:"topic"`
	Questions []Question `json:"questions"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// VerifyRequest is the body of POST /verify. QuestionSetID is optional.
type VerifyRequest struct {
	QuestionSetID string     `json:"questionSetId,omitempty"`
	Topic         string     `json:"topic,omitempty"`
	Questions     []Question `json:"questions"`
	UserAnswers   []string   `json:"userAnswers"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
