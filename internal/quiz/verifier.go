package quiz

import (
	"context"
	"fmt"
	"log"
	"time"

	"quizgen/internal/db"
	"quizgen/internal/models"
	"quizgen/internal/retry"

	"github.com/google/uuid"
)

// VerifyInput is a submitted answer sheet. QuestionSetID links the resulting
// session to a stored set when known.
type VerifyInput struct {
	QuestionSetID *uuid.UUID
	Topic         string
	Questions     []models.Question
	UserAnswers   []string
}

// Verifier scores answer sheets and records them as scored sessions.
type Verifier struct {
	Store    db.Store
	Executor *retry.Executor
}

func NewVerifier(store db.Store) *Verifier {
	return &Verifier{Store: store, Executor: retry.New()}
}

// Score compares answers with questions position by position. A missing answer
// counts as incorrect.
func Score(questions []models.Question, answers []string) (*models.ScoringResult, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: questions must be a non-empty array", ErrScoring)
	}
	if answers == nil {
		return nil, fmt.Errorf("%w: userAnswers must be an array", ErrScoring)
	}

	result := &models.ScoringResult{Details: make([]models.AnswerDetail, 0, len(questions))}
	for i, q := range questions {
		var answer string
		if i < len(answers) {
			answer = answers[i]
		}

		ok := AnswerMatches(q.CorrectAnswer, answer)
		if ok {
			result.Correct++
		} else {
			result.Incorrect++
		}
		result.Details = append(result.Details, models.AnswerDetail{
			Question:          q.Question,
			UserAnswer:        answer,
			CorrectAnswer:     q.CorrectAnswer,
			NormalizedUser:    Normalize(answer),
			NormalizedCorrect: Normalize(q.CorrectAnswer),
			IsCorrect:         ok,
		})
	}
	return result, nil
}

// Verify scores the sheet and then tries to store it. A failed write is logged and
// reported through Saved; the score is returned either way.
func (v *Verifier) Verify(ctx context.Context, in VerifyInput) (*models.ScoringResult, error) {
	result, err := Score(in.Questions, in.UserAnswers)
	if err != nil {
		return nil, err
	}

	session := &models.ScoredSession{
		ID:             uuid.New(),
		QuestionSetID:  in.QuestionSetID,
		Topic:          in.Topic,
		UserAnswers:    append([]string(nil), in.UserAnswers...),
		CorrectCount:   result.Correct,
		IncorrectCount: result.Incorrect,
		Timestamp:      time.Now().UTC(),
	}

	if !v.Store.Ready(ctx) {
		log.Printf("ERROR: Scored session %s not saved: database connection not ready", session.ID)
		return result, nil
	}

	executor := v.Executor
	if executor == nil {
		executor = retry.New()
	}
	_, err = retry.Run(ctx, executor, func(ctx context.Context) (*models.ScoredSession, error) {
		return v.Store.InsertScoredSession(ctx, session)
	})
	if err != nil {
		log.Printf("ERROR: Failed to save scored session %s: %v", session.ID, err)
		return result, nil
	}

	result.Saved = true
	result.SessionID = &session.ID
	log.Printf("INFO: Saved scored session %s (%d correct, %d incorrect)", session.ID, result.Correct, result.Incorrect)
	return result, nil
}
