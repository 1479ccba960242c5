package quiz

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"quizgen/internal/models"

	"github.com/cucumber/godog"
	"github.com/google/uuid"
)

// TestQuizFeatures executes the quiz feature scenarios via godog.
func TestQuizFeatures(t *testing.T) {
	suite := godog.TestSuite{
		Name:                "quiz",
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:    "pretty",
			Paths:     []string{filepath.Join("features", "quiz.feature")},
			Strict:    true,
			TestingT:  t,
			Randomize: 0,
		},
	}
	if suite.Run() != 0 {
		t.Fatalf("non-zero godog status")
	}
}

// InitializeScenario wires step definitions for the quiz feature tests.
func InitializeScenario(ctx *godog.ScenarioContext) {
	state := &quizState{}
	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		state.reset()
		return ctx, nil
	})

	ctx.Step(`^the model replies with (\d+) valid questions$`, state.modelRepliesWithValid)
	ctx.Step(`^the model replies with "([^"]*)"$`, state.modelRepliesWith)
	ctx.Step(`^the store fails (\d+) times?$`, state.storeFails)
	ctx.Step(`^I generate questions for "([^"]+)"$`, state.generate)
	ctx.Step(`^the question set has (\d+) questions with (\d+) options each$`, state.setHasShape)
	ctx.Step(`^the question set has a generated id$`, state.setHasID)
	ctx.Step(`^the question set is stored$`, state.setIsStored)
	ctx.Step(`^generation fails with a malformed response error$`, state.generationMalformed)
	ctx.Step(`^nothing is stored$`, state.nothingStored)
	ctx.Step(`^the store was called (\d+) times$`, state.storeCalled)
	ctx.Step(`^a question whose correct answer is "([^"]*)"$`, state.questionWithAnswer)
	ctx.Step(`^I answer "([^"]*)"$`, state.answer)
	ctx.Step(`^the result is (\d+) correct and (\d+) incorrect$`, state.resultIs)
}

// quizState holds scenario state for the feature tests.
type quizState struct {
	store     *fakeStore
	provider  *fakeProvider
	set       *models.QuestionSet
	err       error
	questions []models.Question
	result    *models.ScoringResult
}

func (s *quizState) reset() {
	s.store = newFakeStore()
	s.provider = &fakeProvider{}
	s.set = nil
	s.err = nil
	s.questions = nil
	s.result = nil
}

func (s *quizState) modelRepliesWithValid(n int) error {
	s.provider.reply = sampleReply("feature", n)
	return nil
}

func (s *quizState) modelRepliesWith(reply string) error {
	s.provider.reply = reply
	return nil
}

func (s *quizState) storeFails(n int) error {
	s.store.failInserts = n
	return nil
}

func (s *quizState) generate(topic string) error {
	g := NewGenerator(s.store, s.provider)
	g.Executor = fastExecutor()
	s.set, s.err = g.Generate(context.Background(), topic)
	return nil
}

func (s *quizState) setHasShape(questions, options int) error {
	if s.err != nil {
		return fmt.Errorf("generation failed: %w", s.err)
	}
	if len(s.set.Questions) != questions {
		return fmt.Errorf("expected %d questions, got %d", questions, len(s.set.Questions))
	}
	for i, q := range s.set.Questions {
		if len(q.Options) != options {
			return fmt.Errorf("question %d: expected %d options, got %d", i+1, options, len(q.Options))
		}
	}
	return nil
}

func (s *quizState) setHasID() error {
	if s.set == nil || s.set.ID == uuid.Nil {
		return errors.New("expected a generated id")
	}
	return nil
}

func (s *quizState) setIsStored() error {
	if s.err != nil {
		return fmt.Errorf("generation failed: %w", s.err)
	}
	if _, err := s.store.GetQuestionSet(context.Background(), s.set.ID); err != nil {
		return fmt.Errorf("expected set %s to be stored: %w", s.set.ID, err)
	}
	return nil
}

func (s *quizState) generationMalformed() error {
	if !errors.Is(s.err, ErrMalformedResponse) {
		return fmt.Errorf("expected malformed response error, got %v", s.err)
	}
	return nil
}

func (s *quizState) nothingStored() error {
	if n := s.store.calls(); n != 0 {
		return fmt.Errorf("expected no insert calls, got %d", n)
	}
	return nil
}

func (s *quizState) storeCalled(n int) error {
	if got := s.store.calls(); got != n {
		return fmt.Errorf("expected %d insert calls, got %d", n, got)
	}
	return nil
}

func (s *quizState) questionWithAnswer(correct string) error {
	s.questions = []models.Question{{
		Question:      "Which option is right?",
		Options:       []string{"A. Berlin", "B. Paris", "C. Rome", "D. Madrid"},
		CorrectAnswer: correct,
	}}
	return nil
}

func (s *quizState) answer(answer string) error {
	v := NewVerifier(s.store)
	v.Executor = fastExecutor()
	result, err := v.Verify(context.Background(), VerifyInput{Questions: s.questions, UserAnswers: []string{answer}})
	if err != nil {
		return err
	}
	s.result = result
	return nil
}

func (s *quizState) resultIs(correct, incorrect int) error {
	if s.result.Correct != correct || s.result.Incorrect != incorrect {
		return fmt.Errorf("expected %d correct and %d incorrect, got %d and %d", correct, incorrect, s.result.Correct, s.result.Incorrect)
	}
	return nil
}
