package quiz

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"quizgen/internal/llm"
	"quizgen/internal/models"
)

const (
	// QuestionCount is how many questions every set contains
	QuestionCount = 5
	// OptionCount is how many options every question has
	OptionCount = 4
	// Temperature used for generation
	Temperature = 0.7
	// MaxTokens caps the size of the model's reply
	MaxTokens = 1500
)

// BuildPrompt returns the instruction sent to the model for topic. The output is
// deterministic for a given topic and count.
func BuildPrompt(topic string, count int) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Create %d multiple-choice questions about the topic %q.\n", count, topic))
	sb.WriteString(fmt.Sprintf("Each question must have exactly %d options labelled A, B, C and D, and exactly one correct answer.\n", OptionCount))
	sb.WriteString("Reply with a JSON array only, with no text before or after it, using this format:\n")
	sb.WriteString(`[
  {
    "question": "Question 1?",
    "options": ["A. ...", "B. ...", "C. ...", "D. ..."],
    "correctAnswer": "B"
  },
  ...
]
`)

	return sb.String()
}

// ParseQuestions decodes the model reply and checks its shape: exactly want
// questions, each with OptionCount options, a question text and a correct answer.
func ParseQuestions(reply string, want int) ([]models.Question, error) {
	text := llm.ExtractJSON(reply)
	if text == "" {
		return nil, errors.New("empty reply")
	}

	var questions []models.Question
	if err := json.Unmarshal([]byte(text), &questions); err != nil {
		// Some models wrap the array in an object despite the instructions.
		var wrapped struct {
			Questions []models.Question `json:"questions"`
		}
		if strings.HasPrefix(text, "{") && json.Unmarshal([]byte(text), &wrapped) == nil && wrapped.Questions != nil {
			questions = wrapped.Questions
		} else {
			return nil, fmt.Errorf("reply is not a JSON array of questions: %w", err)
		}
	}

	if len(questions) != want {
		return nil, fmt.Errorf("expected %d questions, got %d", want, len(questions))
	}
	for i, q := range questions {
		if strings.TrimSpace(q.Question) == "" {
			return nil, fmt.Errorf("question %d has no text", i+1)
		}
		if len(q.Options) != OptionCount {
			return nil, fmt.Errorf("question %d has %d options, expected %d", i+1, len(q.Options), OptionCount)
		}
		if strings.TrimSpace(q.CorrectAnswer) == "" {
			return nil, fmt.Errorf("question %d has no correct answer", i+1)
		}
	}

	return questions, nil
}
