package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"quizgen/internal/db"
	"quizgen/internal/models"
	"quizgen/internal/notify"
	"quizgen/internal/quiz"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var errInvalidQuestionSetID = errors.New("invalid questionSetId")

// HandleGenerate generates and stores a question set for the requested topic.
func (h *Handler) HandleGenerate(c *gin.Context) {
	startTime := time.Now()

	// 1. Bind request body
	var req models.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleErrorAndNotify(c, http.StatusBadRequest, "Bind Generate Request",
			"Topic is required and must be a non-empty string", fmt.Errorf("%w: %w", quiz.ErrValidation, err))
		return
	}

	// 2. Generate, validate and persist
	set, err := h.Generator.Generate(c.Request.Context(), req.Topic)
	if err != nil {
		h.handleErrorAndNotify(c, statusFor(err), "Generate Questions", messageFor(err, "Internal server error"), err)
		return
	}

	// 3. Remember the set for a later /verify in the same session
	session := sessions.Default(c)
	session.Set(LastQuestionSetSessionKey, set.ID.String())
	if err := session.Save(); err != nil {
		log.Printf("WARN: Failed to save session after generating set %s: %v", set.ID, err)
	}

	duration := time.Since(startTime)
	log.Printf("INFO: Generated question set %s for topic %q in %s", set.ID, set.Topic, duration)
	h.Notifier.Send(notify.Embed{
		Title: "✅ Question Set Generated",
		Color: notify.ColorSuccess,
		Fields: []notify.EmbedField{
			{Name: "Topic", Value: set.Topic, Inline: true},
			{Name: "Questions", Value: fmt.Sprintf("%d", len(set.Questions)), Inline: true},
			{Name: "Duration", Value: duration.Round(time.Millisecond).String(), Inline: true},
			{Name: "ID", Value: fmt.Sprintf("`%s`", set.ID), Inline: false},
		},
	})

	// 4. Return success response
	c.JSON(http.StatusOK, models.GenerateResponse{
		Success:   true,
		ID:        set.ID,
		Topic:     set.Topic,
		Questions: set.Questions,
		CreatedAt: set.CreatedAt,
		UpdatedAt: set.UpdatedAt,
	})
}

// HandleVerify scores submitted answers and records the session.
func (h *Handler) HandleVerify(c *gin.Context) {
	// 1. Bind request body
	var req models.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleErrorAndNotify(c, http.StatusInternalServerError, "Bind Verify Request", "Error verifying answers", fmt.Errorf("%w: %w", quiz.ErrScoring, err))
		return
	}

	// 2. Resolve the question set this sheet belongs to, if any
	setID, err := h.resolveQuestionSet(c, req)
	if errors.Is(err, errInvalidQuestionSetID) {
		h.handleErrorAndNotify(c, http.StatusBadRequest, "Parse Question Set ID", "Invalid questionSetId", err)
		return
	}
	if err != nil {
		h.handleErrorAndNotify(c, statusFor(err), "Resolve Question Set", messageFor(err, "Error verifying answers"), err)
		return
	}

	// 3. Score and persist
	result, err := h.Verifier.Verify(c.Request.Context(), quiz.VerifyInput{
		QuestionSetID: setID,
		Topic:         req.Topic,
		Questions:     req.Questions,
		UserAnswers:   req.UserAnswers,
	})
	if err != nil {
		h.handleErrorAndNotify(c, http.StatusInternalServerError, "Verify Answers", "Error verifying answers", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// resolveQuestionSet picks the set a scored session is linked to. An explicit
// questionSetId must name a stored set. Without one, the set remembered in the
// client's session is used only when the submitted questions are that set's
// questions.
func (h *Handler) resolveQuestionSet(c *gin.Context, req models.VerifyRequest) (*uuid.UUID, error) {
	ctx := c.Request.Context()

	if text := strings.TrimSpace(req.QuestionSetID); text != "" {
		id, err := uuid.Parse(text)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %w", errInvalidQuestionSetID, text, err)
		}
		if !h.Store.Ready(ctx) {
			log.Printf("WARN: Store unavailable, cannot check question set %s", id)
			return nil, nil
		}
		if _, err := h.Store.GetQuestionSet(ctx, id); err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return nil, fmt.Errorf("question set %s: %w", id, err)
			}
			log.Printf("WARN: Failed to look up question set %s, session will not be linked: %v", id, err)
			return nil, nil
		}
		return &id, nil
	}

	text, ok := sessions.Default(c).Get(LastQuestionSetSessionKey).(string)
	if !ok || text == "" {
		return nil, nil
	}
	id, err := uuid.Parse(text)
	if err != nil {
		log.Printf("WARN: Ignoring malformed question set id in session: %q", text)
		return nil, nil
	}
	if !h.Store.Ready(ctx) {
		return nil, nil
	}
	set, err := h.Store.GetQuestionSet(ctx, id)
	if err != nil {
		log.Printf("WARN: Session question set %s not usable, session will not be linked: %v", id, err)
		return nil, nil
	}
	if !sameQuestions(set.Questions, req.Questions) {
		log.Printf("DEBUG: Submitted questions do not belong to session question set %s", id)
		return nil, nil
	}
	return &id, nil
}

// sameQuestions reports whether both lists hold the same questions with the same answers, in order.
func sameQuestions(stored, submitted []models.Question) bool {
	if len(stored) != len(submitted) {
		return false
	}
	for i := range stored {
		if stored[i].Question != submitted[i].Question || stored[i].CorrectAnswer != submitted[i].CorrectAnswer {
			return false
		}
	}
	return true
}

// HandleGetQuestionSet returns a stored question set together with its scored sessions.
func (h *Handler) HandleGetQuestionSet(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.handleErrorAndNotify(c, http.StatusBadRequest, "Parse Question Set ID", "Invalid question set ID format", err)
		return
	}

	set, err := h.Store.GetQuestionSet(c.Request.Context(), id)
	if err != nil {
		h.handleErrorAndNotify(c, statusFor(err), "Get Question Set", messageFor(err, "Failed to retrieve question set"), err)
		return
	}

	c.JSON(http.StatusOK, set)
}

// HandleHealth reports whether the store is reachable.
func (h *Handler) HandleHealth(c *gin.Context) {
	if !h.Store.Ready(c.Request.Context()) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
