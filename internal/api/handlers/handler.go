package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"quizgen/internal/db"
	"quizgen/internal/models"
	"quizgen/internal/notify"
	"quizgen/internal/quiz"

	"github.com/gin-gonic/gin"
)

// LastQuestionSetSessionKey holds the id of the last set generated in the client's session.
const LastQuestionSetSessionKey = "lastQuestionSetId"

// Handler contains the API handlers dependencies
type Handler struct {
	Store      db.Store
	Generator  *quiz.Generator
	Verifier   *quiz.Verifier
	Notifier   *notify.Discord // optional
	Production bool            // hides error details from clients
}

// NewHandler creates a new Handler
func NewHandler(store db.Store, generator *quiz.Generator, verifier *quiz.Verifier, notifier *notify.Discord, production bool) *Handler {
	return &Handler{
		Store:      store,
		Generator:  generator,
		Verifier:   verifier,
		Notifier:   notifier,
		Production: production,
	}
}

// statusFor maps an error kind to the HTTP status returned to the client.
func statusFor(err error) int {
	switch {
	case errors.Is(err, quiz.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, quiz.ErrQuotaExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, quiz.ErrServiceUnavailable),
		errors.Is(err, quiz.ErrUpstream),
		errors.Is(err, quiz.ErrStorage):
		return http.StatusServiceUnavailable
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// messageFor returns the client-facing message for an error kind.
func messageFor(err error, fallback string) string {
	switch {
	case errors.Is(err, quiz.ErrValidation):
		return "Topic is required and must be a non-empty string"
	case errors.Is(err, quiz.ErrQuotaExceeded):
		return "Text generation quota exceeded, please try again later"
	case errors.Is(err, quiz.ErrServiceUnavailable), errors.Is(err, quiz.ErrStorage):
		return "Database connection error, please try again in a few moments"
	case errors.Is(err, quiz.ErrUpstream):
		return "Text generation service unavailable, please try again later"
	case errors.Is(err, db.ErrNotFound):
		return "Question set not found"
	default:
		return fallback
	}
}

// handleErrorAndNotify logs an error, sends a Discord notification for server-side
// failures, and aborts the request. Details are only exposed outside production.
func (h *Handler) handleErrorAndNotify(c *gin.Context, statusCode int, errorContext string, message string, err error) {
	log.Printf("ERROR: %s: %v (path: %s, status: %d)", errorContext, err, c.Request.URL.Path, statusCode)

	if statusCode >= http.StatusInternalServerError {
		h.Notifier.Send(notify.Embed{
			Title:       fmt.Sprintf("🚨 API Error: %s", errorContext),
			Description: fmt.Sprintf("**Error Details:**\n```%s```", err.Error()),
			Color:       notify.ColorError,
			Fields: []notify.EmbedField{
				{Name: "HTTP Status", Value: fmt.Sprintf("%d", statusCode), Inline: true},
				{Name: "Path", Value: c.Request.URL.Path, Inline: false},
			},
			Timestamp: time.Now().Format(time.RFC3339),
		})
	}

	resp := models.ErrorResponse{Error: message}
	if !h.Production {
		resp.Details = err.Error()
	}
	c.AbortWithStatusJSON(statusCode, resp)
}
