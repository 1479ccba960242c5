package api

import (
	"quizgen/internal/api/handlers"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// SessionName is the cookie that carries the client's session.
const SessionName = "quizgen_session"

// SetupRoutes sets up the API routes
func SetupRoutes(router *gin.Engine, handler *handlers.Handler, store sessions.Store, allowedOrigins []string) {
	router.Use(CORSMiddleware(allowedOrigins))
	router.Use(sessions.Sessions(SessionName, store))

	router.GET("/healthz", handler.HandleHealth)

	questions := router.Group("/api/questions")
	{
		questions.POST("/generate", handler.HandleGenerate)
		questions.POST("/verify", handler.HandleVerify)
		questions.GET("/:id", handler.HandleGetQuestionSet) // Stored set with its scored sessions
	}
}
