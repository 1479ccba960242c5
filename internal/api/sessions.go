package api

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"

	"quizgen/internal/config"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	gsessions "github.com/gin-contrib/sessions/postgres"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver for database/sql
)

// NewSessionStore returns the session store for cfg. With the postgres driver sessions
// live in the database; otherwise they are kept in signed cookies. The returned
// function releases any resources held by the store.
func NewSessionStore(cfg *config.Config) (sessions.Store, func(), error) {
	secret := []byte(cfg.SessionSecret)
	if len(secret) == 0 {
		log.Println("WARN: SESSION_SECRET is not set, using an insecure development secret.")
		secret = []byte("quizgen-development-secret")
	}

	var (
		store   sessions.Store
		cleanup = func() {}
	)
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		sessionDB, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database connection for session store: %w", err)
		}
		if err := sessionDB.Ping(); err != nil {
			sessionDB.Close()
			return nil, nil, fmt.Errorf("failed to ping database for session store: %w", err)
		}
		pgStore, err := gsessions.NewStore(sessionDB, secret)
		if err != nil {
			sessionDB.Close()
			return nil, nil, fmt.Errorf("failed to create postgres session store: %w", err)
		}
		store = pgStore
		cleanup = func() { sessionDB.Close() }
	default:
		store = cookie.NewStore(secret)
	}

	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		Secure:   cfg.IsProduction(),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return store, cleanup, nil
}
