package api

import (
	"testing"

	"quizgen/internal/config"
)

func TestNewSessionStoreCookie(t *testing.T) {
	cfg := &config.Config{StoreDriver: config.DriverMemory, SessionSecret: "secret"}
	store, cleanup, err := NewSessionStore(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer cleanup()
	if store == nil {
		t.Fatalf("expected a store")
	}
}

func TestNewSessionStoreWithoutSecret(t *testing.T) {
	store, cleanup, err := NewSessionStore(&config.Config{StoreDriver: config.DriverSQLite})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer cleanup()
	if store == nil {
		t.Fatalf("expected a store")
	}
}
