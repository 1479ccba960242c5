package r2

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"quizgen/internal/config"
	"quizgen/internal/models"

	"github.com/google/uuid"
)

type recordedPut struct {
	method      string
	path        string
	contentType string
	body        []byte
}

func newBucketServer(t *testing.T) (*httptest.Server, *[]recordedPut) {
	t.Helper()
	var mu sync.Mutex
	var puts []recordedPut
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		puts = append(puts, recordedPut{method: r.Method, path: r.URL.Path, contentType: r.Header.Get("Content-Type"), body: body})
		mu.Unlock()
		w.Header().Set("ETag", `"abc"`)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)
	return server, &puts
}

func testConfig(endpoint string) config.R2Config {
	return config.R2Config{
		AccountID:       "acct",
		BucketName:      "quizzes",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		Endpoint:        endpoint,
	}
}

func TestNewClientDisabled(t *testing.T) {
	client, err := NewClient(context.Background(), config.R2Config{BucketName: "quizzes"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client != nil {
		t.Fatalf("expected nil client when R2 is not configured")
	}
}

func TestArchiveQuestionSet(t *testing.T) {
	server, puts := newBucketServer(t)
	cfg := testConfig(server.URL)
	cfg.PublicURL = "https://pub.example.dev/archive"

	client, err := NewClient(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	set := &models.QuestionSet{
		ID:        uuid.New(),
		Topic:     "Go",
		Questions: []models.Question{{Question: "q?", Options: []string{"A", "B", "C", "D"}, CorrectAnswer: "A"}},
		CreatedAt: time.Now().UTC(),
	}
	url, err := client.ArchiveQuestionSet(context.Background(), set)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "https://pub.example.dev/archive/question-sets/" + set.ID.String() + ".json"; url != want {
		t.Fatalf("expected url %q, got %q", want, url)
	}

	if len(*puts) != 1 {
		t.Fatalf("expected 1 request, got %d", len(*puts))
	}
	put := (*puts)[0]
	if put.method != http.MethodPut {
		t.Fatalf("expected PUT, got %s", put.method)
	}
	if want := "/quizzes/" + ObjectKey(set); put.path != want {
		t.Fatalf("expected path %q, got %q", want, put.path)
	}
	if put.contentType != "application/json" {
		t.Fatalf("expected application/json, got %q", put.contentType)
	}
	var decoded models.QuestionSet
	if err := json.Unmarshal(put.body, &decoded); err != nil {
		t.Fatalf("body is not a question set: %v", err)
	}
	if decoded.ID != set.ID || decoded.Topic != "Go" {
		t.Fatalf("unexpected archived set: %+v", decoded)
	}
}

func TestArchiveWithoutPublicURLReturnsKey(t *testing.T) {
	server, _ := newBucketServer(t)
	client, err := NewClient(context.Background(), testConfig(server.URL))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	set := &models.QuestionSet{ID: uuid.New()}
	got, err := client.ArchiveQuestionSet(context.Background(), set)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != ObjectKey(set) {
		t.Fatalf("expected key %q, got %q", ObjectKey(set), got)
	}
}

func TestArchiveNilClient(t *testing.T) {
	var client *Client
	if _, err := client.ArchiveQuestionSet(context.Background(), &models.QuestionSet{ID: uuid.New()}); err == nil {
		t.Fatalf("expected error from nil client")
	}
}
