package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"
)

// Discord embed structures (based on the webhook documentation)
type EmbedFooter struct {
	Text    string `json:"text,omitempty"`
	IconURL string `json:"icon_url,omitempty"`
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	URL         string       `json:"url,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"` // ISO8601 timestamp
	Color       int          `json:"color,omitempty"`     // Decimal color code
	Footer      *EmbedFooter `json:"footer,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
}

// WebhookPayload is the structure Discord expects for webhook requests with embeds
type WebhookPayload struct {
	Username string  `json:"username,omitempty"`
	Content  string  `json:"content,omitempty"`
	Embeds   []Embed `json:"embeds"`
}

const (
	ColorError   = 0xFF0000
	ColorSuccess = 0x00FF00
)

// Discord posts embeds to a webhook. A nil *Discord or an empty URL disables it.
type Discord struct {
	WebhookURL  string
	Username    string
	Environment string // shown in the footer of every embed
	Client      *http.Client

	wg sync.WaitGroup
}

// NewDiscord creates a notifier for webhookURL with a 5 second request timeout.
// environment names the deployment in each embed's footer.
func NewDiscord(webhookURL, environment string) *Discord {
	if webhookURL == "" {
		log.Println("WARN: DISCORD_WEBHOOK_URL not set, notifications are disabled.")
	}
	return &Discord{
		WebhookURL:  webhookURL,
		Username:    "Quizgen Notifier",
		Environment: environment,
		Client:      &http.Client{Timeout: 5 * time.Second},
	}
}

// Enabled reports whether notifications will be sent
func (d *Discord) Enabled() bool {
	return d != nil && d.WebhookURL != ""
}

// Send posts embed in the background so the caller is never blocked.
func (d *Discord) Send(embed Embed) {
	if !d.Enabled() {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.Post(context.Background(), embed); err != nil {
			log.Printf("ERROR: %v", err)
			return
		}
		log.Printf("INFO: Sent Discord notification: %s", embed.Title)
	}()
}

// Wait blocks until every notification started by Send has finished.
func (d *Discord) Wait() {
	if d == nil {
		return
	}
	d.wg.Wait()
}

// Post sends embed and waits for Discord's answer.
func (d *Discord) Post(ctx context.Context, embed Embed) error {
	if embed.Timestamp == "" {
		embed.Timestamp = time.Now().Format(time.RFC3339)
	}
	if embed.Footer == nil && d.Environment != "" {
		embed.Footer = &EmbedFooter{Text: "quizgen · " + d.Environment}
	}

	jsonPayload, err := json.Marshal(WebhookPayload{
		Username: d.Username,
		Embeds:   []Embed{embed},
	})
	if err != nil {
		return fmt.Errorf("failed to marshal Discord embed payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.WebhookURL, bytes.NewReader(jsonPayload))
	if err != nil {
		return fmt.Errorf("failed to create Discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send Discord notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("Discord notification failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}
	return nil
}
