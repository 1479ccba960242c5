package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Store drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Port        string
	Env         string // "production" hides error details from clients
	CORSOrigins []string

	StoreDriver string
	DatabaseURL string
	SQLitePath  string

	LLMProvider   string
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
	GeminiAPIKey  string
	GeminiModel   string

	SessionSecret     string
	DiscordWebhookURL string

	R2 R2Config
}

// R2Config is optional; when incomplete, archiving is disabled.
type R2Config struct {
	AccountID       string
	BucketName      string
	AccessKeyID     string
	SecretAccessKey string
	PublicURL       string // optional; objects are addressed by key when empty
	Endpoint        string // optional; defaults to the account's R2 endpoint
}

// Enabled reports whether every R2 variable is set.
func (r R2Config) Enabled() bool {
	return r.AccountID != "" && r.BucketName != "" && r.AccessKeyID != "" && r.SecretAccessKey != ""
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// Only treat "file not found" as a warning, other errors are fatal
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
		log.Println("WARN: .env file not found. Relying on system environment variables.")
	} else {
		log.Println("INFO: .env file loaded successfully.")
	}
	return FromEnv(), nil
}

// FromEnv builds a Config from the current environment, applying defaults.
func FromEnv() *Config {
	return &Config{
		Port:        getenv("PORT", "8080"),
		Env:         getenv("APP_ENV", "development"),
		CORSOrigins: splitList(getenv("CORS_ORIGINS", "http://localhost:3000")),

		StoreDriver: strings.ToLower(getenv("STORE_DRIVER", DriverPostgres)),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		SQLitePath:  getenv("SQLITE_PATH", "./quizgen.db"),

		LLMProvider:   strings.ToLower(getenv("LLM_PROVIDER", "openai")),
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   os.Getenv("OPENAI_MODEL"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   os.Getenv("GEMINI_MODEL"),

		SessionSecret:     os.Getenv("SESSION_SECRET"),
		DiscordWebhookURL: os.Getenv("DISCORD_WEBHOOK_URL"),

		R2: R2Config{
			AccountID:       os.Getenv("CLOUDFLARE_ACCOUNT_ID"),
			BucketName:      os.Getenv("R2_BUCKET_NAME"),
			AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
			PublicURL:       os.Getenv("R2_PUBLIC_URL"),
			Endpoint:        os.Getenv("R2_ENDPOINT"),
		},
	}
}

// IsProduction reports whether error details must be hidden from clients.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// LLMAPIKey returns the key for the selected provider.
func (c *Config) LLMAPIKey() string {
	if c.LLMProvider == "gemini" {
		return c.GeminiAPIKey
	}
	return c.OpenAIAPIKey
}

// LLMModel returns the model override for the selected provider, if any.
func (c *Config) LLMModel() string {
	if c.LLMProvider == "gemini" {
		return c.GeminiModel
	}
	return c.OpenAIModel
}

// Validate returns every problem with the configuration at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.StoreDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL must be set when STORE_DRIVER=postgres"))
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH must be set when STORE_DRIVER=sqlite"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver))
	}

	switch c.LLMProvider {
	case "openai":
		if c.OpenAIAPIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY must be set when LLM_PROVIDER=openai"))
		}
	case "gemini":
		if c.GeminiAPIKey == "" {
			errs = append(errs, errors.New("GEMINI_API_KEY must be set when LLM_PROVIDER=gemini"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported LLM_PROVIDER %q", c.LLMProvider))
	}

	if c.IsProduction() && c.SessionSecret == "" {
		errs = append(errs, errors.New("SESSION_SECRET must be set in production"))
	}

	return errors.Join(errs...)
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSuffix(strings.TrimSpace(part), "/"); part != "" {
			out = append(out, part)
		}
	}
	return out
}
