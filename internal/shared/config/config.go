package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	Port               string
	CORSAllowOrigin    []string
	DatabaseURL        string
	Env                string
	OpenRouterAPIKey   string
	LLMModel           string
	LLMTimeout         time.Duration
	DefaultLanguage    string
	OperatorUsernames  []string
	PaymentTestIntents []string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	_ = godotenv.Load(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	return Config{
		Port:               getEnv("PORT", "8080"),
		CORSAllowOrigin:    splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		DatabaseURL:        dbURL,
		Env:                env,
		OpenRouterAPIKey:   getEnv("OPENROUTER_API_KEY", ""),
		LLMModel:           getEnv("LLM_MODEL", "qwen/qwen-2.5-72b-instruct:free"),
		LLMTimeout:         getEnvSeconds("LLM_TIMEOUT_SECONDS", 60*time.Second),
		DefaultLanguage:    getEnv("DEFAULT_LANGUAGE", "pl"),
		OperatorUsernames:  splitAndTrim(getEnv("OPERATOR_USERNAMES", "developer")),
		PaymentTestIntents: splitAndTrim(getEnv("PAYMENT_TEST_INTENTS", "")),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvSeconds(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		log.Printf("config env %s invalid seconds value %q, using default", key, raw)
		return def
	}
	return time.Duration(parsed) * time.Second
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}
