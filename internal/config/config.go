package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type LLMProvider string

const (
	ProviderMock   LLMProvider = "mock"
	ProviderGemini LLMProvider = "gemini"
	ProviderOpenAI LLMProvider = "openai"
)

type Config struct {
	Port string

	// Which LLM backend serves the five model capabilities.
	LLMProvider LLMProvider

	// Gemini (Vertex AI) settings.
	GCPProjectID string
	GCPLocation  string
	GeminiModel  string

	// OpenAI settings.
	OpenAIAPIKey string
	OpenAIModel  string

	StorageBackend string // "memory" or "firestore"

	// IANA zone name all date arithmetic happens in. One zone per deployment.
	Timezone string

	// Bound on each model-adapter call within a turn; timeout is treated as
	// adapter failure, never retried.
	AdapterTimeout time.Duration
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getIntEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// Load reads all env vars and builds the config
func Load() *Config {
	cfg := &Config{
		Port: getEnv("EMOAI_PORT", "8080"),

		LLMProvider: LLMProvider(getEnv("EMOAI_LLM_PROVIDER", "mock")),

		GCPProjectID: getEnv("EMOAI_GCP_PROJECT", ""),
		GCPLocation:  getEnv("EMOAI_GCP_LOCATION", "us-central1"),
		GeminiModel:  getEnv("EMOAI_GEMINI_MODEL", "gemini-2.0-flash"),

		OpenAIAPIKey: getEnv("EMOAI_OPENAI_API_KEY", ""),
		OpenAIModel:  getEnv("EMOAI_OPENAI_MODEL", "gpt-4o-mini"),

		StorageBackend: getEnv("EMOAI_STORAGE_BACKEND", "memory"),

		Timezone: getEnv("EMOAI_TIMEZONE", "Local"),

		AdapterTimeout: time.Duration(getIntEnv("EMOAI_ADAPTER_TIMEOUT_SECONDS", 20)) * time.Second,
	}

	switch cfg.LLMProvider {
	case ProviderMock, ProviderGemini, ProviderOpenAI:
	default:
		log.Fatalf("unknown EMOAI_LLM_PROVIDER %q", cfg.LLMProvider)
	}

	if cfg.LLMProvider == ProviderGemini && cfg.GCPProjectID == "" {
		log.Fatal("EMOAI_GCP_PROJECT must be set with the gemini provider")
	}
	if cfg.LLMProvider == ProviderOpenAI && cfg.OpenAIAPIKey == "" {
		log.Fatal("EMOAI_OPENAI_API_KEY must be set with the openai provider")
	}

	return cfg
}

// Location resolves the configured timezone, falling back to time.Local.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("invalid EMOAI_TIMEZONE %q, falling back to local zone", c.Timezone)
		return time.Local
	}
	return loc
}
