// Package config collects the environment variables the service reads.
package config

import (
	"os"
	"strings"
)

const (
	DefaultModel           = "gemini-2.5-flash-image"
	DefaultProvider        = "aistudio"
	DefaultAIStudioBaseURL = "https://generativelanguage.googleapis.com"
	DefaultDBPath          = "tryon.db"
)

// Env holds the service configuration.
type Env struct {
	// APIKey is the Gemini credential (GEMINI_API_KEY, falling back to API_KEY).
	// An empty key is not rejected here; the remote call reports it.
	APIKey string

	// Provider selects the image backend (TRYON_PROVIDER): "aistudio" or "gemini".
	Provider string

	// Model is the image model name (GEMINI_MODEL).
	Model string

	// AIStudioBaseURL overrides the REST endpoint (AISTUDIO_BASE_URL).
	AIStudioBaseURL string

	// DBPath is the SQLite file backing the history slot (TRYON_DB).
	DBPath string

	// PresetsPath optionally replaces the embedded preset catalog (TRYON_PRESETS).
	PresetsPath string
}

// Load reads the environment. Call it after .env has been loaded.
func Load() *Env {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("API_KEY")
	}

	return &Env{
		APIKey:          apiKey,
		Provider:        strings.ToLower(getEnvDefault("TRYON_PROVIDER", DefaultProvider)),
		Model:           getEnvDefault("GEMINI_MODEL", DefaultModel),
		AIStudioBaseURL: strings.TrimRight(getEnvDefault("AISTUDIO_BASE_URL", DefaultAIStudioBaseURL), "/"),
		DBPath:          getEnvDefault("TRYON_DB", DefaultDBPath),
		PresetsPath:     os.Getenv("TRYON_PRESETS"),
	}
}

func getEnvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
