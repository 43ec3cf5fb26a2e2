package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"GEMINI_API_KEY", "API_KEY", "TRYON_PROVIDER", "GEMINI_MODEL", "AISTUDIO_BASE_URL", "TRYON_DB", "TRYON_PRESETS"} {
		t.Setenv(key, "")
	}

	env := Load()
	if env.APIKey != "" {
		t.Errorf("Expected empty API key, got %q", env.APIKey)
	}
	if env.Provider != DefaultProvider {
		t.Errorf("Expected provider %s, got %s", DefaultProvider, env.Provider)
	}
	if env.Model != DefaultModel {
		t.Errorf("Expected model %s, got %s", DefaultModel, env.Model)
	}
	if env.AIStudioBaseURL != DefaultAIStudioBaseURL {
		t.Errorf("Expected base URL %s, got %s", DefaultAIStudioBaseURL, env.AIStudioBaseURL)
	}
	if env.DBPath != DefaultDBPath {
		t.Errorf("Expected db path %s, got %s", DefaultDBPath, env.DBPath)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "fallback-key")
	t.Setenv("TRYON_PROVIDER", "Gemini")
	t.Setenv("AISTUDIO_BASE_URL", "http://localhost:9999/")
	t.Setenv("TRYON_DB", "/tmp/history.db")

	env := Load()
	if env.APIKey != "fallback-key" {
		t.Errorf("Expected API_KEY fallback, got %q", env.APIKey)
	}
	if env.Provider != "gemini" {
		t.Errorf("Expected lower-cased provider, got %s", env.Provider)
	}
	if env.AIStudioBaseURL != "http://localhost:9999" {
		t.Errorf("Expected trailing slash trimmed, got %s", env.AIStudioBaseURL)
	}
	if env.DBPath != "/tmp/history.db" {
		t.Errorf("Expected db override, got %s", env.DBPath)
	}

	t.Setenv("GEMINI_API_KEY", "primary-key")
	if got := Load().APIKey; got != "primary-key" {
		t.Errorf("Expected GEMINI_API_KEY to win, got %q", got)
	}
}
