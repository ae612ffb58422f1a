// Package config loads the process's configuration once at startup into an
// immutable record, matching the teacher's cmd/*/main.go idiom of calling
// godotenv.Load() before reading the environment, generalized with viper so
// defaults and env overrides layer cleanly instead of scattered os.Getenv
// calls.
package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the immutable configuration record injected into the Gateway,
// stores, and the HTTP router. Nothing downstream re-reads the environment.
type Config struct {
	LLMProjectID        string
	LLMLocation         string
	LLMCredentialsJSON  string
	LLMCredentialsPath  string
	LLMAPIKey           string
	LLMProvider         string // "anthropic" or "openai", when LLMAPIKey is set

	CacheURL       string
	CritiqueLogURL string

	RateLimitWindowMS   int
	RateLimitMaxRequests int

	HTTPAddr string

	OTELJaegerEndpoint string
}

// Load reads a local .env (if present) then the process environment into a
// Config. Absent optional variables are left as their zero value; callers
// interpret zero values as "feature disabled" per §6.
func Load() Config {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("LLM_PROVIDER", "anthropic")

	return Config{
		LLMProjectID:       v.GetString("LLM_PROJECT_ID"),
		LLMLocation:        v.GetString("LLM_LOCATION"),
		LLMCredentialsJSON: v.GetString("LLM_CREDENTIALS_JSON"),
		LLMCredentialsPath: v.GetString("LLM_CREDENTIALS_PATH"),
		LLMAPIKey:          v.GetString("LLM_API_KEY"),
		LLMProvider:        v.GetString("LLM_PROVIDER"),

		CacheURL:       v.GetString("CACHE_URL"),
		CritiqueLogURL: v.GetString("CRITIQUE_LOG_URL"),

		RateLimitWindowMS:    v.GetInt("RATE_LIMIT_WINDOW_MS"),
		RateLimitMaxRequests: v.GetInt("RATE_LIMIT_MAX_REQUESTS"),

		HTTPAddr: v.GetString("HTTP_ADDR"),

		OTELJaegerEndpoint: v.GetString("OTEL_EXPORTER_JAEGER_ENDPOINT"),
	}
}

// UsesProjectScopedProvider reports whether the LLM Gateway should use the
// project-scoped (Vertex-style) provider.
func (c Config) UsesProjectScopedProvider() bool {
	return c.LLMProjectID != "" && c.LLMLocation != ""
}

// HasCredentials reports whether any LLM provider can be constructed.
func (c Config) HasCredentials() bool {
	return c.UsesProjectScopedProvider() || c.LLMAPIKey != ""
}

// The methods below satisfy pkg/llm.ConfigSource, letting pkg/llm select a
// provider without importing internal/config.
func (c Config) ProjectID() string       { return c.LLMProjectID }
func (c Config) Location() string        { return c.LLMLocation }
func (c Config) CredentialsJSON() string { return c.LLMCredentialsJSON }
func (c Config) CredentialsPath() string { return c.LLMCredentialsPath }
func (c Config) APIKey() string          { return c.LLMAPIKey }
func (c Config) Provider() string        { return c.LLMProvider }
