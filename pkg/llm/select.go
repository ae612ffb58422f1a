package llm

import (
	"fmt"
	"os"
)

// ConfigSource is the subset of config.Config the Gateway needs to select a
// provider; kept as a narrow interface (rather than importing
// internal/config, which would create an import cycle with internal/ from
// pkg/) so pkg/llm stays independently importable.
type ConfigSource interface {
	ProjectID() string
	Location() string
	CredentialsJSON() string
	CredentialsPath() string
	APIKey() string
	Provider() string
}

// SelectProvider implements §4.1's provider-selection precedence: the
// authenticated project-scoped endpoint is preferred; otherwise the
// configured API-key endpoint; otherwise nil (the Gateway then always
// returns the "no credentials" fallback).
func SelectProvider(cfg ConfigSource) (Provider, error) {
	if cfg.ProjectID() != "" && cfg.Location() != "" {
		creds, err := loadCredentials(cfg.CredentialsJSON(), cfg.CredentialsPath())
		if err != nil {
			return nil, fmt.Errorf("llm: project-scoped credentials: %w", err)
		}
		return NewVertexProvider(cfg.ProjectID(), cfg.Location(), creds)
	}
	if cfg.APIKey() != "" {
		switch cfg.Provider() {
		case "openai":
			return NewOpenAIProvider(cfg.APIKey()), nil
		default:
			return NewAnthropicProvider(cfg.APIKey()), nil
		}
	}
	return nil, nil
}

func loadCredentials(inlineJSON, path string) ([]byte, error) {
	if inlineJSON != "" {
		return []byte(inlineJSON), nil
	}
	if path != "" {
		return os.ReadFile(path)
	}
	return nil, fmt.Errorf("neither LLM_CREDENTIALS_JSON nor LLM_CREDENTIALS_PATH is set")
}
