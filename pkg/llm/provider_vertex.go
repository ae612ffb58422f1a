package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/jwt"
)

// VertexProvider is the project-scoped Provider: it authenticates to a
// generative endpoint scoped to LLM_PROJECT_ID/LLM_LOCATION using a
// service-account credential, refreshing its access token on 401.
type VertexProvider struct {
	projectID string
	location  string
	httpClient *http.Client

	tokens *tokenManager
}

// NewVertexProvider builds a Provider from a service-account JSON
// credential. scopes is fixed to the cloud-platform scope, matching how the
// original service authenticates against Vertex AI.
func NewVertexProvider(projectID, location string, credentialsJSON []byte) (*VertexProvider, error) {
	cfg, err := parseServiceAccount(credentialsJSON)
	if err != nil {
		return nil, fmt.Errorf("vertex: parse credentials: %w", err)
	}
	return &VertexProvider{
		projectID:  projectID,
		location:   location,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		tokens:     newTokenManager(cfg),
	}, nil
}

func parseServiceAccount(credentialsJSON []byte) (*jwt.Config, error) {
	var sa struct {
		ClientEmail string `json:"client_email"`
		PrivateKey  string `json:"private_key"`
		TokenURI    string `json:"token_uri"`
	}
	if err := json.Unmarshal(credentialsJSON, &sa); err != nil {
		return nil, err
	}
	return &jwt.Config{
		Email:      sa.ClientEmail,
		PrivateKey: []byte(sa.PrivateKey),
		TokenURL:   sa.TokenURI,
		Scopes:     []string{"https://www.googleapis.com/auth/cloud-platform"},
	}, nil
}

func (p *VertexProvider) Name() string { return "vertex" }

type vertexPart struct {
	Text string `json:"text"`
}

type vertexContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []vertexPart `json:"parts"`
}

type vertexRequest struct {
	Contents          []vertexContent `json:"contents"`
	SystemInstruction *vertexContent  `json:"systemInstruction,omitempty"`
	GenerationConfig  struct {
		Temperature     float64 `json:"temperature"`
		MaxOutputTokens int     `json:"maxOutputTokens"`
	} `json:"generationConfig"`
}

type vertexResponse struct {
	Candidates []struct {
		Content vertexContent `json:"content"`
	} `json:"candidates"`
}

func (p *VertexProvider) Generate(ctx context.Context, model, systemPrompt, prompt string, temperature float64, maxTokens int) (string, error) {
	token, err := p.tokens.token(ctx)
	if err != nil {
		return "", &ProviderError{Transient: true, Err: fmt.Errorf("vertex: token: %w", err)}
	}

	text, status, err := p.doCall(ctx, model, systemPrompt, prompt, temperature, maxTokens, token)
	if status == http.StatusUnauthorized {
		refreshed, refreshErr := p.tokens.refresh(ctx, token)
		if refreshErr != nil {
			return "", &ProviderError{StatusCode: http.StatusUnauthorized, Err: fmt.Errorf("vertex: refresh: %w", refreshErr)}
		}
		text, status, err = p.doCall(ctx, model, systemPrompt, prompt, temperature, maxTokens, refreshed)
	}
	if err != nil {
		return "", classifyVertexError(err, status)
	}
	return text, nil
}

func (p *VertexProvider) doCall(ctx context.Context, model, systemPrompt, prompt string, temperature float64, maxTokens int, token string) (string, int, error) {
	endpoint := fmt.Sprintf(
		"https://%s-aiplatform.googleapis.com/v1/projects/%s/locations/%s/publishers/google/models/%s:generateContent",
		p.location, p.projectID, p.location, model,
	)

	reqBody := vertexRequest{
		Contents: []vertexContent{{Role: "user", Parts: []vertexPart{{Text: prompt}}}},
	}
	reqBody.GenerationConfig.Temperature = temperature
	reqBody.GenerationConfig.MaxOutputTokens = maxTokens
	if systemPrompt != "" {
		reqBody.SystemInstruction = &vertexContent{Parts: []vertexPart{{Text: systemPrompt}}}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", 0, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", 0, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", resp.StatusCode, err
	}
	if resp.StatusCode != http.StatusOK {
		return "", resp.StatusCode, fmt.Errorf("vertex: status %d: %s", resp.StatusCode, string(body))
	}

	var parsed vertexResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", resp.StatusCode, err
	}
	if len(parsed.Candidates) == 0 {
		return "", resp.StatusCode, nil
	}
	var sb strings.Builder
	for _, part := range parsed.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String(), resp.StatusCode, nil
}

func classifyVertexError(err error, status int) error {
	switch {
	case status == http.StatusUnauthorized:
		return &ProviderError{StatusCode: status, Err: err}
	case status == http.StatusTooManyRequests, status >= 500:
		return &ProviderError{Transient: true, StatusCode: status, Err: err}
	case status >= 400:
		return &ProviderError{StatusCode: status, Err: err}
	default:
		return &ProviderError{Transient: true, Err: err}
	}
}

// tokenManager serializes token refreshes so one in-flight refresh gates all
// concurrent waiters, per §5's shared-auth-client requirement. token() reuses
// the cached, not-yet-expired token when available. refresh() is called by
// every goroutine that sees a 401 on oldToken; under the lock it checks
// whether the cached token has already moved past oldToken — meaning some
// other waiter's refresh already landed — and if so returns that token
// without touching the network. Only the first caller to reach the lock
// while the cache still holds oldToken performs the real
// config.TokenSource(ctx) round-trip.
type tokenManager struct {
	mu     sync.Mutex
	config *jwt.Config
	source oauth2.TokenSource
}

func newTokenManager(cfg *jwt.Config) *tokenManager {
	return &tokenManager{config: cfg, source: cfg.TokenSource(context.Background())}
}

func (m *tokenManager) token(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tok, err := m.source.Token()
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}

func (m *tokenManager) refresh(ctx context.Context, oldToken string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if tok, err := m.source.Token(); err == nil && tok.AccessToken != oldToken {
		return tok.AccessToken, nil
	}

	m.source = m.config.TokenSource(ctx)
	tok, err := m.source.Token()
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}
