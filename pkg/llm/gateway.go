// Package llm is the shared LLM interaction substrate: a single Gateway
// with pluggable Providers, a pure JSON-extraction helper, and a JSON-Schema
// validation step every agent runs before trusting an extracted object.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"
)

// InvocationResult is the Gateway's uniform return value: exactly one of OK
// (with Text) or the fallback marker (with Reason) is populated. The
// Gateway never returns a Go error for provider-side failures.
type InvocationResult struct {
	OK     bool
	Text   string
	Reason string
}

// Fallback builds a fallback InvocationResult.
func Fallback(reason string) InvocationResult { return InvocationResult{OK: false, Reason: reason} }

// Opts carries the per-call generation parameters.
type Opts struct {
	SystemPrompt string
	Temperature  float64
	MaxTokens    int
	Timeout      time.Duration // defaults to 60s per §5
}

// ProviderError is returned by a Provider when the call failed; Transient
// marks network-level failures eligible for the Gateway's single retry,
// AuthExpired marks a 401 eligible for one token refresh and retry.
type ProviderError struct {
	Transient   bool
	AuthExpired bool
	StatusCode  int
	Err         error
}

func (e *ProviderError) Error() string { return e.Err.Error() }
func (e *ProviderError) Unwrap() error  { return e.Err }

// Provider is one concrete way of reaching a model: a project-scoped
// (Vertex-style) endpoint, or an API-key endpoint for a specific vendor.
// Exactly one Provider is active per Gateway, selected at construction time
// from configuration.
type Provider interface {
	Name() string
	Generate(ctx context.Context, model, systemPrompt, prompt string, temperature float64, maxTokens int) (string, error)
}

// Gateway is the single entry point every agent calls through. It never
// raises for provider errors; only invalid arguments (empty model/prompt)
// return a Go error.
type Gateway struct {
	provider Provider
}

// NewGateway wraps provider. A nil provider means "no credentials
// configured"; Invoke then always returns the fallback result.
func NewGateway(provider Provider) *Gateway {
	return &Gateway{provider: provider}
}

// Invoke is the Gateway's uniform entry point.
func (g *Gateway) Invoke(ctx context.Context, model, prompt string, opts Opts) (InvocationResult, error) {
	if model == "" {
		return InvocationResult{}, errors.New("llm: model is required")
	}
	if prompt == "" {
		return InvocationResult{}, errors.New("llm: prompt is required")
	}
	if g.provider == nil {
		return Fallback("no credentials"), nil
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	text, err := g.provider.Generate(callCtx, model, opts.SystemPrompt, prompt, opts.Temperature, opts.MaxTokens)
	if err == nil {
		if text == "" {
			return Fallback("empty response"), nil
		}
		return InvocationResult{OK: true, Text: text}, nil
	}

	if callCtx.Err() != nil {
		slog.Warn("llm call cancelled or timed out", "provider", g.provider.Name(), "model", model, "error", callCtx.Err())
		return Fallback("timeout"), nil
	}

	if shouldRetry(err) {
		slog.Warn("llm call failed, retrying once", "provider", g.provider.Name(), "model", model, "error", err)
		text, err = g.provider.Generate(callCtx, model, opts.SystemPrompt, prompt, opts.Temperature, opts.MaxTokens)
		if err == nil {
			if text == "" {
				return Fallback("empty response"), nil
			}
			return InvocationResult{OK: true, Text: text}, nil
		}
	}

	slog.Warn("llm call failed, using fallback", "provider", g.provider.Name(), "model", model, "error", err)
	return Fallback(fmt.Sprintf("provider error: %v", err)), nil
}

// shouldRetry decides the Gateway's single retry. 401s are handled inside
// the provider (refresh-and-retry there) so by the time an error reaches
// here a lingering AuthExpired means the refresh itself failed; that is not
// retried again. Only genuinely transient, non-4xx failures get the
// Gateway's one retry.
func shouldRetry(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		if pe.Transient {
			return true
		}
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
