// Package narrative implements the Narrative Agent: a cached
// {vision, differentiation, timing, tagline} quadruple for investor
// storytelling.
package narrative

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/omjain/venture-lens/internal/model"
	"github.com/omjain/venture-lens/internal/store"
	"github.com/omjain/venture-lens/pkg/llm"
)

const modelName = "gemini-1.5-pro"

// Agent is the Narrative Agent. A nil cache disables caching silently.
type Agent struct {
	gateway *llm.Gateway
	cache   store.CacheStore
}

func NewAgent(gateway *llm.Gateway, cache store.CacheStore) *Agent {
	return &Agent{gateway: gateway, cache: cache}
}

const narrativeSchema = `{
  "type": "object",
  "properties": {
    "vision": {"type": "string"},
    "differentiation": {"type": "string"},
    "timing": {"type": "string"},
    "tagline": {"type": "string"}
  }
}`

// Narrative implements §4.4's Narrative(ctx, facts, cacheKey, useCache)
// operation.
func (a *Agent) Narrative(ctx context.Context, facts model.StartupFacts, cacheKey string, useCache bool) (model.Narrative, error) {
	if cacheKey != "" && useCache && a.cache != nil {
		if cached, ok := a.cache.GetNarrative(ctx, cacheKey); ok {
			return cached, nil
		}
	}

	degraded := false
	var n model.Narrative

	if a.gateway != nil {
		prompt := buildPrompt(facts)
		result, err := a.gateway.Invoke(ctx, modelName, prompt, llm.Opts{Temperature: 0.7, MaxTokens: 1024})
		if err != nil {
			return model.Narrative{}, err
		}
		if result.OK && llm.ParseAndValidate(result.Text, narrativeSchema, &n) {
			n = fillMissingFields(n, facts)
		} else {
			degraded = true
			n = fallbackNarrative(facts)
		}
	} else {
		degraded = true
		n = fallbackNarrative(facts)
	}
	n.Degraded = degraded

	if cacheKey != "" && a.cache != nil {
		if err := a.cache.SetNarrative(ctx, cacheKey, n); err != nil {
			slog.Warn("narrative cache write failed", "key", cacheKey, "error", err)
		}
	}

	return n, nil
}

func buildPrompt(facts model.StartupFacts) string {
	var b strings.Builder
	b.WriteString("Write an investor-facing narrative for this startup.\n\n")
	fmt.Fprintf(&b, "Name: %s\n", facts.Name)
	fmt.Fprintf(&b, "Description: %s\n", facts.Description)
	fmt.Fprintf(&b, "Solution: %s\n", facts.Solution)
	fmt.Fprintf(&b, "Technology: %s\n", facts.Technology)
	fmt.Fprintf(&b, "Competition: %s\n", facts.Competition)
	fmt.Fprintf(&b, "Sector: %s\n", facts.Sector)
	fmt.Fprintf(&b, "Market: %s\n", facts.Market)
	b.WriteString("\nRespond with a single JSON object with exactly: vision, differentiation, timing, tagline (tagline must be 12 words or fewer).")
	return b.String()
}

// fillMissingFields backfills any field the model left blank from the
// rule-based generator, so a partially-populated LLM response never
// surfaces an empty string.
func fillMissingFields(n model.Narrative, facts model.StartupFacts) model.Narrative {
	fallback := fallbackNarrative(facts)
	if strings.TrimSpace(n.Vision) == "" {
		n.Vision = fallback.Vision
	}
	if strings.TrimSpace(n.Differentiation) == "" {
		n.Differentiation = fallback.Differentiation
	}
	if strings.TrimSpace(n.Timing) == "" {
		n.Timing = fallback.Timing
	}
	if strings.TrimSpace(n.Tagline) == "" {
		n.Tagline = fallback.Tagline
	}
	return n
}

// fallbackNarrative implements §4.4's rule-based fallback, per field. Pure
// and deterministic given fixed input (fallback idempotence, §8).
func fallbackNarrative(facts model.StartupFacts) model.Narrative {
	sector := orDefault(facts.Sector, "its sector")
	solutionOrDescription := orDefault(facts.Solution, orDefault(facts.Description, "solving an important problem"))
	technologyOrSolution := orDefault(facts.Technology, orDefault(facts.Solution, "its technology"))
	competitionOrDefault := orDefault(facts.Competition, "existing solutions")

	return model.Narrative{
		Vision:          fmt.Sprintf("%s aims to transform %s by %s.", orDefault(facts.Name, model.UnknownStartupName), sector, lowerFirst(solutionOrDescription)),
		Differentiation: fmt.Sprintf("Differentiates via %s against %s.", technologyOrSolution, competitionOrDefault),
		Timing:          fmt.Sprintf("%s is growing and %s makes now the right time.", sector, trendToken(facts.Market)),
		Tagline:         tagline(facts.Description),
	}
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func trendToken(market string) string {
	if strings.TrimSpace(market) == "" {
		return "growing demand"
	}
	words := strings.Fields(market)
	if len(words) > 5 {
		words = words[:5]
	}
	return strings.Join(words, " ")
}

// tagline takes the first 10 words of description, title-cased, per §4.4.
func tagline(description string) string {
	words := strings.Fields(description)
	if len(words) == 0 {
		return "A new startup worth watching"
	}
	if len(words) > 10 {
		words = words[:10]
	}
	titled := make([]string, len(words))
	for i, w := range words {
		titled[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(titled, " ")
}
