// Package critique implements the Critique Agent: up to five ranked red
// flags with a deterministic overall risk label, best-effort persisted to
// the critique log store.
package critique

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/sahilm/fuzzy"

	"github.com/omjain/venture-lens/internal/model"
	"github.com/omjain/venture-lens/internal/store"
	"github.com/omjain/venture-lens/pkg/llm"
)

const modelName = "gemini-1.5-pro"

const maxRedFlags = 5

// Agent is the Critique Agent. Logging is best-effort: a nil logStore
// disables persistence silently.
type Agent struct {
	gateway  *llm.Gateway
	logStore store.CritiqueLogStore
}

func NewAgent(gateway *llm.Gateway, logStore store.CritiqueLogStore) *Agent {
	return &Agent{gateway: gateway, logStore: logStore}
}

const critiqueSchema = `{
  "type": "object",
  "properties": {
    "red_flags": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "flag": {"type": "string"},
          "severity": {"type": "string"},
          "explanation": {"type": "string"},
          "category": {"type": "string"}
        },
        "required": ["flag", "severity"]
      }
    }
  },
  "required": ["red_flags"]
}`

type rawRedFlag struct {
	Flag        string `json:"flag"`
	Severity    string `json:"severity"`
	Explanation string `json:"explanation"`
	Category    string `json:"category"`
}

type critiqueResponse struct {
	RedFlags []rawRedFlag `json:"red_flags"`
}

// Critique implements §4.3's Critique(ctx, scoreReport, factsOrSummary)
// operation. startupName identifies the log-store row and labels the
// prompt; it may be empty.
func (a *Agent) Critique(ctx context.Context, startupName string, scores model.ScoreReport, facts model.StartupFacts, summary string) (model.CritiqueReport, error) {
	degraded := false
	var flags []model.RedFlag

	if a.gateway != nil {
		prompt := buildPrompt(scores, facts, summary)
		result, err := a.gateway.Invoke(ctx, modelName, prompt, llm.Opts{Temperature: 0.4, MaxTokens: 1536})
		if err != nil {
			return model.CritiqueReport{}, err
		}
		var resp critiqueResponse
		if result.OK && llm.ParseAndValidate(result.Text, critiqueSchema, &resp) {
			flags = normalizeFlags(resp.RedFlags)
		} else {
			degraded = true
			flags = ruleBasedFlags(scores, facts)
		}
	} else {
		degraded = true
		flags = ruleBasedFlags(scores, facts)
	}

	flags = truncateBySeverity(flags, maxRedFlags)
	riskLabel := model.RiskLabelFor(flags)

	report := model.CritiqueReport{
		RedFlags:          flags,
		OverallRiskLabel:  riskLabel,
		Summary:           summaryFor(riskLabel, flags),
		AnalysisTimestamp: time.Now().UTC(),
		Degraded:          degraded,
	}

	if a.logStore != nil {
		name := startupName
		if name == "" {
			name = facts.Name
		}
		store.AppendBestEffort(ctx, a.logStore, name, report)
	}

	return report, nil
}

func buildPrompt(scores model.ScoreReport, facts model.StartupFacts, summary string) string {
	var b strings.Builder
	b.WriteString("You are a skeptical venture analyst. Identify up to 5 concrete red flags in this startup.\n")
	b.WriteString("For each, name the dimension it concerns (idea, team, traction, market, financial, technical, or other) and rate severity as low, medium, high, or critical.\n\n")
	for _, dim := range model.DimensionOrder {
		assessment := scores.Dimensions[dim]
		fmt.Fprintf(&b, "%s score: %.1f — %s\n", dim, assessment.Score, assessment.Assessment)
	}
	if summary != "" {
		fmt.Fprintf(&b, "\nPitch summary:\n%s\n", summary)
	}
	b.WriteString("\nRespond with a single JSON object: {\"red_flags\": [{\"flag\": ..., \"severity\": ..., \"explanation\": ..., \"category\": ...}]}.")
	return b.String()
}

var allowedSeverities = []string{string(model.SeverityLow), string(model.SeverityMedium), string(model.SeverityHigh), string(model.SeverityCritical)}
var allowedCategories = []model.Category{
	model.CategoryIdea, model.CategoryTeam, model.CategoryTraction, model.CategoryMarket,
	model.CategoryFinancial, model.CategoryTechnical, model.CategoryOther,
}

// normalizeFlags coerces LLM-emitted severity/category strings to the
// closed set per §4.3, fuzzy-matching near-misses and logging coercions.
func normalizeFlags(raw []rawRedFlag) []model.RedFlag {
	out := make([]model.RedFlag, 0, len(raw))
	for _, r := range raw {
		out = append(out, model.RedFlag{
			Flag:        r.Flag,
			Severity:    coerceSeverity(r.Severity),
			Explanation: r.Explanation,
			Category:    coerceCategory(r.Category),
		})
	}
	return out
}

func coerceSeverity(raw string) model.Severity {
	lower := strings.ToLower(strings.TrimSpace(raw))
	for _, s := range allowedSeverities {
		if s == lower {
			return model.Severity(s)
		}
	}
	matches := fuzzy.Find(lower, allowedSeverities)
	if len(matches) > 0 {
		coerced := model.Severity(allowedSeverities[matches[0].Index])
		slog.Warn("coerced unknown severity", "raw", raw, "coerced", coerced)
		return coerced
	}
	slog.Warn("coerced unknown severity to medium (no fuzzy match)", "raw", raw)
	return model.SeverityMedium
}

func coerceCategory(raw string) model.Category {
	lower := strings.ToLower(strings.TrimSpace(raw))
	for _, c := range allowedCategories {
		if string(c) == lower {
			return c
		}
	}
	if lower != "" {
		slog.Warn("coerced unknown category to other", "raw", raw)
	}
	return model.CategoryOther
}

// truncateBySeverity keeps the n highest-severity flags, critical first,
// ties broken by original (model) order — a stable sort on rank descending.
func truncateBySeverity(flags []model.RedFlag, n int) []model.RedFlag {
	sorted := make([]model.RedFlag, len(flags))
	copy(sorted, flags)
	sort.SliceStable(sorted, func(i, j int) bool {
		return model.SeverityRank[sorted[i].Severity] > model.SeverityRank[sorted[j].Severity]
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// ruleBasedFlags implements §4.3's fallback: one RedFlag per dimension
// scoring below 5, plus a flag for any empty required StartupFacts field,
// plus an "insufficient data" flag if nothing else was emitted. Pure and
// deterministic given fixed input (fallback idempotence, §8).
func ruleBasedFlags(scores model.ScoreReport, facts model.StartupFacts) []model.RedFlag {
	var flags []model.RedFlag

	for _, dim := range model.DimensionOrder {
		score := scores.DimensionScore(dim)
		if score >= 5 {
			continue
		}
		severity := model.SeverityMedium
		if score < 3 {
			severity = model.SeverityHigh
		}
		flags = append(flags, model.RedFlag{
			Flag:        fmt.Sprintf("Weak %s fundamentals", dim),
			Severity:    severity,
			Explanation: fmt.Sprintf("%s scored %.1f/10, below the acceptable threshold.", dim, score),
			Category:    dimensionToCategory(dim),
		})
	}

	requiredFields := []struct {
		name  string
		value string
	}{
		{"description", facts.Description},
		{"team", facts.Team},
		{"traction", facts.Traction},
		{"market", facts.Market},
	}
	for _, field := range requiredFields {
		name, value := field.name, field.value
		if strings.TrimSpace(value) == "" {
			flags = append(flags, model.RedFlag{
				Flag:        fmt.Sprintf("Missing %s information", name),
				Severity:    model.SeverityMedium,
				Explanation: fmt.Sprintf("No %s data was provided in the input.", name),
				Category:    model.CategoryOther,
			})
		}
	}

	if len(flags) == 0 {
		flags = append(flags, model.RedFlag{
			Flag:        "Insufficient data for deep critique",
			Severity:    model.SeverityLow,
			Explanation: "The provided material did not surface any specific concerns.",
			Category:    model.CategoryOther,
		})
	}

	return flags
}

func dimensionToCategory(dim model.Dimension) model.Category {
	switch dim {
	case model.DimensionIdea:
		return model.CategoryIdea
	case model.DimensionTeam:
		return model.CategoryTeam
	case model.DimensionTraction:
		return model.CategoryTraction
	case model.DimensionMarket:
		return model.CategoryMarket
	default:
		return model.CategoryOther
	}
}

func summaryFor(risk model.RiskLabel, flags []model.RedFlag) string {
	switch risk {
	case model.RiskVeryHigh:
		return fmt.Sprintf("Critical concerns identified across %d red flag(s); this startup carries very high risk.", len(flags))
	case model.RiskHigh:
		return fmt.Sprintf("Multiple high-severity concerns found across %d red flag(s); this startup carries high risk.", len(flags))
	case model.RiskModerate:
		return fmt.Sprintf("Some notable concerns found across %d red flag(s); this startup carries moderate risk.", len(flags))
	default:
		return fmt.Sprintf("No major concerns found across %d red flag(s); this startup carries low risk.", len(flags))
	}
}
