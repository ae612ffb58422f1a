// Package scoring implements the Scoring Agent: per-dimension assessment of
// a startup's idea, team, traction, and market, rolled up into a weighted
// composite score and a recommendation string.
package scoring

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/omjain/venture-lens/internal/model"
	"github.com/omjain/venture-lens/pkg/llm"
)

const modelName = "gemini-1.5-pro"

// Agent is the Scoring Agent. A nil Gateway is valid: every call then takes
// the rule-based path.
type Agent struct {
	gateway *llm.Gateway
}

func NewAgent(gateway *llm.Gateway) *Agent {
	return &Agent{gateway: gateway}
}

// Fields is the raw four-field input accepted directly by the /score
// endpoint, bypassing StartupFacts derivation.
type Fields struct {
	Idea     string
	Team     string
	Traction string
	Market   string
}

// FieldsFromFacts derives the four scoring fields from a StartupFacts
// record per §4.2: description→idea, team→team, traction→traction,
// market→market, with idea falling back to problem and solution when the
// description is empty; any field still empty becomes the literal value
// "not specified".
func FieldsFromFacts(f model.StartupFacts) Fields {
	pick := func(primary, secondary string) string {
		if primary != "" {
			return primary
		}
		if strings.TrimSpace(secondary) != "" {
			return secondary
		}
		return "not specified"
	}
	return Fields{
		Idea:     pick(f.Description, f.Problem+" "+f.Solution),
		Team:     pick(f.Team, ""),
		Traction: pick(f.Traction, ""),
		Market:   pick(f.Market, ""),
	}
}

const scoringSchema = `{
  "type": "object",
  "properties": {
    "idea": {"$ref": "#/definitions/dim"},
    "team": {"$ref": "#/definitions/dim"},
    "traction": {"$ref": "#/definitions/dim"},
    "market": {"$ref": "#/definitions/dim"}
  },
  "required": ["idea", "team", "traction", "market"],
  "definitions": {
    "dim": {
      "type": "object",
      "properties": {
        "score": {"type": "number"},
        "assessment": {"type": "string"},
        "strengths": {"type": "array", "items": {"type": "string"}},
        "concerns": {"type": "array", "items": {"type": "string"}}
      },
      "required": ["score"]
    }
  }
}`

type dimResponse struct {
	Score      float64  `json:"score"`
	Assessment string   `json:"assessment"`
	Strengths  []string `json:"strengths"`
	Concerns   []string `json:"concerns"`
}

type scoringResponse struct {
	Idea     dimResponse `json:"idea"`
	Team     dimResponse `json:"team"`
	Traction dimResponse `json:"traction"`
	Market   dimResponse `json:"market"`
}

// Score implements §4.2's Score(ctx, facts) operation, exposed here on the
// already-derived Fields so both the StartupFacts path and the raw
// four-field HTTP path share one implementation.
func (a *Agent) Score(ctx context.Context, fields Fields) (model.ScoreReport, error) {
	degraded := false
	var resp scoringResponse

	if a.gateway != nil {
		prompt := buildPrompt(fields)
		result, err := a.gateway.Invoke(ctx, modelName, prompt, llm.Opts{Temperature: 0.3, MaxTokens: 2048})
		if err != nil {
			return model.ScoreReport{}, err
		}
		if result.OK && llm.ParseAndValidate(result.Text, scoringSchema, &resp) {
			// LLM path succeeded.
		} else {
			degraded = true
			resp = heuristicResponse(fields)
		}
	} else {
		degraded = true
		resp = heuristicResponse(fields)
	}

	report := model.ScoreReport{
		Dimensions: map[model.Dimension]model.DimensionAssessment{
			model.DimensionIdea:     clampAssessment(resp.Idea),
			model.DimensionTeam:     clampAssessment(resp.Team),
			model.DimensionTraction: clampAssessment(resp.Traction),
			model.DimensionMarket:   clampAssessment(resp.Market),
		},
		Degraded: degraded,
	}
	report.OverallScore = overallScore(report)
	report.Recommendation = recommendationFor(report.OverallScore)
	report.Confidence = confidenceFor(fields, degraded)
	return report, nil
}

func clampAssessment(d dimResponse) model.DimensionAssessment {
	score := d.Score
	if score < 0 {
		score = 0
	}
	if score > 10 {
		score = 10
	}
	return model.DimensionAssessment{
		Score:      math.Round(score*10) / 10,
		Assessment: d.Assessment,
		Strengths:  d.Strengths,
		Concerns:   d.Concerns,
	}
}

func overallScore(r model.ScoreReport) float64 {
	sum := 0.0
	for dim, weight := range model.DimensionWeights {
		sum += weight * r.Dimensions[dim].Score
	}
	if sum < 0 {
		sum = 0
	}
	if sum > 10 {
		sum = 10
	}
	return math.Round(sum*10) / 10
}

func recommendationFor(overall float64) string {
	switch {
	case overall >= 8.0:
		return "Strong Investment Opportunity — High conviction"
	case overall >= 6.5:
		return "Good Investment Opportunity — Worth exploring with additional research"
	case overall >= 5.0:
		return "Moderate Opportunity — Needs improvement in key areas"
	case overall >= 3.5:
		return "Weak Opportunity — Significant concerns"
	default:
		return "Not Recommended — Too many red flags"
	}
}

func confidenceFor(fields Fields, degraded bool) float64 {
	confidence := 0.6
	for _, field := range []string{fields.Idea, fields.Team, fields.Traction, fields.Market} {
		if len(field) > 200 {
			confidence += 0.1
		}
	}
	if confidence > 0.95 {
		confidence = 0.95
	}
	if degraded {
		confidence = 0.5
	}
	return math.Round(confidence*100) / 100
}

func buildPrompt(fields Fields) string {
	var b strings.Builder
	b.WriteString("You are evaluating an early-stage startup across four dimensions: idea, team, traction, market.\n\n")
	fmt.Fprintf(&b, "Idea:\n%s\n\n", fields.Idea)
	fmt.Fprintf(&b, "Team:\n%s\n\n", fields.Team)
	fmt.Fprintf(&b, "Traction:\n%s\n\n", fields.Traction)
	fmt.Fprintf(&b, "Market:\n%s\n\n", fields.Market)
	b.WriteString("Respond with a single JSON object with exactly the keys idea, team, traction, market. ")
	b.WriteString("Each value must be an object with: score (0-10 number), assessment (short prose), strengths (list of up to 5 strings), concerns (list of up to 5 strings).")
	return b.String()
}

var quantitativeTokenPattern = regexp.MustCompile(`[$%]|\d{3,}`)

var dimensionKeywords = map[model.Dimension][]string{
	model.DimensionIdea:     {"ai", "platform", "proprietary", "patent"},
	model.DimensionTeam:     {"founder", "ex-", "phd", "years"},
	model.DimensionTraction: {"users", "mrr", "arr", "customers", "growth"},
	model.DimensionMarket:   {"tam", "billion", "cagr", "global"},
}

// heuristicResponse implements §4.2.3's rule-based fallback scoring,
// keyword-cluster based and deterministic given fixed input (fallback
// idempotence, §8).
func heuristicResponse(fields Fields) scoringResponse {
	text := map[model.Dimension]string{
		model.DimensionIdea:     fields.Idea,
		model.DimensionTeam:     fields.Team,
		model.DimensionTraction: fields.Traction,
		model.DimensionMarket:   fields.Market,
	}

	score := func(dim model.Dimension) dimResponse {
		raw := text[dim]
		lower := strings.ToLower(raw)
		score := 5.0

		var matched, unmatched []string
		for _, kw := range dimensionKeywords[dim] {
			if strings.Contains(lower, kw) {
				score++
				matched = append(matched, kw)
			} else {
				unmatched = append(unmatched, kw)
			}
		}
		score += 0.5 * float64(len(quantitativeTokenPattern.FindAllString(raw, -1)))
		if score > 9.0 {
			score = 9.0
		}

		strengths := strengthsFromKeywords(dim, matched)
		concerns := concernsFromKeywords(dim, unmatched)
		sort.Strings(strengths)
		sort.Strings(concerns)

		return dimResponse{
			Score:      score,
			Assessment: heuristicAssessment(dim, score),
			Strengths:  strengths,
			Concerns:   concerns,
		}
	}

	return scoringResponse{
		Idea:     score(model.DimensionIdea),
		Team:     score(model.DimensionTeam),
		Traction: score(model.DimensionTraction),
		Market:   score(model.DimensionMarket),
	}
}

func strengthsFromKeywords(dim model.Dimension, matched []string) []string {
	if len(matched) == 0 {
		return nil
	}
	out := make([]string, 0, len(matched))
	for _, kw := range matched {
		out = append(out, fmt.Sprintf("mentions %q, a positive signal for %s", kw, dim))
	}
	return out
}

func concernsFromKeywords(dim model.Dimension, unmatched []string) []string {
	if len(unmatched) == len(dimensionKeywords[dim]) {
		return []string{fmt.Sprintf("no strong %s signals found in the provided text", dim)}
	}
	return nil
}

func heuristicAssessment(dim model.Dimension, score float64) string {
	if score >= 7 {
		return fmt.Sprintf("Heuristic review found multiple strong %s signals.", dim)
	}
	if score >= 5 {
		return fmt.Sprintf("Heuristic review found limited %s signals; more detail would help.", dim)
	}
	return fmt.Sprintf("Heuristic review found little evidence on %s.", dim)
}
