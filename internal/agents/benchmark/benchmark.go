// Package benchmark implements the Benchmark Agent: comparing extracted
// startup metrics against fixed per-industry priors.
package benchmark

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/omjain/venture-lens/internal/model"
	"github.com/omjain/venture-lens/pkg/llm"
)

const modelName = "gemini-1.5-pro"

// Agent is the Benchmark Agent. The LLM is optional and only ever rewrites
// insight prose; it never changes a numeric field (§4.5).
type Agent struct {
	gateway *llm.Gateway
}

func NewAgent(gateway *llm.Gateway) *Agent {
	return &Agent{gateway: gateway}
}

type metricKey string

const (
	metricRevenueGrowth metricKey = "revenue_growth"
	metricGrossMargin   metricKey = "gross_margin"
	metricCACPayback    metricKey = "cac_payback"
	metricNetRetention  metricKey = "net_retention"
)

var metricOrder = []metricKey{metricRevenueGrowth, metricGrossMargin, metricCACPayback, metricNetRetention}

// Benchmark implements §4.5's Benchmark(ctx, facts) operation.
func (a *Agent) Benchmark(ctx context.Context, facts model.StartupFacts) (model.BenchmarkReport, error) {
	industry := resolveIndustry(facts.Sector)
	prior := model.IndustryPriors[industry]
	extracted := extractMetrics(mergedText(facts))

	comparisons := make([]model.MetricComparison, 0, len(metricOrder))
	percentileSum := 0
	for _, key := range metricOrder {
		startupValue := startupValueFor(key, prior, extracted)
		percentile := percentileFor(key, startupValue, priorValueFor(key, prior))
		comparisons = append(comparisons, model.MetricComparison{
			Metric:       string(key),
			StartupValue: round1(startupValue),
			SectorAvg:    priorValueFor(key, prior),
			Percentile:   percentile,
			Insight:      insightFor(key, startupValue, priorValueFor(key, prior)),
		})
		percentileSum += percentile
	}

	degraded := false
	if a.gateway != nil {
		comparisons, degraded = rewriteInsights(ctx, a.gateway, industry, comparisons)
	}

	avgPercentile := percentileSum / len(metricOrder)
	report := model.BenchmarkReport{
		Industry:        industry,
		Comparisons:     comparisons,
		OverallPosition: positionFor(avgPercentile),
		Summary:         summaryFor(industry, avgPercentile),
		Degraded:        degraded,
	}
	return report, nil
}

func resolveIndustry(sector string) string {
	lower := strings.ToLower(strings.TrimSpace(sector))
	for _, known := range model.KnownIndustries {
		if known == lower {
			return known
		}
	}
	return model.DefaultIndustry
}

func mergedText(facts model.StartupFacts) string {
	return strings.Join([]string{facts.Description, facts.Traction, facts.Market}, " ")
}

type extractedMetrics struct {
	revenue        float64
	revenueFound   bool
	userCount      float64
	userCountFound bool
	teamSize       float64
	teamSizeFound  bool
	growthRatePct  float64
	growthFound    bool
}

var (
	revenuePattern    = regexp.MustCompile(`(?i)\$\s*([\d,.]+)\s*([kmb])?`)
	userCountPattern  = regexp.MustCompile(`(?i)([\d,]+)\s*(?:users|customers|subscribers)`)
	teamSizePattern   = regexp.MustCompile(`(?i)([\d,]+)\s*(?:people|employees|team members)`)
	growthRatePattern = regexp.MustCompile(`(?i)([\d.]+)\s*%\s*(?:growth|yoy|mom)`)
)

// extractMetrics implements §4.5's metric extraction regexes over the
// merged description+traction+market text.
func extractMetrics(text string) extractedMetrics {
	var m extractedMetrics

	if match := revenuePattern.FindStringSubmatch(text); match != nil {
		if v, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", ""), 64); err == nil {
			v = applyMagnitudeSuffix(v, match[2])
			m.revenue = v
			m.revenueFound = true
		}
	}
	if match := userCountPattern.FindStringSubmatch(text); match != nil {
		if v, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", ""), 64); err == nil {
			m.userCount = v
			m.userCountFound = true
		}
	}
	if match := teamSizePattern.FindStringSubmatch(text); match != nil {
		if v, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", ""), 64); err == nil {
			m.teamSize = v
			m.teamSizeFound = true
		}
	}
	if match := growthRatePattern.FindStringSubmatch(text); match != nil {
		if v, err := strconv.ParseFloat(match[1], 64); err == nil {
			m.growthRatePct = v
			m.growthFound = true
		}
	}
	return m
}

func applyMagnitudeSuffix(v float64, suffix string) float64 {
	switch strings.ToLower(suffix) {
	case "k":
		return v * 1_000
	case "m":
		return v * 1_000_000
	case "b":
		return v * 1_000_000_000
	default:
		return v
	}
}

// revenueTierFactor maps extracted annual revenue (or its absence) into a
// multiplier applied to the industry prior for metrics with no direct
// extraction pattern (§4.5: "startup_value ... else heuristic based on
// revenue tier").
func revenueTierFactor(m extractedMetrics) float64 {
	if !m.revenueFound {
		return 0.8
	}
	switch {
	case m.revenue < 100_000:
		return 0.7
	case m.revenue < 1_000_000:
		return 0.9
	case m.revenue < 10_000_000:
		return 1.1
	default:
		return 1.3
	}
}

func startupValueFor(key metricKey, prior model.IndustryPrior, m extractedMetrics) float64 {
	factor := revenueTierFactor(m)
	switch key {
	case metricRevenueGrowth:
		if m.growthFound {
			return m.growthRatePct
		}
		return prior.RevenueGrowthPct * factor
	case metricGrossMargin:
		return clamp(prior.GrossMarginPct*factor, 0, 100)
	case metricCACPayback:
		// Lower is better; a stronger (>1) factor improves payback (shortens it).
		return clampMin(prior.CACPaybackMonths/factor, 1)
	case metricNetRetention:
		if m.userCountFound && m.userCount > 0 {
			scale := 1.0 + logScale(m.userCount)
			return prior.NetRetentionPct * scale
		}
		return prior.NetRetentionPct * factor
	default:
		return 0
	}
}

func priorValueFor(key metricKey, prior model.IndustryPrior) float64 {
	switch key {
	case metricRevenueGrowth:
		return prior.RevenueGrowthPct
	case metricGrossMargin:
		return prior.GrossMarginPct
	case metricCACPayback:
		return prior.CACPaybackMonths
	case metricNetRetention:
		return prior.NetRetentionPct
	default:
		return 0
	}
}

// percentileFor implements §4.5's percentile rule: startup/prior*50,
// clamped to [10,95] for higher-is-better metrics; inverted for
// cac_payback, where lower is better.
func percentileFor(key metricKey, startupValue, priorValue float64) int {
	if priorValue == 0 {
		return 50
	}
	var raw float64
	if key == metricCACPayback {
		raw = (priorValue / startupValue) * 50
	} else {
		raw = (startupValue / priorValue) * 50
	}
	if raw < 10 {
		raw = 10
	}
	if raw > 95 {
		raw = 95
	}
	return int(raw + 0.5)
}

func positionFor(avgPercentile int) model.OverallPosition {
	switch {
	case avgPercentile >= 90:
		return model.PositionTopDecile
	case avgPercentile >= 75:
		return model.PositionTopQuartile
	case avgPercentile >= 55:
		return model.PositionAboveAverage
	case avgPercentile >= 40:
		return model.PositionAverage
	default:
		return model.PositionBelowAverage
	}
}

func insightFor(key metricKey, startupValue, priorValue float64) string {
	comparison := "below"
	better := startupValue > priorValue
	if key == metricCACPayback {
		better = startupValue < priorValue
	}
	if better {
		comparison = "above"
	}
	return fmt.Sprintf("%s is %s the sector average of %.1f.", metricLabel(key), comparison, priorValue)
}

func metricLabel(key metricKey) string {
	switch key {
	case metricRevenueGrowth:
		return "Revenue growth"
	case metricGrossMargin:
		return "Gross margin"
	case metricCACPayback:
		return "CAC payback"
	case metricNetRetention:
		return "Net retention"
	default:
		return string(key)
	}
}

func summaryFor(industry string, avgPercentile int) string {
	return fmt.Sprintf("Benchmarked against the %s industry, this startup sits at roughly the %dth percentile on average.", industry, avgPercentile)
}

const insightRewriteSchema = `{
  "type": "object",
  "properties": {
    "insights": {"type": "array", "items": {"type": "string"}}
  },
  "required": ["insights"]
}`

type insightRewriteResponse struct {
	Insights []string `json:"insights"`
}

// rewriteInsights optionally asks the LLM to rewrite the four insight
// strings in place, never touching any numeric field, per §4.5. Failure
// leaves the rule-based insights untouched and marks the report degraded
// only in the sense that the rewrite didn't happen — numeric output is
// identical either way.
func rewriteInsights(ctx context.Context, gateway *llm.Gateway, industry string, comparisons []model.MetricComparison) ([]model.MetricComparison, bool) {
	var b strings.Builder
	fmt.Fprintf(&b, "Rewrite these %s-industry benchmark insights in natural investor language, one per line, same order, same meaning:\n", industry)
	for _, c := range comparisons {
		fmt.Fprintf(&b, "- %s\n", c.Insight)
	}
	b.WriteString("\nRespond with a single JSON object: {\"insights\": [\"...\", ...]} with exactly as many entries as given.")

	result, err := gateway.Invoke(ctx, modelName, b.String(), llm.Opts{Temperature: 0.5, MaxTokens: 512})
	if err != nil || !result.OK {
		return comparisons, true
	}
	var resp insightRewriteResponse
	if !llm.ParseAndValidate(result.Text, insightRewriteSchema, &resp) || len(resp.Insights) != len(comparisons) {
		return comparisons, true
	}
	for i := range comparisons {
		comparisons[i].Insight = resp.Insights[i]
	}
	return comparisons, false
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func clampMin(v, min float64) float64 {
	if v < min {
		return min
	}
	return v
}

func logScale(v float64) float64 {
	// A gentle bonus that grows with user count without blowing up net
	// retention for very large numbers.
	scale := 0.0
	for v >= 10 {
		v /= 10
		scale += 0.05
	}
	if scale > 0.3 {
		scale = 0.3
	}
	return scale
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
