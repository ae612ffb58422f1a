package report

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"github.com/omjain/venture-lens/internal/model"
	"github.com/omjain/venture-lens/internal/store"
)

func sampleEvaluation() model.EvaluationResult {
	return model.EvaluationResult{
		EvaluationID: "eval-1",
		StartupName:  "Acme Robotics",
		Facts:        model.StartupFacts{Name: "Acme Robotics"},
		Scores: model.ScoreReport{
			Dimensions: map[model.Dimension]model.DimensionAssessment{
				model.DimensionIdea:     {Score: 7, Assessment: "Solid idea."},
				model.DimensionTeam:     {Score: 8, Assessment: "Strong team."},
				model.DimensionTraction: {Score: 6, Assessment: "Some traction."},
				model.DimensionMarket:   {Score: 7, Assessment: "Decent market."},
			},
			OverallScore:   7.1,
			Recommendation: "Good Investment Opportunity",
		},
		Critique: model.CritiqueReport{
			RedFlags:         []model.RedFlag{{Flag: "No moat", Severity: model.SeverityMedium, Category: model.CategoryIdea}},
			OverallRiskLabel: model.RiskModerate,
			Summary:          "Moderate risk.",
		},
		Narrative: model.Narrative{Vision: "v", Differentiation: "d", Timing: "t", Tagline: "tag"},
		Benchmarks: model.BenchmarkReport{
			Industry: "technology",
			Comparisons: []model.MetricComparison{
				{Metric: "revenue_growth", StartupValue: 40, SectorAvg: 45, Percentile: 44, Insight: "Below average."},
			},
			OverallPosition: model.PositionAverage,
			Summary:         "Roughly average.",
		},
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestRenderProducesNonEmptyPDFBlob(t *testing.T) {
	agent := NewAgent(FakeRenderer{}, store.NewReportStore())
	reportID, blob, err := agent.Render(context.Background(), sampleEvaluation())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if reportID == "" {
		t.Fatal("expected a non-empty report id")
	}
	if !bytes.HasPrefix(blob, []byte("%PDF")) {
		t.Fatalf("expected blob to start with %%PDF magic bytes, got %q", blob[:10])
	}
}

func TestRenderGeneratesReportIDWhenAbsent(t *testing.T) {
	agent := NewAgent(FakeRenderer{}, store.NewReportStore())
	eval := sampleEvaluation()
	eval.ReportID = ""
	reportID, _, err := agent.Render(context.Background(), eval)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if reportID == "" {
		t.Fatal("expected a generated report id")
	}
}

func TestFetchRetrievesStoredBlob(t *testing.T) {
	reportStore := store.NewReportStore()
	agent := NewAgent(FakeRenderer{}, reportStore)
	reportID, blob, err := agent.Render(context.Background(), sampleEvaluation())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	got, ok := agent.Fetch(reportID)
	if !ok {
		t.Fatal("expected Fetch to find the stored report")
	}
	assert.Equal(t, blob, got)
}

func TestFetchMissingReportIDReturnsNotFound(t *testing.T) {
	agent := NewAgent(FakeRenderer{}, store.NewReportStore())
	_, ok := agent.Fetch("does-not-exist")
	if ok {
		t.Fatal("expected miss for unknown report id")
	}
}

func TestSlugifyProducesFilesystemSafeName(t *testing.T) {
	assert.Equal(t, "acme_robotics", slugify("Acme Robotics"))
	assert.Equal(t, "startup", slugify(""))
}
