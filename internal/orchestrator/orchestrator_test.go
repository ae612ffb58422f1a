package orchestrator

import (
	"bytes"
	"context"
	"testing"

	"github.com/omjain/venture-lens/internal/agents/benchmark"
	"github.com/omjain/venture-lens/internal/agents/critique"
	"github.com/omjain/venture-lens/internal/agents/ingestion"
	"github.com/omjain/venture-lens/internal/agents/narrative"
	"github.com/omjain/venture-lens/internal/agents/report"
	"github.com/omjain/venture-lens/internal/agents/scoring"
	"github.com/omjain/venture-lens/internal/apperr"
	"github.com/omjain/venture-lens/internal/model"
	"github.com/omjain/venture-lens/internal/store"
	"github.com/omjain/venture-lens/internal/telemetry"
)

// newTestOrchestrator wires every agent with a nil Gateway (so Scoring,
// Narrative, Benchmark, and Critique all take their deterministic
// rule-based fallback paths) and a FakeRenderer-backed Report Agent, so the
// whole pipeline runs without any network dependency.
func newTestOrchestrator() *Orchestrator {
	ingestionAgent := ingestion.NewAgent(nil, nil, nil)
	scoringAgent := scoring.NewAgent(nil)
	narrativeAgent := narrative.NewAgent(nil, nil)
	benchmarkAgent := benchmark.NewAgent(nil)
	critiqueAgent := critique.NewAgent(nil, nil)
	reportAgent := report.NewAgent(report.FakeRenderer{}, store.NewReportStore())
	return New(ingestionAgent, scoringAgent, narrativeAgent, benchmarkAgent, critiqueAgent, reportAgent)
}

func structuredSource() ingestion.Source {
	facts := model.StartupFacts{
		Name:        "Acme Robotics",
		Description: "Acme builds warehouse robots for mid-size 3PLs, saving 30% on labor costs.",
		Problem:     "Warehouse labor is expensive and hard to staff at scale.",
		Solution:    "Autonomous picking robots that integrate with existing WMS software.",
		Traction:    "12 paying customers, $1.2M ARR, growing 20% month over month.",
		Team:        "Founders are ex-Amazon Robotics engineers with 15 years combined experience.",
		Market:      "The warehouse automation market is valued at $15B and growing 12% annually.",
		Sector:      "technology",
	}
	return ingestion.Source{Structured: &facts}
}

func TestEvaluateRunsFullPipelineWithStructuredSource(t *testing.T) {
	o := newTestOrchestrator()

	result, err := o.Evaluate(context.Background(), structuredSource(), EvaluateOptions{})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if result.EvaluationID == "" {
		t.Fatal("expected a non-empty evaluation id")
	}
	if result.StartupName != "Acme Robotics" {
		t.Fatalf("expected startup name to propagate from facts, got %q", result.StartupName)
	}
	if result.ReportID == "" {
		t.Fatal("expected a non-empty report id")
	}
	if result.Scores.OverallScore == 0 {
		t.Fatal("expected a non-zero overall score")
	}
	if result.Critique.OverallRiskLabel == "" {
		t.Fatal("expected a risk label")
	}
	if result.Benchmarks.Industry == "" {
		t.Fatal("expected a benchmark industry")
	}

	blob, ok := o.Fetch(result.ReportID)
	if !ok {
		t.Fatal("expected the rendered report to be fetchable")
	}
	if !bytes.HasPrefix(blob, []byte("%PDF")) {
		t.Fatalf("expected a %%PDF blob, got %q", blob[:10])
	}
}

func TestEvaluateAbortsOnIngestionInputError(t *testing.T) {
	o := newTestOrchestrator()

	_, err := o.Evaluate(context.Background(), ingestion.Source{}, EvaluateOptions{})
	if err == nil {
		t.Fatal("expected an error for a source with nothing populated")
	}
	if apperr.KindOf(err) != apperr.KindInput {
		t.Fatalf("expected an InputError, got kind %q", apperr.KindOf(err))
	}
}

func TestEvaluateAbortsOnMultipleSources(t *testing.T) {
	o := newTestOrchestrator()

	facts := model.StartupFacts{Name: "Acme"}
	source := ingestion.Source{URL: "https://example.com", Structured: &facts}

	_, err := o.Evaluate(context.Background(), source, EvaluateOptions{})
	if apperr.KindOf(err) != apperr.KindInput {
		t.Fatalf("expected an InputError, got kind %q", apperr.KindOf(err))
	}
}

func TestEvaluateRespectsCancelledContext(t *testing.T) {
	o := newTestOrchestrator()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.Evaluate(ctx, structuredSource(), EvaluateOptions{})
	if err == nil {
		t.Fatal("expected cancellation to produce an error")
	}
	if apperr.KindOf(err) != apperr.KindCancelled {
		t.Fatalf("expected a Cancelled error, got kind %q", apperr.KindOf(err))
	}
}

func TestEvaluateIsIdempotentGivenFixedInput(t *testing.T) {
	o1 := newTestOrchestrator()
	o2 := newTestOrchestrator()

	r1, err := o1.Evaluate(context.Background(), structuredSource(), EvaluateOptions{})
	if err != nil {
		t.Fatalf("Evaluate (first): %v", err)
	}
	r2, err := o2.Evaluate(context.Background(), structuredSource(), EvaluateOptions{})
	if err != nil {
		t.Fatalf("Evaluate (second): %v", err)
	}

	if r1.Scores.OverallScore != r2.Scores.OverallScore {
		t.Fatalf("expected deterministic overall score, got %v vs %v", r1.Scores.OverallScore, r2.Scores.OverallScore)
	}
	if r1.Critique.OverallRiskLabel != r2.Critique.OverallRiskLabel {
		t.Fatalf("expected deterministic risk label, got %v vs %v", r1.Critique.OverallRiskLabel, r2.Critique.OverallRiskLabel)
	}
	if r1.Narrative.Vision != r2.Narrative.Vision {
		t.Fatal("expected deterministic narrative vision")
	}
	if r1.Benchmarks.Industry != r2.Benchmarks.Industry {
		t.Fatal("expected deterministic benchmark industry")
	}
}

func TestEvaluateRecordsObservabilityWithoutPanickingWhenUnset(t *testing.T) {
	o := newTestOrchestrator()

	if _, err := o.Evaluate(context.Background(), structuredSource(), EvaluateOptions{}); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
}

func TestEvaluateRecordsObservabilityWhenWired(t *testing.T) {
	o := newTestOrchestrator()
	o.SetObservability(telemetry.New("venture-lens-test", ""))

	if _, err := o.Evaluate(context.Background(), structuredSource(), EvaluateOptions{}); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
}

func TestFetchUnknownReportIDReturnsMiss(t *testing.T) {
	o := newTestOrchestrator()
	_, ok := o.Fetch("does-not-exist")
	if ok {
		t.Fatal("expected a miss for an unknown report id")
	}
}
