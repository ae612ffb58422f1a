// Package orchestrator wires the six agents into the end-to-end evaluation
// pipeline: Ingestion, then Scoring/Narrative/Benchmark concurrently, then
// Critique (which needs Scoring's output), then Report.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/omjain/venture-lens/internal/agents/benchmark"
	"github.com/omjain/venture-lens/internal/agents/critique"
	"github.com/omjain/venture-lens/internal/agents/ingestion"
	"github.com/omjain/venture-lens/internal/agents/narrative"
	"github.com/omjain/venture-lens/internal/agents/report"
	"github.com/omjain/venture-lens/internal/agents/scoring"
	"github.com/omjain/venture-lens/internal/apperr"
	"github.com/omjain/venture-lens/internal/model"
	"github.com/omjain/venture-lens/internal/telemetry"
)

var tracer = otel.Tracer("venture-lens/orchestrator")

// EvaluateOptions carries the per-call knobs the HTTP boundary collects
// beyond the ingestion Source itself.
type EvaluateOptions struct {
	// CacheKey and UseCache control the Narrative Agent's cache lookup;
	// an empty CacheKey disables caching regardless of UseCache.
	CacheKey string
	UseCache bool
}

// Orchestrator is the Evaluate pipeline's dependency container.
type Orchestrator struct {
	ingestion *ingestion.Agent
	scoring   *scoring.Agent
	narrative *narrative.Agent
	benchmark *benchmark.Agent
	critique  *critique.Agent
	report    *report.Agent

	obs *telemetry.Observability
}

// SetObservability wires a metrics/tracing sink into the orchestrator. A nil
// or never-called Observability leaves Evaluate's RecordEvaluation and
// RecordLLMFallback calls as no-ops.
func (o *Orchestrator) SetObservability(obs *telemetry.Observability) {
	o.obs = obs
}

// New wires an Orchestrator from its six agents. None may be nil.
func New(
	ingestionAgent *ingestion.Agent,
	scoringAgent *scoring.Agent,
	narrativeAgent *narrative.Agent,
	benchmarkAgent *benchmark.Agent,
	critiqueAgent *critique.Agent,
	reportAgent *report.Agent,
) *Orchestrator {
	return &Orchestrator{
		ingestion: ingestionAgent,
		scoring:   scoringAgent,
		narrative: narrativeAgent,
		benchmark: benchmarkAgent,
		critique:  critiqueAgent,
		report:    reportAgent,
	}
}

// Evaluate runs the full pipeline per §4.8/§5: ingestion failure aborts the
// whole run before any other agent starts; scoring, narrative, and
// benchmark run concurrently and never abort the run on their own account
// (each already degrades internally rather than erroring); critique runs
// once scoring's output is available; report materializes and stores the
// PDF last, and a report-store write failure is the one error that does
// propagate once everything else has run, per §5.
func (o *Orchestrator) Evaluate(ctx context.Context, source ingestion.Source, opts EvaluateOptions) (result model.EvaluationResult, err error) {
	ctx, span := tracer.Start(ctx, "orchestrator.Evaluate")
	defer span.End()

	start := time.Now()
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = string(apperr.KindOf(err))
			if outcome == "" {
				outcome = "error"
			}
		}
		o.obs.RecordEvaluation(ctx, outcome, time.Since(start))
	}()

	evaluationID := uuid.New().String()
	span.SetAttributes(attribute.String("evaluation_id", evaluationID))

	if cErr := ctx.Err(); cErr != nil {
		err = apperr.Cancelled(cErr)
		return model.EvaluationResult{}, err
	}

	facts, fErr := o.runIngestion(ctx, source)
	if fErr != nil {
		err = fErr
		return model.EvaluationResult{}, err
	}

	scores, narrativeResult, benchmarks, foErr := o.runFanOut(ctx, facts, opts)
	if foErr != nil {
		err = foErr
		return model.EvaluationResult{}, err
	}
	o.recordFallback(ctx, "scoring", scores.Degraded)
	o.recordFallback(ctx, "narrative", narrativeResult.Degraded)
	o.recordFallback(ctx, "benchmark", benchmarks.Degraded)

	critiqueResult, cErr := o.runCritique(ctx, facts, scores)
	if cErr != nil {
		err = cErr
		return model.EvaluationResult{}, err
	}
	o.recordFallback(ctx, "critique", critiqueResult.Degraded)

	evaluation := model.EvaluationResult{
		EvaluationID: evaluationID,
		StartupName:  facts.Name,
		Facts:        facts,
		Scores:       scores,
		Critique:     critiqueResult,
		Narrative:    narrativeResult,
		Benchmarks:   benchmarks,
		CreatedAt:    time.Now().UTC(),
	}

	reportID, _, rErr := o.runReport(ctx, evaluation)
	if rErr != nil {
		err = rErr
		return model.EvaluationResult{}, err
	}
	evaluation.ReportID = reportID

	return evaluation, nil
}

func (o *Orchestrator) recordFallback(ctx context.Context, agent string, degraded bool) {
	if degraded {
		o.obs.RecordLLMFallback(ctx, agent)
	}
}

func (o *Orchestrator) runIngestion(ctx context.Context, source ingestion.Source) (model.StartupFacts, error) {
	ctx, span := tracer.Start(ctx, "orchestrator.ingestion")
	defer span.End()

	facts, err := o.ingestion.Ingest(ctx, source)
	if err != nil {
		span.RecordError(err)
		if apperr.KindOf(err) == apperr.KindInput {
			return model.StartupFacts{}, err
		}
		return model.StartupFacts{}, apperr.Ingestion("ingestion failed", err)
	}
	return facts, nil
}

// runFanOut runs Scoring, Narrative, and Benchmark concurrently via the
// hand-rolled task-group helper rather than golang.org/x/sync/errgroup:
// errgroup cancels its shared context on the first member error, which
// would abort the other two agents the moment one of them hit a transient
// provider failure — exactly the behavior §5 rules out. Each agent already
// converts its own failures into a degraded-but-valid result, so the group
// here exists only to wait for all three, not to short-circuit on error.
func (o *Orchestrator) runFanOut(ctx context.Context, facts model.StartupFacts, opts EvaluateOptions) (model.ScoreReport, model.Narrative, model.BenchmarkReport, error) {
	ctx, span := tracer.Start(ctx, "orchestrator.fan_out", trace.WithAttributes(attribute.Bool("use_cache", opts.UseCache)))
	defer span.End()

	var scores model.ScoreReport
	var narrativeResult model.Narrative
	var benchmarks model.BenchmarkReport

	errs := runConcurrently(
		func() error {
			_, sub := tracer.Start(ctx, "orchestrator.scoring")
			defer sub.End()
			fields := scoring.FieldsFromFacts(facts)
			result, err := o.scoring.Score(ctx, fields)
			if err != nil {
				return err
			}
			scores = result
			return nil
		},
		func() error {
			_, sub := tracer.Start(ctx, "orchestrator.narrative")
			defer sub.End()
			result, err := o.narrative.Narrative(ctx, facts, opts.CacheKey, opts.UseCache)
			if err != nil {
				return err
			}
			narrativeResult = result
			return nil
		},
		func() error {
			_, sub := tracer.Start(ctx, "orchestrator.benchmark")
			defer sub.End()
			result, err := o.benchmark.Benchmark(ctx, facts)
			if err != nil {
				return err
			}
			benchmarks = result
			return nil
		},
	)

	for _, err := range errs {
		if err != nil {
			span.RecordError(err)
			if ctx.Err() != nil {
				return model.ScoreReport{}, model.Narrative{}, model.BenchmarkReport{}, apperr.Cancelled(ctx.Err())
			}
			return model.ScoreReport{}, model.Narrative{}, model.BenchmarkReport{}, fmt.Errorf("orchestrator: fan-out task failed: %w", err)
		}
	}

	return scores, narrativeResult, benchmarks, nil
}

func (o *Orchestrator) runCritique(ctx context.Context, facts model.StartupFacts, scores model.ScoreReport) (model.CritiqueReport, error) {
	ctx, span := tracer.Start(ctx, "orchestrator.critique")
	defer span.End()

	result, err := o.critique.Critique(ctx, facts.Name, scores, facts, facts.Description)
	if err != nil {
		span.RecordError(err)
		if ctx.Err() != nil {
			return model.CritiqueReport{}, apperr.Cancelled(ctx.Err())
		}
		return model.CritiqueReport{}, fmt.Errorf("orchestrator: critique failed: %w", err)
	}
	return result, nil
}

func (o *Orchestrator) runReport(ctx context.Context, evaluation model.EvaluationResult) (string, []byte, error) {
	ctx, span := tracer.Start(ctx, "orchestrator.report")
	defer span.End()

	reportID, blob, err := o.report.Render(ctx, evaluation)
	if err != nil {
		span.RecordError(err)
		return "", nil, apperr.Store("failed to store evaluation report", err)
	}
	return reportID, blob, nil
}

// Fetch retrieves a previously rendered report's PDF blob by id, without
// re-running the pipeline.
func (o *Orchestrator) Fetch(reportID string) ([]byte, bool) {
	return o.report.Fetch(reportID)
}
