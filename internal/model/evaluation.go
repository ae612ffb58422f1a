package model

import "time"

// EvaluationResult is the Orchestrator's aggregate output for one end-to-end
// run through the pipeline.
type EvaluationResult struct {
	EvaluationID string          `json:"evaluation_id"`
	StartupName  string          `json:"startup_name"`
	Facts        StartupFacts    `json:"facts"`
	Scores       ScoreReport     `json:"scores"`
	Critique     CritiqueReport  `json:"critique"`
	Narrative    Narrative       `json:"narrative"`
	Benchmarks   BenchmarkReport `json:"benchmarks"`
	ReportID     string          `json:"report_id"`
	CreatedAt    time.Time       `json:"created_at"`
}
