package telemetry

import (
	"context"
	"testing"
	"time"
)

func TestNewWithoutJaegerEndpointStillWorks(t *testing.T) {
	obs := New("venture-lens-test", "")
	if obs == nil {
		t.Fatal("expected a non-nil Observability")
	}
	obs.RecordEvaluation(context.Background(), "ok", 10*time.Millisecond)
	obs.RecordLLMFallback(context.Background(), "scoring")
	if obs.MetricsHandler() == nil {
		t.Fatal("expected a non-nil metrics handler")
	}
	obs.Shutdown(context.Background())
}

func TestShutdownOnZeroValueDoesNotPanic(t *testing.T) {
	var obs Observability
	obs.RecordEvaluation(context.Background(), "ok", time.Millisecond)
	obs.RecordLLMFallback(context.Background(), "scoring")
	obs.Shutdown(context.Background())
}

func TestRecordingOnNilObservabilityDoesNotPanic(t *testing.T) {
	var obs *Observability
	obs.RecordEvaluation(context.Background(), "ok", time.Millisecond)
	obs.RecordLLMFallback(context.Background(), "scoring")
	obs.Shutdown(context.Background())
}
