package ingestion

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/assert/v2"

	"github.com/omjain/venture-lens/internal/apperr"
	"github.com/omjain/venture-lens/internal/model"
	"github.com/omjain/venture-lens/pkg/llm"
)

func TestIngestRejectsMultipleSources(t *testing.T) {
	agent := NewAgent(nil, nil, nil)
	_, err := agent.Ingest(context.Background(), Source{PDF: []byte("x"), URL: "http://example.com"})
	if apperr.KindOf(err) != apperr.KindInput {
		t.Fatalf("expected KindInput, got %v (%v)", apperr.KindOf(err), err)
	}
}

func TestIngestRejectsNoSource(t *testing.T) {
	agent := NewAgent(nil, nil, nil)
	_, err := agent.Ingest(context.Background(), Source{})
	if apperr.KindOf(err) != apperr.KindInput {
		t.Fatalf("expected KindInput, got %v", apperr.KindOf(err))
	}
}

func TestIngestStructuredMergesCompanionFields(t *testing.T) {
	agent := NewAgent(nil, nil, nil)
	parsed := &model.StartupFacts{Name: "Acme"}
	companion := CompanionText{Description: "A widget company.", Team: "Two founders."}

	facts, err := agent.Ingest(context.Background(), Source{Structured: parsed, Companion: companion})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	assert.Equal(t, "Acme", facts.Name)
	assert.Equal(t, "A widget company.", facts.Description)
	assert.Equal(t, "Two founders.", facts.Team)
	assert.Equal(t, model.SourceStructured, facts.SourceType)
}

func TestIngestStructuredDefaultsNameWhenAbsent(t *testing.T) {
	agent := NewAgent(nil, nil, nil)
	parsed := &model.StartupFacts{}
	facts, err := agent.Ingest(context.Background(), Source{Structured: parsed})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	assert.Equal(t, model.UnknownStartupName, facts.Name)
}

func TestIngestPDFUsesFakeExtractorAndFallsBackHeuristically(t *testing.T) {
	extractor := fakeExtractor{pages: []string{
		"Company: Acme Robotics\n\nProblem: warehouses waste labor on manual sorting.\n\nSolution: an autonomous sorting robot.\n\nTraction: 50 customers and $20,000 MRR.",
	}}
	agent := NewAgent(nil, extractor, nil)
	facts, err := agent.Ingest(context.Background(), Source{PDF: []byte("irrelevant, fake extractor ignores it")})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	assert.Equal(t, model.SourcePDF, facts.SourceType)
	if facts.Name == "" {
		t.Fatal("expected a non-empty name from fallback extraction")
	}
}

func TestIngestPDFErrorsWhenExtractionFails(t *testing.T) {
	extractor := fakeExtractor{err: errNotAPDF}
	agent := NewAgent(nil, extractor, nil)
	_, err := agent.Ingest(context.Background(), Source{PDF: []byte("broken")})
	if apperr.KindOf(err) != apperr.KindIngestion {
		t.Fatalf("expected KindIngestion, got %v", apperr.KindOf(err))
	}
}

func TestIngestURLWithGatewayExtractsStructuredFacts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleHTML))
	}))
	defer srv.Close()

	fake := &llm.FakeProvider{Text: `{
		"startup_name": "Acme Inc",
		"description": "A widget marketplace.",
		"problem": "", "solution": "", "traction": "10000 users", "team": "",
		"market": "", "business_model": "", "competition": "", "funding": "",
		"stage": "", "technology": "", "sector": "e-commerce"
	}`}
	agent := NewAgent(llm.NewGateway(fake), nil, srv.Client())

	facts, err := agent.Ingest(context.Background(), Source{URL: srv.URL})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	assert.Equal(t, "Acme Inc", facts.Name)
	assert.Equal(t, model.SourceURL, facts.SourceType)
	assert.Equal(t, srv.URL, facts.SourceRef)
}

func TestIngestURLErrorsOnUnreachableHost(t *testing.T) {
	agent := NewAgent(nil, nil, &http.Client{})
	_, err := agent.Ingest(context.Background(), Source{URL: "http://127.0.0.1:1"})
	if apperr.KindOf(err) != apperr.KindIngestion {
		t.Fatalf("expected KindIngestion, got %v", apperr.KindOf(err))
	}
}

func TestFallbackExtractionDefaultsSectorToTechnology(t *testing.T) {
	facts := fallbackExtraction("A generic company with no sector keywords mentioned anywhere.")
	assert.Equal(t, defaultSector, facts.Sector)
}

func TestFallbackExtractionMatchesSectorKeyword(t *testing.T) {
	facts := fallbackExtraction("We are a Fintech company disrupting payments.")
	assert.Equal(t, "Fintech", facts.Sector)
}
