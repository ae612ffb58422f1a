package ingestion

import (
	"context"
	"strings"
	"testing"

	"github.com/go-playground/assert/v2"

	"github.com/omjain/venture-lens/pkg/llm"
)

func TestSegmentSlidesFormFeed(t *testing.T) {
	pages := []string{"Title slide\fProblem slide\fSolution slide"}
	slides := SegmentSlides(pages)
	assert.Equal(t, 3, len(slides))
	assert.Equal(t, "Title slide", slides[0].Text)
}

func TestSegmentSlidesSlideMarkers(t *testing.T) {
	pages := []string{"Slide 1\nIntro content\nSlide 2\nProblem content\nSlide 3\nSolution content"}
	slides := SegmentSlides(pages)
	if len(slides) < 2 {
		t.Fatalf("expected multiple slides, got %d", len(slides))
	}
}

func TestSegmentSlidesOnePagePerSlideWhenMultiplePages(t *testing.T) {
	pages := []string{"Page one content", "Page two content", "Page three content"}
	slides := SegmentSlides(pages)
	assert.Equal(t, 3, len(slides))
	assert.Equal(t, "Page one content", slides[0].Text)
}

func TestSegmentSlidesParagraphGroupingFallback(t *testing.T) {
	para := strings.Repeat("word ", 400) // ~2000 chars, forces a split across the 1500-char threshold
	pages := []string{para + "\n\n" + para}
	slides := SegmentSlides(pages)
	if len(slides) < 2 {
		t.Fatalf("expected paragraph grouping to split into multiple slides, got %d", len(slides))
	}
}

func TestSegmentSlidesDeterministic(t *testing.T) {
	pages := []string{"Slide 1\nAlpha\nSlide 2\nBeta"}
	first := SegmentSlides(pages)
	second := SegmentSlides(pages)
	assert.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i], second[i])
	}
}

func TestClassifySlidesFindsKeywordMatches(t *testing.T) {
	slides := []Slide{
		{Index: 1, Text: "Our team: founders are ex-Google engineers."},
		{Index: 2, Text: "The problem: small businesses struggle with inventory."},
	}
	report := ClassifySlides(context.Background(), nil, slides)
	assert.Equal(t, 2, len(report.Classifications))

	foundTeam := false
	foundProblem := false
	for _, c := range report.Classifications {
		if c.Type == SlideTeam {
			foundTeam = true
		}
		if c.Type == SlideProblem {
			foundProblem = true
		}
	}
	if !foundTeam || !foundProblem {
		t.Fatalf("expected Team and Problem classifications, got %+v", report.Classifications)
	}
}

func TestClassifySlidesComputesCompletenessScore(t *testing.T) {
	report := ClassifySlides(context.Background(), nil, nil)
	assert.Equal(t, 0.0, report.CompletenessScore)
	assert.Equal(t, len(StandardSlideTypes), len(report.MissingTypes))
}

func TestClassifySlidesUsesLLMWhenGatewayConfigured(t *testing.T) {
	slides := []Slide{
		{Index: 1, Text: "Some ambiguous content that keyword matching would miss."},
	}
	fake := &llm.FakeProvider{Text: `{"classifications": [{"slide_index": 1, "type": "Team", "confidence": 0.9}]}`}
	gateway := llm.NewGateway(fake)

	report := ClassifySlides(context.Background(), gateway, slides)
	assert.Equal(t, 1, len(report.Classifications))
	assert.Equal(t, SlideTeam, report.Classifications[0].Type)
	assert.Equal(t, 0.9, report.Classifications[0].Confidence)
	assert.Equal(t, 1, fake.Calls)
}

func TestClassifySlidesFallsBackToKeywordsOnLLMError(t *testing.T) {
	slides := []Slide{
		{Index: 1, Text: "Our team: founders are ex-Google engineers."},
	}
	fake := &llm.FakeProvider{Text: "not json at all"}
	gateway := llm.NewGateway(fake)

	report := ClassifySlides(context.Background(), gateway, slides)
	assert.Equal(t, 1, len(report.Classifications))
	assert.Equal(t, SlideTeam, report.Classifications[0].Type)
}

func TestClassifySlidesFallsBackToKeywordsOnMismatchedCount(t *testing.T) {
	slides := []Slide{
		{Index: 1, Text: "Our team: founders are ex-Google engineers."},
		{Index: 2, Text: "The problem: small businesses struggle with inventory."},
	}
	fake := &llm.FakeProvider{Text: `{"classifications": [{"slide_index": 1, "type": "Team", "confidence": 0.9}]}`}
	gateway := llm.NewGateway(fake)

	report := ClassifySlides(context.Background(), gateway, slides)
	assert.Equal(t, 2, len(report.Classifications))
	assert.Equal(t, SlideTeam, report.Classifications[0].Type)
	assert.Equal(t, SlideProblem, report.Classifications[1].Type)
}
