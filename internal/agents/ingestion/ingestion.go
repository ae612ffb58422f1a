// Package ingestion implements the Ingestion Agent: normalizing a PDF,
// URL, or structured-text source into a StartupFacts record.
package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/omjain/venture-lens/internal/apperr"
	"github.com/omjain/venture-lens/internal/model"
	"github.com/omjain/venture-lens/pkg/llm"
)

const modelName = "gemini-1.5-pro"

// CompanionText is the optional free-text subset carried alongside an
// already-parsed structured source, per §4.6's structured path.
type CompanionText struct {
	StartupName string
	Description string
	Market      string
	Team        string
	Traction    string
}

// Source is exactly one of {PDF, URL, Structured} per §4.6; presenting
// more than one, or none, is a caller error.
type Source struct {
	PDF        []byte
	URL        string
	Structured *model.StartupFacts
	Companion  CompanionText
}

func (s Source) populatedCount() int {
	n := 0
	if len(s.PDF) > 0 {
		n++
	}
	if s.URL != "" {
		n++
	}
	if s.Structured != nil {
		n++
	}
	return n
}

// Agent is the Ingestion Agent.
type Agent struct {
	gateway    *llm.Gateway
	extractor  PageExtractor
	httpClient *http.Client
}

// NewAgent wires an Agent with production defaults; pass nil for extractor
// or httpClient to use CompositeExtractor / a 10s-timeout http.Client.
func NewAgent(gateway *llm.Gateway, extractor PageExtractor, httpClient *http.Client) *Agent {
	if extractor == nil {
		extractor = NewCompositeExtractor()
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: urlFetchTimeout}
	}
	return &Agent{gateway: gateway, extractor: extractor, httpClient: httpClient}
}

// Ingest implements §4.6's Ingest(ctx, source) (StartupFacts, error).
func (a *Agent) Ingest(ctx context.Context, source Source) (model.StartupFacts, error) {
	switch source.populatedCount() {
	case 0:
		return model.StartupFacts{}, apperr.Input("source", "exactly one of pdf, url, structured must be provided")
	default:
		if source.populatedCount() > 1 {
			return model.StartupFacts{}, apperr.Input("source", "exactly one of pdf, url, structured must be provided")
		}
	}

	switch {
	case len(source.PDF) > 0:
		return a.ingestPDF(ctx, source.PDF)
	case source.URL != "":
		return a.ingestURL(ctx, source.URL)
	default:
		return a.ingestStructured(*source.Structured, source.Companion), nil
	}
}

func (a *Agent) ingestPDF(ctx context.Context, data []byte) (model.StartupFacts, error) {
	pages, err := a.extractPagesWithTimeout(ctx, data)
	if err != nil || len(pages) == 0 {
		return model.StartupFacts{}, apperr.Ingestion("pdf appears to be empty or unreadable", err)
	}

	slides := SegmentSlides(pages)
	if len(slides) == 0 {
		return model.StartupFacts{}, apperr.Ingestion("pdf produced no usable slide content", nil)
	}

	report := ClassifySlides(ctx, a.gateway, slides)
	slog.Info("pdf slide segmentation complete", "slide_count", len(slides), "completeness_score", report.CompletenessScore, "missing_types", report.MissingTypes)

	corpus := joinSlideTexts(slides)
	facts := a.extractFacts(ctx, corpus, "PDF")
	facts.SourceType = model.SourcePDF
	facts.SlideCount = len(slides)
	facts.RawContentLength = len(corpus)
	return facts.WithDefaults(), nil
}

type pageExtractionResult struct {
	pages []string
	err   error
}

// extractPagesWithTimeout bounds the synchronous, non-context-aware
// PageExtractor call to pdfParseTimeout per §5, running it on its own
// goroutine so a slow extraction can be abandoned without blocking the
// orchestrator goroutine past the deadline.
func (a *Agent) extractPagesWithTimeout(ctx context.Context, data []byte) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, pdfParseTimeout)
	defer cancel()

	resultCh := make(chan pageExtractionResult, 1)
	go func() {
		pages, err := a.extractor.ExtractPages(data)
		resultCh <- pageExtractionResult{pages: pages, err: err}
	}()

	select {
	case res := <-resultCh:
		return res.pages, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (a *Agent) ingestURL(ctx context.Context, rawURL string) (model.StartupFacts, error) {
	body, err := fetchURL(ctx, a.httpClient, rawURL)
	if err != nil {
		return model.StartupFacts{}, apperr.Ingestion("url is unreachable", err)
	}

	page, err := extractHTML(body)
	if err != nil {
		return model.StartupFacts{}, apperr.Ingestion("url content could not be parsed", err)
	}

	corpus := page.Corpus()
	if strings.TrimSpace(corpus) == "" {
		return model.StartupFacts{}, apperr.Ingestion("url produced no usable content", nil)
	}

	facts := a.extractFacts(ctx, corpus, "URL")
	facts.SourceType = model.SourceURL
	facts.SourceRef = rawURL
	facts.RawContentLength = len(corpus)
	return facts.WithDefaults(), nil
}

func (a *Agent) ingestStructured(parsed model.StartupFacts, companion CompanionText) model.StartupFacts {
	facts := parsed
	facts.SourceType = model.SourceStructured
	if facts.Name == "" {
		facts.Name = companion.StartupName
	}
	if facts.Description == "" {
		facts.Description = companion.Description
	}
	if facts.Market == "" {
		facts.Market = companion.Market
	}
	if facts.Team == "" {
		facts.Team = companion.Team
	}
	if facts.Traction == "" {
		facts.Traction = companion.Traction
	}
	facts.RawContentLength = len(facts.Description) + len(facts.Market) + len(facts.Team) + len(facts.Traction)
	return facts.WithDefaults()
}

func joinSlideTexts(slides []Slide) string {
	parts := make([]string, 0, len(slides))
	for _, s := range slides {
		parts = append(parts, fmt.Sprintf("--- Slide %d ---\n%s", s.Index, s.Text))
	}
	return strings.Join(parts, "\n\n")
}

const factsExtractionSchema = `{
  "type": "object",
  "properties": {
    "startup_name": {"type": "string"},
    "description": {"type": "string"},
    "problem": {"type": "string"},
    "solution": {"type": "string"},
    "traction": {"type": "string"},
    "team": {"type": "string"},
    "market": {"type": "string"},
    "business_model": {"type": "string"},
    "competition": {"type": "string"},
    "funding": {"type": "string"},
    "stage": {"type": "string"},
    "technology": {"type": "string"},
    "sector": {"type": "string"}
  }
}`

type factsResponse struct {
	StartupName   string `json:"startup_name"`
	Description   string `json:"description"`
	Problem       string `json:"problem"`
	Solution      string `json:"solution"`
	Traction      string `json:"traction"`
	Team          string `json:"team"`
	Market        string `json:"market"`
	BusinessModel string `json:"business_model"`
	Competition   string `json:"competition"`
	Funding       string `json:"funding"`
	Stage         string `json:"stage"`
	Technology    string `json:"technology"`
	Sector        string `json:"sector"`
}

const maxPromptChars = 8000

// extractFacts implements §4.6 step 5: LLM-based 13-field structured
// extraction over the collapsed corpus, falling back to keyword heuristics
// when the Gateway is unavailable or returns unparseable text.
func (a *Agent) extractFacts(ctx context.Context, corpus, contentType string) model.StartupFacts {
	cleaned := cleanCorpus(corpus)

	if a.gateway != nil {
		prompt := buildExtractionPrompt(cleaned, contentType)
		result, err := a.gateway.Invoke(ctx, modelName, prompt, llm.Opts{Temperature: 0.3, MaxTokens: 2048})
		if err == nil {
			var resp factsResponse
			if result.OK && llm.ParseAndValidate(result.Text, factsExtractionSchema, &resp) {
				return fromFactsResponse(resp)
			}
		}
	}

	return fallbackExtraction(cleaned)
}

func cleanCorpus(text string) string {
	fields := strings.Fields(text)
	return strings.Join(fields, " ")
}

func buildExtractionPrompt(text, contentType string) string {
	truncated := text
	if len(truncated) > maxPromptChars {
		truncated = truncated[:maxPromptChars]
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Extract structured information about a startup from this %s content:\n\n%s\n\n", contentType, truncated)
	b.WriteString("Respond with a single JSON object with exactly these keys: startup_name, description, problem, solution, traction, team, market, business_model, competition, funding, stage, technology, sector. Use an empty string for anything not clearly stated.")
	return b.String()
}

func fromFactsResponse(r factsResponse) model.StartupFacts {
	return model.StartupFacts{
		Name:          r.StartupName,
		Description:   r.Description,
		Problem:       r.Problem,
		Solution:      r.Solution,
		Traction:      r.Traction,
		Team:          r.Team,
		Market:        r.Market,
		BusinessModel: r.BusinessModel,
		Competition:   r.Competition,
		Funding:       r.Funding,
		Stage:         r.Stage,
		Technology:    r.Technology,
		Sector:        r.Sector,
	}
}

var (
	namePattern     = regexp.MustCompile(`(?i)(?:company|startup|founded|name)[:\s]+([A-Z][a-zA-Z\s]+?)(?:\n|\.|,|$)`)
	problemPattern  = regexp.MustCompile(`(?is)(?:problem|pain point|challenge|issue)[:\s]+(.+?)(?:\n\n|solution|$)`)
	solutionPattern = regexp.MustCompile(`(?is)(?:solution|product|service|offering)[:\s]+(.+?)(?:\n\n|market|$)`)
	tractionPattern = regexp.MustCompile(`(?is)(?:traction|users|customers|revenue|growth|metrics?)[:\s]+(.+?)(?:\n\n|team|$)`)
)

var sectorKeywords = []string{"SaaS", "Fintech", "Healthcare", "E-commerce", "EdTech", "AI", "Blockchain"}

const defaultSector = "Technology"
const maxFallbackFieldLength = 500

// fallbackExtraction implements §4.6's rule-based fallback (grounded on
// the original ingestion agent's labeled-section regex extraction and
// sector keyword list).
func fallbackExtraction(text string) model.StartupFacts {
	name := model.UnknownStartupName
	if m := namePattern.FindStringSubmatch(text); m != nil {
		name = strings.TrimSpace(m[1])
	}

	problem := truncateField(matchGroup(problemPattern, text), maxFallbackFieldLength)
	solution := truncateField(matchGroup(solutionPattern, text), maxFallbackFieldLength)
	traction := truncateField(matchGroup(tractionPattern, text), maxFallbackFieldLength)

	sector := defaultSector
	lower := strings.ToLower(text)
	for _, kw := range sectorKeywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			sector = kw
			break
		}
	}

	description := text
	if len(description) > 300 {
		description = description[:300] + "..."
	}

	return model.StartupFacts{
		Name:        name,
		Description: description,
		Problem:     problem,
		Solution:    solution,
		Traction:    traction,
		Sector:      sector,
	}
}

func matchGroup(re *regexp.Regexp, text string) string {
	if m := re.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func truncateField(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

// pdfParseTimeout bounds how long a PDF extraction may run per §5's
// timeout table. Callers that invoke ExtractPages on the orchestrator
// goroutine should wrap the call with context.WithTimeout(ctx,
// pdfParseTimeout) — the extractor itself is a synchronous CPU-bound
// operation with no context parameter, since the underlying PDF libraries
// used here have no context-aware API.
const pdfParseTimeout = 30 * time.Second
