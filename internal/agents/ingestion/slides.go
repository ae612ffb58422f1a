package ingestion

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/omjain/venture-lens/pkg/llm"
)

// Slide is one pitch-deck slide candidate after segmentation.
type Slide struct {
	Index int
	Text  string
}

// SlideType is the closed set of pitch-deck slide categories the
// classifier assigns.
type SlideType string

const (
	SlideTitle          SlideType = "Title"
	SlideProblem        SlideType = "Problem"
	SlideSolution       SlideType = "Solution"
	SlideMarket         SlideType = "Market Opportunity"
	SlideProduct        SlideType = "Product/Service"
	SlideBusinessModel  SlideType = "Business Model"
	SlideTraction       SlideType = "Traction"
	SlideTeam           SlideType = "Team"
	SlideCompetition    SlideType = "Competition"
	SlideFinancials     SlideType = "Financial Projections"
	SlideFundingAsk     SlideType = "Funding Ask"
	SlideRoadmap        SlideType = "Roadmap"
	SlideContact        SlideType = "Contact"
	SlideOther          SlideType = "Other"
)

// StandardSlideTypes is every type a complete pitch deck is expected to
// cover, used to compute the missing-slides report's completeness_score.
var StandardSlideTypes = []SlideType{
	SlideTitle, SlideProblem, SlideSolution, SlideMarket, SlideProduct,
	SlideBusinessModel, SlideTraction, SlideTeam, SlideCompetition,
	SlideFinancials, SlideFundingAsk, SlideRoadmap, SlideContact,
}

// SlideClassification pairs a slide index with its assigned type and a
// confidence in [0,1].
type SlideClassification struct {
	SlideIndex int
	Type       SlideType
	Confidence float64
}

// SlideReport is the missing-slides report from §4.6 step 4.
type SlideReport struct {
	Classifications  []SlideClassification
	MissingTypes     []SlideType
	CompletenessScore float64
}

var slideNumberPattern = regexp.MustCompile(`(?i)^(?:slide|page)\s+\d+`)

// SegmentSlides implements §4.6 step 2's slide segmentation algorithm: a
// pure, deterministic function over the extractor's raw page texts. It
// tries, in order, form-feed splitting, "Slide N"/"Page N" splitting,
// one-slide-per-page (when the extractor produced more than one page), and
// finally heuristic paragraph-grouping by length.
func SegmentSlides(pages []string) []Slide {
	joined := strings.Join(pages, "\n\n")

	if chunks := splitNonEmpty(joined, "\f"); len(chunks) > 1 {
		return toSlides(chunks)
	}

	if chunks := splitBySlideMarkers(joined); len(chunks) > 1 {
		return toSlides(chunks)
	}

	if len(pages) > 1 {
		return toSlides(pages)
	}

	return toSlides(groupParagraphsByLength(joined, 1500))
}

func splitNonEmpty(text, sep string) []string {
	var out []string
	for _, part := range strings.Split(text, sep) {
		if strings.TrimSpace(part) != "" {
			out = append(out, part)
		}
	}
	return out
}

func splitBySlideMarkers(text string) []string {
	lines := strings.Split(text, "\n")
	var chunks []string
	var current []string
	for _, line := range lines {
		if slideNumberPattern.MatchString(strings.TrimSpace(line)) && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, "\n"))
			current = nil
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, "\n"))
	}
	return filterNonEmpty(chunks)
}

func filterNonEmpty(chunks []string) []string {
	var out []string
	for _, c := range chunks {
		if strings.TrimSpace(c) != "" {
			out = append(out, c)
		}
	}
	return out
}

// groupParagraphsByLength implements §4.6's final fallback: paragraphs
// (double-newline separated) are accumulated into a chunk until adding the
// next paragraph would exceed maxLen characters.
func groupParagraphsByLength(text string, maxLen int) []string {
	paragraphs := strings.Split(text, "\n\n")
	var chunks []string
	var current []string
	currentLen := 0

	flush := func() {
		if len(current) > 0 {
			chunks = append(chunks, strings.Join(current, "\n\n"))
			current = nil
			currentLen = 0
		}
	}

	for _, para := range paragraphs {
		if strings.TrimSpace(para) == "" {
			continue
		}
		if currentLen > 0 && currentLen+len(para) > maxLen {
			flush()
		}
		current = append(current, para)
		currentLen += len(para)
	}
	flush()

	if len(chunks) == 0 && strings.TrimSpace(text) != "" {
		chunks = append(chunks, text)
	}
	return chunks
}

func toSlides(chunks []string) []Slide {
	slides := make([]Slide, 0, len(chunks))
	for i, c := range chunks {
		trimmed := strings.TrimSpace(c)
		if trimmed == "" {
			continue
		}
		slides = append(slides, Slide{Index: i + 1, Text: trimmed})
	}
	return slides
}

var slideKeywordTable = map[SlideType][]string{
	SlideTitle:         {"pitch deck", "confidential", "company overview"},
	SlideProblem:       {"problem", "pain point", "challenge"},
	SlideSolution:      {"solution", "our approach", "how it works"},
	SlideMarket:        {"market size", "tam", "sam", "som", "market opportunity"},
	SlideProduct:       {"product", "features", "screenshots", "demo"},
	SlideBusinessModel: {"business model", "revenue model", "pricing", "monetization"},
	SlideTraction:      {"traction", "growth", "mrr", "arr", "customers", "users"},
	SlideTeam:          {"team", "founder", "co-founder", "leadership"},
	SlideCompetition:   {"competition", "competitive landscape", "competitors"},
	SlideFinancials:    {"projections", "forecast", "financials", "p&l"},
	SlideFundingAsk:     {"funding ask", "use of funds", "raise", "investment"},
	SlideRoadmap:       {"roadmap", "milestones", "timeline"},
	SlideContact:       {"contact", "thank you", "get in touch"},
}

// ClassifySlides assigns each slide a SlideType — via the LLM when gateway
// is configured, falling back to keyword matching on a nil gateway, an
// error, or an unparseable/mismatched response — and computes the
// missing-slides completeness report, per §4.6 step 3.
func ClassifySlides(ctx context.Context, gateway *llm.Gateway, slides []Slide) SlideReport {
	classifications := keywordClassifications(slides)
	if gateway != nil {
		if llmClassifications, ok := classifySlidesWithLLM(ctx, gateway, slides); ok {
			classifications = llmClassifications
		}
	}
	return reportFromClassifications(classifications)
}

// keywordClassifications implements §4.6 step 3's "else keyword rule" path.
// Pure and independently testable from the extractor.
func keywordClassifications(slides []Slide) []SlideClassification {
	classifications := make([]SlideClassification, 0, len(slides))
	for _, slide := range slides {
		lower := strings.ToLower(slide.Text)
		best := SlideOther
		bestHits := 0
		for _, t := range StandardSlideTypes {
			hits := 0
			for _, kw := range slideKeywordTable[t] {
				if strings.Contains(lower, kw) {
					hits++
				}
			}
			if hits > bestHits {
				bestHits = hits
				best = t
			}
		}
		confidence := 0.0
		if bestHits > 0 {
			confidence = 0.4 + 0.2*float64(bestHits)
			if confidence > 0.95 {
				confidence = 0.95
			}
		}
		classifications = append(classifications, SlideClassification{
			SlideIndex: slide.Index,
			Type:       best,
			Confidence: confidence,
		})
	}
	return classifications
}

const maxSlideClassificationChars = 600

type llmSlideClassification struct {
	SlideIndex int     `json:"slide_index"`
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
}

type slideClassificationResponse struct {
	Classifications []llmSlideClassification `json:"classifications"`
}

const slideClassificationSchema = `{
  "type": "object",
  "properties": {
    "classifications": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "slide_index": {"type": "number"},
          "type": {"type": "string"},
          "confidence": {"type": "number"}
        }
      }
    }
  }
}`

// classifySlidesWithLLM asks the model to classify every slide in one call,
// same order as given. Any failure — provider error, fallback result,
// unparseable JSON, or a classification count that doesn't match the slide
// count — reports ok=false so the caller keeps the keyword result.
func classifySlidesWithLLM(ctx context.Context, gateway *llm.Gateway, slides []Slide) ([]SlideClassification, bool) {
	if len(slides) == 0 {
		return nil, false
	}

	var b strings.Builder
	b.WriteString("Classify each pitch-deck slide below into exactly one of these types: ")
	for i, t := range StandardSlideTypes {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(string(t))
	}
	b.WriteString(", or Other.\n\n")
	for _, s := range slides {
		text := s.Text
		if len(text) > maxSlideClassificationChars {
			text = text[:maxSlideClassificationChars]
		}
		fmt.Fprintf(&b, "--- Slide %d ---\n%s\n\n", s.Index, text)
	}
	b.WriteString("Respond with a single JSON object: {\"classifications\": [{\"slide_index\": N, \"type\": \"...\", \"confidence\": 0.0-1.0}, ...]}, exactly one entry per slide, same order as given.")

	result, err := gateway.Invoke(ctx, modelName, b.String(), llm.Opts{Temperature: 0.3, MaxTokens: 1024})
	if err != nil || !result.OK {
		return nil, false
	}

	var resp slideClassificationResponse
	if !llm.ParseAndValidate(result.Text, slideClassificationSchema, &resp) || len(resp.Classifications) != len(slides) {
		return nil, false
	}

	out := make([]SlideClassification, 0, len(resp.Classifications))
	for _, c := range resp.Classifications {
		out = append(out, SlideClassification{
			SlideIndex: c.SlideIndex,
			Type:       coerceSlideType(c.Type),
			Confidence: clampConfidence(c.Confidence),
		})
	}
	return out, true
}

func coerceSlideType(raw string) SlideType {
	lower := strings.ToLower(strings.TrimSpace(raw))
	for _, t := range StandardSlideTypes {
		if strings.ToLower(string(t)) == lower {
			return t
		}
	}
	return SlideOther
}

func clampConfidence(c float64) float64 {
	switch {
	case c < 0:
		return 0
	case c > 1:
		return 1
	default:
		return c
	}
}

func reportFromClassifications(classifications []SlideClassification) SlideReport {
	found := make(map[SlideType]bool)
	for _, c := range classifications {
		if c.Type != SlideOther {
			found[c.Type] = true
		}
	}

	var missing []SlideType
	for _, t := range StandardSlideTypes {
		if !found[t] {
			missing = append(missing, t)
		}
	}

	completeness := 0.0
	if len(StandardSlideTypes) > 0 {
		completeness = float64(len(StandardSlideTypes)-len(missing)) / float64(len(StandardSlideTypes))
	}

	return SlideReport{
		Classifications:   classifications,
		MissingTypes:       missing,
		CompletenessScore: completeness,
	}
}
