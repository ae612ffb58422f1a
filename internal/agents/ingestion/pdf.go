package ingestion

import (
	"bytes"
	"fmt"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// PageExtractor turns raw PDF bytes into one raw text string per page.
// Two implementations exist so tests can substitute a fake returning fixed
// page strings without parsing any real PDF bytes.
type PageExtractor interface {
	ExtractPages(data []byte) ([]string, error)
}

// StructuredPDFExtractor is the primary, page-aware extractor.
type StructuredPDFExtractor struct{}

func (StructuredPDFExtractor) ExtractPages(data []byte) ([]string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("ingestion: structured pdf open: %w", err)
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pages = append(pages, content)
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("ingestion: structured pdf extraction found no pages")
	}
	return pages, nil
}

// BasicPDFExtractor is the degraded, dependency-free fallback used when the
// structured extractor fails: a byte-level scan of the whole file that
// keeps every run of at least three printable ASCII characters (tabs and
// newlines included) and returns them as a single page. It never returns an
// error; a PDF it cannot make sense of just yields no text, which the
// caller treats as an empty corpus.
type BasicPDFExtractor struct{}

func (BasicPDFExtractor) ExtractPages(data []byte) ([]string, error) {
	var b bytes.Buffer
	var run []byte
	flush := func() {
		if len(run) >= 3 {
			b.Write(run)
			b.WriteByte(' ')
		}
		run = nil
	}
	for _, c := range data {
		if c >= 32 && c < 127 || c == '\n' || c == '\t' {
			run = append(run, c)
		} else {
			flush()
		}
	}
	flush()

	text := cleanBasicExtraction(b.String())
	return []string{text}, nil
}

func cleanBasicExtraction(text string) string {
	out := make([]rune, 0, len(text))
	lastSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if lastSpace {
				continue
			}
			lastSpace = true
			out = append(out, ' ')
			continue
		}
		lastSpace = false
		out = append(out, r)
	}
	return string(out)
}

// CompositeExtractor tries the structured extractor first, falling back to
// the basic one on any failure — the behavior described in §4.6 step 1.
type CompositeExtractor struct {
	Primary  PageExtractor
	Fallback PageExtractor
}

func NewCompositeExtractor() CompositeExtractor {
	return CompositeExtractor{Primary: StructuredPDFExtractor{}, Fallback: BasicPDFExtractor{}}
}

func (c CompositeExtractor) ExtractPages(data []byte) ([]string, error) {
	pages, err := c.Primary.ExtractPages(data)
	if err == nil && len(pages) > 0 {
		return pages, nil
	}
	return c.Fallback.ExtractPages(data)
}
