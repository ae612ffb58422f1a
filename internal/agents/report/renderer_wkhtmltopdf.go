package report

import (
	"fmt"
	"strings"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
)

// WkhtmltopdfRenderer is the production Renderer, wrapping the
// wkhtmltopdf binary exactly the way original_source/agents/report_agent.py's
// pdfkit wrapper does (pdfkit is itself a wkhtmltopdf wrapper).
type WkhtmltopdfRenderer struct{}

func (WkhtmltopdfRenderer) RenderHTML(html string) ([]byte, error) {
	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("report: new pdf generator: %w", err)
	}

	page := wkhtmltopdf.NewPageReader(strings.NewReader(html))
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("report: render pdf: %w", err)
	}
	return pdfg.Bytes(), nil
}

// FakeRenderer returns a fixed %PDF blob without shelling out, for tests
// and for environments without wkhtmltopdf installed.
type FakeRenderer struct{}

func (FakeRenderer) RenderHTML(html string) ([]byte, error) {
	return []byte("%PDF-1.4\n% fake renderer output\n" + html), nil
}
