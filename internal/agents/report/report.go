// Package report implements the Report Agent: rendering the aggregated
// evaluation into a downloadable PDF blob, stored by id.
package report

import (
	"context"

	"github.com/omjain/venture-lens/internal/model"
	"github.com/omjain/venture-lens/internal/store"
)

// Agent is the Report Agent.
type Agent struct {
	renderer    Renderer
	reportStore *store.ReportStore
}

// NewAgent wires an Agent; pass nil renderer to use WkhtmltopdfRenderer.
func NewAgent(renderer Renderer, reportStore *store.ReportStore) *Agent {
	if renderer == nil {
		renderer = WkhtmltopdfRenderer{}
	}
	return &Agent{renderer: renderer, reportStore: reportStore}
}

// Render implements §4.7's Render(ctx, evaluation) (reportID, blob, error).
// evaluation.ReportID and evaluation.EvaluationID are expected to already
// be set by the Orchestrator before this call so the footer can reference
// both ids; Render generates and returns a fresh reportID if the caller
// left it blank.
func (a *Agent) Render(ctx context.Context, evaluation model.EvaluationResult) (string, []byte, error) {
	if evaluation.ReportID == "" {
		evaluation.ReportID = newReportID()
	}

	html, err := renderHTML(evaluation)
	if err != nil {
		return "", nil, err
	}

	blob, err := a.renderer.RenderHTML(html)
	if err != nil {
		return "", nil, err
	}

	if a.reportStore != nil {
		if err := a.reportStore.Put(evaluation.ReportID, store.Report{
			Blob:        blob,
			ContentType: "application/pdf",
			Filename:    filenameFor(evaluation.Facts.Name),
		}); err != nil {
			return "", nil, err
		}
	}

	return evaluation.ReportID, blob, nil
}

// Fetch implements §4.7's Fetch(reportID) ([]byte, bool) retrieval
// operation.
func (a *Agent) Fetch(reportID string) ([]byte, bool) {
	if a.reportStore == nil {
		return nil, false
	}
	r, ok := a.reportStore.Fetch(reportID)
	if !ok {
		return nil, false
	}
	return r.Blob, true
}
