package handler

import "github.com/omjain/venture-lens/internal/model"

// scoreRequest is POST /score's body. idea/team/traction/market must each
// be at least 10 characters per §6's validation rule.
type scoreRequest struct {
	Idea        string `json:"idea"`
	Team        string `json:"team"`
	Traction    string `json:"traction"`
	Market      string `json:"market"`
	StartupName string `json:"startup_name"`
}

// critiqueRequest is POST /critique's body.
type critiqueRequest struct {
	ScoreReport      model.ScoreReport `json:"score_report"`
	PitchdeckSummary string            `json:"pitchdeck_summary"`
	StartupName      string            `json:"startup_name"`
}

// narrativeRequest is POST /narrative's body.
type narrativeRequest struct {
	StartupData model.StartupFacts `json:"startup_data"`
	StartupID   string             `json:"startup_id"`
	UseCache    *bool              `json:"use_cache"`
}

func (r narrativeRequest) useCache() bool {
	if r.UseCache == nil {
		return true
	}
	return *r.UseCache
}

// evaluateResponse wraps the pipeline's EvaluationResult with the derived
// report_url per §6's "/evaluate/reports/{report_id}.pdf" format.
type evaluateResponse struct {
	model.EvaluationResult
	ReportURL string `json:"report_url"`
}

func newEvaluateResponse(result model.EvaluationResult) evaluateResponse {
	return evaluateResponse{
		EvaluationResult: result,
		ReportURL:        reportURLFor(result.ReportID),
	}
}

func reportURLFor(reportID string) string {
	if reportID == "" {
		return ""
	}
	return "/evaluate/reports/" + reportID + ".pdf"
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}
