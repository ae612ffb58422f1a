// Package model defines the data shapes the evaluation pipeline passes
// between agents. Every type here is produced once per evaluation and never
// mutated afterward.
package model

// SourceType identifies where a StartupFacts record was ingested from.
type SourceType string

const (
	SourcePDF        SourceType = "pdf"
	SourceURL        SourceType = "url"
	SourceStructured SourceType = "structured"
)

// StartupFacts is the canonical normalized view of an input startup,
// independent of its source format. All fields are optional strings except
// Name, which defaults to "Unknown Startup" when absent.
type StartupFacts struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	Problem        string `json:"problem"`
	Solution       string `json:"solution"`
	Traction       string `json:"traction"`
	Team           string `json:"team"`
	Market         string `json:"market"`
	BusinessModel  string `json:"business_model"`
	Competition    string `json:"competition"`
	Funding        string `json:"funding"`
	Stage          string `json:"stage"`
	Technology     string `json:"technology"`
	Sector         string `json:"sector"`

	SourceType        SourceType `json:"source_type"`
	SourceRef         string     `json:"source_ref,omitempty"`
	SlideCount        int        `json:"slide_count,omitempty"`
	RawContentLength  int        `json:"raw_content_length"`
}

const UnknownStartupName = "Unknown Startup"

// WithDefaults returns f with required defaults filled in; Ingestion always
// calls this before returning a StartupFacts.
func (f StartupFacts) WithDefaults() StartupFacts {
	if f.Name == "" {
		f.Name = UnknownStartupName
	}
	return f
}
