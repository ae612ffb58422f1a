package model

// Narrative is the Narrative Agent's {vision, differentiation, timing,
// tagline} quadruple.
type Narrative struct {
	Vision         string `json:"vision"`
	Differentiation string `json:"differentiation"`
	Timing         string `json:"timing"`
	Tagline        string `json:"tagline"`
	Degraded       bool   `json:"degraded"`
}
