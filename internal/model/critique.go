package model

import "time"

// Severity is a RedFlag's closed-set severity value.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// SeverityRank orders severities from least to most severe; used to sort
// and to break ties when truncating a CritiqueReport to five flags.
var SeverityRank = map[Severity]int{
	SeverityLow:      0,
	SeverityMedium:   1,
	SeverityHigh:     2,
	SeverityCritical: 3,
}

// Category is a RedFlag's closed-set category value.
type Category string

const (
	CategoryIdea     Category = "idea"
	CategoryTeam     Category = "team"
	CategoryTraction Category = "traction"
	CategoryMarket   Category = "market"
	CategoryFinancial Category = "financial"
	CategoryTechnical Category = "technical"
	CategoryOther    Category = "other"
)

// RedFlag is a single structured concern emitted by the Critique Agent.
type RedFlag struct {
	Flag        string   `json:"flag"`
	Severity    Severity `json:"severity"`
	Explanation string   `json:"explanation"`
	Category    Category `json:"category"`
}

// RiskLabel is the closed-set overall_risk_label value.
type RiskLabel string

const (
	RiskLow       RiskLabel = "low_risk"
	RiskModerate  RiskLabel = "moderate_risk"
	RiskHigh      RiskLabel = "high_risk"
	RiskVeryHigh  RiskLabel = "very_high_risk"
)

// CritiqueReport is the Critique Agent's output.
type CritiqueReport struct {
	RedFlags          []RedFlag `json:"red_flags"`
	OverallRiskLabel  RiskLabel `json:"overall_risk_label"`
	Summary           string    `json:"summary"`
	AnalysisTimestamp time.Time `json:"analysis_timestamp"`
	Degraded          bool      `json:"degraded"`
}

// RiskLabelFor computes the §3-authoritative overall_risk_label from a list
// of red flags: count critical flags c, high h, medium m.
// c≥1 → very_high_risk; h≥2 → high_risk; h=1 or m≥2 → moderate_risk; else low_risk.
func RiskLabelFor(flags []RedFlag) RiskLabel {
	var critical, high, medium int
	for _, f := range flags {
		switch f.Severity {
		case SeverityCritical:
			critical++
		case SeverityHigh:
			high++
		case SeverityMedium:
			medium++
		}
	}
	switch {
	case critical >= 1:
		return RiskVeryHigh
	case high >= 2:
		return RiskHigh
	case high == 1 || medium >= 2:
		return RiskModerate
	default:
		return RiskLow
	}
}
