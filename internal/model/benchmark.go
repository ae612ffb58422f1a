package model

// OverallPosition is the closed-set summary of a BenchmarkReport.
type OverallPosition string

const (
	PositionTopDecile      OverallPosition = "top_decile"
	PositionTopQuartile    OverallPosition = "top_quartile"
	PositionAboveAverage   OverallPosition = "above_average"
	PositionAverage        OverallPosition = "average"
	PositionBelowAverage   OverallPosition = "below_average"
)

// MetricComparison is one line of a BenchmarkReport's comparison table.
type MetricComparison struct {
	Metric       string  `json:"metric"`
	StartupValue float64 `json:"startup_value"`
	SectorAvg    float64 `json:"sector_avg"`
	Percentile   int     `json:"percentile"`
	Insight      string  `json:"insight"`
}

// BenchmarkReport is the Benchmark Agent's output.
type BenchmarkReport struct {
	Industry       string              `json:"industry"`
	Comparisons    []MetricComparison  `json:"comparisons"`
	OverallPosition OverallPosition    `json:"overall_position"`
	Summary        string              `json:"summary"`
	Degraded       bool                `json:"degraded"`
}

// IndustryPrior is the per-industry metric table from §4.5.
type IndustryPrior struct {
	RevenueGrowthPct float64
	GrossMarginPct   float64
	CACPaybackMonths float64
	NetRetentionPct  float64
}

// IndustryPriors maps the six known industries to their priors; unknown
// sectors resolve to "technology" before this lookup.
var IndustryPriors = map[string]IndustryPrior{
	"technology":    {45, 75, 12, 110},
	"fintech":       {60, 80, 8, 115},
	"healthcare":    {35, 70, 18, 105},
	"e-commerce":    {40, 60, 15, 108},
	"saas":          {50, 85, 10, 120},
	"food-delivery": {30, 45, 20, 95},
}

// KnownIndustries is the closed set of sector labels, in table order.
var KnownIndustries = []string{"technology", "fintech", "healthcare", "e-commerce", "saas", "food-delivery"}

// DefaultIndustry is used when facts.Sector matches none of KnownIndustries.
const DefaultIndustry = "technology"
