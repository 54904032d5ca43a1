package domain

import "time"

// Outcome labels for a resolved report.
const (
	OutcomeMatched = "matched"
	OutcomeNoMatch = "no_match"
)

// Report is the result of one dashboard interaction.
type Report struct {
	Selection Selection
	Matched   bool
	Record    Record // zero unless Matched

	Advisories        []string
	AdvisoriesDefined bool

	Forecast   *Forecast // nil when no match or forecasting is disabled
	ResolvedAt time.Time
}

// NewReport starts a report for sel stamped with the package clock.
func NewReport(sel Selection) Report {
	return Report{Selection: sel, ResolvedAt: clock.Now()}
}

// Outcome returns OutcomeMatched or OutcomeNoMatch.
func (r Report) Outcome() string {
	if r.Matched {
		return OutcomeMatched
	}
	return OutcomeNoMatch
}

// Message returns the informational message for the report, or "" when the
// selection matched a stage with advisories.
func (r Report) Message() string {
	switch {
	case !r.Matched:
		return MsgNoMatch
	case !r.AdvisoriesDefined:
		return MsgNoAdvisories
	default:
		return ""
	}
}

// ModelArtifact describes the predictive model file found at startup. It is
// recorded for operators only; no lookup path uses it.
type ModelArtifact struct {
	Path   string
	Size   int64
	SHA256 string
}

// Status summarizes the loaded assets for readiness reporting.
type Status struct {
	Records           int
	Stages            int
	ForecastEnabled   bool
	PublishingEnabled bool
	Model             *ModelArtifact
}
