package store

// CandidateProduct is one product surfaced by research.
type CandidateProduct struct {
	Name     string            `json:"name"`
	Price    *float64          `json:"price,omitempty"` // absent means "not found", not zero
	Currency string            `json:"currency,omitempty"`
	URL      string            `json:"url,omitempty"`
	Specs    map[string]string `json:"specs,omitempty"`
	Pros     []string          `json:"pros,omitempty"`
	Cons     []string          `json:"cons,omitempty"`
	Source   string            `json:"source,omitempty"`
}

// ConsiderationItem is an "unknown unknown": a decision-relevant factor
// the buyer did not raise.
type ConsiderationItem struct {
	Label     string `json:"label"`
	Rationale string `json:"rationale,omitempty"`
	Guidance  string `json:"guidance,omitempty"`
}

// ResearchOutput is everything the researching phase produced.
type ResearchOutput struct {
	Candidates     []CandidateProduct  `json:"candidates"`
	Considerations []ConsiderationItem `json:"considerations"`
	MarketSummary  string              `json:"market_summary,omitempty"`
}

// RankedProduct is one entry of the analysis report.
type RankedProduct struct {
	Name    string   `json:"name"`
	Rank    int      `json:"rank"`
	Score   float64  `json:"score,omitempty"`
	Verdict string   `json:"verdict,omitempty"`
	Pros    []string `json:"pros,omitempty"`
	Cons    []string `json:"cons,omitempty"`
}

// AnalysisReport is the ranked output of the analyzing phase. Degraded
// marks a report assembled locally after the analysis output failed to
// parse.
type AnalysisReport struct {
	Entries  []RankedProduct `json:"entries"`
	Summary  string          `json:"summary,omitempty"`
	Degraded bool            `json:"degraded,omitempty"`
}
