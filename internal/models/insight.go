package models

// InsightSource tags where an insight narrative came from.
type InsightSource string

const (
	InsightSourceExternal  InsightSource = "external"
	InsightSourceHeuristic InsightSource = "heuristic"
)

// InsightNarrative is the human-readable portfolio commentary.
// It is regenerated on every request and never stored.
type InsightNarrative struct {
	Source InsightSource `json:"source"`
	Text   string        `json:"insights"`
}

// TimelinePoint is one month of the benchmark comparison.
type TimelinePoint struct {
	Date      string  `json:"date" toml:"date"`
	Portfolio float64 `json:"portfolio" toml:"portfolio"`
	Nifty50   float64 `json:"nifty50" toml:"nifty50"`
	Gold      float64 `json:"gold" toml:"gold"`
}

// Performance is the static timeline and period returns served as-is.
// Returns is keyed by series ("portfolio", "nifty50", "gold") then period.
type Performance struct {
	Timeline []TimelinePoint              `json:"timeline" toml:"timeline"`
	Returns  map[string]map[string]float64 `json:"returns" toml:"returns"`
}

// Clone returns a deep copy.
func (p *Performance) Clone() *Performance {
	if p == nil {
		return nil
	}
	out := &Performance{
		Timeline: append([]TimelinePoint(nil), p.Timeline...),
		Returns:  make(map[string]map[string]float64, len(p.Returns)),
	}
	for series, periods := range p.Returns {
		m := make(map[string]float64, len(periods))
		for k, v := range periods {
			m[k] = v
		}
		out.Returns[series] = m
	}
	return out
}
