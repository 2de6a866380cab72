package renderer

import (
	"github.com/etnz/rfportfolio/date"
	"github.com/etnz/rfportfolio/performance"
)

// Performance is the performance report data for rendering.
type Performance struct {
	Name      string                  `json:"name,omitempty"`
	From      date.Date               `json:"from"`
	To        date.Date               `json:"to"`
	Returns   []Return                `json:"returns"`
	Metrics   performance.Metrics     `json:"metrics"`
	Benchmark *performance.Comparison `json:"benchmark,omitempty"`
}

// Return is the TWR over one horizon.
type Return struct {
	Horizon string              `json:"horizon"`
	TWR     performance.Measure `json:"twr"`
}

// NewPerformance prepares metrics computed over points for rendering. The
// benchmark comparison is optional.
func NewPerformance(name string, points []performance.PricePoint, m performance.Metrics, benchmark *performance.Comparison) *Performance {
	p := &Performance{Name: name, Metrics: m, Benchmark: benchmark}
	for _, pt := range points {
		if p.From.IsZero() || pt.Date.Before(p.From) {
			p.From = pt.Date
		}
		if pt.Date.After(p.To) {
			p.To = pt.Date
		}
	}
	for _, h := range performance.Horizons {
		p.Returns = append(p.Returns, Return{Horizon: h.Name, TWR: m.TWR[h.Name]})
	}
	p.Returns = append(p.Returns, Return{Horizon: "inception", TWR: m.TWRInception})
	return p
}
