package renderer

import (
	"github.com/etnz/rfportfolio/allocation"
	"github.com/shopspring/decimal"
)

// Allocation is the allocation report data for rendering.
type Allocation struct {
	Currency   string                 `json:"currency"`
	Total      decimal.Decimal        `json:"total"`
	Dimensions []Dimension            `json:"dimensions"`
	Drift      []allocation.Deviation `json:"drift,omitempty"`
}

// Dimension is one axis of the breakdown.
type Dimension struct {
	Title   string              `json:"title"`
	Weights []allocation.Weight `json:"weights"`
}

// NewAllocation prepares a breakdown, and the drift from targets, for rendering.
func NewAllocation(currency string, b allocation.Breakdown, drift []allocation.Deviation) *Allocation {
	return &Allocation{
		Currency: currency,
		Total:    b.Total,
		Dimensions: []Dimension{
			{"Asset Class", b.ByClass},
			{"Sector", b.BySector},
			{"Country", b.ByCountry},
			{"Currency", b.ByCurrency},
		},
		Drift: drift,
	}
}
