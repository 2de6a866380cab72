package tax

import (
	"fmt"
	"slices"
	"strings"
	"time"

	portfolio "github.com/etnz/rfportfolio"
	"github.com/etnz/rfportfolio/date"
	"github.com/shopspring/decimal"
)

// Priority ranks recommendations.
type Priority int

const (
	Low Priority = iota + 1
	Medium
	High
	Critical
)

func (p Priority) String() string {
	switch p {
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	case Critical:
		return "critical"
	}
	return fmt.Sprintf("Priority(%d)", int(p))
}

// Recommendation kinds.
const (
	LossHarvesting      = "loss_harvesting"
	LDVPlanning         = "ldv_planning"
	IISOpening          = "iis_opening"
	DeclarationDeadline = "declaration_deadline"
)

// Recommendation is an advisory note. Recommendations never change the
// computed amounts.
type Recommendation struct {
	Kind        string
	Priority    Priority
	Title       string
	Description string
	Savings     portfolio.Money
}

// NearLDV is the window before the minimum holding period in which a
// position is reported as close to the exemption.
const NearLDV = 182 // days

func (c *Calculator) asOf(year int) date.Date {
	if !c.cfg.AsOf.IsZero() {
		return c.cfg.AsOf
	}
	return date.New(year, time.December, 31)
}

func (c *Calculator) recommend(r *Result, h *history, portfolios []Portfolio) []Recommendation {
	var recs []Recommendation

	var losses decimal.Decimal
	for _, p := range r.Positions {
		if p.HasPrice && p.UnrealizedPnL.IsNegative() {
			losses = losses.Add(p.UnrealizedPnL.Decimal().Neg())
		}
	}
	if losses.IsPositive() && r.NDFLAmount.IsPositive() {
		savings := decimal.Min(losses, r.NDFLBase.Decimal()).Mul(r.Rate)
		recs = append(recs, Recommendation{
			Kind:        LossHarvesting,
			Priority:    High,
			Title:       "Harvest tax losses",
			Description: fmt.Sprintf("Selling positions with %s of unrealized losses before year end would save up to %s of NDFL.", portfolio.RUB(losses), portfolio.RUB(savings)),
			Savings:     portfolio.RUB(savings),
		})
	}

	asOf := c.asOf(r.Year)
	minYears := c.cfg.Rates.LDVMinYears
	var near []string
	for _, p := range r.Positions {
		if !ldvEligible(h.instruments[p.Instrument]) {
			continue
		}
		eligible := p.Acquired.AddYears(minYears)
		left := eligible.DaysSince(asOf)
		if left > 0 && left <= NearLDV {
			near = append(near, fmt.Sprintf("%s in %s (%d days left)", p.Instrument, p.Account, left))
		}
	}
	if len(near) > 0 {
		recs = append(recs, Recommendation{
			Kind:        LDVPlanning,
			Priority:    Medium,
			Title:       "Long term holding exemption ahead",
			Description: fmt.Sprintf("Avoid selling these positions before they qualify for LDV: %s.", strings.Join(near, ", ")),
		})
	}

	hasIIS := slices.ContainsFunc(portfolios, func(p Portfolio) bool { return p.Regime == IISA || p.Regime == IISB })
	if r.IISDeduction.IsZero() && !hasIIS {
		refund := c.cfg.Rates.IISAnnualRefundCap
		recs = append(recs, Recommendation{
			Kind:        IISOpening,
			Priority:    High,
			Title:       "Open an individual investment account",
			Description: fmt.Sprintf("An IIS gives either a yearly refund of up to %s or a tax free exit.", portfolio.RUB(refund)),
			Savings:     portfolio.RUB(refund),
		})
	}

	if r.NDFLAmount.IsPositive() {
		recs = append(recs, Recommendation{
			Kind:     DeclarationDeadline,
			Priority: Critical,
			Title:    "Declaration and payment deadlines",
			Description: fmt.Sprintf("NDFL due: %s. File the declaration by %s and pay by %s.",
				r.TaxDue, date.New(r.Year+1, time.April, 30), date.New(r.Year+1, time.July, 15)),
		})
	}

	slices.SortStableFunc(recs, func(a, b Recommendation) int { return int(b.Priority - a.Priority) })
	return recs
}
