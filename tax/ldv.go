package tax

import (
	portfolio "github.com/etnz/rfportfolio"
	"github.com/shopspring/decimal"
)

// ldvEligible reports whether gains on the instrument can be exempt for long
// term holding: domestic stocks and bonds.
func ldvEligible(in portfolio.Instrument) bool {
	return in.IsDomestic() && (in.Type == portfolio.Stock || in.Type == portfolio.Bond)
}

// ldvCap returns the exemption cap for lots held years full years: one annual
// cap at the minimum holding period, one more per additional year.
func (c *Calculator) ldvCap(years int) decimal.Decimal {
	r := c.cfg.Rates
	if years < r.LDVMinYears {
		return decimal.Zero
	}
	return r.LDVAnnualCap.Mul(decimal.NewFromInt(int64(years - r.LDVMinYears + 1)))
}

// ldvExemption sums, per instrument, the positive gain of eligible sells
// held long enough, capped by the shortest holding period among them.
func (c *Calculator) ldvExemption(events []classifiedEvent) decimal.Decimal {
	type acc struct {
		gain  decimal.Decimal
		years int
	}
	per := make(map[string]*acc)
	var order []string
	for _, e := range events {
		if !ldvEligible(e.instrument) {
			continue
		}
		years := e.HoldingYears()
		if years < c.cfg.Rates.LDVMinYears {
			continue
		}
		a, ok := per[e.Instrument]
		if !ok {
			a = &acc{years: years}
			per[e.Instrument] = a
			order = append(order, e.Instrument)
		}
		a.gain = a.gain.Add(e.BaseGain().Decimal())
		a.years = min(a.years, years)
	}
	total := decimal.Zero
	for _, id := range order {
		a := per[id]
		if !a.gain.IsPositive() {
			continue
		}
		total = total.Add(decimal.Min(a.gain, c.ldvCap(a.years)))
	}
	return total
}
