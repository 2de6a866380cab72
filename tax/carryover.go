package tax

import "github.com/shopspring/decimal"

type loss struct {
	year   int
	amount decimal.Decimal
}

// lossPool holds unused losses, oldest first.
type lossPool []loss

func (p *lossPool) add(year int, amount decimal.Decimal) {
	*p = append(*p, loss{year: year, amount: amount})
}

// expire drops losses that can no longer be carried to year.
func (p *lossPool) expire(year, keep int) {
	kept := (*p)[:0]
	for _, l := range *p {
		if year-l.year <= keep {
			kept = append(kept, l)
		}
	}
	*p = kept
}

func (p lossPool) total() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range p {
		sum = sum.Add(l.amount)
	}
	return sum
}

// consume uses losses, oldest first, up to limit and returns the amount used.
func (p *lossPool) consume(limit decimal.Decimal) decimal.Decimal {
	used := decimal.Zero
	kept := (*p)[:0]
	for _, l := range *p {
		take := decimal.Min(l.amount, limit.Sub(used))
		if take.IsPositive() {
			used = used.Add(take)
			l.amount = l.amount.Sub(take)
		}
		if l.amount.IsPositive() {
			kept = append(kept, l)
		}
	}
	*p = kept
	return used
}
