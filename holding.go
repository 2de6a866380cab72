package portfolio

import "time"

// Holding summarises the open lots of one position.
type Holding struct {
	Account     string
	Instrument  string
	Quantity    Quantity
	AverageCost Money
	CostBasis   Money
	Opened      time.Time // acquisition of the oldest open lot
	Lots        int
}

// Key returns the position of the holding.
func (h Holding) Key() Key { return Key{Account: h.Account, Instrument: h.Instrument} }

func newHolding(key Key, l lots) Holding {
	h := Holding{
		Account:    key.Account,
		Instrument: key.Instrument,
		Quantity:   l.quantity(),
		CostBasis:  l.cost(),
		Lots:       len(l),
	}
	if len(l) > 0 {
		h.Opened = l[0].Acquired
	}
	if h.Quantity.IsPositive() {
		h.AverageCost = h.CostBasis.Div(h.Quantity)
	}
	return h
}
