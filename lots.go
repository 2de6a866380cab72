package portfolio

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Lot is the unsold remainder of a single purchase.
type Lot struct {
	Account       string
	Instrument    string
	Quantity      Quantity // remaining
	UnitCost      Money
	Fee           Money // unconsumed share of the purchase fee
	FxRate        decimal.Decimal
	Acquired      time.Time
	TransactionID string
}

// Currency returns the currency the lot was bought in.
func (l Lot) Currency() string {
	if c := l.UnitCost.Currency(); c != "" {
		return c
	}
	return l.Fee.Currency()
}

// Cost returns the cost of the remaining quantity.
func (l Lot) Cost() Money { return l.UnitCost.Mul(l.Quantity) }

// newLot opens a lot from a buy. The unit cost is the price, or gross/quantity
// when the price is missing.
func newLot(tx Transaction) Lot {
	unit := tx.Price
	if unit.IsZero() && !tx.Gross.IsZero() {
		unit = tx.Gross.Div(tx.Quantity)
	}
	return Lot{
		Account:       tx.Account,
		Instrument:    tx.Instrument,
		Quantity:      tx.Quantity,
		UnitCost:      unit,
		Fee:           tx.Fee,
		FxRate:        tx.FxRate,
		Acquired:      tx.Time,
		TransactionID: tx.ID,
	}
}

type lots []Lot

func (l lots) quantity() Quantity {
	var total Quantity
	for _, lot := range l {
		total = total.Add(lot.Quantity)
	}
	return total
}

// currency returns the currency of the lots, empty when unknown.
func (l lots) currency() string {
	for _, lot := range l {
		if c := lot.Currency(); c != "" {
			return c
		}
	}
	return ""
}

func (l lots) cost() Money {
	var total Money
	for _, lot := range l {
		total = total.Add(lot.Cost())
	}
	return total
}

// sell consumes lots oldest first and returns the remaining lots with one
// realized event per consumed lot. The receiver is never modified, so a
// failed sell leaves the position untouched.
func (l lots) sell(tx Transaction) (lots, []RealizedEvent, error) {
	available := l.quantity()
	if available.LessThan(tx.Quantity) {
		return nil, nil, &InsufficientQuantityError{
			Account:    tx.Account,
			Instrument: tx.Instrument,
			Requested:  tx.Quantity,
			Available:  available,
		}
	}
	cur := tx.Currency()
	for _, lot := range l {
		if c := lot.Currency(); c != "" && cur != "" && c != cur {
			return nil, nil, fmt.Errorf("%w: selling %s in %s, lot %s bought in %s", ErrCurrencyMismatch, tx.Instrument, cur, lot.TransactionID, c)
		}
	}

	proceeds := tx.Gross
	if proceeds.IsZero() {
		proceeds = tx.Price.Mul(tx.Quantity)
	}

	var remainingLots lots
	var events []RealizedEvent
	toSell := tx.Quantity
	// allocated parts of the sell, the last part takes the remainder so that
	// the parts sum exactly to the whole.
	var proceedsLeft, feeLeft = proceeds, tx.Fee

	for _, current := range l {
		if toSell.IsZero() {
			remainingLots = append(remainingLots, current)
			continue
		}
		closed := current.Quantity.Min(toSell)
		toSell = toSell.Sub(closed)

		partProceeds, partFee := proceedsLeft, feeLeft
		if !toSell.IsZero() {
			partProceeds = proceeds.Mul(closed).Div(tx.Quantity)
			partFee = tx.Fee.Mul(closed).Div(tx.Quantity)
		}
		proceedsLeft = proceedsLeft.Sub(partProceeds)
		feeLeft = feeLeft.Sub(partFee)

		buyFee := current.Fee
		if closed.LessThan(current.Quantity) {
			buyFee = current.Fee.Mul(closed).Div(current.Quantity)
		}
		cost := current.UnitCost.Mul(closed)

		events = append(events, RealizedEvent{
			Account:            tx.Account,
			Instrument:         tx.Instrument,
			Quantity:           closed,
			Proceeds:           partProceeds,
			CostBasis:          cost,
			Gain:               partProceeds.Sub(cost),
			Fees:               partFee.Add(buyFee),
			Opened:             current.Acquired,
			Closed:             tx.Time,
			OpenTransactionID:  current.TransactionID,
			CloseTransactionID: tx.ID,
			OpenFxRate:         current.FxRate,
			CloseFxRate:        tx.FxRate,
		})

		if closed.LessThan(current.Quantity) {
			current.Quantity = current.Quantity.Sub(closed)
			current.Fee = current.Fee.Sub(buyFee)
			remainingLots = append(remainingLots, current)
		}
	}
	return remainingLots, events, nil
}
