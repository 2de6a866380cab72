package portfolio

import (
	"cmp"
	"fmt"
	"slices"
	"time"
)

// Book derives lots, holdings and realized events from transactions.
//
// A Book is not safe for concurrent use.
type Book struct {
	positions map[Key]*position
	realized  []RealizedEvent
}

type position struct {
	lots lots
	last time.Time
}

// NewBook returns an empty book.
func NewBook() *Book {
	return &Book{positions: make(map[Key]*position)}
}

// Replay builds a book from scratch by applying txs in order.
func Replay(txs []Transaction) (*Book, error) {
	b := NewBook()
	for _, tx := range txs {
		if _, err := b.Apply(tx); err != nil {
			return nil, fmt.Errorf("replaying transaction %q: %w", tx.ID, err)
		}
	}
	return b, nil
}

// Apply applies a single transaction and returns the realized events it
// produced. On error the book is left unchanged.
func (b *Book) Apply(tx Transaction) ([]RealizedEvent, error) {
	if err := tx.Validate(); err != nil {
		return nil, err
	}
	key := tx.Key()
	pos := b.positions[key]
	if pos != nil && tx.Time.Before(pos.last) {
		return nil, fmt.Errorf("%w: %q on %s at %s precedes %s", ErrOutOfOrder, tx.ID, key, tx.Time.Format(time.RFC3339), pos.last.Format(time.RFC3339))
	}

	var events []RealizedEvent
	newLots := lots(nil)
	if pos != nil {
		newLots = pos.lots
	}

	switch tx.Kind {
	case KindBuy:
		if c, cur := newLots.currency(), tx.Currency(); c != "" && cur != "" && c != cur {
			return nil, fmt.Errorf("%w: buying %s in %s, open lots are in %s", ErrCurrencyMismatch, key, cur, c)
		}
		newLots = append(slices.Clip(newLots), newLot(tx))
	case KindSell:
		var err error
		newLots, events, err = newLots.sell(tx)
		if err != nil {
			return nil, err
		}
	case KindDividend, KindCoupon, KindTax, KindFee, KindDeposit, KindWithdrawal,
		KindSplit, KindSpinOff, KindMerger:
		// no lot effect
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidTransaction, tx.Kind)
	}

	if pos == nil {
		pos = &position{}
		b.positions[key] = pos
	}
	pos.lots = newLots
	pos.last = tx.Time
	b.realized = append(b.realized, events...)
	return events, nil
}

// ReplayPosition rebuilds a single position from txs. Transactions for
// other positions are ignored. On error the book is left unchanged.
func (b *Book) ReplayPosition(key Key, txs []Transaction) error {
	fresh := NewBook()
	for _, tx := range txs {
		if tx.Key() != key {
			continue
		}
		if _, err := fresh.Apply(tx); err != nil {
			return fmt.Errorf("replaying %s: transaction %q: %w", key, tx.ID, err)
		}
	}
	realized := slices.DeleteFunc(slices.Clone(b.realized), func(e RealizedEvent) bool {
		return e.Account == key.Account && e.Instrument == key.Instrument
	})
	realized = append(realized, fresh.realized...)
	slices.SortStableFunc(realized, func(a, b RealizedEvent) int { return a.Closed.Compare(b.Closed) })
	b.realized = realized
	if pos, ok := fresh.positions[key]; ok {
		b.positions[key] = pos
	} else {
		delete(b.positions, key)
	}
	return nil
}

// Keys returns the positions known to the book, sorted.
func (b *Book) Keys() []Key {
	keys := make([]Key, 0, len(b.positions))
	for k := range b.positions {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b Key) int {
		return cmp.Or(cmp.Compare(a.Account, b.Account), cmp.Compare(a.Instrument, b.Instrument))
	})
	return keys
}

// Holding returns the holding of a position. The zero quantity is returned
// for unknown positions.
func (b *Book) Holding(key Key) Holding {
	var l lots
	if pos := b.positions[key]; pos != nil {
		l = pos.lots
	}
	return newHolding(key, l)
}

// Holdings returns every non empty holding, sorted by account then instrument.
func (b *Book) Holdings() []Holding {
	var holdings []Holding
	for _, key := range b.Keys() {
		if key.Instrument == "" {
			continue
		}
		if h := b.Holding(key); h.Quantity.IsPositive() {
			holdings = append(holdings, h)
		}
	}
	return holdings
}

// Lots returns a copy of the open lots of a position, oldest first.
func (b *Book) Lots(key Key) []Lot {
	if pos := b.positions[key]; pos != nil {
		return slices.Clone(pos.lots)
	}
	return nil
}

// Realized returns every realized event, in the order they were produced.
func (b *Book) Realized() []RealizedEvent { return slices.Clone(b.realized) }
