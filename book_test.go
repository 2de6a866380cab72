package portfolio

import (
	"errors"
	"testing"
	"time"
)

var day0 = time.Date(2024, time.January, 10, 10, 0, 0, 0, time.UTC)

func on(days int) time.Time { return day0.AddDate(0, 0, days) }

func mustApply(t *testing.T, b *Book, txs ...Transaction) []RealizedEvent {
	t.Helper()
	var events []RealizedEvent
	for _, tx := range txs {
		ev, err := b.Apply(tx)
		if err != nil {
			t.Fatalf("Apply(%s) unexpected error: %v", tx.ID, err)
		}
		events = append(events, ev...)
	}
	return events
}

func TestBook_FIFO(t *testing.T) {
	b := NewBook()
	key := Key{"broker", "SBER"}
	events := mustApply(t, b,
		NewBuy("b1", "broker", "SBER", on(0), Q(10), RUB(100), RUB(0)),
		NewBuy("b2", "broker", "SBER", on(1), Q(10), RUB(110), RUB(0)),
		NewSell("s1", "broker", "SBER", on(2), Q(10), RUB(120), RUB(0)),
	)

	if len(events) != 1 {
		t.Fatalf("got %d realized events, want 1", len(events))
	}
	ev := events[0]
	if !ev.Gain.Equal(RUB(200)) {
		t.Errorf("Gain = %v, want %v", ev.Gain, RUB(200))
	}
	if !ev.CostBasis.Equal(RUB(1000)) {
		t.Errorf("CostBasis = %v, want %v", ev.CostBasis, RUB(1000))
	}
	if ev.OpenTransactionID != "b1" || ev.CloseTransactionID != "s1" {
		t.Errorf("event links %s -> %s, want b1 -> s1", ev.OpenTransactionID, ev.CloseTransactionID)
	}

	lots := b.Lots(key)
	if len(lots) != 1 || !lots[0].Quantity.Equal(Q(10)) || !lots[0].UnitCost.Equal(RUB(110)) {
		t.Fatalf("remaining lots = %+v, want one lot 10@110", lots)
	}
	h := b.Holding(key)
	if !h.Quantity.Equal(Q(10)) || !h.AverageCost.Equal(RUB(110)) {
		t.Errorf("holding = %s @ %s, want 10 @ 110", h.Quantity, h.AverageCost)
	}
}

func TestBook_SellAcrossLots(t *testing.T) {
	b := NewBook()
	events := mustApply(t, b,
		NewBuy("b1", "a", "X", on(0), Q(10), RUB(100), RUB(10)),
		NewBuy("b2", "a", "X", on(1), Q(10), RUB(110), RUB(20)),
		NewSell("s1", "a", "X", on(2), Q(15), RUB(120), RUB(30)),
	)
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	tests := []struct {
		qty      Quantity
		proceeds Money
		cost     Money
		fees     Money
	}{
		{Q(10), RUB(1200), RUB(1000), RUB(30)}, // 20 of the sell fee + 10 of buy fee
		{Q(5), RUB(600), RUB(550), RUB(20)},    // 10 of the sell fee + half of 20
	}
	for i, tt := range tests {
		ev := events[i]
		if !ev.Quantity.Equal(tt.qty) || !ev.Proceeds.Equal(tt.proceeds) || !ev.CostBasis.Equal(tt.cost) || !ev.Fees.Equal(tt.fees) {
			t.Errorf("event %d = %s %s %s %s, want %s %s %s %s", i,
				ev.Quantity, ev.Proceeds, ev.CostBasis, ev.Fees, tt.qty, tt.proceeds, tt.cost, tt.fees)
		}
	}
	lots := b.Lots(Key{"a", "X"})
	if len(lots) != 1 || !lots[0].Quantity.Equal(Q(5)) || !lots[0].Fee.Equal(RUB(10)) {
		t.Errorf("remaining lots = %+v, want 5 units with 10 fee left", lots)
	}
}

func TestBook_Conservation(t *testing.T) {
	b := NewBook()
	key := Key{"a", "X"}
	txs := []Transaction{
		NewBuy("1", "a", "X", on(0), Q(7), RUB(10), RUB(0)),
		NewBuy("2", "a", "X", on(1), Q(3.5), RUB(12), RUB(0)),
		NewSell("3", "a", "X", on(2), Q(4), RUB(11), RUB(0)),
		NewBuy("4", "a", "X", on(3), Q(1), RUB(9), RUB(0)),
		NewSell("5", "a", "X", on(4), Q(6.5), RUB(13), RUB(0)),
	}
	var bought, sold Quantity
	for _, tx := range txs {
		mustApply(t, b, tx)
		switch tx.Kind {
		case KindBuy:
			bought = bought.Add(tx.Quantity)
		case KindSell:
			sold = sold.Add(tx.Quantity)
		}
		h := b.Holding(key)
		if want := bought.Sub(sold); !h.Quantity.Equal(want) {
			t.Fatalf("after %s holding = %s, want %s", tx.ID, h.Quantity, want)
		}
		var sum Quantity
		for _, l := range b.Lots(key) {
			sum = sum.Add(l.Quantity)
		}
		if !sum.Equal(h.Quantity) {
			t.Fatalf("after %s lots sum to %s, holding is %s", tx.ID, sum, h.Quantity)
		}
	}
	var realized Quantity
	for _, ev := range b.Realized() {
		realized = realized.Add(ev.Quantity)
	}
	if !realized.Equal(sold) {
		t.Errorf("realized quantity = %s, want %s", realized, sold)
	}
}

func TestBook_OversellIsAtomic(t *testing.T) {
	b := NewBook()
	key := Key{"a", "X"}
	mustApply(t, b, NewBuy("b1", "a", "X", on(0), Q(5), RUB(100), RUB(0)))

	_, err := b.Apply(NewSell("s1", "a", "X", on(1), Q(6), RUB(100), RUB(0)))
	var qerr *InsufficientQuantityError
	if !errors.As(err, &qerr) {
		t.Fatalf("Apply() error = %v, want *InsufficientQuantityError", err)
	}
	if !qerr.Requested.Equal(Q(6)) || !qerr.Available.Equal(Q(5)) {
		t.Errorf("error = %v, want requested 6 available 5", qerr)
	}
	if h := b.Holding(key); !h.Quantity.Equal(Q(5)) {
		t.Errorf("holding after failed sell = %s, want 5", h.Quantity)
	}
	if len(b.Realized()) != 0 {
		t.Errorf("failed sell produced realized events")
	}
}

func TestBook_OutOfOrder(t *testing.T) {
	b := NewBook()
	mustApply(t, b, NewBuy("b1", "a", "X", on(5), Q(5), RUB(100), RUB(0)))

	_, err := b.Apply(NewBuy("b0", "a", "X", on(1), Q(5), RUB(90), RUB(0)))
	if !errors.Is(err, ErrOutOfOrder) {
		t.Fatalf("Apply() error = %v, want ErrOutOfOrder", err)
	}
	if h := b.Holding(Key{"a", "X"}); !h.Quantity.Equal(Q(5)) {
		t.Errorf("holding = %s, want 5", h.Quantity)
	}
	// other positions are independent
	mustApply(t, b, NewBuy("c0", "a", "Y", on(1), Q(1), RUB(1), RUB(0)))
	// same time is accepted
	mustApply(t, b, NewBuy("b2", "a", "X", on(5), Q(1), RUB(100), RUB(0)))
}

func TestBook_NonTradeKindsHaveNoLotEffect(t *testing.T) {
	b := NewBook()
	mustApply(t, b, NewBuy("b1", "a", "X", on(0), Q(5), RUB(100), RUB(0)))
	for i, kind := range []Kind{KindDividend, KindCoupon, KindSplit, KindSpinOff, KindMerger} {
		tx := NewIncome("i"+string(kind), "a", "X", on(i+1), kind, RUB(10), RUB(0))
		if ev := mustApply(t, b, tx); len(ev) != 0 {
			t.Errorf("%s produced realized events", kind)
		}
	}
	if h := b.Holding(Key{"a", "X"}); !h.Quantity.Equal(Q(5)) || h.Lots != 1 {
		t.Errorf("holding = %s in %d lots, want 5 in 1 lot", h.Quantity, h.Lots)
	}
}

func TestBook_DepletedLotsAreRemoved(t *testing.T) {
	b := NewBook()
	mustApply(t, b,
		NewBuy("b1", "a", "X", on(0), Q(5), RUB(100), RUB(0)),
		NewSell("s1", "a", "X", on(1), Q(5), RUB(100), RUB(0)),
	)
	if lots := b.Lots(Key{"a", "X"}); len(lots) != 0 {
		t.Errorf("lots = %+v, want none", lots)
	}
	if h := b.Holdings(); len(h) != 0 {
		t.Errorf("Holdings() = %+v, want none", h)
	}
}

func TestReplay(t *testing.T) {
	txs := []Transaction{
		NewBuy("b1", "a", "X", on(0), Q(10), RUB(100), RUB(0)),
		NewBuy("b2", "b", "X", on(0), Q(3), RUB(100), RUB(0)),
		NewSell("s1", "a", "X", on(1), Q(4), RUB(150), RUB(0)),
	}
	b, err := Replay(txs)
	if err != nil {
		t.Fatalf("Replay() error = %v", err)
	}
	holdings := b.Holdings()
	if len(holdings) != 2 {
		t.Fatalf("got %d holdings, want 2", len(holdings))
	}
	if holdings[0].Account != "a" || !holdings[0].Quantity.Equal(Q(6)) {
		t.Errorf("holdings[0] = %+v, want a/X 6", holdings[0])
	}

	_, err = Replay(append(txs, NewSell("s2", "b", "X", on(2), Q(4), RUB(1), RUB(0))))
	var qerr *InsufficientQuantityError
	if !errors.As(err, &qerr) {
		t.Errorf("Replay() error = %v, want *InsufficientQuantityError", err)
	}
}

func TestBook_ReplayPosition(t *testing.T) {
	txs := []Transaction{
		NewBuy("b1", "a", "X", on(0), Q(10), RUB(100), RUB(0)),
		NewSell("s1", "a", "X", on(1), Q(4), RUB(150), RUB(0)),
		NewBuy("b2", "a", "Y", on(0), Q(1), RUB(100), RUB(0)),
	}
	b, err := Replay(txs)
	if err != nil {
		t.Fatal(err)
	}
	// drop the sell from the history of a/X
	if err := b.ReplayPosition(Key{"a", "X"}, txs[:1]); err != nil {
		t.Fatalf("ReplayPosition() error = %v", err)
	}
	if h := b.Holding(Key{"a", "X"}); !h.Quantity.Equal(Q(10)) {
		t.Errorf("a/X = %s, want 10", h.Quantity)
	}
	if h := b.Holding(Key{"a", "Y"}); !h.Quantity.Equal(Q(1)) {
		t.Errorf("a/Y = %s, want 1", h.Quantity)
	}
	if len(b.Realized()) != 0 {
		t.Errorf("realized events survived the replay: %+v", b.Realized())
	}
}

func TestBook_CurrencyMismatch(t *testing.T) {
	b := NewBook()
	mustApply(t, b, NewBuy("b1", "a", "X", on(0), Q(1), M(10, "USD"), M(0, "USD")))
	_, err := b.Apply(NewSell("s1", "a", "X", on(1), Q(1), M(10, "EUR"), M(0, "EUR")))
	if !errors.Is(err, ErrCurrencyMismatch) {
		t.Errorf("Apply() error = %v, want ErrCurrencyMismatch", err)
	}
}

func TestBook_MixedCurrencies(t *testing.T) {
	tests := []struct {
		name string
		txs  []Transaction
	}{
		{"buy in another currency", []Transaction{
			NewBuy("b1", "a", "X", on(0), Q(1), M(100, "USD"), M(0, "USD")),
			NewBuy("b2", "a", "X", on(1), Q(1), M(9000, "RUB"), M(0, "RUB")),
		}},
		{"sell fee in another currency", []Transaction{
			NewBuy("b1", "a", "X", on(0), Q(1), M(100, "USD"), M(1, "USD")),
			NewSell("s1", "a", "X", on(1), Q(1), M(110, "USD"), M(90, "RUB")),
		}},
		{"buy fee in another currency", []Transaction{
			NewBuy("b1", "a", "X", on(0), Q(1), M(100, "USD"), M(90, "RUB")),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBook()
			for _, tx := range tt.txs[:len(tt.txs)-1] {
				mustApply(t, b, tx)
			}
			before := b.Holdings()
			last := tt.txs[len(tt.txs)-1]
			if _, err := b.Apply(last); !errors.Is(err, ErrCurrencyMismatch) {
				t.Fatalf("Apply(%s) error = %v, want ErrCurrencyMismatch", last.ID, err)
			}
			// the book is unchanged and still usable
			if got := b.Holdings(); len(got) != len(before) {
				t.Errorf("Holdings() = %v, want %v", got, before)
			}
			if got := b.Realized(); len(got) != 0 {
				t.Errorf("Realized() = %v, want none", got)
			}
		})
	}
}
