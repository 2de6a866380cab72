package portfolio

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func newTestLedger(t *testing.T, txs ...Transaction) (*Ledger, *Book) {
	t.Helper()
	l := NewLedger()
	if err := l.Append(txs...); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	b, err := l.Book()
	if err != nil {
		t.Fatalf("Book() error = %v", err)
	}
	return l, b
}

func TestLedger_AppendKeepsOrder(t *testing.T) {
	l, _ := newTestLedger(t,
		NewBuy("late", "a", "X", on(3), Q(1), RUB(1), RUB(0)),
		NewBuy("early", "a", "X", on(1), Q(1), RUB(1), RUB(0)),
	)
	all := l.All()
	if all[0].ID != "early" || all[1].ID != "late" {
		t.Errorf("order = %s, %s; want early, late", all[0].ID, all[1].ID)
	}
	if err := l.Append(NewBuy("late", "a", "X", on(4), Q(1), RUB(1), RUB(0))); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("Append(duplicate) error = %v, want ErrDuplicateID", err)
	}
}

func TestLedger_Remove(t *testing.T) {
	l, b := newTestLedger(t,
		NewBuy("b1", "a", "X", on(0), Q(10), RUB(100), RUB(0)),
		NewBuy("b2", "a", "X", on(1), Q(10), RUB(110), RUB(0)),
		NewSell("s1", "a", "X", on(2), Q(10), RUB(120), RUB(0)),
	)
	if err := l.Remove("b1", b); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	// the sell now consumes the second lot
	realized := b.Realized()
	if len(realized) != 1 || !realized[0].Gain.Equal(RUB(100)) {
		t.Errorf("realized = %+v, want a single gain of 100", realized)
	}
	if h := b.Holding(Key{"a", "X"}); !h.Quantity.IsZero() {
		t.Errorf("holding = %s, want 0", h.Quantity)
	}
	if _, ok := l.Get("b1"); ok {
		t.Errorf("b1 still in the ledger")
	}
}

func TestLedger_RemoveInconsistentRollsBack(t *testing.T) {
	l, b := newTestLedger(t,
		NewBuy("b1", "a", "X", on(0), Q(10), RUB(100), RUB(0)),
		NewSell("s1", "a", "X", on(2), Q(10), RUB(120), RUB(0)),
	)
	err := l.Remove("b1", b)
	var qerr *InsufficientQuantityError
	if !errors.As(err, &qerr) {
		t.Fatalf("Remove() error = %v, want *InsufficientQuantityError", err)
	}
	if l.Len() != 2 {
		t.Errorf("ledger has %d transactions, want 2", l.Len())
	}
	if len(b.Realized()) != 1 {
		t.Errorf("book changed after a failed removal")
	}
	if err := l.Remove("nope", b); !errors.Is(err, ErrNotFound) {
		t.Errorf("Remove(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestLedger_Replace(t *testing.T) {
	l, b := newTestLedger(t,
		NewBuy("b1", "a", "X", on(0), Q(10), RUB(100), RUB(0)),
		NewSell("s1", "a", "X", on(2), Q(5), RUB(120), RUB(0)),
	)
	// the buy was actually recorded in another account
	corrected := NewBuy("b1", "b", "X", on(0), Q(10), RUB(100), RUB(0))
	err := l.Replace("b1", corrected, b)
	var qerr *InsufficientQuantityError
	if !errors.As(err, &qerr) {
		t.Fatalf("Replace() error = %v, want *InsufficientQuantityError", err)
	}

	// fix the price instead
	corrected = NewBuy("b1", "a", "X", on(0), Q(10), RUB(90), RUB(0))
	if err := l.Replace("b1", corrected, b); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	realized := b.Realized()
	if len(realized) != 1 || !realized[0].Gain.Equal(RUB(150)) {
		t.Errorf("realized = %+v, want a gain of 150", realized)
	}
	if h := b.Holding(Key{"a", "X"}); !h.AverageCost.Equal(RUB(90)) {
		t.Errorf("average cost = %s, want 90", h.AverageCost)
	}
}

func TestLedgerJSONL(t *testing.T) {
	input := `
{"id":"t1","time":"2024-03-01T10:00:00Z","kind":"deposit","account":"iis","gross":100000,"currency":"RUB"}
{"time":"2024-03-02","kind":"buy","account":"iis","instrument":"SBER","quantity":10,"price":250.5,"fee":3,"currency":"RUB"}
{"id":"t3","time":"2024-03-05T10:00:00Z","kind":"sell","account":"iis","instrument":"SBER","quantity":4,"price":260,"gross":1040,"currency":"RUB"}
`
	l, err := DecodeLedger(strings.NewReader(input))
	if err != nil {
		t.Fatalf("DecodeLedger() error = %v", err)
	}
	all := l.All()
	if len(all) != 3 {
		t.Fatalf("decoded %d transactions, want 3", len(all))
	}
	buy := all[1]
	if buy.ID == "" {
		t.Errorf("missing id was not generated")
	}
	if !buy.Gross.Equal(M(2505, "RUB")) {
		t.Errorf("buy gross = %v, want 2505 (quantity × price)", buy.Gross)
	}

	var buf bytes.Buffer
	if err := EncodeLedger(&buf, l); err != nil {
		t.Fatalf("EncodeLedger() error = %v", err)
	}
	again, err := DecodeLedger(&buf)
	if err != nil {
		t.Fatalf("DecodeLedger(encoded) error = %v", err)
	}
	for i, tx := range again.All() {
		if tx.ID != all[i].ID || !tx.Time.Equal(all[i].Time) || !tx.Gross.Equal(all[i].Gross) || !tx.Quantity.Equal(all[i].Quantity) {
			t.Errorf("transaction %d changed after a round trip: %+v != %+v", i, tx, all[i])
		}
	}
}

func TestDecodeLedger_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unknown kind", `{"id":"1","time":"2024-01-01","kind":"gift","account":"a"}`},
		{"bad time", `{"id":"1","time":"yesterday","kind":"deposit","account":"a"}`},
		{"no quantity", `{"id":"1","time":"2024-01-01","kind":"buy","account":"a","instrument":"X"}`},
		{"no account", `{"id":"1","time":"2024-01-01","kind":"deposit"}`},
		{"duplicate", "{\"id\":\"1\",\"time\":\"2024-01-01\",\"kind\":\"deposit\",\"account\":\"a\"}\n{\"id\":\"1\",\"time\":\"2024-01-02\",\"kind\":\"deposit\",\"account\":\"a\"}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeLedger(strings.NewReader(tt.input)); err == nil {
				t.Errorf("DecodeLedger() succeeded, want an error")
			}
		})
	}
}

func TestDecodeInstruments(t *testing.T) {
	input := `{"id":"SBER","name":"Sberbank","type":"Stock","sector":"Financials","country":"RU","currency":"RUB"}
{"id":"FXUS","type":"etf","country":"IE","currency":"RUB"}`
	r, err := DecodeInstruments(strings.NewReader(input))
	if err != nil {
		t.Fatalf("DecodeInstruments() error = %v", err)
	}
	sber, ok := r.Lookup("SBER")
	if !ok || sber.Type != Stock || !sber.IsDomestic() {
		t.Errorf("SBER = %+v, want a domestic stock", sber)
	}
	if fx, _ := r.Lookup("FXUS"); fx.IsDomestic() {
		t.Errorf("FXUS reported as domestic")
	}
	if _, err := DecodeInstruments(strings.NewReader(`{"id":"X","type":"painting"}`)); err == nil {
		t.Errorf("unknown type accepted")
	}
}
