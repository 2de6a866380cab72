package portfolio

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseKind(t *testing.T) {
	for _, k := range Kinds {
		got, err := ParseKind(string(k))
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %q, %v", k, got, err)
		}
	}
	if got, _ := ParseKind(" Spin_Off "); got != KindSpinOff {
		t.Errorf("ParseKind is not case insensitive: %q", got)
	}
	if _, err := ParseKind("transfer"); !errors.Is(err, ErrInvalidTransaction) {
		t.Errorf("ParseKind(transfer) error = %v, want ErrInvalidTransaction", err)
	}
}

func TestTransaction_Validate(t *testing.T) {
	valid := NewBuy("1", "a", "X", on(0), Q(1), RUB(10), RUB(0))
	tests := []struct {
		name   string
		mutate func(*Transaction)
		ok     bool
	}{
		{"valid", func(*Transaction) {}, true},
		{"no account", func(tx *Transaction) { tx.Account = "" }, false},
		{"no time", func(tx *Transaction) { tx.Time = time.Time{} }, false},
		{"no instrument", func(tx *Transaction) { tx.Instrument = "" }, false},
		{"zero quantity", func(tx *Transaction) { tx.Quantity = Q(0) }, false},
		{"negative quantity", func(tx *Transaction) { tx.Quantity = Q(-1) }, false},
		{"negative fee", func(tx *Transaction) { tx.Fee = RUB(-1) }, false},
		{"negative fx", func(tx *Transaction) { tx.FxRate = decimal.NewFromInt(-1) }, false},
		{"unknown kind", func(tx *Transaction) { tx.Kind = "gift" }, false},
		{"fee in another currency", func(tx *Transaction) { tx.Fee = M(1, "USD") }, false},
		{"tax in another currency", func(tx *Transaction) { *tx = NewIncome("3", "a", "X", on(0), KindDividend, M(10, "USD"), RUB(1)) }, false},
		{"zero amounts without currency", func(tx *Transaction) { tx.Fee = Money{} }, true},
		{"cash event without instrument", func(tx *Transaction) { *tx = NewCash("2", "a", on(0), KindDeposit, RUB(5)) }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := valid
			tt.mutate(&tx)
			err := tx.Validate()
			if (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func TestTransaction_Base(t *testing.T) {
	tx := NewBuy("1", "a", "AAPL", on(0), Q(2), M(100, "USD"), M(1, "USD")).WithFxRate(decimal.NewFromInt(90))
	if got := tx.Base(tx.Gross); !got.Equal(RUB(18000)) {
		t.Errorf("Base(gross) = %v, want 18000 RUB", got)
	}
	rub := NewBuy("2", "a", "SBER", on(0), Q(2), RUB(100), RUB(0))
	if got := rub.Base(rub.Gross); !got.Equal(RUB(200)) {
		t.Errorf("Base(gross) = %v, want 200 RUB", got)
	}
}

func TestTransaction_MarshalJSON(t *testing.T) {
	tx := NewBuy("1", "a", "SBER", on(0), Q(2), RUB(100.5), RUB(0))
	got, err := json.Marshal(tx)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"id":"1","time":"2024-01-10T10:00:00Z","kind":"buy","account":"a","instrument":"SBER","quantity":2,"price":100.5,"gross":201,"currency":"RUB"}`
	if string(got) != want {
		t.Errorf("MarshalJSON() =\n%s\nwant\n%s", got, want)
	}
}
