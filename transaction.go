package portfolio

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/etnz/rfportfolio/date"
	"github.com/shopspring/decimal"
)

// Kind identifies the nature of a transaction. The set of kinds is closed.
type Kind string

const (
	KindBuy        Kind = "buy"
	KindSell       Kind = "sell"
	KindDividend   Kind = "dividend"
	KindCoupon     Kind = "coupon"
	KindTax        Kind = "tax"
	KindFee        Kind = "fee"
	KindDeposit    Kind = "deposit"
	KindWithdrawal Kind = "withdrawal"
	KindSplit      Kind = "split"
	KindSpinOff    Kind = "spin_off"
	KindMerger     Kind = "merger"
)

// Kinds lists every known transaction kind.
var Kinds = []Kind{
	KindBuy, KindSell, KindDividend, KindCoupon, KindTax, KindFee,
	KindDeposit, KindWithdrawal, KindSplit, KindSpinOff, KindMerger,
}

// ParseKind parses a transaction kind, case insensitive.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(Kinds, k) {
		return "", fmt.Errorf("%w: unknown transaction kind %q", ErrInvalidTransaction, s)
	}
	return k, nil
}

// IsTrade reports whether the kind opens or closes lots.
func (k Kind) IsTrade() bool { return k == KindBuy || k == KindSell }

// IsIncome reports whether the kind is investment income (dividend or coupon).
func (k Kind) IsIncome() bool { return k == KindDividend || k == KindCoupon }

// IsExternalFlow reports whether the kind moves capital in or out of the account.
func (k Kind) IsExternalFlow() bool { return k == KindDeposit || k == KindWithdrawal }

// Key identifies a position: one instrument held in one account.
type Key struct {
	Account    string
	Instrument string
}

func (k Key) String() string { return k.Account + "/" + k.Instrument }

// Transaction is an immutable ledger entry.
//
// Gross is always populated: for trades it defaults to Quantity × Price.
// Monetary fields are expressed in the transaction currency; FxRate converts
// them into the base currency (a zero rate means 1).
type Transaction struct {
	ID         string
	Account    string
	Instrument string // empty for cash events
	Time       time.Time
	Kind       Kind
	Quantity   Quantity
	Price      Money
	Gross      Money
	Fee        Money
	Tax        Money // tax withheld
	FxRate     decimal.Decimal
	Memo       string
}

// NewBuy creates a buy of quantity units at price.
func NewBuy(id, account, instrument string, on time.Time, quantity Quantity, price, fee Money) Transaction {
	return Transaction{
		ID: id, Account: account, Instrument: instrument, Time: on, Kind: KindBuy,
		Quantity: quantity, Price: price, Gross: price.Mul(quantity), Fee: fee,
	}
}

// NewSell creates a sell of quantity units at price.
func NewSell(id, account, instrument string, on time.Time, quantity Quantity, price, fee Money) Transaction {
	return Transaction{
		ID: id, Account: account, Instrument: instrument, Time: on, Kind: KindSell,
		Quantity: quantity, Price: price, Gross: price.Mul(quantity), Fee: fee,
	}
}

// NewIncome creates a dividend or coupon payment.
func NewIncome(id, account, instrument string, on time.Time, kind Kind, amount, withheld Money) Transaction {
	return Transaction{
		ID: id, Account: account, Instrument: instrument, Time: on, Kind: kind,
		Gross: amount, Tax: withheld,
	}
}

// NewCash creates an instrument-less cash event: deposit, withdrawal, fee or tax.
func NewCash(id, account string, on time.Time, kind Kind, amount Money) Transaction {
	tx := Transaction{ID: id, Account: account, Time: on, Kind: kind, Gross: amount}
	switch kind {
	case KindFee:
		tx.Fee = amount
	case KindTax:
		tx.Tax = amount
	}
	return tx
}

// WithFxRate returns a copy of tx converted to the base currency at rate.
func (t Transaction) WithFxRate(rate decimal.Decimal) Transaction {
	t.FxRate = rate
	return t
}

// Key returns the position the transaction belongs to.
func (t Transaction) Key() Key { return Key{Account: t.Account, Instrument: t.Instrument} }

// Date returns the calendar day of the transaction.
func (t Transaction) Date() date.Date { return date.FromTime(t.Time) }

// Currency returns the transaction currency.
func (t Transaction) Currency() string {
	for _, m := range []Money{t.Gross, t.Price, t.Fee, t.Tax} {
		if m.cur != "" {
			return m.cur
		}
	}
	return ""
}

// Rate returns the conversion rate to the base currency, 1 when unset.
func (t Transaction) Rate() decimal.Decimal {
	if t.FxRate.IsZero() {
		return decimal.NewFromInt(1)
	}
	return t.FxRate
}

// Base converts an amount of this transaction into the base currency.
func (t Transaction) Base(m Money) Money { return m.Convert(t.Rate(), BaseCurrency) }

// Validate checks the transaction fields.
func (t Transaction) Validate() error {
	if t.Account == "" {
		return fmt.Errorf("%w: transaction %q has no account", ErrInvalidTransaction, t.ID)
	}
	if t.Time.IsZero() {
		return fmt.Errorf("%w: transaction %q has no timestamp", ErrInvalidTransaction, t.ID)
	}
	if !slices.Contains(Kinds, t.Kind) {
		return fmt.Errorf("%w: transaction %q has unknown kind %q", ErrInvalidTransaction, t.ID, t.Kind)
	}
	if t.FxRate.IsNegative() {
		return fmt.Errorf("%w: transaction %q has a negative fx rate %s", ErrInvalidTransaction, t.ID, t.FxRate)
	}
	if t.Fee.IsNegative() {
		return fmt.Errorf("%w: transaction %q has a negative fee %s", ErrInvalidTransaction, t.ID, t.Fee)
	}
	cur := t.Currency()
	for _, m := range []Money{t.Gross, t.Price, t.Fee, t.Tax} {
		if c := m.Currency(); c != "" && c != cur {
			return fmt.Errorf("%w: transaction %q mixes %s and %s amounts", ErrCurrencyMismatch, t.ID, cur, c)
		}
	}
	if !t.Kind.IsTrade() {
		return nil
	}
	if t.Instrument == "" {
		return fmt.Errorf("%w: %s %q has no instrument", ErrInvalidTransaction, t.Kind, t.ID)
	}
	if !t.Quantity.IsPositive() {
		return fmt.Errorf("%w: %s %q quantity must be positive, got %s", ErrInvalidTransaction, t.Kind, t.ID, t.Quantity)
	}
	if t.Price.IsNegative() || t.Gross.IsNegative() {
		return fmt.Errorf("%w: %s %q has a negative amount", ErrInvalidTransaction, t.Kind, t.ID)
	}
	return nil
}

// MarshalJSON writes the transaction as a flat object with a stable field order.
func (t Transaction) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", t.ID)
	w.Append("time", t.Time.Format(time.RFC3339))
	w.Append("kind", t.Kind)
	w.Append("account", t.Account)
	w.Optional("instrument", t.Instrument)
	w.Optional("quantity", t.Quantity.value)
	w.Optional("price", t.Price.value)
	w.Append("gross", t.Gross.value)
	w.Optional("fee", t.Fee.value)
	w.Optional("tax", t.Tax.value)
	w.Optional("currency", t.Currency())
	w.Optional("fxRate", t.FxRate)
	w.Optional("memo", t.Memo)
	return w.MarshalJSON()
}

// UnmarshalJSON reads the flat object written by MarshalJSON. The time field
// accepts RFC 3339 timestamps and plain dates.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	var temp struct {
		ID         string          `json:"id"`
		Time       string          `json:"time"`
		Kind       string          `json:"kind"`
		Account    string          `json:"account"`
		Instrument string          `json:"instrument"`
		Quantity   decimal.Decimal `json:"quantity"`
		Price      decimal.Decimal `json:"price"`
		Gross      decimal.Decimal `json:"gross"`
		Fee        decimal.Decimal `json:"fee"`
		Tax        decimal.Decimal `json:"tax"`
		Currency   string          `json:"currency"`
		FxRate     decimal.Decimal `json:"fxRate"`
		Memo       string          `json:"memo"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	kind, err := ParseKind(temp.Kind)
	if err != nil {
		return err
	}
	on, err := parseTimestamp(temp.Time)
	if err != nil {
		return err
	}
	*t = Transaction{
		ID:         temp.ID,
		Account:    temp.Account,
		Instrument: temp.Instrument,
		Time:       on,
		Kind:       kind,
		Quantity:   Q(temp.Quantity),
		Price:      M(temp.Price, temp.Currency),
		Gross:      M(temp.Gross, temp.Currency),
		Fee:        M(temp.Fee, temp.Currency),
		Tax:        M(temp.Tax, temp.Currency),
		FxRate:     temp.FxRate,
		Memo:       temp.Memo,
	}
	switch {
	case kind.IsTrade() && t.Gross.IsZero():
		t.Gross = t.Price.Mul(t.Quantity)
	case kind == KindFee && t.Fee.IsZero():
		t.Fee = t.Gross
	case kind == KindTax && t.Tax.IsZero():
		t.Tax = t.Gross
	}
	return nil
}

func parseTimestamp(s string) (time.Time, error) {
	if on, err := time.Parse(time.RFC3339, s); err == nil {
		return on, nil
	}
	d, err := date.Parse(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid time %q", ErrInvalidTransaction, s)
	}
	return d.Time(), nil
}
