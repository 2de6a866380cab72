// Package tax computes the yearly Russian personal income tax (NDFL) due on
// investment income: realized gains, dividends and coupons, after the long
// term holding exemption (LDV), the IIS type A deduction and the carryover of
// prior losses.
package tax

import (
	portfolio "github.com/etnz/rfportfolio"
	"github.com/etnz/rfportfolio/date"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Regime is the tax regime of a brokerage account.
type Regime string

const (
	Regular Regime = "regular"
	IISA    Regime = "iis_a" // contribution deduction
	IISB    Regime = "iis_b" // exit gain exemption
)

// Portfolio groups accounts under one tax regime.
type Portfolio struct {
	ID           string   `yaml:"id"`
	Name         string   `yaml:"name"`
	BaseCurrency string   `yaml:"base_currency"`
	Regime       Regime   `yaml:"regime"`
	Accounts     []string `yaml:"accounts"`
}

// Classifier looks up instrument metadata.
type Classifier interface {
	Lookup(id string) (portfolio.Instrument, bool)
}

// Fallback is the security type assumed for instruments the classifier does
// not know: ordinary FIFO gains, never LDV eligible.
const Fallback = portfolio.ETF

// Rates holds the statutory rates and caps. Amounts are in roubles.
type Rates struct {
	Resident            decimal.Decimal
	NonResident         decimal.Decimal
	LDVAnnualCap        decimal.Decimal
	LDVMinYears         int
	IISMaxAnnualDeposit decimal.Decimal
	IISMaxDeduction     decimal.Decimal
	IISAnnualRefundCap  decimal.Decimal
	LossCarryoverYears  int
}

// DefaultRates returns the rates in force.
func DefaultRates() Rates {
	return Rates{
		Resident:            decimal.RequireFromString("0.13"),
		NonResident:         decimal.RequireFromString("0.30"),
		LDVAnnualCap:        decimal.NewFromInt(3_000_000),
		LDVMinYears:         3,
		IISMaxAnnualDeposit: decimal.NewFromInt(1_000_000),
		IISMaxDeduction:     decimal.NewFromInt(400_000),
		IISAnnualRefundCap:  decimal.NewFromInt(52_000),
		LossCarryoverYears:  10,
	}
}

// Config parameterises a Calculator.
type Config struct {
	NonResident bool
	// Rates defaults to DefaultRates when its resident rate is zero.
	Rates      Rates
	Classifier Classifier
	// AsOf is the day recommendations are computed for, 31 December of the
	// tax year by default.
	AsOf date.Date
	// Prices are current prices by instrument, used for unrealized gains.
	Prices map[string]portfolio.Money
	// PriorLosses are losses declared for years outside the history, by year.
	PriorLosses map[int]decimal.Decimal
	// LimitIISRefund additionally bounds the yearly IIS type A refund by the
	// tax paid on the annual income given to OptimalIISStrategy.
	LimitIISRefund bool
	// Logger defaults to a disabled logger.
	Logger *zerolog.Logger
}

// Position is an open position at the end of the tax year.
type Position struct {
	Account       string
	Instrument    string
	Type          portfolio.InstrumentType
	Regime        Regime
	Quantity      portfolio.Quantity
	AveragePrice  portfolio.Money
	Acquired      date.Date // oldest open lot
	CurrentPrice  portfolio.Money
	UnrealizedPnL portfolio.Money
	HasPrice      bool
}

// Result is the outcome of a tax calculation. Amounts are in roubles.
type Result struct {
	Year int
	Rate decimal.Decimal

	TotalIncome   portfolio.Money
	TotalExpenses portfolio.Money
	TaxableIncome portfolio.Money

	LDVExemption           portfolio.Money
	IISDeduction           portfolio.Money
	LossCarryover          portfolio.Money // applied this year
	LossCarryoverAvailable portfolio.Money // before this year
	CurrentYearLoss        portfolio.Money // carried to next years

	NDFLBase    portfolio.Money
	NDFLAmount  portfolio.Money
	WithheldTax portfolio.Money
	TaxDue      portfolio.Money

	StockPnL       portfolio.Money
	BondPnL        portfolio.Money
	DividendIncome portfolio.Money
	CouponIncome   portfolio.Money
	PnLByType      map[portfolio.InstrumentType]portfolio.Money

	Positions       []Position
	Recommendations []Recommendation
	Unclassified    []string
}
