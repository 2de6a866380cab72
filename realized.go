package portfolio

import (
	"time"

	"github.com/etnz/rfportfolio/date"
	"github.com/shopspring/decimal"
)

// RealizedEvent records the closing of (part of) a lot by a sell.
//
// Gain is gross of fees; Fees holds the pro-rated sell fee plus the consumed
// share of the purchase fee.
type RealizedEvent struct {
	Account            string
	Instrument         string
	Quantity           Quantity
	Proceeds           Money
	CostBasis          Money
	Gain               Money
	Fees               Money
	Opened             time.Time
	Closed             time.Time
	OpenTransactionID  string
	CloseTransactionID string
	OpenFxRate         decimal.Decimal
	CloseFxRate        decimal.Decimal
}

// NetGain returns the gain after fees.
func (e RealizedEvent) NetGain() Money { return e.Gain.Sub(e.Fees) }

// HoldingYears returns the number of full years the lot was held.
func (e RealizedEvent) HoldingYears() int {
	return date.FromTime(e.Closed).FullYearsSince(date.FromTime(e.Opened))
}

// BaseGain returns the gain in the base currency, converting proceeds at the
// closing rate and cost at the opening rate.
func (e RealizedEvent) BaseGain() Money {
	return e.Proceeds.Convert(e.CloseFxRate, BaseCurrency).Sub(e.CostBasis.Convert(e.OpenFxRate, BaseCurrency))
}

// BaseFees returns the fees in the base currency at the closing rate.
func (e RealizedEvent) BaseFees() Money { return e.Fees.Convert(e.CloseFxRate, BaseCurrency) }
