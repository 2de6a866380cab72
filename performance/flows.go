package performance

import (
	"fmt"

	portfolio "github.com/etnz/rfportfolio"
	"github.com/etnz/rfportfolio/date"
)

// FlowsFromTransactions extracts external cash flows, in the base currency,
// from deposits (positive) and withdrawals (negative). Other kinds move value
// inside the portfolio and are ignored.
func FlowsFromTransactions(txs []portfolio.Transaction) []CashFlow {
	var flows []CashFlow
	for _, tx := range txs {
		amount := tx.Base(tx.Gross).Decimal()
		switch tx.Kind {
		case portfolio.KindDeposit:
		case portfolio.KindWithdrawal:
			amount = amount.Neg()
		default:
			continue
		}
		desc := string(tx.Kind)
		if tx.Memo != "" {
			desc = fmt.Sprintf("%s: %s", tx.Kind, tx.Memo)
		}
		flows = append(flows, CashFlow{Date: tx.Date(), Amount: amount, Description: desc})
	}
	return flows
}

// InvestorFlows turns portfolio flows into the investor's view used by XIRR:
// money put in is negative, money taken out positive, and the final value
// is received on the last day.
func InvestorFlows(flows []CashFlow, final PricePoint) []CashFlow {
	out := make([]CashFlow, 0, len(flows)+1)
	for _, f := range flows {
		f.Amount = f.Amount.Neg()
		out = append(out, f)
	}
	return append(out, CashFlow{Date: final.Date, Amount: final.Value, Description: "final value"})
}

// NewPricePoints zips dates and values.
func NewPricePoints(days []date.Date, values []float64) ([]PricePoint, error) {
	if len(days) != len(values) {
		return nil, fmt.Errorf("got %d dates and %d values", len(days), len(values))
	}
	var h date.History[float64]
	for i, d := range days {
		h.Append(d, values[i])
	}
	return FromHistory(&h), nil
}
