package tax

import (
	portfolio "github.com/etnz/rfportfolio"
	"github.com/shopspring/decimal"
)

// iisDeduction sums, over IIS type A portfolios, the year's deposits capped by
// the annual deposit ceiling and by the maximum deduction.
func (c *Calculator) iisDeduction(yd *yearly, portfolios []Portfolio) decimal.Decimal {
	r := c.cfg.Rates
	total := decimal.Zero
	for _, p := range portfolios {
		if p.Regime != IISA {
			continue
		}
		deposits := decimal.Zero
		for _, a := range p.Accounts {
			deposits = deposits.Add(yd.deposits[a])
		}
		deposits = decimal.Min(deposits, r.IISMaxAnnualDeposit)
		total = total.Add(decimal.Max(decimal.Min(deposits, r.IISMaxDeduction), decimal.Zero))
	}
	return total
}

// DefaultIISContribution is the annual contribution assumed by
// OptimalIISStrategy when none is given.
var DefaultIISContribution = decimal.NewFromInt(400_000)

// IISComparison compares both IIS types over an investment horizon.
type IISComparison struct {
	Years          int
	Contribution   portfolio.Money // per year
	Invested       portfolio.Money
	FinalValue     portfolio.Money
	TypeADeduction portfolio.Money // total refunds
	TypeANDFL      portfolio.Money // due on the profit at withdrawal
	TypeANet       portfolio.Money
	TypeBNDFL      portfolio.Money
	TypeBNet       portfolio.Money
	Optimal        Regime
	Advantage      portfolio.Money
}

// OptimalIISStrategy projects a constant yearly contribution compounded at
// expectedReturn (a ratio) over years and compares IIS type A (yearly refund
// of 13% of the contribution within the annual refund cap, then NDFL on the
// profit) with type B (no refund, tax free profit). annualIncome only bounds
// the refund when Config.LimitIISRefund is set.
func (c *Calculator) OptimalIISStrategy(annualIncome, expectedReturn decimal.Decimal, years int, contribution decimal.Decimal) IISComparison {
	r := c.cfg.Rates
	if !contribution.IsPositive() {
		contribution = DefaultIISContribution
	}
	n := decimal.NewFromInt(int64(max(years, 0)))

	refund := decimal.Min(contribution.Mul(r.Resident), r.IISAnnualRefundCap)
	if c.cfg.LimitIISRefund {
		refund = decimal.Min(refund, decimal.Max(annualIncome.Mul(r.Resident), decimal.Zero))
	}
	deductions := refund.Mul(n)

	invested := contribution.Mul(n)
	value := invested.Mul(compound(expectedReturn, years))
	profit := decimal.Max(value.Sub(invested), decimal.Zero)
	ndflA := profit.Mul(r.Resident)
	netA := value.Add(deductions).Sub(ndflA)
	netB := value

	rub := portfolio.RUB[decimal.Decimal]
	cmp := IISComparison{
		Years:          years,
		Contribution:   rub(contribution),
		Invested:       rub(invested),
		FinalValue:     rub(value),
		TypeADeduction: rub(deductions),
		TypeANDFL:      rub(ndflA),
		TypeANet:       rub(netA),
		TypeBNDFL:      rub(decimal.Zero),
		TypeBNet:       rub(netB),
		Optimal:        IISB,
		Advantage:      rub(netA.Sub(netB).Abs()),
	}
	if netA.GreaterThan(netB) {
		cmp.Optimal = IISA
	}
	return cmp
}

// compound returns (1+rate)^years.
func compound(rate decimal.Decimal, years int) decimal.Decimal {
	growth := decimal.NewFromInt(1)
	for range years {
		growth = growth.Mul(decimal.NewFromInt(1).Add(rate))
	}
	return growth
}
