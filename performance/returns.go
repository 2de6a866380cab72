// Package performance computes portfolio returns and risk metrics from
// valuation snapshots and external cash flows.
//
// Every function is pure. Missing or degenerate data is not an error: the
// result is reported as unavailable (ok == false).
package performance

import (
	"math"
	"slices"

	portfolio "github.com/etnz/rfportfolio"
	"github.com/etnz/rfportfolio/date"
	"github.com/shopspring/decimal"
)

const (
	// DefaultTradingDays is used to annualise daily volatility.
	DefaultTradingDays = 252
	// DefaultRiskFreeRate is the annual risk free rate used by the Sharpe ratio.
	DefaultRiskFreeRate portfolio.Percent = 4
)

// CashFlow is an external flow of capital. Positive amounts enter the
// portfolio, negative amounts leave it.
type CashFlow struct {
	Date        date.Date
	Amount      decimal.Decimal
	Description string
}

// PricePoint is the value of a portfolio (or benchmark) on a day.
type PricePoint struct {
	Date  date.Date
	Value decimal.Decimal
}

func sortedPoints(points []PricePoint) []PricePoint {
	points = slices.Clone(points)
	slices.SortStableFunc(points, func(a, b PricePoint) int { return a.Date.Compare(b.Date) })
	return points
}

func sortedFlows(flows []CashFlow) []CashFlow {
	flows = slices.Clone(flows)
	slices.SortStableFunc(flows, func(a, b CashFlow) int { return a.Date.Compare(b.Date) })
	return flows
}

// TWR returns the time weighted return over the last periodDays of points.
//
// Each pair of consecutive points is a sub-period returning
// next / (current + flows in (current, next]); sub-period returns are chained.
// Periods longer than a year are annualised. The result is unavailable with
// fewer than two points in the window or when an adjusted base is not
// positive.
func TWR(points []PricePoint, flows []CashFlow, periodDays int) (portfolio.Percent, bool) {
	if len(points) < 2 || periodDays <= 0 {
		return 0, false
	}
	points = sortedPoints(points)
	flows = sortedFlows(flows)

	end := points[len(points)-1].Date
	start := end.Add(-periodDays)
	i := slices.IndexFunc(points, func(p PricePoint) bool { return !p.Date.Before(start) })
	window := points[i:]
	if len(window) < 2 {
		return 0, false
	}

	growth := 1.0
	for i := 0; i < len(window)-1; i++ {
		current, next := window[i], window[i+1]
		base := current.Value
		for _, f := range flows {
			if f.Date.After(current.Date) && !f.Date.After(next.Date) {
				base = base.Add(f.Amount)
			}
		}
		if !base.IsPositive() {
			return 0, false
		}
		growth *= next.Value.Div(base).InexactFloat64()
	}
	r := growth - 1
	if periodDays > 365 {
		r = math.Pow(growth, 365/float64(periodDays)) - 1
	}
	return portfolio.Percent(r * 100), true
}

// XIRR returns the annual rate r solving Σ amount / (1+r)^(days/365.25) = 0,
// days counted from the first flow. Newton iterations start at 10%; a
// bisection over [-99.99%, 1000%] takes over when Newton does not converge.
// Results outside [-100%, 1000%] are unavailable.
func XIRR(flows []CashFlow) (portfolio.Percent, bool) {
	if len(flows) < 2 {
		return 0, false
	}
	flows = sortedFlows(flows)
	first := flows[0].Date
	amounts := make([]float64, len(flows))
	years := make([]float64, len(flows))
	var pos, neg bool
	for i, f := range flows {
		amounts[i] = f.Amount.InexactFloat64()
		years[i] = float64(f.Date.DaysSince(first)) / 365.25
		pos = pos || amounts[i] > 0
		neg = neg || amounts[i] < 0
	}
	if !pos || !neg {
		return 0, false
	}

	npv := func(r float64) float64 {
		var sum float64
		for i, a := range amounts {
			sum += a / math.Pow(1+r, years[i])
		}
		return sum
	}
	dnpv := func(r float64) float64 {
		var sum float64
		for i, a := range amounts {
			sum -= years[i] * a / math.Pow(1+r, years[i]+1)
		}
		return sum
	}

	r, ok := newton(npv, dnpv, 0.1)
	if !ok {
		r, ok = bisect(npv, -0.9999, 10)
	}
	if !ok || r < -1 || r > 10 {
		return 0, false
	}
	return portfolio.Percent(r * 100), true
}

const (
	maxIterations = 100
	tolerance     = 1e-9
)

func newton(f, df func(float64) float64, guess float64) (float64, bool) {
	r := guess
	for range maxIterations {
		d := df(r)
		if d == 0 || math.IsNaN(d) {
			return 0, false
		}
		next := r - f(r)/d
		if math.IsNaN(next) || math.IsInf(next, 0) || next <= -1 {
			return 0, false
		}
		if math.Abs(next-r) < tolerance {
			return next, true
		}
		r = next
	}
	return 0, false
}

func bisect(f func(float64) float64, lo, hi float64) (float64, bool) {
	flo, fhi := f(lo), f(hi)
	if math.IsNaN(flo) || math.IsNaN(fhi) || flo*fhi > 0 {
		return 0, false
	}
	for range maxIterations {
		mid := (lo + hi) / 2
		fmid := f(mid)
		if math.Abs(fmid) < tolerance || (hi-lo)/2 < tolerance {
			return mid, true
		}
		if flo*fmid < 0 {
			hi = mid
		} else {
			lo, flo = mid, fmid
		}
	}
	return 0, false
}

// simpleReturns returns the day over day returns of sorted points, skipping
// periods starting at a non positive value.
func simpleReturns(points []PricePoint) []float64 {
	var returns []float64
	for i := 1; i < len(points); i++ {
		prev := points[i-1].Value.InexactFloat64()
		if prev <= 0 {
			continue
		}
		returns = append(returns, (points[i].Value.InexactFloat64()-prev)/prev)
	}
	return returns
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// covariance is the sample covariance of two series of the same length.
func covariance(xs, ys []float64) float64 {
	mx, my := mean(xs), mean(ys)
	var sum float64
	for i := range xs {
		sum += (xs[i] - mx) * (ys[i] - my)
	}
	return sum / float64(len(xs)-1)
}

func stddev(xs []float64) float64 { return math.Sqrt(covariance(xs, xs)) }

// Volatility returns the sample standard deviation of simple returns
// annualised by sqrt(tradingDays).
func Volatility(points []PricePoint, tradingDays int) (portfolio.Percent, bool) {
	if len(points) < 2 {
		return 0, false
	}
	returns := simpleReturns(sortedPoints(points))
	if len(returns) < 2 {
		return 0, false
	}
	return portfolio.Percent(stddev(returns) * math.Sqrt(float64(tradingDays)) * 100), true
}

// SharpeRatio returns (ret - riskFree) / volatility, all in percent.
func SharpeRatio(ret, volatility, riskFree portfolio.Percent) (float64, bool) {
	if volatility <= 0 {
		return 0, false
	}
	return float64(ret-riskFree) / float64(volatility), true
}

// MaxDrawdown returns the largest relative decline from a running peak.
func MaxDrawdown(points []PricePoint) (portfolio.Percent, bool) {
	if len(points) < 2 {
		return 0, false
	}
	points = sortedPoints(points)
	peak := points[0].Value.InexactFloat64()
	var worst float64
	for _, p := range points[1:] {
		v := p.Value.InexactFloat64()
		if v > peak {
			peak = v
		}
		if peak <= 0 {
			continue
		}
		if dd := (peak - v) / peak; dd > worst {
			worst = dd
		}
	}
	return portfolio.Percent(worst * 100), true
}
