package performance

import (
	"fmt"
	"math"

	portfolio "github.com/etnz/rfportfolio"
)

// Measure is a metric that may be unavailable.
type Measure struct {
	Value float64
	OK    bool
}

func measure[T ~float64](v T, ok bool) Measure { return Measure{Value: float64(v), OK: ok} }

// Percent returns the measure as a percentage.
func (m Measure) Percent() portfolio.Percent { return portfolio.Percent(m.Value) }

func (m Measure) String() string {
	if !m.OK {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", m.Value)
}

// Horizon is a named TWR window.
type Horizon struct {
	Name string
	Days int
}

// Horizons are the TWR windows reported by Calculate.
var Horizons = []Horizon{
	{"1d", 1}, {"1w", 7}, {"1m", 30}, {"3m", 90}, {"6m", 180},
	{"1y", 365}, {"3y", 3 * 365}, {"5y", 5 * 365},
}

// Options parameterise Calculate.
type Options struct {
	RiskFreeRate portfolio.Percent
	TradingDays  int
}

// DefaultOptions returns the default risk free rate and trading days.
func DefaultOptions() Options {
	return Options{RiskFreeRate: DefaultRiskFreeRate, TradingDays: DefaultTradingDays}
}

// Metrics gathers every performance figure of a portfolio. Values are in
// percent except Sharpe.
type Metrics struct {
	TWR              map[string]Measure // by Horizon name
	TWRInception     Measure
	XIRR             Measure
	Volatility       Measure
	Sharpe           Measure
	MaxDrawdown      Measure
	TotalReturn      Measure
	AnnualizedReturn Measure
}

// Calculate computes all metrics from valuation points and external cash
// flows (deposits positive). XIRR is taken on the investor view of the flows
// ending with the last valuation. The Sharpe ratio uses the one year TWR.
func Calculate(points []PricePoint, flows []CashFlow, opts Options) Metrics {
	if opts.TradingDays <= 0 {
		opts.TradingDays = DefaultTradingDays
	}
	m := Metrics{TWR: make(map[string]Measure, len(Horizons))}
	for _, h := range Horizons {
		m.TWR[h.Name] = measure(TWR(points, flows, h.Days))
	}
	m.Volatility = measure(Volatility(points, opts.TradingDays))
	m.MaxDrawdown = measure(MaxDrawdown(points))
	if y := m.TWR["1y"]; y.OK && m.Volatility.OK {
		m.Sharpe = measure(SharpeRatio(y.Percent(), m.Volatility.Percent(), opts.RiskFreeRate))
	}

	if len(points) < 2 {
		return m
	}
	points = sortedPoints(points)
	first, last := points[0], points[len(points)-1]
	m.XIRR = measure(XIRR(InvestorFlows(flows, last)))
	if days := last.Date.DaysSince(first.Date); days > 0 {
		m.TWRInception = measure(TWR(points, flows, days))
	}
	initial := first.Value.InexactFloat64()
	if initial <= 0 {
		return m
	}
	total := last.Value.InexactFloat64()/initial - 1
	m.TotalReturn = Measure{Value: total * 100, OK: true}
	if days := last.Date.DaysSince(first.Date); days > 0 && total > -1 {
		years := float64(days) / 365.25
		m.AnnualizedReturn = Measure{Value: (math.Pow(1+total, 1/years) - 1) * 100, OK: true}
	}
	return m
}
