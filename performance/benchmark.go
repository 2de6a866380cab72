package performance

import (
	"math"

	"github.com/etnz/rfportfolio/date"
)

// Comparison compares a portfolio with a benchmark over their common days.
// Alpha, excess return and tracking error are annualised percentages.
type Comparison struct {
	Days          int
	Correlation   Measure
	Beta          Measure
	Alpha         Measure
	ExcessReturn  Measure
	TrackingError Measure
}

// CompareWithBenchmark aligns both series on common dates and compares their
// day over day returns. It is unavailable with fewer than two common returns.
func CompareWithBenchmark(portfolio, benchmark []PricePoint, tradingDays int) (Comparison, bool) {
	if tradingDays <= 0 {
		tradingDays = DefaultTradingDays
	}
	byDay := make(map[date.Date]PricePoint, len(benchmark))
	for _, p := range benchmark {
		byDay[p.Date] = p
	}
	var pp, bp []PricePoint
	for _, p := range sortedPoints(portfolio) {
		if b, ok := byDay[p.Date]; ok {
			pp = append(pp, p)
			bp = append(bp, b)
		}
	}

	var pr, br []float64
	for i := 1; i < len(pp); i++ {
		p0, b0 := pp[i-1].Value.InexactFloat64(), bp[i-1].Value.InexactFloat64()
		if p0 <= 0 || b0 <= 0 {
			continue
		}
		pr = append(pr, pp[i].Value.InexactFloat64()/p0-1)
		br = append(br, bp[i].Value.InexactFloat64()/b0-1)
	}
	if len(pr) < 2 {
		return Comparison{}, false
	}

	annual := float64(tradingDays)
	c := Comparison{Days: len(pr)}
	cov := covariance(pr, br)
	sp, sb := stddev(pr), stddev(br)
	if sp > 0 && sb > 0 {
		c.Correlation = Measure{Value: cov / (sp * sb), OK: true}
	}
	mp, mb := mean(pr), mean(br)
	if varB := sb * sb; varB != 0 {
		beta := cov / varB
		c.Beta = Measure{Value: beta, OK: true}
		c.Alpha = Measure{Value: (mp - beta*mb) * annual * 100, OK: true}
	}
	c.ExcessReturn = Measure{Value: (mp - mb) * annual * 100, OK: true}

	diff := make([]float64, len(pr))
	for i := range pr {
		diff[i] = pr[i] - br[i]
	}
	c.TrackingError = Measure{Value: stddev(diff) * math.Sqrt(annual) * 100, OK: true}
	return c, true
}
