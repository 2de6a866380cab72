package allocation

import (
	"cmp"
	"maps"
	"math"
	"slices"

	portfolio "github.com/etnz/rfportfolio"
	"github.com/shopspring/decimal"
)

// DefaultThreshold is the drift, in percentage points, that calls for
// rebalancing.
const DefaultThreshold portfolio.Percent = 5

// Action to bring a group back to its target.
type Action string

const (
	Buy  Action = "buy"
	Sell Action = "sell"
)

// Deviation is a group whose weight drifted from its target.
type Deviation struct {
	Name      string
	Current   portfolio.Percent
	Target    portfolio.Percent
	Deviation portfolio.Percent // current - target
	Action    Action
	Amount    decimal.Decimal // value to trade
}

// Drift compares weights with targets (in percent, by group name) and returns
// the groups deviating by more than threshold, largest deviation first.
// Groups held without a target are ignored. A non positive threshold means
// DefaultThreshold.
func Drift(ws []Weight, total decimal.Decimal, targets map[string]portfolio.Percent, threshold portfolio.Percent) []Deviation {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	var out []Deviation
	for _, name := range slices.Sorted(maps.Keys(targets)) {
		target := targets[name]
		w := Get(ws, name)
		dev := w.Percent - target
		if math.Abs(float64(dev)) <= float64(threshold) {
			continue
		}
		goal := total.Mul(decimal.NewFromFloat(float64(target))).Div(decimal.NewFromInt(100))
		d := Deviation{Name: name, Current: w.Percent, Target: target, Deviation: dev, Action: Buy, Amount: goal.Sub(w.Value)}
		if dev > 0 {
			d.Action = Sell
			d.Amount = w.Value.Sub(goal)
		}
		out = append(out, d)
	}
	slices.SortStableFunc(out, func(a, b Deviation) int {
		return cmp.Compare(math.Abs(float64(b.Deviation)), math.Abs(float64(a.Deviation)))
	})
	return out
}
