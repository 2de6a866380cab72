// Package allocation aggregates holdings by asset class, sector, country and
// currency, and compares the result with target weights.
package allocation

import (
	"cmp"
	"slices"

	portfolio "github.com/etnz/rfportfolio"
	"github.com/shopspring/decimal"
)

// Unknown labels holdings with a missing attribute.
const Unknown = "unknown"

// Item is a valued holding.
type Item struct {
	Instrument string
	Class      string
	Sector     string
	Country    string
	Currency   string
	Value      decimal.Decimal
}

// Lookup finds instrument metadata. portfolio.Instruments implements it.
type Lookup interface {
	Lookup(id string) (portfolio.Instrument, bool)
}

// Items values holdings at prices, or at cost for instruments without a
// price. Holdings of the same instrument in several accounts are merged.
func Items(holdings []portfolio.Holding, instruments Lookup, prices map[string]portfolio.Money) []Item {
	byID := make(map[string]*Item)
	var order []string
	for _, h := range holdings {
		it, ok := byID[h.Instrument]
		if !ok {
			in, _ := instruments.Lookup(h.Instrument)
			it = &Item{
				Instrument: h.Instrument,
				Class:      cmp.Or(string(in.Type), Unknown),
				Sector:     cmp.Or(in.Sector, Unknown),
				Country:    cmp.Or(in.Country, Unknown),
				Currency:   cmp.Or(in.Currency, h.CostBasis.Currency(), Unknown),
			}
			byID[h.Instrument] = it
			order = append(order, h.Instrument)
		}
		value := h.CostBasis
		if price, ok := prices[h.Instrument]; ok {
			value = price.Mul(h.Quantity)
		}
		it.Value = it.Value.Add(value.Decimal())
	}
	items := make([]Item, 0, len(order))
	for _, id := range order {
		items = append(items, *byID[id])
	}
	return items
}

// Weight is the share of one group in the total.
type Weight struct {
	Name    string
	Value   decimal.Decimal
	Percent portfolio.Percent // rounded to 2 decimals
}

// Breakdown is the allocation along each dimension, largest weight first.
type Breakdown struct {
	Total      decimal.Decimal
	ByClass    []Weight
	BySector   []Weight
	ByCountry  []Weight
	ByCurrency []Weight
}

// Aggregate computes the breakdown of items. It is empty when the total
// value is not positive.
func Aggregate(items []Item) Breakdown {
	var b Breakdown
	for _, it := range items {
		b.Total = b.Total.Add(it.Value)
	}
	if !b.Total.IsPositive() {
		return Breakdown{}
	}
	b.ByClass = weights(items, b.Total, func(it Item) string { return it.Class })
	b.BySector = weights(items, b.Total, func(it Item) string { return it.Sector })
	b.ByCountry = weights(items, b.Total, func(it Item) string { return it.Country })
	b.ByCurrency = weights(items, b.Total, func(it Item) string { return it.Currency })
	return b
}

func weights(items []Item, total decimal.Decimal, key func(Item) string) []Weight {
	sums := make(map[string]decimal.Decimal)
	for _, it := range items {
		sums[key(it)] = sums[key(it)].Add(it.Value)
	}
	out := make([]Weight, 0, len(sums))
	for name, v := range sums {
		pct := v.Div(total).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
		out = append(out, Weight{Name: name, Value: v, Percent: portfolio.Percent(pct)})
	}
	slices.SortFunc(out, func(a, b Weight) int {
		return cmp.Or(b.Value.Cmp(a.Value), cmp.Compare(a.Name, b.Name))
	})
	return out
}

// Get returns the weight of name, zero when absent.
func Get(ws []Weight, name string) Weight {
	if i := slices.IndexFunc(ws, func(w Weight) bool { return w.Name == name }); i >= 0 {
		return ws[i]
	}
	return Weight{Name: name}
}
