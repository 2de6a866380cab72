package allocation

import (
	"testing"
	"time"

	portfolio "github.com/etnz/rfportfolio"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var instruments = portfolio.Instruments{
	"SBER": {ID: "SBER", Type: portfolio.Stock, Sector: "Financials", Country: "RU", Currency: "RUB"},
	"GAZP": {ID: "GAZP", Type: portfolio.Stock, Sector: "Energy", Country: "RU", Currency: "RUB"},
	"OFZ":  {ID: "OFZ", Type: portfolio.Bond, Country: "RU", Currency: "RUB"},
}

func book(t *testing.T) *portfolio.Book {
	t.Helper()
	on := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)
	b, err := portfolio.Replay([]portfolio.Transaction{
		portfolio.NewBuy("1", "a", "SBER", on, portfolio.Q(10), portfolio.RUB(100), portfolio.RUB(0)),
		portfolio.NewBuy("2", "b", "SBER", on, portfolio.Q(10), portfolio.RUB(100), portfolio.RUB(0)),
		portfolio.NewBuy("3", "a", "GAZP", on, portfolio.Q(10), portfolio.RUB(100), portfolio.RUB(0)),
		portfolio.NewBuy("4", "a", "OFZ", on, portfolio.Q(1), portfolio.RUB(1000), portfolio.RUB(0)),
		portfolio.NewBuy("5", "a", "XYZ", on, portfolio.Q(1), portfolio.RUB(1000), portfolio.RUB(0)),
	})
	require.NoError(t, err)
	return b
}

func TestAggregate(t *testing.T) {
	prices := map[string]portfolio.Money{"SBER": portfolio.RUB(150)}
	items := Items(book(t).Holdings(), instruments, prices)
	require.Len(t, items, 4)

	b := Aggregate(items)
	// SBER 3000, GAZP 1000, OFZ 1000, XYZ 1000 at cost
	assert.True(t, b.Total.Equal(decimal.NewFromInt(6000)))

	require.Len(t, b.ByClass, 3)
	assert.Equal(t, "stock", b.ByClass[0].Name)
	assert.InDelta(t, 66.67, float64(b.ByClass[0].Percent), 1e-9)
	assert.InDelta(t, 16.67, float64(Get(b.ByClass, "bond").Percent), 1e-9)
	assert.InDelta(t, 16.67, float64(Get(b.ByClass, Unknown).Percent), 1e-9)

	assert.InDelta(t, 50, float64(Get(b.BySector, "Financials").Percent), 1e-9)
	assert.InDelta(t, 33.33, float64(Get(b.BySector, Unknown).Percent), 1e-9)
	assert.InDelta(t, 83.33, float64(Get(b.ByCountry, "RU").Percent), 1e-9)
	assert.InDelta(t, 100, float64(Get(b.ByCurrency, "RUB").Percent), 1e-9)

	assert.Equal(t, Breakdown{}, Aggregate(nil))
}

func TestDrift(t *testing.T) {
	items := []Item{
		{Instrument: "A", Class: "stock", Value: decimal.NewFromInt(7000)},
		{Instrument: "B", Class: "bond", Value: decimal.NewFromInt(2800)},
		{Instrument: "C", Class: "currency", Value: decimal.NewFromInt(200)},
	}
	b := Aggregate(items)
	targets := map[string]portfolio.Percent{"stock": 60, "bond": 25, "currency": 10, "commodity": 5}

	devs := Drift(b.ByClass, b.Total, targets, 0)
	require.Len(t, devs, 2)

	assert.Equal(t, "stock", devs[0].Name)
	assert.Equal(t, Sell, devs[0].Action)
	assert.InDelta(t, 10, float64(devs[0].Deviation), 1e-9)
	assert.True(t, devs[0].Amount.Equal(decimal.NewFromInt(1000)))

	// commodity is not held, but 5 points is exactly the threshold
	assert.Equal(t, "currency", devs[1].Name)
	assert.Equal(t, Buy, devs[1].Action)
	assert.True(t, devs[1].Amount.Equal(decimal.NewFromInt(800)))

	assert.Empty(t, Drift(b.ByClass, b.Total, targets, 15))
}
