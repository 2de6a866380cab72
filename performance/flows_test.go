package performance

import (
	"testing"
	"time"

	portfolio "github.com/etnz/rfportfolio"
	"github.com/etnz/rfportfolio/date"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlowsFromTransactions(t *testing.T) {
	at := func(d int) time.Time { return jan1.Add(d).Time() }
	txs := []portfolio.Transaction{
		portfolio.NewCash("d1", "a", at(0), portfolio.KindDeposit, portfolio.RUB(1000)),
		portfolio.NewBuy("b1", "a", "X", at(1), portfolio.Q(1), portfolio.RUB(900), portfolio.RUB(0)),
		portfolio.NewCash("d2", "a", at(2), portfolio.KindDeposit, portfolio.M(10, "USD")).WithFxRate(decimal.NewFromInt(90)),
		portfolio.NewCash("w1", "a", at(3), portfolio.KindWithdrawal, portfolio.RUB(300)),
	}
	flows := FlowsFromTransactions(txs)
	require.Len(t, flows, 3)
	assert.True(t, flows[0].Amount.Equal(decimal.NewFromInt(1000)))
	assert.True(t, flows[1].Amount.Equal(decimal.NewFromInt(900)))
	assert.True(t, flows[2].Amount.Equal(decimal.NewFromInt(-300)))
	assert.Equal(t, jan1.Add(3), flows[2].Date)
}

func TestInvestorFlows(t *testing.T) {
	flows := InvestorFlows([]CashFlow{flow(0, 1000)}, point(365, 1210))
	r, ok := XIRR(flows)
	require.True(t, ok)
	assert.InDelta(t, 21, float64(r), 0.05)
}

func TestNewPricePoints(t *testing.T) {
	points, err := NewPricePoints([]date.Date{jan1.Add(1), jan1}, []float64{2, 1})
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, jan1, points[0].Date)

	_, err = NewPricePoints([]date.Date{jan1}, nil)
	assert.Error(t, err)
}
