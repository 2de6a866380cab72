package cmd

import (
	"strings"
	"testing"

	portfolio "github.com/etnz/rfportfolio"
)

func TestDecodePrices(t *testing.T) {
	instruments := portfolio.Instruments{"AAPL": {ID: "AAPL", Type: portfolio.Stock, Currency: "USD"}}
	doc := `{"prices": {"AAPL": 210.15, "SBER": "310.000000000000000001"}}`

	prices, err := decodePrices(strings.NewReader(doc), "$.prices", instruments)
	if err != nil {
		t.Fatalf("decodePrices() error = %v", err)
	}
	if got, want := prices["AAPL"], portfolio.M(210.15, "USD"); !got.Equal(want) {
		t.Errorf("AAPL = %v, want %v", got, want)
	}
	sber := prices["SBER"]
	if sber.Currency() != portfolio.BaseCurrency || sber.Decimal().String() != "310.000000000000000001" {
		t.Errorf("SBER = %s %s, want the exact value in the base currency", sber.Decimal(), sber.Currency())
	}

	for _, bad := range []string{`{"prices": [1]}`, `{"prices": {"X": true}}`, `nope`} {
		if _, err := decodePrices(strings.NewReader(bad), "$.prices", instruments); err == nil {
			t.Errorf("decodePrices(%s) should fail", bad)
		}
	}
}
