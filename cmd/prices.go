package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/PaesslerAG/jsonpath"
	portfolio "github.com/etnz/rfportfolio"
	"github.com/etnz/rfportfolio/performance"
)

// decodePrices reads current prices from a JSON document. path selects an
// object mapping instrument ids to prices, expressed in the instrument
// currency (the base currency for unknown instruments).
func decodePrices(r io.Reader, path string, instruments portfolio.Instruments) (map[string]portfolio.Money, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("error decoding prices: %w", err)
	}
	sel, err := jsonpath.Get(path, doc)
	if err != nil {
		return nil, fmt.Errorf("error selecting %q: %w", path, err)
	}
	obj, ok := sel.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%q does not select an object", path)
	}

	prices := make(map[string]portfolio.Money, len(obj))
	for id, v := range obj {
		d, err := performance.ParseValue(v)
		if err != nil {
			return nil, fmt.Errorf("price of %s: %w", id, err)
		}
		cur := portfolio.BaseCurrency
		if in, ok := instruments.Lookup(id); ok && in.Currency != "" {
			cur = in.Currency
		}
		prices[id] = portfolio.M(d, cur)
	}
	return prices, nil
}

// Prices loads the price file of the configuration, if any.
func (a *app) Prices(instruments portfolio.Instruments) (map[string]portfolio.Money, error) {
	if a.cfg.Prices == "" {
		return nil, nil
	}
	f, err := os.Open(a.cfg.Prices)
	if err != nil {
		return nil, fmt.Errorf("opening prices: %w", err)
	}
	defer f.Close()
	prices, err := decodePrices(f, a.cfg.PricesPath, instruments)
	if err != nil {
		return nil, fmt.Errorf("decoding prices %q: %w", a.cfg.Prices, err)
	}
	return prices, nil
}
