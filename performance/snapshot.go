package performance

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/rfportfolio/date"
	"github.com/shopspring/decimal"
)

// FromHistory converts a value history into price points, oldest first.
func FromHistory(h *date.History[float64]) []PricePoint {
	points := make([]PricePoint, 0, h.Len())
	for day, v := range h.Values() {
		points = append(points, PricePoint{Date: day, Value: decimal.NewFromFloat(v)})
	}
	return points
}

// DecodePricePoints reads a JSON document and selects valuation points with
// a JSONPath expression. The selection is either a list of objects with
// "date" and "value" fields, or an object mapping dates to values. Values are
// read as exact decimals. Points are returned sorted; a later duplicate day
// wins.
func DecodePricePoints(r io.Reader, path string) ([]PricePoint, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("error decoding snapshots: %w", err)
	}
	sel, err := jsonpath.Get(path, doc)
	if err != nil {
		return nil, fmt.Errorf("error selecting %q: %w", path, err)
	}

	values := make(map[date.Date]decimal.Decimal)
	add := func(day any, value any) error {
		s, ok := day.(string)
		if !ok {
			return fmt.Errorf("date is not a string: %v", day)
		}
		d, err := date.Parse(s)
		if err != nil {
			return err
		}
		v, err := ParseValue(value)
		if err != nil {
			return fmt.Errorf("%s: %w", s, err)
		}
		values[d] = v
		return nil
	}

	switch sel := sel.(type) {
	case []any:
		for i, item := range sel {
			obj, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("snapshot %d is not an object", i)
			}
			if err := add(obj["date"], obj["value"]); err != nil {
				return nil, fmt.Errorf("snapshot %d: %w", i, err)
			}
		}
	case map[string]any:
		for day, value := range sel {
			if err := add(day, value); err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("%q selects neither a list nor an object", path)
	}

	points := make([]PricePoint, 0, len(values))
	for day, v := range values {
		points = append(points, PricePoint{Date: day, Value: v})
	}
	return sortedPoints(points), nil
}

// ParseValue reads a decoded JSON number or numeric string as a decimal.
func ParseValue(v any) (decimal.Decimal, error) {
	switch v := v.(type) {
	case json.Number:
		return decimal.NewFromString(v.String())
	case float64:
		return decimal.NewFromFloat(v), nil
	case string:
		return decimal.NewFromString(v)
	default:
		return decimal.Decimal{}, fmt.Errorf("value is not a number: %v", v)
	}
}
