package renderer

import (
	"fmt"
	"strings"

	portfolio "github.com/etnz/rfportfolio"
	"github.com/etnz/rfportfolio/date"
)

// RealizedMarkdown renders realized gains closed during year, or every year
// when year is zero. Amounts are converted to the base currency.
func RealizedMarkdown(events []portfolio.RealizedEvent, year int) string {
	var b strings.Builder
	if year == 0 {
		fmt.Fprint(&b, "# Realized Gains\n\n")
	} else {
		fmt.Fprintf(&b, "# Realized Gains in %d\n\n", year)
	}

	fmt.Fprintln(&b, "| Closed | Account | Instrument | Quantity | Proceeds | Cost Basis | Gain | Fees | Held |")
	fmt.Fprintln(&b, "|:---|:---|:---|---:|---:|---:|---:|---:|---:|")

	gain, fees := portfolio.RUB(0), portfolio.RUB(0)
	for _, e := range events {
		closed := date.FromTime(e.Closed)
		if year != 0 && closed.Year() != year {
			continue
		}
		g, f := e.BaseGain(), e.BaseFees()
		gain, fees = gain.Add(g), fees.Add(f)
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s | %dy |\n",
			closed,
			e.Account,
			e.Instrument,
			e.Quantity,
			e.Proceeds,
			e.CostBasis,
			g.SignedString(),
			f,
			e.HoldingYears(),
		)
	}
	fmt.Fprintf(&b, "| **%s** | | | | | | **%s** | **%s** | |\n",
		"Total",
		gain.SignedString(),
		fees,
	)
	fmt.Fprintf(&b, "\nNet of fees: %s\n", gain.Sub(fees).SignedString())
	return b.String()
}
