package renderer

import (
	"fmt"
	"io"
	"strings"

	portfolio "github.com/etnz/rfportfolio"
	"github.com/etnz/rfportfolio/date"
)

// HoldingsMarkdown renders open positions grouped by account. Prices are
// optional; positions without a price show no market value.
func HoldingsMarkdown(holdings []portfolio.Holding, prices map[string]portfolio.Money) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Holdings\n\n")

	byAccount := make(map[string][]portfolio.Holding)
	var accounts []string
	for _, h := range holdings {
		if _, ok := byAccount[h.Account]; !ok {
			accounts = append(accounts, h.Account)
		}
		byAccount[h.Account] = append(byAccount[h.Account], h)
	}

	for _, account := range accounts {
		ConditionalBlock(&b, func(w io.Writer) bool {
			fmt.Fprintf(w, "## %s\n\n", account)
			fmt.Fprintln(w, "| Instrument | Quantity | Average Cost | Cost Basis | Market Value | Opened | Lots |")
			fmt.Fprintln(w, "|:---|---:|---:|---:|---:|:---|---:|")
			rows := 0
			for _, h := range byAccount[account] {
				if !h.Quantity.IsPositive() {
					continue
				}
				value := "n/a"
				if p, ok := prices[h.Instrument]; ok {
					value = p.Mul(h.Quantity).String()
				}
				fmt.Fprintf(w, "| %s | %s | %s | %s | %s | %s | %d |\n",
					h.Instrument,
					h.Quantity,
					h.AverageCost,
					h.CostBasis,
					value,
					date.FromTime(h.Opened),
					h.Lots,
				)
				rows++
			}
			fmt.Fprintln(w)
			return rows > 0
		})
	}
	if len(accounts) == 0 {
		fmt.Fprint(&b, "No open position.\n")
	}
	return b.String()
}
