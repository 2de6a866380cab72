// Package renderer turns computed reports into markdown.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/etnz/rfportfolio/performance"
	"github.com/etnz/rfportfolio/tax"
	"github.com/shopspring/decimal"
)

//go:embed templates/*.md
var templateFS embed.FS

var templates, _ = fs.Sub(templateFS, "templates")

var funcs = template.FuncMap{
	// pct formats a measure in percent.
	"pct": func(m performance.Measure) string {
		if !m.OK {
			return "n/a"
		}
		return m.Percent().String()
	},
	// rate formats a ratio such as 0.13 in percent.
	"rate": func(d decimal.Decimal) string { return d.Shift(2).String() + "%" },
	"amount": func(d decimal.Decimal) string {
		return d.StringFixed(2)
	},
}

// TaxRenderOptions holds configuration for rendering a tax report.
type TaxRenderOptions struct {
	SkipPositions       bool // Do not render the open positions section.
	SkipRecommendations bool // Do not render the recommendations section.
}

// RenderTax renders a tax result to a markdown string.
func RenderTax(r *tax.Result, opts TaxRenderOptions) string {
	partials := map[string]string{
		"tax_title":   "tax_title.md",
		"tax_summary": "tax_summary.md",
	}
	// An empty file name results in an empty template.
	partials["tax_positions"] = ""
	if !opts.SkipPositions {
		partials["tax_positions"] = "tax_positions.md"
	}
	partials["tax_recommendations"] = ""
	if !opts.SkipRecommendations {
		partials["tax_recommendations"] = "tax_recommendations.md"
	}
	return renderTemplate("tax", "tax.md", partials, r)
}

// RenderIIS renders the comparison of both IIS types.
func RenderIIS(c *tax.IISComparison) string {
	return renderTemplate("iis", "iis.md", nil, c)
}

// RenderPerformance renders performance metrics.
func RenderPerformance(p *Performance) string {
	partials := map[string]string{
		"performance_benchmark": "",
	}
	if p.Benchmark != nil {
		partials["performance_benchmark"] = "performance_benchmark.md"
	}
	return renderTemplate("performance", "performance.md", partials, p)
}

// RenderAllocation renders an allocation breakdown and its drift.
func RenderAllocation(a *Allocation) string {
	partials := map[string]string{
		"allocation_drift": "allocation_drift.md",
	}
	return renderTemplate("allocation", "allocation.md", partials, a)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Funcs(funcs).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		if file != "" {
			content, err = fs.ReadFile(templates, file)
			if err != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, err)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
