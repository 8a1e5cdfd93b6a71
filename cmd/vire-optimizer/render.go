package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/bobmcallan/vire-optimizer/internal/common"
	"github.com/bobmcallan/vire-optimizer/internal/models"
	"github.com/bobmcallan/vire-optimizer/internal/orchestrator"
	"github.com/charmbracelet/lipgloss"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)

func renderHealth(w io.Writer, status orchestrator.HealthStatus) {
	if status.Up {
		fmt.Fprintf(w, "Health:     %s\n", okStyle.Render("up"))
		return
	}
	fmt.Fprintf(w, "Health:     %s\n", warnStyle.Render(status.Warning))
}

func renderCredential(w io.Writer, cred models.Credential) {
	switch {
	case cred.Present():
		fmt.Fprintf(w, "Credential: %s\n", okStyle.Render("present"))
	case cred.Error != "":
		fmt.Fprintf(w, "Credential: %s\n", errorStyle.Render(cred.Error))
	default:
		fmt.Fprintln(w, "Credential: none")
	}
}

// renderPortfolio prints the summary metrics, the allocation table and the
// performance series. A nil result prints nothing.
func renderPortfolio(w io.Writer, p *models.PortfolioResult) {
	if p == nil {
		return
	}
	if p.IsError() {
		fmt.Fprintln(w, errorStyle.Render(p.Error))
		return
	}

	fmt.Fprintln(w, headingStyle.Render("Optimized portfolio"))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if p.Value > 0 {
		fmt.Fprintf(tw, "Portfolio value\t%s\n", common.FormatMoney(p.Value))
	}
	fmt.Fprintf(tw, "Expected return\t%s\n", common.FormatSignedPercent(p.Return))
	fmt.Fprintf(tw, "Volatility\t%s\n", common.FormatPercent(p.Volatility))
	fmt.Fprintf(tw, "Sharpe ratio\t%.3f\n", p.Sharpe)
	tw.Flush()

	fmt.Fprintln(w)
	fmt.Fprintln(w, headingStyle.Render("Allocation"))
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Ticker\tWeight\tShares\t")
	for _, t := range p.SortedTickers() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t\n", t, common.FormatPercent(p.Weights[t]), common.FormatShares(p.Shares[t]))
	}
	tw.Flush()

	series := p.PerformanceSeries()
	if len(series) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, headingStyle.Render("Performance"))
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Time\tValue\t")
	for _, pt := range series {
		fmt.Fprintf(tw, "%s\t%s\t\n", common.FormatInstant(pt.Time), common.FormatNumber(pt.Value))
	}
	tw.Flush()
}
