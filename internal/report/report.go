// Package report renders terminal reports for the monitor commands and the
// end-of-run summary.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mhabib/tradefloor/internal/stats"
	"github.com/mhabib/tradefloor/internal/stock"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#9CA3AF"))

	upStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10B981"))

	downStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#374151")).
			Padding(0, 1)
)

// TraderRow is one trader's line in the performance report.
type TraderRow struct {
	Name          string
	Cash          float64
	Holdings      map[string]int
	TotalValue    float64
	RiskTolerance float64
}

// changeStyle picks the up/down/neutral style for a percent change.
func changeStyle(pct float64) lipgloss.Style {
	switch {
	case pct > 0:
		return upStyle
	case pct < 0:
		return downStyle
	default:
		return mutedStyle
	}
}

// MarketSummary renders every listed stock with its current price and the
// change since listing.
func MarketSummary(quotes []stock.Quote) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Market Summary"))
	b.WriteString("\n")
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-8s %-26s %12s %9s", "Symbol", "Name", "Price", "Change")))
	b.WriteString("\n")

	sorted := make([]stock.Quote, len(quotes))
	copy(sorted, quotes)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Symbol < sorted[j].Symbol })

	for _, q := range sorted {
		row := fmt.Sprintf("%-8s %-26s %12.2f ", q.Symbol, q.Name, q.Price)
		b.WriteString(row)
		b.WriteString(changeStyle(q.PercentChange).Render(fmt.Sprintf("%+8.2f%%", q.PercentChange)))
		b.WriteString("\n")
	}

	return panelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

// SortMovers orders quotes by absolute percent change, largest swing first.
// Ties keep symbol order so the output is stable.
func SortMovers(quotes []stock.Quote) []stock.Quote {
	sorted := make([]stock.Quote, len(quotes))
	copy(sorted, quotes)
	sort.SliceStable(sorted, func(i, j int) bool {
		ai, aj := sorted[i].PercentChange, sorted[j].PercentChange
		if ai < 0 {
			ai = -ai
		}
		if aj < 0 {
			aj = -aj
		}
		if ai != aj {
			return ai > aj
		}
		return sorted[i].Symbol < sorted[j].Symbol
	})
	return sorted
}

// TopMovers renders the n stocks with the largest swing since listing.
func TopMovers(quotes []stock.Quote, n int) string {
	sorted := SortMovers(quotes)
	if n > 0 && n < len(sorted) {
		sorted = sorted[:n]
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Top Movers"))
	b.WriteString("\n")
	for i, q := range sorted {
		b.WriteString(fmt.Sprintf("%d. %-8s %10.2f ", i+1, q.Symbol, q.Price))
		b.WriteString(changeStyle(q.PercentChange).Render(fmt.Sprintf("%+.2f%%", q.PercentChange)))
		b.WriteString("\n")
	}

	return panelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

// TradeStats renders the trade counters and success rate.
func TradeStats(s stats.Summary) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Trade Statistics"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Attempts:   %d\n", s.Total))
	b.WriteString(upStyle.Render(fmt.Sprintf("Successful: %d", s.Success)))
	b.WriteString("\n")
	b.WriteString(downStyle.Render(fmt.Sprintf("Failed:     %d", s.Failure)))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Success rate: %.1f%%", s.SuccessRate))

	return panelStyle.Render(b.String())
}

// TraderPerformance renders each trader's cash, holdings, and total value
// at current prices, richest first.
func TraderPerformance(rows []TraderRow) string {
	sorted := make([]TraderRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].TotalValue > sorted[j].TotalValue })

	var b strings.Builder
	b.WriteString(titleStyle.Render("Trader Performance"))
	b.WriteString("\n")
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-10s %12s %12s %5s  %s", "Trader", "Cash", "Value", "Risk", "Holdings")))
	b.WriteString("\n")

	for _, r := range sorted {
		b.WriteString(fmt.Sprintf("%-10s %12.2f %12.2f %5.2f  %s\n",
			r.Name, r.Cash, r.TotalValue, r.RiskTolerance, formatHoldings(r.Holdings)))
	}

	return panelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func formatHoldings(holdings map[string]int) string {
	if len(holdings) == 0 {
		return mutedStyle.Render("(none)")
	}
	symbols := make([]string, 0, len(holdings))
	for sym := range holdings {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	parts := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		parts = append(parts, fmt.Sprintf("%s:%d", sym, holdings[sym]))
	}
	return strings.Join(parts, " ")
}

// FinalReport stitches the end-of-run sections together.
func FinalReport(quotes []stock.Quote, rows []TraderRow, s stats.Summary) string {
	return strings.Join([]string{
		MarketSummary(quotes),
		TraderPerformance(rows),
		TradeStats(s),
	}, "\n")
}
