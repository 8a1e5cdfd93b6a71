package orchestrator

import "strings"

// NormalizeTickers splits a comma-separated ticker list, trims surrounding
// whitespace and drops empty segments. Order, duplicates and case are kept
// as entered.
func NormalizeTickers(raw string) []string {
	parts := strings.Split(raw, ",")
	tickers := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tickers = append(tickers, t)
		}
	}
	return tickers
}
