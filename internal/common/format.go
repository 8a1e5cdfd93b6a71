package common

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// FormatMoney formats v as a dollar amount with thousands separators,
// rounded to cents.
func FormatMoney(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	cents := int64(math.Round(v * 100))
	return fmt.Sprintf("%s$%s.%02d", sign, groupThousands(cents/100), cents%100)
}

// FormatPercent renders a ratio (0.125) as a percentage ("12.50%").
func FormatPercent(ratio float64) string {
	return fmt.Sprintf("%.2f%%", ratio*100)
}

// FormatSignedPercent renders a ratio as a percentage with an explicit sign.
func FormatSignedPercent(ratio float64) string {
	if ratio >= 0 {
		return "+" + FormatPercent(ratio)
	}
	return FormatPercent(ratio)
}

// FormatShares renders a share count without trailing zeros.
func FormatShares(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatNumber renders a plain series value rounded to four decimal places,
// without trailing zeros.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(math.Round(v*1e4)/1e4, 'f', -1, 64)
}

// FormatInstant renders a series timestamp in UTC as a date when it falls on
// midnight, and as RFC 3339 otherwise.
func FormatInstant(t time.Time) string {
	t = t.UTC()
	if t.Equal(t.Truncate(24 * time.Hour)) {
		return t.Format(time.DateOnly)
	}
	return t.Format(time.RFC3339)
}

func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
