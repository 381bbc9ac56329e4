package lead

import (
	"fmt"
	"strings"
)

// FormatBalance renders a balance for display. Nil and zero balances
// both render as "N/A"; everything else is a currency string with
// thousands separators and two decimals.
func FormatBalance(balance *float64, symbol string) string {
	if balance == nil || *balance == 0 {
		return "N/A"
	}
	if symbol == "" {
		symbol = "$"
	}
	v := *balance
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	whole := int64(v)
	frac := int64((v-float64(whole))*100 + 0.5)
	if frac >= 100 {
		whole++
		frac -= 100
	}
	return fmt.Sprintf("%s%s%s.%02d", sign, symbol, groupThousands(whole), frac)
}

func groupThousands(n int64) string {
	s := fmt.Sprintf("%d", n)
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

// FormatScore renders a probability score as a percentage, "—" when
// the score is missing.
func FormatScore(score *float64) string {
	if score == nil {
		return "—"
	}
	return fmt.Sprintf("%.1f%%", *score*100)
}
