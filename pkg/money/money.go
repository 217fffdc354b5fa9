// Package money formats prices for display.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatFCFA rounds to the unit and groups thousands with spaces: 12500 -> "12 500 FCFA".
func FormatFCFA(amount decimal.Decimal) string {
	digits := amount.Round(0).Abs().StringFixed(0)
	var b strings.Builder
	if amount.Round(0).IsNegative() {
		b.WriteByte('-')
	}
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	b.WriteString(" FCFA")
	return b.String()
}
