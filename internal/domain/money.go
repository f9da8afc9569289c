package domain

import "fmt"

// FormatCents renders an integer cent amount as a decimal string, e.g.
// 1050 -> "10.50". Amounts are kept in cents everywhere to avoid float
// arithmetic on money.
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
