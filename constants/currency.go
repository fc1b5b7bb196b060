package constants

import (
	"regexp"
	"strings"
)

// DefaultCurrency is applied whenever an extraction or form omits the code.
const DefaultCurrency = "NPR"

var currencyRe = regexp.MustCompile(`^[A-Z]{3}$`)

// CanonicalizeCurrency upper-cases and trims a currency code. Anything that is
// not a 3-letter code after trimming falls back to DefaultCurrency; ok reports
// whether the input was usable as-is.
func CanonicalizeCurrency(input string) (string, bool) {
	s := strings.ToUpper(strings.TrimSpace(input))
	if currencyRe.MatchString(s) {
		return s, true
	}
	return DefaultCurrency, false
}
