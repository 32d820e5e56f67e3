// Package money formats amounts in the smallest currency unit for people.
package money

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultCurrency is the only currency ZaloPay settles in.
const DefaultCurrency = "VND"

var printer = message.NewPrinter(language.Vietnamese)

// Format renders an amount with Vietnamese digit grouping followed by the
// currency code, e.g. 50.000VND.
func Format(amount int64, currency string) string {
	return printer.Sprintf("%d", amount) + currency
}
