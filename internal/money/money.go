// Package money formats minor-unit amounts for display. The ledger itself
// only ever carries int64 minor units; formatting is presentation-only.
package money

import (
	"fmt"
	"strings"
)

// ErrUnknownCurrency is returned for codes missing from the symbol table.
// Unknown codes never silently default.
var ErrUnknownCurrency = fmt.Errorf("unknown currency code")

type currencyInfo struct {
	symbol   string
	exponent int // minor-unit digits
}

var currencies = map[string]currencyInfo{
	"USD": {"$", 2},
	"EUR": {"€", 2},
	"GBP": {"£", 2},
	"JPY": {"¥", 0},
	"CNY": {"CN¥", 2},
	"INR": {"₹", 2},
	"NGN": {"₦", 2},
	"CHF": {"CHF ", 2},
	"CAD": {"CA$", 2},
	"AUD": {"A$", 2},
	"AED": {"AED ", 2},
	"KWD": {"KD ", 3},
}

// Format renders an amount in minor units as a display string, e.g.
// Format(1234, "USD") == "$12.34". Negative amounts carry a leading minus.
func Format(amountMinorUnits int64, currencyCode string) (string, error) {
	info, ok := currencies[strings.ToUpper(currencyCode)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCurrency, currencyCode)
	}

	sign := ""
	if amountMinorUnits < 0 {
		sign = "-"
		amountMinorUnits = -amountMinorUnits
	}

	if info.exponent == 0 {
		return fmt.Sprintf("%s%s%d", sign, info.symbol, amountMinorUnits), nil
	}

	div := int64(1)
	for i := 0; i < info.exponent; i++ {
		div *= 10
	}
	return fmt.Sprintf("%s%s%d.%0*d", sign, info.symbol, amountMinorUnits/div, info.exponent, amountMinorUnits%div), nil
}

// MajorUnits converts minor units to a decimal major-unit value for
// interchange formats (ISO 20022) that require decimal amounts. The ledger
// itself never computes on this value.
func MajorUnits(amountMinorUnits int64, currencyCode string) (float64, error) {
	info, ok := currencies[strings.ToUpper(currencyCode)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCurrency, currencyCode)
	}
	div := float64(1)
	for i := 0; i < info.exponent; i++ {
		div *= 10
	}
	return float64(amountMinorUnits) / div, nil
}

// Supported reports whether code is in the symbol table.
func Supported(currencyCode string) bool {
	_, ok := currencies[strings.ToUpper(currencyCode)]
	return ok
}
