package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a raw amount string from a statement export into a
// decimal. It strips currency symbols, whitespace and thousands separators
// first. Unlike display formatting, the sign is preserved as-is; direction
// handling is the mapper's job.
func ParseAmount(raw string) (decimal.Decimal, error) {
	amount := strings.TrimSpace(raw)
	if amount == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	replacer := strings.NewReplacer(
		" ", "",
		" ", "",
		"¥", "",
		"￥", "",
		"$", "",
		"€", "",
		"CNY", "",
		"RMB", "",
		"USD", "",
		"EUR", "",
		",", "",
		"'", "",
	)
	amount = replacer.Replace(amount)

	dec, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	return dec, nil
}
