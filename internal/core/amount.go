// Package core provides the domain logic of Celengan: amount parsing,
// balance reconciliation, net-worth aggregation and goal math.
//
// This file handles free-form rupiah amounts the way users type them in chat
// and forms: "500rb", "1.5jt", "5k", or locale-grouped digits like "500.000".
package core

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var amountPattern = regexp.MustCompile(`^([0-9][0-9.,]*|[.,][0-9][0-9.,]*)\s*(jt|juta|rb|ribu|k)?$`)

// ParseAmount converts free-form numeric text into whole rupiah.
//
// Suffixes: "jt"/"juta" multiply by 1,000,000; "rb"/"ribu"/"k" by 1,000.
// Suffixed amounts may carry a decimal fraction ("1.5jt" -> 1500000).
// Without a suffix, "." is treated as a thousands separator and "," as a
// decimal separator (Indonesian convention), rounded half-up to an integer.
// Returns ErrInvalidAmount for empty input or anything that does not parse.
func ParseAmount(text string) (int64, error) {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" {
		return 0, ErrInvalidAmount
	}

	m := amountPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, ErrInvalidAmount
	}
	num, suffix := m[1], m[2]

	var multiplier int64
	switch suffix {
	case "jt", "juta":
		multiplier = 1_000_000
	case "rb", "ribu", "k":
		multiplier = 1_000
	}

	if multiplier > 0 {
		// With a suffix both "." and "," act as the decimal point.
		d, err := decimal.NewFromString(strings.ReplaceAll(num, ",", "."))
		if err != nil {
			return 0, ErrInvalidAmount
		}
		return d.Mul(decimal.NewFromInt(multiplier)).Round(0).IntPart(), nil
	}

	// Plain number: strip thousands dots, promote the decimal comma.
	normalized := strings.ReplaceAll(num, ".", "")
	normalized = strings.ReplaceAll(normalized, ",", ".")
	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return d.Round(0).IntPart(), nil
}

// FormatIDR renders an amount as rupiah with dot-grouped thousands,
// e.g. 1500000 -> "Rp 1.500.000". Parsing the formatted digits back with
// ParseAmount yields the same integer.
func FormatIDR(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)

	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}

	if neg {
		return "-Rp " + b.String()
	}
	return "Rp " + b.String()
}

// FormatCompact renders an amount in abbreviated form for chart labels,
// e.g. 1500000 -> "Rp 1.5M", 500000 -> "Rp 500.0K".
func FormatCompact(amount int64) string {
	neg := amount < 0
	abs := amount
	if neg {
		abs = -abs
	}

	var formatted string
	switch {
	case abs >= 1_000_000_000:
		formatted = strconv.FormatFloat(float64(abs)/1e9, 'f', 1, 64) + "B"
	case abs >= 1_000_000:
		formatted = strconv.FormatFloat(float64(abs)/1e6, 'f', 1, 64) + "M"
	case abs >= 1_000:
		formatted = strconv.FormatFloat(float64(abs)/1e3, 'f', 1, 64) + "K"
	default:
		formatted = strconv.FormatInt(abs, 10)
	}

	if neg {
		return "-Rp " + formatted
	}
	return "Rp " + formatted
}
