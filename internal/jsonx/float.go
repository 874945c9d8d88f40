package jsonx

import (
	"strings"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

// LeadingDecimal parses the longest numeric prefix of s, ignoring leading
// whitespace, the way a browser's parseFloat does: "99.50" is 99.5, "12abc"
// is 12 and "abc" fails. The boolean reports whether any number was found.
func LeadingDecimal(s string) (decimal.Decimal, bool) {
	s = strings.TrimLeft(s, " \t\n\r")
	end := numericPrefix(s)
	if end == 0 {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s[:end])
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// numericPrefix returns the length of the [+-]digits[.digits][e[+-]digits]
// prefix of s, or 0 when there are no mantissa digits.
func numericPrefix(s string) int {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		frac := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			frac++
		}
		if frac > 0 {
			i = j
			digits += frac
		}
	}
	if digits == 0 {
		return 0
	}
	// Exponent only counts when followed by at least one digit.
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		start := j
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		if j > start {
			i = j
		}
	}
	return i
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// DecodeDecimal reads the next value from d as a price. Numbers and numeric
// strings are parsed with LeadingDecimal; anything else is skipped and
// reported as not found.
func DecodeDecimal(d *jx.Decoder) (decimal.Decimal, bool, error) {
	switch d.Next() {
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return decimal.Zero, false, err
		}
		v, ok := LeadingDecimal(s)
		return v, ok, nil
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return decimal.Zero, false, err
		}
		v, ok := LeadingDecimal(n.String())
		return v, ok, nil
	default:
		return decimal.Zero, false, d.Skip()
	}
}
