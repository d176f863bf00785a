// Package amount turns user typed money values into the canonical
// two-decimal form carried by a BR Code and back into Brazilian display form.
package amount

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leekchan/accounting"
	"github.com/shopspring/decimal"
)

// MaxLength is the longest transaction amount a payload may carry.
const MaxLength = 13

var (
	ErrInvalid     = errors.New("amount is not a number")
	ErrNotPositive = errors.New("amount must be greater than zero")
	ErrTooLong     = errors.New("amount exceeds 13 characters")
)

var brl = accounting.Accounting{
	Symbol:    "R$",
	Precision: 2,
	Thousand:  ".",
	Decimal:   ",",
	Format:    "%s %v",
}

// Parse accepts values such as "10", "10,5", "R$ 1.234,56", "R$ 1.000" or
// "1234.5" and returns the amount with two decimals ("1234.56").
//
// When both '.' and ',' appear the last one is the decimal separator. A
// single separator followed by exactly three digits is thousands grouping,
// as is a separator repeated in "1.000.000". More than two fraction digits
// is rejected.
func Parse(input string) (string, error) {
	s := strings.TrimSpace(input)
	s = strings.TrimPrefix(s, "R$")
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\u00a0':
			return -1
		}
		return r
	}, s)
	if !strings.ContainsAny(s, "0123456789") {
		return "", fmt.Errorf("%w: %q", ErrInvalid, input)
	}
	if strings.HasPrefix(s, "-") {
		return "", fmt.Errorf("%w: %q", ErrNotPositive, input)
	}

	intPart, fracPart, ok := splitSeparators(s)
	if !ok || len(fracPart) > 2 || !digitsOnly(intPart) || !digitsOnly(fracPart) {
		return "", fmt.Errorf("%w: %q", ErrInvalid, input)
	}
	if intPart == "" {
		intPart = "0"
	}

	lit := intPart
	if fracPart != "" {
		lit += "." + fracPart
	}
	d, err := decimal.NewFromString(lit)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalid, input)
	}
	return canonical(d)
}

// splitSeparators returns the integer digits with grouping removed and the
// fraction digits.
func splitSeparators(s string) (intPart, fracPart string, ok bool) {
	dots, commas := strings.Count(s, "."), strings.Count(s, ",")
	switch {
	case dots == 0 && commas == 0:
		return s, "", true
	case dots > 0 && commas > 0:
		i := strings.LastIndexAny(s, ".,")
		dec := s[i]
		if strings.IndexByte(s[:i], dec) >= 0 {
			return "", "", false
		}
		intPart, ok = ungroup(s[:i])
		return intPart, s[i+1:], ok
	}

	sep := "."
	if commas > 0 {
		sep = ","
	}
	if dots+commas > 1 {
		intPart, ok = ungroup(s)
		return intPart, "", ok
	}
	i := strings.Index(s, sep)
	if grouped, ok := ungroup(s); ok && len(s)-i-1 == 3 {
		return grouped, "", true
	}
	return s[:i], s[i+1:], true
}

// ungroup removes thousands separators from s. Groups after the first must
// have three digits and the first one to three without a leading zero.
func ungroup(s string) (string, bool) {
	groups := strings.FieldsFunc(s, func(r rune) bool { return r == '.' || r == ',' })
	if len(groups) == 1 && !strings.ContainsAny(s, ".,") {
		return s, true
	}
	if len(groups) < 2 || strings.Count(s, ".")+strings.Count(s, ",") != len(groups)-1 {
		return "", false
	}
	if first := groups[0]; len(first) > 3 || first[0] == '0' {
		return "", false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return "", false
		}
	}
	return strings.Join(groups, ""), true
}

// FromDigits interprets input the way a cents-first keypad mask does: every
// non-digit is dropped and the remaining number is divided by 100, so "1050"
// and "R$ 10,50" both yield "10.50".
func FromDigits(input string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(input); i++ {
		if input[i] >= '0' && input[i] <= '9' {
			b.WriteByte(input[i])
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("%w: %q", ErrInvalid, input)
	}
	d, err := decimal.NewFromString(b.String())
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalid, input)
	}
	return canonical(d.Shift(-2))
}

// Format renders a canonical amount as Brazilian currency, e.g. "R$ 1.234,56".
// Values that do not parse are returned unchanged.
func Format(amount string) string {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return amount
	}
	return brl.FormatMoney(d.Round(2).InexactFloat64())
}

func canonical(d decimal.Decimal) (string, error) {
	s := d.StringFixed(2)
	if !d.Round(2).IsPositive() {
		return "", fmt.Errorf("%w: %s", ErrNotPositive, s)
	}
	if len(s) > MaxLength {
		return "", fmt.Errorf("%w: %s", ErrTooLong, s)
	}
	return s, nil
}

func digitsOnly(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
