package catalog

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	// ErrPriceEmpty is returned when the raw text holds no digits
	ErrPriceEmpty = errors.New("no digits in price")
	// ErrPriceInvalid is returned when the digits do not form a number
	ErrPriceInvalid = errors.New("invalid price number")
)

// PriceError carries the raw text that failed to parse
type PriceError struct {
	Raw string
	Err error
}

func (e *PriceError) Error() string {
	return fmt.Sprintf("parse price %q: %v", e.Raw, e.Err)
}

func (e *PriceError) Unwrap() error {
	return e.Err
}

// ParsePrice converts locale-formatted price text such as "12 345,67 FCFA"
// or "1,299.00 CFA" into a number. Everything but digits and the two
// separator characters is dropped; a separator ahead of the first digit
// is kept only when a digit follows it directly, so ",5" reads as 0.5.
// A lone separator followed by exactly three digits is read as thousands
// grouping. It never returns 0 for text it could not read.
func ParsePrice(raw string) (float64, error) {
	runes := []rune(raw)
	var b strings.Builder
	digits := 0
	for i, r := range runes {
		switch {
		case isDigit(r):
			digits++
			b.WriteRune(r)
		case r == '.' || r == ',':
			if digits == 0 && (i+1 >= len(runes) || !isDigit(runes[i+1])) {
				continue
			}
			b.WriteRune(r)
		}
	}
	if digits == 0 {
		return 0, &PriceError{Raw: raw, Err: ErrPriceEmpty}
	}

	cleaned := strings.TrimRight(b.String(), ".,")
	if strings.HasPrefix(cleaned, ".") || strings.HasPrefix(cleaned, ",") {
		cleaned = "0" + cleaned
	}
	number, ok := canonicalDecimal(cleaned)
	if !ok {
		return 0, &PriceError{Raw: raw, Err: ErrPriceInvalid}
	}

	value, err := strconv.ParseFloat(number, 64)
	if err != nil || math.IsInf(value, 0) || math.IsNaN(value) {
		return 0, &PriceError{Raw: raw, Err: ErrPriceInvalid}
	}
	return value, nil
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// canonicalDecimal rewrites digits with mixed separators into "1234.56" form
func canonicalDecimal(s string) (string, bool) {
	dots := strings.Count(s, ".")
	commas := strings.Count(s, ",")

	switch {
	case dots == 0 && commas == 0:
		return s, true
	case dots > 0 && commas > 0:
		decimal, grouping := ",", "."
		if strings.LastIndex(s, ".") > strings.LastIndex(s, ",") {
			decimal, grouping = ".", ","
		}
		if strings.Count(s, decimal) > 1 {
			return "", false
		}
		s = strings.ReplaceAll(s, grouping, "")
		return strings.Replace(s, decimal, ".", 1), true
	}

	sep := "."
	if commas > 0 {
		sep = ","
	}
	if strings.Count(s, sep) > 1 {
		return strings.ReplaceAll(s, sep, ""), true
	}

	whole, frac, _ := strings.Cut(s, sep)
	if len(frac) == 3 && whole != "0" {
		return whole + frac, true
	}
	return whole + "." + frac, true
}

// RoundPrice rounds an amount to 2 decimal places
func RoundPrice(v float64) float64 {
	return math.Round(v*100) / 100
}

var pricePrinter = message.NewPrinter(language.English)

// FormatPrice renders an amount for previews, e.g. "12,345.67 CFA"
func FormatPrice(v float64, currency string) string {
	s := pricePrinter.Sprintf("%.2f", v)
	if currency == "" {
		return s
	}
	return s + " " + currency
}
