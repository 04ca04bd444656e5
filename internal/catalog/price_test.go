package catalog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	testCases := []struct {
		raw      string
		expected float64
	}{
		{raw: "12 345,67 XXX", expected: 12345.67},
		{raw: "5 000 FCFA", expected: 5000},
		{raw: "5 000 FCFA", expected: 5000},
		{raw: "1 450,50 FCFA", expected: 1450.5},
		{raw: "1,299.00 CFA", expected: 1299},
		{raw: "1.299,00 €", expected: 1299},
		{raw: "1.234.567 FCFA", expected: 1234567},
		{raw: "1,234,567", expected: 1234567},
		{raw: "5.000 FCFA", expected: 5000},
		{raw: "12,5", expected: 12.5},
		{raw: "0,125", expected: 0.125},
		{raw: "$10.99", expected: 10.99},
		{raw: "Prix : 750 FCFA.", expected: 750},
		{raw: "5750", expected: 5750},
		{raw: "-15", expected: 15},
		{raw: ",5", expected: 0.5},
		{raw: ".99 €", expected: 0.99},
		{raw: "Prix : ,75 FCFA", expected: 0.75},
		{raw: "env. 5 000 FCFA", expected: 5000},
		{raw: "5 000 F.CFA", expected: 5000},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			got, err := ParsePrice(tc.raw)
			require.NoError(t, err)
			assert.InDelta(t, tc.expected, got, 1e-9)
		})
	}
}

func TestParsePriceFailures(t *testing.T) {
	testCases := []struct {
		raw    string
		target error
	}{
		{raw: "", target: ErrPriceEmpty},
		{raw: "FCFA", target: ErrPriceEmpty},
		{raw: "Prix sur demande", target: ErrPriceEmpty},
		{raw: ".,.", target: ErrPriceEmpty},
		{raw: "1.2.3,4,5", target: ErrPriceInvalid},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			got, err := ParsePrice(tc.raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.target))
			assert.Zero(t, got)

			var pe *PriceError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tc.raw, pe.Raw)
		})
	}
}

// groupThousands renders 12345 as "12 345"
func groupThousands(n int) string {
	s := strconv.Itoa(n)
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	return strings.Join(append([]string{s}, parts...), " ")
}

func TestParsePriceSpaceGroupedCommaDecimal(t *testing.T) {
	for _, whole := range []int{0, 7, 99, 1000, 12345, 999999, 1234567} {
		for _, cents := range []int{0, 5, 67, 99} {
			raw := fmt.Sprintf("%s,%02d XXX", groupThousands(whole), cents)
			got, err := ParsePrice(raw)
			require.NoError(t, err, raw)
			assert.InDelta(t, float64(whole)+float64(cents)/100, got, 1e-6, raw)
		}
	}
}

func TestRoundPrice(t *testing.T) {
	assert.Equal(t, 5000.46, RoundPrice(5000.456))
	assert.Equal(t, 12345.67, RoundPrice(12345.67))
	assert.Equal(t, 0.13, RoundPrice(0.125))
	assert.Equal(t, RoundPrice(5000.456), RoundPrice(RoundPrice(5000.456)))
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "12,345.67 CFA", FormatPrice(12345.67, "CFA"))
	assert.Equal(t, "5,000.00 CFA", FormatPrice(5000, "CFA"))
	assert.Equal(t, "750.00", FormatPrice(750, ""))
}
