// Package core defines the domain model for the job tracker.
//
// This file contains fixed-point money and hours handling. Monetary amounts
// are int64 cents and effort is int64 tenths of an hour so that summing many
// rows never drifts the way float64 arithmetic would.
package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

type (
	// Money is a currency-agnostic amount in cents.
	Money struct {
		Cents int64
	}

	// Hours is an effort duration in tenths of an hour.
	Hours struct {
		Tenths int64
	}
)

// ParseDecimalToCents converts a decimal string to cents with half-up
// rounding on the third decimal place. Both dot (12.34) and comma (12,34)
// separators are accepted. Zero is valid; negative amounts are not.
//
// Examples:
//
//	ParseDecimalToCents("12.34") -> 1234, nil
//	ParseDecimalToCents("12,34") -> 1234, nil
//	ParseDecimalToCents("0")     -> 0, nil
//	ParseDecimalToCents("12.346")-> 1235, nil (rounds up)
func ParseDecimalToCents(s string) (int64, error) {
	iv, frac, err := splitDecimal(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// iv*100 + fracCents must stay below MaxInt64 even with 99 frac cents
	const maxSafeInt64 = (math.MaxInt64 - 99) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	var fracCents int64
	if len(frac) > 0 {
		fracCents = int64(frac[0]-'0') * 10
		if len(frac) > 1 {
			fracCents += int64(frac[1] - '0')
			if len(frac) > 2 && frac[2] >= '5' {
				fracCents++
			}
		}
	}
	return iv*100 + fracCents, nil
}

// ParseHoursToTenths converts a decimal hours string to tenths of an hour
// with half-up rounding on the second decimal place. Zero is valid.
func ParseHoursToTenths(s string) (int64, error) {
	iv, frac, err := splitDecimal(s)
	if err != nil {
		return 0, ErrInvalidHours
	}
	const maxSafeInt64 = (math.MaxInt64 - 9) / 10
	if iv > maxSafeInt64 {
		return 0, ErrInvalidHours
	}
	var fracTenths int64
	if len(frac) > 0 {
		fracTenths = int64(frac[0] - '0')
		if len(frac) > 1 && frac[1] >= '5' {
			fracTenths++
		}
	}
	return iv*10 + fracTenths, nil
}

// splitDecimal validates a non-negative decimal string and returns the
// integer part and the raw fractional digits.
func splitDecimal(s string) (int64, string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, "", ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		// Only unsigned values allowed
		return 0, "", ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, "", ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, "", ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, "", ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, "", ErrInvalidAmount
	}
	return iv, fracPart, nil
}

// Add returns the sum of two amounts.
func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

// Sub returns the difference of two amounts.
func (m Money) Sub(other Money) Money {
	return Money{Cents: m.Cents - other.Cents}
}

// String renders the amount as a plain decimal with two digits, e.g.
// "825.50". This is the CSV/export representation; no currency symbol.
func (m Money) String() string {
	cents := m.Cents
	neg := cents < 0
	if neg {
		cents = -cents
	}
	s := fmt.Sprintf("%d.%02d", cents/100, cents%100)
	if neg {
		return "-" + s
	}
	return s
}

// Add returns the sum of two durations.
func (h Hours) Add(other Hours) Hours {
	return Hours{Tenths: h.Tenths + other.Tenths}
}

// String renders the duration as a decimal with one digit, e.g. "10.5".
func (h Hours) String() string {
	tenths := h.Tenths
	neg := tenths < 0
	if neg {
		tenths = -tenths
	}
	s := fmt.Sprintf("%d.%d", tenths/10, tenths%10)
	if neg {
		return "-" + s
	}
	return s
}
