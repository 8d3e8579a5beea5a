// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from strings,
// coercing loosely typed input into amounts, and formatting rupee values.
package core

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ParseDecimalToPaise converts a decimal string to paise with proper rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and performs
// half-up rounding on the third decimal place. Zero is accepted because a
// period without electricity or fine is legitimate. Returns ErrInvalidAmount
// for empty input, signs, non-digit characters, or amounts above maxRupees.
//
// Examples:
//
//	ParseDecimalToPaise("12.34")  -> 1234, nil
//	ParseDecimalToPaise("12,34")  -> 1234, nil
//	ParseDecimalToPaise("12.345") -> 1235, nil (rounds up)
//	ParseDecimalToPaise("0")      -> 0, nil
func ParseDecimalToPaise(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
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
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	d, err := decimal.NewFromString(intPart + "." + fracPart + "0")
	if err != nil {
		return 0, ErrInvalidAmount
	}
	m, ok := moneyFromDecimal(d)
	if !ok {
		return 0, ErrInvalidAmount
	}
	return m.Paise, nil
}

// CoerceAmount turns a loosely typed value (JSON number, numeric string, nil)
// into Money. Anything that is not a number, or is beyond maxRupees, becomes
// zero. Numbers and their string forms round identically, half away from zero.
func CoerceAmount(v any) Money {
	switch x := v.(type) {
	case nil:
		return Money{}
	case Money:
		return x
	case float64:
		return fromFloat(x)
	case float32:
		return fromFloat(float64(x))
	case int:
		return coerceDecimal(decimal.NewFromInt(int64(x)))
	case int64:
		return coerceDecimal(decimal.NewFromInt(x))
	case json.Number:
		d, err := decimal.NewFromString(x.String())
		if err != nil {
			return Money{}
		}
		return coerceDecimal(d)
	case string:
		p, err := ParseDecimalToPaise(x)
		if err != nil {
			return Money{}
		}
		return Money{Paise: p}
	default:
		return Money{}
	}
}

// CoerceReading is CoerceAmount for meter readings, which are plain numbers.
func CoerceReading(v any) float64 {
	switch x := v.(type) {
	case nil:
		return 0
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0
		}
		return x
	case float32:
		return CoerceReading(float64(x))
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0
		}
		return CoerceReading(f)
	case string:
		f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(x), ",", "."), 64)
		if err != nil {
			return 0
		}
		return CoerceReading(f)
	default:
		return 0
	}
}

// maxRupees bounds accepted amounts so paise always fit in an int64.
var maxRupees = decimal.New(1, 15)

// fromFloat goes through the float's shortest decimal form, so 1.005 rounds
// like the string "1.005".
func fromFloat(f float64) Money {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Money{}
	}
	return coerceDecimal(decimal.NewFromFloat(f))
}

func coerceDecimal(d decimal.Decimal) Money {
	m, _ := moneyFromDecimal(d)
	return m
}

func moneyFromDecimal(d decimal.Decimal) (Money, bool) {
	d = d.Round(2)
	if d.Abs().GreaterThan(maxRupees) {
		return Money{}, false
	}
	return Money{Paise: d.Shift(2).IntPart()}, true
}

// Rupees returns the rupee value as a float64 for display and export.
// Use paise for calculations.
func (m Money) Rupees() float64 {
	return float64(m.Paise) / 100.0
}

// FormatRupees renders an amount with Indian digit grouping, e.g. "₹1,23,456.50".
func FormatRupees(m Money) string {
	p := m.Paise
	neg := p < 0
	if neg {
		p = -p
	}
	whole := strconv.FormatInt(p/100, 10)
	s := "₹" + groupIndian(whole) + "." + twoDigits(p%100)
	if neg {
		return "-" + s
	}
	return s
}

func (m Money) String() string {
	return FormatRupees(m)
}

// groupIndian inserts separators as 12,34,567: last three digits, then pairs.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}
	return strings.Join(groups, ",") + "," + tail
}

func twoDigits(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}
