// Package format renders numbers, amounts and dates the way the dashboard
// shows them: Indonesian grouping, rupiah without decimals and Indonesian
// month abbreviations.
package format

import (
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.Indonesian)

// Integer formats n with Indonesian digit grouping, e.g. 1.500.000.
func Integer(n int64) string {
	return printer.Sprintf("%d", n)
}

// Decimal formats v with Indonesian grouping and up to three fraction
// digits.
func Decimal(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
		return Integer(int64(v))
	}
	return printer.Sprint(number.Decimal(v, number.MaxFractionDigits(3)))
}

// Currency formats an amount in rupiah without fraction digits, e.g.
// "Rp 1.500.000".
func Currency(amount float64) string {
	n := int64(math.Round(amount))
	if n < 0 {
		return "-Rp " + Integer(-n)
	}
	return "Rp " + Integer(n)
}

// CurrencyString parses s and formats it with Currency. Unparseable input
// is returned unchanged.
func CurrencyString(s string) string {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return s
	}
	return Currency(v)
}

// LargeNumber abbreviates big amounts with Indonesian suffixes: T
// (triliun), M (miliar) and JT (juta), with one decimal.
func LargeNumber(v float64) string {
	switch {
	case v >= 1e12:
		return abbreviate(v/1e12, "T")
	case v >= 1e9:
		return abbreviate(v/1e9, "M")
	case v >= 1e6:
		return abbreviate(v/1e6, "JT")
	default:
		return Decimal(v)
	}
}

// LargeNumberString parses s and formats it with LargeNumber. Unparseable
// input is returned unchanged.
func LargeNumberString(s string) string {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) {
		return s
	}
	return LargeNumber(v)
}

func abbreviate(v float64, suffix string) string {
	return strings.Replace(strconv.FormatFloat(v, 'f', 1, 64), ".", ",", 1) + " " + suffix
}

// Percentage normalizes a ratio or a percentage to a whole percentage:
// values up to 1 are treated as ratios.
func Percentage(v float64) int {
	if v <= 1 {
		return int(math.Round(v * 100))
	}
	return int(math.Round(v))
}

var months = [12]string{"Jan", "Feb", "Mar", "Apr", "Mei", "Jun", "Jul", "Agu", "Sep", "Okt", "Nov", "Des"}

// Layouts accepted by DateTime.
const (
	LayoutDate     = "2006-01-02"
	LayoutDateTime = "2006-01-02 15:04:05"
	LayoutMonth    = "2006-01"
)

// DateTime formats a server timestamp for display. Date-only strings render
// as "02 Jan 2006", timestamps as "02 Jan 2006, 15:04". Empty or invalid
// input renders as "-".
func DateTime(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "-"
	}
	if t, err := time.Parse(LayoutDate, s); err == nil {
		return Date(t)
	}
	for _, layout := range []string{LayoutDateTime, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return Date(t) + ", " + t.Format("15:04")
		}
	}
	return "-"
}

// Date formats t as "02 Jan 2006" with Indonesian month abbreviations.
func Date(t time.Time) string {
	return t.Format("02") + " " + months[t.Month()-1] + " " + t.Format("2006")
}

// Month formats t as "Jan 2006" with Indonesian month abbreviations.
func Month(t time.Time) string {
	return months[t.Month()-1] + " " + t.Format("2006")
}

// MonthString formats a YYYY-MM string with Month. Invalid input is
// returned unchanged.
func MonthString(s string) string {
	t, err := time.Parse(LayoutMonth, s)
	if err != nil {
		return s
	}
	return Month(t)
}
