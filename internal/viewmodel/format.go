// Package viewmodel holds the pure projection logic behind the back-office
// screens: display formatting, status labels, free-text filtering, dashboard
// metrics and the per-contract installment grouping. Every function here is
// total and side-effect free; malformed input degrades to a safe display
// value instead of an error.
package viewmodel

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var (
	moneyPrinter = message.NewPrinter(language.BrazilianPortuguese)
	moneyPattern = regexp.MustCompile(`^[+-]?\d+(\.\d{1,2})?$`)
	digitPattern = regexp.MustCompile(`\D`)
)

// FormatMoney renders a monetary value as pt-BR currency with two fraction
// digits. Accepts numbers, decimal.Decimal and decimal-as-text strings.
// Strings that do not look like a plain decimal are returned as-is, except
// very long ones (arbitrary-precision overflow output from the backend),
// which are truncated to a head…tail form. Nil renders as "-".
func FormatMoney(v any) string {
	switch value := v.(type) {
	case nil:
		return "-"
	case decimal.Decimal:
		return brl(value.InexactFloat64())
	case *decimal.Decimal:
		if value == nil {
			return "-"
		}
		return brl(value.InexactFloat64())
	case float64:
		return brl(value)
	case float32:
		return brl(float64(value))
	case int:
		return brl(float64(value))
	case int64:
		return brl(float64(value))
	case string:
		s := strings.TrimSpace(value)
		if moneyPattern.MatchString(s) {
			if d, err := decimal.NewFromString(s); err == nil {
				return brl(d.InexactFloat64())
			}
		}
		if r := []rune(s); len(r) > 24 {
			return string(r[:12]) + "…" + string(r[len(r)-6:])
		}
		return s
	default:
		return fmt.Sprint(v)
	}
}

func brl(f float64) string {
	return moneyPrinter.Sprintf("R$ %v", number.Decimal(f,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	))
}

// OnlyDigits strips every non-digit rune.
func OnlyDigits(s string) string {
	return digitPattern.ReplaceAllString(s, "")
}

// FormatPhone masks a Brazilian phone number progressively: 10 digits split
// the subscriber number 4+4 (landline), anything else up to 11 digits uses
// the 5+4 mobile split, rendering partial prefixes for live-typed input.
func FormatPhone(raw string) string {
	d := OnlyDigits(raw)
	if len(d) > 11 {
		d = d[:11]
	}
	if d == "" {
		return "-"
	}
	ddd := d
	if len(d) > 2 {
		ddd = d[:2]
	}
	if len(d) <= 2 {
		return "(" + ddd
	}
	rest := d[2:]

	if len(d) == 10 {
		return fmt.Sprintf("(%s) %s-%s", ddd, rest[:4], rest[4:8])
	}

	p1 := rest
	p2 := ""
	if len(rest) > 5 {
		p1 = rest[:5]
		p2 = rest[5:]
	}
	if p2 == "" {
		return fmt.Sprintf("(%s) %s", ddd, p1)
	}
	return fmt.Sprintf("(%s) %s-%s", ddd, p1, p2)
}

// FormatCPF masks a CPF as ddd.ddd.ddd-dd, rendering partial prefixes for
// incomplete input. Empty input renders as empty string.
func FormatCPF(raw string) string {
	d := OnlyDigits(raw)
	if len(d) > 11 {
		d = d[:11]
	}
	switch {
	case d == "":
		return ""
	case len(d) <= 3:
		return d
	case len(d) <= 6:
		return d[:3] + "." + d[3:]
	case len(d) <= 9:
		return d[:3] + "." + d[3:6] + "." + d[6:]
	default:
		return d[:3] + "." + d[3:6] + "." + d[6:9] + "-" + d[9:]
	}
}

// NormalizePlate uppercases and strips separators from a vehicle plate.
// Returns false unless exactly 7 characters remain.
func NormalizePlate(raw string) (string, bool) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, " ", "")
	if len(s) != 7 {
		return "", false
	}
	return s, true
}

// FormatDate renders an ISO-ish date as dd/mm/yyyy. Unparseable input is
// echoed back unchanged; empty input renders as "-".
func FormatDate(v string) string {
	if v == "" {
		return "-"
	}
	t, ok := parseDate(v)
	if !ok {
		return v
	}
	return t.Format("02/01/2006")
}

// FormatDateTime renders an ISO-ish timestamp as dd/mm/yyyy hh:mm.
// Unparseable input is echoed back unchanged; empty input renders as "-".
func FormatDateTime(v string) string {
	if v == "" {
		return "-"
	}
	t, ok := parseDate(v)
	if !ok {
		return v
	}
	return t.Format("02/01/2006 15:04")
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseDate(v string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
