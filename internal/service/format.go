package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rsaputelli/PRS/internal/model"
)

// ── display formats used by merge fields and emails ──

const (
	layoutISO     = "2006-01-02"
	layoutLong    = "Monday, January 2, 2006"
	layoutClock   = "15:04"
	layoutClock12 = "3:04 PM"
)

// FormatMoney renders d as "$1,500.00"; negatives as "-$12.50".
func FormatMoney(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if d.IsNegative() && !d.Round(2).IsZero() {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}

// FormatMoneyNull "" for a NULL amount.
func FormatMoneyNull(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return FormatMoney(d.Decimal)
}

// DateISO "2025-06-14", "" for nil.
func DateISO(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(layoutISO)
}

// DateLong "Saturday, June 14, 2025", "" for nil.
func DateLong(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(layoutLong)
}

// Clock24 normalises a stored time to "19:00", "" when unparseable.
func Clock24(s *string) string {
	t, ok := model.ParseClock(model.StrVal(s))
	if !ok {
		return ""
	}
	return t.Format(layoutClock)
}

// Clock12 a stored time as "7:00 PM", "" when unparseable.
func Clock12(s *string) string {
	t, ok := model.ParseClock(model.StrVal(s))
	if !ok {
		return ""
	}
	return t.Format(layoutClock12)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func intString(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

// parseDate "" means nil.
func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(layoutISO, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
