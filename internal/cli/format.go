package cli

import (
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/Veraticus/vaultswipe/internal/ledger"
	"github.com/shopspring/decimal"
)

// FormatMoney renders an amount as dollars with thousands separators, e.g.
// "$1,234.56" or "-$12.00".
func FormatMoney(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	fixed := d.StringFixed(2)
	whole, cents, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return fmt.Sprintf("%s$%s.%s", sign, b.String(), cents)
}

// FormatDate renders a date like "Jul 30, 2025".
func FormatDate(d civil.Date) string {
	return fmt.Sprintf("%s %d, %d", d.Month.String()[:3], d.Day, d.Year)
}

// FormatDays renders a day count relative to today.
func FormatDays(days int) string {
	switch days {
	case 0:
		return "today"
	case 1:
		return "tomorrow"
	default:
		return fmt.Sprintf("in %d days", days)
	}
}

// FormatDue renders a card's due date, highlighting it when due soon.
func FormatDue(cs ledger.CardSummary) string {
	text := fmt.Sprintf("due %s (%s)", FormatDate(cs.NextDue), FormatDays(cs.DaysUntilDue))
	if cs.DueSoon {
		return WarningStyle.Render(BellIcon + " " + text)
	}
	return text
}
