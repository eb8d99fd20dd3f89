package ledger

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/Veraticus/vaultswipe/internal/model"
)

// DefaultDueSoonDays is the inclusive window in which a due date counts as soon.
const DefaultDueSoonDays = 5

// SanitizeDueDay rounds v to the nearest integer and clamps it into [1,31].
// Non-finite input yields 1.
func SanitizeDueDay(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return model.MinDueDay
	}
	n := math.Floor(v + 0.5)
	if n < model.MinDueDay {
		return model.MinDueDay
	}
	if n > model.MaxDueDay {
		return model.MaxDueDay
	}
	return int(n)
}

// ParseDueDay parses raw as a number and sanitizes it. Unparsable input
// yields 1 along with an error naming the value.
func ParseDueDay(raw string) (int, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return model.MinDueDay, fmt.Errorf("%q is not a number", raw)
	}
	return SanitizeDueDay(v), nil
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// NextDueDate returns the next occurrence of dueDay on or after today. A due
// day past the end of a month falls on that month's last day.
func NextDueDate(dueDay int, today civil.Date) civil.Date {
	day := SanitizeDueDay(float64(dueDay))
	candidate := clampedDate(today.Year, today.Month, day)
	if candidate.Before(today) {
		year, month := today.Year, today.Month+1
		if month > time.December {
			month = time.January
			year++
		}
		candidate = clampedDate(year, month, day)
	}
	return candidate
}

func clampedDate(year int, month time.Month, day int) civil.Date {
	return civil.Date{Year: year, Month: month, Day: min(day, DaysInMonth(year, month))}
}

// DaysUntilNextDue returns the whole days from today until the next due date.
// It is 0 when the card is due today.
func DaysUntilNextDue(dueDay int, today civil.Date) int {
	return NextDueDate(dueDay, today).DaysSince(today)
}

// DueSoon reports whether days falls inside the inclusive threshold.
func DueSoon(days, threshold int) bool {
	return days <= threshold
}

// OrdinalSuffix formats n with its English ordinal suffix.
func OrdinalSuffix(n int) string {
	abs := n
	if abs < 0 {
		abs = -abs
	}
	suffix := "th"
	switch abs % 100 {
	case 11, 12, 13:
	default:
		switch abs % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
