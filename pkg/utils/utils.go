package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format used on the wire and in reminder messages.
const DateLayout = "2006-01-02"

// AddMonths adds calendar months to t, clamping the day to the last day of the
// target month: Jan 31 + 1 month is Feb 28 (or Feb 29 in a leap year), never Mar 3.
func AddMonths(t time.Time, months int) time.Time {
	year, month, day := t.Date()

	// First of the target month; time.Date normalises month overflow.
	first := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	if last := DaysInMonth(first); day > last {
		day = last
	}

	return time.Date(first.Year(), first.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// DaysInMonth returns the number of days in t's month
func DaysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

// CalculateDueDate returns the due date of the given 1-based period for a
// monthly schedule starting on startDate. Period 1 is due on the start date.
func CalculateDueDate(startDate time.Time, period int) time.Time {
	return AddMonths(startDate, period-1)
}

// DateOnly strips the clock from t and returns midnight UTC of the same calendar day
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the current UTC calendar date
func Today() time.Time {
	return DateOnly(time.Now().UTC())
}

// IsDateOverdue checks if dueDate lies strictly before today
func IsDateOverdue(dueDate time.Time, today time.Time) bool {
	return DateOnly(dueDate).Before(DateOnly(today))
}

// ParseDate parses a YYYY-MM-DD calendar date
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// RoundCurrency rounds to 2 decimal places, half away from zero
func RoundCurrency(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// DecimalFromString converts string to decimal.Decimal
func DecimalFromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}
