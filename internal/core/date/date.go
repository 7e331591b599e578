// Package date models calendar days and the weekly periods time is
// submitted against.
package date

import (
	"fmt"
	"time"

	errors "github.com/frahmantamala/timekeeper/internal"
)

const (
	layout     = "2006-01-02"
	secondsDay = 24 * 60 * 60
)

// Date counts days since 1970-01-01 UTC.
type Date struct {
	epochDay int64
}

var (
	Min = mustMake("1980-01-01")
	Max = mustMake("2200-01-01")
)

func New(epochDay int64) (Date, error) {
	d := Date{epochDay: epochDay}
	if d.Before(Min) || d.After(Max) {
		return Date{}, errors.NewValidationFieldError("date",
			fmt.Sprintf("date must be between %s and %s", Min, Max), errors.ErrCodeInvalidDate)
	}
	return d, nil
}

// Make parses a YYYY-MM-DD string.
func Make(s string) (Date, error) {
	t, err := time.Parse(layout, s)
	if err != nil {
		return Date{}, errors.NewValidationFieldError("date",
			fmt.Sprintf("date %q must be formatted YYYY-MM-DD", s), errors.ErrCodeInvalidDate)
	}
	return FromTime(t)
}

func FromTime(t time.Time) (Date, error) {
	y, m, d := t.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return New(midnight.Unix() / secondsDay)
}

func mustMake(s string) Date {
	t, err := time.Parse(layout, s)
	if err != nil {
		panic(err)
	}
	return Date{epochDay: t.Unix() / secondsDay}
}

func (d Date) Epoch() int64 {
	return d.epochDay
}

func (d Date) Time() time.Time {
	return time.Unix(d.epochDay*secondsDay, 0).UTC()
}

func (d Date) String() string {
	return d.Time().Format(layout)
}

func (d Date) DayOfWeek() time.Weekday {
	return d.Time().Weekday()
}

func (d Date) AddDays(n int64) Date {
	return Date{epochDay: d.epochDay + n}
}

// Sunday is the first day of the week containing d.
func (d Date) Sunday() Date {
	return d.AddDays(-int64(d.DayOfWeek()))
}

func (d Date) Before(other Date) bool { return d.epochDay < other.epochDay }
func (d Date) After(other Date) bool  { return d.epochDay > other.epochDay }

// IsZero reports an unset Date; 1970-01-01 is outside the valid range.
func (d Date) IsZero() bool {
	return d.epochDay == 0
}
