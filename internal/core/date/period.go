package date

import (
	"fmt"
	"time"

	errors "github.com/frahmantamala/timekeeper/internal"
)

// TimePeriod is one week, Sunday through Saturday inclusive.
type TimePeriod struct {
	Start Date
	End   Date
}

func PeriodForDate(d Date) TimePeriod {
	start := d.Sunday()
	return TimePeriod{Start: start, End: start.AddDays(6)}
}

// MakePeriod accepts only a well-formed week that holds at least one valid
// date. The weeks around Min and Max spill past the range on one side.
func MakePeriod(start, end Date) (TimePeriod, error) {
	p := PeriodForDate(start)
	if p.Start != start || p.End != end {
		return TimePeriod{}, errors.NewValidationFieldError("period",
			fmt.Sprintf("period %s..%s is not a Sunday to Saturday week", start, end), errors.ErrCodeInvalidDate)
	}
	if p.End.Before(Min) || p.Start.After(Max) {
		return TimePeriod{}, errors.NewValidationFieldError("period",
			fmt.Sprintf("period %s..%s is outside %s..%s", start, end, Min, Max), errors.ErrCodeInvalidDate)
	}
	return p, nil
}

// PeriodFromEpochs rebuilds a stored week from its boundary days. Those
// days are not range-checked one by one, see MakePeriod.
func PeriodFromEpochs(start, end int64) (TimePeriod, error) {
	return MakePeriod(Date{epochDay: start}, Date{epochDay: end})
}

func ParsePeriod(start, end string) (TimePeriod, error) {
	s, err := Make(start)
	if err != nil {
		return TimePeriod{}, err
	}
	e, err := Make(end)
	if err != nil {
		return TimePeriod{}, err
	}
	return MakePeriod(s, e)
}

func (p TimePeriod) Contains(d Date) bool {
	return !d.Before(p.Start) && !d.After(p.End)
}

func (p TimePeriod) Next() TimePeriod {
	return PeriodForDate(p.End.AddDays(1))
}

func (p TimePeriod) Previous() TimePeriod {
	return PeriodForDate(p.Start.AddDays(-1))
}

func (p TimePeriod) NumberOfWeekdays() int {
	count := 0
	for d := p.Start; !d.After(p.End); d = d.AddDays(1) {
		if wd := d.DayOfWeek(); wd != time.Saturday && wd != time.Sunday {
			count++
		}
	}
	return count
}

func (p TimePeriod) String() string {
	return fmt.Sprintf("%s..%s", p.Start, p.End)
}
