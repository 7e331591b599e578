package timerecording

import (
	errors "github.com/frahmantamala/timekeeper/internal"
	"github.com/frahmantamala/timekeeper/internal/core/codec"
	"github.com/frahmantamala/timekeeper/internal/core/common/validation"
	"github.com/frahmantamala/timekeeper/internal/core/date"
)

const (
	TimeEntriesDirectory = "timeentries"
	MaxMinutesPerDay     = 24 * 60
	MaxDetailsLength     = 500
)

type TimeEntryID int64

type TimeEntry struct {
	ID         TimeEntryID
	EmployeeID EmployeeID
	ProjectID  ProjectID
	Minutes    int
	Date       date.Date
	Details    string
}

// TimeEntryPreDatabase is a time entry that has not been given an id yet.
type TimeEntryPreDatabase struct {
	EmployeeID EmployeeID
	ProjectID  ProjectID
	Minutes    int
	Date       date.Date
	Details    string
}

func validateEntryBody(employee EmployeeID, project ProjectID, minutes int, d date.Date, details string) error {
	v := validation.NewValidator()
	v.Field("employee_id", int64(employee)).MinInt(1, errors.ErrCodeInvalidID)
	v.Field("project_id", int64(project)).
		MinInt(1, errors.ErrCodeInvalidID).
		MaxInt(MaxProjectID, errors.ErrCodeInvalidID)
	v.Field("minutes", minutes).
		MinInt(0, errors.ErrCodeInvalidMinutes).
		MaxInt(MaxMinutesPerDay, errors.ErrCodeInvalidMinutes)
	v.Field("details", details).MaxLength(MaxDetailsLength, errors.ErrCodeInvalidDetails)
	v.Field("date", d).Custom(func(value interface{}) *errors.AppError {
		if value.(date.Date).IsZero() {
			return errors.NewValidationFieldError("date", "date is required", errors.ErrCodeInvalidDate)
		}
		return nil
	})
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

func NewTimeEntryPreDatabase(employee EmployeeID, project ProjectID, minutes int, d date.Date, details string) (TimeEntryPreDatabase, error) {
	if err := validateEntryBody(employee, project, minutes, d, details); err != nil {
		return TimeEntryPreDatabase{}, err
	}
	return TimeEntryPreDatabase{
		EmployeeID: employee,
		ProjectID:  project,
		Minutes:    minutes,
		Date:       d,
		Details:    details,
	}, nil
}

func NewTimeEntry(id TimeEntryID, employee EmployeeID, project ProjectID, minutes int, d date.Date, details string) (TimeEntry, error) {
	if id < 1 {
		return TimeEntry{}, errors.NewValidationFieldError("time_entry_id", "time_entry_id must be at least 1", errors.ErrCodeInvalidID)
	}
	if err := validateEntryBody(employee, project, minutes, d, details); err != nil {
		return TimeEntry{}, err
	}
	return TimeEntry{
		ID:         id,
		EmployeeID: employee,
		ProjectID:  project,
		Minutes:    minutes,
		Date:       d,
		Details:    details,
	}, nil
}

// WithID assigns the database id; the body was already validated.
func (p TimeEntryPreDatabase) WithID(id TimeEntryID) TimeEntry {
	return TimeEntry{
		ID:         id,
		EmployeeID: p.EmployeeID,
		ProjectID:  p.ProjectID,
		Minutes:    p.Minutes,
		Date:       p.Date,
		Details:    p.Details,
	}
}

func (t TimeEntry) Index() int64 {
	return int64(t.ID)
}

func (t TimeEntry) Fields() codec.Fields {
	return codec.Fields{}.
		AddInt("i", int64(t.ID)).
		AddInt("e", int64(t.EmployeeID)).
		AddInt("p", int64(t.ProjectID)).
		AddInt("t", int64(t.Minutes)).
		AddInt("d", t.Date.Epoch()).
		Add("dtl", t.Details)
}

// DeserializeTimeEntry rebuilds an entry and checks that the employee and
// project it points at have already been loaded.
func DeserializeTimeEntry(text string, employeeExists func(EmployeeID) bool, projectExists func(ProjectID) bool) (TimeEntry, error) {
	r, err := codec.Decode(text)
	if err != nil {
		return TimeEntry{}, err
	}
	var ints [5]int64
	for i, key := range []string{"i", "e", "p", "t", "d"} {
		if ints[i], err = r.Int(key); err != nil {
			return TimeEntry{}, err
		}
	}
	details, err := r.String("dtl")
	if err != nil {
		return TimeEntry{}, err
	}
	d, err := date.New(ints[4])
	if err != nil {
		return TimeEntry{}, err
	}
	entry, err := NewTimeEntry(TimeEntryID(ints[0]), EmployeeID(ints[1]), ProjectID(ints[2]), int(ints[3]), d, details)
	if err != nil {
		return TimeEntry{}, err
	}
	if !employeeExists(entry.EmployeeID) {
		return TimeEntry{}, errors.ErrUnknownReference.WithMessage("time entry %d references unknown employee %d", entry.ID, entry.EmployeeID)
	}
	if !projectExists(entry.ProjectID) {
		return TimeEntry{}, errors.ErrUnknownReference.WithMessage("time entry %d references unknown project %d", entry.ID, entry.ProjectID)
	}
	return entry, nil
}
