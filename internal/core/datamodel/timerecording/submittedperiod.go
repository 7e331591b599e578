package timerecording

import (
	"fmt"

	errors "github.com/frahmantamala/timekeeper/internal"
	"github.com/frahmantamala/timekeeper/internal/core/codec"
	"github.com/frahmantamala/timekeeper/internal/core/date"
)

const SubmittedPeriodsDirectory = "submittedperiods"

type ApprovalStatus string

const (
	Unapproved ApprovalStatus = "UNAPPROVED"
	Approved   ApprovalStatus = "APPROVED"
)

type SubmittedPeriodID int64

// SubmittedPeriod exists only while the period is submitted. Unsubmitting
// removes it; approval flips ApprovalStatus.
type SubmittedPeriod struct {
	ID             SubmittedPeriodID
	EmployeeID     EmployeeID
	Period         date.TimePeriod
	ApprovalStatus ApprovalStatus
}

func NewSubmittedPeriod(id SubmittedPeriodID, employee EmployeeID, period date.TimePeriod, status ApprovalStatus) (SubmittedPeriod, error) {
	if id < 1 {
		return SubmittedPeriod{}, errors.NewValidationFieldError("submitted_period_id", "submitted_period_id must be at least 1", errors.ErrCodeInvalidID)
	}
	if employee < 1 {
		return SubmittedPeriod{}, errors.NewValidationFieldError("employee_id", "employee_id must be at least 1", errors.ErrCodeInvalidID)
	}
	if _, err := date.MakePeriod(period.Start, period.End); err != nil {
		return SubmittedPeriod{}, err
	}
	if status != Unapproved && status != Approved {
		return SubmittedPeriod{}, errors.NewValidationFieldError("approval_status",
			fmt.Sprintf("unknown approval status %q", status), errors.ErrCodeValidationFailed)
	}
	return SubmittedPeriod{ID: id, EmployeeID: employee, Period: period, ApprovalStatus: status}, nil
}

func (s SubmittedPeriod) IsApproved() bool {
	return s.ApprovalStatus == Approved
}

func (s SubmittedPeriod) WithStatus(status ApprovalStatus) SubmittedPeriod {
	s.ApprovalStatus = status
	return s
}

func (s SubmittedPeriod) Index() int64 {
	return int64(s.ID)
}

func (s SubmittedPeriod) Fields() codec.Fields {
	return codec.Fields{}.
		AddInt("id", int64(s.ID)).
		AddInt("eid", int64(s.EmployeeID)).
		AddInt("start", s.Period.Start.Epoch()).
		AddInt("end", s.Period.End.Epoch()).
		Add("appr", string(s.ApprovalStatus))
}

func DeserializeSubmittedPeriod(text string, employeeExists func(EmployeeID) bool) (SubmittedPeriod, error) {
	r, err := codec.Decode(text)
	if err != nil {
		return SubmittedPeriod{}, err
	}
	var ints [4]int64
	for i, key := range []string{"id", "eid", "start", "end"} {
		if ints[i], err = r.Int(key); err != nil {
			return SubmittedPeriod{}, err
		}
	}
	appr, err := r.String("appr")
	if err != nil {
		return SubmittedPeriod{}, err
	}
	period, err := date.PeriodFromEpochs(ints[2], ints[3])
	if err != nil {
		return SubmittedPeriod{}, err
	}
	sp, err := NewSubmittedPeriod(SubmittedPeriodID(ints[0]), EmployeeID(ints[1]), period, ApprovalStatus(appr))
	if err != nil {
		return SubmittedPeriod{}, err
	}
	if !employeeExists(sp.EmployeeID) {
		return SubmittedPeriod{}, errors.ErrUnknownReference.WithMessage("submitted period %d references unknown employee %d", sp.ID, sp.EmployeeID)
	}
	return sp, nil
}
