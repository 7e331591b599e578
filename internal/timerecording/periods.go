package timerecording

import (
	"github.com/frahmantamala/timekeeper/internal"
	"github.com/frahmantamala/timekeeper/internal/auth"
	datamodel "github.com/frahmantamala/timekeeper/internal/core/datamodel/timerecording"
	"github.com/frahmantamala/timekeeper/internal/core/date"
	"github.com/frahmantamala/timekeeper/internal/core/events"
	"github.com/frahmantamala/timekeeper/internal/persistence"
	"github.com/frahmantamala/timekeeper/pkg/logger"
)

// A period moves Unsubmitted -> Submitted -> Approved. Submitted periods
// can be retracted; approved ones must be unapproved first.

func forPeriod(employee datamodel.EmployeeID, start date.Date) func(datamodel.SubmittedPeriod) bool {
	return func(p datamodel.SubmittedPeriod) bool {
		return p.EmployeeID == employee && p.Period.Start == start
	}
}

func (s *Service) ownEmployee() (datamodel.EmployeeID, error) {
	if !s.cu.Employee.Valid {
		return 0, internal.ErrEmployeeNotFound.WithMessage("user %s has no employee", s.cu.Name)
	}
	return s.cu.Employee.ID, nil
}

// SubmitTimePeriod marks the acting user's period as final.
func (s *Service) SubmitTimePeriod(period date.TimePeriod) (datamodel.SubmittedPeriod, error) {
	if err := s.roles.CheckAllowed(s.cu, auth.OpSubmitPeriod); err != nil {
		return datamodel.SubmittedPeriod{}, err
	}
	employee, err := s.ownEmployee()
	if err != nil {
		return datamodel.SubmittedPeriod{}, err
	}

	// Holding the time entry lock keeps entries from slipping into the
	// period while it is being submitted.
	var created datamodel.SubmittedPeriod
	err = s.db.TimeEntries().ActOn(func(*persistence.ChangeTrackingSet[datamodel.TimeEntry]) error {
		return s.db.SubmittedPeriods().ActOn(func(periods *persistence.ChangeTrackingSet[datamodel.SubmittedPeriod]) error {
			if existing, ok := periods.First(forPeriod(employee, period.Start)); ok {
				if existing.IsApproved() {
					return internal.ErrPeriodApproved
				}
				return internal.ErrPeriodSubmitted
			}
			sp, err := datamodel.NewSubmittedPeriod(datamodel.SubmittedPeriodID(periods.NextIndex()), employee, period, datamodel.Unapproved)
			if err != nil {
				return err
			}
			periods.Add(sp)
			created = sp
			return nil
		})
	})
	if err != nil {
		return datamodel.SubmittedPeriod{}, err
	}

	logger.Audit(s.logger, "submitted time period", "employee_id", employee, "period", period)
	s.publish(events.NewPeriodEvent(events.EventTypePeriodSubmitted, s.cu.Name,
		int64(employee), period.Start.String(), period.End.String()))
	return created, nil
}

func (s *Service) UnsubmitTimePeriod(period date.TimePeriod) error {
	if err := s.roles.CheckAllowed(s.cu, auth.OpSubmitPeriod); err != nil {
		return err
	}
	employee, err := s.ownEmployee()
	if err != nil {
		return err
	}

	err = s.db.SubmittedPeriods().ActOn(func(periods *persistence.ChangeTrackingSet[datamodel.SubmittedPeriod]) error {
		existing, ok := periods.First(forPeriod(employee, period.Start))
		if !ok {
			return internal.ErrPeriodNotSubmitted
		}
		if existing.IsApproved() {
			return internal.ErrPeriodApproved
		}
		periods.Remove(existing)
		return nil
	})
	if err != nil {
		return err
	}

	logger.Audit(s.logger, "unsubmitted time period", "employee_id", employee, "period", period)
	s.publish(events.NewPeriodEvent(events.EventTypePeriodUnsubmitted, s.cu.Name,
		int64(employee), period.Start.String(), period.End.String()))
	return nil
}

// ApproveTimesheet approves the submitted period of employee that contains
// start.
func (s *Service) ApproveTimesheet(employee datamodel.EmployeeID, start date.Date) error {
	return s.setApproval(employee, start, datamodel.Approved)
}

// UnapproveTimesheet returns an approved period to plain submitted.
func (s *Service) UnapproveTimesheet(employee datamodel.EmployeeID, start date.Date) error {
	return s.setApproval(employee, start, datamodel.Unapproved)
}

func (s *Service) setApproval(employee datamodel.EmployeeID, start date.Date, status datamodel.ApprovalStatus) error {
	if err := s.roles.CheckAllowed(s.cu, auth.OpApproveTimesheet); err != nil {
		return err
	}
	period := date.PeriodForDate(start)

	err := s.db.SubmittedPeriods().ActOn(func(periods *persistence.ChangeTrackingSet[datamodel.SubmittedPeriod]) error {
		existing, ok := periods.First(forPeriod(employee, period.Start))
		if !ok {
			return internal.ErrPeriodNotSubmitted
		}
		if existing.ApprovalStatus == status {
			if status == datamodel.Approved {
				return internal.ErrPeriodApproved
			}
			return internal.ErrPeriodNotApproved
		}
		periods.Replace(existing, existing.WithStatus(status))
		return nil
	})
	if err != nil {
		return err
	}

	eventType := events.EventTypeTimesheetApproved
	if status == datamodel.Unapproved {
		eventType = events.EventTypeTimesheetUnapproved
	}
	logger.Audit(s.logger, "changed timesheet approval",
		"employee_id", employee,
		"period", period,
		"status", status)
	s.publish(events.NewPeriodEvent(eventType, s.cu.Name, int64(employee), period.Start.String(), period.End.String()))
	return nil
}

func (s *Service) IsApproved(employee datamodel.EmployeeID, start date.Date) bool {
	sp, ok := s.db.SubmittedPeriods().Get(forPeriod(employee, date.PeriodForDate(start).Start))
	return ok && sp.IsApproved()
}

// GetSubmittedTimePeriod looks up the acting user's submission for period.
func (s *Service) GetSubmittedTimePeriod(period date.TimePeriod) (datamodel.SubmittedPeriod, bool) {
	if !s.cu.Employee.Valid {
		return datamodel.SubmittedPeriod{}, false
	}
	return s.db.SubmittedPeriods().Get(forPeriod(s.cu.Employee.ID, period.Start))
}

// IsInASubmittedPeriod reports whether d is locked for employee, either
// submitted or approved.
func (s *Service) IsInASubmittedPeriod(employee datamodel.EmployeeID, d date.Date) bool {
	_, ok := s.db.SubmittedPeriods().Get(forPeriod(employee, d.Sunday()))
	return ok
}
