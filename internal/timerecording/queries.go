package timerecording

import (
	"github.com/frahmantamala/timekeeper/internal"
	"github.com/frahmantamala/timekeeper/internal/auth"
	datamodel "github.com/frahmantamala/timekeeper/internal/core/datamodel/timerecording"
	"github.com/frahmantamala/timekeeper/internal/core/datamodel/user"
	"github.com/frahmantamala/timekeeper/internal/core/date"
	"github.com/frahmantamala/timekeeper/pkg/logger"
)

// checkReadEntries lets approvers and admins read anyone's entries. A
// regular user only reads their own.
func (s *Service) checkReadEntries(employee datamodel.EmployeeID) error {
	if err := s.roles.CheckAllowed(s.cu, auth.OpReadTimeEntries); err != nil {
		return err
	}
	if s.cu.Role == user.RoleRegular && !s.actsFor(employee) {
		logger.Audit(s.logger, "refused to read another employee's time entries", "employee_id", employee)
		return internal.ErrUnpermittedOperation
	}
	return nil
}

func (s *Service) GetEntriesForEmployeeOnDate(employee datamodel.EmployeeID, d date.Date) ([]datamodel.TimeEntry, error) {
	if err := s.checkReadEntries(employee); err != nil {
		return nil, err
	}
	return s.db.TimeEntries().Find(func(t datamodel.TimeEntry) bool {
		return t.EmployeeID == employee && t.Date == d
	}), nil
}

func (s *Service) GetAllEntriesForEmployee(employee datamodel.EmployeeID) ([]datamodel.TimeEntry, error) {
	if err := s.checkReadEntries(employee); err != nil {
		return nil, err
	}
	return s.db.TimeEntries().Find(func(t datamodel.TimeEntry) bool {
		return t.EmployeeID == employee
	}), nil
}

func (s *Service) GetTimeEntriesForTimePeriod(employee datamodel.EmployeeID, period date.TimePeriod) ([]datamodel.TimeEntry, error) {
	if err := s.checkReadEntries(employee); err != nil {
		return nil, err
	}
	return s.db.TimeEntries().Find(func(t datamodel.TimeEntry) bool {
		return t.EmployeeID == employee && period.Contains(t.Date)
	}), nil
}

// QueryMinutesRecorded totals what employee has recorded on d.
func (s *Service) QueryMinutesRecorded(employee datamodel.EmployeeID, d date.Date) int {
	return minutesOn(s.db.TimeEntries().GetAll(), employee, d, 0)
}

// GetTimeForWeek totals the week containing d.
func (s *Service) GetTimeForWeek(employee datamodel.EmployeeID, d date.Date) int {
	period := date.PeriodForDate(d)
	total := 0
	for _, t := range s.db.TimeEntries().GetAll() {
		if t.EmployeeID == employee && period.Contains(t.Date) {
			total += t.Minutes
		}
	}
	return total
}

func (s *Service) ListAllProjects() ([]datamodel.Project, error) {
	if err := s.roles.CheckAllowed(s.cu, auth.OpListProjects); err != nil {
		return nil, err
	}
	return s.db.Projects().GetAll(), nil
}

func (s *Service) ListAllEmployees() ([]datamodel.Employee, error) {
	if err := s.roles.CheckAllowed(s.cu, auth.OpListEmployees); err != nil {
		return nil, err
	}
	return s.db.Employees().GetAll(), nil
}

func (s *Service) FindProjectByID(id datamodel.ProjectID) (datamodel.Project, bool) {
	return s.db.Projects().Get(func(p datamodel.Project) bool { return p.ID == id })
}

func (s *Service) FindProjectByName(name string) (datamodel.Project, bool) {
	return s.db.Projects().Get(func(p datamodel.Project) bool { return p.Name == name })
}

func (s *Service) FindEmployeeByID(id datamodel.EmployeeID) (datamodel.Employee, bool) {
	return s.db.Employees().Get(func(e datamodel.Employee) bool { return e.ID == id })
}

func (s *Service) FindEmployeeByName(name string) (datamodel.Employee, bool) {
	return s.db.Employees().Get(func(e datamodel.Employee) bool { return e.Name == name })
}

func (s *Service) FindTimeEntryByID(id datamodel.TimeEntryID) (datamodel.TimeEntry, bool) {
	return s.db.TimeEntries().Get(func(t datamodel.TimeEntry) bool { return t.ID == id })
}
