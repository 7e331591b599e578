package timerecording

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/timekeeper/internal"
	"github.com/frahmantamala/timekeeper/internal/auth"
	datamodel "github.com/frahmantamala/timekeeper/internal/core/datamodel/timerecording"
	"github.com/frahmantamala/timekeeper/internal/core/datamodel/user"
	"github.com/frahmantamala/timekeeper/internal/core/date"
	"github.com/frahmantamala/timekeeper/internal/core/events"
	"github.com/frahmantamala/timekeeper/internal/persistence"
	"github.com/frahmantamala/timekeeper/pkg/logger"
)

// Service applies the time recording rules on behalf of one acting user.
// Use ChangeUser to act as someone else against the same database.
type Service struct {
	db     *persistence.Database
	roles  *auth.RolesChecker
	cu     user.CurrentUser
	events events.Publisher
	logger *slog.Logger
}

func NewService(db *persistence.Database, roles *auth.RolesChecker, cu user.CurrentUser, publisher events.Publisher, lg *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.Discard{}
	}
	return &Service{
		db:     db,
		roles:  roles,
		cu:     cu,
		events: publisher,
		logger: lg.With("user", cu.Name),
	}
}

func (s *Service) ChangeUser(cu user.CurrentUser) *Service {
	return &Service{
		db:     s.db,
		roles:  s.roles,
		cu:     cu,
		events: s.events,
		logger: s.logger.With("user", cu.Name),
	}
}

func (s *Service) CurrentUser() user.CurrentUser {
	return s.cu
}

// actsFor reports whether the acting user may touch employee's time. The
// system user acts for everyone.
func (s *Service) actsFor(employee datamodel.EmployeeID) bool {
	return s.cu.Role == user.RoleSystem || s.cu.Employee.Is(employee)
}

func (s *Service) publish(event events.Event) {
	if err := s.events.Publish(context.Background(), event); err != nil {
		s.logger.Error("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}

// CreateTimeEntry stores a new entry. References, the period lock and the
// daily cap are all checked under the lock on the time entry collection,
// which project and employee deletion also hold while they look for usage.
func (s *Service) CreateTimeEntry(entry datamodel.TimeEntryPreDatabase) (RecordTimeResult, error) {
	if err := s.roles.CheckAllowed(s.cu, auth.OpRecordTime); err != nil {
		return RecordTimeResult{}, err
	}
	if !s.actsFor(entry.EmployeeID) {
		logger.Audit(s.logger, "time was not recorded: user does not own employee",
			"employee_id", entry.EmployeeID)
		return recorded(RecordUserEmployeeMismatch), nil
	}

	status := RecordSuccess
	var created datamodel.TimeEntry
	err := s.db.TimeEntries().ActOn(func(entries *persistence.ChangeTrackingSet[datamodel.TimeEntry]) error {
		if status = s.checkWritable(entry.EmployeeID, entry.ProjectID, entry.Date); status != RecordSuccess {
			return nil
		}
		existing := minutesOn(entries.ToList(), entry.EmployeeID, entry.Date, 0)
		if existing+entry.Minutes > datamodel.MaxMinutesPerDay {
			s.logger.Debug("more minutes entered than exist in a day",
				"existing", existing,
				"new", entry.Minutes)
			return internal.ErrExceededDailyHours
		}
		created = entry.WithID(datamodel.TimeEntryID(entries.NextIndex()))
		entries.Add(created)
		return nil
	})
	if err != nil {
		return RecordTimeResult{}, err
	}
	if status != RecordSuccess {
		return recorded(status), nil
	}

	logger.Audit(s.logger, "recorded time",
		"entry_id", created.ID,
		"employee_id", created.EmployeeID,
		"project_id", created.ProjectID,
		"minutes", created.Minutes,
		"date", created.Date)
	s.publish(events.NewTimeEntryEvent(events.EventTypeTimeEntryRecorded, s.cu.Name,
		int64(created.ID), int64(created.EmployeeID), int64(created.ProjectID), created.Minutes, created.Date.String()))
	return RecordTimeResult{Status: RecordSuccess, Entry: created}, nil
}

// ChangeEntry overwrites the entry with the same id. The entry may move to
// another date, but neither the old nor the new date may be locked.
func (s *Service) ChangeEntry(entry datamodel.TimeEntry) (RecordTimeResult, error) {
	if err := s.roles.CheckAllowed(s.cu, auth.OpRecordTime); err != nil {
		return RecordTimeResult{}, err
	}

	status := RecordSuccess
	err := s.db.TimeEntries().ActOn(func(entries *persistence.ChangeTrackingSet[datamodel.TimeEntry]) error {
		current, ok := entries.First(func(t datamodel.TimeEntry) bool { return t.ID == entry.ID })
		if !ok {
			return internal.ErrTimeEntryNotFound
		}
		if !s.actsFor(current.EmployeeID) || current.EmployeeID != entry.EmployeeID {
			logger.Audit(s.logger, "time entry was not changed: user does not own employee",
				"entry_id", entry.ID,
				"employee_id", entry.EmployeeID)
			status = RecordUserEmployeeMismatch
			return nil
		}
		if s.IsInASubmittedPeriod(current.EmployeeID, current.Date) {
			status = RecordLockedSubmitted
			return nil
		}
		if status = s.checkWritable(entry.EmployeeID, entry.ProjectID, entry.Date); status != RecordSuccess {
			return nil
		}
		existing := minutesOn(entries.ToList(), entry.EmployeeID, entry.Date, entry.ID)
		if existing+entry.Minutes > datamodel.MaxMinutesPerDay {
			return internal.ErrExceededDailyHours
		}
		entries.Replace(current, entry)
		return nil
	})
	if err != nil {
		return RecordTimeResult{}, err
	}
	if status != RecordSuccess {
		return recorded(status), nil
	}

	logger.Audit(s.logger, "changed time entry",
		"entry_id", entry.ID,
		"minutes", entry.Minutes,
		"date", entry.Date)
	s.publish(events.NewTimeEntryEvent(events.EventTypeTimeEntryChanged, s.cu.Name,
		int64(entry.ID), int64(entry.EmployeeID), int64(entry.ProjectID), entry.Minutes, entry.Date.String()))
	return RecordTimeResult{Status: RecordSuccess, Entry: entry}, nil
}

// DeleteTimeEntry removes the stored entry with entry's id. Ownership and
// the period lock are judged on the stored entry, not on the argument.
func (s *Service) DeleteTimeEntry(entry datamodel.TimeEntry) (bool, error) {
	if err := s.roles.CheckAllowed(s.cu, auth.OpRecordTime); err != nil {
		return false, err
	}

	var removed datamodel.TimeEntry
	deleted := false
	err := s.db.TimeEntries().ActOn(func(entries *persistence.ChangeTrackingSet[datamodel.TimeEntry]) error {
		current, ok := entries.First(func(t datamodel.TimeEntry) bool { return t.ID == entry.ID })
		if !ok {
			return nil
		}
		if !s.actsFor(current.EmployeeID) {
			logger.Audit(s.logger, "time entry was not deleted: user does not own employee", "entry_id", entry.ID)
			return internal.ErrUnpermittedOperation
		}
		if s.IsInASubmittedPeriod(current.EmployeeID, current.Date) {
			return internal.ErrPeriodLocked
		}
		deleted = entries.Remove(current)
		removed = current
		return nil
	})
	if err != nil {
		return false, err
	}
	if deleted {
		logger.Audit(s.logger, "deleted time entry", "entry_id", removed.ID)
		s.publish(events.NewTimeEntryEvent(events.EventTypeTimeEntryDeleted, s.cu.Name,
			int64(removed.ID), int64(removed.EmployeeID), int64(removed.ProjectID), removed.Minutes, removed.Date.String()))
	}
	return deleted, nil
}

// checkWritable must run under the time entry lock.
func (s *Service) checkWritable(employee datamodel.EmployeeID, project datamodel.ProjectID, d date.Date) RecordStatus {
	if status, ok := s.checkReferences(employee, project); !ok {
		return status
	}
	if s.IsInASubmittedPeriod(employee, d) {
		s.logger.Debug("time was not recorded: period is submitted", "date", d)
		return RecordLockedSubmitted
	}
	return RecordSuccess
}

func (s *Service) checkReferences(employee datamodel.EmployeeID, project datamodel.ProjectID) (RecordStatus, bool) {
	if _, ok := s.FindEmployeeByID(employee); !ok {
		s.logger.Debug("time was not recorded: no such employee", "employee_id", employee)
		return RecordInvalidEmployee, false
	}
	if _, ok := s.FindProjectByID(project); !ok {
		s.logger.Debug("time was not recorded: no such project", "project_id", project)
		return RecordInvalidProject, false
	}
	return RecordSuccess, true
}

// minutesOn sums the minutes employee has on d, leaving out the entry with
// id skip.
func minutesOn(entries []datamodel.TimeEntry, employee datamodel.EmployeeID, d date.Date, skip datamodel.TimeEntryID) int {
	total := 0
	for _, e := range entries {
		if e.EmployeeID == employee && e.Date == d && e.ID != skip {
			total += e.Minutes
		}
	}
	return total
}

func (s *Service) CreateProject(name string) (datamodel.Project, error) {
	if err := s.roles.CheckAllowed(s.cu, auth.OpCreateProject); err != nil {
		return datamodel.Project{}, err
	}

	var created datamodel.Project
	err := s.db.Projects().ActOn(func(projects *persistence.ChangeTrackingSet[datamodel.Project]) error {
		if _, dup := projects.First(func(p datamodel.Project) bool { return p.Name == name }); dup {
			return internal.ErrDuplicateProject
		}
		p, err := datamodel.NewProject(datamodel.ProjectID(projects.NextIndex()), name)
		if err != nil {
			return err
		}
		projects.Add(p)
		created = p
		return nil
	})
	if err != nil {
		return datamodel.Project{}, err
	}

	logger.Audit(s.logger, "created project", "project_id", created.ID, "name", created.Name)
	s.publish(events.NewDirectoryEvent(events.EventTypeProjectCreated, s.cu.Name, int64(created.ID), created.Name))
	return created, nil
}

// DeleteProject refuses while any time entry still points at the project.
// The usage check and the removal happen under the time entry lock, taken
// inside the project lock.
func (s *Service) DeleteProject(project datamodel.Project) (DeleteProjectResult, error) {
	if err := s.roles.CheckAllowed(s.cu, auth.OpDeleteProject); err != nil {
		return "", err
	}

	result := DeleteProjectDidNotExist
	err := s.db.Projects().ActOn(func(projects *persistence.ChangeTrackingSet[datamodel.Project]) error {
		return s.db.TimeEntries().ActOn(func(entries *persistence.ChangeTrackingSet[datamodel.TimeEntry]) error {
			if _, used := entries.First(func(t datamodel.TimeEntry) bool { return t.ProjectID == project.ID }); used {
				result = DeleteProjectUsed
				return nil
			}
			if projects.Remove(project) {
				result = DeleteProjectSuccess
			}
			return nil
		})
	})
	if err != nil {
		return "", err
	}
	if result != DeleteProjectSuccess {
		return result, nil
	}

	logger.Audit(s.logger, "deleted project", "project_id", project.ID, "name", project.Name)
	s.publish(events.NewDirectoryEvent(events.EventTypeProjectDeleted, s.cu.Name, int64(project.ID), project.Name))
	return DeleteProjectSuccess, nil
}

func (s *Service) CreateEmployee(name string) (datamodel.Employee, error) {
	if err := s.roles.CheckAllowed(s.cu, auth.OpCreateEmployee); err != nil {
		return datamodel.Employee{}, err
	}

	var created datamodel.Employee
	err := s.db.Employees().ActOn(func(employees *persistence.ChangeTrackingSet[datamodel.Employee]) error {
		if _, dup := employees.First(func(e datamodel.Employee) bool { return e.Name == name }); dup {
			return internal.ErrDuplicateEmployee
		}
		e, err := datamodel.NewEmployee(datamodel.EmployeeID(employees.NextIndex()), name)
		if err != nil {
			return err
		}
		employees.Add(e)
		created = e
		return nil
	})
	if err != nil {
		return datamodel.Employee{}, err
	}

	logger.Audit(s.logger, "created employee", "employee_id", created.ID, "name", created.Name)
	s.publish(events.NewDirectoryEvent(events.EventTypeEmployeeCreated, s.cu.Name, int64(created.ID), created.Name))
	return created, nil
}

// DeleteEmployee removes an employee nothing else depends on, together
// with any open invitation for it. It returns false when time entries,
// submitted periods or a user still reference the employee. Every
// collection that can reference an employee is locked, in load order,
// while usage is checked and the employee removed.
func (s *Service) DeleteEmployee(employee datamodel.Employee) (bool, error) {
	if err := s.roles.CheckAllowed(s.cu, auth.OpDeleteEmployee); err != nil {
		return false, err
	}

	inUse, deleted := false, false
	err := s.db.Employees().ActOn(func(employees *persistence.ChangeTrackingSet[datamodel.Employee]) error {
		return s.db.Users().ActOn(func(*persistence.ChangeTrackingSet[user.User]) error {
			return s.db.TimeEntries().ActOn(func(*persistence.ChangeTrackingSet[datamodel.TimeEntry]) error {
				return s.db.SubmittedPeriods().ActOn(func(*persistence.ChangeTrackingSet[datamodel.SubmittedPeriod]) error {
					if inUse = s.employeeInUse(employee.ID); inUse {
						return nil
					}
					return s.db.Invitations().ActOn(func(invitations *persistence.ChangeTrackingSet[user.Invitation]) error {
						for _, inv := range invitations.Find(func(i user.Invitation) bool { return i.EmployeeID == employee.ID }) {
							invitations.Remove(inv)
						}
						deleted = employees.Remove(employee)
						return nil
					})
				})
			})
		})
	})
	if err != nil {
		return false, err
	}
	if inUse {
		s.logger.Debug("employee was not deleted: still referenced", "employee_id", employee.ID)
		return false, nil
	}
	if !deleted {
		return false, nil
	}

	logger.Audit(s.logger, "deleted employee", "employee_id", employee.ID, "name", employee.Name)
	s.publish(events.NewDirectoryEvent(events.EventTypeEmployeeDeleted, s.cu.Name, int64(employee.ID), employee.Name))
	return true, nil
}

func (s *Service) employeeInUse(id datamodel.EmployeeID) bool {
	if _, ok := s.db.Users().Get(func(u user.User) bool { return u.Employee.Is(id) }); ok {
		return true
	}
	if _, ok := s.db.TimeEntries().Get(func(t datamodel.TimeEntry) bool { return t.EmployeeID == id }); ok {
		return true
	}
	_, ok := s.db.SubmittedPeriods().Get(func(p datamodel.SubmittedPeriod) bool { return p.EmployeeID == id })
	return ok
}
