package timerecording

import (
	"log/slog"

	"github.com/frahmantamala/timekeeper/internal/auth"
	datamodel "github.com/frahmantamala/timekeeper/internal/core/datamodel/timerecording"
	"github.com/frahmantamala/timekeeper/internal/core/datamodel/user"
)

// UserLookup finds the user registered for an employee.
type UserLookup interface {
	GetUserByEmployee(employee datamodel.EmployeeID) (user.User, bool)
}

// EmployeeRemover deletes employees that nobody has registered as yet.
// Once a user owns the employee it is too late.
type EmployeeRemover struct {
	tr     *Service
	users  UserLookup
	logger *slog.Logger
}

func NewEmployeeRemover(tr *Service, users UserLookup, lg *slog.Logger) *EmployeeRemover {
	return &EmployeeRemover{tr: tr, users: users, logger: lg}
}

func (r *EmployeeRemover) DeleteEmployee(cu user.CurrentUser, employee datamodel.Employee) (DeleteEmployeeResult, error) {
	tr := r.tr.ChangeUser(cu)
	if err := tr.roles.CheckAllowed(cu, auth.OpDeleteEmployee); err != nil {
		return "", err
	}
	if u, registered := r.users.GetUserByEmployee(employee.ID); registered {
		r.logger.Warn("employee already has a user", "employee_id", employee.ID, "user", u.Name)
		return DeleteEmployeeTooLateRegistered, nil
	}

	deleted, err := tr.DeleteEmployee(employee)
	if err != nil {
		return "", err
	}
	if !deleted {
		return DeleteEmployeeDidNotDelete, nil
	}
	return DeleteEmployeeSuccess, nil
}
