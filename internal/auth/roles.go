package auth

import (
	"log/slog"

	"github.com/frahmantamala/timekeeper/internal"
	"github.com/frahmantamala/timekeeper/internal/core/datamodel/user"
)

// Operation names a role-gated action.
type Operation string

const (
	OpRecordTime        Operation = "record_time"
	OpSubmitPeriod      Operation = "submit_period"
	OpReadTimeEntries   Operation = "read_time_entries"
	OpListProjects      Operation = "list_projects"
	OpFindEmployee      Operation = "find_employee"
	OpCreateEmployee    Operation = "create_employee"
	OpCreateProject     Operation = "create_project"
	OpDeleteEmployee    Operation = "delete_employee"
	OpDeleteProject     Operation = "delete_project"
	OpListUsers         Operation = "list_users"
	OpListInvitations   Operation = "list_invitations"
	OpChangeLogSettings Operation = "change_log_settings"
	OpApproveTimesheet  Operation = "approve_timesheet"
	OpListEmployees     Operation = "list_employees"
	OpSetRole           Operation = "set_role"
	OpManageInvitations Operation = "manage_invitations"
	OpChangeOwnPassword Operation = "change_own_password"
)

var (
	staff     = []user.Role{user.RoleAdmin, user.RoleApprover, user.RoleRegular}
	adminOnly = []user.Role{user.RoleAdmin}
	setup     = []user.Role{user.RoleAdmin, user.RoleSystem}
)

// Policy is the complete authorization table. An operation missing here is
// allowed to nobody.
var Policy = map[Operation][]user.Role{
	OpRecordTime:        staff,
	OpSubmitPeriod:      staff,
	OpReadTimeEntries:   staff,
	OpListProjects:      staff,
	OpFindEmployee:      staff,
	OpChangeOwnPassword: staff,

	OpCreateEmployee:    setup,
	OpCreateProject:     setup,
	OpSetRole:           setup,
	OpManageInvitations: setup,

	OpDeleteEmployee:    adminOnly,
	OpDeleteProject:     adminOnly,
	OpListUsers:         adminOnly,
	OpListInvitations:   adminOnly,
	OpChangeLogSettings: adminOnly,

	OpApproveTimesheet: {user.RoleAdmin, user.RoleApprover},
	OpListEmployees:    user.AllRoles,
}

func IsAllowed(role user.Role, op Operation) bool {
	for _, r := range Policy[op] {
		if r == role {
			return true
		}
	}
	return false
}

type RolesChecker struct {
	logger *slog.Logger
}

func NewRolesChecker(logger *slog.Logger) *RolesChecker {
	return &RolesChecker{logger: logger}
}

// CheckAllowed is the single gate every role-restricted call goes through.
func (c *RolesChecker) CheckAllowed(cu user.CurrentUser, op Operation) error {
	if IsAllowed(cu.Role, op) {
		return nil
	}
	c.logger.Warn("unpermitted operation",
		"user", cu.Name,
		"user_id", cu.ID,
		"role", cu.Role,
		"operation", op)
	return internal.ErrUnpermittedOperation
}
