package user

import (
	"fmt"

	errors "github.com/frahmantamala/timekeeper/internal"
)

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleApprover Role = "APPROVER"
	RoleRegular  Role = "REGULAR"
	// RoleSystem is held only by SystemUser for automated actions.
	RoleSystem Role = "SYSTEM"
	RoleNone   Role = "NONE"
)

var AllRoles = []Role{RoleAdmin, RoleApprover, RoleRegular, RoleSystem, RoleNone}

func ParseRole(s string) (Role, error) {
	for _, r := range AllRoles {
		if string(r) == s {
			return r, nil
		}
	}
	return "", errors.NewValidationFieldError("role", fmt.Sprintf("unknown role %q", s), errors.ErrCodeInvalidRole)
}
