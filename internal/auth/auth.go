package auth

import (
	"context"
	"errors"

	"github.com/frahmantamala/timekeeper/internal"
	"github.com/frahmantamala/timekeeper/internal/core/datamodel/user"
)

type RegistrationResult string

const (
	RegistrationSuccess           RegistrationResult = "SUCCESS"
	RegistrationEmptyPassword     RegistrationResult = "EMPTY_PASSWORD"
	RegistrationPasswordTooShort  RegistrationResult = "PASSWORD_TOO_SHORT"
	RegistrationPasswordTooLong   RegistrationResult = "PASSWORD_TOO_LONG"
	RegistrationBlacklisted       RegistrationResult = "BLACKLISTED_PASSWORD"
	RegistrationAlreadyRegistered RegistrationResult = "ALREADY_REGISTERED"
	RegistrationInvalidInvitation RegistrationResult = "INVALID_INVITATION"
)

type LoginResult string

const (
	LoginSuccess       LoginResult = "SUCCESS"
	LoginFailure       LoginResult = "FAILURE"
	LoginNotRegistered LoginResult = "NOT_REGISTERED"
)

type ChangePasswordResult string

const (
	PasswordChanged           ChangePasswordResult = "SUCCESS"
	PasswordChangeEmpty       ChangePasswordResult = "EMPTY_PASSWORD"
	PasswordChangeTooShort    ChangePasswordResult = "PASSWORD_TOO_SHORT"
	PasswordChangeTooLong     ChangePasswordResult = "PASSWORD_TOO_LONG"
	PasswordChangeBlacklisted ChangePasswordResult = "BLACKLISTED_PASSWORD"
)

const (
	MinPasswordLength = 12
	MaxPasswordLength = 255
)

var blacklistedPasswords = map[string]struct{}{
	"password":     {},
	"password1234": {},
	"123456789012": {},
}

var ErrPasswordMismatch = errors.New("password does not match")

// CurrentUserFromContext returns the user the session middleware resolved.
func CurrentUserFromContext(ctx context.Context) (user.CurrentUser, bool) {
	cu, ok := internal.UserFromContext(ctx).(user.CurrentUser)
	return cu, ok
}

func ContextWithCurrentUser(ctx context.Context, cu user.CurrentUser) context.Context {
	return internal.ContextWithUser(ctx, cu)
}
