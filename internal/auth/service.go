package auth

import (
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/frahmantamala/timekeeper/internal"
	"github.com/frahmantamala/timekeeper/internal/core/datamodel/timerecording"
	"github.com/frahmantamala/timekeeper/internal/core/datamodel/user"
	"github.com/frahmantamala/timekeeper/internal/persistence"
	"github.com/frahmantamala/timekeeper/pkg/logger"
)

const tokenAttempts = 3

// Service is the main auth service with dependencies
type Service struct {
	db     *persistence.Database
	roles  *RolesChecker
	hasher PasswordHasher
	now    func() time.Time
	logger *slog.Logger
}

type Option func(*Service)

// WithPasswordParams is mostly for tests, where the default argon2 cost
// makes suites slow.
func WithPasswordParams(params Argon2idParams) Option {
	return func(s *Service) {
		s.hasher = NewPasswordHasher(params)
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new auth service
func NewService(db *persistence.Database, roles *RolesChecker, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		db:     db,
		roles:  roles,
		hasher: NewPasswordHasher(DefaultArgon2idParams),
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func checkPassword(password string) RegistrationResult {
	length := utf8.RuneCountInString(password)
	switch {
	case length == 0:
		return RegistrationEmptyPassword
	case length < MinPasswordLength:
		return RegistrationPasswordTooShort
	case length > MaxPasswordLength:
		return RegistrationPasswordTooLong
	}
	if _, bad := blacklistedPasswords[password]; bad {
		return RegistrationBlacklisted
	}
	return RegistrationSuccess
}

// Register creates a user for the employee named by the invitation and
// consumes the invitation. The very first user becomes an admin.
func (s *Service) Register(username, password, invitationCode string) (RegistrationResult, error) {
	if result := checkPassword(password); result != RegistrationSuccess {
		s.logger.Warn("registration rejected", "username", username, "result", result)
		return result, nil
	}
	if _, taken := s.FindUserByName(username); taken {
		s.logger.Warn("registration rejected", "username", username, "result", RegistrationAlreadyRegistered)
		return RegistrationAlreadyRegistered, nil
	}

	invitation, found, err := s.consumeInvitation(invitationCode)
	if err != nil {
		return "", err
	}
	if !found {
		s.logger.Warn("registration with unknown invitation", "username", username)
		return RegistrationInvalidInvitation, nil
	}

	hash, salt, err := s.hasher.Hash(password)
	if err != nil {
		s.restoreInvitation(invitation)
		return "", internal.NewInternalError("failed to hash password", err)
	}

	result := RegistrationSuccess
	var created user.User
	err = s.db.Users().ActOn(func(users *persistence.ChangeTrackingSet[user.User]) error {
		if _, taken := users.First(byName(username)); taken {
			result = RegistrationAlreadyRegistered
			return nil
		}
		if !s.employeeExists(invitation.EmployeeID) {
			result = RegistrationInvalidInvitation
			return nil
		}
		role := user.RoleRegular
		if users.Len() == 0 {
			role = user.RoleAdmin
		}
		u, err := user.NewUser(user.UserID(users.NextIndex()), username, hash, salt,
			timerecording.SomeEmployee(invitation.EmployeeID), role)
		if err != nil {
			return err
		}
		users.Add(u)
		created = u
		return nil
	})
	if err != nil {
		s.restoreInvitation(invitation)
		return "", err
	}
	if result != RegistrationSuccess {
		s.restoreInvitation(invitation)
		return result, nil
	}

	logger.Audit(s.logger, "user registered",
		"user_id", created.ID,
		"username", created.Name,
		"employee_id", invitation.EmployeeID,
		"role", created.Role)
	return RegistrationSuccess, nil
}

func (s *Service) consumeInvitation(code string) (user.Invitation, bool, error) {
	var (
		invitation user.Invitation
		found      bool
	)
	err := s.db.Invitations().ActOn(func(invitations *persistence.ChangeTrackingSet[user.Invitation]) error {
		invitation, found = invitations.First(func(i user.Invitation) bool { return i.Code == code })
		if found {
			invitations.Remove(invitation)
		}
		return nil
	})
	return invitation, found, err
}

// restoreInvitation puts back an invitation a failed registration consumed,
// unless its employee was deleted in the meantime.
func (s *Service) restoreInvitation(invitation user.Invitation) {
	err := s.db.Invitations().ActOn(func(invitations *persistence.ChangeTrackingSet[user.Invitation]) error {
		if !s.employeeExists(invitation.EmployeeID) {
			s.logger.Warn("invitation not restored: employee is gone", "employee_id", invitation.EmployeeID)
			return nil
		}
		invitations.Add(invitation)
		return nil
	})
	if err != nil {
		s.logger.Error("failed to restore invitation", "employee_id", invitation.EmployeeID, "error", err)
	}
}

func (s *Service) employeeExists(id timerecording.EmployeeID) bool {
	_, ok := s.db.Employees().Get(func(e timerecording.Employee) bool { return e.ID == id })
	return ok
}

func (s *Service) Login(username, password string) (LoginResult, user.User) {
	u, ok := s.FindUserByName(username)
	if !ok {
		s.logger.Warn("login for unregistered user", "username", username)
		return LoginNotRegistered, user.User{}
	}
	if err := s.hasher.Verify(password, u.Hash, u.Salt); err != nil {
		s.logger.Warn("login failed", "username", username, "error", err)
		return LoginFailure, user.User{}
	}
	logger.Audit(s.logger, "user logged in", "user_id", u.ID, "username", u.Name)
	return LoginSuccess, u
}

// CreateNewSession stores a new session for u and returns its token.
func (s *Service) CreateNewSession(u user.User, now time.Time) (string, error) {
	var token string
	err := s.db.Sessions().ActOn(func(sessions *persistence.ChangeTrackingSet[user.Session]) error {
		for attempt := 0; attempt < tokenAttempts; attempt++ {
			candidate, err := GenerateRandomToken()
			if err != nil {
				return internal.NewInternalError("failed to generate session token", err)
			}
			if _, dup := sessions.First(byToken(candidate)); !dup {
				token = candidate
				break
			}
		}
		if token == "" {
			return internal.NewInternalError("could not generate a unique session token", nil)
		}

		session, err := user.NewSession(user.SessionID(sessions.NextIndex()), token, u.ID, now)
		if err != nil {
			return err
		}
		sessions.Add(session)
		return nil
	})
	if err != nil {
		return "", err
	}
	logger.Trace(s.logger, "session created", "user_id", u.ID)
	return token, nil
}

// GetUserForSession resolves a token to the user's current record.
func (s *Service) GetUserForSession(token string) (user.User, bool) {
	if token == "" {
		return user.User{}, false
	}
	session, ok := s.db.Sessions().Get(byToken(token))
	if !ok {
		return user.User{}, false
	}
	return s.db.Users().Get(func(u user.User) bool { return u.ID == session.UserID })
}

// Logout ends every session u has, not just the current one.
func (s *Service) Logout(u user.User) int {
	removed := 0
	err := s.db.Sessions().ActOn(func(sessions *persistence.ChangeTrackingSet[user.Session]) error {
		for _, session := range sessions.Find(func(x user.Session) bool { return x.UserID == u.ID }) {
			if sessions.Remove(session) {
				removed++
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("failed to persist logout", "user_id", u.ID, "error", err)
	}
	logger.Audit(s.logger, "user logged out", "user_id", u.ID, "sessions_removed", removed)
	return removed
}

func (s *Service) ChangePassword(cu user.CurrentUser, password string) (ChangePasswordResult, error) {
	if err := s.roles.CheckAllowed(cu, OpChangeOwnPassword); err != nil {
		return "", err
	}
	switch checkPassword(password) {
	case RegistrationEmptyPassword:
		return PasswordChangeEmpty, nil
	case RegistrationPasswordTooShort:
		return PasswordChangeTooShort, nil
	case RegistrationPasswordTooLong:
		return PasswordChangeTooLong, nil
	case RegistrationBlacklisted:
		return PasswordChangeBlacklisted, nil
	}

	hash, salt, err := s.hasher.Hash(password)
	if err != nil {
		return "", internal.NewInternalError("failed to hash password", err)
	}
	if _, err := s.updateUser(cu.ID, func(u user.User) user.User { return u.WithPassword(hash, salt) }); err != nil {
		return "", err
	}
	logger.Audit(s.logger, "password changed", "user_id", cu.ID)
	return PasswordChanged, nil
}

func (s *Service) AddRoleToUser(cu user.CurrentUser, target user.User, role user.Role) (user.User, error) {
	if err := s.roles.CheckAllowed(cu, OpSetRole); err != nil {
		return user.User{}, err
	}
	if role == user.RoleSystem {
		return user.User{}, internal.NewValidationFieldError("role", "the system role cannot be assigned", internal.ErrCodeInvalidRole)
	}
	updated, err := s.updateUser(target.ID, func(u user.User) user.User { return u.WithRole(role) })
	if err != nil {
		return user.User{}, err
	}
	logger.Audit(s.logger, "role changed",
		"by", cu.Name,
		"user_id", updated.ID,
		"username", updated.Name,
		"role", role)
	return updated, nil
}

func (s *Service) updateUser(id user.UserID, change func(user.User) user.User) (user.User, error) {
	var updated user.User
	err := s.db.Users().ActOn(func(users *persistence.ChangeTrackingSet[user.User]) error {
		current, ok := users.First(func(u user.User) bool { return u.ID == id })
		if !ok {
			return internal.ErrUserNotFound
		}
		updated = change(current)
		users.Replace(current, updated)
		return nil
	})
	return updated, err
}

// CreateInvitation issues a fresh code for employeeID, replacing any older
// one for the same employee.
func (s *Service) CreateInvitation(cu user.CurrentUser, employeeID timerecording.EmployeeID) (user.Invitation, error) {
	if err := s.roles.CheckAllowed(cu, OpManageInvitations); err != nil {
		return user.Invitation{}, err
	}

	// Employee deletion removes invitations under this same lock, so the
	// existence check belongs inside it.
	var created user.Invitation
	err := s.db.Invitations().ActOn(func(invitations *persistence.ChangeTrackingSet[user.Invitation]) error {
		if !s.employeeExists(employeeID) {
			return internal.ErrEmployeeNotFound
		}
		for _, old := range invitations.Find(byEmployee(employeeID)) {
			invitations.Remove(old)
		}
		inv, err := user.NewInvitation(user.InvitationID(invitations.NextIndex()), employeeID, uuid.NewString(), s.now())
		if err != nil {
			return err
		}
		invitations.Add(inv)
		created = inv
		return nil
	})
	if err != nil {
		return user.Invitation{}, err
	}
	logger.Audit(s.logger, "invitation created", "by", cu.Name, "employee_id", employeeID)
	return created, nil
}

func (s *Service) RemoveInvitation(cu user.CurrentUser, employeeID timerecording.EmployeeID) (bool, error) {
	if err := s.roles.CheckAllowed(cu, OpManageInvitations); err != nil {
		return false, err
	}
	removed := false
	err := s.db.Invitations().ActOn(func(invitations *persistence.ChangeTrackingSet[user.Invitation]) error {
		for _, inv := range invitations.Find(byEmployee(employeeID)) {
			removed = invitations.Remove(inv) || removed
		}
		return nil
	})
	if removed {
		logger.Audit(s.logger, "invitation removed", "by", cu.Name, "employee_id", employeeID)
	}
	return removed, err
}

func (s *Service) ListAllInvitations(cu user.CurrentUser) ([]user.Invitation, error) {
	if err := s.roles.CheckAllowed(cu, OpListInvitations); err != nil {
		return nil, err
	}
	return s.db.Invitations().GetAll(), nil
}

func (s *Service) ListAllUsers(cu user.CurrentUser) ([]user.User, error) {
	if err := s.roles.CheckAllowed(cu, OpListUsers); err != nil {
		return nil, err
	}
	return s.db.Users().GetAll(), nil
}

func (s *Service) GetUserByEmployee(employeeID timerecording.EmployeeID) (user.User, bool) {
	return s.db.Users().Get(func(u user.User) bool { return u.Employee.Is(employeeID) })
}

func (s *Service) FindUserByName(name string) (user.User, bool) {
	return s.db.Users().Get(byName(name))
}

func byName(name string) func(user.User) bool {
	return func(u user.User) bool { return u.Name == name }
}

func byToken(token string) func(user.Session) bool {
	return func(s user.Session) bool { return s.Token == token }
}

func byEmployee(id timerecording.EmployeeID) func(user.Invitation) bool {
	return func(i user.Invitation) bool { return i.EmployeeID == id }
}
