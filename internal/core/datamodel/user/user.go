package user

import (
	"strconv"

	errors "github.com/frahmantamala/timekeeper/internal"
	"github.com/frahmantamala/timekeeper/internal/core/codec"
	"github.com/frahmantamala/timekeeper/internal/core/common/validation"
	"github.com/frahmantamala/timekeeper/internal/core/datamodel/timerecording"
)

const (
	UsersDirectory = "users"
	MinUserName    = 3
	MaxUserName    = 50
)

type UserID int64

type User struct {
	ID       UserID
	Name     string
	Hash     string
	Salt     string
	Employee timerecording.NullEmployeeID
	Role     Role
}

func NewUser(id UserID, name, hash, salt string, employee timerecording.NullEmployeeID, role Role) (User, error) {
	v := validation.NewValidator()
	v.Field("user_id", int64(id)).MinInt(1, errors.ErrCodeInvalidID)
	v.Field("username", name).
		Required().
		MinLength(MinUserName, errors.ErrCodeInvalidName).
		MaxLength(MaxUserName, errors.ErrCodeInvalidName)
	v.Field("role", string(role)).OneOf([]string{
		string(RoleAdmin), string(RoleApprover), string(RoleRegular), string(RoleNone),
	}, errors.ErrCodeInvalidRole)
	if err := v.Validate(); err != nil {
		return User{}, err
	}
	return User{ID: id, Name: name, Hash: hash, Salt: salt, Employee: employee, Role: role}, nil
}

// WithRole and WithPassword return updated copies for Replace.
func (u User) WithRole(role Role) User {
	u.Role = role
	return u
}

func (u User) WithPassword(hash, salt string) User {
	u.Hash = hash
	u.Salt = salt
	return u
}

func (u User) Index() int64 {
	return int64(u.ID)
}

func (u User) Fields() codec.Fields {
	return codec.Fields{}.
		AddInt("id", int64(u.ID)).
		Add("name", u.Name).
		Add("hash", u.Hash).
		Add("salt", u.Salt).
		Add("empId", u.Employee.String()).
		Add("role", string(u.Role))
}

func DeserializeUser(text string, employeeExists func(timerecording.EmployeeID) bool) (User, error) {
	r, err := codec.Decode(text)
	if err != nil {
		return User{}, err
	}
	id, err := r.Int("id")
	if err != nil {
		return User{}, err
	}
	var s [5]string
	for i, key := range []string{"name", "hash", "salt", "empId", "role"} {
		if s[i], err = r.String(key); err != nil {
			return User{}, err
		}
	}

	var employee timerecording.NullEmployeeID
	if s[3] != "" {
		eid, err := strconv.ParseInt(s[3], 10, 64)
		if err != nil {
			return User{}, errors.ErrMalformedRecord.WithMessage("user %d has a bad employee id", id).WithCause(err)
		}
		employee = timerecording.SomeEmployee(timerecording.EmployeeID(eid))
		if !employeeExists(employee.ID) {
			return User{}, errors.ErrUnknownReference.WithMessage("user %d references unknown employee %d", id, eid)
		}
	}

	return NewUser(UserID(id), s[0], s[1], s[2], employee, Role(s[4]))
}

// SystemUser acts for automated jobs such as first-run setup. It is never
// stored.
var SystemUser = User{ID: 0, Name: "SYSTEM", Role: RoleSystem}

// CurrentUser is the acting user handed explicitly to every business call.
type CurrentUser struct {
	User
}

func NewCurrentUser(u User) CurrentUser {
	return CurrentUser{User: u}
}

var System = CurrentUser{User: SystemUser}
