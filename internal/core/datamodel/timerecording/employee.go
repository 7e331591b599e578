package timerecording

import (
	"fmt"

	errors "github.com/frahmantamala/timekeeper/internal"
	"github.com/frahmantamala/timekeeper/internal/core/codec"
	"github.com/frahmantamala/timekeeper/internal/core/common/validation"
)

const (
	EmployeesDirectory = "employees"
	MaxEmployeeName    = 30
)

type EmployeeID int64

type Employee struct {
	ID   EmployeeID
	Name string
}

func NewEmployee(id EmployeeID, name string) (Employee, error) {
	v := validation.NewValidator()
	v.Field("employee_id", int64(id)).MinInt(1, errors.ErrCodeInvalidID)
	v.Field("employee_name", name).
		Required().
		MaxLength(MaxEmployeeName, errors.ErrCodeInvalidName)
	if err := v.Validate(); err != nil {
		return Employee{}, err
	}
	return Employee{ID: id, Name: name}, nil
}

func (e Employee) Index() int64 {
	return int64(e.ID)
}

func (e Employee) Fields() codec.Fields {
	return codec.Fields{}.
		AddInt("id", int64(e.ID)).
		Add("name", e.Name)
}

func DeserializeEmployee(text string) (Employee, error) {
	r, err := codec.Decode(text)
	if err != nil {
		return Employee{}, err
	}
	id, err := r.Int("id")
	if err != nil {
		return Employee{}, err
	}
	name, err := r.String("name")
	if err != nil {
		return Employee{}, err
	}
	return NewEmployee(EmployeeID(id), name)
}

// NullEmployeeID is an optional employee reference, in the manner of
// sql.NullInt64. A user that has not been tied to an employee holds the
// zero value.
type NullEmployeeID struct {
	ID    EmployeeID
	Valid bool
}

func SomeEmployee(id EmployeeID) NullEmployeeID {
	return NullEmployeeID{ID: id, Valid: true}
}

func (n NullEmployeeID) Is(id EmployeeID) bool {
	return n.Valid && n.ID == id
}

// String renders the reference for the journal: empty when absent.
func (n NullEmployeeID) String() string {
	if !n.Valid {
		return ""
	}
	return fmt.Sprint(int64(n.ID))
}
