package timerecording

import (
	"github.com/frahmantamala/timekeeper/internal"
	datamodel "github.com/frahmantamala/timekeeper/internal/core/datamodel/timerecording"
	"github.com/frahmantamala/timekeeper/internal/core/datamodel/user"
	"github.com/frahmantamala/timekeeper/internal/core/date"
)

// TimeEntryDTO is the request body for creating or changing an entry.
// EmployeeID defaults to the acting user's employee.
type TimeEntryDTO struct {
	EmployeeID int64  `json:"employee_id,omitempty"`
	ProjectID  int64  `json:"project_id"`
	Minutes    int    `json:"minutes"`
	Date       string `json:"date"`
	Details    string `json:"details"`
}

func (d TimeEntryDTO) employee(cu user.CurrentUser) (datamodel.EmployeeID, error) {
	if d.EmployeeID != 0 {
		return datamodel.EmployeeID(d.EmployeeID), nil
	}
	if !cu.Employee.Valid {
		return 0, internal.NewValidationFieldError("employee_id", "employee_id is required", internal.ErrCodeInvalidID)
	}
	return cu.Employee.ID, nil
}

func (d TimeEntryDTO) ToPreDatabase(cu user.CurrentUser) (datamodel.TimeEntryPreDatabase, error) {
	employee, err := d.employee(cu)
	if err != nil {
		return datamodel.TimeEntryPreDatabase{}, err
	}
	day, err := date.Make(d.Date)
	if err != nil {
		return datamodel.TimeEntryPreDatabase{}, err
	}
	return datamodel.NewTimeEntryPreDatabase(employee, datamodel.ProjectID(d.ProjectID), d.Minutes, day, d.Details)
}

func (d TimeEntryDTO) ToTimeEntry(cu user.CurrentUser, id datamodel.TimeEntryID) (datamodel.TimeEntry, error) {
	employee, err := d.employee(cu)
	if err != nil {
		return datamodel.TimeEntry{}, err
	}
	day, err := date.Make(d.Date)
	if err != nil {
		return datamodel.TimeEntry{}, err
	}
	return datamodel.NewTimeEntry(id, employee, datamodel.ProjectID(d.ProjectID), d.Minutes, day, d.Details)
}

type PeriodDTO struct {
	EmployeeID int64  `json:"employee_id,omitempty"`
	Start      string `json:"start"`
}

func (d PeriodDTO) Period() (date.TimePeriod, error) {
	start, err := date.Make(d.Start)
	if err != nil {
		return date.TimePeriod{}, err
	}
	return date.PeriodForDate(start), nil
}

type NameDTO struct {
	Name string `json:"name"`
}

type TimeEntryResponse struct {
	ID         int64  `json:"id"`
	EmployeeID int64  `json:"employee_id"`
	ProjectID  int64  `json:"project_id"`
	Minutes    int    `json:"minutes"`
	Date       string `json:"date"`
	Details    string `json:"details"`
}

func toTimeEntryResponse(t datamodel.TimeEntry) TimeEntryResponse {
	return TimeEntryResponse{
		ID:         int64(t.ID),
		EmployeeID: int64(t.EmployeeID),
		ProjectID:  int64(t.ProjectID),
		Minutes:    t.Minutes,
		Date:       t.Date.String(),
		Details:    t.Details,
	}
}

type RecordTimeResponse struct {
	Status RecordStatus       `json:"status"`
	Entry  *TimeEntryResponse `json:"entry,omitempty"`
}

type PeriodResponse struct {
	EmployeeID     int64  `json:"employee_id"`
	Start          string `json:"start"`
	End            string `json:"end"`
	ApprovalStatus string `json:"approval_status"`
}

type NamedResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
