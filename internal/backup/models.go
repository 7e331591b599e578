package backup

import "time"

// Rows mirror the domain types in a relational shape. Secrets (password
// hashes, session tokens, invitation codes) are never exported.

type EmployeeRow struct {
	ID   int64  `gorm:"primaryKey;autoIncrement:false"`
	Name string `gorm:"column:name;not null"`
}

func (EmployeeRow) TableName() string { return "employees" }

type ProjectRow struct {
	ID   int64  `gorm:"primaryKey;autoIncrement:false"`
	Name string `gorm:"column:name;uniqueIndex;not null"`
}

func (ProjectRow) TableName() string { return "projects" }

type TimeEntryRow struct {
	ID         int64     `gorm:"primaryKey;autoIncrement:false"`
	EmployeeID int64     `gorm:"column:employee_id;index;not null"`
	ProjectID  int64     `gorm:"column:project_id;index;not null"`
	Minutes    int       `gorm:"column:minutes;not null"`
	Date       time.Time `gorm:"column:date;index;not null"`
	Details    string    `gorm:"column:details"`
}

func (TimeEntryRow) TableName() string { return "time_entries" }

type SubmittedPeriodRow struct {
	ID             int64     `gorm:"primaryKey;autoIncrement:false"`
	EmployeeID     int64     `gorm:"column:employee_id;index;not null"`
	Start          time.Time `gorm:"column:start_date;not null"`
	End            time.Time `gorm:"column:end_date;not null"`
	ApprovalStatus string    `gorm:"column:approval_status;not null"`
}

func (SubmittedPeriodRow) TableName() string { return "submitted_periods" }

type UserRow struct {
	ID         int64  `gorm:"primaryKey;autoIncrement:false"`
	Name       string `gorm:"column:name;uniqueIndex;not null"`
	EmployeeID *int64 `gorm:"column:employee_id"`
	Role       string `gorm:"column:role;not null"`
}

func (UserRow) TableName() string { return "users" }

// ExportRow records when each snapshot was taken.
type ExportRow struct {
	ID          uint      `gorm:"primaryKey"`
	ExportedAt  time.Time `gorm:"column:exported_at;autoCreateTime"`
	Employees   int       `gorm:"column:employees"`
	Projects    int       `gorm:"column:projects"`
	TimeEntries int       `gorm:"column:time_entries"`
	Periods     int       `gorm:"column:submitted_periods"`
	Users       int       `gorm:"column:users"`
}

func (ExportRow) TableName() string { return "exports" }

var allModels = []interface{}{
	&EmployeeRow{},
	&ProjectRow{},
	&TimeEntryRow{},
	&SubmittedPeriodRow{},
	&UserRow{},
	&ExportRow{},
}
