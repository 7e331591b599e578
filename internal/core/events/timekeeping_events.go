package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeTimeEntryRecorded   = "timeentry.recorded"
	EventTypeTimeEntryChanged    = "timeentry.changed"
	EventTypeTimeEntryDeleted    = "timeentry.deleted"
	EventTypePeriodSubmitted     = "period.submitted"
	EventTypePeriodUnsubmitted   = "period.unsubmitted"
	EventTypeTimesheetApproved   = "timesheet.approved"
	EventTypeTimesheetUnapproved = "timesheet.unapproved"
	EventTypeEmployeeCreated     = "employee.created"
	EventTypeEmployeeDeleted     = "employee.deleted"
	EventTypeProjectCreated      = "project.created"
	EventTypeProjectDeleted      = "project.deleted"
)

func newBase(eventType, actor string, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now(),
		Actor:     actor,
		Data:      data,
	}
}

type TimeEntryEvent struct {
	BaseEvent
	EntryID    int64  `json:"entry_id"`
	EmployeeID int64  `json:"employee_id"`
	ProjectID  int64  `json:"project_id"`
	Minutes    int    `json:"minutes"`
	Date       string `json:"date"`
}

func NewTimeEntryEvent(eventType, actor string, entryID, employeeID, projectID int64, minutes int, date string) *TimeEntryEvent {
	return &TimeEntryEvent{
		BaseEvent: newBase(eventType, actor, map[string]interface{}{
			"entry_id":    entryID,
			"employee_id": employeeID,
			"project_id":  projectID,
			"minutes":     minutes,
			"date":        date,
		}),
		EntryID:    entryID,
		EmployeeID: employeeID,
		ProjectID:  projectID,
		Minutes:    minutes,
		Date:       date,
	}
}

// PeriodEvent covers submit, unsubmit, approve and unapprove.
type PeriodEvent struct {
	BaseEvent
	EmployeeID int64  `json:"employee_id"`
	Start      string `json:"start"`
	End        string `json:"end"`
}

func NewPeriodEvent(eventType, actor string, employeeID int64, start, end string) *PeriodEvent {
	return &PeriodEvent{
		BaseEvent: newBase(eventType, actor, map[string]interface{}{
			"employee_id": employeeID,
			"start":       start,
			"end":         end,
		}),
		EmployeeID: employeeID,
		Start:      start,
		End:        end,
	}
}

// DirectoryEvent covers employees and projects being created or deleted.
type DirectoryEvent struct {
	BaseEvent
	EntityID int64  `json:"entity_id"`
	Name     string `json:"name"`
}

func NewDirectoryEvent(eventType, actor string, id int64, name string) *DirectoryEvent {
	return &DirectoryEvent{
		BaseEvent: newBase(eventType, actor, map[string]interface{}{
			"entity_id": id,
			"name":      name,
		}),
		EntityID: id,
		Name:     name,
	}
}
