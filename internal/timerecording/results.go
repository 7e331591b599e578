package timerecording

import (
	datamodel "github.com/frahmantamala/timekeeper/internal/core/datamodel/timerecording"
)

// RecordStatus is the expected outcome of recording time. Policy breaches
// that are not listed here (daily cap, roles) come back as errors.
type RecordStatus string

const (
	RecordSuccess              RecordStatus = "SUCCESS"
	RecordUserEmployeeMismatch RecordStatus = "USER_EMPLOYEE_MISMATCH"
	RecordInvalidProject       RecordStatus = "INVALID_PROJECT"
	RecordInvalidEmployee      RecordStatus = "INVALID_EMPLOYEE"
	RecordLockedSubmitted      RecordStatus = "LOCKED_ALREADY_SUBMITTED"
)

type RecordTimeResult struct {
	Status RecordStatus
	// Entry is the stored entry; zero unless Status is RecordSuccess.
	Entry datamodel.TimeEntry
}

func recorded(status RecordStatus) RecordTimeResult {
	return RecordTimeResult{Status: status}
}

type DeleteProjectResult string

const (
	DeleteProjectSuccess     DeleteProjectResult = "SUCCESS"
	DeleteProjectUsed        DeleteProjectResult = "USED"
	DeleteProjectDidNotExist DeleteProjectResult = "DID_NOT_DELETE"
)

type DeleteEmployeeResult string

const (
	DeleteEmployeeSuccess           DeleteEmployeeResult = "SUCCESS"
	DeleteEmployeeTooLateRegistered DeleteEmployeeResult = "TOO_LATE_REGISTERED"
	DeleteEmployeeDidNotDelete      DeleteEmployeeResult = "DID_NOT_DELETE"
)
