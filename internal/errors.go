package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypePolicy       ErrorType = "POLICY_VIOLATION"
	ErrorTypeIntegrity    ErrorType = "INTEGRITY_VIOLATION"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidID        ErrorCode = "INVALID_ID"
	ErrCodeInvalidName      ErrorCode = "INVALID_NAME"
	ErrCodeInvalidMinutes   ErrorCode = "INVALID_MINUTES"
	ErrCodeInvalidDetails   ErrorCode = "INVALID_DETAILS"
	ErrCodeInvalidDate      ErrorCode = "INVALID_DATE"
	ErrCodeInvalidPassword  ErrorCode = "INVALID_PASSWORD"
	ErrCodeInvalidRole      ErrorCode = "INVALID_ROLE"

	ErrCodeEmployeeNotFound   ErrorCode = "EMPLOYEE_NOT_FOUND"
	ErrCodeProjectNotFound    ErrorCode = "PROJECT_NOT_FOUND"
	ErrCodeTimeEntryNotFound  ErrorCode = "TIME_ENTRY_NOT_FOUND"
	ErrCodeUserNotFound       ErrorCode = "USER_NOT_FOUND"
	ErrCodeInvitationNotFound ErrorCode = "INVITATION_NOT_FOUND"

	ErrCodeUnpermittedOperation ErrorCode = "UNPERMITTED_OPERATION"
	ErrCodeExceededDailyHours   ErrorCode = "EXCEEDED_DAILY_HOURS"
	ErrCodePeriodSubmitted      ErrorCode = "PERIOD_ALREADY_SUBMITTED"
	ErrCodePeriodNotSubmitted   ErrorCode = "PERIOD_NOT_SUBMITTED"
	ErrCodePeriodApproved       ErrorCode = "PERIOD_APPROVED"
	ErrCodePeriodNotApproved    ErrorCode = "PERIOD_NOT_APPROVED"
	ErrCodePeriodLocked         ErrorCode = "PERIOD_LOCKED"
	ErrCodeDuplicateProject     ErrorCode = "DUPLICATE_PROJECT"
	ErrCodeDuplicateEmployee    ErrorCode = "DUPLICATE_EMPLOYEE"

	ErrCodeUnknownReference ErrorCode = "UNKNOWN_REFERENCE"
	ErrCodeMalformedRecord  ErrorCode = "MALFORMED_RECORD"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeInvalidSession     ErrorCode = "INVALID_SESSION"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok {
			if len(validationErrors.Errors) == 1 {
				return validationErrors.Errors[0].Message
			} else if len(validationErrors.Errors) > 1 {
				messages := make([]string, len(validationErrors.Errors))
				for i, err := range validationErrors.Errors {
					messages[i] = err.Message
				}
				return strings.Join(messages, "; ")
			}
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches on Code so that errors.Is works against the shared sentinels
// even when a copy carries a different cause or message.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

func (e *AppError) WithCause(cause error) *AppError {
	c := *e
	c.Cause = cause
	return &c
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	c := *e
	c.Details = details
	return &c
}

// WithMessage returns a copy of e with a more specific message.
func (e *AppError) WithMessage(format string, args ...any) *AppError {
	c := *e
	c.Message = fmt.Sprintf(format, args...)
	return &c
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

// NewPolicyError is for expected, user-facing rule violations such as the
// daily hours cap or editing an approved period.
func NewPolicyError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypePolicy,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
	}
}

func NewIntegrityError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeIntegrity,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

var (
	ErrEmployeeNotFound   = NewNotFoundError("employee not found", ErrCodeEmployeeNotFound)
	ErrProjectNotFound    = NewNotFoundError("project not found", ErrCodeProjectNotFound)
	ErrTimeEntryNotFound  = NewNotFoundError("time entry not found", ErrCodeTimeEntryNotFound)
	ErrUserNotFound       = NewNotFoundError("user not found", ErrCodeUserNotFound)
	ErrInvitationNotFound = NewNotFoundError("invitation not found", ErrCodeInvitationNotFound)

	ErrUnpermittedOperation = NewForbiddenError("role is not permitted to perform this operation", ErrCodeUnpermittedOperation)

	ErrExceededDailyHours = NewPolicyError("exceeded number of hours in a day on this time entry", ErrCodeExceededDailyHours)
	ErrPeriodSubmitted    = NewPolicyError("time period is already submitted", ErrCodePeriodSubmitted)
	ErrPeriodNotSubmitted = NewPolicyError("time period has not been submitted", ErrCodePeriodNotSubmitted)
	ErrPeriodApproved     = NewPolicyError("time period is approved", ErrCodePeriodApproved)
	ErrPeriodNotApproved  = NewPolicyError("time period is not approved", ErrCodePeriodNotApproved)
	ErrPeriodLocked       = NewPolicyError("time entries in a submitted period cannot be changed", ErrCodePeriodLocked)

	ErrDuplicateProject  = NewConflictError("a project with that name already exists", ErrCodeDuplicateProject)
	ErrDuplicateEmployee = NewConflictError("an employee with that name already exists", ErrCodeDuplicateEmployee)

	// Raised while loading stored records, never by a request.
	ErrUnknownReference = NewIntegrityError("record references a missing entity", ErrCodeUnknownReference)
	ErrMalformedRecord  = NewIntegrityError("record could not be parsed", ErrCodeMalformedRecord)

	ErrInvalidCredentials = NewUnauthorizedError("invalid username or password", ErrCodeInvalidCredentials)
	ErrInvalidSession     = NewUnauthorizedError("session is not valid", ErrCodeInvalidSession)
)

// IsAppError finds the first AppError in err's chain.
func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
