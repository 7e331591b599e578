package auth

// RegisterDTO is the transport shape for self-registration with an invitation.
type RegisterDTO struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	Invitation string `json:"invitation"`
}

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type SetRoleDTO struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

type ChangePasswordDTO struct {
	Password string `json:"password"`
}

type CreateInvitationDTO struct {
	EmployeeID int64 `json:"employee_id"`
}

// ValidationError represents a simple validation error from DTO validation.
type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

// Validate checks required fields and returns a ValidationError on failure.
func (d LoginDTO) Validate() error {
	if d.Username == "" {
		return ValidationError{Msg: "username is required"}
	}
	if d.Password == "" {
		return ValidationError{Msg: "password is required"}
	}
	return nil
}

func (d RegisterDTO) Validate() error {
	if d.Username == "" {
		return ValidationError{Msg: "username is required"}
	}
	if d.Invitation == "" {
		return ValidationError{Msg: "invitation is required"}
	}
	return nil
}

func (d SetRoleDTO) Validate() error {
	if d.Username == "" {
		return ValidationError{Msg: "username is required"}
	}
	if d.Role == "" {
		return ValidationError{Msg: "role is required"}
	}
	return nil
}

type UserResponse struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	EmployeeID *int64 `json:"employee_id,omitempty"`
}

type InvitationResponse struct {
	EmployeeID int64  `json:"employee_id"`
	Code       string `json:"code"`
	CreatedAt  string `json:"created_at"`
}
