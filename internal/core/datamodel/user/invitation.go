package user

import (
	"time"

	errors "github.com/frahmantamala/timekeeper/internal"
	"github.com/frahmantamala/timekeeper/internal/core/codec"
	"github.com/frahmantamala/timekeeper/internal/core/datamodel/timerecording"
)

const InvitationsDirectory = "invitations"

type InvitationID int64

// Invitation lets someone register a user tied to an already created
// employee. The code is consumed on registration.
type Invitation struct {
	ID         InvitationID
	EmployeeID timerecording.EmployeeID
	Code       string
	CreatedAt  time.Time
}

func NewInvitation(id InvitationID, employee timerecording.EmployeeID, code string, createdAt time.Time) (Invitation, error) {
	if id < 1 {
		return Invitation{}, errors.NewValidationFieldError("invitation_id", "invitation_id must be at least 1", errors.ErrCodeInvalidID)
	}
	if code == "" {
		return Invitation{}, errors.NewValidationFieldError("invitation_code", "invitation_code is required", errors.ErrCodeValidationFailed)
	}
	return Invitation{
		ID:         id,
		EmployeeID: employee,
		Code:       code,
		CreatedAt:  time.Unix(createdAt.Unix(), 0).UTC(),
	}, nil
}

func (i Invitation) Index() int64 {
	return int64(i.ID)
}

func (i Invitation) Fields() codec.Fields {
	return codec.Fields{}.
		AddInt("id", int64(i.ID)).
		AddInt("eid", int64(i.EmployeeID)).
		Add("code", i.Code).
		AddInt("dt", i.CreatedAt.Unix())
}

func DeserializeInvitation(text string, employeeExists func(timerecording.EmployeeID) bool) (Invitation, error) {
	r, err := codec.Decode(text)
	if err != nil {
		return Invitation{}, err
	}
	id, err := r.Int("id")
	if err != nil {
		return Invitation{}, err
	}
	eid, err := r.Int("eid")
	if err != nil {
		return Invitation{}, err
	}
	code, err := r.String("code")
	if err != nil {
		return Invitation{}, err
	}
	dt, err := r.Int("dt")
	if err != nil {
		return Invitation{}, err
	}
	if !employeeExists(timerecording.EmployeeID(eid)) {
		return Invitation{}, errors.ErrUnknownReference.WithMessage("invitation %d references unknown employee %d", id, eid)
	}
	return NewInvitation(InvitationID(id), timerecording.EmployeeID(eid), code, time.Unix(dt, 0))
}
