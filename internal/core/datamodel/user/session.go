package user

import (
	"time"

	errors "github.com/frahmantamala/timekeeper/internal"
	"github.com/frahmantamala/timekeeper/internal/core/codec"
)

const SessionsDirectory = "sessions"

type SessionID int64

type Session struct {
	SimpleID  SessionID
	Token     string
	UserID    UserID
	LoginTime time.Time
}

// NewSession truncates the login time to whole seconds in UTC, which is all
// the journal keeps, so loaded sessions compare equal to the originals.
func NewSession(id SessionID, token string, user UserID, loginTime time.Time) (Session, error) {
	if id < 1 {
		return Session{}, errors.NewValidationFieldError("session_id", "session_id must be at least 1", errors.ErrCodeInvalidID)
	}
	if token == "" {
		return Session{}, errors.NewValidationFieldError("session_token", "session_token is required", errors.ErrCodeValidationFailed)
	}
	return Session{
		SimpleID:  id,
		Token:     token,
		UserID:    user,
		LoginTime: time.Unix(loginTime.Unix(), 0).UTC(),
	}, nil
}

func (s Session) Index() int64 {
	return int64(s.SimpleID)
}

func (s Session) Fields() codec.Fields {
	return codec.Fields{}.
		AddInt("sid", int64(s.SimpleID)).
		Add("s", s.Token).
		AddInt("id", int64(s.UserID)).
		AddInt("e", s.LoginTime.Unix())
}

func DeserializeSession(text string, userExists func(UserID) bool) (Session, error) {
	r, err := codec.Decode(text)
	if err != nil {
		return Session{}, err
	}
	sid, err := r.Int("sid")
	if err != nil {
		return Session{}, err
	}
	token, err := r.String("s")
	if err != nil {
		return Session{}, err
	}
	uid, err := r.Int("id")
	if err != nil {
		return Session{}, err
	}
	epoch, err := r.Int("e")
	if err != nil {
		return Session{}, err
	}
	if !userExists(UserID(uid)) {
		return Session{}, errors.ErrUnknownReference.WithMessage("session %d references unknown user %d", sid, uid)
	}
	return NewSession(SessionID(sid), token, UserID(uid), time.Unix(epoch, 0))
}
