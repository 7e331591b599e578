package auth

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/frahmantamala/timekeeper/internal"
	"github.com/frahmantamala/timekeeper/internal/core/datamodel/timerecording"
	"github.com/frahmantamala/timekeeper/internal/core/datamodel/user"
	"github.com/frahmantamala/timekeeper/internal/transport"
	"github.com/frahmantamala/timekeeper/pkg/logger"
)

type ServiceAPI interface {
	Register(username, password, invitationCode string) (RegistrationResult, error)
	Login(username, password string) (LoginResult, user.User)
	CreateNewSession(u user.User, now time.Time) (string, error)
	GetUserForSession(token string) (user.User, bool)
	Logout(u user.User) int
	ChangePassword(cu user.CurrentUser, password string) (ChangePasswordResult, error)
	AddRoleToUser(cu user.CurrentUser, target user.User, role user.Role) (user.User, error)
	CreateInvitation(cu user.CurrentUser, employeeID timerecording.EmployeeID) (user.Invitation, error)
	ListAllInvitations(cu user.CurrentUser) ([]user.Invitation, error)
	ListAllUsers(cu user.CurrentUser) ([]user.User, error)
	FindUserByName(name string) (user.User, bool)
}

type Handler struct {
	*transport.BaseHandler
	Service    ServiceAPI
	cookieName string
	secure     bool
}

func NewHandler(svc ServiceAPI, cfg internal.SecurityConfig, lg *slog.Logger) *Handler {
	name := cfg.SessionCookieName
	if name == "" {
		name = internal.DefaultSessionCookieName
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
		cookieName:  name,
		secure:      cfg.SecureCookies,
	}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var dto RegisterDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.Service.Register(dto.Username, dto.Password, dto.Invitation)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	status := http.StatusCreated
	switch result {
	case RegistrationSuccess:
	case RegistrationAlreadyRegistered:
		status = http.StatusConflict
	case RegistrationInvalidInvitation:
		status = http.StatusNotFound
	default:
		status = http.StatusBadRequest
	}
	h.WriteJSON(w, status, map[string]string{"result": string(result)})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, u := h.Service.Login(dto.Username, dto.Password)
	if result != LoginSuccess {
		h.WriteError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.Service.CreateNewSession(u, time.Now())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteStrictMode,
	})
	h.WriteJSON(w, http.StatusOK, toUserResponse(u))
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	cu, ok := CurrentUserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "not logged in")
		return
	}

	h.Service.Logout(cu.User)
	http.SetCookie(w, &http.Cookie{
		Name:    h.cookieName,
		Value:   "",
		Path:    "/",
		MaxAge:  -1,
		Expires: time.Unix(0, 0),
	})
	w.WriteHeader(http.StatusNoContent)
}

// SessionMiddleware resolves the session cookie to a CurrentUser and puts
// it, plus a user-scoped logger, on the request context.
func (h *Handler) SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(h.cookieName)
		if err != nil || cookie.Value == "" {
			h.WriteError(w, http.StatusUnauthorized, "missing session")
			return
		}

		u, ok := h.Service.GetUserForSession(cookie.Value)
		if !ok {
			h.WriteError(w, http.StatusUnauthorized, "invalid session")
			return
		}

		ctx := ContextWithCurrentUser(r.Context(), user.NewCurrentUser(u))
		ctx = logger.With(ctx, "user", u.Name)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) SetRole(w http.ResponseWriter, r *http.Request) {
	cu, _ := CurrentUserFromContext(r.Context())

	var dto SetRoleDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	role, err := user.ParseRole(dto.Role)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	target, ok := h.Service.FindUserByName(dto.Username)
	if !ok {
		h.HandleServiceError(w, internal.ErrUserNotFound)
		return
	}

	updated, err := h.Service.AddRoleToUser(cu, target, role)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, toUserResponse(updated))
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	cu, _ := CurrentUserFromContext(r.Context())

	var dto ChangePasswordDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}
	result, err := h.Service.ChangePassword(cu, dto.Password)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	status := http.StatusOK
	if result != PasswordChanged {
		status = http.StatusBadRequest
	}
	h.WriteJSON(w, status, map[string]string{"result": string(result)})
}

func (h *Handler) CreateInvitation(w http.ResponseWriter, r *http.Request) {
	cu, _ := CurrentUserFromContext(r.Context())

	var dto CreateInvitationDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}
	inv, err := h.Service.CreateInvitation(cu, timerecording.EmployeeID(dto.EmployeeID))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, toInvitationResponse(inv))
}

func (h *Handler) ListInvitations(w http.ResponseWriter, r *http.Request) {
	cu, _ := CurrentUserFromContext(r.Context())

	invitations, err := h.Service.ListAllInvitations(cu)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	out := make([]InvitationResponse, 0, len(invitations))
	for _, inv := range invitations {
		out = append(out, toInvitationResponse(inv))
	}
	h.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	cu, _ := CurrentUserFromContext(r.Context())

	users, err := h.Service.ListAllUsers(cu)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	h.WriteJSON(w, http.StatusOK, out)
}

func toUserResponse(u user.User) UserResponse {
	resp := UserResponse{ID: int64(u.ID), Name: u.Name, Role: string(u.Role)}
	if u.Employee.Valid {
		id := int64(u.Employee.ID)
		resp.EmployeeID = &id
	}
	return resp
}

func toInvitationResponse(inv user.Invitation) InvitationResponse {
	return InvitationResponse{
		EmployeeID: int64(inv.EmployeeID),
		Code:       inv.Code,
		CreatedAt:  inv.CreatedAt.Format(time.RFC3339),
	}
}
