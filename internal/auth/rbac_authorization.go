package auth

import (
	"log/slog"
	"net/http"
)

// RBACAuthorization rejects a request before it reaches a handler when the
// session's role may not perform op. Services still check on their own;
// this only saves the round trip.
type RBACAuthorization struct {
	logger *slog.Logger
}

func NewRBACAuthorization(logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{logger: logger}
}

func (ra *RBACAuthorization) Check(next http.HandlerFunc, op Operation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cu, ok := CurrentUserFromContext(r.Context())
		if !ok {
			ra.logger.Warn("authorization check failed: user not found in context")
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		if !IsAllowed(cu.Role, op) {
			ra.logger.WarnContext(r.Context(), "access denied: role not permitted",
				"user_id", cu.ID,
				"role", cu.Role,
				"operation", op)
			http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	}
}

func (ra *RBACAuthorization) Middleware(op Operation) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return ra.Check(next.ServeHTTP, op)
	}
}

func (ra *RBACAuthorization) RequireApprover() func(http.Handler) http.Handler {
	return ra.Middleware(OpApproveTimesheet)
}

func (ra *RBACAuthorization) RequireAdmin() func(http.Handler) http.Handler {
	return ra.Middleware(OpChangeLogSettings)
}
