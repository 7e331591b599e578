package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/frahmantamala/timekeeper/internal"
	"github.com/frahmantamala/timekeeper/internal/core/datamodel/user"
	"github.com/frahmantamala/timekeeper/internal/persistence"
)

func jsonRequest(method, path string, body any) *http.Request {
	buf, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	return req
}

var _ = ginkgo.Describe("Handler", func() {
	var (
		db      *persistence.Database
		service *Service
		handler *Handler
	)

	ginkgo.BeforeEach(func() {
		db = persistence.NewInMemory(quietLogger())
		service = newTestService(db)
		handler = NewHandler(service, internal.SecurityConfig{}, quietLogger())
	})

	login := func(name string) *http.Cookie {
		rec := httptest.NewRecorder()
		handler.Login(rec, jsonRequest(http.MethodPost, "/api/v1/auth/login", LoginDTO{Username: name, Password: goodPassword}))
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		cookies := rec.Result().Cookies()
		gomega.Expect(cookies).To(gomega.HaveLen(1))
		return cookies[0]
	}

	ginkgo.Describe("Login", func() {
		ginkgo.It("should set the session cookie", func() {
			registerEmployee(service, db, "alice")

			cookie := login("alice")

			gomega.Expect(cookie.Name).To(gomega.Equal(internal.DefaultSessionCookieName))
			gomega.Expect(cookie.HttpOnly).To(gomega.BeTrue())
			gomega.Expect(db.Sessions().GetAll()).To(gomega.HaveLen(1))
		})

		ginkgo.It("should answer 401 for a bad password", func() {
			registerEmployee(service, db, "alice")
			rec := httptest.NewRecorder()

			handler.Login(rec, jsonRequest(http.MethodPost, "/", LoginDTO{Username: "alice", Password: "wrong wrong wrong"}))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(rec.Result().Cookies()).To(gomega.BeEmpty())
		})

		ginkgo.It("should answer 400 for a missing username", func() {
			rec := httptest.NewRecorder()

			handler.Login(rec, jsonRequest(http.MethodPost, "/", LoginDTO{Password: goodPassword}))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		})
	})

	ginkgo.Describe("SessionMiddleware", func() {
		var seen user.CurrentUser

		protected := func() http.Handler {
			return handler.SessionMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen, _ = CurrentUserFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			}))
		}

		ginkgo.It("should put the session's user on the context", func() {
			registerEmployee(service, db, "alice")
			cookie := login("alice")
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(cookie)
			rec := httptest.NewRecorder()

			protected().ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(seen.Name).To(gomega.Equal("alice"))
		})

		ginkgo.It("should reject a request without a cookie", func() {
			rec := httptest.NewRecorder()

			protected().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		})

		ginkgo.It("should reject a cookie after logout", func() {
			alice := registerEmployee(service, db, "alice")
			cookie := login("alice")
			service.Logout(alice)
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(cookie)
			rec := httptest.NewRecorder()

			protected().ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		})
	})

	ginkgo.Describe("RBACAuthorization", func() {
		var rbac *RBACAuthorization

		ginkgo.BeforeEach(func() {
			rbac = NewRBACAuthorization(quietLogger())
		})

		serve := func(cu *user.CurrentUser, op Operation) int {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if cu != nil {
				req = req.WithContext(ContextWithCurrentUser(req.Context(), *cu))
			}
			rec := httptest.NewRecorder()
			ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
			rbac.Middleware(op)(ok).ServeHTTP(rec, req)
			return rec.Code
		}

		ginkgo.It("should pass a permitted role", func() {
			cu := as(user.RoleApprover)
			gomega.Expect(serve(&cu, OpApproveTimesheet)).To(gomega.Equal(http.StatusOK))
		})

		ginkgo.It("should forbid a role outside the policy", func() {
			cu := as(user.RoleRegular)
			gomega.Expect(serve(&cu, OpApproveTimesheet)).To(gomega.Equal(http.StatusForbidden))
		})

		ginkgo.It("should answer 401 without a user", func() {
			gomega.Expect(serve(nil, OpListProjects)).To(gomega.Equal(http.StatusUnauthorized))
		})
	})

	ginkgo.Describe("Register", func() {
		ginkgo.It("should answer 201 for a good invitation", func() {
			emp := addEmployee(db, "alice")
			inv, err := service.CreateInvitation(user.System, emp.ID)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			rec := httptest.NewRecorder()

			handler.Register(rec, jsonRequest(http.MethodPost, "/", RegisterDTO{Username: "alice", Password: goodPassword, Invitation: inv.Code}))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusCreated))
		})

		ginkgo.It("should answer 404 for an unknown invitation", func() {
			rec := httptest.NewRecorder()

			handler.Register(rec, jsonRequest(http.MethodPost, "/", RegisterDTO{Username: "alice", Password: goodPassword, Invitation: "x"}))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusNotFound))
		})
	})
})
