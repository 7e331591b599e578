package rest

import (
	"log/slog"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/frahmantamala/timekeeper/internal/auth"
	"github.com/frahmantamala/timekeeper/internal/system"
	"github.com/frahmantamala/timekeeper/internal/timerecording"
	"github.com/frahmantamala/timekeeper/internal/transport/middleware"
	"github.com/frahmantamala/timekeeper/internal/transport/swagger"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth          *auth.Handler
	TimeRecording *timerecording.Handler
	System        *system.Handler
	Health        *HealthHandler
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, allowedOrigins string, logger *slog.Logger) {
	rbac := auth.NewRBACAuthorization(logger)

	router.Use(middleware.CORS(allowedOrigins))
	router.Use(middleware.RequestID(logger))
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.LoggingMiddleware)
	router.Use(middleware.RecoveryMiddleware)

	router.Get(swagger.DocumentPath, swagger.DocumentHandler())
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.Health.healthCheckHandler)
		r.Get("/ping", h.Health.pingHandler)

		r.Route("/auth", func(ar chi.Router) {
			ar.Post("/register", h.Auth.Register)
			ar.Post("/login", h.Auth.Login)
			ar.With(h.Auth.SessionMiddleware).Post("/logout", h.Auth.Logout)
			ar.With(h.Auth.SessionMiddleware).Post("/password", h.Auth.ChangePassword)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.SessionMiddleware)

			pr.Route("/time-entries", func(tr chi.Router) {
				tr.Use(rbac.Middleware(auth.OpReadTimeEntries))
				tr.Get("/", h.TimeRecording.ListTimeEntries)
				tr.Post("/", h.TimeRecording.CreateTimeEntry)
				tr.Put("/{id}", h.TimeRecording.ChangeTimeEntry)
				tr.Delete("/{id}", h.TimeRecording.DeleteTimeEntry)
			})

			pr.Route("/periods", func(pe chi.Router) {
				pe.Post("/submit", h.TimeRecording.SubmitPeriod)
				pe.Post("/unsubmit", h.TimeRecording.UnsubmitPeriod)
				pe.Group(func(ar chi.Router) {
					ar.Use(rbac.RequireApprover())
					ar.Post("/approve", h.TimeRecording.ApproveTimesheet)
					ar.Post("/unapprove", h.TimeRecording.UnapproveTimesheet)
				})
			})

			pr.Get("/projects", h.TimeRecording.ListProjects)
			pr.Post("/projects", h.TimeRecording.CreateProject)
			pr.Delete("/projects/{id}", h.TimeRecording.DeleteProject)

			pr.Get("/employees", h.TimeRecording.ListEmployees)
			pr.Post("/employees", h.TimeRecording.CreateEmployee)
			pr.Delete("/employees/{id}", h.TimeRecording.DeleteEmployee)

			pr.Post("/roles", h.Auth.SetRole)
			pr.Post("/invitations", h.Auth.CreateInvitation)

			pr.Group(func(ad chi.Router) {
				ad.Use(rbac.RequireAdmin())
				ad.Get("/users", h.Auth.ListUsers)
				ad.Get("/invitations", h.Auth.ListInvitations)
				ad.Get("/logging", h.System.GetLogSettings)
				ad.Put("/logging", h.System.SetLogSettings)
			})
		})
	})
}
