package timerecording

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/frahmantamala/timekeeper/internal/auth"
	datamodel "github.com/frahmantamala/timekeeper/internal/core/datamodel/timerecording"
	"github.com/frahmantamala/timekeeper/internal/core/datamodel/user"
	"github.com/frahmantamala/timekeeper/internal/persistence"
)

var _ = ginkgo.Describe("Handler", func() {
	var (
		router http.Handler
		actor  user.CurrentUser
		alice  datamodel.Employee
		widget datamodel.Project
	)

	ginkgo.BeforeEach(func() {
		lg := quietLogger()
		db := persistence.NewInMemory(lg)
		system := NewService(db, auth.NewRolesChecker(lg), user.System, nil, lg)
		var err error
		alice, err = system.CreateEmployee("Alice")
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		widget, err = system.CreateProject("Widgets")
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		actor = userFor(alice.ID, user.RoleRegular)

		h := NewHandler(system, NewEmployeeRemover(system, userLookup{}, lg), lg)
		r := chi.NewRouter()
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(auth.ContextWithCurrentUser(req.Context(), actor)))
			})
		})
		r.Get("/time-entries", h.ListTimeEntries)
		r.Post("/time-entries", h.CreateTimeEntry)
		r.Delete("/time-entries/{id}", h.DeleteTimeEntry)
		r.Post("/periods/submit", h.SubmitPeriod)
		r.Delete("/projects/{id}", h.DeleteProject)
		router = r
	})

	do := func(method, path string, body any) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			gomega.Expect(json.NewEncoder(&buf).Encode(body)).To(gomega.Succeed())
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(method, path, &buf))
		return rec
	}

	ginkgo.It("should record time for the acting user's employee", func() {
		rec := do(http.MethodPost, "/time-entries", TimeEntryDTO{ProjectID: int64(widget.ID), Minutes: 90, Date: "2024-01-02"})

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusCreated))
		var resp RecordTimeResponse
		gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(gomega.Succeed())
		gomega.Expect(resp.Status).To(gomega.Equal(RecordSuccess))
		gomega.Expect(resp.Entry.EmployeeID).To(gomega.Equal(int64(alice.ID)))

		list := do(http.MethodGet, "/time-entries?date=2024-01-02", nil)
		var entries []TimeEntryResponse
		gomega.Expect(json.Unmarshal(list.Body.Bytes(), &entries)).To(gomega.Succeed())
		gomega.Expect(entries).To(gomega.HaveLen(1))
	})

	ginkgo.It("should answer 422 for the daily cap and 409 for a locked week", func() {
		rec := do(http.MethodPost, "/time-entries", TimeEntryDTO{ProjectID: int64(widget.ID), Minutes: 1440, Date: "2024-01-02"})
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusCreated))

		rec = do(http.MethodPost, "/time-entries", TimeEntryDTO{ProjectID: int64(widget.ID), Minutes: 1, Date: "2024-01-02"})
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnprocessableEntity))

		rec = do(http.MethodPost, "/periods/submit", PeriodDTO{Start: "2024-01-02"})
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))

		rec = do(http.MethodPost, "/time-entries", TimeEntryDTO{ProjectID: int64(widget.ID), Minutes: 1, Date: "2024-01-03"})
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusConflict))
	})

	ginkgo.It("should answer 400 for a malformed date", func() {
		rec := do(http.MethodPost, "/time-entries", TimeEntryDTO{ProjectID: int64(widget.ID), Minutes: 1, Date: "yesterday"})

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
	})

	ginkgo.It("should forbid a regular user from deleting projects", func() {
		rec := do(http.MethodDelete, "/projects/1", nil)

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
	})

	ginkgo.It("should only show a regular user their own entries", func() {
		rec := do(http.MethodGet, "/time-entries?employee_id=2", nil)
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))

		actor = userFor(alice.ID, user.RoleApprover)
		rec = do(http.MethodGet, "/time-entries?employee_id=2", nil)
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
	})

	ginkgo.It("should answer 404 for a missing entry", func() {
		rec := do(http.MethodDelete, "/time-entries/12", nil)

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusNotFound))
	})
})
