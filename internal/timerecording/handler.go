package timerecording

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/timekeeper/internal"
	"github.com/frahmantamala/timekeeper/internal/auth"
	datamodel "github.com/frahmantamala/timekeeper/internal/core/datamodel/timerecording"
	"github.com/frahmantamala/timekeeper/internal/core/datamodel/user"
	"github.com/frahmantamala/timekeeper/internal/core/date"
	"github.com/frahmantamala/timekeeper/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	Service *Service
	Remover *EmployeeRemover
}

func NewHandler(service *Service, remover *EmployeeRemover, lg *slog.Logger) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
		Remover:     remover,
	}
}

// actingService binds the service to the request's user. The session
// middleware guarantees one is present.
func (h *Handler) actingService(w http.ResponseWriter, r *http.Request) (*Service, user.CurrentUser, bool) {
	cu, ok := auth.CurrentUserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return nil, user.CurrentUser{}, false
	}
	return h.Service.ChangeUser(cu), cu, true
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id < 1 {
		return 0, internal.NewValidationFieldError(name, name+" must be a positive integer", internal.ErrCodeInvalidID)
	}
	return id, nil
}

func recordStatusCode(status RecordStatus) int {
	switch status {
	case RecordSuccess:
		return http.StatusOK
	case RecordUserEmployeeMismatch:
		return http.StatusForbidden
	case RecordLockedSubmitted:
		return http.StatusConflict
	default:
		return http.StatusUnprocessableEntity
	}
}

func (h *Handler) writeRecordResult(w http.ResponseWriter, result RecordTimeResult, successStatus int) {
	resp := RecordTimeResponse{Status: result.Status}
	status := recordStatusCode(result.Status)
	if result.Status == RecordSuccess {
		entry := toTimeEntryResponse(result.Entry)
		resp.Entry = &entry
		status = successStatus
	}
	h.WriteJSON(w, status, resp)
}

func (h *Handler) CreateTimeEntry(w http.ResponseWriter, r *http.Request) {
	svc, cu, ok := h.actingService(w, r)
	if !ok {
		return
	}
	var dto TimeEntryDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}
	entry, err := dto.ToPreDatabase(cu)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	result, err := svc.CreateTimeEntry(entry)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.writeRecordResult(w, result, http.StatusCreated)
}

func (h *Handler) ChangeTimeEntry(w http.ResponseWriter, r *http.Request) {
	svc, cu, ok := h.actingService(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	var dto TimeEntryDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}
	entry, err := dto.ToTimeEntry(cu, datamodel.TimeEntryID(id))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	result, err := svc.ChangeEntry(entry)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.writeRecordResult(w, result, http.StatusOK)
}

func (h *Handler) DeleteTimeEntry(w http.ResponseWriter, r *http.Request) {
	svc, _, ok := h.actingService(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	entry, found := svc.FindTimeEntryByID(datamodel.TimeEntryID(id))
	if !found {
		h.HandleServiceError(w, internal.ErrTimeEntryNotFound)
		return
	}

	deleted, err := svc.DeleteTimeEntry(entry)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if !deleted {
		h.HandleServiceError(w, internal.ErrTimeEntryNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListTimeEntries answers for ?employee_id (default: own) and either ?date
// or ?start for a whole week; with neither it returns everything.
func (h *Handler) ListTimeEntries(w http.ResponseWriter, r *http.Request) {
	svc, cu, ok := h.actingService(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()

	employee := cu.Employee.ID
	if raw := q.Get("employee_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid employee_id")
			return
		}
		employee = datamodel.EmployeeID(id)
	}

	var (
		entries []datamodel.TimeEntry
		err     error
	)
	switch {
	case q.Get("date") != "":
		var d date.Date
		if d, err = date.Make(q.Get("date")); err == nil {
			entries, err = svc.GetEntriesForEmployeeOnDate(employee, d)
		}
	case q.Get("start") != "":
		var d date.Date
		if d, err = date.Make(q.Get("start")); err == nil {
			entries, err = svc.GetTimeEntriesForTimePeriod(employee, date.PeriodForDate(d))
		}
	default:
		entries, err = svc.GetAllEntriesForEmployee(employee)
	}
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	out := make([]TimeEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toTimeEntryResponse(e))
	}
	h.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) SubmitPeriod(w http.ResponseWriter, r *http.Request) {
	h.changeOwnPeriod(w, r, true)
}

func (h *Handler) UnsubmitPeriod(w http.ResponseWriter, r *http.Request) {
	h.changeOwnPeriod(w, r, false)
}

func (h *Handler) changeOwnPeriod(w http.ResponseWriter, r *http.Request, submit bool) {
	svc, cu, ok := h.actingService(w, r)
	if !ok {
		return
	}
	var dto PeriodDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}
	period, err := dto.Period()
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if submit {
		_, err = svc.SubmitTimePeriod(period)
	} else {
		err = svc.UnsubmitTimePeriod(period)
	}
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.writePeriod(w, svc, cu.Employee.ID, period)
}

func (h *Handler) ApproveTimesheet(w http.ResponseWriter, r *http.Request) {
	h.changeApproval(w, r, true)
}

func (h *Handler) UnapproveTimesheet(w http.ResponseWriter, r *http.Request) {
	h.changeApproval(w, r, false)
}

func (h *Handler) changeApproval(w http.ResponseWriter, r *http.Request, approve bool) {
	svc, _, ok := h.actingService(w, r)
	if !ok {
		return
	}
	var dto PeriodDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}
	period, err := dto.Period()
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	employee := datamodel.EmployeeID(dto.EmployeeID)

	if approve {
		err = svc.ApproveTimesheet(employee, period.Start)
	} else {
		err = svc.UnapproveTimesheet(employee, period.Start)
	}
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.writePeriod(w, svc, employee, period)
}

func (h *Handler) writePeriod(w http.ResponseWriter, svc *Service, employee datamodel.EmployeeID, period date.TimePeriod) {
	status := "UNSUBMITTED"
	if sp, ok := svc.db.SubmittedPeriods().Get(forPeriod(employee, period.Start)); ok {
		status = string(sp.ApprovalStatus)
	}
	h.WriteJSON(w, http.StatusOK, PeriodResponse{
		EmployeeID:     int64(employee),
		Start:          period.Start.String(),
		End:            period.End.String(),
		ApprovalStatus: status,
	})
}

func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	svc, _, ok := h.actingService(w, r)
	if !ok {
		return
	}
	projects, err := svc.ListAllProjects()
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	out := make([]NamedResponse, 0, len(projects))
	for _, p := range projects {
		out = append(out, NamedResponse{ID: int64(p.ID), Name: p.Name})
	}
	h.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	svc, _, ok := h.actingService(w, r)
	if !ok {
		return
	}
	var dto NameDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}
	p, err := svc.CreateProject(dto.Name)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, NamedResponse{ID: int64(p.ID), Name: p.Name})
}

func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	svc, _, ok := h.actingService(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	project, found := svc.FindProjectByID(datamodel.ProjectID(id))
	if !found {
		h.HandleServiceError(w, internal.ErrProjectNotFound)
		return
	}

	result, err := svc.DeleteProject(project)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	status := http.StatusOK
	if result == DeleteProjectUsed {
		status = http.StatusConflict
	}
	h.WriteJSON(w, status, map[string]string{"result": string(result)})
}

func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	svc, _, ok := h.actingService(w, r)
	if !ok {
		return
	}
	employees, err := svc.ListAllEmployees()
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	out := make([]NamedResponse, 0, len(employees))
	for _, e := range employees {
		out = append(out, NamedResponse{ID: int64(e.ID), Name: e.Name})
	}
	h.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	svc, _, ok := h.actingService(w, r)
	if !ok {
		return
	}
	var dto NameDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}
	e, err := svc.CreateEmployee(dto.Name)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, NamedResponse{ID: int64(e.ID), Name: e.Name})
}

func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	svc, cu, ok := h.actingService(w, r)
	if !ok {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	employee, found := svc.FindEmployeeByID(datamodel.EmployeeID(id))
	if !found {
		h.HandleServiceError(w, internal.ErrEmployeeNotFound)
		return
	}

	result, err := h.Remover.DeleteEmployee(cu, employee)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	status := http.StatusOK
	if result != DeleteEmployeeSuccess {
		status = http.StatusConflict
	}
	h.WriteJSON(w, status, map[string]string{"result": string(result)})
}
