package system

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/timekeeper/internal/auth"
	datamodel "github.com/frahmantamala/timekeeper/internal/core/datamodel/system"
	"github.com/frahmantamala/timekeeper/internal/transport"
)

type LogSettingsDTO struct {
	Audit bool `json:"audit"`
	Warn  bool `json:"warn"`
	Debug bool `json:"debug"`
	Trace bool `json:"trace"`
}

type Handler struct {
	*transport.BaseHandler
	Service *Service
}

func NewHandler(service *Service, lg *slog.Logger) *Handler {
	return &Handler{BaseHandler: transport.NewBaseHandler(lg), Service: service}
}

func (h *Handler) GetLogSettings(w http.ResponseWriter, r *http.Request) {
	s := h.Service.GetLogSettings()
	h.WriteJSON(w, http.StatusOK, LogSettingsDTO(s))
}

func (h *Handler) SetLogSettings(w http.ResponseWriter, r *http.Request) {
	cu, ok := auth.CurrentUserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var dto LogSettingsDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}
	if err := h.Service.SetLogSettings(cu, datamodel.LogSettings(dto)); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, dto)
}
