package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/phrasebook/internal/service"
)

// SettingsHandler serves the /api/settings key/value endpoints.
type SettingsHandler struct {
	service *service.SettingService
	logger  *slog.Logger
}

func NewSettingsHandler(svc *service.SettingService, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{service: svc, logger: logger}
}

// setSettingRequest: a missing or null value stores NULL.
type setSettingRequest struct {
	Key   string  `json:"key" validate:"required,notblank"`
	Value *string `json:"value"`
}

// HandleList returns every setting ordered by key.
//
// HTTP: GET /api/settings
func (h *SettingsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	settings, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, settings)
}

// HandleGet returns one setting.
//
// HTTP: GET /api/settings/{key}
func (h *SettingsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	setting, err := h.service.Get(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, setting)
}

// HandleSet inserts or overwrites a setting.
//
// HTTP: POST /api/settings
// Auth: Required
// REQUEST BODY: {"key": "siteTitle", "value": "..."}
func (h *SettingsHandler) HandleSet(w http.ResponseWriter, r *http.Request) {
	var req setSettingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	setting, err := h.service.Set(r.Context(), req.Key, req.Value)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, setting)
}
