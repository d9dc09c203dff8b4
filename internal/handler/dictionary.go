package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/phrasebook/internal/model"
	"github.com/sakif/phrasebook/internal/service"
)

// DictionaryHandler serves the /api/dictionary endpoints. It only parses
// requests and writes responses; every rule lives in DictionaryService.
type DictionaryHandler struct {
	service *service.DictionaryService
	logger  *slog.Logger
}

func NewDictionaryHandler(svc *service.DictionaryService, logger *slog.Logger) *DictionaryHandler {
	return &DictionaryHandler{service: svc, logger: logger}
}

type createEntryRequest struct {
	Phrase        string `json:"phrase" validate:"required,notblank"`
	Translation   string `json:"translation" validate:"required,notblank"`
	UsageContext  string `json:"usageContext"`
	Pronunciation string `json:"pronunciation"`
	AudioURL      string `json:"audioUrl"`
}

// updateEntryRequest uses pointers so an omitted field can be told apart
// from one sent as "". JSON null decodes to nil and is treated as omitted.
type updateEntryRequest struct {
	Phrase        *string `json:"phrase"`
	Translation   *string `json:"translation"`
	UsageContext  *string `json:"usageContext"`
	Pronunciation *string `json:"pronunciation"`
	AudioURL      *string `json:"audioUrl"`
}

// HandleList returns all entries, or the search result when ?q= is present.
//
// HTTP: GET /api/dictionary?q=...
func (h *DictionaryHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

// HandleGetByID returns one entry.
//
// HTTP: GET /api/dictionary/{id}
func (h *DictionaryHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	entry, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

// HandleCreate stores a new entry and returns it with 201 Created.
//
// HTTP: POST /api/dictionary
// REQUEST BODY: {"phrase": "...", "translation": "...", "usageContext": "..."}
func (h *DictionaryHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createEntryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	entry, err := h.service.Create(r.Context(), model.EntryInput{
		Phrase:        req.Phrase,
		Translation:   req.Translation,
		UsageContext:  req.UsageContext,
		Pronunciation: req.Pronunciation,
		AudioURL:      req.AudioURL,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, entry)
}

// HandleUpdate applies a partial update.
//
// HTTP: PUT /api/dictionary/{id}
func (h *DictionaryHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req updateEntryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	entry, err := h.service.Update(r.Context(), id, model.EntryPatch{
		Phrase:        req.Phrase,
		Translation:   req.Translation,
		UsageContext:  req.UsageContext,
		Pronunciation: req.Pronunciation,
		AudioURL:      req.AudioURL,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

// HandleDelete removes an entry.
//
// HTTP: DELETE /api/dictionary/{id}
func (h *DictionaryHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Dictionary entry deleted successfully",
	})
}
