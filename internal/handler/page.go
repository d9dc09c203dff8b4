// Package handler contains the HTTP handlers: the JSON API under /api and the
// server-rendered public page at /.
//
// HANDLER RESPONSIBILITIES:
// 1. Parse the incoming HTTP request (query params, body, URL params)
// 2. Call the service layer
// 3. Write the HTTP response (status code, headers, body)
//
// Handlers hold no business logic; they are the glue between HTTP and the services.
package handler

import (
	"bytes"
	"html/template"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/sakif/phrasebook/internal/model"
	"github.com/sakif/phrasebook/internal/service"
)

// PageHandler renders the public, read-only dictionary page.
// Templates are parsed once at startup and reused.
type PageHandler struct {
	templates  *template.Template
	dictionary *service.DictionaryService
	settings   *service.SettingService
	logger     *slog.Logger

	// pick returns an index in [0, n). Replaced in tests.
	pick func(n int) int
}

// pageData is what home.html renders.
type pageData struct {
	Site          *model.SiteInfo
	Query         string
	Entries       []model.Entry
	LoadingPhrase string
}

// NewPageHandler parses base.html and home.html from templateDir.
// base.html defines the page shell with a {{template "content" .}}
// placeholder; home.html fills it in.
func NewPageHandler(
	templateDir string,
	dictionary *service.DictionaryService,
	settings *service.SettingService,
	logger *slog.Logger,
) (*PageHandler, error) {
	tmpl, err := template.New("base.html").Funcs(template.FuncMap{
		"deref": deref,
	}).ParseFiles(
		filepath.Join(templateDir, "base.html"),
		filepath.Join(templateDir, "home.html"),
	)
	if err != nil {
		return nil, err
	}

	return &PageHandler{
		templates:  tmpl,
		dictionary: dictionary,
		settings:   settings,
		logger:     logger,
		pick:       rand.IntN,
	}, nil
}

// HandleHome renders the dictionary with the site settings applied.
//
// HTTP: GET /?q=...
func (h *PageHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	site, err := h.settings.SiteInfo(r.Context())
	if err != nil {
		h.fail(w, "failed to load site settings", err)
		return
	}

	entries, err := h.dictionary.Search(r.Context(), query)
	if err != nil {
		h.fail(w, "failed to load entries", err)
		return
	}

	data := pageData{
		Site:    site,
		Query:   query,
		Entries: entries,
	}
	if n := len(site.LoadingPhrases); n > 0 {
		data.LoadingPhrase = site.LoadingPhrases[h.pick(n)]
	}

	// Render into a buffer so a template error can still become a clean 500.
	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, "base", data); err != nil {
		h.fail(w, "failed to render template", err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (h *PageHandler) fail(w http.ResponseWriter, msg string, err error) {
	h.logger.Error(msg, slog.String("error", err.Error()))
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
