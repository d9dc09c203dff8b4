package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/sakif/phrasebook/internal/auth"
	"github.com/sakif/phrasebook/internal/handler"
	"github.com/sakif/phrasebook/internal/model"
	sqliteRepo "github.com/sakif/phrasebook/internal/repository/sqlite"
	"github.com/sakif/phrasebook/internal/service"
)

const (
	adminUser = "admin"
	adminPass = "admin123"
)

// testEnv is the full handler → service → in-memory SQLite stack behind a
// router laid out like the real one.
type testEnv struct {
	router     http.Handler
	db         *sqliteRepo.DB
	tokens     *auth.TokenService
	dictionary *service.DictionaryService
	settings   *service.SettingService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sqliteRepo.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tokens, err := auth.NewTokenService("handler-test-secret-0123456789", time.Hour)
	require.NoError(t, err)

	authSvc := service.NewAuthService(db, tokens, auth.NewPasswordServiceForTest(4), logger)
	dictSvc := service.NewDictionaryService(db, logger)
	settingSvc := service.NewSettingService(db, logger)

	_, err = authSvc.EnsureAdmin(context.Background(), adminUser, adminPass)
	require.NoError(t, err)

	authHandler := handler.NewAuthHandler(authSvc, tokens, false, logger)
	dictHandler := handler.NewDictionaryHandler(dictSvc, logger)
	settingsHandler := handler.NewSettingsHandler(settingSvc, logger)
	pageHandler, err := handler.NewPageHandler(filepath.Join("..", "..", "web", "templates"), dictSvc, settingSvc, logger)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Get("/", pageHandler.HandleHome)
	r.Route("/api", func(r chi.Router) {
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/logout", authHandler.HandleLogout)
		r.Get("/dictionary", dictHandler.HandleList)
		r.Get("/dictionary/{id}", dictHandler.HandleGetByID)
		r.Get("/settings", settingsHandler.HandleList)
		r.Get("/settings/{key}", settingsHandler.HandleGet)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Get("/me", authHandler.HandleMe)
			r.Post("/change-password", authHandler.HandleChangePassword)
			r.Post("/dictionary", dictHandler.HandleCreate)
			r.Put("/dictionary/{id}", dictHandler.HandleUpdate)
			r.Delete("/dictionary/{id}", dictHandler.HandleDelete)
			r.Post("/settings", settingsHandler.HandleSet)
		})
	})

	return &testEnv{
		router:     r,
		db:         db,
		tokens:     tokens,
		dictionary: dictSvc,
		settings:   settingSvc,
	}
}

// do sends a request with an optional JSON body and bearer token.
func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf io.Reader = http.NoBody
	switch b := body.(type) {
	case nil:
	case string:
		buf = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		buf = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

// login returns a token for the seeded admin.
func (e *testEnv) login(t *testing.T) string {
	t.Helper()

	rr := e.do(t, http.MethodPost, "/api/login", map[string]string{
		"username": adminUser, "password": adminPass,
	}, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp handler.LoginResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func (e *testEnv) seedEntry(t *testing.T, phrase, translation, usage string) *model.Entry {
	t.Helper()

	entry, err := e.dictionary.Create(context.Background(), model.EntryInput{
		Phrase: phrase, Translation: translation, UsageContext: usage,
	})
	require.NoError(t, err)
	return entry
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}
