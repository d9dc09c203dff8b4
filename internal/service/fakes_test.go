package service

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/sakif/phrasebook/internal/apperror"
	"github.com/sakif/phrasebook/internal/model"
	"github.com/sakif/phrasebook/internal/repository"
)

// In-memory fakes of the repository interfaces. Hand-written rather than
// generated so each test can see exactly what the fake does.

var (
	_ repository.EntryRepository   = (*fakeEntryRepo)(nil)
	_ repository.UserRepository    = (*fakeUserRepo)(nil)
	_ repository.SettingRepository = (*fakeSettingRepo)(nil)
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeEntryRepo struct {
	entries map[int64]model.Entry
	nextID  int64
	// set to a non-nil error to simulate a database failure
	listErr error
}

func newFakeEntryRepo() *fakeEntryRepo {
	return &fakeEntryRepo{entries: make(map[int64]model.Entry), nextID: 1}
}

func (f *fakeEntryRepo) Create(_ context.Context, e *model.Entry) error {
	e.ID = f.nextID
	f.nextID++
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	f.entries[e.ID] = *e
	return nil
}

func (f *fakeEntryRepo) GetByID(_ context.Context, id int64) (*model.Entry, error) {
	e, ok := f.entries[id]
	if !ok {
		return nil, apperror.NotFound("dictionary entry", strconv.FormatInt(id, 10))
	}
	return &e, nil
}

func (f *fakeEntryRepo) List(_ context.Context) ([]model.Entry, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]model.Entry, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeEntryRepo) Update(_ context.Context, e *model.Entry) error {
	if _, ok := f.entries[e.ID]; !ok {
		return apperror.NotFound("dictionary entry", strconv.FormatInt(e.ID, 10))
	}
	e.UpdatedAt = time.Now()
	f.entries[e.ID] = *e
	return nil
}

func (f *fakeEntryRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.entries[id]; !ok {
		return apperror.NotFound("dictionary entry", strconv.FormatInt(id, 10))
	}
	delete(f.entries, id)
	return nil
}

func (f *fakeEntryRepo) Count(_ context.Context) (int, error) {
	return len(f.entries), nil
}

type fakeUserRepo struct {
	users  map[int64]*model.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*model.User), nextID: 1}
}

func (f *fakeUserRepo) CreateUser(_ context.Context, u *model.User) error {
	for _, existing := range f.users {
		if existing.Username == u.Username {
			return apperror.Conflict("user", u.Username)
		}
	}
	u.ID = f.nextID
	f.nextID++
	copied := *u
	f.users[u.ID] = &copied
	return nil
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id int64) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", strconv.FormatInt(id, 10))
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("user", username)
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, id int64, hash string) error {
	u, ok := f.users[id]
	if !ok {
		return apperror.NotFound("user", strconv.FormatInt(id, 10))
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeUserRepo) CountUsers(_ context.Context) (int, error) {
	return len(f.users), nil
}

type fakeSettingRepo struct {
	settings map[string]model.Setting
	nextID   int64
}

func newFakeSettingRepo() *fakeSettingRepo {
	return &fakeSettingRepo{settings: make(map[string]model.Setting), nextID: 1}
}

func (f *fakeSettingRepo) ListSettings(_ context.Context) ([]model.Setting, error) {
	out := make([]model.Setting, 0, len(f.settings))
	for _, s := range f.settings {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (f *fakeSettingRepo) GetSetting(_ context.Context, key string) (*model.Setting, error) {
	s, ok := f.settings[key]
	if !ok {
		return nil, apperror.NotFound("setting", key)
	}
	return &s, nil
}

func (f *fakeSettingRepo) SetSetting(_ context.Context, key string, value *string) (*model.Setting, error) {
	s, ok := f.settings[key]
	if !ok {
		s = model.Setting{ID: f.nextID, Key: key}
		f.nextID++
	}
	s.Value = value
	s.UpdatedAt = time.Now()
	f.settings[key] = s
	return &s, nil
}

func strPtr(s string) *string { return &s }
