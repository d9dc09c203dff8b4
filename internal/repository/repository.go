// Package repository declares the storage interfaces the service layer depends on.
// Implementations live in subpackages (see repository/sqlite).
package repository

import (
	"context"

	"github.com/sakif/phrasebook/internal/model"
)

// EntryRepository stores glossary entries. List returns entries in store order
// (ascending id). Lookups of a missing id return apperror.ErrNotFound.
type EntryRepository interface {
	Create(ctx context.Context, entry *model.Entry) error
	GetByID(ctx context.Context, id int64) (*model.Entry, error)
	List(ctx context.Context) ([]model.Entry, error)
	Update(ctx context.Context, entry *model.Entry) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	CountUsers(ctx context.Context) (int, error)
}

// SettingRepository is a key/value store. SetSetting inserts the key or
// overwrites its value and timestamp.
type SettingRepository interface {
	ListSettings(ctx context.Context) ([]model.Setting, error)
	GetSetting(ctx context.Context, key string) (*model.Setting, error)
	SetSetting(ctx context.Context, key string, value *string) (*model.Setting, error)
}
