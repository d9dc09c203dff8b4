package model

import "time"

// User is an administrator account.
//
// PasswordHash is a bcrypt hash and is never serialised: the json:"-" tag keeps
// it out of every API response, even if a handler encodes the whole struct.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PublicUser is the identity shape returned by login and /api/me.
type PublicUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Public strips everything but the identity fields.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username}
}
