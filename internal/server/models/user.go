package models

import "time"

// User is a registered account. PasswordHash never leaves the server in
// JSON responses.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	Nickname     string     `json:"nickname"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Activated    bool       `json:"activated"`
	ActivatedAt  *time.Time `json:"activated_at"`
}

// UserUpdate carries the optional fields of a partial profile update.
type UserUpdate struct {
	Username *string
	Nickname *string
}
