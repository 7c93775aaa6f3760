package domain

import "time"

// User represents a registered account
type User struct {
	UserID       string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserRef is the public projection of a user embedded in group views
type UserRef struct {
	UserID string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// Ref returns the public projection of the user
func (u *User) Ref() UserRef {
	return UserRef{UserID: u.UserID, Name: u.Name, Email: u.Email}
}
