// Package models holds the domain records shared by repositories, services
// and transports.
package models

import "time"

// Role is the account role carried in session tokens.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is an account. PasswordHash never leaves the service layer.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Ref returns the public projection of u.
func (u *User) Ref() *UserRef {
	return &UserRef{ID: u.ID, Username: u.Username, Email: u.Email}
}

// UserRef is a resolved reference to an account: identifier plus the
// public display fields. Username and Email are empty when only the
// identifier is known.
type UserRef struct {
	ID       string
	Username string
	Email    string
}
