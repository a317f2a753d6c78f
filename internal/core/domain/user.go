package domain

import "time"

// Role enumerates the dashboard roles a platform account can hold.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
	RoleParent  Role = "parent"
)

// User mirrors the persisted representation in the platform users table.
// Either Email or Phone may be empty, but at least one is always set for an
// account that can authenticate.
type User struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	Phone        *string
	PasswordHash string
	Role         Role
	SchoolID     *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Redacted returns a copy of the user safe to serialize in API responses.
func (u User) Redacted() User {
	copy := u
	copy.PasswordHash = ""
	return copy
}
