// Package models contains domain types, request payloads and domain errors
package models

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// Role is the closed set of account roles
type Role string

const (
	RoleStudent   Role = "estudiante"
	RoleProfessor Role = "profesor"
	// RoleDirector is the only administrative role
	RoleDirector  Role = "director"
)

// IsValid reports whether r belongs to the closed role set
func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleProfessor, RoleDirector:
		return true
	default:
		return false
	}
}

// User represents an account stored in the users table
type User struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"` // salt || derived hash, never serialized
	Role         Role   `json:"role"`
}

// PublicProfile is the part of a user that is safe to hand to clients
type PublicProfile struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// Profile returns the public view of the user
func (u *User) Profile() PublicProfile {
	return PublicProfile{ID: u.ID, Name: u.Name, Role: u.Role}
}

// UserListItem represents a user in the admin list
type UserListItem struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// UserTotals holds the number of accounts per non-admin role
type UserTotals struct {
	Professors int `json:"total_professors"`
	Students   int `json:"total_students"`
}

// RegisterRequest represents a registration payload
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the registration payload
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Email, validation.Required, validation.Length(3, 255), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(1, 128)),
	)
}

// CreateUserRequest represents a director request to register an account with an explicit role
type CreateUserRequest struct {
	RegisterRequest
	Role Role `json:"role"`
}

// Validate checks the payload including the role
func (r CreateUserRequest) Validate() error {
	if err := r.RegisterRequest.Validate(); err != nil {
		return err
	}
	return validation.ValidateStruct(&r,
		validation.Field(&r.Role, validation.Required, validation.In(RoleStudent, RoleProfessor, RoleDirector)),
	)
}

// LoginRequest represents a login payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the login payload
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(3, 255)),
		validation.Field(&r.Password, validation.Required, validation.Length(1, 128)),
	)
}

// LoginResult is returned by a successful login
type LoginResult struct {
	Token string        `json:"token"`
	User  PublicProfile `json:"user"`
}

// UpdateUserRequest represents an edit of a student or professor.
// An empty Password leaves the stored credential untouched.
type UpdateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
}

// Validate checks the edit payload
func (r UpdateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Email, validation.Required, validation.Length(3, 255), is.Email),
		validation.Field(&r.Password, validation.Length(1, 128)),
	)
}
