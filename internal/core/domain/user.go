package domain

import "errors"

var ErrUserNotFound = errors.New("user not found")
var ErrEmailExists = errors.New("email already exists")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrTooManyAttempts = errors.New("too many login attempts")

// User models an account holding a non-owning reference to exactly one Role.
// The referenced role may be deleted afterwards; the dangling reference is
// kept as-is and only joined views drop such users.
type User struct {
	ID           string       `json:"id"`
	FirstName    string       `json:"firstName"`
	LastName     string       `json:"lastName"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"`
	RoleID       string       `json:"role"`
	Active       bool         `json:"active"`
	RoleDetails  *RoleDetails `json:"roleDetails,omitempty"`
}

// RoleDetails is the slice of a Role exposed when a user is returned with its
// role populated.
type RoleDetails struct {
	RoleName      string   `json:"roleName"`
	AccessModules []string `json:"accessModules"`
}

// UserWithRole is a row of the user/role join used by search. Users whose
// role reference cannot be resolved never appear here.
type UserWithRole struct {
	ID          string      `json:"id"`
	FirstName   string      `json:"firstName"`
	LastName    string      `json:"lastName"`
	Email       string      `json:"email"`
	RoleDetails RoleDetails `json:"roleDetails"`
}
