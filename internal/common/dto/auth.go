package dto

import "strings"

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Missing() []string {
	return missing(
		required("email", r.Email),
		required("password", r.Password),
	)
}

// CreateUserRequest represents a request to create a new user
type CreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	RoleID   uint   `json:"roleId"`
}

func (r *CreateUserRequest) Missing() []string {
	return missing(
		required("username", r.Username),
		required("email", r.Email),
		requiredID("roleId", r.RoleID),
		required("password", r.Password),
	)
}

// UpdateUserRequest represents a request to update a user. An empty password keeps the current one.
type UpdateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password,omitempty"`
	RoleID   uint   `json:"roleId"`
	Disabled bool   `json:"disabled"`
}

func (r *UpdateUserRequest) Missing() []string {
	return missing(
		required("username", r.Username),
		required("email", r.Email),
		requiredID("roleId", r.RoleID),
	)
}

type field struct {
	name  string
	empty bool
}

func required(name, value string) field {
	return field{name: name, empty: strings.TrimSpace(value) == ""}
}

func requiredID(name string, id uint) field {
	return field{name: name, empty: id == 0}
}

func missing(fields ...field) []string {
	var out []string
	for _, f := range fields {
		if f.empty {
			out = append(out, f.name)
		}
	}
	return out
}
