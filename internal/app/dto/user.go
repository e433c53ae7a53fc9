package dto

import (
	domainuser "stayflow/internal/domain/user"
)

// User is the public account shape.
type User struct {
	ID    string   `json:"id"`
	Email string   `json:"email"`
	Name  string   `json:"name"`
	Roles []string `json:"roles"`
}

// AuthResponse pairs the account with a freshly issued session token.
type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

func MapUser(u *domainuser.User) User {
	if u == nil {
		return User{}
	}
	roles := make([]string, 0, len(u.Roles))
	for _, role := range u.Roles {
		roles = append(roles, string(role))
	}
	return User{ID: string(u.ID), Email: u.Email, Name: u.Name, Roles: roles}
}
