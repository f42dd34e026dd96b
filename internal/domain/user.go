package domain

import (
	"strings"
	"time"
)

// Role is the tagged set of account roles.
type Role string

const (
	RoleAdmin           Role = "Admin"
	RoleSupportEngineer Role = "Support Engineer"
	RoleDeveloper       Role = "Developer"
	RoleManager         Role = "Manager"
)

// SelfRegistration is the created_by sentinel for accounts that signed themselves up.
const SelfRegistration = "self_registration"

// Roles lists every valid role.
func Roles() []Role {
	return []Role{RoleAdmin, RoleSupportEngineer, RoleDeveloper, RoleManager}
}

// ParseRole matches a role name case-insensitively.
func ParseRole(value string) (Role, bool) {
	for _, role := range Roles() {
		if strings.EqualFold(string(role), strings.TrimSpace(value)) {
			return role, true
		}
	}
	return "", false
}

// User is an account of the ticketing application.
type User struct {
	Username     string
	PasswordHash string
	FullName     string
	Role         Role
	CreatedAt    time.Time
	CreatedBy    string
}

// PublicUser is the projection of a user that is safe to return to clients.
type PublicUser struct {
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	CreatedBy string    `json:"created_by"`
}

// Public strips the password hash.
func (u *User) Public() PublicUser {
	return PublicUser{
		Username:  u.Username,
		FullName:  u.FullName,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		CreatedBy: u.CreatedBy,
	}
}
