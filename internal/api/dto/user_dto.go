package dto

// CreateUserRequest is the admin user creation payload.
type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"full_name" validate:"required"`
	Role     string `json:"role" validate:"required"`
}

// UpdateRoleRequest payload.
type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// ChangePasswordRequest payload for the caller's own password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"`
}

// ResetPasswordRequest payload for admin resets.
type ResetPasswordRequest struct {
	NewPassword string `json:"new_password"`
}
