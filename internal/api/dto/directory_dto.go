package dto

// UpsertAssignmentRequest sets the owners of a module.
type UpsertAssignmentRequest struct {
	SupportEngineer string `json:"support_engineer" validate:"required"`
	Developer       string `json:"developer" validate:"required"`
	DeveloperEmail  string `json:"developer_email" validate:"omitempty,email"`
}
