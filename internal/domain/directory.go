package domain

// ModuleAssignment maps an ERP module to the people who own its tickets.
type ModuleAssignment struct {
	Module          string `json:"module" yaml:"module"`
	SupportEngineer string `json:"support_engineer" yaml:"support_engineer"`
	Developer       string `json:"developer" yaml:"developer"`
	DeveloperEmail  string `json:"developer_email" yaml:"developer_email"`
}
