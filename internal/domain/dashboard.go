package domain

// DashboardStats is a point-in-time aggregation over all tickets.
type DashboardStats struct {
	TotalTickets     int            `json:"total_tickets"`
	StatusCounts     map[string]int `json:"status_counts"`
	IssueTypeCounts  map[string]int `json:"issue_type_counts"`
	CRTypeCounts     map[string]int `json:"cr_type_counts"`
	ModulePending    map[string]int `json:"module_pending"`
	DeveloperPending map[string]int `json:"developer_pending"`
	SEPending        map[string]int `json:"se_pending"`
}
