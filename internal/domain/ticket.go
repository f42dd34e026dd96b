package domain

import (
	"strings"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusNew        TicketStatus = "New"
	TicketStatusAssigned   TicketStatus = "Assigned"
	TicketStatusInProgress TicketStatus = "In Progress"
	TicketStatusPending    TicketStatus = "Pending"
	TicketStatusCompleted  TicketStatus = "Completed"
	TicketStatusClosed     TicketStatus = "Closed"
)

// TicketStatuses lists states in lifecycle order.
func TicketStatuses() []TicketStatus {
	return []TicketStatus{
		TicketStatusNew,
		TicketStatusAssigned,
		TicketStatusInProgress,
		TicketStatusPending,
		TicketStatusCompleted,
		TicketStatusClosed,
	}
}

// Valid reports whether s is a known status.
func (s TicketStatus) Valid() bool {
	for _, candidate := range TicketStatuses() {
		if candidate == s {
			return true
		}
	}
	return false
}

// Open reports whether the ticket still counts as pending work.
func (s TicketStatus) Open() bool {
	switch s {
	case TicketStatusNew, TicketStatusAssigned, TicketStatusInProgress, TicketStatusPending:
		return true
	}
	return false
}

// TicketPriority enumerates urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "Low"
	TicketPriorityMedium TicketPriority = "Medium"
	TicketPriorityHigh   TicketPriority = "High"
)

// Valid reports whether p is a known priority.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh:
		return true
	}
	return false
}

// CRType is the origin of the change request.
type CRType string

const (
	CRTypeCustomer CRType = "Customer CR"
	CRTypeInternal CRType = "Internal CR"
)

// Valid reports whether c is a known CR type.
func (c CRType) Valid() bool {
	return c == CRTypeCustomer || c == CRTypeInternal
}

// ParseCRType matches a CR type case-insensitively. "Customer" and "Internal"
// are accepted as shorthands.
func ParseCRType(value string) (CRType, bool) {
	v := strings.TrimSpace(value)
	for _, c := range []CRType{CRTypeCustomer, CRTypeInternal} {
		if strings.EqualFold(v, string(c)) || strings.EqualFold(v+" CR", string(c)) {
			return c, true
		}
	}
	return "", false
}

// ParseTicketStatus matches a status case-insensitively.
func ParseTicketStatus(value string) (TicketStatus, bool) {
	for _, s := range TicketStatuses() {
		if strings.EqualFold(strings.TrimSpace(value), string(s)) {
			return s, true
		}
	}
	return "", false
}

// ResolutionTypes accepted when a ticket is completed.
var ResolutionTypes = []string{
	"Fixed",
	"Enhancement Implemented",
	"Configuration Change",
	"Data Correction",
	"Duplicate / Not Required",
	"User Error",
	"Deferred",
	"Cannot Reproduce",
}

// ValidResolutionType reports whether value is one of ResolutionTypes.
func ValidResolutionType(value string) bool {
	for _, candidate := range ResolutionTypes {
		if candidate == value {
			return true
		}
	}
	return false
}

// Ticket is the change request aggregate.
type Ticket struct {
	TicketNumber      string         `json:"ticket_number"`
	Customer          string         `json:"customer"`
	Module            string         `json:"module"`
	CRType            CRType         `json:"cr_type"`
	IssueType         string         `json:"issue_type"`
	Type              *string        `json:"type"`
	Description       string         `json:"description"`
	Priority          TicketPriority `json:"priority"`
	Status            TicketStatus   `json:"status"`
	SEName            string         `json:"se_name"`
	Developer         string         `json:"developer"`
	DeveloperEmail    string         `json:"developer_email,omitempty"`
	AMCCost           *string        `json:"amc_cost"`
	PRApproval        *string        `json:"pr_approval"`
	PlannedDate       *string        `json:"planned_date"`
	CommitmentDate    *string        `json:"commitment_date"`
	Remarks           *string        `json:"remarks"`
	ExeSent           *string        `json:"exe_sent"`
	ReasonForIssue    *string        `json:"reason_for_issue"`
	CustomerCall      *string        `json:"customer_call"`
	CRDate            string         `json:"cr_date"`
	CRTime            string         `json:"cr_time"`
	CompletedOn       *string        `json:"completed_on"`
	CompletedTime     *string        `json:"completed_time"`
	CompletedBy       *string        `json:"completed_by"`
	TimeDuration      *string        `json:"time_duration"`
	ResolutionType    *string        `json:"resolution_type"`
	CompletionRemarks *string        `json:"completion_remarks"`
	CreatedBy         string         `json:"created_by"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// Locked reports whether field edits are restricted to admins.
func (t *Ticket) Locked() bool {
	return t.Status == TicketStatusCompleted
}

// Clone returns a deep copy so callers cannot alias stored state.
func (t *Ticket) Clone() *Ticket {
	cp := *t
	for _, field := range []**string{
		&cp.Type, &cp.AMCCost, &cp.PRApproval, &cp.PlannedDate, &cp.CommitmentDate,
		&cp.Remarks, &cp.ExeSent, &cp.ReasonForIssue, &cp.CustomerCall,
		&cp.CompletedOn, &cp.CompletedTime, &cp.CompletedBy, &cp.TimeDuration,
		&cp.ResolutionType, &cp.CompletionRemarks,
	} {
		if *field != nil {
			v := **field
			*field = &v
		}
	}
	return &cp
}

// Date and time layouts used for cr_date/cr_time and completion stamps.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)
