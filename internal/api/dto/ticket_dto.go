package dto

import (
	"github.com/spec-kit/erp-ticket-service/internal/service"
)

// CreateTicketRequest payload. Required fields are checked by the service
// after the caller's permission.
type CreateTicketRequest struct {
	Customer       string  `json:"customer"`
	Module         string  `json:"module"`
	CRType         string  `json:"cr_type"`
	IssueType      string  `json:"issue_type"`
	Type           *string `json:"type"`
	Description    string  `json:"description"`
	Priority       string  `json:"priority"`
	AMCCost        *string `json:"amc_cost"`
	PRApproval     *string `json:"pr_approval"`
	PlannedDate    *string `json:"planned_date"`
	CommitmentDate *string `json:"commitment_date"`
	Remarks        *string `json:"remarks"`
	ExeSent        *string `json:"exe_sent"`
	ReasonForIssue *string `json:"reason_for_issue"`
	CustomerCall   *string `json:"customer_call"`
}

// ToInput maps the request to the service input.
func (r CreateTicketRequest) ToInput() service.TicketCreateInput {
	return service.TicketCreateInput{
		Customer:       r.Customer,
		Module:         r.Module,
		CRType:         r.CRType,
		IssueType:      r.IssueType,
		Type:           r.Type,
		Description:    r.Description,
		Priority:       r.Priority,
		AMCCost:        r.AMCCost,
		PRApproval:     r.PRApproval,
		PlannedDate:    r.PlannedDate,
		CommitmentDate: r.CommitmentDate,
		Remarks:        r.Remarks,
		ExeSent:        r.ExeSent,
		ReasonForIssue: r.ReasonForIssue,
		CustomerCall:   r.CustomerCall,
	}
}

// UpdateTicketRequest is a partial update. Ticket number, cr date/time,
// se_name and developer are not accepted; clients may still send them.
type UpdateTicketRequest struct {
	Customer       *string `json:"customer"`
	Module         *string `json:"module"`
	CRType         *string `json:"cr_type"`
	IssueType      *string `json:"issue_type"`
	Type           *string `json:"type"`
	Description    *string `json:"description"`
	Priority       *string `json:"priority"`
	AMCCost        *string `json:"amc_cost"`
	PRApproval     *string `json:"pr_approval"`
	PlannedDate    *string `json:"planned_date"`
	CommitmentDate *string `json:"commitment_date"`
	Remarks        *string `json:"remarks"`
	ExeSent        *string `json:"exe_sent"`
	ReasonForIssue *string `json:"reason_for_issue"`
	CustomerCall   *string `json:"customer_call"`
}

// ToPatch maps the request to the service patch.
func (r UpdateTicketRequest) ToPatch() service.TicketPatch {
	return service.TicketPatch{
		Customer:       r.Customer,
		Module:         r.Module,
		CRType:         r.CRType,
		IssueType:      r.IssueType,
		Type:           r.Type,
		Description:    r.Description,
		Priority:       r.Priority,
		AMCCost:        r.AMCCost,
		PRApproval:     r.PRApproval,
		PlannedDate:    r.PlannedDate,
		CommitmentDate: r.CommitmentDate,
		Remarks:        r.Remarks,
		ExeSent:        r.ExeSent,
		ReasonForIssue: r.ReasonForIssue,
		CustomerCall:   r.CustomerCall,
	}
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status            string  `json:"status" validate:"required"`
	CompletedBy       string  `json:"completed_by"`
	ResolutionType    *string `json:"resolution_type"`
	CompletionRemarks *string `json:"completion_remarks"`
}

// ToInput maps the request to the service input.
func (r UpdateStatusRequest) ToInput() service.StatusUpdateInput {
	return service.StatusUpdateInput{
		Status:            r.Status,
		CompletedBy:       r.CompletedBy,
		ResolutionType:    r.ResolutionType,
		CompletionRemarks: r.CompletionRemarks,
	}
}

// IntakeRequest is an inbound change-request email.
type IntakeRequest struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
	From    string `json:"from" validate:"omitempty,email"`
}

// TicketListQuery holds the list filters taken from the query string.
type TicketListQuery struct {
	Status    string `query:"status"`
	Module    string `query:"module"`
	Customer  string `query:"customer"`
	Developer string `query:"developer"`
	SEName    string `query:"se_name"`
	CRType    string `query:"cr_type"`
	IssueType string `query:"issue_type"`
	FromDate  string `query:"from_date" json:"from_date" validate:"omitempty,datetime=2006-01-02"`
	ToDate    string `query:"to_date" json:"to_date" validate:"omitempty,datetime=2006-01-02"`
}
