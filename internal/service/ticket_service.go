package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/erp-ticket-service/internal/domain"
	"github.com/spec-kit/erp-ticket-service/internal/events"
	"github.com/spec-kit/erp-ticket-service/internal/policy"
	"github.com/spec-kit/erp-ticket-service/internal/repository"
	apperrors "github.com/spec-kit/erp-ticket-service/pkg/util/errorutil"
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets         repository.TicketRepository
	directory       *DirectoryService
	policy          *policy.Policy
	dispatcher      events.Dispatcher
	now             Clock
	mutationTimeout time.Duration
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo      repository.TicketRepository
	Directory       *DirectoryService
	Policy          *policy.Policy
	Dispatcher      events.Dispatcher
	Clock           Clock
	MutationTimeout time.Duration
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Customer       string
	Module         string
	CRType         string
	IssueType      string
	Type           *string
	Description    string
	Priority       string
	AMCCost        *string
	PRApproval     *string
	PlannedDate    *string
	CommitmentDate *string
	Remarks        *string
	ExeSent        *string
	ReasonForIssue *string
	CustomerCall   *string
}

// TicketPatch lists editable fields; nil leaves a field unchanged.
type TicketPatch struct {
	Customer       *string
	Module         *string
	CRType         *string
	IssueType      *string
	Type           *string
	Description    *string
	Priority       *string
	AMCCost        *string
	PRApproval     *string
	PlannedDate    *string
	CommitmentDate *string
	Remarks        *string
	ExeSent        *string
	ReasonForIssue *string
	CustomerCall   *string
}

// StatusUpdateInput is the payload of a status change.
type StatusUpdateInput struct {
	Status            string
	CompletedBy       string
	ResolutionType    *string
	CompletionRemarks *string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &TicketService{
		tickets:         deps.TicketRepo,
		directory:       deps.Directory,
		policy:          deps.Policy,
		dispatcher:      deps.Dispatcher,
		now:             clock,
		mutationTimeout: deps.MutationTimeout,
	}
}

// CreateTicket registers a new ticket and assigns its owners from the module directory.
func (s *TicketService) CreateTicket(ctx context.Context, actor *domain.User, input TicketCreateInput) (*domain.Ticket, error) {
	return s.create(ctx, actor, input, "")
}

func (s *TicketService) create(ctx context.Context, actor *domain.User, input TicketCreateInput, emailSubject string) (*domain.Ticket, error) {
	if actor == nil || !s.policy.Can(actor.Role, policy.ActionCreateTicket) {
		return nil, apperrors.NewForbidden("your role cannot create tickets")
	}

	customer := strings.TrimSpace(input.Customer)
	issueType := strings.TrimSpace(input.IssueType)
	description := strings.TrimSpace(input.Description)
	if err := requireFields(map[string]string{
		"customer":    customer,
		"module":      strings.TrimSpace(input.Module),
		"issue_type":  issueType,
		"description": description,
	}); err != nil {
		return nil, err
	}
	crType, err := parseCRType(input.CRType, domain.CRTypeCustomer)
	if err != nil {
		return nil, err
	}
	priority, err := parsePriority(input.Priority, domain.TicketPriorityMedium)
	if err != nil {
		return nil, err
	}
	assignment, err := s.directory.Resolve(ctx, input.Module)
	if err != nil {
		return nil, err
	}

	now := s.now()
	ticket := &domain.Ticket{
		Customer:       customer,
		Module:         assignment.Module,
		CRType:         crType,
		IssueType:      issueType,
		Type:           input.Type,
		Description:    description,
		Priority:       priority,
		Status:         domain.TicketStatusNew,
		SEName:         assignment.SupportEngineer,
		Developer:      assignment.Developer,
		DeveloperEmail: assignment.DeveloperEmail,
		AMCCost:        input.AMCCost,
		PRApproval:     input.PRApproval,
		PlannedDate:    input.PlannedDate,
		CommitmentDate: input.CommitmentDate,
		Remarks:        input.Remarks,
		ExeSent:        input.ExeSent,
		ReasonForIssue: input.ReasonForIssue,
		CustomerCall:   input.CustomerCall,
		CRDate:         now.Format(domain.DateLayout),
		CRTime:         now.Format(domain.TimeLayout),
		CreatedBy:      actor.Username,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	ctx, cancel := detach(ctx, s.mutationTimeout)
	defer cancel()
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}

	payload := events.NewTicketCreatedPayload(ticket)
	payload.EmailSubject = emailSubject
	s.publishEvent(ctx, events.Event{
		Type:         events.EventTicketCreated,
		TicketNumber: ticket.TicketNumber,
		Actor:        actor.Username,
		Payload:      payload,
	})
	return ticket, nil
}

// GetTicket returns a single ticket.
func (s *TicketService) GetTicket(ctx context.Context, actor *domain.User, ticketNumber string) (*domain.Ticket, error) {
	if err := s.authorizeView(actor); err != nil {
		return nil, err
	}
	ticket, err := s.tickets.Get(ctx, ticketNumber)
	if err != nil {
		return nil, notFound(err, "ticket", ticketNumber)
	}
	return ticket, nil
}

// ListTickets returns tickets matching filter in creation order.
func (s *TicketService) ListTickets(ctx context.Context, actor *domain.User, filter repository.TicketFilter) ([]domain.Ticket, error) {
	if err := s.authorizeView(actor); err != nil {
		return nil, err
	}
	return s.tickets.List(ctx, filter)
}

// UpdateTicket applies a field patch. Ticket number, cr date/time and the
// assigned engineer/developer are not part of the patch and cannot change here.
func (s *TicketService) UpdateTicket(ctx context.Context, actor *domain.User, ticketNumber string, patch TicketPatch) (*domain.Ticket, error) {
	if actor == nil {
		return nil, apperrors.NewForbidden("authentication required")
	}
	current, err := s.tickets.Get(ctx, ticketNumber)
	if err != nil {
		return nil, notFound(err, "ticket", ticketNumber)
	}
	if err := s.checkEdit(actor, current); err != nil {
		return nil, err
	}

	apply, err := s.preparePatch(ctx, patch)
	if err != nil {
		return nil, err
	}

	ctx, cancel := detach(ctx, s.mutationTimeout)
	defer cancel()
	updated, err := s.tickets.Update(ctx, ticketNumber, func(t *domain.Ticket) error {
		// status may have moved since the read above
		if err := s.checkEdit(actor, t); err != nil {
			return err
		}
		apply(t)
		t.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return nil, notFound(err, "ticket", ticketNumber)
	}
	return updated, nil
}

// preparePatch validates patch and returns the mutation that applies it.
func (s *TicketService) preparePatch(ctx context.Context, patch TicketPatch) (func(*domain.Ticket), error) {
	required := map[string]*string{
		"customer":    patch.Customer,
		"module":      patch.Module,
		"issue_type":  patch.IssueType,
		"description": patch.Description,
	}
	for field, value := range required {
		if value != nil && strings.TrimSpace(*value) == "" {
			return nil, apperrors.NewValidationError(field+" cannot be empty", map[string]any{"field": field})
		}
	}

	var (
		crType   domain.CRType
		priority domain.TicketPriority
		module   string
		err      error
	)
	if patch.CRType != nil {
		if crType, err = parseCRType(*patch.CRType, ""); err != nil {
			return nil, err
		}
	}
	if patch.Priority != nil {
		if priority, err = parsePriority(*patch.Priority, ""); err != nil {
			return nil, err
		}
	}
	if patch.Module != nil {
		assignment, err := s.directory.Resolve(ctx, *patch.Module)
		if err != nil {
			return nil, err
		}
		module = assignment.Module
	}

	return func(t *domain.Ticket) {
		if patch.Customer != nil {
			t.Customer = strings.TrimSpace(*patch.Customer)
		}
		if module != "" {
			t.Module = module
		}
		if crType != "" {
			t.CRType = crType
		}
		if patch.IssueType != nil {
			t.IssueType = strings.TrimSpace(*patch.IssueType)
		}
		if patch.Description != nil {
			t.Description = strings.TrimSpace(*patch.Description)
		}
		if priority != "" {
			t.Priority = priority
		}
		for _, f := range []struct {
			dst **string
			src *string
		}{
			{&t.Type, patch.Type},
			{&t.AMCCost, patch.AMCCost},
			{&t.PRApproval, patch.PRApproval},
			{&t.PlannedDate, patch.PlannedDate},
			{&t.CommitmentDate, patch.CommitmentDate},
			{&t.Remarks, patch.Remarks},
			{&t.ExeSent, patch.ExeSent},
			{&t.ReasonForIssue, patch.ReasonForIssue},
			{&t.CustomerCall, patch.CustomerCall},
		} {
			if f.src != nil {
				v := *f.src
				*f.dst = &v
			}
		}
	}, nil
}

// UpdateStatus moves a ticket to any of the six statuses, except that only
// Admins may re-open a Completed ticket. Entering Completed stamps the
// completion fields; leaving it keeps them.
func (s *TicketService) UpdateStatus(ctx context.Context, actor *domain.User, ticketNumber string, input StatusUpdateInput) (*domain.Ticket, error) {
	if actor == nil {
		return nil, apperrors.NewForbidden("authentication required")
	}
	status, ok := domain.ParseTicketStatus(input.Status)
	if !ok {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"field": "status", "allowed": domain.TicketStatuses()})
	}
	if input.ResolutionType != nil && *input.ResolutionType != "" && !domain.ValidResolutionType(*input.ResolutionType) {
		return nil, apperrors.NewValidationError("invalid resolution_type", map[string]any{"field": "resolution_type", "allowed": domain.ResolutionTypes})
	}
	completedBy := strings.TrimSpace(input.CompletedBy)
	if completedBy == "" {
		completedBy = actor.FullName
	}

	var previous domain.TicketStatus
	ctx, cancel := detach(ctx, s.mutationTimeout)
	defer cancel()
	updated, err := s.tickets.Update(ctx, ticketNumber, func(t *domain.Ticket) error {
		if !s.policy.CanOnTicket(actor.Role, policy.ActionChangeStatus, t.Status) {
			return apperrors.NewForbidden("your role cannot change ticket status")
		}
		if reopens(t.Status, status) && !s.policy.CanOnTicket(actor.Role, policy.ActionEditTicket, t.Status) {
			return apperrors.NewEditLocked("only admins can re-open a completed ticket")
		}
		now := s.now()
		previous = t.Status
		t.Status = status
		t.UpdatedAt = now
		if status == domain.TicketStatusCompleted && previous != domain.TicketStatusCompleted {
			stampCompletion(t, now, completedBy, input)
		}
		return nil
	})
	if err != nil {
		return nil, notFound(err, "ticket", ticketNumber)
	}

	if previous != status {
		payload := events.TicketStatusChangedPayload{OldStatus: previous, NewStatus: status}
		if status == domain.TicketStatusCompleted {
			payload.CompletedBy = updated.CompletedBy
		}
		s.publishEvent(ctx, events.Event{
			Type:         events.EventTicketStatusChanged,
			TicketNumber: ticketNumber,
			Actor:        actor.Username,
			Payload:      payload,
		})
	}
	return updated, nil
}

// reopens reports whether moving from -> to takes a Completed ticket back to
// open work. Closing a Completed ticket is not a re-open.
func reopens(from, to domain.TicketStatus) bool {
	return from == domain.TicketStatusCompleted && to.Open()
}

func stampCompletion(t *domain.Ticket, now time.Time, completedBy string, input StatusUpdateInput) {
	on := now.Format(domain.DateLayout)
	at := now.Format(domain.TimeLayout)
	duration := formatDuration(now.Sub(t.CreatedAt))
	t.CompletedOn = &on
	t.CompletedTime = &at
	t.CompletedBy = &completedBy
	t.TimeDuration = &duration
	if input.ResolutionType != nil && *input.ResolutionType != "" {
		v := *input.ResolutionType
		t.ResolutionType = &v
	}
	if input.CompletionRemarks != nil {
		v := *input.CompletionRemarks
		t.CompletionRemarks = &v
	}
}

// formatDuration renders whole elapsed days.
func formatDuration(elapsed time.Duration) string {
	if elapsed < 0 {
		elapsed = 0
	}
	return fmt.Sprintf("%d days", int(elapsed/(24*time.Hour)))
}

func (s *TicketService) checkEdit(actor *domain.User, t *domain.Ticket) error {
	if s.policy.CanOnTicket(actor.Role, policy.ActionEditTicket, t.Status) {
		return nil
	}
	if t.Locked() {
		return apperrors.NewEditLocked("ticket is completed; only admins can edit it")
	}
	return apperrors.NewForbidden("your role cannot edit tickets")
}

func (s *TicketService) authorizeView(actor *domain.User) error {
	if actor == nil || !s.policy.Can(actor.Role, policy.ActionView) {
		return apperrors.NewForbidden("your role cannot view tickets")
	}
	return nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func requireFields(fields map[string]string) error {
	var missing []string
	for _, name := range []string{"customer", "module", "issue_type", "description"} {
		if value, ok := fields[name]; ok && value == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return apperrors.NewValidationError("missing required fields: "+strings.Join(missing, ", "),
			map[string]any{"fields": missing})
	}
	return nil
}

func parseCRType(value string, fallback domain.CRType) (domain.CRType, error) {
	if strings.TrimSpace(value) == "" && fallback != "" {
		return fallback, nil
	}
	crType, ok := domain.ParseCRType(value)
	if !ok {
		return "", apperrors.NewValidationError("invalid cr_type", map[string]any{"field": "cr_type"})
	}
	return crType, nil
}

func parsePriority(value string, fallback domain.TicketPriority) (domain.TicketPriority, error) {
	value = strings.TrimSpace(value)
	if value == "" && fallback != "" {
		return fallback, nil
	}
	for _, p := range []domain.TicketPriority{domain.TicketPriorityLow, domain.TicketPriorityMedium, domain.TicketPriorityHigh} {
		if strings.EqualFold(value, string(p)) {
			return p, nil
		}
	}
	return "", apperrors.NewValidationError("invalid priority", map[string]any{"field": "priority"})
}
