package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/erp-ticket-service/internal/domain"
)

// TicketFilter captures list filters. Zero values impose no constraint.
type TicketFilter struct {
	Status    domain.TicketStatus
	Module    string
	Customer  string
	Developer string
	SEName    string
	CRType    domain.CRType
	IssueType string
	FromDate  string
	ToDate    string
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	// Create assigns the next ticket number for the creation year and stores the ticket.
	Create(ctx context.Context, ticket *domain.Ticket) error
	Get(ctx context.Context, ticketNumber string) (*domain.Ticket, error)
	// Update applies mutate to the current record as one atomic step. If mutate
	// returns an error nothing is written.
	Update(ctx context.Context, ticketNumber string, mutate func(*domain.Ticket) error) (*domain.Ticket, error)
	// List returns matching tickets in creation order from a single consistent read.
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `ticket_number, customer, module, cr_type, issue_type, type, description, priority, status,
               se_name, developer, developer_email, amc_cost, pr_approval, planned_date, commitment_date, remarks,
               exe_sent, reason_for_issue, customer_call, cr_date, cr_time, completed_on, completed_time,
               completed_by, time_duration, resolution_type, completion_remarks, created_by, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const nextCounter = `
        INSERT INTO ticket_counters (year, counter) VALUES ($1, 1)
        ON CONFLICT (year) DO UPDATE SET counter = ticket_counters.counter + 1
        RETURNING counter`
	const insert = `
        INSERT INTO tickets (` + ticketColumns + `)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,
                $21,$22,$23,$24,$25,$26,$27,$28,$29,$30,$31)`

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var counter int64
		if err := tx.QueryRow(ctx, nextCounter, ticket.CreatedAt.Year()).Scan(&counter); err != nil {
			return err
		}
		ticket.TicketNumber = FormatTicketNumber(ticket.CreatedAt.Year(), counter)
		_, err := tx.Exec(ctx, insert, ticketArgs(ticket)...)
		return err
	})
	return mapPgError(err)
}

func (r *ticketRepository) Get(ctx context.Context, ticketNumber string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE ticket_number=$1`
	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, ticketNumber))
	if err != nil {
		return nil, mapPgError(err)
	}
	return ticket, nil
}

func (r *ticketRepository) Update(ctx context.Context, ticketNumber string, mutate func(*domain.Ticket) error) (*domain.Ticket, error) {
	const update = `
        UPDATE tickets SET customer=$2, module=$3, cr_type=$4, issue_type=$5, type=$6, description=$7,
            priority=$8, status=$9, se_name=$10, developer=$11, developer_email=$12, amc_cost=$13,
            pr_approval=$14, planned_date=$15, commitment_date=$16, remarks=$17, exe_sent=$18,
            reason_for_issue=$19, customer_call=$20, cr_date=$21, cr_time=$22, completed_on=$23,
            completed_time=$24, completed_by=$25, time_duration=$26, resolution_type=$27,
            completion_remarks=$28, created_by=$29, created_at=$30, updated_at=$31
        WHERE ticket_number=$1`

	var updated *domain.Ticket
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		query := `SELECT ` + ticketColumns + ` FROM tickets WHERE ticket_number=$1 FOR UPDATE`
		ticket, err := scanTicket(tx.QueryRow(ctx, query, ticketNumber))
		if err != nil {
			return err
		}
		if err := mutate(ticket); err != nil {
			return err
		}
		ticket.TicketNumber = ticketNumber
		if _, err := tx.Exec(ctx, update, ticketArgs(ticket)...); err != nil {
			return err
		}
		updated = ticket
		return nil
	})
	if err != nil {
		return nil, mapPgError(err)
	}
	return updated, nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	eq := func(column string, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf("%s=$%d", column, len(args)))
	}
	eq("status", string(filter.Status))
	eq("module", filter.Module)
	eq("developer", filter.Developer)
	eq("se_name", filter.SEName)
	eq("cr_type", string(filter.CRType))
	eq("issue_type", filter.IssueType)

	if filter.Customer != "" {
		args = append(args, filter.Customer)
		clauses = append(clauses, fmt.Sprintf("strpos(lower(customer), lower($%d)) > 0", len(args)))
	}
	if filter.FromDate != "" {
		args = append(args, filter.FromDate)
		clauses = append(clauses, fmt.Sprintf("cr_date >= $%d", len(args)))
	}
	if filter.ToDate != "" {
		args = append(args, filter.ToDate)
		clauses = append(clauses, fmt.Sprintf("cr_date <= $%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY seq ASC`,
		ticketColumns, strings.Join(clauses, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Ticket{}
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func ticketArgs(t *domain.Ticket) []any {
	return []any{
		t.TicketNumber,
		t.Customer,
		t.Module,
		t.CRType,
		t.IssueType,
		t.Type,
		t.Description,
		t.Priority,
		t.Status,
		t.SEName,
		t.Developer,
		t.DeveloperEmail,
		t.AMCCost,
		t.PRApproval,
		t.PlannedDate,
		t.CommitmentDate,
		t.Remarks,
		t.ExeSent,
		t.ReasonForIssue,
		t.CustomerCall,
		t.CRDate,
		t.CRTime,
		t.CompletedOn,
		t.CompletedTime,
		t.CompletedBy,
		t.TimeDuration,
		t.ResolutionType,
		t.CompletionRemarks,
		t.CreatedBy,
		t.CreatedAt,
		t.UpdatedAt,
	}
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var t domain.Ticket
	if err := row.Scan(
		&t.TicketNumber,
		&t.Customer,
		&t.Module,
		&t.CRType,
		&t.IssueType,
		&t.Type,
		&t.Description,
		&t.Priority,
		&t.Status,
		&t.SEName,
		&t.Developer,
		&t.DeveloperEmail,
		&t.AMCCost,
		&t.PRApproval,
		&t.PlannedDate,
		&t.CommitmentDate,
		&t.Remarks,
		&t.ExeSent,
		&t.ReasonForIssue,
		&t.CustomerCall,
		&t.CRDate,
		&t.CRTime,
		&t.CompletedOn,
		&t.CompletedTime,
		&t.CompletedBy,
		&t.TimeDuration,
		&t.ResolutionType,
		&t.CompletionRemarks,
		&t.CreatedBy,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &t, nil
}
