package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/azis003/tick-track/internal/domain"
	"github.com/azis003/tick-track/internal/taskqueue"
)

const ticketColumns = `id, ticket_number, title, description, category_id, user_priority_id, final_priority_id,
               reporter_id, created_by_id, assigned_to_id, assigned_by_id, status,
               assigned_at, started_at, resolved_at, closed_at, auto_close_at,
               resolution, pending_type, pending_reason, return_reason, reopen_count,
               created_at, updated_at`

// TicketFilter captures staff search parameters.
type TicketFilter struct {
	ReporterID   *int64
	CreatedByID  *int64
	AssignedToID *int64
	CategoryID   *int64
	UnitID       *int64
	Statuses     []domain.TicketStatus
	SearchTerm   *string
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
	Limit        int
	Offset       int
}

// TicketRepository encapsulates ticket persistence. Workflow mutations do not
// go through here; they are applied transactionally by the workflow store.
type TicketRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	GetByNumber(ctx context.Context, number string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	ListByUnit(ctx context.Context, unitID int64, limit, offset int) ([]domain.Ticket, error)
	ListQueue(ctx context.Context, criteria taskqueue.Criteria, limit, offset int) ([]domain.Ticket, error)
	CountQueue(ctx context.Context, criteria taskqueue.Criteria) (int, error)
	CountOpenByAssignee(ctx context.Context) (map[int64]int, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1`, ticketColumns)
	return fetchSingleTicket(ctx, r.pool, query, id)
}

func (r *ticketRepository) GetByNumber(ctx context.Context, number string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE ticket_number=$1`, ticketColumns)
	return fetchSingleTicket(ctx, r.pool, query, number)
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.ReporterID != nil {
		args = append(args, *filter.ReporterID)
		clauses = append(clauses, fmt.Sprintf("reporter_id=$%d", len(args)))
	}
	if filter.CreatedByID != nil {
		args = append(args, *filter.CreatedByID)
		clauses = append(clauses, fmt.Sprintf("created_by_id=$%d", len(args)))
	}
	if filter.AssignedToID != nil {
		args = append(args, *filter.AssignedToID)
		clauses = append(clauses, fmt.Sprintf("assigned_to_id=$%d", len(args)))
	}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		clauses = append(clauses, fmt.Sprintf("category_id=$%d", len(args)))
	}
	if filter.UnitID != nil {
		args = append(args, *filter.UnitID)
		clauses = append(clauses, fmt.Sprintf("reporter_id IN (SELECT id FROM users WHERE unit_id=$%d)", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(title) LIKE %s OR LOWER(description) LIKE %s OR LOWER(ticket_number) LIKE %s)", placeholder, placeholder, placeholder))
	}

	limit, offset := pageBounds(filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY updated_at DESC LIMIT %d OFFSET %d`,
		ticketColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) ListByUnit(ctx context.Context, unitID int64, limit, offset int) ([]domain.Ticket, error) {
	return r.ListWithFilter(ctx, TicketFilter{UnitID: &unitID, Limit: limit, Offset: offset})
}

// ListQueue fetches the actor's work queue. Clauses OR together and the
// result orders by attention rank, then freshest update first.
func (r *ticketRepository) ListQueue(ctx context.Context, criteria taskqueue.Criteria, limit, offset int) ([]domain.Ticket, error) {
	where, args := buildQueueWhere(criteria)
	if where == "" {
		return nil, nil
	}
	limit, offset = pageBounds(limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY %s, updated_at DESC LIMIT %d OFFSET %d`,
		ticketColumns, where, queueRankExpr(), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) CountQueue(ctx context.Context, criteria taskqueue.Criteria) (int, error) {
	where, args := buildQueueWhere(criteria)
	if where == "" {
		return 0, nil
	}
	query := fmt.Sprintf(`SELECT COUNT(*) FROM tickets WHERE %s`, where)
	var count int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// CountOpenByAssignee tallies each technician's active workload. Resolved and
// closed tickets do not count against the assignee.
func (r *ticketRepository) CountOpenByAssignee(ctx context.Context) (map[int64]int, error) {
	const query = `
        SELECT assigned_to_id, COUNT(*) FROM tickets
        WHERE assigned_to_id IS NOT NULL AND status NOT IN ($1,$2)
        GROUP BY assigned_to_id`
	rows, err := r.pool.Query(ctx, query, domain.TicketStatusResolved, domain.TicketStatusClosed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var assigneeID int64
		var count int
		if err := rows.Scan(&assigneeID, &count); err != nil {
			return nil, err
		}
		counts[assigneeID] = count
	}
	return counts, rows.Err()
}

func buildQueueWhere(criteria taskqueue.Criteria) (string, []any) {
	if len(criteria.Clauses) == 0 {
		return "", nil
	}
	args := []any{}
	parts := make([]string, 0, len(criteria.Clauses))
	for _, clause := range criteria.Clauses {
		conds := []string{}
		if len(clause.Statuses) > 0 {
			placeholders := make([]string, len(clause.Statuses))
			for i, status := range clause.Statuses {
				args = append(args, status)
				placeholders[i] = fmt.Sprintf("$%d", len(args))
			}
			conds = append(conds, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
		}
		if clause.AssignedToID != nil {
			args = append(args, *clause.AssignedToID)
			conds = append(conds, fmt.Sprintf("assigned_to_id=$%d", len(args)))
		}
		if clause.CreatedByID != nil {
			args = append(args, *clause.CreatedByID)
			conds = append(conds, fmt.Sprintf("created_by_id=$%d", len(args)))
		}
		parts = append(parts, "("+strings.Join(conds, " AND ")+")")
	}
	return strings.Join(parts, " OR "), args
}

func queueRankExpr() string {
	var b strings.Builder
	b.WriteString("CASE status")
	for _, status := range domain.TicketStatuses {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", status, taskqueue.Rank(status))
	}
	b.WriteString(" ELSE 6 END")
	return b.String()
}

func pageBounds(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func fetchSingleTicket(ctx context.Context, q rowQuerier, query string, arg any) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := scanTicket(q.QueryRow(ctx, query, arg), &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func scanTicket(row pgx.Row, ticket *domain.Ticket) error {
	return row.Scan(
		&ticket.ID,
		&ticket.TicketNumber,
		&ticket.Title,
		&ticket.Description,
		&ticket.CategoryID,
		&ticket.UserPriorityID,
		&ticket.FinalPriorityID,
		&ticket.ReporterID,
		&ticket.CreatedByID,
		&ticket.AssignedToID,
		&ticket.AssignedByID,
		&ticket.Status,
		&ticket.AssignedAt,
		&ticket.StartedAt,
		&ticket.ResolvedAt,
		&ticket.ClosedAt,
		&ticket.AutoCloseAt,
		&ticket.Resolution,
		&ticket.PendingType,
		&ticket.PendingReason,
		&ticket.ReturnReason,
		&ticket.ReopenCount,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := scanTicket(rows, &ticket); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
