package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/azis003/tick-track/internal/domain"
)

// TicketLogRepository reads the append-only audit trail. Writes happen inside
// workflow transactions; this repository only serves the history view.
type TicketLogRepository interface {
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.TicketLog, error)
}

type ticketLogRepository struct {
	pool *pgxpool.Pool
}

// NewTicketLogRepository instantiates repository.
func NewTicketLogRepository(pool *pgxpool.Pool) TicketLogRepository {
	return &ticketLogRepository{pool: pool}
}

func (r *ticketLogRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.TicketLog, error) {
	const query = `
        SELECT id, ticket_id, user_id, action, from_status, to_status, notes, created_at
        FROM ticket_logs WHERE ticket_id=$1
        ORDER BY created_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketLog
	for rows.Next() {
		var entry domain.TicketLog
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&entry.UserID,
			&entry.Action,
			&entry.FromStatus,
			&entry.ToStatus,
			&entry.Notes,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
