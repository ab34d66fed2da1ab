package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/azis003/tick-track/internal/domain"
)

// ApprovalRepository reads approval history for a ticket.
type ApprovalRepository interface {
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.Approval, error)
}

type approvalRepository struct {
	pool *pgxpool.Pool
}

// NewApprovalRepository instantiates repository.
func NewApprovalRepository(pool *pgxpool.Pool) ApprovalRepository {
	return &approvalRepository{pool: pool}
}

func (r *approvalRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.Approval, error) {
	const query = `
        SELECT id, ticket_id, requested_by_id, approved_by_id, request_type, request_reason,
               estimated_cost, status, decision_notes, requested_at, decided_at
        FROM ticket_approvals WHERE ticket_id=$1
        ORDER BY requested_at DESC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Approval
	for rows.Next() {
		var approval domain.Approval
		if err := rows.Scan(
			&approval.ID,
			&approval.TicketID,
			&approval.RequestedByID,
			&approval.ApprovedByID,
			&approval.RequestType,
			&approval.RequestReason,
			&approval.EstimatedCost,
			&approval.Status,
			&approval.DecisionNotes,
			&approval.RequestedAt,
			&approval.DecidedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, approval)
	}
	return result, rows.Err()
}
