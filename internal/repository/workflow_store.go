package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/azis003/tick-track/internal/domain"
	"github.com/azis003/tick-track/internal/workflow"
	apperrors "github.com/azis003/tick-track/pkg/util"
)

// workflowStore implements workflow.Store on PostgreSQL. Every Apply method
// runs in a single transaction; ApplyTransition guards the ticket update with
// a compare-and-set on the expected status so a concurrent transition loses
// cleanly instead of double-applying.
type workflowStore struct {
	pool *pgxpool.Pool
}

// NewWorkflowStore instantiates the store.
func NewWorkflowStore(pool *pgxpool.Pool) workflow.Store {
	return &workflowStore{pool: pool}
}

func (s *workflowStore) GetTicket(ctx context.Context, id int64) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1`, ticketColumns)
	ticket, err := fetchSingleTicket(ctx, s.pool, query, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewNotFound("ticket")
	}
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return ticket, nil
}

func (s *workflowStore) LatestPendingApproval(ctx context.Context, ticketID int64) (*domain.Approval, error) {
	const query = `
        SELECT id, ticket_id, requested_by_id, approved_by_id, request_type, request_reason,
               estimated_cost, status, decision_notes, requested_at, decided_at
        FROM ticket_approvals WHERE ticket_id=$1 AND status=$2
        ORDER BY requested_at DESC LIMIT 1`
	var approval domain.Approval
	err := s.pool.QueryRow(ctx, query, ticketID, domain.ApprovalStatusPending).Scan(
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
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewNotFound("pending approval")
	}
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &approval, nil
}

// ApplyCreate inserts the ticket, its creation log entry, and any initial
// attachments. The ticket number comes from a serialized counter row bumped
// in the same transaction, so numbers are unique and gap-free under
// concurrent creation.
func (s *workflowStore) ApplyCreate(ctx context.Context, b *workflow.CreateBundle) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		var seq int64
		if err := tx.QueryRow(ctx,
			`UPDATE ticket_counter SET last_value = last_value + 1 RETURNING last_value`,
		).Scan(&seq); err != nil {
			return fmt.Errorf("allocate ticket number: %w", err)
		}
		b.Ticket.TicketNumber = domain.FormatTicketNumber(seq)

		const insertTicket = `
            INSERT INTO tickets (ticket_number, title, description, category_id, user_priority_id,
                reporter_id, created_by_id, status, created_at, updated_at)
            VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
            RETURNING id`
		if err := tx.QueryRow(ctx, insertTicket,
			b.Ticket.TicketNumber,
			b.Ticket.Title,
			b.Ticket.Description,
			b.Ticket.CategoryID,
			b.Ticket.UserPriorityID,
			b.Ticket.ReporterID,
			b.Ticket.CreatedByID,
			b.Ticket.Status,
			b.Ticket.CreatedAt,
			b.Ticket.UpdatedAt,
		).Scan(&b.Ticket.ID); err != nil {
			return fmt.Errorf("insert ticket: %w", err)
		}

		b.Log.TicketID = b.Ticket.ID
		if err := insertLog(ctx, tx, &b.Log); err != nil {
			return err
		}
		return insertAttachments(ctx, tx, b.Ticket.ID, nil, b.Attachments)
	})
}

// ApplyTransition persists one workflow transition atomically. The ticket
// update only lands if the row still carries the expected status; otherwise
// the whole transaction rolls back with a concurrent-modification error.
func (s *workflowStore) ApplyTransition(ctx context.Context, b *workflow.TransitionBundle) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		const update = `
            UPDATE tickets SET final_priority_id=$1, assigned_to_id=$2, assigned_by_id=$3, status=$4,
                assigned_at=$5, started_at=$6, resolved_at=$7, closed_at=$8, auto_close_at=$9,
                resolution=$10, pending_type=$11, pending_reason=$12, return_reason=$13,
                reopen_count=$14, updated_at=$15
            WHERE id=$16 AND status=$17`
		cmd, err := tx.Exec(ctx, update,
			b.Ticket.FinalPriorityID,
			b.Ticket.AssignedToID,
			b.Ticket.AssignedByID,
			b.Ticket.Status,
			b.Ticket.AssignedAt,
			b.Ticket.StartedAt,
			b.Ticket.ResolvedAt,
			b.Ticket.ClosedAt,
			b.Ticket.AutoCloseAt,
			b.Ticket.Resolution,
			b.Ticket.PendingType,
			b.Ticket.PendingReason,
			b.Ticket.ReturnReason,
			b.Ticket.ReopenCount,
			b.Ticket.UpdatedAt,
			b.Ticket.ID,
			b.ExpectedStatus,
		)
		if err != nil {
			return fmt.Errorf("update ticket: %w", err)
		}
		if cmd.RowsAffected() == 0 {
			return apperrors.NewConcurrentModification("ticket")
		}

		if err := insertLog(ctx, tx, &b.Log); err != nil {
			return err
		}
		if b.Comment != nil {
			if err := insertComment(ctx, tx, b.Comment); err != nil {
				return err
			}
			if err := insertAttachments(ctx, tx, b.Ticket.ID, &b.Comment.ID, b.CommentAttachments); err != nil {
				return err
			}
		}
		if err := insertAttachments(ctx, tx, b.Ticket.ID, nil, b.Attachments); err != nil {
			return err
		}
		if b.NewApproval != nil {
			if err := insertApproval(ctx, tx, b.NewApproval); err != nil {
				return err
			}
		}
		if b.UpdateApproval != nil {
			if err := updateApproval(ctx, tx, b.UpdateApproval); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *workflowStore) ApplyComment(ctx context.Context, b *workflow.CommentBundle) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		if err := insertComment(ctx, tx, b.Comment); err != nil {
			return err
		}
		return insertAttachments(ctx, tx, b.Comment.TicketID, &b.Comment.ID, b.Attachments)
	})
}

func (s *workflowStore) ListAutoCloseDue(ctx context.Context, now time.Time) ([]domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE status=$1 AND auto_close_at IS NOT NULL AND auto_close_at <= $2 ORDER BY auto_close_at ASC`, ticketColumns)
	rows, err := s.pool.Query(ctx, query, domain.TicketStatusResolved, now)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	defer rows.Close()
	tickets, err := scanTickets(rows)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return tickets, nil
}

func (s *workflowStore) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		var domainErr *apperrors.DomainError
		if errors.As(err, &domainErr) {
			return err
		}
		return apperrors.NewInternalError(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

func insertLog(ctx context.Context, tx pgx.Tx, entry *domain.TicketLog) error {
	const query = `
        INSERT INTO ticket_logs (ticket_id, user_id, action, from_status, to_status, notes, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id`
	if err := tx.QueryRow(ctx, query,
		entry.TicketID,
		entry.UserID,
		entry.Action,
		entry.FromStatus,
		entry.ToStatus,
		entry.Notes,
		entry.CreatedAt,
	).Scan(&entry.ID); err != nil {
		return fmt.Errorf("insert ticket log: %w", err)
	}
	return nil
}

func insertComment(ctx context.Context, tx pgx.Tx, comment *domain.TicketComment) error {
	const query = `
        INSERT INTO ticket_comments (ticket_id, user_id, content, is_internal, created_at)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id`
	if err := tx.QueryRow(ctx, query,
		comment.TicketID,
		comment.UserID,
		comment.Content,
		comment.IsInternal,
		comment.CreatedAt,
	).Scan(&comment.ID); err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func insertAttachments(ctx context.Context, tx pgx.Tx, ticketID int64, commentID *int64, attachments []domain.TicketAttachment) error {
	const query = `
        INSERT INTO ticket_attachments (ticket_id, comment_id, user_id, file_name, file_path, file_type, file_size, attachment_type, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id`
	for i := range attachments {
		att := &attachments[i]
		att.TicketID = ticketID
		att.CommentID = commentID
		if err := tx.QueryRow(ctx, query,
			att.TicketID,
			att.CommentID,
			att.UserID,
			att.FileName,
			att.FilePath,
			att.FileType,
			att.FileSize,
			att.AttachmentType,
			att.CreatedAt,
		).Scan(&att.ID); err != nil {
			return fmt.Errorf("insert attachment: %w", err)
		}
	}
	return nil
}

func insertApproval(ctx context.Context, tx pgx.Tx, approval *domain.Approval) error {
	const query = `
        INSERT INTO ticket_approvals (ticket_id, requested_by_id, request_type, request_reason, estimated_cost, status, requested_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id`
	if err := tx.QueryRow(ctx, query,
		approval.TicketID,
		approval.RequestedByID,
		approval.RequestType,
		approval.RequestReason,
		approval.EstimatedCost,
		approval.Status,
		approval.RequestedAt,
	).Scan(&approval.ID); err != nil {
		return fmt.Errorf("insert approval: %w", err)
	}
	return nil
}

func updateApproval(ctx context.Context, tx pgx.Tx, approval *domain.Approval) error {
	const query = `
        UPDATE ticket_approvals SET approved_by_id=$1, status=$2, decision_notes=$3, decided_at=$4
        WHERE id=$5 AND status=$6`
	cmd, err := tx.Exec(ctx, query,
		approval.ApprovedByID,
		approval.Status,
		approval.DecisionNotes,
		approval.DecidedAt,
		approval.ID,
		domain.ApprovalStatusPending,
	)
	if err != nil {
		return fmt.Errorf("update approval: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return apperrors.NewConcurrentModification("approval")
	}
	return nil
}
