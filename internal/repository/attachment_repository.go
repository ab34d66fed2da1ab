package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/azis003/tick-track/internal/domain"
)

// AttachmentRepository reads attachment metadata. The blobs themselves live
// in the storage backend under FilePath.
type AttachmentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.TicketAttachment, error)
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.TicketAttachment, error)
}

type attachmentRepository struct {
	pool *pgxpool.Pool
}

// NewAttachmentRepository instantiates repository.
func NewAttachmentRepository(pool *pgxpool.Pool) AttachmentRepository {
	return &attachmentRepository{pool: pool}
}

const attachmentColumns = `id, ticket_id, comment_id, user_id, file_name, file_path, file_type, file_size, attachment_type, created_at`

func (r *attachmentRepository) GetByID(ctx context.Context, id int64) (*domain.TicketAttachment, error) {
	query := `SELECT ` + attachmentColumns + ` FROM ticket_attachments WHERE id=$1`
	var att domain.TicketAttachment
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&att.ID,
		&att.TicketID,
		&att.CommentID,
		&att.UserID,
		&att.FileName,
		&att.FilePath,
		&att.FileType,
		&att.FileSize,
		&att.AttachmentType,
		&att.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &att, nil
}

func (r *attachmentRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.TicketAttachment, error) {
	query := `SELECT ` + attachmentColumns + ` FROM ticket_attachments WHERE ticket_id=$1 ORDER BY created_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketAttachment
	for rows.Next() {
		var att domain.TicketAttachment
		if err := rows.Scan(
			&att.ID,
			&att.TicketID,
			&att.CommentID,
			&att.UserID,
			&att.FileName,
			&att.FilePath,
			&att.FileType,
			&att.FileSize,
			&att.AttachmentType,
			&att.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, att)
	}
	return result, rows.Err()
}
