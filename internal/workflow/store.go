package workflow

import (
	"context"
	"time"

	"github.com/azis003/tick-track/internal/domain"
)

// CreateBundle is everything a ticket creation persists atomically. The store
// allocates the ticket number inside the same transaction that inserts the
// ticket, so concurrent creators never collide.
type CreateBundle struct {
	Ticket      *domain.Ticket
	Log         domain.TicketLog
	Attachments []domain.TicketAttachment
}

// TransitionBundle is the full side-effect set of one workflow transition:
// the mutated ticket, its audit log entry, and any auto-generated comment or
// approval change. The store applies all of it in one transaction, guarded by
// a compare-and-set on ExpectedStatus.
type TransitionBundle struct {
	Ticket             *domain.Ticket
	ExpectedStatus     domain.TicketStatus
	Log                domain.TicketLog
	Comment            *domain.TicketComment
	CommentAttachments []domain.TicketAttachment
	Attachments        []domain.TicketAttachment
	NewApproval        *domain.Approval
	UpdateApproval     *domain.Approval
}

// CommentBundle persists a remark that does not move the ticket.
type CommentBundle struct {
	Comment     *domain.TicketComment
	Attachments []domain.TicketAttachment
}

// Store is the persistence collaborator for the workflow engine. Apply
// methods succeed or fail as a unit; ApplyTransition fails with a
// ConcurrentModification error when the ticket's status no longer matches
// ExpectedStatus.
type Store interface {
	GetTicket(ctx context.Context, id int64) (*domain.Ticket, error)
	LatestPendingApproval(ctx context.Context, ticketID int64) (*domain.Approval, error)
	ApplyCreate(ctx context.Context, b *CreateBundle) error
	ApplyTransition(ctx context.Context, b *TransitionBundle) error
	ApplyComment(ctx context.Context, b *CommentBundle) error
	ListAutoCloseDue(ctx context.Context, now time.Time) ([]domain.Ticket, error)
}
