package workflow

import (
	"context"
	"sync"
	"time"

	"github.com/azis003/tick-track/internal/domain"
	apperrors "github.com/azis003/tick-track/pkg/util"
)

// memStore is an in-memory Store with the same atomicity contract as the
// database-backed one.
type memStore struct {
	mu             sync.Mutex
	seq            int64
	nextTicketID   int64
	nextLogID      int64
	nextCommentID  int64
	nextApprovalID int64
	tickets        map[int64]*domain.Ticket
	logs           []domain.TicketLog
	comments       []domain.TicketComment
	attachments    []domain.TicketAttachment
	approvals      map[int64]*domain.Approval
}

func newMemStore() *memStore {
	return &memStore{
		tickets:   make(map[int64]*domain.Ticket),
		approvals: make(map[int64]*domain.Approval),
	}
}

func (s *memStore) GetTicket(ctx context.Context, id int64) (*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ticket, ok := s.tickets[id]
	if !ok {
		return nil, apperrors.NewNotFound("ticket")
	}
	copied := *ticket
	return &copied, nil
}

func (s *memStore) LatestPendingApproval(ctx context.Context, ticketID int64) (*domain.Approval, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *domain.Approval
	for _, approval := range s.approvals {
		if approval.TicketID != ticketID || approval.Status != domain.ApprovalStatusPending {
			continue
		}
		if latest == nil || approval.RequestedAt.After(latest.RequestedAt) {
			latest = approval
		}
	}
	if latest == nil {
		return nil, apperrors.NewNotFound("pending approval")
	}
	copied := *latest
	return &copied, nil
}

func (s *memStore) ApplyCreate(ctx context.Context, b *CreateBundle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.nextTicketID++
	b.Ticket.ID = s.nextTicketID
	b.Ticket.TicketNumber = domain.FormatTicketNumber(s.seq)
	copied := *b.Ticket
	s.tickets[copied.ID] = &copied

	b.Log.TicketID = copied.ID
	s.appendLog(&b.Log)
	s.appendAttachments(copied.ID, nil, b.Attachments)
	return nil
}

func (s *memStore) ApplyTransition(ctx context.Context, b *TransitionBundle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.tickets[b.Ticket.ID]
	if !ok {
		return apperrors.NewNotFound("ticket")
	}
	if current.Status != b.ExpectedStatus {
		return apperrors.NewConcurrentModification("ticket")
	}
	copied := *b.Ticket
	s.tickets[copied.ID] = &copied

	s.appendLog(&b.Log)
	if b.Comment != nil {
		s.appendComment(b.Comment)
		s.appendAttachments(copied.ID, &b.Comment.ID, b.CommentAttachments)
	}
	s.appendAttachments(copied.ID, nil, b.Attachments)
	if b.NewApproval != nil {
		s.nextApprovalID++
		b.NewApproval.ID = s.nextApprovalID
		copiedApproval := *b.NewApproval
		s.approvals[copiedApproval.ID] = &copiedApproval
	}
	if b.UpdateApproval != nil {
		existing, ok := s.approvals[b.UpdateApproval.ID]
		if !ok || existing.Status != domain.ApprovalStatusPending {
			return apperrors.NewConcurrentModification("approval")
		}
		copiedApproval := *b.UpdateApproval
		s.approvals[copiedApproval.ID] = &copiedApproval
	}
	return nil
}

func (s *memStore) ApplyComment(ctx context.Context, b *CommentBundle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendComment(b.Comment)
	s.appendAttachments(b.Comment.TicketID, &b.Comment.ID, b.Attachments)
	return nil
}

func (s *memStore) ListAutoCloseDue(ctx context.Context, now time.Time) ([]domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var due []domain.Ticket
	for _, ticket := range s.tickets {
		if ticket.Status == domain.TicketStatusResolved && ticket.AutoCloseAt != nil && !ticket.AutoCloseAt.After(now) {
			due = append(due, *ticket)
		}
	}
	return due, nil
}

func (s *memStore) appendLog(entry *domain.TicketLog) {
	s.nextLogID++
	entry.ID = s.nextLogID
	s.logs = append(s.logs, *entry)
}

func (s *memStore) appendComment(comment *domain.TicketComment) {
	s.nextCommentID++
	comment.ID = s.nextCommentID
	s.comments = append(s.comments, *comment)
}

func (s *memStore) appendAttachments(ticketID int64, commentID *int64, attachments []domain.TicketAttachment) {
	for i := range attachments {
		attachments[i].TicketID = ticketID
		attachments[i].CommentID = commentID
		s.attachments = append(s.attachments, attachments[i])
	}
}

func (s *memStore) logsFor(ticketID int64) []domain.TicketLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []domain.TicketLog
	for _, entry := range s.logs {
		if entry.TicketID == ticketID {
			result = append(result, entry)
		}
	}
	return result
}

func (s *memStore) commentsFor(ticketID int64) []domain.TicketComment {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []domain.TicketComment
	for _, comment := range s.comments {
		if comment.TicketID == ticketID {
			result = append(result, comment)
		}
	}
	return result
}

func (s *memStore) setStatus(ticketID int64, status domain.TicketStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickets[ticketID].Status = status
}
