package service

import (
	"context"
	"errors"
	"sort"

	"github.com/jackc/pgx/v5"

	"github.com/azis003/tick-track/internal/auth"
	"github.com/azis003/tick-track/internal/domain"
	"github.com/azis003/tick-track/internal/repository"
	apperrors "github.com/azis003/tick-track/pkg/util"
)

// TicketDetail aggregates everything the ticket page shows.
type TicketDetail struct {
	Ticket      *domain.Ticket
	Comments    []domain.TicketComment
	Attachments []domain.TicketAttachment
	Approvals   []domain.Approval
}

// TicketQueryService serves the read side: ticket detail, listings, and the
// audit trail. Workflow mutations never pass through here.
type TicketQueryService struct {
	tickets     repository.TicketRepository
	logs        repository.TicketLogRepository
	comments    repository.CommentRepository
	attachments repository.AttachmentRepository
	approvals   repository.ApprovalRepository
	users       repository.UserRepository
	caps        auth.Checker
}

// QueryDependencies encapsulates repo requirements for the query service.
type QueryDependencies struct {
	TicketRepo     repository.TicketRepository
	LogRepo        repository.TicketLogRepository
	CommentRepo    repository.CommentRepository
	AttachmentRepo repository.AttachmentRepository
	ApprovalRepo   repository.ApprovalRepository
	UserRepo       repository.UserRepository
	Capabilities   auth.Checker
}

// NewTicketQueryService builds the service.
func NewTicketQueryService(deps QueryDependencies) *TicketQueryService {
	caps := deps.Capabilities
	if caps == nil {
		caps = auth.RoleChecker{}
	}
	return &TicketQueryService{
		tickets:     deps.TicketRepo,
		logs:        deps.LogRepo,
		comments:    deps.CommentRepo,
		attachments: deps.AttachmentRepo,
		approvals:   deps.ApprovalRepo,
		users:       deps.UserRepo,
		caps:        caps,
	}
}

// GetDetail loads a ticket with its thread for an authorized viewer. Internal
// comments are stripped for non-staff viewers.
func (s *TicketQueryService) GetDetail(ctx context.Context, actor *domain.User, ticketID int64) (*TicketDetail, error) {
	ticket, err := s.getAuthorized(ctx, actor, ticketID)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, actor, ticket)
}

// GetDetailByNumber resolves a ticket by its public TKT number.
func (s *TicketQueryService) GetDetailByNumber(ctx context.Context, actor *domain.User, number string) (*TicketDetail, error) {
	ticket, err := s.tickets.GetByNumber(ctx, number)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewNotFound("ticket")
	}
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !s.mayView(ctx, actor, ticket) {
		return nil, apperrors.NewUnauthorized("no access to this ticket")
	}
	return s.detail(ctx, actor, ticket)
}

func (s *TicketQueryService) detail(ctx context.Context, actor *domain.User, ticket *domain.Ticket) (*TicketDetail, error) {
	includeInternal := s.caps.Can(actor, auth.CapTicketsCommentInternal)
	comments, err := s.comments.ListByTicket(ctx, ticket.ID, includeInternal)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	attachments, err := s.attachments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	approvals, err := s.approvals.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	return &TicketDetail{
		Ticket:      ticket,
		Comments:    comments,
		Attachments: attachments,
		Approvals:   approvals,
	}, nil
}

// GetAttachment returns attachment metadata for download, after the same view
// check as the ticket detail page.
func (s *TicketQueryService) GetAttachment(ctx context.Context, actor *domain.User, ticketID, attachmentID int64) (*domain.TicketAttachment, error) {
	if _, err := s.getAuthorized(ctx, actor, ticketID); err != nil {
		return nil, err
	}
	att, err := s.attachments.GetByID(ctx, attachmentID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewNotFound("attachment")
	}
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if att.TicketID != ticketID {
		return nil, apperrors.NewNotFound("attachment")
	}
	return att, nil
}

// AssigneeWorkload pairs a technician with their active ticket count.
type AssigneeWorkload struct {
	User        domain.User
	OpenTickets int
}

// ListAvailableAssignees returns active technicians for the assignment step,
// least loaded first so the helpdesk can spread the work.
func (s *TicketQueryService) ListAvailableAssignees(ctx context.Context) ([]AssigneeWorkload, error) {
	technicians, err := s.users.ListActiveByRole(ctx, domain.RoleTechnician)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	counts, err := s.tickets.CountOpenByAssignee(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	result := make([]AssigneeWorkload, 0, len(technicians))
	for _, technician := range technicians {
		result = append(result, AssigneeWorkload{User: technician, OpenTickets: counts[technician.ID]})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].OpenTickets < result[j].OpenTickets
	})
	return result, nil
}

// GetLogs returns the chronological audit trail for an authorized viewer.
func (s *TicketQueryService) GetLogs(ctx context.Context, actor *domain.User, ticketID int64) ([]domain.TicketLog, error) {
	if _, err := s.getAuthorized(ctx, actor, ticketID); err != nil {
		return nil, err
	}
	logs, err := s.logs.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return logs, nil
}

// ListMine returns tickets the actor filed.
func (s *TicketQueryService) ListMine(ctx context.Context, actor *domain.User, filter repository.TicketFilter) ([]domain.Ticket, error) {
	filter.CreatedByID = &actor.ID
	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// ListTriageNeeded returns the untriaged intake.
func (s *TicketQueryService) ListTriageNeeded(ctx context.Context, limit, offset int) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{
		Statuses: []domain.TicketStatus{domain.TicketStatusNew, domain.TicketStatusReopened},
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// ListAssigned returns the actor's active workload.
func (s *TicketQueryService) ListAssigned(ctx context.Context, actor *domain.User, limit, offset int) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{
		AssignedToID: &actor.ID,
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// ListUnit returns tickets reported by members of the actor's unit.
func (s *TicketQueryService) ListUnit(ctx context.Context, actor *domain.User, limit, offset int) ([]domain.Ticket, error) {
	if actor.UnitID == nil {
		return nil, apperrors.NewValidationFailed("account has no unit", nil)
	}
	tickets, err := s.tickets.ListByUnit(ctx, *actor.UnitID, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// ListAll returns the staff-wide listing with filters.
func (s *TicketQueryService) ListAll(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

func (s *TicketQueryService) getAuthorized(ctx context.Context, actor *domain.User, ticketID int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewNotFound("ticket")
	}
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if s.mayView(ctx, actor, ticket) {
		return ticket, nil
	}
	return nil, apperrors.NewUnauthorized("no access to this ticket")
}

func (s *TicketQueryService) mayView(ctx context.Context, actor *domain.User, ticket *domain.Ticket) bool {
	if actor.ID == ticket.ReporterID || actor.ID == ticket.CreatedByID || ticket.IsAssignedTo(actor.ID) {
		return true
	}
	if s.caps.Can(actor, auth.CapTicketsViewAll) {
		return true
	}
	if s.caps.Can(actor, auth.CapTicketsViewUnit) && actor.UnitID != nil {
		reporter, err := s.users.GetByID(ctx, ticket.ReporterID)
		if err == nil && reporter.UnitID != nil && *reporter.UnitID == *actor.UnitID {
			return true
		}
	}
	return false
}
