package workflow

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/azis003/tick-track/internal/auth"
	"github.com/azis003/tick-track/internal/domain"
	"github.com/azis003/tick-track/internal/events"
	"github.com/azis003/tick-track/internal/storage"
	apperrors "github.com/azis003/tick-track/pkg/util"
)

// CommentPolicy selects who may comment while a ticket is pending on the
// reporter. Strict limits non-staff comments to the creator during
// pending_user; broad also admits the reporter during new and reopened.
type CommentPolicy string

const (
	CommentPolicyStrict CommentPolicy = "strict"
	CommentPolicyBroad  CommentPolicy = "broad"
)

// Engine executes every ticket lifecycle transition. Callers are assumed to
// have passed a capability check upstream; the engine validates the current
// status, the actor's relationship to the ticket, and the payload, then hands
// the full side-effect bundle to the store for atomic application.
type Engine struct {
	store           Store
	files           storage.Store
	caps            auth.Checker
	dispatcher      events.Dispatcher
	logger          *zap.Logger
	autoCloseWindow time.Duration
	commentPolicy   CommentPolicy
	now             func() time.Time
}

// Dependencies bundles engine collaborators.
type Dependencies struct {
	Store           Store
	Files           storage.Store
	Capabilities    auth.Checker
	Dispatcher      events.Dispatcher
	Logger          *zap.Logger
	AutoCloseWindow time.Duration
	CommentPolicy   CommentPolicy
	Now             func() time.Time
}

// NewEngine constructs the engine.
func NewEngine(deps Dependencies) *Engine {
	e := &Engine{
		store:           deps.Store,
		files:           deps.Files,
		caps:            deps.Capabilities,
		dispatcher:      deps.Dispatcher,
		logger:          deps.Logger,
		autoCloseWindow: deps.AutoCloseWindow,
		commentPolicy:   deps.CommentPolicy,
		now:             deps.Now,
	}
	if e.caps == nil {
		e.caps = auth.RoleChecker{}
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	if e.autoCloseWindow <= 0 {
		e.autoCloseWindow = 72 * time.Hour
	}
	if e.commentPolicy != CommentPolicyBroad {
		e.commentPolicy = CommentPolicyStrict
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// CreateInput describes ticket creation payload. ReporterID is set when
// staff file a ticket on someone else's behalf.
type CreateInput struct {
	Title          string
	Description    string
	CategoryID     int64
	UserPriorityID int64
	ReporterID     *int64
	Files          []storage.File
}

// TriageInput carries the helpdesk's priority decision.
type TriageInput struct {
	FinalPriorityID int64
	Notes           string
}

// AssignInput routes a ticket to a technician.
type AssignInput struct {
	TechnicianID int64
	Notes        string
}

// PendingInput parks an in-progress ticket.
type PendingInput struct {
	Type   domain.PendingType
	Reason string
}

// ApprovalRequestInput asks a manager for sign-off.
type ApprovalRequestInput struct {
	RequestType   string
	RequestReason string
	EstimatedCost *float64
}

// ApprovalDecisionInput records the manager's verdict.
type ApprovalDecisionInput struct {
	Approve bool
	Notes   string
}

// ResolveInput carries the resolution text and evidence files.
type ResolveInput struct {
	Resolution string
	Files      []storage.File
}

// CommentInput appends a remark to the ticket thread.
type CommentInput struct {
	Content    string
	IsInternal bool
	Files      []storage.File
}

// Create files a new ticket in status new, allocating its ticket number and
// storing any initial attachments.
func (e *Engine) Create(ctx context.Context, actor *domain.User, input CreateInput) (*domain.Ticket, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperrors.NewValidationFailed("title is required", nil)
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, apperrors.NewValidationFailed("description is required", nil)
	}
	if input.CategoryID <= 0 {
		return nil, apperrors.NewValidationFailed("category is required", nil)
	}
	if input.UserPriorityID <= 0 {
		return nil, apperrors.NewValidationFailed("priority is required", nil)
	}

	reporterID := actor.ID
	if input.ReporterID != nil {
		reporterID = *input.ReporterID
	}

	now := e.now()
	ticket := &domain.Ticket{
		Title:          strings.TrimSpace(input.Title),
		Description:    strings.TrimSpace(input.Description),
		CategoryID:     input.CategoryID,
		UserPriorityID: input.UserPriorityID,
		ReporterID:     reporterID,
		CreatedByID:    actor.ID,
		Status:         domain.TicketStatusNew,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	attachments, paths, err := e.storeFiles(ctx, actor.ID, input.Files, domain.AttachmentTypeInitial, now)
	if err != nil {
		return nil, err
	}

	bundle := &CreateBundle{
		Ticket:      ticket,
		Log:         newLog(nil, &actor.ID, domain.LogActionCreate, nil, domain.TicketStatusNew, "", now),
		Attachments: attachments,
	}
	if err := e.store.ApplyCreate(ctx, bundle); err != nil {
		e.discardFiles(ctx, paths)
		return nil, err
	}

	e.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		ActorID:  &actor.ID,
		Payload: events.TicketCreatedPayload{
			TicketNumber:   ticket.TicketNumber,
			Title:          ticket.Title,
			CategoryID:     ticket.CategoryID,
			UserPriorityID: ticket.UserPriorityID,
			ReporterID:     ticket.ReporterID,
		},
	})
	return ticket, nil
}

// Triage sets the final priority and moves the ticket into the triage state.
func (e *Engine) Triage(ctx context.Context, actor *domain.User, ticketID int64, input TriageInput) (*domain.Ticket, error) {
	if input.FinalPriorityID <= 0 {
		return nil, apperrors.NewValidationFailed("final priority is required", nil)
	}
	ticket, err := e.loadForAction(ctx, ActionTriage, ticketID)
	if err != nil {
		return nil, err
	}

	now := e.now()
	updated := *ticket
	updated.FinalPriorityID = &input.FinalPriorityID
	updated.Status = domain.TicketStatusTriage
	updated.UpdatedAt = now

	return e.applyTransition(ctx, &TransitionBundle{
		Ticket:         &updated,
		ExpectedStatus: ticket.Status,
		Log:            newLog(&ticket.ID, &actor.ID, domain.LogActionTriage, &ticket.Status, updated.Status, input.Notes, now),
	}, &actor.ID)
}

// Assign routes a triaged ticket to a technician; reassignment from assigned
// is allowed.
func (e *Engine) Assign(ctx context.Context, actor *domain.User, ticketID int64, input AssignInput) (*domain.Ticket, error) {
	if input.TechnicianID <= 0 {
		return nil, apperrors.NewValidationFailed("technician is required", nil)
	}
	ticket, err := e.loadForAction(ctx, ActionAssign, ticketID)
	if err != nil {
		return nil, err
	}

	now := e.now()
	updated := *ticket
	updated.AssignedToID = &input.TechnicianID
	updated.AssignedByID = &actor.ID
	updated.AssignedAt = &now
	updated.Status = domain.TicketStatusAssigned
	updated.UpdatedAt = now

	return e.applyTransition(ctx, &TransitionBundle{
		Ticket:         &updated,
		ExpectedStatus: ticket.Status,
		Log:            newLog(&ticket.ID, &actor.ID, domain.LogActionAssign, &ticket.Status, updated.Status, input.Notes, now),
	}, &actor.ID)
}

// SelfHandle lets the triager take the ticket directly into progress,
// skipping the assignment hand-off.
func (e *Engine) SelfHandle(ctx context.Context, actor *domain.User, ticketID int64) (*domain.Ticket, error) {
	ticket, err := e.loadForAction(ctx, ActionSelfHandle, ticketID)
	if err != nil {
		return nil, err
	}

	now := e.now()
	updated := *ticket
	updated.AssignedToID = &actor.ID
	updated.AssignedByID = &actor.ID
	updated.AssignedAt = &now
	updated.StartedAt = &now
	updated.Status = domain.TicketStatusInProgress
	updated.UpdatedAt = now

	return e.applyTransition(ctx, &TransitionBundle{
		Ticket:         &updated,
		ExpectedStatus: ticket.Status,
		Log:            newLog(&ticket.ID, &actor.ID, domain.LogActionStart, &ticket.Status, updated.Status, "handled directly by helpdesk", now),
	}, &actor.ID)
}

// Accept starts work on an assigned ticket. Only the assignee may accept.
func (e *Engine) Accept(ctx context.Context, actor *domain.User, ticketID int64) (*domain.Ticket, error) {
	ticket, err := e.loadForAction(ctx, ActionAccept, ticketID)
	if err != nil {
		return nil, err
	}
	if !ticket.IsAssignedTo(actor.ID) {
		return nil, apperrors.NewUnauthorized("only the assignee may accept this ticket")
	}

	now := e.now()
	updated := *ticket
	updated.StartedAt = &now
	updated.Status = domain.TicketStatusInProgress
	updated.UpdatedAt = now

	return e.applyTransition(ctx, &TransitionBundle{
		Ticket:         &updated,
		ExpectedStatus: ticket.Status,
		Log:            newLog(&ticket.ID, &actor.ID, domain.LogActionStart, &ticket.Status, updated.Status, "", now),
	}, &actor.ID)
}

// Return sends the ticket back to triage, clearing the assignment.
func (e *Engine) Return(ctx context.Context, actor *domain.User, ticketID int64, reason string) (*domain.Ticket, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, apperrors.NewValidationFailed("return reason is required", nil)
	}
	ticket, err := e.loadForAction(ctx, ActionReturn, ticketID)
	if err != nil {
		return nil, err
	}
	if !ticket.IsAssignedTo(actor.ID) {
		return nil, apperrors.NewUnauthorized("only the assignee may return this ticket")
	}

	now := e.now()
	updated := *ticket
	updated.AssignedToID = nil
	updated.AssignedByID = nil
	updated.AssignedAt = nil
	updated.StartedAt = nil
	updated.ReturnReason = &reason
	updated.Status = domain.TicketStatusTriage
	updated.UpdatedAt = now

	return e.applyTransition(ctx, &TransitionBundle{
		Ticket:         &updated,
		ExpectedStatus: ticket.Status,
		Log:            newLog(&ticket.ID, &actor.ID, domain.LogActionReturn, &ticket.Status, updated.Status, reason, now),
	}, &actor.ID)
}

// SetPending parks an in-progress ticket while waiting on the reporter or an
// external party. The reason surfaces in the conversation thread as an
// auto-generated comment.
func (e *Engine) SetPending(ctx context.Context, actor *domain.User, ticketID int64, input PendingInput) (*domain.Ticket, error) {
	if input.Type != domain.PendingTypeUser && input.Type != domain.PendingTypeExternal {
		return nil, apperrors.NewValidationFailed("pending type must be user or external", nil)
	}
	if strings.TrimSpace(input.Reason) == "" {
		return nil, apperrors.NewValidationFailed("pending reason is required", nil)
	}
	ticket, err := e.loadForAction(ctx, ActionSetPending, ticketID)
	if err != nil {
		return nil, err
	}
	if !ticket.IsAssignedTo(actor.ID) {
		return nil, apperrors.NewUnauthorized("only the assignee may set this ticket pending")
	}

	target := domain.TicketStatusPendingUser
	label := "Returned to reporter"
	if input.Type == domain.PendingTypeExternal {
		target = domain.TicketStatusPendingExternal
		label = "Waiting on vendor/third party"
	}

	now := e.now()
	updated := *ticket
	pendingType := input.Type
	updated.PendingType = &pendingType
	updated.PendingReason = &input.Reason
	updated.Status = target
	updated.UpdatedAt = now

	return e.applyTransition(ctx, &TransitionBundle{
		Ticket:         &updated,
		ExpectedStatus: ticket.Status,
		Log:            newLog(&ticket.ID, &actor.ID, domain.LogActionPending, &ticket.Status, target, input.Reason, now),
		Comment: &domain.TicketComment{
			TicketID:  ticket.ID,
			UserID:    actor.ID,
			Content:   "[" + label + "]\n\n" + input.Reason,
			CreatedAt: now,
		},
	}, &actor.ID)
}

// Resume brings a pending ticket back into progress. The assignee may always
// resume; while pending on the reporter, the reporter or creator may too.
func (e *Engine) Resume(ctx context.Context, actor *domain.User, ticketID int64, notes string) (*domain.Ticket, error) {
	ticket, err := e.loadForAction(ctx, ActionResume, ticketID)
	if err != nil {
		return nil, err
	}
	if !e.mayResume(actor, ticket) {
		return nil, apperrors.NewUnauthorized("only the assignee or the reporter of a pending-user ticket may resume")
	}
	return e.resume(ctx, &actor.ID, ticket, notes, nil)
}

// RequestApproval opens an approval cycle with a manager.
func (e *Engine) RequestApproval(ctx context.Context, actor *domain.User, ticketID int64, input ApprovalRequestInput) (*domain.Ticket, error) {
	if strings.TrimSpace(input.RequestType) == "" {
		return nil, apperrors.NewValidationFailed("request type is required", nil)
	}
	if strings.TrimSpace(input.RequestReason) == "" {
		return nil, apperrors.NewValidationFailed("request reason is required", nil)
	}
	ticket, err := e.loadForAction(ctx, ActionRequestApproval, ticketID)
	if err != nil {
		return nil, err
	}
	if !ticket.IsAssignedTo(actor.ID) {
		return nil, apperrors.NewUnauthorized("only the assignee may request approval")
	}

	now := e.now()
	updated := *ticket
	updated.Status = domain.TicketStatusWaitingApproval
	updated.UpdatedAt = now

	approval := &domain.Approval{
		TicketID:      ticket.ID,
		RequestedByID: actor.ID,
		RequestType:   input.RequestType,
		RequestReason: input.RequestReason,
		EstimatedCost: input.EstimatedCost,
		Status:        domain.ApprovalStatusPending,
		RequestedAt:   now,
	}

	result, err := e.applyTransition(ctx, &TransitionBundle{
		Ticket:         &updated,
		ExpectedStatus: ticket.Status,
		Log:            newLog(&ticket.ID, &actor.ID, domain.LogActionRequestApproval, &ticket.Status, updated.Status, input.RequestReason, now),
		NewApproval:    approval,
	}, &actor.ID)
	if err != nil {
		return nil, err
	}

	e.publish(ctx, events.Event{
		Type:     events.EventApprovalRequested,
		TicketID: ticket.ID,
		ActorID:  &actor.ID,
		Payload: events.ApprovalRequestedPayload{
			ApprovalID:    approval.ID,
			RequestType:   approval.RequestType,
			EstimatedCost: approval.EstimatedCost,
		},
	})
	return result, nil
}

// DecideApproval records the manager's verdict on the latest pending
// approval and returns the ticket to in_progress either way; a rejection
// sends the technician looking for an alternative, not back to the reporter.
func (e *Engine) DecideApproval(ctx context.Context, actor *domain.User, ticketID int64, input ApprovalDecisionInput) (*domain.Ticket, error) {
	if !input.Approve && strings.TrimSpace(input.Notes) == "" {
		return nil, apperrors.NewValidationFailed("decision notes are required when rejecting", nil)
	}
	ticket, err := e.loadForAction(ctx, ActionDecideApproval, ticketID)
	if err != nil {
		return nil, err
	}

	approval, err := e.store.LatestPendingApproval(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}

	now := e.now()
	decided := *approval
	decided.ApprovedByID = &actor.ID
	decided.DecidedAt = &now
	action := domain.LogActionApprovalApproved
	notes := input.Notes
	label := "Approval granted"
	if input.Approve {
		decided.Status = domain.ApprovalStatusApproved
		if strings.TrimSpace(notes) == "" {
			notes = "request approved by manager"
		}
	} else {
		decided.Status = domain.ApprovalStatusRejected
		action = domain.LogActionApprovalRejected
		label = "Approval rejected"
	}
	if strings.TrimSpace(input.Notes) != "" {
		decided.DecisionNotes = &input.Notes
	}

	updated := *ticket
	updated.Status = domain.TicketStatusInProgress
	updated.UpdatedAt = now

	bundle := &TransitionBundle{
		Ticket:         &updated,
		ExpectedStatus: ticket.Status,
		Log:            newLog(&ticket.ID, &actor.ID, action, &ticket.Status, updated.Status, notes, now),
		UpdateApproval: &decided,
	}
	if strings.TrimSpace(input.Notes) != "" {
		bundle.Comment = &domain.TicketComment{
			TicketID:  ticket.ID,
			UserID:    actor.ID,
			Content:   "[" + label + "]\n\n" + input.Notes,
			CreatedAt: now,
		}
	}

	result, err := e.applyTransition(ctx, bundle, &actor.ID)
	if err != nil {
		return nil, err
	}

	e.publish(ctx, events.Event{
		Type:     events.EventApprovalDecided,
		TicketID: ticket.ID,
		ActorID:  &actor.ID,
		Payload: events.ApprovalDecidedPayload{
			ApprovalID: decided.ID,
			Decision:   decided.Status,
			Notes:      input.Notes,
		},
	})
	return result, nil
}

// Resolve records the solution and schedules auto-close.
func (e *Engine) Resolve(ctx context.Context, actor *domain.User, ticketID int64, input ResolveInput) (*domain.Ticket, error) {
	if strings.TrimSpace(input.Resolution) == "" {
		return nil, apperrors.NewValidationFailed("resolution is required", nil)
	}
	ticket, err := e.loadForAction(ctx, ActionResolve, ticketID)
	if err != nil {
		return nil, err
	}
	if !ticket.IsAssignedTo(actor.ID) {
		return nil, apperrors.NewUnauthorized("only the assignee may resolve this ticket")
	}

	now := e.now()
	autoCloseAt := now.Add(e.autoCloseWindow)
	updated := *ticket
	updated.Resolution = &input.Resolution
	updated.ResolvedAt = &now
	updated.AutoCloseAt = &autoCloseAt
	updated.PendingType = nil
	updated.PendingReason = nil
	updated.Status = domain.TicketStatusResolved
	updated.UpdatedAt = now

	attachments, paths, err := e.storeFiles(ctx, actor.ID, input.Files, domain.AttachmentTypeEvidence, now)
	if err != nil {
		return nil, err
	}

	result, err := e.applyTransition(ctx, &TransitionBundle{
		Ticket:         &updated,
		ExpectedStatus: ticket.Status,
		Log:            newLog(&ticket.ID, &actor.ID, domain.LogActionResolve, &ticket.Status, updated.Status, input.Resolution, now),
		Attachments:    attachments,
	}, &actor.ID)
	if err != nil {
		e.discardFiles(ctx, paths)
		return nil, err
	}
	return result, nil
}

// Close confirms the resolution. Only the ticket's creator may close.
func (e *Engine) Close(ctx context.Context, actor *domain.User, ticketID int64) (*domain.Ticket, error) {
	ticket, err := e.loadForAction(ctx, ActionClose, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.CreatedByID != actor.ID {
		return nil, apperrors.NewUnauthorized("only the ticket creator may close it")
	}

	now := e.now()
	updated := *ticket
	updated.ClosedAt = &now
	updated.Status = domain.TicketStatusClosed
	updated.UpdatedAt = now

	return e.applyTransition(ctx, &TransitionBundle{
		Ticket:         &updated,
		ExpectedStatus: ticket.Status,
		Log:            newLog(&ticket.ID, &actor.ID, domain.LogActionClose, &ticket.Status, updated.Status, "closed by creator", now),
	}, &actor.ID)
}

// Reopen rejects the resolution and re-enters the triage funnel.
func (e *Engine) Reopen(ctx context.Context, actor *domain.User, ticketID int64, reason string) (*domain.Ticket, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, apperrors.NewValidationFailed("reopen reason is required", nil)
	}
	ticket, err := e.loadForAction(ctx, ActionReopen, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.CreatedByID != actor.ID {
		return nil, apperrors.NewUnauthorized("only the ticket creator may reopen it")
	}

	now := e.now()
	updated := *ticket
	updated.Resolution = nil
	updated.ResolvedAt = nil
	updated.AutoCloseAt = nil
	updated.ReopenCount = ticket.ReopenCount + 1
	updated.Status = domain.TicketStatusReopened
	updated.UpdatedAt = now

	return e.applyTransition(ctx, &TransitionBundle{
		Ticket:         &updated,
		ExpectedStatus: ticket.Status,
		Log:            newLog(&ticket.ID, &actor.ID, domain.LogActionReopen, &ticket.Status, updated.Status, reason, now),
	}, &actor.ID)
}

// SweepAutoClose closes every resolved ticket whose auto-close deadline has
// passed. Each closure is its own atomic unit; tickets concurrently closed or
// reopened by a user are skipped. Returns the number of tickets closed.
func (e *Engine) SweepAutoClose(ctx context.Context) (int, error) {
	now := e.now()
	due, err := e.store.ListAutoCloseDue(ctx, now)
	if err != nil {
		return 0, err
	}

	closed := 0
	for i := range due {
		ticket := due[i]
		updated := ticket
		updated.ClosedAt = &now
		updated.Status = domain.TicketStatusClosed
		updated.UpdatedAt = now

		_, err := e.applyTransition(ctx, &TransitionBundle{
			Ticket:         &updated,
			ExpectedStatus: domain.TicketStatusResolved,
			Log:            newLog(&ticket.ID, nil, domain.LogActionAutoClose, &ticket.Status, updated.Status, "closed automatically after no response within the auto-close window", now),
		}, nil)
		if err != nil {
			if apperrors.HasCode(err, apperrors.CodeConcurrentModification) || apperrors.HasCode(err, apperrors.CodeInvalidTransition) {
				continue
			}
			e.logger.Warn("auto-close failed; will retry next sweep",
				zap.Int64("ticket_id", ticket.ID), zap.Error(err))
			continue
		}
		closed++
	}
	return closed, nil
}

// AddComment appends a remark to the ticket thread. Comments are rejected on
// closed and resolved tickets. Non-staff commenters are gated by the comment
// policy. Under the strict policy a creator's comment while pending_user
// resumes the ticket in the same transaction; the broad policy leaves the
// status alone and resuming stays an explicit action.
func (e *Engine) AddComment(ctx context.Context, actor *domain.User, ticketID int64, input CommentInput) (*domain.TicketComment, error) {
	if strings.TrimSpace(input.Content) == "" {
		return nil, apperrors.NewValidationFailed("comment content is required", nil)
	}
	ticket, err := e.store.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status == domain.TicketStatusClosed || ticket.Status == domain.TicketStatusResolved {
		return nil, apperrors.NewInvalidTransition(string(ActionComment), string(ticket.Status))
	}
	if input.IsInternal && !e.caps.Can(actor, auth.CapTicketsCommentInternal) {
		return nil, apperrors.NewUnauthorized("internal comments require staff capability")
	}

	isStaff := e.caps.Can(actor, auth.CapTicketsWork) || e.caps.Can(actor, auth.CapTicketsViewAll)
	if !isStaff {
		if err := e.checkCommentPolicy(actor, ticket); err != nil {
			return nil, err
		}
	}

	now := e.now()
	comment := &domain.TicketComment{
		TicketID:   ticket.ID,
		UserID:     actor.ID,
		Content:    input.Content,
		IsInternal: input.IsInternal,
		CreatedAt:  now,
	}

	attachments, paths, err := e.storeFiles(ctx, actor.ID, input.Files, domain.AttachmentTypeComment, now)
	if err != nil {
		return nil, err
	}

	// Under strict, a reporter-side comment during pending_user is the
	// response the technician is waiting for: resume in the same transaction.
	if e.commentPolicy == CommentPolicyStrict &&
		ticket.Status == domain.TicketStatusPendingUser && !isStaff &&
		(actor.ID == ticket.CreatedByID || actor.ID == ticket.ReporterID) {
		if _, err := e.resume(ctx, &actor.ID, ticket, "reporter responded with additional information", &pendingComment{comment: comment, attachments: attachments}); err != nil {
			e.discardFiles(ctx, paths)
			return nil, err
		}
	} else {
		if err := e.store.ApplyComment(ctx, &CommentBundle{Comment: comment, Attachments: attachments}); err != nil {
			e.discardFiles(ctx, paths)
			return nil, err
		}
	}

	e.publish(ctx, events.Event{
		Type:     events.EventTicketCommented,
		TicketID: ticket.ID,
		ActorID:  &actor.ID,
		Payload: events.TicketCommentedPayload{
			CommentID:  comment.ID,
			IsInternal: comment.IsInternal,
		},
	})
	return comment, nil
}

type pendingComment struct {
	comment     *domain.TicketComment
	attachments []domain.TicketAttachment
}

func (e *Engine) resume(ctx context.Context, actorID *int64, ticket *domain.Ticket, notes string, withComment *pendingComment) (*domain.Ticket, error) {
	now := e.now()
	updated := *ticket
	updated.PendingType = nil
	updated.PendingReason = nil
	updated.Status = domain.TicketStatusInProgress
	updated.UpdatedAt = now

	bundle := &TransitionBundle{
		Ticket:         &updated,
		ExpectedStatus: ticket.Status,
		Log:            newLog(&ticket.ID, actorID, domain.LogActionResume, &ticket.Status, updated.Status, notes, now),
	}
	if withComment != nil {
		bundle.Comment = withComment.comment
		bundle.CommentAttachments = withComment.attachments
	}
	return e.applyTransition(ctx, bundle, actorID)
}

func (e *Engine) mayResume(actor *domain.User, ticket *domain.Ticket) bool {
	if ticket.IsAssignedTo(actor.ID) {
		return true
	}
	if ticket.Status == domain.TicketStatusPendingUser {
		return actor.ID == ticket.ReporterID || actor.ID == ticket.CreatedByID
	}
	return false
}

func (e *Engine) checkCommentPolicy(actor *domain.User, ticket *domain.Ticket) error {
	switch e.commentPolicy {
	case CommentPolicyBroad:
		if actor.ID != ticket.ReporterID && actor.ID != ticket.CreatedByID {
			return apperrors.NewUnauthorized("no access to comment on this ticket")
		}
		switch ticket.Status {
		case domain.TicketStatusNew, domain.TicketStatusPendingUser, domain.TicketStatusReopened:
			return nil
		default:
			return apperrors.NewInvalidTransition(string(ActionComment), string(ticket.Status))
		}
	default: // strict: only the creator, only while pending on the reporter
		if actor.ID != ticket.CreatedByID {
			return apperrors.NewUnauthorized("no access to comment on this ticket")
		}
		if ticket.Status != domain.TicketStatusPendingUser {
			return apperrors.NewInvalidTransition(string(ActionComment), string(ticket.Status))
		}
		return nil
	}
}

func (e *Engine) loadForAction(ctx context.Context, action Action, ticketID int64) (*domain.Ticket, error) {
	ticket, err := e.store.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(action, ticket.Status) {
		return nil, apperrors.NewInvalidTransition(string(action), string(ticket.Status))
	}
	return ticket, nil
}

func (e *Engine) applyTransition(ctx context.Context, bundle *TransitionBundle, actorID *int64) (*domain.Ticket, error) {
	if err := e.store.ApplyTransition(ctx, bundle); err != nil {
		return nil, err
	}
	var from domain.TicketStatus
	if bundle.Log.FromStatus != nil {
		from = *bundle.Log.FromStatus
	}
	notes := ""
	if bundle.Log.Notes != nil {
		notes = *bundle.Log.Notes
	}
	e.publish(ctx, events.Event{
		Type:     events.EventTicketTransitioned,
		TicketID: bundle.Ticket.ID,
		ActorID:  actorID,
		Payload: events.TicketTransitionedPayload{
			Action:     bundle.Log.Action,
			FromStatus: from,
			ToStatus:   bundle.Ticket.Status,
			Notes:      notes,
		},
	})
	return bundle.Ticket, nil
}

func (e *Engine) storeFiles(ctx context.Context, actorID int64, files []storage.File, attType domain.AttachmentType, at time.Time) ([]domain.TicketAttachment, []string, error) {
	if len(files) == 0 || e.files == nil {
		return nil, nil, nil
	}
	attachments := make([]domain.TicketAttachment, 0, len(files))
	paths := make([]string, 0, len(files))
	for _, f := range files {
		path, err := e.files.Save(ctx, f)
		if err != nil {
			e.discardFiles(ctx, paths)
			return nil, nil, apperrors.NewInternalError(err)
		}
		paths = append(paths, path)
		attachments = append(attachments, domain.TicketAttachment{
			UserID:         actorID,
			FileName:       f.Name,
			FilePath:       path,
			FileType:       f.ContentType,
			FileSize:       f.Size,
			AttachmentType: attType,
			CreatedAt:      at,
		})
	}
	return attachments, paths, nil
}

func (e *Engine) discardFiles(ctx context.Context, paths []string) {
	if e.files == nil {
		return
	}
	for _, path := range paths {
		if err := e.files.Delete(ctx, path); err != nil {
			e.logger.Warn("orphaned attachment cleanup failed", zap.String("path", path), zap.Error(err))
		}
	}
}

func (e *Engine) publish(ctx context.Context, event events.Event) {
	if e.dispatcher == nil {
		return
	}
	_ = e.dispatcher.Publish(ctx, event)
}

func newLog(ticketID *int64, actorID *int64, action domain.LogAction, from *domain.TicketStatus, to domain.TicketStatus, notes string, at time.Time) domain.TicketLog {
	entry := domain.TicketLog{
		UserID:     actorID,
		Action:     action,
		FromStatus: from,
		ToStatus:   to,
		CreatedAt:  at,
	}
	if ticketID != nil {
		entry.TicketID = *ticketID
	}
	if strings.TrimSpace(notes) != "" {
		entry.Notes = &notes
	}
	return entry
}
