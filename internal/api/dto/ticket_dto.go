package dto

import (
	"time"

	"github.com/azis003/tick-track/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	CategoryID     int64  `json:"category_id"`
	UserPriorityID int64  `json:"user_priority_id"`
	ReporterID     *int64 `json:"reporter_id,omitempty"`
}

// TriageRequest payload.
type TriageRequest struct {
	FinalPriorityID int64  `json:"final_priority_id"`
	Notes           string `json:"notes,omitempty"`
}

// AssignRequest payload.
type AssignRequest struct {
	TechnicianID int64  `json:"technician_id"`
	Notes        string `json:"notes,omitempty"`
}

// ReasonRequest carries the reason text for return and reopen.
type ReasonRequest struct {
	Reason string `json:"reason"`
}

// PendingRequest payload.
type PendingRequest struct {
	Type   domain.PendingType `json:"type"`
	Reason string             `json:"reason"`
}

// ResumeRequest payload.
type ResumeRequest struct {
	Notes string `json:"notes,omitempty"`
}

// ApprovalRequest payload.
type ApprovalRequest struct {
	RequestType   string   `json:"request_type"`
	RequestReason string   `json:"request_reason"`
	EstimatedCost *float64 `json:"estimated_cost,omitempty"`
}

// ApprovalDecisionRequest payload.
type ApprovalDecisionRequest struct {
	Approve bool   `json:"approve"`
	Notes   string `json:"notes,omitempty"`
}

// ResolveRequest payload.
type ResolveRequest struct {
	Resolution string `json:"resolution"`
}

// CommentRequest payload.
type CommentRequest struct {
	Content    string `json:"content"`
	IsInternal bool   `json:"is_internal,omitempty"`
}

// TicketSummary response.
type TicketSummary struct {
	ID              int64               `json:"id"`
	TicketNumber    string              `json:"ticket_number"`
	Title           string              `json:"title"`
	Status          domain.TicketStatus `json:"status"`
	StatusLabel     string              `json:"status_label"`
	StatusColor     string              `json:"status_color"`
	CategoryID      int64               `json:"category_id"`
	UserPriorityID  int64               `json:"user_priority_id"`
	FinalPriorityID *int64              `json:"final_priority_id,omitempty"`
	ReporterID      int64               `json:"reporter_id"`
	AssignedToID    *int64              `json:"assigned_to_id,omitempty"`
	ReopenCount     int                 `json:"reopen_count"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// NewTicketSummary maps a ticket.
func NewTicketSummary(t *domain.Ticket) TicketSummary {
	return TicketSummary{
		ID:              t.ID,
		TicketNumber:    t.TicketNumber,
		Title:           t.Title,
		Status:          t.Status,
		StatusLabel:     t.Status.Label(),
		StatusColor:     t.Status.Color(),
		CategoryID:      t.CategoryID,
		UserPriorityID:  t.UserPriorityID,
		FinalPriorityID: t.FinalPriorityID,
		ReporterID:      t.ReporterID,
		AssignedToID:    t.AssignedToID,
		ReopenCount:     t.ReopenCount,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

// NewTicketSummaries maps a slice of tickets.
func NewTicketSummaries(tickets []domain.Ticket) []TicketSummary {
	items := make([]TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, NewTicketSummary(&tickets[i]))
	}
	return items
}

// AssigneeResponse lists a technician and their active workload for the
// assignment picker.
type AssigneeResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	OpenTickets int    `json:"open_tickets"`
}

// NewAssigneeResponse maps a technician and workload count.
func NewAssigneeResponse(user domain.User, openTickets int) AssigneeResponse {
	return AssigneeResponse{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		OpenTickets: openTickets,
	}
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	TicketSummary
	Description   string               `json:"description"`
	CreatedByID   int64                `json:"created_by_id"`
	AssignedByID  *int64               `json:"assigned_by_id,omitempty"`
	AssignedAt    *time.Time           `json:"assigned_at,omitempty"`
	StartedAt     *time.Time           `json:"started_at,omitempty"`
	ResolvedAt    *time.Time           `json:"resolved_at,omitempty"`
	ClosedAt      *time.Time           `json:"closed_at,omitempty"`
	AutoCloseAt   *time.Time           `json:"auto_close_at,omitempty"`
	Resolution    *string              `json:"resolution,omitempty"`
	PendingType   *domain.PendingType  `json:"pending_type,omitempty"`
	PendingReason *string              `json:"pending_reason,omitempty"`
	ReturnReason  *string              `json:"return_reason,omitempty"`
	Comments      []CommentResponse    `json:"comments"`
	Attachments   []AttachmentResponse `json:"attachments"`
	Approvals     []ApprovalResponse   `json:"approvals"`
}

// NewTicketDetail maps a ticket with its thread.
func NewTicketDetail(t *domain.Ticket, comments []domain.TicketComment, attachments []domain.TicketAttachment, approvals []domain.Approval) TicketDetailResponse {
	resp := TicketDetailResponse{
		TicketSummary: NewTicketSummary(t),
		Description:   t.Description,
		CreatedByID:   t.CreatedByID,
		AssignedByID:  t.AssignedByID,
		AssignedAt:    t.AssignedAt,
		StartedAt:     t.StartedAt,
		ResolvedAt:    t.ResolvedAt,
		ClosedAt:      t.ClosedAt,
		AutoCloseAt:   t.AutoCloseAt,
		Resolution:    t.Resolution,
		PendingType:   t.PendingType,
		PendingReason: t.PendingReason,
		ReturnReason:  t.ReturnReason,
		Comments:      make([]CommentResponse, 0, len(comments)),
		Attachments:   make([]AttachmentResponse, 0, len(attachments)),
		Approvals:     make([]ApprovalResponse, 0, len(approvals)),
	}
	for i := range comments {
		resp.Comments = append(resp.Comments, NewCommentResponse(&comments[i]))
	}
	for i := range attachments {
		resp.Attachments = append(resp.Attachments, NewAttachmentResponse(&attachments[i]))
	}
	for i := range approvals {
		resp.Approvals = append(resp.Approvals, NewApprovalResponse(&approvals[i]))
	}
	return resp
}

// CommentResponse represents a thread entry.
type CommentResponse struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	Content    string    `json:"content"`
	IsInternal bool      `json:"is_internal"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewCommentResponse maps a comment.
func NewCommentResponse(c *domain.TicketComment) CommentResponse {
	return CommentResponse{
		ID:         c.ID,
		UserID:     c.UserID,
		Content:    c.Content,
		IsInternal: c.IsInternal,
		CreatedAt:  c.CreatedAt,
	}
}

// AttachmentResponse metadata.
type AttachmentResponse struct {
	ID             int64                 `json:"id"`
	CommentID      *int64                `json:"comment_id,omitempty"`
	UserID         int64                 `json:"user_id"`
	FileName       string                `json:"file_name"`
	FileType       string                `json:"file_type"`
	FileSize       int64                 `json:"file_size"`
	AttachmentType domain.AttachmentType `json:"attachment_type"`
	CreatedAt      time.Time             `json:"created_at"`
}

// NewAttachmentResponse maps an attachment.
func NewAttachmentResponse(a *domain.TicketAttachment) AttachmentResponse {
	return AttachmentResponse{
		ID:             a.ID,
		CommentID:      a.CommentID,
		UserID:         a.UserID,
		FileName:       a.FileName,
		FileType:       a.FileType,
		FileSize:       a.FileSize,
		AttachmentType: a.AttachmentType,
		CreatedAt:      a.CreatedAt,
	}
}

// ApprovalResponse represents an approval cycle.
type ApprovalResponse struct {
	ID            int64                 `json:"id"`
	RequestedByID int64                 `json:"requested_by_id"`
	ApprovedByID  *int64                `json:"approved_by_id,omitempty"`
	RequestType   string                `json:"request_type"`
	RequestReason string                `json:"request_reason"`
	EstimatedCost *float64              `json:"estimated_cost,omitempty"`
	Status        domain.ApprovalStatus `json:"status"`
	DecisionNotes *string               `json:"decision_notes,omitempty"`
	RequestedAt   time.Time             `json:"requested_at"`
	DecidedAt     *time.Time            `json:"decided_at,omitempty"`
}

// NewApprovalResponse maps an approval.
func NewApprovalResponse(a *domain.Approval) ApprovalResponse {
	return ApprovalResponse{
		ID:            a.ID,
		RequestedByID: a.RequestedByID,
		ApprovedByID:  a.ApprovedByID,
		RequestType:   a.RequestType,
		RequestReason: a.RequestReason,
		EstimatedCost: a.EstimatedCost,
		Status:        a.Status,
		DecisionNotes: a.DecisionNotes,
		RequestedAt:   a.RequestedAt,
		DecidedAt:     a.DecidedAt,
	}
}

// TicketLogResponse represents one audit entry.
type TicketLogResponse struct {
	ID         int64                `json:"id"`
	UserID     *int64               `json:"user_id,omitempty"`
	Action     domain.LogAction     `json:"action"`
	FromStatus *domain.TicketStatus `json:"from_status,omitempty"`
	ToStatus   domain.TicketStatus  `json:"to_status"`
	Notes      *string              `json:"notes,omitempty"`
	CreatedAt  time.Time            `json:"created_at"`
}

// NewTicketLogResponses maps the audit trail.
func NewTicketLogResponses(logs []domain.TicketLog) []TicketLogResponse {
	items := make([]TicketLogResponse, 0, len(logs))
	for _, entry := range logs {
		items = append(items, TicketLogResponse{
			ID:         entry.ID,
			UserID:     entry.UserID,
			Action:     entry.Action,
			FromStatus: entry.FromStatus,
			ToStatus:   entry.ToStatus,
			Notes:      entry.Notes,
			CreatedAt:  entry.CreatedAt,
		})
	}
	return items
}
