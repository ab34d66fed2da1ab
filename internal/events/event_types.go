package events

import (
	"time"

	"github.com/azis003/tick-track/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated      EventType = "ticket_created"
	EventTicketTransitioned EventType = "ticket_transitioned"
	EventTicketCommented    EventType = "ticket_commented"
	EventApprovalRequested  EventType = "approval_requested"
	EventApprovalDecided    EventType = "approval_decided"
)

// Event represents a domain event emitted by the workflow engine. ActorID is
// nil for system-initiated transitions (auto-close).
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  int64       `json:"ticket_id"`
	ActorID   *int64      `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketNumber   string `json:"ticket_number"`
	Title          string `json:"title"`
	CategoryID     int64  `json:"category_id"`
	UserPriorityID int64  `json:"user_priority_id"`
	ReporterID     int64  `json:"reporter_id"`
}

// TicketTransitionedPayload payload.
type TicketTransitionedPayload struct {
	Action     domain.LogAction    `json:"action"`
	FromStatus domain.TicketStatus `json:"from_status"`
	ToStatus   domain.TicketStatus `json:"to_status"`
	Notes      string              `json:"notes,omitempty"`
}

// TicketCommentedPayload payload.
type TicketCommentedPayload struct {
	CommentID  int64 `json:"comment_id"`
	IsInternal bool  `json:"is_internal"`
}

// ApprovalRequestedPayload payload.
type ApprovalRequestedPayload struct {
	ApprovalID    int64   `json:"approval_id"`
	RequestType   string  `json:"request_type"`
	EstimatedCost *float64 `json:"estimated_cost,omitempty"`
}

// ApprovalDecidedPayload payload.
type ApprovalDecidedPayload struct {
	ApprovalID int64                 `json:"approval_id"`
	Decision   domain.ApprovalStatus `json:"decision"`
	Notes      string                `json:"notes,omitempty"`
}
