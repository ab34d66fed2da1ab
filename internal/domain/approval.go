package domain

import "time"

// ApprovalStatus enumerates approval request outcomes.
type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "pending"
	ApprovalStatusApproved ApprovalStatus = "approved"
	ApprovalStatusRejected ApprovalStatus = "rejected"
)

// Approval is one request-decide round trip between a technician and a
// manager. A ticket accumulates one record per approval cycle; only the
// latest pending one is actionable.
type Approval struct {
	ID            int64
	TicketID      int64
	RequestedByID int64
	ApprovedByID  *int64
	RequestType   string
	RequestReason string
	EstimatedCost *float64
	Status        ApprovalStatus
	DecisionNotes *string
	RequestedAt   time.Time
	DecidedAt     *time.Time
}
