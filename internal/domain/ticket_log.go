package domain

import "time"

// LogAction tags what kind of transition produced a log entry.
type LogAction string

const (
	LogActionCreate           LogAction = "create"
	LogActionTriage           LogAction = "triage"
	LogActionAssign           LogAction = "assign"
	LogActionStart            LogAction = "start"
	LogActionReturn           LogAction = "return"
	LogActionPending          LogAction = "pending"
	LogActionResume           LogAction = "resume"
	LogActionRequestApproval  LogAction = "request_approval"
	LogActionApprovalApproved LogAction = "approval_approved"
	LogActionApprovalRejected LogAction = "approval_rejected"
	LogActionResolve          LogAction = "resolve"
	LogActionClose            LogAction = "close"
	LogActionReopen           LogAction = "reopen"
	LogActionAutoClose        LogAction = "auto_close"
)

// TicketLog is an immutable audit trail entry. UserID is nil for
// system-initiated actions such as auto-close.
type TicketLog struct {
	ID         int64
	TicketID   int64
	UserID     *int64
	Action     LogAction
	FromStatus *TicketStatus
	ToStatus   TicketStatus
	Notes      *string
	CreatedAt  time.Time
}
