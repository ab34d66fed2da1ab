package domain

import (
	"fmt"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusNew             TicketStatus = "new"
	TicketStatusTriage          TicketStatus = "triage"
	TicketStatusAssigned        TicketStatus = "assigned"
	TicketStatusInProgress      TicketStatus = "in_progress"
	TicketStatusPendingUser     TicketStatus = "pending_user"
	TicketStatusPendingExternal TicketStatus = "pending_external"
	TicketStatusWaitingApproval TicketStatus = "waiting_approval"
	TicketStatusResolved        TicketStatus = "resolved"
	TicketStatusClosed          TicketStatus = "closed"
	TicketStatusReopened        TicketStatus = "reopened"
)

// TicketStatuses is the closed set of valid states.
var TicketStatuses = []TicketStatus{
	TicketStatusNew,
	TicketStatusTriage,
	TicketStatusAssigned,
	TicketStatusInProgress,
	TicketStatusPendingUser,
	TicketStatusPendingExternal,
	TicketStatusWaitingApproval,
	TicketStatusResolved,
	TicketStatusClosed,
	TicketStatusReopened,
}

// StatusLabels maps states to display labels.
var StatusLabels = map[TicketStatus]string{
	TicketStatusNew:             "New",
	TicketStatusTriage:          "Triage",
	TicketStatusAssigned:        "Assigned",
	TicketStatusInProgress:      "In Progress",
	TicketStatusPendingUser:     "Pending User",
	TicketStatusPendingExternal: "Pending External",
	TicketStatusWaitingApproval: "Waiting Approval",
	TicketStatusResolved:        "Resolved",
	TicketStatusClosed:          "Closed",
	TicketStatusReopened:        "Reopened",
}

// StatusColors maps states to badge colors.
var StatusColors = map[TicketStatus]string{
	TicketStatusNew:             "blue",
	TicketStatusTriage:          "purple",
	TicketStatusAssigned:        "indigo",
	TicketStatusInProgress:      "yellow",
	TicketStatusPendingUser:     "orange",
	TicketStatusPendingExternal: "orange",
	TicketStatusWaitingApproval: "pink",
	TicketStatusResolved:        "green",
	TicketStatusClosed:          "gray",
	TicketStatusReopened:        "red",
}

// Valid reports whether the status is a member of the closed set.
func (s TicketStatus) Valid() bool {
	_, ok := StatusLabels[s]
	return ok
}

// Label returns the display label for the status.
func (s TicketStatus) Label() string {
	if label, ok := StatusLabels[s]; ok {
		return label
	}
	return string(s)
}

// Color returns the badge color for the status.
func (s TicketStatus) Color() string {
	if color, ok := StatusColors[s]; ok {
		return color
	}
	return "gray"
}

// PendingType distinguishes who a pending ticket waits on.
type PendingType string

const (
	PendingTypeUser     PendingType = "user"
	PendingTypeExternal PendingType = "external"
)

// Ticket is the aggregate for helpdesk requests.
type Ticket struct {
	ID              int64
	TicketNumber    string
	Title           string
	Description     string
	CategoryID      int64
	UserPriorityID  int64
	FinalPriorityID *int64
	ReporterID      int64
	CreatedByID     int64
	AssignedToID    *int64
	AssignedByID    *int64
	Status          TicketStatus
	AssignedAt      *time.Time
	StartedAt       *time.Time
	ResolvedAt      *time.Time
	ClosedAt        *time.Time
	AutoCloseAt     *time.Time
	Resolution      *string
	PendingType     *PendingType
	PendingReason   *string
	ReturnReason    *string
	ReopenCount     int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// FormatTicketNumber renders a sequence number as a ticket number.
func FormatTicketNumber(seq int64) string {
	return fmt.Sprintf("TKT%07d", seq)
}

// IsAssignedTo reports whether userID is the current assignee.
func (t *Ticket) IsAssignedTo(userID int64) bool {
	return t.AssignedToID != nil && *t.AssignedToID == userID
}
