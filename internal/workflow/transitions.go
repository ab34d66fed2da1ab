package workflow

import "github.com/azis003/tick-track/internal/domain"

// Action names a workflow operation. Every mutation of a ticket goes through
// exactly one of these.
type Action string

const (
	ActionCreate          Action = "create"
	ActionTriage          Action = "triage"
	ActionAssign          Action = "assign"
	ActionSelfHandle      Action = "self-handle"
	ActionAccept          Action = "accept"
	ActionReturn          Action = "return"
	ActionSetPending      Action = "set-pending"
	ActionResume          Action = "resume"
	ActionRequestApproval Action = "request-approval"
	ActionDecideApproval  Action = "approve-decision"
	ActionResolve         Action = "resolve"
	ActionClose           Action = "close"
	ActionReopen          Action = "reopen"
	ActionAutoClose       Action = "auto-close"
	ActionComment         Action = "comment"
)

// transitionRule lists the source states an action accepts. Targets are fixed
// per action except set-pending, which forks on the pending type.
type transitionRule struct {
	Sources []domain.TicketStatus
}

var transitionTable = map[Action]transitionRule{
	ActionTriage:          {Sources: []domain.TicketStatus{domain.TicketStatusNew, domain.TicketStatusReopened, domain.TicketStatusTriage}},
	ActionAssign:          {Sources: []domain.TicketStatus{domain.TicketStatusTriage, domain.TicketStatusAssigned}},
	ActionSelfHandle:      {Sources: []domain.TicketStatus{domain.TicketStatusTriage}},
	ActionAccept:          {Sources: []domain.TicketStatus{domain.TicketStatusAssigned}},
	ActionReturn:          {Sources: []domain.TicketStatus{domain.TicketStatusAssigned, domain.TicketStatusInProgress}},
	ActionSetPending:      {Sources: []domain.TicketStatus{domain.TicketStatusInProgress}},
	ActionResume:          {Sources: []domain.TicketStatus{domain.TicketStatusPendingUser, domain.TicketStatusPendingExternal}},
	ActionRequestApproval: {Sources: []domain.TicketStatus{domain.TicketStatusInProgress}},
	ActionDecideApproval:  {Sources: []domain.TicketStatus{domain.TicketStatusWaitingApproval}},
	ActionResolve:         {Sources: []domain.TicketStatus{domain.TicketStatusInProgress, domain.TicketStatusPendingUser, domain.TicketStatusPendingExternal}},
	ActionClose:           {Sources: []domain.TicketStatus{domain.TicketStatusResolved}},
	ActionReopen:          {Sources: []domain.TicketStatus{domain.TicketStatusResolved}},
	ActionAutoClose:       {Sources: []domain.TicketStatus{domain.TicketStatusResolved}},
}

// AllowedSources returns the source states an action accepts.
func AllowedSources(action Action) []domain.TicketStatus {
	return transitionTable[action].Sources
}

// CanTransition reports whether the action is allowed from the given status.
func CanTransition(action Action, from domain.TicketStatus) bool {
	for _, src := range transitionTable[action].Sources {
		if src == from {
			return true
		}
	}
	return false
}
