package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/azis003/tick-track/internal/domain"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		action  Action
		from    domain.TicketStatus
		allowed bool
	}{
		{ActionTriage, domain.TicketStatusNew, true},
		{ActionTriage, domain.TicketStatusReopened, true},
		{ActionTriage, domain.TicketStatusTriage, true},
		{ActionTriage, domain.TicketStatusClosed, false},
		{ActionAssign, domain.TicketStatusTriage, true},
		{ActionAssign, domain.TicketStatusAssigned, true},
		{ActionAssign, domain.TicketStatusNew, false},
		{ActionSelfHandle, domain.TicketStatusTriage, true},
		{ActionSelfHandle, domain.TicketStatusAssigned, false},
		{ActionAccept, domain.TicketStatusAssigned, true},
		{ActionAccept, domain.TicketStatusInProgress, false},
		{ActionReturn, domain.TicketStatusAssigned, true},
		{ActionReturn, domain.TicketStatusInProgress, true},
		{ActionReturn, domain.TicketStatusTriage, false},
		{ActionSetPending, domain.TicketStatusInProgress, true},
		{ActionSetPending, domain.TicketStatusAssigned, false},
		{ActionResume, domain.TicketStatusPendingUser, true},
		{ActionResume, domain.TicketStatusPendingExternal, true},
		{ActionResume, domain.TicketStatusInProgress, false},
		{ActionRequestApproval, domain.TicketStatusInProgress, true},
		{ActionRequestApproval, domain.TicketStatusPendingUser, false},
		{ActionDecideApproval, domain.TicketStatusWaitingApproval, true},
		{ActionDecideApproval, domain.TicketStatusInProgress, false},
		{ActionResolve, domain.TicketStatusInProgress, true},
		{ActionResolve, domain.TicketStatusPendingUser, true},
		{ActionResolve, domain.TicketStatusPendingExternal, true},
		{ActionResolve, domain.TicketStatusWaitingApproval, false},
		{ActionClose, domain.TicketStatusResolved, true},
		{ActionClose, domain.TicketStatusInProgress, false},
		{ActionReopen, domain.TicketStatusResolved, true},
		{ActionReopen, domain.TicketStatusClosed, false},
		{ActionAutoClose, domain.TicketStatusResolved, true},
		{ActionAutoClose, domain.TicketStatusReopened, false},
	}

	for _, tc := range cases {
		got := CanTransition(tc.action, tc.from)
		assert.Equal(t, tc.allowed, got, "%s from %s", tc.action, tc.from)
	}
}

func TestAllowedSources(t *testing.T) {
	assert.ElementsMatch(t,
		[]domain.TicketStatus{domain.TicketStatusNew, domain.TicketStatusReopened, domain.TicketStatusTriage},
		AllowedSources(ActionTriage))
	assert.Empty(t, AllowedSources(ActionCreate))
}
