package taskqueue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azis003/tick-track/internal/auth"
	"github.com/azis003/tick-track/internal/domain"
)

func ticketWith(status domain.TicketStatus, assignedTo, createdBy int64, updated time.Time) domain.Ticket {
	t := domain.Ticket{Status: status, CreatedByID: createdBy, UpdatedAt: updated}
	if assignedTo > 0 {
		t.AssignedToID = &assignedTo
	}
	return t
}

func TestForActorClauses(t *testing.T) {
	const actorID = int64(7)

	t.Run("employee sees only own waiting tickets", func(t *testing.T) {
		c := ForActor(actorID, auth.CapabilitiesForRole(domain.RoleEmployee))
		require.Len(t, c.Clauses, 1)

		now := time.Now()
		assert.True(t, c.Matches(&domain.Ticket{Status: domain.TicketStatusPendingUser, CreatedByID: actorID, UpdatedAt: now}))
		assert.True(t, c.Matches(&domain.Ticket{Status: domain.TicketStatusResolved, CreatedByID: actorID, UpdatedAt: now}))
		assert.False(t, c.Matches(&domain.Ticket{Status: domain.TicketStatusNew, CreatedByID: actorID, UpdatedAt: now}))
		assert.False(t, c.Matches(&domain.Ticket{Status: domain.TicketStatusPendingUser, CreatedByID: 99, UpdatedAt: now}))
	})

	t.Run("technician sees own workload", func(t *testing.T) {
		c := ForActor(actorID, auth.CapabilitiesForRole(domain.RoleTechnician))

		now := time.Now()
		mine := ticketWith(domain.TicketStatusAssigned, actorID, 99, now)
		someoneElses := ticketWith(domain.TicketStatusAssigned, 8, 99, now)
		assert.True(t, c.Matches(&mine))
		assert.False(t, c.Matches(&someoneElses))

		pendingExternal := ticketWith(domain.TicketStatusPendingExternal, actorID, 99, now)
		assert.True(t, c.Matches(&pendingExternal))

		// pending_user waits on the reporter, not the technician
		pendingUser := ticketWith(domain.TicketStatusPendingUser, actorID, 99, now)
		assert.False(t, c.Matches(&pendingUser))
	})

	t.Run("helpdesk sees intake", func(t *testing.T) {
		c := ForActor(actorID, auth.CapabilitiesForRole(domain.RoleHelpdesk))

		now := time.Now()
		assert.True(t, c.Matches(&domain.Ticket{Status: domain.TicketStatusNew, CreatedByID: 99, UpdatedAt: now}))
		assert.True(t, c.Matches(&domain.Ticket{Status: domain.TicketStatusReopened, CreatedByID: 99, UpdatedAt: now}))
		assert.False(t, c.Matches(&domain.Ticket{Status: domain.TicketStatusTriage, CreatedByID: 99, UpdatedAt: now}))
	})

	t.Run("manager sees approval requests", func(t *testing.T) {
		c := ForActor(actorID, auth.CapabilitiesForRole(domain.RoleManager))

		now := time.Now()
		assert.True(t, c.Matches(&domain.Ticket{Status: domain.TicketStatusWaitingApproval, CreatedByID: 99, UpdatedAt: now}))
	})

	t.Run("empty criteria matches nothing", func(t *testing.T) {
		c := Criteria{}
		assert.False(t, c.Matches(&domain.Ticket{Status: domain.TicketStatusNew}))
	})
}

func TestQueueOrdering(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tickets := []domain.Ticket{
		ticketWith(domain.TicketStatusWaitingApproval, 0, 1, base.Add(4*time.Hour)),
		ticketWith(domain.TicketStatusNew, 0, 1, base),
		ticketWith(domain.TicketStatusResolved, 0, 1, base.Add(3*time.Hour)),
		ticketWith(domain.TicketStatusNew, 0, 1, base.Add(1*time.Hour)),
		ticketWith(domain.TicketStatusReopened, 0, 1, base.Add(2*time.Hour)),
		ticketWith(domain.TicketStatusAssigned, 0, 1, base),
	}

	Sort(tickets)

	statuses := make([]domain.TicketStatus, 0, len(tickets))
	for i := range tickets {
		statuses = append(statuses, tickets[i].Status)
	}
	assert.Equal(t, []domain.TicketStatus{
		domain.TicketStatusNew,
		domain.TicketStatusNew,
		domain.TicketStatusReopened,
		domain.TicketStatusAssigned,
		domain.TicketStatusResolved,
		domain.TicketStatusWaitingApproval,
	}, statuses)

	// within a rank the freshest update comes first
	assert.True(t, tickets[0].UpdatedAt.After(tickets[1].UpdatedAt))
}

func TestRank(t *testing.T) {
	assert.Equal(t, 0, Rank(domain.TicketStatusNew))
	assert.Equal(t, 1, Rank(domain.TicketStatusReopened))
	assert.Equal(t, 2, Rank(domain.TicketStatusAssigned))
	assert.Equal(t, 3, Rank(domain.TicketStatusPendingUser))
	assert.Equal(t, 4, Rank(domain.TicketStatusResolved))
	assert.Equal(t, 5, Rank(domain.TicketStatusWaitingApproval))
	assert.Equal(t, 6, Rank(domain.TicketStatusClosed))
	assert.Equal(t, 6, Rank(domain.TicketStatusInProgress))
}
