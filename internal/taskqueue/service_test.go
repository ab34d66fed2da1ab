package taskqueue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azis003/tick-track/internal/auth"
	"github.com/azis003/tick-track/internal/domain"
)

// fakeSource filters an in-memory slice with the same criteria semantics as
// the SQL implementation.
type fakeSource struct {
	tickets []domain.Ticket
	calls   int
}

func (s *fakeSource) ListQueue(ctx context.Context, criteria Criteria, limit, offset int) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for i := range s.tickets {
		if criteria.Matches(&s.tickets[i]) {
			out = append(out, s.tickets[i])
		}
	}
	Sort(out)
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeSource) CountQueue(ctx context.Context, criteria Criteria) (int, error) {
	s.calls++
	count := 0
	for i := range s.tickets {
		if criteria.Matches(&s.tickets[i]) {
			count++
		}
	}
	return count, nil
}

func TestServiceListAndCountAgree(t *testing.T) {
	const actorID = int64(3)
	now := time.Now()

	source := &fakeSource{tickets: []domain.Ticket{
		ticketWith(domain.TicketStatusNew, 0, 9, now),
		ticketWith(domain.TicketStatusReopened, 0, 9, now),
		ticketWith(domain.TicketStatusAssigned, actorID, 9, now),
		ticketWith(domain.TicketStatusAssigned, 8, 9, now),
		ticketWith(domain.TicketStatusPendingUser, 8, actorID, now),
		ticketWith(domain.TicketStatusClosed, actorID, actorID, now),
	}}

	svc := NewService(Dependencies{Source: source, Cache: NewCountCache(nil, 0)})
	caps := auth.CapabilitiesForRole(domain.RoleHelpdesk)

	list, err := svc.List(context.Background(), actorID, caps, 50, 0)
	require.NoError(t, err)

	count, err := svc.Count(context.Background(), actorID, caps)
	require.NoError(t, err)
	assert.Equal(t, len(list), count)

	// intake (new, reopened), own workload, own pending_user ticket
	assert.Equal(t, 4, count)
}

func TestServiceCountWithoutCacheHitsSourceEachTime(t *testing.T) {
	source := &fakeSource{}
	svc := NewService(Dependencies{Source: source, Cache: NewCountCache(nil, 0)})
	caps := auth.CapabilitiesForRole(domain.RoleEmployee)

	_, err := svc.Count(context.Background(), 1, caps)
	require.NoError(t, err)
	_, err = svc.Count(context.Background(), 1, caps)
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls)
}
