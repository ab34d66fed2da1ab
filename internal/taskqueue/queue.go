package taskqueue

import (
	"sort"

	"github.com/azis003/tick-track/internal/auth"
	"github.com/azis003/tick-track/internal/domain"
)

// Clause is one disjunct of a work-queue query: tickets in any of the listed
// statuses, optionally narrowed to an assignee or creator.
type Clause struct {
	Statuses     []domain.TicketStatus
	AssignedToID *int64
	CreatedByID  *int64
}

// Criteria is the OR of its clauses. An empty criteria matches nothing, so a
// user with no queue-relevant capabilities sees an empty queue rather than
// everyone's tickets.
type Criteria struct {
	Clauses []Clause
}

// ForActor builds the queue criteria for a user from their capabilities.
// Each capability contributes the slice of work it makes actionable:
//
//   - triage capability pulls in untriaged intake (new, reopened)
//   - work capability pulls in the actor's own assigned workload
//   - approve capability pulls in tickets waiting for a verdict
//   - every user sees their own tickets that need a response or confirmation
func ForActor(actorID int64, caps auth.CapabilitySet) Criteria {
	var c Criteria

	if caps.Has(auth.CapTicketsTriage) {
		c.Clauses = append(c.Clauses, Clause{
			Statuses: []domain.TicketStatus{domain.TicketStatusNew, domain.TicketStatusReopened},
		})
	}
	if caps.Has(auth.CapTicketsWork) {
		id := actorID
		c.Clauses = append(c.Clauses, Clause{
			Statuses: []domain.TicketStatus{
				domain.TicketStatusAssigned,
				domain.TicketStatusInProgress,
				domain.TicketStatusPendingExternal,
			},
			AssignedToID: &id,
		})
	}
	if caps.Has(auth.CapTicketsApprove) {
		c.Clauses = append(c.Clauses, Clause{
			Statuses: []domain.TicketStatus{domain.TicketStatusWaitingApproval},
		})
	}

	id := actorID
	c.Clauses = append(c.Clauses, Clause{
		Statuses: []domain.TicketStatus{
			domain.TicketStatusPendingUser,
			domain.TicketStatusResolved,
		},
		CreatedByID: &id,
	})

	return c
}

// Matches reports whether the ticket satisfies any clause.
func (c Criteria) Matches(t *domain.Ticket) bool {
	for _, clause := range c.Clauses {
		if clause.matches(t) {
			return true
		}
	}
	return false
}

func (cl Clause) matches(t *domain.Ticket) bool {
	inStatus := false
	for _, s := range cl.Statuses {
		if t.Status == s {
			inStatus = true
			break
		}
	}
	if !inStatus {
		return false
	}
	if cl.AssignedToID != nil {
		if t.AssignedToID == nil || *t.AssignedToID != *cl.AssignedToID {
			return false
		}
	}
	if cl.CreatedByID != nil && t.CreatedByID != *cl.CreatedByID {
		return false
	}
	return true
}

// statusRank orders the queue by urgency of attention. Lower ranks surface
// first; anything unranked sorts last.
var statusRank = map[domain.TicketStatus]int{
	domain.TicketStatusNew:             0,
	domain.TicketStatusReopened:        1,
	domain.TicketStatusAssigned:        2,
	domain.TicketStatusPendingUser:     3,
	domain.TicketStatusResolved:        4,
	domain.TicketStatusWaitingApproval: 5,
}

const unrankedStatus = 6

// Rank returns the queue ordering rank for a status.
func Rank(s domain.TicketStatus) int {
	if r, ok := statusRank[s]; ok {
		return r
	}
	return unrankedStatus
}

// Less orders tickets for queue display: by status rank, then most recently
// updated first.
func Less(a, b *domain.Ticket) bool {
	ra, rb := Rank(a.Status), Rank(b.Status)
	if ra != rb {
		return ra < rb
	}
	return a.UpdatedAt.After(b.UpdatedAt)
}

// Sort orders a ticket slice in queue display order.
func Sort(tickets []domain.Ticket) {
	sort.SliceStable(tickets, func(i, j int) bool {
		return Less(&tickets[i], &tickets[j])
	})
}
