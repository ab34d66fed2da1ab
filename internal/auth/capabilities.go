package auth

import "github.com/azis003/tick-track/internal/domain"

// Capability names a single permitted operation. Route middleware checks
// capabilities before a workflow action runs; the engine itself only checks
// the actor's relationship to the ticket.
type Capability string

const (
	CapTicketsCreate          Capability = "tickets.create"
	CapTicketsCreateForOthers Capability = "tickets.create-for-others"
	CapTicketsTriage          Capability = "tickets.triage"
	CapTicketsAssign          Capability = "tickets.assign"
	CapTicketsWork            Capability = "tickets.work"
	CapTicketsApprove         Capability = "tickets.approve"
	CapTicketsViewAll         Capability = "tickets.view-all"
	CapTicketsViewUnit        Capability = "tickets.view-unit"
	CapTicketsCommentInternal Capability = "tickets.comment-internal"
	CapUsersProvision         Capability = "users.provision"
)

// CapabilitySet is the set of capabilities held by a principal.
type CapabilitySet map[Capability]struct{}

// Has reports whether the set contains the capability.
func (s CapabilitySet) Has(c Capability) bool {
	_, ok := s[c]
	return ok
}

// NewCapabilitySet builds a set from a list of capabilities.
func NewCapabilitySet(caps ...Capability) CapabilitySet {
	set := make(CapabilitySet, len(caps))
	for _, c := range caps {
		set[c] = struct{}{}
	}
	return set
}

var roleCapabilities = map[domain.Role]CapabilitySet{
	domain.RoleEmployee: NewCapabilitySet(
		CapTicketsCreate,
	),
	domain.RoleHelpdesk: NewCapabilitySet(
		CapTicketsCreate,
		CapTicketsCreateForOthers,
		CapTicketsTriage,
		CapTicketsAssign,
		CapTicketsWork,
		CapTicketsViewAll,
		CapTicketsCommentInternal,
	),
	domain.RoleTechnician: NewCapabilitySet(
		CapTicketsCreate,
		CapTicketsWork,
		CapTicketsCommentInternal,
	),
	domain.RoleManager: NewCapabilitySet(
		CapTicketsCreate,
		CapTicketsApprove,
		CapTicketsViewAll,
		CapTicketsCommentInternal,
	),
	domain.RoleTeamLead: NewCapabilitySet(
		CapTicketsCreate,
		CapTicketsViewUnit,
	),
	domain.RoleAdmin: NewCapabilitySet(
		CapTicketsCreate,
		CapTicketsCreateForOthers,
		CapTicketsTriage,
		CapTicketsAssign,
		CapTicketsWork,
		CapTicketsApprove,
		CapTicketsViewAll,
		CapTicketsViewUnit,
		CapTicketsCommentInternal,
		CapUsersProvision,
	),
}

// CapabilitiesForRole returns the capability set granted to a role.
func CapabilitiesForRole(role domain.Role) CapabilitySet {
	if caps, ok := roleCapabilities[role]; ok {
		return caps
	}
	return CapabilitySet{}
}

// Checker answers "does this actor hold capability C". The workflow engine
// consumes it for status-coupled policies (comment gating); access control
// proper happens upstream in route middleware.
type Checker interface {
	Can(user *domain.User, c Capability) bool
}

// RoleChecker derives capabilities from the user's role.
type RoleChecker struct{}

// Can implements Checker.
func (RoleChecker) Can(user *domain.User, c Capability) bool {
	if user == nil {
		return false
	}
	return CapabilitiesForRole(user.Role).Has(c)
}
