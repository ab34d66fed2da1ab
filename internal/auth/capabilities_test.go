package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/azis003/tick-track/internal/domain"
)

func TestCapabilitiesForRole(t *testing.T) {
	cases := []struct {
		role  domain.Role
		has   []Capability
		lacks []Capability
	}{
		{
			role:  domain.RoleEmployee,
			has:   []Capability{CapTicketsCreate},
			lacks: []Capability{CapTicketsTriage, CapTicketsWork, CapTicketsApprove, CapTicketsViewAll},
		},
		{
			role:  domain.RoleHelpdesk,
			has:   []Capability{CapTicketsCreateForOthers, CapTicketsTriage, CapTicketsAssign, CapTicketsWork, CapTicketsViewAll},
			lacks: []Capability{CapTicketsApprove, CapTicketsViewUnit, CapUsersProvision},
		},
		{
			role:  domain.RoleTechnician,
			has:   []Capability{CapTicketsWork, CapTicketsCommentInternal},
			lacks: []Capability{CapTicketsTriage, CapTicketsAssign, CapTicketsApprove},
		},
		{
			role:  domain.RoleManager,
			has:   []Capability{CapTicketsApprove, CapTicketsViewAll},
			lacks: []Capability{CapTicketsWork, CapTicketsTriage},
		},
		{
			role:  domain.RoleTeamLead,
			has:   []Capability{CapTicketsViewUnit},
			lacks: []Capability{CapTicketsViewAll, CapTicketsWork},
		},
		{
			role: domain.RoleAdmin,
			has: []Capability{
				CapTicketsCreate, CapTicketsCreateForOthers, CapTicketsTriage, CapTicketsAssign,
				CapTicketsWork, CapTicketsApprove, CapTicketsViewAll, CapTicketsViewUnit,
				CapTicketsCommentInternal, CapUsersProvision,
			},
		},
	}

	for _, tc := range cases {
		t.Run(string(tc.role), func(t *testing.T) {
			caps := CapabilitiesForRole(tc.role)
			for _, c := range tc.has {
				assert.True(t, caps.Has(c), "%s should hold %s", tc.role, c)
			}
			for _, c := range tc.lacks {
				assert.False(t, caps.Has(c), "%s should not hold %s", tc.role, c)
			}
		})
	}
}

func TestUnknownRoleHasNoCapabilities(t *testing.T) {
	caps := CapabilitiesForRole(domain.Role("contractor"))
	assert.Empty(t, caps)
}

func TestRoleChecker(t *testing.T) {
	checker := RoleChecker{}
	assert.True(t, checker.Can(&domain.User{Role: domain.RoleTechnician}, CapTicketsWork))
	assert.False(t, checker.Can(&domain.User{Role: domain.RoleEmployee}, CapTicketsWork))
	assert.False(t, checker.Can(nil, CapTicketsCreate))
}
