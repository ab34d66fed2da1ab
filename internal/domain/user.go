package domain

import "time"

// Role enumerates helpdesk personas.
type Role string

const (
	RoleEmployee   Role = "employee"
	RoleHelpdesk   Role = "helpdesk"
	RoleTechnician Role = "technician"
	RoleManager    Role = "manager"
	RoleTeamLead   Role = "team_lead"
	RoleAdmin      Role = "admin"
)

// User is anyone who touches a ticket: reporters, helpdesk staff,
// technicians, managers.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	UnitID       *int64
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
