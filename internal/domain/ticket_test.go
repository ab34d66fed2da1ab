package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatTicketNumber(t *testing.T) {
	assert.Equal(t, "TKT0000001", FormatTicketNumber(1))
	assert.Equal(t, "TKT0000042", FormatTicketNumber(42))
	assert.Equal(t, "TKT9999999", FormatTicketNumber(9999999))
	assert.Equal(t, "TKT10000000", FormatTicketNumber(10000000))
}

func TestStatusValid(t *testing.T) {
	for _, status := range TicketStatuses {
		assert.True(t, status.Valid(), "%s", status)
	}
	assert.False(t, TicketStatus("escalated").Valid())
}

func TestStatusLabelAndColor(t *testing.T) {
	assert.Equal(t, "In Progress", TicketStatusInProgress.Label())
	assert.Equal(t, "yellow", TicketStatusInProgress.Color())

	// unknown statuses degrade gracefully
	assert.Equal(t, "weird", TicketStatus("weird").Label())
	assert.Equal(t, "gray", TicketStatus("weird").Color())
}

func TestIsAssignedTo(t *testing.T) {
	id := int64(7)
	ticket := &Ticket{AssignedToID: &id}
	assert.True(t, ticket.IsAssignedTo(7))
	assert.False(t, ticket.IsAssignedTo(8))
	assert.False(t, (&Ticket{}).IsAssignedTo(7))
}
