package domain

import "time"

// TicketComment is a remark in a ticket's conversation thread. Internal
// comments are hidden from the reporter-facing view.
type TicketComment struct {
	ID          int64
	TicketID    int64
	UserID      int64
	Content     string
	IsInternal  bool
	Attachments []TicketAttachment
	CreatedAt   time.Time
}
