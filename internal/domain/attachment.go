package domain

import "time"

// AttachmentType records which action produced an attachment.
type AttachmentType string

const (
	AttachmentTypeInitial  AttachmentType = "initial"
	AttachmentTypeEvidence AttachmentType = "evidence"
	AttachmentTypeComment  AttachmentType = "comment"
)

// TicketAttachment is a stored file reference. CommentID is set when the
// file belongs to a specific remark rather than the ticket itself.
type TicketAttachment struct {
	ID             int64
	TicketID       int64
	CommentID      *int64
	UserID         int64
	FileName       string
	FilePath       string
	FileType       string
	FileSize       int64
	AttachmentType AttachmentType
	CreatedAt      time.Time
}
