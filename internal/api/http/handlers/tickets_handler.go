package handlers

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/azis003/tick-track/internal/api/dto"
	"github.com/azis003/tick-track/internal/auth"
	"github.com/azis003/tick-track/internal/service"
	"github.com/azis003/tick-track/internal/storage"
	"github.com/azis003/tick-track/internal/workflow"
	apperrors "github.com/azis003/tick-track/pkg/util"
)

// TicketsHandler exposes the ticket lifecycle over HTTP. Mutations go to the
// workflow engine, reads to the query service.
type TicketsHandler struct {
	engine  *workflow.Engine
	queries *service.TicketQueryService
	files   storage.Store
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(engine *workflow.Engine, queries *service.TicketQueryService, files storage.Store) *TicketsHandler {
	return &TicketsHandler{engine: engine, queries: queries, files: files}
}

// Create POST /tickets. Accepts JSON, or multipart form with attachments
// under the "files" field.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}

	var req dto.CreateTicketRequest
	if isMultipart(c) {
		req.Title = c.FormValue("title")
		req.Description = c.FormValue("description")
		req.CategoryID = formInt64(c, "category_id")
		req.UserPriorityID = formInt64(c, "user_priority_id")
		if v := formInt64(c, "reporter_id"); v > 0 {
			req.ReporterID = &v
		}
	} else if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationFailed("invalid payload", nil)
	}

	if req.ReporterID != nil && *req.ReporterID != principal.User.ID &&
		!principal.Capabilities.Has(auth.CapTicketsCreateForOthers) {
		return apperrors.NewUnauthorized("cannot file tickets for other users")
	}

	files, cleanup, err := formFiles(c)
	if err != nil {
		return err
	}
	defer cleanup()

	ticket, err := h.engine.Create(c.UserContext(), principal.User, workflow.CreateInput{
		Title:          req.Title,
		Description:    req.Description,
		CategoryID:     req.CategoryID,
		UserPriorityID: req.UserPriorityID,
		ReporterID:     req.ReporterID,
		Files:          files,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketSummary(ticket)})
}

// Get GET /tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	id, err := ticketID(c)
	if err != nil {
		return err
	}
	detail, err := h.queries.GetDetail(c.UserContext(), principal.User, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketDetail(detail.Ticket, detail.Comments, detail.Attachments, detail.Approvals)})
}

// GetByNumber GET /tickets/number/:number.
func (h *TicketsHandler) GetByNumber(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	number := c.Params("number")
	if number == "" {
		return apperrors.NewValidationFailed("ticket number is required", nil)
	}
	detail, err := h.queries.GetDetailByNumber(c.UserContext(), principal.User, number)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketDetail(detail.Ticket, detail.Comments, detail.Attachments, detail.Approvals)})
}

// AvailableAssignees GET /tickets/assignees. Returns active technicians with
// their open ticket counts, least loaded first, for the assignment step.
func (h *TicketsHandler) AvailableAssignees(c *fiber.Ctx) error {
	workloads, err := h.queries.ListAvailableAssignees(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.AssigneeResponse, 0, len(workloads))
	for _, w := range workloads {
		items = append(items, dto.NewAssigneeResponse(w.User, w.OpenTickets))
	}
	return c.JSON(fiber.Map{"data": items})
}

// DownloadAttachment GET /tickets/:id/attachments/:attachmentID. Streams the
// stored file with its original name and content type.
func (h *TicketsHandler) DownloadAttachment(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	id, err := ticketID(c)
	if err != nil {
		return err
	}
	attachmentID, err := strconv.ParseInt(c.Params("attachmentID"), 10, 64)
	if err != nil || attachmentID <= 0 {
		return apperrors.NewValidationFailed("invalid attachment id", nil)
	}

	att, err := h.queries.GetAttachment(c.UserContext(), principal.User, id, attachmentID)
	if err != nil {
		return err
	}
	reader, err := h.files.Open(c.UserContext(), att.FilePath)
	if err != nil {
		return apperrors.NewNotFound("attachment")
	}

	c.Set(fiber.HeaderContentType, att.FileType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+att.FileName+`"`)
	return c.SendStream(reader, int(att.FileSize))
}

// Logs GET /tickets/:id/logs.
func (h *TicketsHandler) Logs(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	id, err := ticketID(c)
	if err != nil {
		return err
	}
	logs, err := h.queries.GetLogs(c.UserContext(), principal.User, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketLogResponses(logs)})
}

// Triage POST /tickets/:id/triage.
func (h *TicketsHandler) Triage(c *fiber.Ctx) error {
	principal, id, err := principalAndID(c)
	if err != nil {
		return err
	}
	var req dto.TriageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationFailed("invalid payload", nil)
	}
	ticket, err := h.engine.Triage(c.UserContext(), principal.User, id, workflow.TriageInput{
		FinalPriorityID: req.FinalPriorityID,
		Notes:           req.Notes,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketSummary(ticket)})
}

// Assign POST /tickets/:id/assign.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	principal, id, err := principalAndID(c)
	if err != nil {
		return err
	}
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationFailed("invalid payload", nil)
	}
	ticket, err := h.engine.Assign(c.UserContext(), principal.User, id, workflow.AssignInput{
		TechnicianID: req.TechnicianID,
		Notes:        req.Notes,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketSummary(ticket)})
}

// SelfHandle POST /tickets/:id/self-handle.
func (h *TicketsHandler) SelfHandle(c *fiber.Ctx) error {
	principal, id, err := principalAndID(c)
	if err != nil {
		return err
	}
	ticket, err := h.engine.SelfHandle(c.UserContext(), principal.User, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketSummary(ticket)})
}

// Accept POST /tickets/:id/accept.
func (h *TicketsHandler) Accept(c *fiber.Ctx) error {
	principal, id, err := principalAndID(c)
	if err != nil {
		return err
	}
	ticket, err := h.engine.Accept(c.UserContext(), principal.User, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketSummary(ticket)})
}

// Return POST /tickets/:id/return.
func (h *TicketsHandler) Return(c *fiber.Ctx) error {
	principal, id, err := principalAndID(c)
	if err != nil {
		return err
	}
	var req dto.ReasonRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationFailed("invalid payload", nil)
	}
	ticket, err := h.engine.Return(c.UserContext(), principal.User, id, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketSummary(ticket)})
}

// Pending POST /tickets/:id/pending.
func (h *TicketsHandler) Pending(c *fiber.Ctx) error {
	principal, id, err := principalAndID(c)
	if err != nil {
		return err
	}
	var req dto.PendingRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationFailed("invalid payload", nil)
	}
	ticket, err := h.engine.SetPending(c.UserContext(), principal.User, id, workflow.PendingInput{
		Type:   req.Type,
		Reason: req.Reason,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketSummary(ticket)})
}

// Resume POST /tickets/:id/resume.
func (h *TicketsHandler) Resume(c *fiber.Ctx) error {
	principal, id, err := principalAndID(c)
	if err != nil {
		return err
	}
	var req dto.ResumeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationFailed("invalid payload", nil)
	}
	ticket, err := h.engine.Resume(c.UserContext(), principal.User, id, req.Notes)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketSummary(ticket)})
}

// RequestApproval POST /tickets/:id/approval/request.
func (h *TicketsHandler) RequestApproval(c *fiber.Ctx) error {
	principal, id, err := principalAndID(c)
	if err != nil {
		return err
	}
	var req dto.ApprovalRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationFailed("invalid payload", nil)
	}
	ticket, err := h.engine.RequestApproval(c.UserContext(), principal.User, id, workflow.ApprovalRequestInput{
		RequestType:   req.RequestType,
		RequestReason: req.RequestReason,
		EstimatedCost: req.EstimatedCost,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketSummary(ticket)})
}

// DecideApproval POST /tickets/:id/approval/decide.
func (h *TicketsHandler) DecideApproval(c *fiber.Ctx) error {
	principal, id, err := principalAndID(c)
	if err != nil {
		return err
	}
	var req dto.ApprovalDecisionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationFailed("invalid payload", nil)
	}
	ticket, err := h.engine.DecideApproval(c.UserContext(), principal.User, id, workflow.ApprovalDecisionInput{
		Approve: req.Approve,
		Notes:   req.Notes,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketSummary(ticket)})
}

// Resolve POST /tickets/:id/resolve. Accepts JSON, or multipart with
// evidence files.
func (h *TicketsHandler) Resolve(c *fiber.Ctx) error {
	principal, id, err := principalAndID(c)
	if err != nil {
		return err
	}
	var req dto.ResolveRequest
	if isMultipart(c) {
		req.Resolution = c.FormValue("resolution")
	} else if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationFailed("invalid payload", nil)
	}

	files, cleanup, err := formFiles(c)
	if err != nil {
		return err
	}
	defer cleanup()

	ticket, err := h.engine.Resolve(c.UserContext(), principal.User, id, workflow.ResolveInput{
		Resolution: req.Resolution,
		Files:      files,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketSummary(ticket)})
}

// Close POST /tickets/:id/close.
func (h *TicketsHandler) Close(c *fiber.Ctx) error {
	principal, id, err := principalAndID(c)
	if err != nil {
		return err
	}
	ticket, err := h.engine.Close(c.UserContext(), principal.User, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketSummary(ticket)})
}

// Reopen POST /tickets/:id/reopen.
func (h *TicketsHandler) Reopen(c *fiber.Ctx) error {
	principal, id, err := principalAndID(c)
	if err != nil {
		return err
	}
	var req dto.ReasonRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationFailed("invalid payload", nil)
	}
	ticket, err := h.engine.Reopen(c.UserContext(), principal.User, id, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketSummary(ticket)})
}

// AddComment POST /tickets/:id/comments. Accepts JSON, or multipart with
// attachments.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	principal, id, err := principalAndID(c)
	if err != nil {
		return err
	}
	var req dto.CommentRequest
	if isMultipart(c) {
		req.Content = c.FormValue("content")
		req.IsInternal = c.FormValue("is_internal") == "true"
	} else if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationFailed("invalid payload", nil)
	}

	files, cleanup, err := formFiles(c)
	if err != nil {
		return err
	}
	defer cleanup()

	comment, err := h.engine.AddComment(c.UserContext(), principal.User, id, workflow.CommentInput{
		Content:    req.Content,
		IsInternal: req.IsInternal,
		Files:      files,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewCommentResponse(comment)})
}

func requirePrincipal(c *fiber.Ctx) (*auth.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return nil, apperrors.NewUnauthenticated("authentication required")
	}
	return principal, nil
}

func ticketID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationFailed("invalid ticket id", nil)
	}
	return id, nil
}

func principalAndID(c *fiber.Ctx) (*auth.Principal, int64, error) {
	principal, err := requirePrincipal(c)
	if err != nil {
		return nil, 0, err
	}
	id, err := ticketID(c)
	if err != nil {
		return nil, 0, err
	}
	return principal, id, nil
}

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm)
}

func formInt64(c *fiber.Ctx, key string) int64 {
	val, err := strconv.ParseInt(c.FormValue(key), 10, 64)
	if err != nil {
		return 0
	}
	return val
}

// formFiles extracts uploaded files from a multipart request. The cleanup
// closure must run after the engine has consumed the readers.
func formFiles(c *fiber.Ctx) ([]storage.File, func(), error) {
	if !isMultipart(c) {
		return nil, func() {}, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, func() {}, apperrors.NewValidationFailed("invalid multipart form", nil)
	}

	headers := form.File["files"]
	files := make([]storage.File, 0, len(headers))
	opened := make([]multipart.File, 0, len(headers))
	cleanup := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	for _, header := range headers {
		src, err := header.Open()
		if err != nil {
			cleanup()
			return nil, func() {}, apperrors.NewValidationFailed("unreadable attachment "+header.Filename, nil)
		}
		opened = append(opened, src)
		files = append(files, storage.File{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Content:     src,
		})
	}
	return files, cleanup, nil
}
