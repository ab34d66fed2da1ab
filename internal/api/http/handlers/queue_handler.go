package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/azis003/tick-track/internal/api/dto"
	"github.com/azis003/tick-track/internal/domain"
	"github.com/azis003/tick-track/internal/repository"
	"github.com/azis003/tick-track/internal/service"
	"github.com/azis003/tick-track/internal/taskqueue"
)

// QueueHandler serves the work queue and ticket listings.
type QueueHandler struct {
	queue   *taskqueue.Service
	queries *service.TicketQueryService
}

// NewQueueHandler constructs handler.
func NewQueueHandler(queue *taskqueue.Service, queries *service.TicketQueryService) *QueueHandler {
	return &QueueHandler{queue: queue, queries: queries}
}

// Queue GET /tickets/queue.
func (h *QueueHandler) Queue(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	limit, offset := pagination(c)
	tickets, err := h.queue.List(c.UserContext(), principal.User.ID, principal.Capabilities, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketSummaries(tickets)})
}

// QueueCount GET /tickets/queue/count.
func (h *QueueHandler) QueueCount(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	count, err := h.queue.Count(c.UserContext(), principal.User.ID, principal.Capabilities)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"count": count}})
}

// Mine GET /tickets/mine.
func (h *QueueHandler) Mine(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	filter := parseTicketFilter(c)
	tickets, err := h.queries.ListMine(c.UserContext(), principal.User, filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketSummaries(tickets)})
}

// TriageNeeded GET /tickets/triage.
func (h *QueueHandler) TriageNeeded(c *fiber.Ctx) error {
	if _, err := requirePrincipal(c); err != nil {
		return err
	}
	limit, offset := pagination(c)
	tickets, err := h.queries.ListTriageNeeded(c.UserContext(), limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketSummaries(tickets)})
}

// Assigned GET /tickets/assigned.
func (h *QueueHandler) Assigned(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	limit, offset := pagination(c)
	tickets, err := h.queries.ListAssigned(c.UserContext(), principal.User, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketSummaries(tickets)})
}

// Unit GET /tickets/unit.
func (h *QueueHandler) Unit(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	limit, offset := pagination(c)
	tickets, err := h.queries.ListUnit(c.UserContext(), principal.User, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketSummaries(tickets)})
}

// All GET /tickets.
func (h *QueueHandler) All(c *fiber.Ctx) error {
	if _, err := requirePrincipal(c); err != nil {
		return err
	}
	filter := parseTicketFilter(c)
	tickets, err := h.queries.ListAll(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketSummaries(tickets)})
}

func parseTicketFilter(c *fiber.Ctx) repository.TicketFilter {
	filter := repository.TicketFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.TicketStatus(strings.TrimSpace(part)))
		}
	}
	if v := queryInt64(c, "category_id"); v > 0 {
		filter.CategoryID = &v
	}
	if v := queryInt64(c, "assigned_to"); v > 0 {
		filter.AssignedToID = &v
	}
	if v := queryInt64(c, "reporter_id"); v > 0 {
		filter.ReporterID = &v
	}
	if search := c.Query("search"); search != "" {
		filter.SearchTerm = &search
	}
	if from := parseTimeParam(c.Query("created_from")); from != nil {
		filter.CreatedFrom = from
	}
	if to := parseTimeParam(c.Query("created_to")); to != nil {
		filter.CreatedTo = to
	}
	filter.Limit, filter.Offset = pagination(c)
	return filter
}

func pagination(c *fiber.Ctx) (limit, offset int) {
	page := queryInt(c, "page", 1)
	if page < 1 {
		page = 1
	}
	pageSize := queryInt(c, "page_size", 20)
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return pageSize, (page - 1) * pageSize
}

func queryInt(c *fiber.Ctx, key string, fallback int) int {
	val, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return fallback
	}
	return val
}

func queryInt64(c *fiber.Ctx, key string) int64 {
	val, err := strconv.ParseInt(c.Query(key), 10, 64)
	if err != nil {
		return 0
	}
	return val
}

func parseTimeParam(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}
