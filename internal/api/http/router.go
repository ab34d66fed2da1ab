package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/azis003/tick-track/internal/api/http/handlers"
	"github.com/azis003/tick-track/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Queue          *handlers.QueueHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes. Listing routes come before /:id so Fiber
// does not swallow them as ticket ids.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Auth.Login)
	app.Post("/users", cfg.AuthMiddleware.Handle, auth.RequireCapability(auth.CapUsersProvision), cfg.Auth.Provision)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle)

	tickets.Get("/queue", cfg.Queue.Queue)
	tickets.Get("/queue/count", cfg.Queue.QueueCount)
	tickets.Get("/mine", cfg.Queue.Mine)
	tickets.Get("/triage", auth.RequireCapability(auth.CapTicketsTriage), cfg.Queue.TriageNeeded)
	tickets.Get("/assigned", auth.RequireCapability(auth.CapTicketsWork), cfg.Queue.Assigned)
	tickets.Get("/unit", auth.RequireCapability(auth.CapTicketsViewUnit), cfg.Queue.Unit)
	tickets.Get("/assignees", auth.RequireCapability(auth.CapTicketsAssign), cfg.Tickets.AvailableAssignees)
	tickets.Get("/number/:number", cfg.Tickets.GetByNumber)
	tickets.Get("/", auth.RequireCapability(auth.CapTicketsViewAll), cfg.Queue.All)

	tickets.Post("/", auth.RequireCapability(auth.CapTicketsCreate), cfg.Tickets.Create)
	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Get("/:id/logs", cfg.Tickets.Logs)
	tickets.Get("/:id/attachments/:attachmentID", cfg.Tickets.DownloadAttachment)

	tickets.Post("/:id/triage", auth.RequireCapability(auth.CapTicketsTriage), cfg.Tickets.Triage)
	tickets.Post("/:id/assign", auth.RequireCapability(auth.CapTicketsAssign), cfg.Tickets.Assign)
	tickets.Post("/:id/self-handle", auth.RequireCapability(auth.CapTicketsTriage), cfg.Tickets.SelfHandle)
	tickets.Post("/:id/accept", auth.RequireCapability(auth.CapTicketsWork), cfg.Tickets.Accept)
	tickets.Post("/:id/return", auth.RequireCapability(auth.CapTicketsWork), cfg.Tickets.Return)
	tickets.Post("/:id/pending", auth.RequireCapability(auth.CapTicketsWork), cfg.Tickets.Pending)
	tickets.Post("/:id/resume", cfg.Tickets.Resume)
	tickets.Post("/:id/approval/request", auth.RequireCapability(auth.CapTicketsWork), cfg.Tickets.RequestApproval)
	tickets.Post("/:id/approval/decide", auth.RequireCapability(auth.CapTicketsApprove), cfg.Tickets.DecideApproval)
	tickets.Post("/:id/resolve", auth.RequireCapability(auth.CapTicketsWork), cfg.Tickets.Resolve)
	tickets.Post("/:id/close", cfg.Tickets.Close)
	tickets.Post("/:id/reopen", cfg.Tickets.Reopen)
	tickets.Post("/:id/comments", cfg.Tickets.AddComment)
}
