package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/api/dto"
	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/auth"
	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/domain"
	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/service"
	apperrors "github.com/webopsway/orchestrate-msp-platform-hub-sub000/pkg/util"
)

// kindSegments maps URL path segments to ticket kinds.
var kindSegments = map[string]domain.TicketKind{
	"incidents":        domain.KindIncident,
	"change-requests":  domain.KindChangeRequest,
	"service-requests": domain.KindServiceRequest,
}

// TicketsHandler serves ticket endpoints for all three kinds.
type TicketsHandler struct {
	tickets     *service.TicketService
	assignments *service.AssignmentService
	sla         *service.SLAService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService, assignments *service.AssignmentService, slaService *service.SLAService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, assignments: assignments, sla: slaService}
}

// Create POST /api/v1/:kind.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	kind, actor, err := h.requestContext(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.TeamID == "" || req.Title == "" {
		return apperrors.NewValidationError("team_id and title required", nil)
	}

	ticket, err := h.tickets.Create(c.UserContext(), kind, actor.ID, service.TicketCreateInput{
		TeamID:      req.TeamID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Metadata:    req.Metadata,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.TicketFromDomain(ticket)})
}

// List GET /api/v1/:kind.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	kind, _, err := h.requestContext(c)
	if err != nil {
		return err
	}
	tickets, err := h.tickets.List(c.UserContext(), kind, parseTicketListQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.TicketFromDomain(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /api/v1/:kind/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	kind, _, err := h.requestContext(c)
	if err != nil {
		return err
	}
	ticket, err := h.tickets.Get(c.UserContext(), kind, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketFromDomain(ticket)})
}

// Transition POST /api/v1/:kind/:id/transition.
func (h *TicketsHandler) Transition(c *fiber.Ctx) error {
	kind, actor, err := h.requestContext(c)
	if err != nil {
		return err
	}
	var req dto.TransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Status == "" {
		return apperrors.NewValidationError("status required", nil)
	}
	ticket, err := h.tickets.Transition(c.UserContext(), kind, c.Params("id"), req.Status, actor.ID, req.Comment)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketFromDomain(ticket)})
}

// UpdatePriority PATCH /api/v1/:kind/:id/priority.
func (h *TicketsHandler) UpdatePriority(c *fiber.Ctx) error {
	kind, actor, err := h.requestContext(c)
	if err != nil {
		return err
	}
	var req dto.UpdatePriorityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.tickets.UpdatePriority(c.UserContext(), kind, c.Params("id"), req.Priority, actor.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketFromDomain(ticket)})
}

// Assign POST /api/v1/:kind/:id/assign.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	kind, actor, err := h.requestContext(c)
	if err != nil {
		return err
	}
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.UserID == "" {
		return apperrors.NewValidationError("user_id required", nil)
	}
	ticket, err := h.assignments.Assign(c.UserContext(), kind, c.Params("id"), req.UserID, actor.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketFromDomain(ticket)})
}

// Unassign POST /api/v1/:kind/:id/unassign.
func (h *TicketsHandler) Unassign(c *fiber.Ctx) error {
	kind, actor, err := h.requestContext(c)
	if err != nil {
		return err
	}
	ticket, err := h.assignments.Unassign(c.UserContext(), kind, c.Params("id"), actor.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketFromDomain(ticket)})
}

// SLA GET /api/v1/:kind/:id/sla.
func (h *TicketsHandler) SLA(c *fiber.Ctx) error {
	kind, _, err := h.requestContext(c)
	if err != nil {
		return err
	}
	ticket, err := h.tickets.Get(c.UserContext(), kind, c.Params("id"))
	if err != nil {
		return err
	}
	tracking, err := h.sla.TrackingFor(c.UserContext(), ticket, time.Now().UTC())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TrackingFromDomain(tracking)})
}

// History GET /api/v1/:kind/:id/history.
func (h *TicketsHandler) History(c *fiber.Ctx) error {
	kind, _, err := h.requestContext(c)
	if err != nil {
		return err
	}
	limit := parseInt(c.Query("page_size"), 50)
	page := parseInt(c.Query("page"), 1)
	entries, err := h.tickets.History(c.UserContext(), kind, c.Params("id"), limit, (page-1)*limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.HistoryFromDomain(entries)})
}

func (h *TicketsHandler) requestContext(c *fiber.Ctx) (domain.TicketKind, *auth.Actor, error) {
	kind, ok := kindSegments[c.Params("kind")]
	if !ok {
		return "", nil, apperrors.NewNotFound("ticket collection", map[string]any{"kind": c.Params("kind")})
	}
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return "", nil, apperrors.NewUnauthorized("authentication required")
	}
	return kind, actor, nil
}

func parseTicketListQuery(c *fiber.Ctx) service.TicketListFilter {
	filter := service.TicketListFilter{}
	if teamID := c.Query("team_id"); teamID != "" {
		filter.TeamID = &teamID
	}
	if assignee := c.Query("assigned_to"); assignee != "" {
		filter.AssignedTo = &assignee
	}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.TicketStatus(strings.TrimSpace(part)))
		}
	}
	if priorityStr := c.Query("priority"); priorityStr != "" {
		for _, part := range strings.Split(priorityStr, ",") {
			filter.Priorities = append(filter.Priorities, domain.TicketPriority(strings.TrimSpace(part)))
		}
	}
	if search := c.Query("search"); search != "" {
		filter.SearchTerm = &search
	}
	if from := parseTime(c.Query("created_from")); from != nil {
		filter.CreatedFrom = from
	}
	if to := parseTime(c.Query("created_to")); to != nil {
		filter.CreatedTo = to
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
