package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/api/dto"
	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/service"
	apperrors "github.com/webopsway/orchestrate-msp-platform-hub-sub000/pkg/util"
)

// SLAPoliciesHandler serves policy administration endpoints.
type SLAPoliciesHandler struct {
	policies *service.PolicyService
}

// NewSLAPoliciesHandler constructs handler.
func NewSLAPoliciesHandler(policies *service.PolicyService) *SLAPoliciesHandler {
	return &SLAPoliciesHandler{policies: policies}
}

// Create POST /api/v1/sla-policies.
func (h *SLAPoliciesHandler) Create(c *fiber.Ctx) error {
	var req dto.CreatePolicyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	policy, err := h.policies.Create(c.UserContext(), service.PolicyCreateInput{
		ClientType:          req.ClientType,
		Priority:            req.Priority,
		ResponseTimeHours:   req.ResponseTimeHours,
		ResolutionTimeHours: req.ResolutionTimeHours,
		EscalationTimeHours: req.EscalationTimeHours,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.PolicyFromDomain(policy)})
}

// List GET /api/v1/sla-policies.
func (h *SLAPoliciesHandler) List(c *fiber.Ctx) error {
	policies, err := h.policies.List(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.PolicyResponse, 0, len(policies))
	for i := range policies {
		items = append(items, dto.PolicyFromDomain(&policies[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /api/v1/sla-policies/:id.
func (h *SLAPoliciesHandler) Get(c *fiber.Ctx) error {
	policy, err := h.policies.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.PolicyFromDomain(policy)})
}

// Update PATCH /api/v1/sla-policies/:id.
func (h *SLAPoliciesHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdatePolicyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	policy, err := h.policies.Update(c.UserContext(), c.Params("id"), service.PolicyPatch{
		ResponseTimeHours:   req.ResponseTimeHours,
		ResolutionTimeHours: req.ResolutionTimeHours,
		EscalationTimeHours: req.EscalationTimeHours,
		IsActive:            req.IsActive,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.PolicyFromDomain(policy)})
}

// Deactivate DELETE /api/v1/sla-policies/:id. Policies are soft-disabled,
// never removed.
func (h *SLAPoliciesHandler) Deactivate(c *fiber.Ctx) error {
	policy, err := h.policies.Deactivate(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.PolicyFromDomain(policy)})
}
