package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/cache"
	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/domain"
	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/repository"
	apperrors "github.com/webopsway/orchestrate-msp-platform-hub-sub000/pkg/util"
)

// PolicyService manages SLA policy administration. Policies are only ever
// soft-disabled; historical tracking keeps referencing them.
type PolicyService struct {
	policies repository.SLAPolicyRepository
	cache    *cache.PolicyCache
}

// NewPolicyService constructs the service.
func NewPolicyService(policies repository.SLAPolicyRepository, policyCache *cache.PolicyCache) *PolicyService {
	return &PolicyService{policies: policies, cache: policyCache}
}

// PolicyCreateInput describes a new policy.
type PolicyCreateInput struct {
	ClientType          domain.ClientType
	Priority            domain.TicketPriority
	ResponseTimeHours   int
	ResolutionTimeHours int
	EscalationTimeHours int
}

// PolicyPatch carries optional policy updates.
type PolicyPatch struct {
	ResponseTimeHours   *int
	ResolutionTimeHours *int
	EscalationTimeHours *int
	IsActive            *bool
}

// Create registers a new active policy.
func (s *PolicyService) Create(ctx context.Context, input PolicyCreateInput) (*domain.SLAPolicy, error) {
	if err := validatePolicyTarget(input.ClientType, input.Priority); err != nil {
		return nil, err
	}
	if err := validatePolicyHours(input.ResponseTimeHours, input.ResolutionTimeHours, input.EscalationTimeHours); err != nil {
		return nil, err
	}
	policy := &domain.SLAPolicy{
		ClientType:          input.ClientType,
		Priority:            input.Priority,
		ResponseTimeHours:   input.ResponseTimeHours,
		ResolutionTimeHours: input.ResolutionTimeHours,
		EscalationTimeHours: input.EscalationTimeHours,
		IsActive:            true,
	}
	if err := s.policies.Create(ctx, policy); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.cache.Invalidate(ctx)
	return policy, nil
}

// Update applies a patch to an existing policy.
func (s *PolicyService) Update(ctx context.Context, id string, patch PolicyPatch) (*domain.SLAPolicy, error) {
	policy, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.ResponseTimeHours != nil {
		policy.ResponseTimeHours = *patch.ResponseTimeHours
	}
	if patch.ResolutionTimeHours != nil {
		policy.ResolutionTimeHours = *patch.ResolutionTimeHours
	}
	if patch.EscalationTimeHours != nil {
		policy.EscalationTimeHours = *patch.EscalationTimeHours
	}
	if patch.IsActive != nil {
		policy.IsActive = *patch.IsActive
	}
	if err := validatePolicyHours(policy.ResponseTimeHours, policy.ResolutionTimeHours, policy.EscalationTimeHours); err != nil {
		return nil, err
	}
	if err := s.policies.Update(ctx, policy); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.cache.Invalidate(ctx)
	return policy, nil
}

// Deactivate soft-disables a policy.
func (s *PolicyService) Deactivate(ctx context.Context, id string) (*domain.SLAPolicy, error) {
	inactive := false
	return s.Update(ctx, id, PolicyPatch{IsActive: &inactive})
}

// Get fetches a single policy.
func (s *PolicyService) Get(ctx context.Context, id string) (*domain.SLAPolicy, error) {
	policy, err := s.policies.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("sla policy", map[string]any{"policy_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return policy, nil
}

// List returns all policies, active or not.
func (s *PolicyService) List(ctx context.Context) ([]domain.SLAPolicy, error) {
	policies, err := s.policies.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return policies, nil
}

func validatePolicyTarget(clientType domain.ClientType, priority domain.TicketPriority) error {
	if !clientType.Valid() {
		return apperrors.NewValidationError("unknown client type", map[string]any{"client_type": string(clientType)})
	}
	if !priority.Valid() {
		return apperrors.NewValidationError("unknown priority", map[string]any{"priority": string(priority)})
	}
	return nil
}

func validatePolicyHours(response, resolution, escalation int) error {
	// Inverted clocks (response > resolution) are legal admin configuration;
	// only non-positive targets are rejected.
	if response <= 0 || resolution <= 0 || escalation <= 0 {
		return apperrors.NewValidationError("time targets must be positive hours", map[string]any{
			"response_time_hours":   response,
			"resolution_time_hours": resolution,
			"escalation_time_hours": escalation,
		})
	}
	return nil
}
