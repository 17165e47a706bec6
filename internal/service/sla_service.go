package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/cache"
	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/domain"
	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/lifecycle"
	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/repository"
	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/sla"
	apperrors "github.com/webopsway/orchestrate-msp-platform-hub-sub000/pkg/util"
)

// SLAService derives SLA tracking views for tickets. Health is recomputed
// from the ticket row on every read; nothing here is persisted.
type SLAService struct {
	policies   repository.SLAPolicyRepository
	teams      repository.TeamRepository
	cache      *cache.PolicyCache
	classifier sla.ClassifierConfig
}

// SLADependencies bundles collaborators.
type SLADependencies struct {
	PolicyRepo repository.SLAPolicyRepository
	TeamRepo   repository.TeamRepository
	Cache      *cache.PolicyCache
	Classifier sla.ClassifierConfig
}

// NewSLAService constructs the service.
func NewSLAService(deps SLADependencies) *SLAService {
	return &SLAService{
		policies:   deps.PolicyRepo,
		teams:      deps.TeamRepo,
		cache:      deps.Cache,
		classifier: deps.Classifier,
	}
}

// ActivePolicies returns the active policy set, read through the cache.
func (s *SLAService) ActivePolicies(ctx context.Context) ([]domain.SLAPolicy, error) {
	if cached, ok := s.cache.GetActive(ctx); ok {
		return cached, nil
	}
	policies, err := s.policies.ListActive(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	s.cache.SetActive(ctx, policies)
	return policies, nil
}

// TrackingFor renders the SLA tracking view for a ticket, resolving the
// client type from the ticket's owning team.
func (s *SLAService) TrackingFor(ctx context.Context, ticket *domain.Ticket, now time.Time) (domain.SLATracking, error) {
	team, err := s.teams.GetByID(ctx, ticket.TeamID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.SLATracking{}, apperrors.NewNotFound("team", map[string]any{"team_id": ticket.TeamID})
		}
		return domain.SLATracking{}, apperrors.MapError(err)
	}
	policies, err := s.ActivePolicies(ctx)
	if err != nil {
		return domain.SLATracking{}, err
	}
	return s.Tracking(ticket, policies, team.ClientType, now), nil
}

// Tracking computes the tracking view from already-loaded inputs. Pure given
// its arguments; the sweep reuses it to avoid per-ticket team lookups.
func (s *SLAService) Tracking(ticket *domain.Ticket, policies []domain.SLAPolicy, clientType domain.ClientType, now time.Time) domain.SLATracking {
	policy := sla.Resolve(policies, clientType, ticket.Priority)
	if policy == nil {
		return domain.SLATracking{Health: domain.HealthNotApplicable}
	}
	deadlines := sla.ComputeDeadlines(*policy, ticket.CreatedAt, ticket.AssignedAt)

	terminal := false
	if table, ok := lifecycle.ForKind(ticket.Kind); ok {
		terminal = table.IsTerminal(ticket.Status)
	}
	classification := sla.Classify(s.classifier, sla.Snapshot{
		CreatedAt:   ticket.CreatedAt,
		AssignedAt:  ticket.AssignedAt,
		CompletedAt: ticket.CompletedAt,
		Terminal:    terminal,
	}, &deadlines, now)

	return domain.SLATracking{
		PolicyID:           &policy.ID,
		ResponseDueAt:      &deadlines.ResponseDue,
		ResolutionDueAt:    &deadlines.ResolutionDue,
		EscalationDueAt:    &deadlines.EscalationDue,
		Health:             classification.Health,
		BreachedResponse:   classification.BreachedResponse,
		BreachedResolution: classification.BreachedResolution,
	}
}
