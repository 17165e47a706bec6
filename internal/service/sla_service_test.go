package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/domain"
	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/sla"
)

type fakePolicyRepo struct {
	policies []domain.SLAPolicy
	active   []domain.SLAPolicy
	calls    int
}

func (r *fakePolicyRepo) Create(context.Context, *domain.SLAPolicy) error { return nil }
func (r *fakePolicyRepo) Update(context.Context, *domain.SLAPolicy) error { return nil }
func (r *fakePolicyRepo) GetByID(context.Context, string) (*domain.SLAPolicy, error) {
	return nil, nil
}
func (r *fakePolicyRepo) List(context.Context) ([]domain.SLAPolicy, error) {
	return r.policies, nil
}
func (r *fakePolicyRepo) ListActive(context.Context) ([]domain.SLAPolicy, error) {
	r.calls++
	return r.active, nil
}

func newSLAServiceForTest(active []domain.SLAPolicy) (*SLAService, *fakePolicyRepo) {
	policyRepo := &fakePolicyRepo{active: active}
	teams := newFakeTeamRepo(&domain.Team{ID: "team-1", ClientType: domain.ClientTypeDirect, IsActive: true})
	svc := NewSLAService(SLADependencies{
		PolicyRepo: policyRepo,
		TeamRepo:   teams,
		Classifier: sla.ClassifierConfig{WarningFraction: 0.2},
	})
	return svc, policyRepo
}

func TestTrackingForResolvesPolicyThroughTeam(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc, _ := newSLAServiceForTest([]domain.SLAPolicy{{
		ID:                  "pol-1",
		ClientType:          domain.ClientTypeDirect,
		Priority:            domain.PriorityHigh,
		ResponseTimeHours:   1,
		ResolutionTimeHours: 4,
		EscalationTimeHours: 2,
		IsActive:            true,
	}})

	ticket := &domain.Ticket{
		Kind:      domain.KindIncident,
		TeamID:    "team-1",
		Status:    domain.StatusOpen,
		Priority:  domain.PriorityHigh,
		CreatedAt: now.Add(-30 * time.Minute),
	}
	tracking, err := svc.TrackingFor(context.Background(), ticket, now)
	require.NoError(t, err)

	require.NotNil(t, tracking.PolicyID)
	assert.Equal(t, "pol-1", *tracking.PolicyID)
	assert.Equal(t, domain.HealthOnTrack, tracking.Health)
	require.NotNil(t, tracking.ResponseDueAt)
	assert.Equal(t, ticket.CreatedAt.Add(time.Hour), *tracking.ResponseDueAt)
}

func TestTrackingWithoutMatchingPolicyIsNotApplicable(t *testing.T) {
	svc, _ := newSLAServiceForTest(nil)

	ticket := &domain.Ticket{
		Kind:      domain.KindIncident,
		TeamID:    "team-1",
		Status:    domain.StatusOpen,
		Priority:  domain.PriorityLow,
		CreatedAt: time.Now().Add(-48 * time.Hour),
	}
	tracking, err := svc.TrackingFor(context.Background(), ticket, time.Now())
	require.NoError(t, err)

	assert.Equal(t, domain.HealthNotApplicable, tracking.Health)
	assert.Nil(t, tracking.PolicyID)
	assert.Nil(t, tracking.ResponseDueAt)
	assert.False(t, tracking.BreachedResponse)
	assert.False(t, tracking.BreachedResolution)
}

func TestTrackingForUnknownTeamFails(t *testing.T) {
	svc, _ := newSLAServiceForTest(nil)

	ticket := &domain.Ticket{Kind: domain.KindIncident, TeamID: "team-404", Status: domain.StatusOpen}
	_, err := svc.TrackingFor(context.Background(), ticket, time.Now())
	requireDomainCode(t, err, "NOT_FOUND")
}

func TestActivePoliciesHitsStoreWithoutCache(t *testing.T) {
	svc, policyRepo := newSLAServiceForTest([]domain.SLAPolicy{{ID: "pol-1", IsActive: true}})

	_, err := svc.ActivePolicies(context.Background())
	require.NoError(t, err)
	_, err = svc.ActivePolicies(context.Background())
	require.NoError(t, err)

	// No redis configured: every read goes to the store.
	assert.Equal(t, 2, policyRepo.calls)
}
