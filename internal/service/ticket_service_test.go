package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/domain"
	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/events"
	apperrors "github.com/webopsway/orchestrate-msp-platform-hub-sub000/pkg/util"
)

func newTicketServiceForTest(t *testing.T) (*TicketService, *fakeTicketRepo, *fakeHistoryRepo, *recordingDispatcher) {
	t.Helper()
	tickets := newFakeTicketRepo()
	history := &fakeHistoryRepo{}
	dispatcher := &recordingDispatcher{}
	teams := newFakeTeamRepo(
		&domain.Team{ID: "team-1", OrganizationID: "org-1", Name: "NOC", ClientType: domain.ClientTypeDirect, IsActive: true},
		&domain.Team{ID: "team-frozen", OrganizationID: "org-1", Name: "Archived", ClientType: domain.ClientTypeDirect, IsActive: false},
	)
	svc := NewTicketService(TicketDependencies{
		TicketRepo:  tickets,
		TeamRepo:    teams,
		HistoryRepo: history,
		Dispatcher:  dispatcher,
	})
	return svc, tickets, history, dispatcher
}

func TestCreateTicketDefaults(t *testing.T) {
	svc, _, _, dispatcher := newTicketServiceForTest(t)

	ticket, err := svc.Create(context.Background(), domain.KindIncident, "actor-1", TicketCreateInput{
		TeamID: "team-1",
		Title:  "  router down  ",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusOpen, ticket.Status)
	assert.Equal(t, domain.PriorityMedium, ticket.Priority)
	assert.Equal(t, "router down", ticket.Title)
	assert.True(t, strings.HasPrefix(ticket.ExternalKey, "INC-"))
	assert.Nil(t, ticket.CompletedAt)
	assert.Len(t, dispatcher.published(events.EventTicketCreated), 1)
}

func TestCreateTicketInitialStatusPerKind(t *testing.T) {
	svc, _, _, _ := newTicketServiceForTest(t)

	change, err := svc.Create(context.Background(), domain.KindChangeRequest, "actor-1", TicketCreateInput{TeamID: "team-1", Title: "patch window"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDraft, change.Status)
	assert.True(t, strings.HasPrefix(change.ExternalKey, "CHG-"))

	request, err := svc.Create(context.Background(), domain.KindServiceRequest, "actor-1", TicketCreateInput{TeamID: "team-1", Title: "new laptop"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOpen, request.Status)
	assert.True(t, strings.HasPrefix(request.ExternalKey, "SRQ-"))
}

func TestCreateTicketRejectsInactiveTeam(t *testing.T) {
	svc, _, _, _ := newTicketServiceForTest(t)

	_, err := svc.Create(context.Background(), domain.KindIncident, "actor-1", TicketCreateInput{TeamID: "team-frozen", Title: "x"})
	requireDomainCode(t, err, "CONFLICT")
}

func TestCreateTicketRejectsUnknownKind(t *testing.T) {
	svc, _, _, _ := newTicketServiceForTest(t)

	_, err := svc.Create(context.Background(), domain.TicketKind("task"), "actor-1", TicketCreateInput{TeamID: "team-1", Title: "x"})
	requireDomainCode(t, err, "VALIDATION_FAILED")
}

func TestTransitionStampsTerminalTimestampAndHistory(t *testing.T) {
	svc, _, history, dispatcher := newTicketServiceForTest(t)
	ticket := mustCreateIncident(t, svc)

	ticket, err := svc.Transition(context.Background(), domain.KindIncident, ticket.ID, domain.StatusResolved, "actor-1", "fixed")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusResolved, ticket.Status)
	require.NotNil(t, ticket.CompletedAt)
	require.Len(t, history.entries, 1)
	assert.Equal(t, domain.ChangeTypeStatus, history.entries[0].ChangeType)
	assert.Len(t, dispatcher.published(events.EventTicketStatusChanged), 1)
}

func TestTransitionTerminalRepeatIsNoOp(t *testing.T) {
	svc, _, history, dispatcher := newTicketServiceForTest(t)
	ticket := mustCreateIncident(t, svc)

	first, err := svc.Transition(context.Background(), domain.KindIncident, ticket.ID, domain.StatusResolved, "actor-1", "")
	require.NoError(t, err)
	require.NotNil(t, first.CompletedAt)

	second, err := svc.Transition(context.Background(), domain.KindIncident, ticket.ID, domain.StatusResolved, "actor-2", "")
	require.NoError(t, err)

	assert.True(t, second.CompletedAt.Equal(*first.CompletedAt))
	assert.Equal(t, first.UpdatedAt, second.UpdatedAt)
	assert.Len(t, history.entries, 1)
	assert.Len(t, dispatcher.published(events.EventTicketStatusChanged), 1)
}

func TestTransitionIllegalEdgeRejected(t *testing.T) {
	svc, _, _, _ := newTicketServiceForTest(t)
	ticket := mustCreateIncident(t, svc)

	_, err := svc.Transition(context.Background(), domain.KindIncident, ticket.ID, domain.StatusImplemented, "actor-1", "")
	requireDomainCode(t, err, "VALIDATION_FAILED")

	first, err := svc.Transition(context.Background(), domain.KindIncident, ticket.ID, domain.StatusClosed, "actor-1", "")
	require.NoError(t, err)
	_, err = svc.Transition(context.Background(), domain.KindIncident, first.ID, domain.StatusInProgress, "actor-1", "")
	requireDomainCode(t, err, "INVALID_TRANSITION")
}

func TestTransitionConcurrentModificationConflicts(t *testing.T) {
	tickets := newFakeTicketRepo()
	teams := newFakeTeamRepo(&domain.Team{ID: "team-1", ClientType: domain.ClientTypeDirect, IsActive: true})
	svc := NewTicketService(TicketDependencies{
		TicketRepo: &staleReadTicketRepo{fakeTicketRepo: tickets},
		TeamRepo:   teams,
	})
	ticket := mustCreateIncident(t, svc)

	_, err := svc.Transition(context.Background(), domain.KindIncident, ticket.ID, domain.StatusInProgress, "actor-1", "")
	requireDomainCode(t, err, "CONFLICT")
}

func TestUpdatePriorityNoOpWhenUnchanged(t *testing.T) {
	svc, _, history, dispatcher := newTicketServiceForTest(t)
	ticket := mustCreateIncident(t, svc)

	updated, err := svc.UpdatePriority(context.Background(), domain.KindIncident, ticket.ID, domain.PriorityMedium, "actor-1")
	require.NoError(t, err)
	assert.Equal(t, ticket.UpdatedAt, updated.UpdatedAt)
	assert.Empty(t, history.entries)
	assert.Empty(t, dispatcher.published(events.EventTicketPriorityChanged))

	updated, err = svc.UpdatePriority(context.Background(), domain.KindIncident, ticket.ID, domain.PriorityCritical, "actor-1")
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityCritical, updated.Priority)
	assert.Len(t, history.entries, 1)
	assert.Len(t, dispatcher.published(events.EventTicketPriorityChanged), 1)
}

func TestGetUnknownTicketNotFound(t *testing.T) {
	svc, _, _, _ := newTicketServiceForTest(t)

	_, err := svc.Get(context.Background(), domain.KindIncident, "missing")
	requireDomainCode(t, err, "NOT_FOUND")
}

func mustCreateIncident(t *testing.T, svc *TicketService) *domain.Ticket {
	t.Helper()
	ticket, err := svc.Create(context.Background(), domain.KindIncident, "actor-1", TicketCreateInput{
		TeamID: "team-1",
		Title:  "incident",
	})
	require.NoError(t, err)
	return ticket
}

func requireDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr), "expected DomainError, got %v", err)
	assert.Equal(t, code, domainErr.Code)
}
