package lifecycle

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/domain"
	apperrors "github.com/webopsway/orchestrate-msp-platform-hub-sub000/pkg/util"
)

var transitionTime = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func newTicket(kind domain.TicketKind, status domain.TicketStatus) *domain.Ticket {
	return &domain.Ticket{
		ID:        "t-1",
		Kind:      kind,
		Status:    status,
		Priority:  domain.PriorityMedium,
		CreatedAt: transitionTime.Add(-time.Hour),
	}
}

func domainCode(t *testing.T, err error) string {
	t.Helper()
	var de *apperrors.DomainError
	require.True(t, errors.As(err, &de))
	return de.Code
}

func TestForKind(t *testing.T) {
	for _, kind := range []domain.TicketKind{domain.KindIncident, domain.KindChangeRequest, domain.KindServiceRequest} {
		_, ok := ForKind(kind)
		assert.True(t, ok, string(kind))
	}
	_, ok := ForKind(domain.TicketKind("problem"))
	assert.False(t, ok)
}

func TestIncidentHappyPath(t *testing.T) {
	table, _ := ForKind(domain.KindIncident)
	ticket := newTicket(domain.KindIncident, domain.StatusOpen)

	require.NoError(t, table.Apply(ticket, domain.StatusInProgress, transitionTime))
	assert.Nil(t, ticket.CompletedAt)

	require.NoError(t, table.Apply(ticket, domain.StatusResolved, transitionTime))
	require.NotNil(t, ticket.CompletedAt)
	assert.Equal(t, transitionTime, *ticket.CompletedAt)

	later := transitionTime.Add(time.Hour)
	require.NoError(t, table.Apply(ticket, domain.StatusClosed, later))
	assert.Equal(t, domain.StatusClosed, ticket.Status)
	// Closing a resolved incident keeps the original resolution stamp.
	assert.Equal(t, transitionTime, *ticket.CompletedAt)
}

func TestChangeRequestCannotSkipApproval(t *testing.T) {
	table, _ := ForKind(domain.KindChangeRequest)
	ticket := newTicket(domain.KindChangeRequest, domain.StatusDraft)

	err := table.Apply(ticket, domain.StatusImplemented, transitionTime)
	require.Error(t, err)
	assert.Equal(t, "INVALID_TRANSITION", domainCode(t, err))
	assert.Equal(t, domain.StatusDraft, ticket.Status)
	assert.Nil(t, ticket.CompletedAt)

	require.NoError(t, table.Apply(ticket, domain.StatusPendingApproval, transitionTime))
	assert.Equal(t, domain.StatusPendingApproval, ticket.Status)
}

func TestChangeRequestTerminalStates(t *testing.T) {
	table, _ := ForKind(domain.KindChangeRequest)
	for _, target := range []domain.TicketStatus{domain.StatusImplemented, domain.StatusFailed} {
		ticket := newTicket(domain.KindChangeRequest, domain.StatusApproved)
		require.NoError(t, table.Apply(ticket, target, transitionTime))
		require.NotNil(t, ticket.CompletedAt)
	}

	rejected := newTicket(domain.KindChangeRequest, domain.StatusPendingApproval)
	require.NoError(t, table.Apply(rejected, domain.StatusRejected, transitionTime))
	require.NotNil(t, rejected.CompletedAt)
}

func TestTerminalTimestampIsImmutable(t *testing.T) {
	table, _ := ForKind(domain.KindServiceRequest)
	ticket := newTicket(domain.KindServiceRequest, domain.StatusInProgress)

	require.NoError(t, table.Apply(ticket, domain.StatusResolved, transitionTime))
	require.NotNil(t, ticket.CompletedAt)

	// Re-resolving is accepted but never moves the stamp.
	require.NoError(t, table.Apply(ticket, domain.StatusResolved, transitionTime.Add(time.Hour)))
	assert.Equal(t, transitionTime, *ticket.CompletedAt)
}

func TestNoEscapeFromTerminalStates(t *testing.T) {
	table, _ := ForKind(domain.KindServiceRequest)
	for _, terminal := range []domain.TicketStatus{domain.StatusResolved, domain.StatusClosed, domain.StatusCancelled} {
		ticket := newTicket(domain.KindServiceRequest, terminal)
		err := table.Apply(ticket, domain.StatusInProgress, transitionTime)
		require.Error(t, err, string(terminal))
		assert.Equal(t, "INVALID_TRANSITION", domainCode(t, err))
	}
}

func TestUnknownStatusRejectedAtBoundary(t *testing.T) {
	table, _ := ForKind(domain.KindIncident)
	ticket := newTicket(domain.KindIncident, domain.StatusOpen)

	err := table.Apply(ticket, domain.StatusPendingApproval, transitionTime)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))
}

// Every (status, target) pair either transitions or fails with
// INVALID_TRANSITION; nothing is silently coerced.
func TestTransitionTableCompleteness(t *testing.T) {
	for _, kind := range []domain.TicketKind{domain.KindIncident, domain.KindChangeRequest, domain.KindServiceRequest} {
		table, _ := ForKind(kind)
		statuses := table.Statuses()
		for _, from := range statuses {
			for _, to := range statuses {
				ticket := newTicket(kind, from)
				if table.Terminal[from] {
					stamp := transitionTime.Add(-time.Minute)
					ticket.CompletedAt = &stamp
				}
				err := table.Apply(ticket, to, transitionTime)
				if table.CanTransition(from, to) {
					require.NoError(t, err, "%s: %s -> %s", kind, from, to)
					assert.Equal(t, to, ticket.Status)
					if table.Terminal[to] {
						assert.NotNil(t, ticket.CompletedAt)
					}
				} else {
					require.Error(t, err, "%s: %s -> %s", kind, from, to)
					assert.Equal(t, "INVALID_TRANSITION", domainCode(t, err))
					assert.Equal(t, from, ticket.Status, "rejected transition must not mutate")
				}
			}
		}
	}
}
