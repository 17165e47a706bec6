package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/domain"
	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/events"
	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/lifecycle"
	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/repository"
	apperrors "github.com/webopsway/orchestrate-msp-platform-hub-sub000/pkg/util"
)

// AssignmentService records and changes ticket assignees. Assignment is
// orthogonal to status: it never triggers transitions, but assigned_at feeds
// the SLA response clock.
type AssignmentService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	history    repository.TicketHistoryRepository
	dispatcher events.Dispatcher
}

// AssignmentDependencies bundles repositories.
type AssignmentDependencies struct {
	TicketRepo  repository.TicketRepository
	UserRepo    repository.UserRepository
	HistoryRepo repository.TicketHistoryRepository
	Dispatcher  events.Dispatcher
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	return &AssignmentService{
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		history:    deps.HistoryRepo,
		dispatcher: deps.Dispatcher,
	}
}

// Assign sets the ticket's assignee and stamps assigned_at. Reassigning to
// the current assignee is a no-op, so the response clock anchor cannot be
// refreshed by repeating the call.
func (s *AssignmentService) Assign(ctx context.Context, kind domain.TicketKind, ticketID, userID, actorID string) (*domain.Ticket, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, apperrors.MapError(err)
	}
	if !user.Active {
		return nil, apperrors.NewConflict("assignee inactive", map[string]any{"user_id": userID})
	}

	ticket, err := s.getTicket(ctx, kind, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.AssignedTo != nil && *ticket.AssignedTo == user.ID {
		return ticket, nil
	}

	oldAssignee := ticket.AssignedTo
	expected := ticket.UpdatedAt
	now := time.Now().UTC()
	ticket.AssignedTo = &user.ID
	ticket.AssignedAt = &now
	if err := s.persist(ctx, ticket, expected); err != nil {
		return nil, err
	}
	if err := s.recordAssigneeChange(ctx, actorID, ticket, oldAssignee); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishAssignmentEvent(ctx, events.EventTicketAssigned, actorID, ticket)
	return ticket, nil
}

// Unassign clears the assignee and assigned_at. Assignment history on closed
// tickets is immutable, so unassigning a terminal ticket is rejected.
func (s *AssignmentService) Unassign(ctx context.Context, kind domain.TicketKind, ticketID, actorID string) (*domain.Ticket, error) {
	table, ok := lifecycle.ForKind(kind)
	if !ok {
		return nil, apperrors.NewValidationError("unknown ticket kind", map[string]any{"kind": string(kind)})
	}
	ticket, err := s.getTicket(ctx, kind, ticketID)
	if err != nil {
		return nil, err
	}
	if table.IsTerminal(ticket.Status) {
		return nil, apperrors.NewConflict("cannot unassign a closed ticket", map[string]any{
			"ticket_id": ticket.ID,
			"status":    string(ticket.Status),
		})
	}
	if ticket.AssignedTo == nil {
		return ticket, nil
	}

	oldAssignee := ticket.AssignedTo
	expected := ticket.UpdatedAt
	ticket.AssignedTo = nil
	ticket.AssignedAt = nil
	if err := s.persist(ctx, ticket, expected); err != nil {
		return nil, err
	}
	if err := s.recordAssigneeChange(ctx, actorID, ticket, oldAssignee); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishAssignmentEvent(ctx, events.EventTicketUnassigned, actorID, ticket)
	return ticket, nil
}

func (s *AssignmentService) getTicket(ctx context.Context, kind domain.TicketKind, ticketID string) (*domain.Ticket, error) {
	if !kind.Valid() {
		return nil, apperrors.NewValidationError("unknown ticket kind", map[string]any{"kind": string(kind)})
	}
	ticket, err := s.tickets.GetByID(ctx, kind, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *AssignmentService) persist(ctx context.Context, ticket *domain.Ticket, expected time.Time) error {
	err := s.tickets.Update(ctx, ticket, expected)
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrStaleTicket) {
		return apperrors.NewConflict("ticket modified concurrently; reload and retry", map[string]any{"ticket_id": ticket.ID})
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticket.ID})
	}
	return apperrors.MapError(err)
}

func (s *AssignmentService) recordAssigneeChange(ctx context.Context, actorID string, ticket *domain.Ticket, oldAssignee *string) error {
	if s.history == nil {
		return nil
	}
	return s.history.Create(ctx, &domain.TicketHistory{
		TicketKind: ticket.Kind,
		TicketID:   ticket.ID,
		ActorID:    optionalID(actorID),
		ChangeType: domain.ChangeTypeAssignee,
		OldValue: map[string]any{
			"assigned_to": oldAssignee,
		},
		NewValue: map[string]any{
			"assigned_to": ticket.AssignedTo,
		},
	})
}

func (s *AssignmentService) publishAssignmentEvent(ctx context.Context, eventType events.EventType, actorID string, ticket *domain.Ticket) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		TicketKind: ticket.Kind,
		TicketID:   ticket.ID,
		ActorID:    actorID,
		Timestamp:  time.Now(),
		Payload: events.TicketAssignedPayload{
			AssignedTo: ticket.AssignedTo,
		},
	})
}
