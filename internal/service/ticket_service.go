package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/domain"
	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/events"
	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/lifecycle"
	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/repository"
	apperrors "github.com/webopsway/orchestrate-msp-platform-hub-sub000/pkg/util"
)

// TicketService coordinates ticket workflows across the three kinds.
type TicketService struct {
	tickets    repository.TicketRepository
	teams      repository.TeamRepository
	history    repository.TicketHistoryRepository
	dispatcher events.Dispatcher
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	TeamRepo    repository.TeamRepository
	HistoryRepo repository.TicketHistoryRepository
	Dispatcher  events.Dispatcher
}

// TicketCreateInput describes ticket creation payload. TeamID is always
// explicit; there is no ambient team context.
type TicketCreateInput struct {
	TeamID      string
	Title       string
	Description string
	Priority    domain.TicketPriority
	Metadata    map[string]string
}

// TicketListFilter describes listing filters.
type TicketListFilter struct {
	TeamID      *string
	AssignedTo  *string
	Statuses    []domain.TicketStatus
	Priorities  []domain.TicketPriority
	SearchTerm  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		teams:      deps.TeamRepo,
		history:    deps.HistoryRepo,
		dispatcher: deps.Dispatcher,
	}
}

// Create opens a new ticket in the kind's initial status.
func (s *TicketService) Create(ctx context.Context, kind domain.TicketKind, actorID string, input TicketCreateInput) (*domain.Ticket, error) {
	table, ok := lifecycle.ForKind(kind)
	if !ok {
		return nil, apperrors.NewValidationError("unknown ticket kind", map[string]any{"kind": string(kind)})
	}
	if input.Priority != "" && !input.Priority.Valid() {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": string(input.Priority)})
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperrors.NewValidationError("title required", nil)
	}

	team, err := s.teams.GetByID(ctx, input.TeamID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("team", map[string]any{"team_id": input.TeamID})
		}
		return nil, apperrors.MapError(err)
	}
	if !team.IsActive {
		return nil, apperrors.NewConflict("team inactive", map[string]any{"team_id": team.ID})
	}

	ticket := &domain.Ticket{
		Kind:        kind,
		ExternalKey: generateTicketKey(kind),
		TeamID:      team.ID,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Status:      table.Initial,
		Priority:    input.Priority,
		Metadata:    input.Metadata,
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.PriorityMedium
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:       events.EventTicketCreated,
		TicketKind: kind,
		TicketID:   ticket.ID,
		ActorID:    actorID,
		Payload: events.TicketCreatedPayload{
			TeamID:   ticket.TeamID,
			Priority: ticket.Priority,
			Title:    ticket.Title,
		},
	})
	return ticket, nil
}

// Get fetches a ticket by kind and id.
func (s *TicketService) Get(ctx context.Context, kind domain.TicketKind, id string) (*domain.Ticket, error) {
	if !kind.Valid() {
		return nil, apperrors.NewValidationError("unknown ticket kind", map[string]any{"kind": string(kind)})
	}
	ticket, err := s.tickets.GetByID(ctx, kind, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// List returns tickets of a kind matching the filter.
func (s *TicketService) List(ctx context.Context, kind domain.TicketKind, filter TicketListFilter) ([]domain.Ticket, error) {
	if !kind.Valid() {
		return nil, apperrors.NewValidationError("unknown ticket kind", map[string]any{"kind": string(kind)})
	}
	repoFilter := repository.TicketFilter{
		TeamID:      filter.TeamID,
		AssignedTo:  filter.AssignedTo,
		Statuses:    filter.Statuses,
		Priorities:  filter.Priorities,
		SearchTerm:  filter.SearchTerm,
		CreatedFrom: filter.CreatedFrom,
		CreatedTo:   filter.CreatedTo,
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	}
	tickets, err := s.tickets.ListWithFilter(ctx, kind, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// Transition moves a ticket to the target status, stamping the terminal
// timestamp when entering a terminal state. Concurrent modifications fail
// with CONFLICT; the caller should reload and retry once.
func (s *TicketService) Transition(ctx context.Context, kind domain.TicketKind, id string, target domain.TicketStatus, actorID, comment string) (*domain.Ticket, error) {
	table, ok := lifecycle.ForKind(kind)
	if !ok {
		return nil, apperrors.NewValidationError("unknown ticket kind", map[string]any{"kind": string(kind)})
	}
	ticket, err := s.Get(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	// Re-entering the current terminal state is an accepted no-op; nothing
	// is persisted so the terminal timestamp cannot move.
	if ticket.Status == target && table.IsTerminal(target) {
		return ticket, nil
	}

	oldStatus := ticket.Status
	expected := ticket.UpdatedAt
	if err := table.Apply(ticket, target, time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := s.persist(ctx, ticket, expected); err != nil {
		return nil, err
	}
	if err := s.recordStatusChange(ctx, actorID, ticket, oldStatus, comment); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:       events.EventTicketStatusChanged,
		TicketKind: kind,
		TicketID:   ticket.ID,
		ActorID:    actorID,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: ticket.Status,
			Comment:   comment,
		},
	})
	return ticket, nil
}

// UpdatePriority changes ticket priority.
func (s *TicketService) UpdatePriority(ctx context.Context, kind domain.TicketKind, id string, newPriority domain.TicketPriority, actorID string) (*domain.Ticket, error) {
	if !newPriority.Valid() {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": string(newPriority)})
	}
	ticket, err := s.Get(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if ticket.Priority == newPriority {
		return ticket, nil
	}
	oldPriority := ticket.Priority
	expected := ticket.UpdatedAt
	ticket.Priority = newPriority
	if err := s.persist(ctx, ticket, expected); err != nil {
		return nil, err
	}
	if err := s.recordPriorityChange(ctx, actorID, ticket, oldPriority); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:       events.EventTicketPriorityChanged,
		TicketKind: kind,
		TicketID:   ticket.ID,
		ActorID:    actorID,
		Payload: events.TicketPriorityChangedPayload{
			OldPriority: oldPriority,
			NewPriority: newPriority,
		},
	})
	return ticket, nil
}

// History lists audit entries for a ticket.
func (s *TicketService) History(ctx context.Context, kind domain.TicketKind, id string, limit, offset int) ([]domain.TicketHistory, error) {
	if _, err := s.Get(ctx, kind, id); err != nil {
		return nil, err
	}
	if s.history == nil {
		return []domain.TicketHistory{}, nil
	}
	entries, err := s.history.ListByTicket(ctx, kind, id, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

func (s *TicketService) persist(ctx context.Context, ticket *domain.Ticket, expected time.Time) error {
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

var kindKeyPrefixes = map[domain.TicketKind]string{
	domain.KindIncident:       "INC",
	domain.KindChangeRequest:  "CHG",
	domain.KindServiceRequest: "SRQ",
}

func generateTicketKey(kind domain.TicketKind) string {
	return kindKeyPrefixes[kind] + "-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func (s *TicketService) recordStatusChange(ctx context.Context, actorID string, ticket *domain.Ticket, oldStatus domain.TicketStatus, comment string) error {
	if s.history == nil {
		return nil
	}
	entry := &domain.TicketHistory{
		TicketKind: ticket.Kind,
		TicketID:   ticket.ID,
		ActorID:    optionalID(actorID),
		ChangeType: domain.ChangeTypeStatus,
		OldValue: map[string]any{
			"status": oldStatus,
		},
		NewValue: map[string]any{
			"status":  ticket.Status,
			"comment": comment,
		},
	}
	return s.history.Create(ctx, entry)
}

func (s *TicketService) recordPriorityChange(ctx context.Context, actorID string, ticket *domain.Ticket, oldPriority domain.TicketPriority) error {
	if s.history == nil {
		return nil
	}
	entry := &domain.TicketHistory{
		TicketKind: ticket.Kind,
		TicketID:   ticket.ID,
		ActorID:    optionalID(actorID),
		ChangeType: domain.ChangeTypePriority,
		OldValue: map[string]any{
			"priority": oldPriority,
		},
		NewValue: map[string]any{
			"priority": ticket.Priority,
		},
	}
	return s.history.Create(ctx, entry)
}

func optionalID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
