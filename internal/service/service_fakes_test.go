package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/domain"
	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/events"
	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/repository"
)

// In-memory fakes mirroring repository contracts, including the optimistic
// concurrency behavior of the ticket store.

type fakeTicketRepo struct {
	mu      sync.Mutex
	tickets map[string]*domain.Ticket
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: map[string]*domain.Ticket{}}
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	ticket.ID = uuid.NewString()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	clone := *ticket
	r.tickets[ticket.ID] = &clone
	return nil
}

func (r *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket, expectedUpdatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.tickets[ticket.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if !stored.UpdatedAt.Equal(expectedUpdatedAt) {
		return repository.ErrStaleTicket
	}
	ticket.UpdatedAt = time.Now().UTC().Add(time.Millisecond)
	clone := *ticket
	r.tickets[ticket.ID] = &clone
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, kind domain.TicketKind, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.tickets[id]
	if !ok || stored.Kind != kind {
		return nil, pgx.ErrNoRows
	}
	clone := *stored
	return &clone, nil
}

func (r *fakeTicketRepo) ListWithFilter(_ context.Context, kind domain.TicketKind, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Ticket
	for _, stored := range r.tickets {
		if stored.Kind != kind {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, stored.Status) {
			continue
		}
		out = append(out, *stored)
	}
	return out, nil
}

// staleReadTicketRepo serves reads with an outdated updated_at, so every
// optimistic update looks like it lost a race.
type staleReadTicketRepo struct {
	*fakeTicketRepo
}

func (r *staleReadTicketRepo) GetByID(ctx context.Context, kind domain.TicketKind, id string) (*domain.Ticket, error) {
	ticket, err := r.fakeTicketRepo.GetByID(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	ticket.UpdatedAt = ticket.UpdatedAt.Add(-time.Minute)
	return ticket, nil
}

func containsStatus(statuses []domain.TicketStatus, status domain.TicketStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

type fakeTeamRepo struct {
	teams map[string]*domain.Team
}

func newFakeTeamRepo(teams ...*domain.Team) *fakeTeamRepo {
	repo := &fakeTeamRepo{teams: map[string]*domain.Team{}}
	for _, team := range teams {
		repo.teams[team.ID] = team
	}
	return repo
}

func (r *fakeTeamRepo) GetByID(_ context.Context, id string) (*domain.Team, error) {
	team, ok := r.teams[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return team, nil
}

func (r *fakeTeamRepo) ListActive(_ context.Context) ([]domain.Team, error) {
	var out []domain.Team
	for _, team := range r.teams {
		if team.IsActive {
			out = append(out, *team)
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	users map[string]*domain.User
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: map[string]*domain.User{}}
	for _, user := range users {
		repo.users[user.ID] = user
	}
	return repo
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

type fakeHistoryRepo struct {
	mu      sync.Mutex
	entries []domain.TicketHistory
}

func (r *fakeHistoryRepo) Create(_ context.Context, entry *domain.TicketHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry.ID = uuid.NewString()
	entry.CreatedAt = time.Now().UTC()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeHistoryRepo) ListByTicket(_ context.Context, kind domain.TicketKind, ticketID string, _, _ int) ([]domain.TicketHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.TicketHistory
	for _, entry := range r.entries {
		if entry.TicketKind == kind && entry.TicketID == ticketID {
			out = append(out, entry)
		}
	}
	return out, nil
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) published(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []events.Event
	for _, event := range d.events {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}
