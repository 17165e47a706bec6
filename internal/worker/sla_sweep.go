// Package worker hosts the optional SLA breach sweep. Health stays derived
// lazily on read; the sweep only exists so notification consumers hear about
// breaches without anyone loading the ticket.
package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/cache"
	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/config"
	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/domain"
	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/events"
	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/lifecycle"
	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/observability"
	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/repository"
	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/service"
)

const sweepBatchSize = 500

// SLASweeper periodically classifies open tickets and publishes a breach
// event the first time each clock is seen breached.
type SLASweeper struct {
	tickets    repository.TicketRepository
	teams      repository.TeamRepository
	slaService *service.SLAService
	dedup      *cache.PolicyCache
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	cfg        config.SweepConfig
	cron       *cron.Cron
}

// NewSLASweeper constructs the sweeper.
func NewSLASweeper(
	tickets repository.TicketRepository,
	teams repository.TeamRepository,
	slaService *service.SLAService,
	dedup *cache.PolicyCache,
	dispatcher events.Dispatcher,
	metrics *observability.Metrics,
	logger *zap.Logger,
	cfg config.SweepConfig,
) *SLASweeper {
	return &SLASweeper{
		tickets:    tickets,
		teams:      teams,
		slaService: slaService,
		dedup:      dedup,
		dispatcher: dispatcher,
		metrics:    metrics,
		logger:     logger,
		cfg:        cfg,
	}
}

// Start schedules the sweep. No-op when disabled.
func (w *SLASweeper) Start() error {
	if !w.cfg.Enabled {
		w.logger.Info("sla sweep disabled")
		return nil
	}
	w.cron = cron.New()
	if _, err := w.cron.AddFunc(w.cfg.Schedule, w.run); err != nil {
		return err
	}
	w.cron.Start()
	w.logger.Info("sla sweep scheduled", zap.String("schedule", w.cfg.Schedule))
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (w *SLASweeper) Stop() {
	if w.cron == nil {
		return
	}
	<-w.cron.Stop().Done()
}

func (w *SLASweeper) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	now := time.Now().UTC()
	examined := 0

	policies, err := w.slaService.ActivePolicies(ctx)
	if err != nil {
		w.logger.Error("sweep: load policies", zap.Error(err))
		return
	}
	teams, err := w.teams.ListActive(ctx)
	if err != nil {
		w.logger.Error("sweep: load teams", zap.Error(err))
		return
	}
	clientTypes := make(map[string]domain.ClientType, len(teams))
	for _, team := range teams {
		clientTypes[team.ID] = team.ClientType
	}

	for _, kind := range []domain.TicketKind{domain.KindIncident, domain.KindChangeRequest, domain.KindServiceRequest} {
		table, _ := lifecycle.ForKind(kind)
		var openStatuses []domain.TicketStatus
		for _, status := range table.Statuses() {
			if !table.IsTerminal(status) {
				openStatuses = append(openStatuses, status)
			}
		}
		tickets, err := w.tickets.ListWithFilter(ctx, kind, repository.TicketFilter{
			Statuses: openStatuses,
			Limit:    sweepBatchSize,
		})
		if err != nil {
			w.logger.Error("sweep: list tickets", zap.String("kind", string(kind)), zap.Error(err))
			continue
		}
		examined += len(tickets)
		for i := range tickets {
			w.checkTicket(ctx, &tickets[i], policies, clientTypes, now)
		}
	}

	w.metrics.RecordSweep(examined)
	w.logger.Debug("sla sweep complete", zap.Int("tickets", examined))
}

func (w *SLASweeper) checkTicket(ctx context.Context, ticket *domain.Ticket, policies []domain.SLAPolicy, clientTypes map[string]domain.ClientType, now time.Time) {
	clientType, ok := clientTypes[ticket.TeamID]
	if !ok {
		return
	}
	tracking := w.slaService.Tracking(ticket, policies, clientType, now)
	if tracking.Health != domain.HealthBreached {
		return
	}
	if tracking.BreachedResponse {
		w.publishBreach(ctx, ticket, tracking, "response", *tracking.ResponseDueAt)
	}
	if tracking.BreachedResolution {
		w.publishBreach(ctx, ticket, tracking, "resolution", *tracking.ResolutionDueAt)
	}
}

func (w *SLASweeper) publishBreach(ctx context.Context, ticket *domain.Ticket, tracking domain.SLATracking, clock string, dueAt time.Time) {
	if !w.dedup.MarkBreachNotified(ctx, ticket.Kind, ticket.ID, clock, w.cfg.DedupTTL()) {
		return
	}
	w.metrics.RecordSLABreach(string(ticket.Kind), clock)
	_ = w.dispatcher.Publish(ctx, events.Event{
		ID:         uuid.NewString(),
		Type:       events.EventSLABreached,
		TicketKind: ticket.Kind,
		TicketID:   ticket.ID,
		Timestamp:  time.Now(),
		Payload: events.SLABreachedPayload{
			PolicyID: derefString(tracking.PolicyID),
			Clock:    clock,
			DueAt:    dueAt,
			Health:   tracking.Health,
			Status:   ticket.Status,
		},
	})
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
