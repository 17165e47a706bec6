package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/events"
)

// NotificationService logs domain events. Actual notification transport
// (mail, chat, webhooks) is owned by the platform's notification stack,
// which subscribes to the same dispatcher.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger) *NotificationService {
	return &NotificationService{dispatcher: dispatcher, logger: logger}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.logEvent)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.logEvent)
	n.dispatcher.Subscribe(events.EventTicketPriorityChanged, n.logEvent)
	n.dispatcher.Subscribe(events.EventTicketAssigned, n.logEvent)
	n.dispatcher.Subscribe(events.EventTicketUnassigned, n.logEvent)
	n.dispatcher.Subscribe(events.EventSLABreached, n.logBreach)
}

func (n *NotificationService) logEvent(ctx context.Context, event events.Event) error {
	n.logger.Info(string(event.Type),
		zap.String("ticket_kind", string(event.TicketKind)),
		zap.String("ticket_id", event.TicketID),
		zap.String("actor_id", event.ActorID),
		zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) logBreach(ctx context.Context, event events.Event) error {
	n.logger.Warn(string(event.Type),
		zap.String("ticket_kind", string(event.TicketKind)),
		zap.String("ticket_id", event.TicketID),
		zap.Any("payload", event.Payload))
	return nil
}
