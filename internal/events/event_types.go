package events

import (
	"time"

	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated         EventType = "ticket_created"
	EventTicketStatusChanged   EventType = "ticket_status_changed"
	EventTicketPriorityChanged EventType = "ticket_priority_changed"
	EventTicketAssigned        EventType = "ticket_assigned"
	EventTicketUnassigned      EventType = "ticket_unassigned"
	EventSLABreached           EventType = "sla_breached"
)

// Event represents a domain event emitted by services. ActorID is empty for
// system-initiated events such as sweep-detected breaches.
type Event struct {
	ID         string            `json:"id"`
	Type       EventType         `json:"type"`
	TicketKind domain.TicketKind `json:"ticket_kind"`
	TicketID   string            `json:"ticket_id"`
	ActorID    string            `json:"actor_id,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
	Payload    interface{}       `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TeamID   string                `json:"team_id"`
	Priority domain.TicketPriority `json:"priority"`
	Title    string                `json:"title"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Comment   string              `json:"comment,omitempty"`
}

// TicketPriorityChangedPayload payload.
type TicketPriorityChangedPayload struct {
	OldPriority domain.TicketPriority `json:"old_priority"`
	NewPriority domain.TicketPriority `json:"new_priority"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AssignedTo *string `json:"assigned_to,omitempty"`
}

// SLABreachedPayload payload. Clock identifies which deadline was missed:
// "response" or "resolution".
type SLABreachedPayload struct {
	PolicyID string              `json:"policy_id"`
	Clock    string              `json:"clock"`
	DueAt    time.Time           `json:"due_at"`
	Health   domain.SLAHealth    `json:"health"`
	Status   domain.TicketStatus `json:"status"`
}
