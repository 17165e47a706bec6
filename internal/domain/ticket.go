package domain

import "time"

// TicketKind discriminates the three ITSM ticket types, each persisted in its
// own table but sharing lifecycle and SLA semantics.
type TicketKind string

const (
	KindIncident       TicketKind = "incident"
	KindChangeRequest  TicketKind = "change_request"
	KindServiceRequest TicketKind = "service_request"
)

// Valid reports whether the kind is one of the known ticket types.
func (k TicketKind) Valid() bool {
	switch k {
	case KindIncident, KindChangeRequest, KindServiceRequest:
		return true
	}
	return false
}

// TicketStatus enumerates lifecycle states across all ticket kinds. Which
// states apply to a given kind is defined by its lifecycle table.
type TicketStatus string

const (
	StatusOpen            TicketStatus = "open"
	StatusInProgress      TicketStatus = "in_progress"
	StatusResolved        TicketStatus = "resolved"
	StatusClosed          TicketStatus = "closed"
	StatusCancelled       TicketStatus = "cancelled"
	StatusDraft           TicketStatus = "draft"
	StatusPendingApproval TicketStatus = "pending_approval"
	StatusApproved        TicketStatus = "approved"
	StatusRejected        TicketStatus = "rejected"
	StatusImplemented     TicketStatus = "implemented"
	StatusFailed          TicketStatus = "failed"
)

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	PriorityLow      TicketPriority = "low"
	PriorityMedium   TicketPriority = "medium"
	PriorityHigh     TicketPriority = "high"
	PriorityCritical TicketPriority = "critical"
)

// Valid reports whether the priority is a known value.
func (p TicketPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Ticket is the shared aggregate for incidents, change requests and service
// requests. CompletedAt maps to the kind-specific terminal column
// (resolved_at or implemented_at); it is set exactly when the ticket is in a
// terminal status. AssignedAt is set exactly when AssignedTo is set.
type Ticket struct {
	ID          string
	ExternalKey string
	Kind        TicketKind
	TeamID      string
	Title       string
	Description string
	Status      TicketStatus
	Priority    TicketPriority
	AssignedTo  *string
	AssignedAt  *time.Time
	CompletedAt *time.Time
	Metadata    map[string]string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
