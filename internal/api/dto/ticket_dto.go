package dto

import (
	"time"

	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	TeamID      string                `json:"team_id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
	Metadata    map[string]string     `json:"metadata"`
}

// TransitionRequest payload.
type TransitionRequest struct {
	Status  domain.TicketStatus `json:"status"`
	Comment string              `json:"comment"`
}

// AssignRequest payload.
type AssignRequest struct {
	UserID string `json:"user_id"`
}

// UpdatePriorityRequest payload.
type UpdatePriorityRequest struct {
	Priority domain.TicketPriority `json:"priority"`
}

// TicketResponse is the full ticket view.
type TicketResponse struct {
	ID          string                `json:"id"`
	ExternalKey string                `json:"external_key"`
	Kind        domain.TicketKind     `json:"kind"`
	TeamID      string                `json:"team_id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Status      domain.TicketStatus   `json:"status"`
	Priority    domain.TicketPriority `json:"priority"`
	AssignedTo  *string               `json:"assigned_to"`
	AssignedAt  *time.Time            `json:"assigned_at"`
	CompletedAt *time.Time            `json:"completed_at"`
	Metadata    map[string]string     `json:"metadata,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// SLATrackingResponse is the derived SLA view for one ticket.
type SLATrackingResponse struct {
	PolicyID           *string          `json:"policy_id"`
	ResponseDueAt      *time.Time       `json:"response_due_at"`
	ResolutionDueAt    *time.Time       `json:"resolution_due_at"`
	EscalationDueAt    *time.Time       `json:"escalation_due_at"`
	Health             domain.SLAHealth `json:"health"`
	BreachedResponse   bool             `json:"breached_response"`
	BreachedResolution bool             `json:"breached_resolution"`
}

// TicketHistoryResponse is one audit trail entry.
type TicketHistoryResponse struct {
	ID         string                  `json:"id"`
	ActorID    *string                 `json:"actor_id"`
	ChangeType domain.TicketChangeType `json:"change_type"`
	OldValue   map[string]any          `json:"old_value"`
	NewValue   map[string]any          `json:"new_value"`
	CreatedAt  time.Time               `json:"created_at"`
}

// TicketFromDomain maps a domain ticket to its response shape.
func TicketFromDomain(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:          ticket.ID,
		ExternalKey: ticket.ExternalKey,
		Kind:        ticket.Kind,
		TeamID:      ticket.TeamID,
		Title:       ticket.Title,
		Description: ticket.Description,
		Status:      ticket.Status,
		Priority:    ticket.Priority,
		AssignedTo:  ticket.AssignedTo,
		AssignedAt:  ticket.AssignedAt,
		CompletedAt: ticket.CompletedAt,
		Metadata:    ticket.Metadata,
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
	}
}

// TrackingFromDomain maps a derived SLA tracking view.
func TrackingFromDomain(tracking domain.SLATracking) SLATrackingResponse {
	return SLATrackingResponse{
		PolicyID:           tracking.PolicyID,
		ResponseDueAt:      tracking.ResponseDueAt,
		ResolutionDueAt:    tracking.ResolutionDueAt,
		EscalationDueAt:    tracking.EscalationDueAt,
		Health:             tracking.Health,
		BreachedResponse:   tracking.BreachedResponse,
		BreachedResolution: tracking.BreachedResolution,
	}
}

// HistoryFromDomain maps audit entries.
func HistoryFromDomain(entries []domain.TicketHistory) []TicketHistoryResponse {
	resp := make([]TicketHistoryResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, TicketHistoryResponse{
			ID:         entry.ID,
			ActorID:    entry.ActorID,
			ChangeType: entry.ChangeType,
			OldValue:   entry.OldValue,
			NewValue:   entry.NewValue,
			CreatedAt:  entry.CreatedAt,
		})
	}
	return resp
}
