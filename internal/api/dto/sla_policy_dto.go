package dto

import (
	"time"

	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/domain"
)

// CreatePolicyRequest payload.
type CreatePolicyRequest struct {
	ClientType          domain.ClientType     `json:"client_type"`
	Priority            domain.TicketPriority `json:"priority"`
	ResponseTimeHours   int                   `json:"response_time_hours"`
	ResolutionTimeHours int                   `json:"resolution_time_hours"`
	EscalationTimeHours int                   `json:"escalation_time_hours"`
}

// UpdatePolicyRequest carries optional updates; omitted fields are unchanged.
type UpdatePolicyRequest struct {
	ResponseTimeHours   *int  `json:"response_time_hours"`
	ResolutionTimeHours *int  `json:"resolution_time_hours"`
	EscalationTimeHours *int  `json:"escalation_time_hours"`
	IsActive            *bool `json:"is_active"`
}

// PolicyResponse is the policy view.
type PolicyResponse struct {
	ID                  string                `json:"id"`
	ClientType          domain.ClientType     `json:"client_type"`
	Priority            domain.TicketPriority `json:"priority"`
	ResponseTimeHours   int                   `json:"response_time_hours"`
	ResolutionTimeHours int                   `json:"resolution_time_hours"`
	EscalationTimeHours int                   `json:"escalation_time_hours"`
	IsActive            bool                  `json:"is_active"`
	CreatedAt           time.Time             `json:"created_at"`
	UpdatedAt           time.Time             `json:"updated_at"`
}

// PolicyFromDomain maps a policy to its response shape.
func PolicyFromDomain(policy *domain.SLAPolicy) PolicyResponse {
	return PolicyResponse{
		ID:                  policy.ID,
		ClientType:          policy.ClientType,
		Priority:            policy.Priority,
		ResponseTimeHours:   policy.ResponseTimeHours,
		ResolutionTimeHours: policy.ResolutionTimeHours,
		EscalationTimeHours: policy.EscalationTimeHours,
		IsActive:            policy.IsActive,
		CreatedAt:           policy.CreatedAt,
		UpdatedAt:           policy.UpdatedAt,
	}
}
