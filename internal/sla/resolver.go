// Package sla holds the pure SLA rule engine: policy resolution, deadline
// arithmetic and health classification. Nothing in this package performs I/O
// or keeps mutable state.
package sla

import "github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/domain"

// Resolve selects the applicable policy for a (client type, priority) pair
// from the given candidates. Only active policies matching both fields
// exactly are considered; when several match, the most recently updated one
// wins so the result is deterministic. Returns nil when no policy is
// configured, which callers must treat as "SLA not applicable".
func Resolve(policies []domain.SLAPolicy, clientType domain.ClientType, priority domain.TicketPriority) *domain.SLAPolicy {
	var selected *domain.SLAPolicy
	for i := range policies {
		p := &policies[i]
		if !p.IsActive || p.ClientType != clientType || p.Priority != priority {
			continue
		}
		if selected == nil || p.UpdatedAt.After(selected.UpdatedAt) {
			selected = p
		}
	}
	if selected == nil {
		return nil
	}
	chosen := *selected
	return &chosen
}
