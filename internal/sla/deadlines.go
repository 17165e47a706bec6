package sla

import (
	"time"

	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/domain"
)

// ComputeDeadlines derives the due instants for a ticket under a policy.
// Response and resolution clocks are anchored to creation. The escalation
// clock is anchored to assignment when the ticket has been assigned,
// otherwise to creation: escalation concerns stalled ownership, not raw age.
//
// All offsets are wall-clock hours; business-hours calendars are a known
// simplification left out of this engine.
func ComputeDeadlines(policy domain.SLAPolicy, createdAt time.Time, assignedAt *time.Time) domain.Deadlines {
	escalationAnchor := createdAt
	if assignedAt != nil {
		escalationAnchor = *assignedAt
	}
	return domain.Deadlines{
		ResponseDue:   createdAt.Add(time.Duration(policy.ResponseTimeHours) * time.Hour),
		ResolutionDue: createdAt.Add(time.Duration(policy.ResolutionTimeHours) * time.Hour),
		EscalationDue: escalationAnchor.Add(time.Duration(policy.EscalationTimeHours) * time.Hour),
	}
}
