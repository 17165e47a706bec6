package domain

import "time"

// ClientType captures how the MSP serves the client owning a team: directly
// or through an intermediary ESN.
type ClientType string

const (
	ClientTypeDirect ClientType = "direct"
	ClientTypeViaESN ClientType = "via_esn"
)

// Valid reports whether the client type is a known value.
func (c ClientType) Valid() bool {
	return c == ClientTypeDirect || c == ClientTypeViaESN
}

// SLAPolicy defines response/resolution/escalation targets for one
// (client type, priority) pair. Policies are soft-disabled via IsActive and
// never hard-deleted while referenced by historical tracking.
type SLAPolicy struct {
	ID                  string
	ClientType          ClientType
	Priority            TicketPriority
	ResponseTimeHours   int
	ResolutionTimeHours int
	EscalationTimeHours int
	IsActive            bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// SLAHealth classifies a ticket's current SLA standing.
type SLAHealth string

const (
	HealthOnTrack       SLAHealth = "on_track"
	HealthAtRisk        SLAHealth = "at_risk"
	HealthBreached      SLAHealth = "breached"
	HealthNotApplicable SLAHealth = "not_applicable"
)

// Deadlines carries the due instants derived from a policy and a ticket's
// creation/assignment timestamps.
type Deadlines struct {
	ResponseDue   time.Time
	ResolutionDue time.Time
	EscalationDue time.Time
}

// SLATracking is the derived, never-persisted view over a ticket and its
// resolved policy. When no policy resolves, PolicyID and the due fields are
// nil and Health is not_applicable.
type SLATracking struct {
	PolicyID           *string
	ResponseDueAt      *time.Time
	ResolutionDueAt    *time.Time
	EscalationDueAt    *time.Time
	Health             SLAHealth
	BreachedResponse   bool
	BreachedResolution bool
}
