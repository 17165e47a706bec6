package sla

import (
	"time"

	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/domain"
)

// ClassifierConfig tunes the at-risk warning window. A ticket is at risk when
// now falls inside the warning zone before a pending deadline. The zone is
// WarningFraction of the full window, or a fixed WarningWindow when set
// (clipped to the window so a wide fixed zone cannot flag a ticket at birth).
type ClassifierConfig struct {
	WarningFraction float64
	WarningWindow   time.Duration
}

const defaultWarningFraction = 0.2

func (c ClassifierConfig) normalized() ClassifierConfig {
	if c.WarningFraction <= 0 || c.WarningFraction >= 1 {
		c.WarningFraction = defaultWarningFraction
	}
	return c
}

// Snapshot is the ticket state the classifier needs. Terminal reflects the
// kind's lifecycle table; CompletedAt is the terminal timestamp when set.
type Snapshot struct {
	CreatedAt   time.Time
	AssignedAt  *time.Time
	CompletedAt *time.Time
	Terminal    bool
}

// Classification is the classifier output.
type Classification struct {
	Health             domain.SLAHealth
	BreachedResponse   bool
	BreachedResolution bool
}

// Classify renders the SLA health of a ticket snapshot against its deadlines
// at the given instant. It is a pure function: identical inputs always yield
// identical results. A nil deadlines value means no policy resolved and the
// ticket is not_applicable.
//
// Closed tickets are judged against their terminal timestamp and can only be
// breached or on_track; at_risk never applies after closure. Open tickets
// breach the response clock either by remaining unassigned past the response
// due instant or by having been assigned after it, and breach the resolution
// clock once now passes the resolution due instant. Short of a breach, both
// clocks feed the at-risk window.
func Classify(cfg ClassifierConfig, snap Snapshot, deadlines *domain.Deadlines, now time.Time) Classification {
	if deadlines == nil {
		return Classification{Health: domain.HealthNotApplicable}
	}
	cfg = cfg.normalized()

	if snap.Terminal {
		terminalAt := now
		if snap.CompletedAt != nil {
			terminalAt = *snap.CompletedAt
		}
		respondedAt := terminalAt
		if snap.AssignedAt != nil {
			respondedAt = *snap.AssignedAt
		}
		out := Classification{
			BreachedResponse:   respondedAt.After(deadlines.ResponseDue),
			BreachedResolution: terminalAt.After(deadlines.ResolutionDue),
		}
		if out.BreachedResponse || out.BreachedResolution {
			out.Health = domain.HealthBreached
		} else {
			out.Health = domain.HealthOnTrack
		}
		return out
	}

	out := Classification{
		BreachedResolution: now.After(deadlines.ResolutionDue),
	}
	if snap.AssignedAt != nil {
		out.BreachedResponse = snap.AssignedAt.After(deadlines.ResponseDue)
	} else {
		out.BreachedResponse = now.After(deadlines.ResponseDue)
	}
	if out.BreachedResponse || out.BreachedResolution {
		out.Health = domain.HealthBreached
		return out
	}

	responsePending := snap.AssignedAt == nil
	if (responsePending && cfg.withinWarning(snap.CreatedAt, deadlines.ResponseDue, now)) ||
		cfg.withinWarning(snap.CreatedAt, deadlines.ResolutionDue, now) {
		out.Health = domain.HealthAtRisk
		return out
	}
	out.Health = domain.HealthOnTrack
	return out
}

func (c ClassifierConfig) withinWarning(start, due, now time.Time) bool {
	window := due.Sub(start)
	if window <= 0 {
		return false
	}
	zone := time.Duration(float64(window) * c.WarningFraction)
	if c.WarningWindow > 0 {
		zone = c.WarningWindow
	}
	if zone > window {
		zone = window
	}
	return !now.Before(due.Add(-zone))
}
