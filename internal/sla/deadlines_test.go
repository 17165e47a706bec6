package sla

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/domain"
)

func TestComputeDeadlinesUnassigned(t *testing.T) {
	createdAt := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	p := domain.SLAPolicy{
		ResponseTimeHours:   1,
		ResolutionTimeHours: 4,
		EscalationTimeHours: 2,
	}

	d := ComputeDeadlines(p, createdAt, nil)

	assert.Equal(t, createdAt.Add(time.Hour), d.ResponseDue)
	assert.Equal(t, createdAt.Add(4*time.Hour), d.ResolutionDue)
	assert.Equal(t, createdAt.Add(2*time.Hour), d.EscalationDue)
}

func TestComputeDeadlinesEscalationAnchoredToAssignment(t *testing.T) {
	createdAt := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	assignedAt := createdAt.Add(30 * time.Minute)
	p := domain.SLAPolicy{
		ResponseTimeHours:   1,
		ResolutionTimeHours: 4,
		EscalationTimeHours: 2,
	}

	d := ComputeDeadlines(p, createdAt, &assignedAt)

	// Response/resolution clocks stay on creation; escalation follows ownership.
	assert.Equal(t, createdAt.Add(time.Hour), d.ResponseDue)
	assert.Equal(t, createdAt.Add(4*time.Hour), d.ResolutionDue)
	assert.Equal(t, assignedAt.Add(2*time.Hour), d.EscalationDue)
}

func TestComputeDeadlinesResponseMayExceedResolution(t *testing.T) {
	// Admin-configured policies may invert the clocks; the calculator must not care.
	createdAt := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	p := domain.SLAPolicy{
		ResponseTimeHours:   8,
		ResolutionTimeHours: 4,
		EscalationTimeHours: 1,
	}

	d := ComputeDeadlines(p, createdAt, nil)

	assert.True(t, d.ResponseDue.After(d.ResolutionDue))
}
