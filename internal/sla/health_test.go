package sla

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/domain"
)

var t0 = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func criticalDeadlines() *domain.Deadlines {
	// response 1h, resolution 4h, escalation 2h
	return &domain.Deadlines{
		ResponseDue:   t0.Add(time.Hour),
		ResolutionDue: t0.Add(4 * time.Hour),
		EscalationDue: t0.Add(2 * time.Hour),
	}
}

func ts(t time.Time) *time.Time { return &t }

func TestClassifyNoPolicyIsNotApplicable(t *testing.T) {
	got := Classify(ClassifierConfig{}, Snapshot{CreatedAt: t0}, nil, t0.Add(time.Hour))

	assert.Equal(t, domain.HealthNotApplicable, got.Health)
	assert.False(t, got.BreachedResponse)
	assert.False(t, got.BreachedResolution)
}

func TestClassifyOpenUnassigned(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want domain.SLAHealth
	}{
		// Critical/direct incident, unassigned: on track well before the
		// response due, at risk inside the last 20% of the response window,
		// breached once the response due passes unanswered.
		{"well before response due", t0.Add(30 * time.Minute), domain.HealthOnTrack},
		{"inside response warning zone", t0.Add(55 * time.Minute), domain.HealthAtRisk},
		{"response due passed", t0.Add(61 * time.Minute), domain.HealthBreached},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(ClassifierConfig{}, Snapshot{CreatedAt: t0}, criticalDeadlines(), tt.now)
			assert.Equal(t, tt.want, got.Health)
		})
	}
}

func TestClassifyLateAssignmentBreachesResponse(t *testing.T) {
	// Assigned two hours in against a one-hour response target: breached
	// regardless of how much resolution time remains.
	snap := Snapshot{CreatedAt: t0, AssignedAt: ts(t0.Add(2 * time.Hour))}

	got := Classify(ClassifierConfig{}, snap, criticalDeadlines(), t0.Add(2*time.Hour+time.Minute))

	assert.True(t, got.BreachedResponse)
	assert.False(t, got.BreachedResolution)
	assert.Equal(t, domain.HealthBreached, got.Health)
}

func TestClassifyTimelyAssignmentStopsResponseClock(t *testing.T) {
	// Assigned within the response target: the response clock never breaches,
	// even long after the response due instant.
	snap := Snapshot{CreatedAt: t0, AssignedAt: ts(t0.Add(20 * time.Minute))}

	got := Classify(ClassifierConfig{}, snap, criticalDeadlines(), t0.Add(90*time.Minute))

	assert.False(t, got.BreachedResponse)
	assert.Equal(t, domain.HealthOnTrack, got.Health)
}

func TestClassifyResolutionWarningZone(t *testing.T) {
	// Assigned in time, so only the resolution clock can raise at_risk.
	// 20% of the 4h window is 48m: warning zone starts at t0+3h12m.
	snap := Snapshot{CreatedAt: t0, AssignedAt: ts(t0.Add(10 * time.Minute))}

	onTrack := Classify(ClassifierConfig{}, snap, criticalDeadlines(), t0.Add(3*time.Hour))
	assert.Equal(t, domain.HealthOnTrack, onTrack.Health)

	atRisk := Classify(ClassifierConfig{}, snap, criticalDeadlines(), t0.Add(3*time.Hour+30*time.Minute))
	assert.Equal(t, domain.HealthAtRisk, atRisk.Health)

	breached := Classify(ClassifierConfig{}, snap, criticalDeadlines(), t0.Add(4*time.Hour+time.Minute))
	assert.True(t, breached.BreachedResolution)
	assert.Equal(t, domain.HealthBreached, breached.Health)
}

func TestClassifyFixedWarningWindow(t *testing.T) {
	snap := Snapshot{CreatedAt: t0, AssignedAt: ts(t0.Add(10 * time.Minute))}
	cfg := ClassifierConfig{WarningWindow: 2 * time.Hour}

	got := Classify(cfg, snap, criticalDeadlines(), t0.Add(2*time.Hour+30*time.Minute))

	assert.Equal(t, domain.HealthAtRisk, got.Health)
}

func TestClassifyTerminal(t *testing.T) {
	tests := []struct {
		name           string
		snap           Snapshot
		wantHealth     domain.SLAHealth
		wantRespBreach bool
		wantResBreach  bool
	}{
		{
			name: "resolved in time",
			snap: Snapshot{
				CreatedAt:   t0,
				AssignedAt:  ts(t0.Add(30 * time.Minute)),
				CompletedAt: ts(t0.Add(3 * time.Hour)),
				Terminal:    true,
			},
			wantHealth: domain.HealthOnTrack,
		},
		{
			name: "resolved late",
			snap: Snapshot{
				CreatedAt:   t0,
				AssignedAt:  ts(t0.Add(30 * time.Minute)),
				CompletedAt: ts(t0.Add(5 * time.Hour)),
				Terminal:    true,
			},
			wantHealth:    domain.HealthBreached,
			wantResBreach: true,
		},
		{
			name: "never assigned, closed late against response clock",
			snap: Snapshot{
				CreatedAt:   t0,
				CompletedAt: ts(t0.Add(90 * time.Minute)),
				Terminal:    true,
			},
			wantHealth:     domain.HealthBreached,
			wantRespBreach: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// A closed ticket is never at_risk, whatever now is.
			got := Classify(ClassifierConfig{}, tt.snap, criticalDeadlines(), t0.Add(100*time.Hour))
			assert.Equal(t, tt.wantHealth, got.Health)
			assert.Equal(t, tt.wantRespBreach, got.BreachedResponse)
			assert.Equal(t, tt.wantResBreach, got.BreachedResolution)
		})
	}
}

func TestClassifyInvertedPolicyClocks(t *testing.T) {
	// response target longer than resolution target: admin-configured edge
	// case that must classify without surprises.
	d := &domain.Deadlines{
		ResponseDue:   t0.Add(8 * time.Hour),
		ResolutionDue: t0.Add(4 * time.Hour),
	}

	got := Classify(ClassifierConfig{}, Snapshot{CreatedAt: t0}, d, t0.Add(5*time.Hour))

	assert.False(t, got.BreachedResponse)
	assert.True(t, got.BreachedResolution)
	assert.Equal(t, domain.HealthBreached, got.Health)
}

func TestClassifyIsDeterministic(t *testing.T) {
	snap := Snapshot{CreatedAt: t0, AssignedAt: ts(t0.Add(45 * time.Minute))}
	now := t0.Add(3 * time.Hour)

	first := Classify(ClassifierConfig{}, snap, criticalDeadlines(), now)
	second := Classify(ClassifierConfig{}, snap, criticalDeadlines(), now)

	assert.Equal(t, first, second)
}
