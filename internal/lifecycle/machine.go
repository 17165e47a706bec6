// Package lifecycle provides the generic ticket status state machine: one
// engine parameterized by a transition table, instantiated per ticket kind.
package lifecycle

import (
	"time"

	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/domain"
	apperrors "github.com/webopsway/orchestrate-msp-platform-hub-sub000/pkg/util"
)

// Table defines the legal status graph for one ticket kind.
type Table struct {
	Kind     domain.TicketKind
	Initial  domain.TicketStatus
	Next     map[domain.TicketStatus][]domain.TicketStatus
	Terminal map[domain.TicketStatus]bool
}

// Statuses returns every status the table knows about.
func (t Table) Statuses() []domain.TicketStatus {
	seen := map[domain.TicketStatus]bool{}
	out := []domain.TicketStatus{}
	add := func(s domain.TicketStatus) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	add(t.Initial)
	for from, targets := range t.Next {
		add(from)
		for _, to := range targets {
			add(to)
		}
	}
	for s := range t.Terminal {
		add(s)
	}
	return out
}

// Knows reports whether the status belongs to this table.
func (t Table) Knows(status domain.TicketStatus) bool {
	for _, s := range t.Statuses() {
		if s == status {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status is terminal for this kind.
func (t Table) IsTerminal(status domain.TicketStatus) bool {
	return t.Terminal[status]
}

// CanTransition reports whether target is reachable from current. Re-entering
// the same terminal state is permitted (the terminal timestamp is preserved);
// any other self-transition is not.
func (t Table) CanTransition(current, target domain.TicketStatus) bool {
	if current == target {
		return t.Terminal[current]
	}
	for _, candidate := range t.Next[current] {
		if candidate == target {
			return true
		}
	}
	return false
}

// Apply validates the transition and mutates the ticket in place: status is
// updated and, on entering a terminal state, CompletedAt is stamped with the
// transition time unless already set. Illegal transitions are rejected with
// an INVALID_TRANSITION error and leave the ticket untouched.
func (t Table) Apply(ticket *domain.Ticket, target domain.TicketStatus, at time.Time) error {
	if !t.Knows(target) {
		return apperrors.NewValidationError("unknown status for ticket kind", map[string]any{
			"kind":   string(t.Kind),
			"status": string(target),
		})
	}
	if !t.CanTransition(ticket.Status, target) {
		return apperrors.NewInvalidTransition(string(ticket.Status), string(target), map[string]any{
			"kind": string(t.Kind),
		})
	}
	ticket.Status = target
	if t.Terminal[target] && ticket.CompletedAt == nil {
		stamp := at
		ticket.CompletedAt = &stamp
	}
	return nil
}
