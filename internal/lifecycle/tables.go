package lifecycle

import "github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/domain"

// Reopening is not modeled for any kind: terminal states (other than the
// incident resolved->closed edge) have no outgoing transitions.
var tables = map[domain.TicketKind]Table{
	domain.KindIncident: {
		Kind:    domain.KindIncident,
		Initial: domain.StatusOpen,
		Next: map[domain.TicketStatus][]domain.TicketStatus{
			domain.StatusOpen:       {domain.StatusInProgress, domain.StatusResolved, domain.StatusClosed},
			domain.StatusInProgress: {domain.StatusResolved, domain.StatusClosed},
			domain.StatusResolved:   {domain.StatusClosed},
			domain.StatusClosed:     {},
		},
		Terminal: map[domain.TicketStatus]bool{
			domain.StatusResolved: true,
			domain.StatusClosed:   true,
		},
	},
	domain.KindChangeRequest: {
		Kind:    domain.KindChangeRequest,
		Initial: domain.StatusDraft,
		Next: map[domain.TicketStatus][]domain.TicketStatus{
			domain.StatusDraft:           {domain.StatusPendingApproval},
			domain.StatusPendingApproval: {domain.StatusApproved, domain.StatusRejected},
			domain.StatusApproved:        {domain.StatusImplemented, domain.StatusFailed},
			domain.StatusRejected:        {},
			domain.StatusImplemented:     {},
			domain.StatusFailed:          {},
		},
		Terminal: map[domain.TicketStatus]bool{
			domain.StatusRejected:    true,
			domain.StatusImplemented: true,
			domain.StatusFailed:      true,
		},
	},
	domain.KindServiceRequest: {
		Kind:    domain.KindServiceRequest,
		Initial: domain.StatusOpen,
		Next: map[domain.TicketStatus][]domain.TicketStatus{
			domain.StatusOpen:       {domain.StatusInProgress},
			domain.StatusInProgress: {domain.StatusResolved, domain.StatusClosed, domain.StatusCancelled},
			domain.StatusResolved:   {},
			domain.StatusClosed:     {},
			domain.StatusCancelled:  {},
		},
		Terminal: map[domain.TicketStatus]bool{
			domain.StatusResolved:  true,
			domain.StatusClosed:    true,
			domain.StatusCancelled: true,
		},
	},
}

// ForKind returns the transition table for a ticket kind.
func ForKind(kind domain.TicketKind) (Table, bool) {
	table, ok := tables[kind]
	return table, ok
}
