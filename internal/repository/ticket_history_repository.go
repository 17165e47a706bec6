package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/domain"
)

// TicketHistoryRepository persists the immutable audit trail shared by all
// ticket kinds.
type TicketHistoryRepository interface {
	Create(ctx context.Context, entry *domain.TicketHistory) error
	ListByTicket(ctx context.Context, kind domain.TicketKind, ticketID string, limit, offset int) ([]domain.TicketHistory, error)
}

type ticketHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewTicketHistoryRepository constructs repository.
func NewTicketHistoryRepository(pool *pgxpool.Pool) TicketHistoryRepository {
	return &ticketHistoryRepository{pool: pool}
}

func (r *ticketHistoryRepository) Create(ctx context.Context, entry *domain.TicketHistory) error {
	oldValue, err := json.Marshal(entry.OldValue)
	if err != nil {
		return err
	}
	newValue, err := json.Marshal(entry.NewValue)
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO ticket_history (ticket_kind, ticket_id, actor_id, change_type, old_value, new_value)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		entry.TicketKind,
		entry.TicketID,
		entry.ActorID,
		entry.ChangeType,
		oldValue,
		newValue,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *ticketHistoryRepository) ListByTicket(ctx context.Context, kind domain.TicketKind, ticketID string, limit, offset int) ([]domain.TicketHistory, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, ticket_kind, ticket_id, actor_id, change_type, old_value, new_value, created_at
        FROM ticket_history
        WHERE ticket_kind=$1 AND ticket_id=$2
        ORDER BY created_at DESC
        LIMIT $3 OFFSET $4`
	rows, err := r.pool.Query(ctx, query, kind, ticketID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketHistory
	for rows.Next() {
		var (
			entry    domain.TicketHistory
			oldValue []byte
			newValue []byte
		)
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketKind,
			&entry.TicketID,
			&entry.ActorID,
			&entry.ChangeType,
			&oldValue,
			&newValue,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		if len(oldValue) > 0 {
			if err := json.Unmarshal(oldValue, &entry.OldValue); err != nil {
				return nil, err
			}
		}
		if len(newValue) > 0 {
			if err := json.Unmarshal(newValue, &entry.NewValue); err != nil {
				return nil, err
			}
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
