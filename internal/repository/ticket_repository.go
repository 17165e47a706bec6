package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/domain"
)

// ErrStaleTicket signals that an optimistic concurrency check failed: the
// ticket was modified since the caller loaded it.
var ErrStaleTicket = errors.New("ticket modified concurrently")

// ErrUnknownKind signals a ticket kind without a backing table.
var ErrUnknownKind = errors.New("unknown ticket kind")

type ticketTable struct {
	name        string
	terminalCol string
}

// Each ticket kind lives in its own table; the terminal timestamp column
// name differs per kind but is read into Ticket.CompletedAt uniformly.
var kindTables = map[domain.TicketKind]ticketTable{
	domain.KindIncident:       {name: "incidents", terminalCol: "resolved_at"},
	domain.KindChangeRequest:  {name: "change_requests", terminalCol: "implemented_at"},
	domain.KindServiceRequest: {name: "service_requests", terminalCol: "resolved_at"},
}

// TicketFilter captures listing parameters.
type TicketFilter struct {
	TeamID      *string
	AssignedTo  *string
	Statuses    []domain.TicketStatus
	Priorities  []domain.TicketPriority
	SearchTerm  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// TicketRepository encapsulates ticket persistence across the three kinds.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	// Update persists the ticket only if its stored updated_at still equals
	// expectedUpdatedAt; otherwise it fails with ErrStaleTicket.
	Update(ctx context.Context, ticket *domain.Ticket, expectedUpdatedAt time.Time) error
	GetByID(ctx context.Context, kind domain.TicketKind, id string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, kind domain.TicketKind, filter TicketFilter) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	table, ok := kindTables[ticket.Kind]
	if !ok {
		return ErrUnknownKind
	}
	metadata, err := marshalMetadata(ticket.Metadata)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`
        INSERT INTO %s (external_key, team_id, title, description, status, priority, assigned_to, assigned_at, metadata)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`, table.name)
	return r.pool.QueryRow(ctx, query,
		ticket.ExternalKey,
		ticket.TeamID,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.AssignedTo,
		ticket.AssignedAt,
		metadata,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket, expectedUpdatedAt time.Time) error {
	table, ok := kindTables[ticket.Kind]
	if !ok {
		return ErrUnknownKind
	}
	metadata, err := marshalMetadata(ticket.Metadata)
	if err != nil {
		return err
	}
	query := fmt.Sprintf(`
        UPDATE %s SET title=$1, description=$2, status=$3, priority=$4,
            assigned_to=$5, assigned_at=$6, %s=$7, metadata=$8, updated_at=NOW()
        WHERE id=$9 AND updated_at=$10
        RETURNING updated_at`, table.name, table.terminalCol)
	err = r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.AssignedTo,
		ticket.AssignedAt,
		ticket.CompletedAt,
		metadata,
		ticket.ID,
		expectedUpdatedAt,
	).Scan(&ticket.UpdatedAt)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	// Zero rows: either the ticket is gone or the version check failed.
	var exists bool
	existsQuery := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id=$1)`, table.name)
	if checkErr := r.pool.QueryRow(ctx, existsQuery, ticket.ID).Scan(&exists); checkErr != nil {
		return checkErr
	}
	if exists {
		return ErrStaleTicket
	}
	return pgx.ErrNoRows
}

func (r *ticketRepository) GetByID(ctx context.Context, kind domain.TicketKind, id string) (*domain.Ticket, error) {
	table, ok := kindTables[kind]
	if !ok {
		return nil, ErrUnknownKind
	}
	query := fmt.Sprintf(`
        SELECT id, external_key, team_id, title, description, status, priority,
               assigned_to, assigned_at, %s, metadata, created_at, updated_at
        FROM %s WHERE id=$1`, table.terminalCol, table.name)
	row := r.pool.QueryRow(ctx, query, id)
	return scanTicket(row, kind)
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, kind domain.TicketKind, filter TicketFilter) ([]domain.Ticket, error) {
	table, ok := kindTables[kind]
	if !ok {
		return nil, ErrUnknownKind
	}
	base := fmt.Sprintf(`SELECT id, external_key, team_id, title, description, status, priority,
               assigned_to, assigned_at, %s, metadata, created_at, updated_at
        FROM %s`, table.terminalCol, table.name)
	clauses := []string{"1=1"}
	args := []any{}

	if filter.TeamID != nil {
		args = append(args, *filter.TeamID)
		clauses = append(clauses, fmt.Sprintf("team_id=$%d", len(args)))
	}
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		clauses = append(clauses, fmt.Sprintf("assigned_to=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(title) LIKE %s OR LOWER(description) LIKE %s)", placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY updated_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows, kind)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row rowScanner, kind domain.TicketKind) (*domain.Ticket, error) {
	var (
		ticket   domain.Ticket
		metadata []byte
	)
	if err := row.Scan(
		&ticket.ID,
		&ticket.ExternalKey,
		&ticket.TeamID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.AssignedTo,
		&ticket.AssignedAt,
		&ticket.CompletedAt,
		&metadata,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	ticket.Kind = kind
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &ticket.Metadata); err != nil {
			return nil, err
		}
	}
	return &ticket, nil
}

func marshalMetadata(metadata map[string]string) ([]byte, error) {
	if metadata == nil {
		metadata = map[string]string{}
	}
	return json.Marshal(metadata)
}
