package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/domain"
)

// SLAPolicyRepository manages persistence for SLA policies. Policies are
// never deleted; deactivation flips is_active.
type SLAPolicyRepository interface {
	Create(ctx context.Context, policy *domain.SLAPolicy) error
	Update(ctx context.Context, policy *domain.SLAPolicy) error
	GetByID(ctx context.Context, id string) (*domain.SLAPolicy, error)
	List(ctx context.Context) ([]domain.SLAPolicy, error)
	ListActive(ctx context.Context) ([]domain.SLAPolicy, error)
}

type slaPolicyRepository struct {
	pool *pgxpool.Pool
}

// NewSLAPolicyRepository constructs repository.
func NewSLAPolicyRepository(pool *pgxpool.Pool) SLAPolicyRepository {
	return &slaPolicyRepository{pool: pool}
}

func (r *slaPolicyRepository) Create(ctx context.Context, policy *domain.SLAPolicy) error {
	const query = `
        INSERT INTO sla_policies (client_type, priority, response_time_hours, resolution_time_hours, escalation_time_hours, is_active)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		policy.ClientType,
		policy.Priority,
		policy.ResponseTimeHours,
		policy.ResolutionTimeHours,
		policy.EscalationTimeHours,
		policy.IsActive,
	).Scan(&policy.ID, &policy.CreatedAt, &policy.UpdatedAt)
}

func (r *slaPolicyRepository) Update(ctx context.Context, policy *domain.SLAPolicy) error {
	const query = `
        UPDATE sla_policies SET client_type=$1, priority=$2, response_time_hours=$3,
            resolution_time_hours=$4, escalation_time_hours=$5, is_active=$6, updated_at=NOW()
        WHERE id=$7
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		policy.ClientType,
		policy.Priority,
		policy.ResponseTimeHours,
		policy.ResolutionTimeHours,
		policy.EscalationTimeHours,
		policy.IsActive,
		policy.ID,
	).Scan(&policy.UpdatedAt)
}

func (r *slaPolicyRepository) GetByID(ctx context.Context, id string) (*domain.SLAPolicy, error) {
	const query = `
        SELECT id, client_type, priority, response_time_hours, resolution_time_hours, escalation_time_hours, is_active, created_at, updated_at
        FROM sla_policies WHERE id=$1`
	var policy domain.SLAPolicy
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&policy.ID,
		&policy.ClientType,
		&policy.Priority,
		&policy.ResponseTimeHours,
		&policy.ResolutionTimeHours,
		&policy.EscalationTimeHours,
		&policy.IsActive,
		&policy.CreatedAt,
		&policy.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &policy, nil
}

func (r *slaPolicyRepository) List(ctx context.Context) ([]domain.SLAPolicy, error) {
	const query = `
        SELECT id, client_type, priority, response_time_hours, resolution_time_hours, escalation_time_hours, is_active, created_at, updated_at
        FROM sla_policies ORDER BY client_type, priority, updated_at DESC`
	return r.queryPolicies(ctx, query)
}

func (r *slaPolicyRepository) ListActive(ctx context.Context) ([]domain.SLAPolicy, error) {
	const query = `
        SELECT id, client_type, priority, response_time_hours, resolution_time_hours, escalation_time_hours, is_active, created_at, updated_at
        FROM sla_policies WHERE is_active=TRUE`
	return r.queryPolicies(ctx, query)
}

func (r *slaPolicyRepository) queryPolicies(ctx context.Context, query string) ([]domain.SLAPolicy, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPolicies(rows)
}

func scanPolicies(rows pgx.Rows) ([]domain.SLAPolicy, error) {
	var result []domain.SLAPolicy
	for rows.Next() {
		var policy domain.SLAPolicy
		if err := rows.Scan(
			&policy.ID,
			&policy.ClientType,
			&policy.Priority,
			&policy.ResponseTimeHours,
			&policy.ResolutionTimeHours,
			&policy.EscalationTimeHours,
			&policy.IsActive,
			&policy.CreatedAt,
			&policy.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, policy)
	}
	return result, rows.Err()
}
