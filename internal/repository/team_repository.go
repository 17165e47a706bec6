package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/webopsway/orchestrate-msp-platform-hub-sub000/internal/domain"
)

// TeamRepository reads teams for SLA resolution and ticket ownership checks.
// Team CRUD is owned by the platform console, not this service.
type TeamRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Team, error)
	ListActive(ctx context.Context) ([]domain.Team, error)
}

type teamRepository struct {
	pool *pgxpool.Pool
}

// NewTeamRepository constructs repository.
func NewTeamRepository(pool *pgxpool.Pool) TeamRepository {
	return &teamRepository{pool: pool}
}

func (r *teamRepository) GetByID(ctx context.Context, id string) (*domain.Team, error) {
	const query = `
        SELECT id, organization_id, name, client_type, is_active, created_at, updated_at
        FROM teams WHERE id=$1`
	var team domain.Team
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&team.ID,
		&team.OrganizationID,
		&team.Name,
		&team.ClientType,
		&team.IsActive,
		&team.CreatedAt,
		&team.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *teamRepository) ListActive(ctx context.Context) ([]domain.Team, error) {
	const query = `
        SELECT id, organization_id, name, client_type, is_active, created_at, updated_at
        FROM teams WHERE is_active=TRUE`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Team
	for rows.Next() {
		var team domain.Team
		if err := rows.Scan(&team.ID, &team.OrganizationID, &team.Name, &team.ClientType, &team.IsActive, &team.CreatedAt, &team.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, team)
	}
	return result, rows.Err()
}
