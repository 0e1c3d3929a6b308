package postgres

import (
	"context"
	"fmt"

	"gameserver-market/internal/core/domain"
)

// AuthEventRepo implements ports.AuthEventRepository. The table is
// append-only; rows are never updated or deleted.
type AuthEventRepo struct {
	pool Pool
}

// NewAuthEventRepo creates a new AuthEventRepo.
func NewAuthEventRepo(pool Pool) *AuthEventRepo {
	return &AuthEventRepo{pool: pool}
}

// Create appends an audit record.
func (r *AuthEventRepo) Create(ctx context.Context, e *domain.AuthEvent) error {
	query := `INSERT INTO auth_events (actor_id, actor_name, action, ip, user_agent, result, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`

	err := r.pool.QueryRow(ctx, query,
		e.ActorID, e.ActorName, e.Action, e.IP, e.UserAgent, e.Result, e.CreatedAt,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("insert auth event: %w", err)
	}
	return nil
}

// List fetches the most recent audit records, newest first.
func (r *AuthEventRepo) List(ctx context.Context, limit int) ([]domain.AuthEvent, error) {
	query := `SELECT id, actor_id, actor_name, action, ip, user_agent, result, created_at
		FROM auth_events ORDER BY created_at DESC LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list auth events: %w", err)
	}
	defer rows.Close()

	var events []domain.AuthEvent
	for rows.Next() {
		var e domain.AuthEvent
		if err := rows.Scan(&e.ID, &e.ActorID, &e.ActorName, &e.Action, &e.IP, &e.UserAgent, &e.Result, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan auth event row: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate auth event rows: %w", err)
	}
	return events, nil
}
