package postgres

import (
	"context"
	"errors"
	"fmt"

	"gameserver-market/internal/core/domain"
	"gameserver-market/internal/core/ports"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// AdminRepo implements ports.AdminRepository.
type AdminRepo struct {
	pool Pool
}

// NewAdminRepo creates a new AdminRepo.
func NewAdminRepo(pool Pool) *AdminRepo {
	return &AdminRepo{pool: pool}
}

const adminColumns = `id, username, email, password_hash, role, is_active, created_by, created_at`

// Create inserts a new administrator. A duplicate username surfaces as
// ports.ErrDuplicateKey.
func (r *AdminRepo) Create(ctx context.Context, a *domain.AdminUser) error {
	query := `INSERT INTO admins (username, email, password_hash, role, is_active, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`

	err := r.pool.QueryRow(ctx, query,
		a.Username, a.Email, a.PasswordHash, a.Role, a.IsActive, a.CreatedBy, a.CreatedAt,
	).Scan(&a.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ports.ErrDuplicateKey
		}
		return fmt.Errorf("insert admin: %w", err)
	}
	return nil
}

// GetByID fetches an administrator by id.
func (r *AdminRepo) GetByID(ctx context.Context, id int64) (*domain.AdminUser, error) {
	query := `SELECT ` + adminColumns + ` FROM admins WHERE id = $1`
	return scanAdmin(r.pool.QueryRow(ctx, query, id))
}

// GetByUsername fetches an administrator by username.
func (r *AdminRepo) GetByUsername(ctx context.Context, username string) (*domain.AdminUser, error) {
	query := `SELECT ` + adminColumns + ` FROM admins WHERE username = $1`
	return scanAdmin(r.pool.QueryRow(ctx, query, username))
}

// List fetches all administrators, newest first.
func (r *AdminRepo) List(ctx context.Context) ([]domain.AdminUser, error) {
	query := `SELECT ` + adminColumns + ` FROM admins ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	defer rows.Close()

	var admins []domain.AdminUser
	for rows.Next() {
		var a domain.AdminUser
		if err := rows.Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.Role, &a.IsActive, &a.CreatedBy, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan admin row: %w", err)
		}
		admins = append(admins, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate admin rows: %w", err)
	}
	return admins, nil
}

// SetActive flips an administrator's active flag.
func (r *AdminRepo) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE admins SET is_active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("set admin active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("admin not found: %d", id)
	}
	return nil
}

// Delete removes an administrator.
func (r *AdminRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM admins WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete admin: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("admin not found: %d", id)
	}
	return nil
}

func scanAdmin(row pgx.Row) (*domain.AdminUser, error) {
	a := &domain.AdminUser{}
	err := row.Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.Role, &a.IsActive, &a.CreatedBy, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan admin: %w", err)
	}
	return a, nil
}
