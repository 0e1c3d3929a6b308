package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// SettingsRepo implements ports.SettingsRepository over a single-row
// settings table.
type SettingsRepo struct {
	pool Pool
}

// NewSettingsRepo creates a new SettingsRepo.
func NewSettingsRepo(pool Pool) *SettingsRepo {
	return &SettingsRepo{pool: pool}
}

// SiteEnabled reads the storefront kill-switch. A missing row counts as
// enabled.
func (r *SettingsRepo) SiteEnabled(ctx context.Context) (bool, error) {
	var enabled bool
	err := r.pool.QueryRow(ctx, `SELECT site_enabled FROM settings LIMIT 1`).Scan(&enabled)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return true, nil
		}
		return false, fmt.Errorf("get site status: %w", err)
	}
	return enabled, nil
}

// SetSiteEnabled flips the storefront kill-switch.
func (r *SettingsRepo) SetSiteEnabled(ctx context.Context, enabled bool) error {
	query := `INSERT INTO settings (id, site_enabled) VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET site_enabled = EXCLUDED.site_enabled`

	if _, err := r.pool.Exec(ctx, query, enabled); err != nil {
		return fmt.Errorf("set site status: %w", err)
	}
	return nil
}
