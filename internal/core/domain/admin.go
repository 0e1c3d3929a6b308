package domain

import "time"

// AdminUser represents an administrator. Admins live in a separate namespace
// from player accounts and are not part of the ledger.
type AdminUser struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        *string   `json:"email,omitempty"`
	PasswordHash string    `json:"-"` // Argon2id, never expose
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedBy    *int64    `json:"created_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
