package domain

import "time"

// AuthEventResult marks an audited action as succeeded or failed.
type AuthEventResult string

const (
	AuthEventSuccess AuthEventResult = "success"
	AuthEventFailure AuthEventResult = "failure"
)

// AuthAction identifies the audited action.
type AuthAction string

const (
	AuthActionAdminLogin     AuthAction = "admin_login"
	AuthActionAdminCreate    AuthAction = "admin_create"
	AuthActionAdminStatus    AuthAction = "admin_status_change"
	AuthActionAdminDelete    AuthAction = "admin_delete"
	AuthActionAdminCredit    AuthAction = "admin_credit"
	AuthActionAccountStatus  AuthAction = "account_status_change"
	AuthActionAccountDelete  AuthAction = "account_delete"
	AuthActionBalanceReset   AuthAction = "balance_reset"
	AuthActionBalanceFailure AuthAction = "balance_op_failed"
	AuthActionOrderStatus    AuthAction = "order_status_change"
	AuthActionSiteToggle     AuthAction = "site_toggle"
)

// AuthEvent is one append-only audit record. ActorID is nil when the actor
// could not be established (e.g. a failed login).
type AuthEvent struct {
	ID        int64           `json:"id"`
	ActorID   *int64          `json:"actor_id,omitempty"`
	ActorName string          `json:"actor_name,omitempty"`
	Action    AuthAction      `json:"action"`
	IP        string          `json:"ip"`
	UserAgent string          `json:"user_agent,omitempty"`
	Result    AuthEventResult `json:"result"`
	CreatedAt time.Time       `json:"created_at"`
}
