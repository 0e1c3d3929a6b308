package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gameserver-market/internal/core/domain"
	"gameserver-market/internal/core/ports"
	"gameserver-market/pkg/apperror"

	"github.com/rs/zerolog"
)

// AdminServiceImpl implements ports.AdminService, the single gateway for
// privileged operations. Every call re-verifies the actor against storage so
// a deactivated administrator loses access immediately, token or not.
type AdminServiceImpl struct {
	adminRepo    ports.AdminRepository
	accountRepo  ports.AccountRepository
	orderRepo    ports.OrderRepository
	productRepo  ports.ProductRepository
	txRepo       ports.TransactionRepository
	settingsRepo ports.SettingsRepository
	ledger       ports.LedgerService
	hashSvc      ports.HashService
	audit        ports.AuditService
	log          zerolog.Logger
}

// NewAdminService creates a new AdminServiceImpl.
func NewAdminService(
	adminRepo ports.AdminRepository,
	accountRepo ports.AccountRepository,
	orderRepo ports.OrderRepository,
	productRepo ports.ProductRepository,
	txRepo ports.TransactionRepository,
	settingsRepo ports.SettingsRepository,
	ledger ports.LedgerService,
	hashSvc ports.HashService,
	audit ports.AuditService,
	log zerolog.Logger,
) *AdminServiceImpl {
	return &AdminServiceImpl{
		adminRepo:    adminRepo,
		accountRepo:  accountRepo,
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		txRepo:       txRepo,
		settingsRepo: settingsRepo,
		ledger:       ledger,
		hashSvc:      hashSvc,
		audit:        audit,
		log:          log,
	}
}

// requireActor loads and verifies the acting administrator.
func (s *AdminServiceImpl) requireActor(ctx context.Context, actor ports.Actor) (*domain.AdminUser, error) {
	admin, err := s.adminRepo.GetByID(ctx, actor.AdminID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get actor: %w", err))
	}
	if admin == nil || !admin.IsActive {
		return nil, apperror.ErrForbidden()
	}
	return admin, nil
}

func (s *AdminServiceImpl) record(ctx context.Context, admin *domain.AdminUser, actor ports.Actor, action domain.AuthAction, result domain.AuthEventResult) {
	s.audit.Record(ctx, &domain.AuthEvent{
		ActorID:   &admin.ID,
		ActorName: admin.Username,
		Action:    action,
		IP:        actor.ClientIP,
		Result:    result,
		CreatedAt: time.Now().UTC(),
	})
}

// Credit adds funds to a player account as an admin_credit ledger entry.
func (s *AdminServiceImpl) Credit(ctx context.Context, actor ports.Actor, accountID int64, amount int64, reason string) (*ports.BalanceMutation, error) {
	admin, err := s.requireActor(ctx, actor)
	if err != nil {
		return nil, err
	}

	if reason == "" {
		reason = "manual credit by " + admin.Username
	}
	mutation, err := s.ledger.Deposit(ctx, ports.DepositRequest{
		AccountID:   accountID,
		Amount:      amount,
		Kind:        domain.TransactionKindAdminCredit,
		Description: reason,
	})
	if err != nil {
		s.record(ctx, admin, actor, domain.AuthActionBalanceFailure, domain.AuthEventFailure)
		return nil, err
	}

	s.record(ctx, admin, actor, domain.AuthActionAdminCredit, domain.AuthEventSuccess)
	return mutation, nil
}

// ResetBalance zeroes an account balance via a single offsetting entry.
func (s *AdminServiceImpl) ResetBalance(ctx context.Context, actor ports.Actor, accountID int64) (*ports.BalanceMutation, error) {
	admin, err := s.requireActor(ctx, actor)
	if err != nil {
		return nil, err
	}

	mutation, err := s.ledger.Reset(ctx, accountID)
	if err != nil {
		s.record(ctx, admin, actor, domain.AuthActionBalanceFailure, domain.AuthEventFailure)
		return nil, err
	}

	s.record(ctx, admin, actor, domain.AuthActionBalanceReset, domain.AuthEventSuccess)
	return mutation, nil
}

// ListAccounts returns all player accounts.
func (s *AdminServiceImpl) ListAccounts(ctx context.Context, actor ports.Actor) ([]domain.Account, error) {
	if _, err := s.requireActor(ctx, actor); err != nil {
		return nil, err
	}
	accounts, err := s.accountRepo.List(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list accounts: %w", err))
	}
	return accounts, nil
}

// SetAccountStatus switches an account between active and blocked.
func (s *AdminServiceImpl) SetAccountStatus(ctx context.Context, actor ports.Actor, accountID int64, status domain.AccountStatus) error {
	admin, err := s.requireActor(ctx, actor)
	if err != nil {
		return err
	}
	if status != domain.AccountStatusActive && status != domain.AccountStatusBlocked {
		return apperror.Validation("unknown account status")
	}

	if err := s.accountRepo.UpdateStatus(ctx, accountID, status); err != nil {
		return apperror.ErrNotFound("account")
	}

	s.record(ctx, admin, actor, domain.AuthActionAccountStatus, domain.AuthEventSuccess)
	return nil
}

// DeleteAccount removes an account with its ledger history and orders.
func (s *AdminServiceImpl) DeleteAccount(ctx context.Context, actor ports.Actor, accountID int64) error {
	admin, err := s.requireActor(ctx, actor)
	if err != nil {
		return err
	}

	if err := s.accountRepo.Delete(ctx, accountID); err != nil {
		return apperror.ErrNotFound("account")
	}

	s.record(ctx, admin, actor, domain.AuthActionAccountDelete, domain.AuthEventSuccess)
	s.log.Info().Int64("account_id", accountID).Str("admin", admin.Username).Msg("account deleted")
	return nil
}

// ListOrders returns every order for the admin console.
func (s *AdminServiceImpl) ListOrders(ctx context.Context, actor ports.Actor) ([]domain.Order, error) {
	if _, err := s.requireActor(ctx, actor); err != nil {
		return nil, err
	}
	orders, err := s.orderRepo.ListAll(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list orders: %w", err))
	}
	return orders, nil
}

// SetOrderStatus drives the pending -> fulfilled transition.
func (s *AdminServiceImpl) SetOrderStatus(ctx context.Context, actor ports.Actor, orderID int64, status domain.OrderStatus) error {
	admin, err := s.requireActor(ctx, actor)
	if err != nil {
		return err
	}
	if status != domain.OrderStatusPending && status != domain.OrderStatusFulfilled {
		return apperror.Validation("unknown order status")
	}

	if err := s.orderRepo.UpdateStatus(ctx, orderID, status); err != nil {
		return apperror.ErrNotFound("order")
	}

	s.record(ctx, admin, actor, domain.AuthActionOrderStatus, domain.AuthEventSuccess)
	return nil
}

// CreateProduct adds a catalog item.
func (s *AdminServiceImpl) CreateProduct(ctx context.Context, actor ports.Actor, p *domain.Product) error {
	if _, err := s.requireActor(ctx, actor); err != nil {
		return err
	}
	if p.Title == "" || p.Price <= 0 {
		return apperror.Validation("product needs a title and a positive price")
	}

	p.CreatedAt = time.Now().UTC()
	if err := s.productRepo.Create(ctx, p); err != nil {
		return apperror.InternalError(fmt.Errorf("create product: %w", err))
	}
	return nil
}

// DeleteProduct removes a catalog item. Existing orders keep their line item
// snapshots.
func (s *AdminServiceImpl) DeleteProduct(ctx context.Context, actor ports.Actor, productID int64) error {
	if _, err := s.requireActor(ctx, actor); err != nil {
		return err
	}
	if err := s.productRepo.Delete(ctx, productID); err != nil {
		return apperror.ErrNotFound("product")
	}
	return nil
}

// ListAdmins returns all administrators.
func (s *AdminServiceImpl) ListAdmins(ctx context.Context, actor ports.Actor) ([]domain.AdminUser, error) {
	if _, err := s.requireActor(ctx, actor); err != nil {
		return nil, err
	}
	admins, err := s.adminRepo.List(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list admins: %w", err))
	}
	return admins, nil
}

// CreateAdmin registers a new administrator.
func (s *AdminServiceImpl) CreateAdmin(ctx context.Context, actor ports.Actor, req ports.CreateAdminRequest) (*domain.AdminUser, error) {
	admin, err := s.requireActor(ctx, actor)
	if err != nil {
		return nil, err
	}
	if req.Username == "" || len(req.Password) < 8 {
		return nil, apperror.Validation("username and a password of at least 8 characters are required")
	}

	passwordHash, err := s.hashSvc.Hash(req.Password)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("hash password: %w", err))
	}

	role := req.Role
	if role == "" {
		role = "admin"
	}
	newAdmin := &domain.AdminUser{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         role,
		IsActive:     true,
		CreatedBy:    &admin.ID,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.adminRepo.Create(ctx, newAdmin); err != nil {
		if errors.Is(err, ports.ErrDuplicateKey) {
			return nil, apperror.ErrUsernameExists()
		}
		return nil, apperror.InternalError(fmt.Errorf("create admin: %w", err))
	}

	s.record(ctx, admin, actor, domain.AuthActionAdminCreate, domain.AuthEventSuccess)
	return newAdmin, nil
}

// SetAdminStatus activates or deactivates an administrator. Actors may not
// deactivate themselves.
func (s *AdminServiceImpl) SetAdminStatus(ctx context.Context, actor ports.Actor, targetAdminID int64, active bool) error {
	admin, err := s.requireActor(ctx, actor)
	if err != nil {
		return err
	}
	if targetAdminID == admin.ID && !active {
		return apperror.ErrSelfLockoutDenied()
	}

	if err := s.adminRepo.SetActive(ctx, targetAdminID, active); err != nil {
		return apperror.ErrNotFound("admin")
	}

	s.record(ctx, admin, actor, domain.AuthActionAdminStatus, domain.AuthEventSuccess)
	return nil
}

// DeleteAdmin removes an administrator. Self-deletion is refused for the same
// reason as self-deactivation.
func (s *AdminServiceImpl) DeleteAdmin(ctx context.Context, actor ports.Actor, targetAdminID int64) error {
	admin, err := s.requireActor(ctx, actor)
	if err != nil {
		return err
	}
	if targetAdminID == admin.ID {
		return apperror.ErrSelfLockoutDenied()
	}

	if err := s.adminRepo.Delete(ctx, targetAdminID); err != nil {
		return apperror.ErrNotFound("admin")
	}

	s.record(ctx, admin, actor, domain.AuthActionAdminDelete, domain.AuthEventSuccess)
	return nil
}

// SetSiteEnabled flips the storefront kill-switch.
func (s *AdminServiceImpl) SetSiteEnabled(ctx context.Context, actor ports.Actor, enabled bool) error {
	admin, err := s.requireActor(ctx, actor)
	if err != nil {
		return err
	}

	if err := s.settingsRepo.SetSiteEnabled(ctx, enabled); err != nil {
		return apperror.InternalError(fmt.Errorf("set site status: %w", err))
	}

	s.record(ctx, admin, actor, domain.AuthActionSiteToggle, domain.AuthEventSuccess)
	s.log.Info().Bool("enabled", enabled).Str("admin", admin.Username).Msg("storefront toggled")
	return nil
}

// Stats aggregates dashboard figures.
func (s *AdminServiceImpl) Stats(ctx context.Context, actor ports.Actor) (*ports.MarketStats, error) {
	if _, err := s.requireActor(ctx, actor); err != nil {
		return nil, err
	}

	accounts, err := s.accountRepo.Count(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("count accounts: %w", err))
	}
	orderStats, err := s.orderRepo.Stats(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("order stats: %w", err))
	}
	entries, err := s.txRepo.Count(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("count transactions: %w", err))
	}

	return &ports.MarketStats{
		Accounts:        accounts,
		Orders:          orderStats.TotalOrders,
		FulfilledOrders: orderStats.FulfilledOrders,
		Revenue:         orderStats.Revenue,
		LedgerEntries:   entries,
	}, nil
}

// ListAuthEvents returns the latest audit records.
func (s *AdminServiceImpl) ListAuthEvents(ctx context.Context, actor ports.Actor, limit int) ([]domain.AuthEvent, error) {
	if _, err := s.requireActor(ctx, actor); err != nil {
		return nil, err
	}
	return s.audit.List(ctx, limit)
}
