package service

import (
	"context"
	"fmt"
	"time"

	"gameserver-market/config"
	"gameserver-market/internal/core/domain"
	"gameserver-market/internal/core/ports"
	"gameserver-market/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// LedgerServiceImpl implements ports.LedgerService. It is the only writer of
// account balances: every mutation locks the account row, appends exactly one
// transaction and adjusts the balance in the same database transaction.
type LedgerServiceImpl struct {
	accountRepo ports.AccountRepository
	txRepo      ports.TransactionRepository
	transactor  ports.DBTransactor
	cfg         config.LedgerConfig
	log         zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl.
func NewLedgerService(
	accountRepo ports.AccountRepository,
	txRepo ports.TransactionRepository,
	transactor ports.DBTransactor,
	cfg config.LedgerConfig,
	log zerolog.Logger,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		accountRepo: accountRepo,
		txRepo:      txRepo,
		transactor:  transactor,
		cfg:         cfg,
		log:         log,
	}
}

// Deposit credits the account with a deposit or admin_credit entry.
func (s *LedgerServiceImpl) Deposit(ctx context.Context, req ports.DepositRequest) (*ports.BalanceMutation, error) {
	if req.Amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	if req.Kind != domain.TransactionKindDeposit && req.Kind != domain.TransactionKindAdminCredit {
		return nil, apperror.Validation("unsupported credit kind")
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Admin credits land regardless of status; player deposits respect the
	// blocked-mutations switch.
	gateBlocked := req.Kind == domain.TransactionKindDeposit && !s.cfg.AllowBlockedMutations
	mutation, err := s.apply(ctx, dbTx, req.AccountID, req.Amount, req.Kind, req.Description, gateBlocked)
	if err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Int64("account_id", req.AccountID).
		Int64("amount", req.Amount).
		Str("kind", string(req.Kind)).
		Int64("new_balance", mutation.NewBalance).
		Msg("credit applied")

	return mutation, nil
}

// Debit charges the account for a purchase.
func (s *LedgerServiceImpl) Debit(ctx context.Context, accountID int64, amount int64, description string) (*ports.BalanceMutation, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	mutation, err := s.DebitInTx(ctx, dbTx, accountID, amount, description)
	if err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}
	return mutation, nil
}

// DebitInTx appends a purchase debit inside a caller-owned transaction. The
// caller commits; checkout uses this to persist the order atomically with its
// ledger entry.
func (s *LedgerServiceImpl) DebitInTx(ctx context.Context, tx pgx.Tx, accountID int64, amount int64, description string) (*ports.BalanceMutation, error) {
	if amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	mutation, err := s.apply(ctx, tx, accountID, -amount, domain.TransactionKindPurchaseDebit, description, !s.cfg.AllowBlockedMutations)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int64("account_id", accountID).
		Int64("amount", amount).
		Int64("new_balance", mutation.NewBalance).
		Msg("debit applied")

	return mutation, nil
}

// Reset appends a single offsetting entry bringing the balance to zero. A
// reset of an already-zero balance appends a zero-amount entry; the history
// keeps a record of the administrative action either way.
func (s *LedgerServiceImpl) Reset(ctx context.Context, accountID int64) (*ports.BalanceMutation, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	account, err := s.accountRepo.GetByIDForUpdate(ctx, dbTx, accountID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock account: %w", err))
	}
	if account == nil {
		return nil, apperror.ErrNotFound("account")
	}

	delta := -account.Balance
	newBalance, applied, err := s.accountRepo.AdjustBalance(ctx, dbTx, accountID, delta)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("adjust balance: %w", err))
	}
	if !applied {
		// Cannot happen while the row lock is held: the delta was computed
		// from the locked balance.
		return nil, apperror.InternalError(fmt.Errorf("reset guard rejected delta %d for account %d", delta, accountID))
	}

	txn := &domain.Transaction{
		AccountID:   accountID,
		Amount:      delta,
		Kind:        domain.TransactionKindResetAdjustment,
		Description: "balance reset",
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create transaction: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Int64("account_id", accountID).
		Int64("offset", delta).
		Msg("balance reset")

	return &ports.BalanceMutation{NewBalance: newBalance, Transaction: txn}, nil
}

// GetBalance returns the balance snapshot for an account.
func (s *LedgerServiceImpl) GetBalance(ctx context.Context, accountID int64) (*ports.BalanceInfo, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get account: %w", err))
	}
	if account == nil {
		return nil, apperror.ErrNotFound("account")
	}
	return &ports.BalanceInfo{
		AccountID: account.ID,
		Username:  account.Username,
		Balance:   account.Balance,
	}, nil
}

// ListTransactions returns a page of the account's ledger history.
func (s *LedgerServiceImpl) ListTransactions(ctx context.Context, accountID int64, limit, offset int) ([]domain.Transaction, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get account: %w", err))
	}
	if account == nil {
		return nil, apperror.ErrNotFound("account")
	}

	if limit <= 0 {
		limit = s.cfg.TransactionPageSize
	}
	if offset < 0 {
		offset = 0
	}

	txns, err := s.txRepo.ListByAccount(ctx, accountID, limit, offset)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list transactions: %w", err))
	}
	return txns, nil
}

// apply locks the account, adjusts the balance by delta and appends the
// matching ledger entry. It runs inside the caller's database transaction.
func (s *LedgerServiceImpl) apply(
	ctx context.Context,
	dbTx pgx.Tx,
	accountID int64,
	delta int64,
	kind domain.TransactionKind,
	description string,
	gateBlocked bool,
) (*ports.BalanceMutation, error) {
	account, err := s.accountRepo.GetByIDForUpdate(ctx, dbTx, accountID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock account: %w", err))
	}
	if account == nil {
		return nil, apperror.ErrNotFound("account")
	}
	if gateBlocked && account.IsBlocked() {
		return nil, apperror.ErrBlockedAccount()
	}

	if delta < 0 && account.Balance+delta < 0 {
		return nil, apperror.ErrInsufficientFunds()
	}

	newBalance, applied, err := s.accountRepo.AdjustBalance(ctx, dbTx, accountID, delta)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("adjust balance: %w", err))
	}
	if !applied {
		// Store-level guard rejected the update. The row lock makes this
		// unreachable for the in-service check above, but the guard stays as
		// the final defense.
		return nil, apperror.ErrInsufficientFunds()
	}

	txn := &domain.Transaction{
		AccountID:   accountID,
		Amount:      delta,
		Kind:        kind,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create transaction: %w", err))
	}

	return &ports.BalanceMutation{NewBalance: newBalance, Transaction: txn}, nil
}
