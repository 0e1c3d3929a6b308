package service

import (
	"context"
	"testing"

	"gameserver-market/internal/core/domain"
	"gameserver-market/internal/core/ports"
	"gameserver-market/internal/core/ports/mocks"
	"gameserver-market/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type adminTestDeps struct {
	svc          *AdminServiceImpl
	adminRepo    *mocks.MockAdminRepository
	accountRepo  *mocks.MockAccountRepository
	orderRepo    *mocks.MockOrderRepository
	productRepo  *mocks.MockProductRepository
	txRepo       *mocks.MockTransactionRepository
	settingsRepo *mocks.MockSettingsRepository
	ledger       *mocks.MockLedgerService
	hashSvc      *mocks.MockHashService
	audit        *mocks.MockAuditService
	ctrl         *gomock.Controller
}

func setupAdminService(t *testing.T) *adminTestDeps {
	ctrl := gomock.NewController(t)
	d := &adminTestDeps{
		adminRepo:    mocks.NewMockAdminRepository(ctrl),
		accountRepo:  mocks.NewMockAccountRepository(ctrl),
		orderRepo:    mocks.NewMockOrderRepository(ctrl),
		productRepo:  mocks.NewMockProductRepository(ctrl),
		txRepo:       mocks.NewMockTransactionRepository(ctrl),
		settingsRepo: mocks.NewMockSettingsRepository(ctrl),
		ledger:       mocks.NewMockLedgerService(ctrl),
		hashSvc:      mocks.NewMockHashService(ctrl),
		audit:        mocks.NewMockAuditService(ctrl),
		ctrl:         ctrl,
	}
	d.svc = NewAdminService(
		d.adminRepo, d.accountRepo, d.orderRepo, d.productRepo, d.txRepo,
		d.settingsRepo, d.ledger, d.hashSvc, d.audit, zerolog.Nop(),
	)
	return d
}

func activeAdmin(id int64) *domain.AdminUser {
	return &domain.AdminUser{ID: id, Username: "root_admin", Role: "admin", IsActive: true}
}

func testActor() ports.Actor {
	return ports.Actor{AdminID: 1, ClientIP: "10.0.0.1"}
}

func TestAdminService_Credit_Success(t *testing.T) {
	d := setupAdminService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	actor := testActor()

	d.adminRepo.EXPECT().GetByID(ctx, int64(1)).Return(activeAdmin(1), nil)
	d.ledger.EXPECT().Deposit(ctx, ports.DepositRequest{
		AccountID:   7,
		Amount:      5000,
		Kind:        domain.TransactionKindAdminCredit,
		Description: "event reward",
	}).Return(&ports.BalanceMutation{NewBalance: 15000, Transaction: &domain.Transaction{ID: 42}}, nil)
	d.audit.EXPECT().Record(ctx, gomock.Any()).Do(func(_ context.Context, e *domain.AuthEvent) {
		assert.Equal(t, domain.AuthActionAdminCredit, e.Action)
		assert.Equal(t, domain.AuthEventSuccess, e.Result)
	})

	result, err := d.svc.Credit(ctx, actor, 7, 5000, "event reward")
	require.NoError(t, err)
	assert.Equal(t, int64(15000), result.NewBalance)
}

func TestAdminService_Credit_FailureIsAudited(t *testing.T) {
	d := setupAdminService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()

	d.adminRepo.EXPECT().GetByID(ctx, int64(1)).Return(activeAdmin(1), nil)
	d.ledger.EXPECT().Deposit(ctx, gomock.Any()).Return(nil, apperror.ErrInvalidAmount())
	d.audit.EXPECT().Record(ctx, gomock.Any()).Do(func(_ context.Context, e *domain.AuthEvent) {
		assert.Equal(t, domain.AuthActionBalanceFailure, e.Action)
		assert.Equal(t, domain.AuthEventFailure, e.Result)
	})

	_, err := d.svc.Credit(ctx, testActor(), 7, -5, "")
	assert.Equal(t, "LED_002", appErrorCode(t, err))
}

func TestAdminService_InactiveActorForbidden(t *testing.T) {
	d := setupAdminService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	inactive := activeAdmin(1)
	inactive.IsActive = false

	d.adminRepo.EXPECT().GetByID(ctx, int64(1)).Return(inactive, nil)

	_, err := d.svc.Credit(ctx, testActor(), 7, 5000, "")
	assert.Equal(t, "ADM_001", appErrorCode(t, err))
}

func TestAdminService_UnknownActorForbidden(t *testing.T) {
	d := setupAdminService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.adminRepo.EXPECT().GetByID(ctx, int64(1)).Return(nil, nil)

	_, err := d.svc.ListAccounts(ctx, testActor())
	assert.Equal(t, "ADM_001", appErrorCode(t, err))
}

func TestAdminService_ResetBalance(t *testing.T) {
	d := setupAdminService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()

	d.adminRepo.EXPECT().GetByID(ctx, int64(1)).Return(activeAdmin(1), nil)
	d.ledger.EXPECT().Reset(ctx, int64(7)).Return(&ports.BalanceMutation{
		NewBalance:  0,
		Transaction: &domain.Transaction{ID: 42, Amount: -800, Kind: domain.TransactionKindResetAdjustment},
	}, nil)
	d.audit.EXPECT().Record(ctx, gomock.Any()).Do(func(_ context.Context, e *domain.AuthEvent) {
		assert.Equal(t, domain.AuthActionBalanceReset, e.Action)
	})

	result, err := d.svc.ResetBalance(ctx, testActor(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.NewBalance)
}

func TestAdminService_SetAccountStatus(t *testing.T) {
	d := setupAdminService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()

	d.adminRepo.EXPECT().GetByID(ctx, int64(1)).Return(activeAdmin(1), nil)
	d.accountRepo.EXPECT().UpdateStatus(ctx, int64(7), domain.AccountStatusBlocked).Return(nil)
	d.audit.EXPECT().Record(ctx, gomock.Any())

	err := d.svc.SetAccountStatus(ctx, testActor(), 7, domain.AccountStatusBlocked)
	assert.NoError(t, err)
}

func TestAdminService_SetAccountStatus_UnknownStatus(t *testing.T) {
	d := setupAdminService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.adminRepo.EXPECT().GetByID(ctx, int64(1)).Return(activeAdmin(1), nil)

	err := d.svc.SetAccountStatus(ctx, testActor(), 7, domain.AccountStatus("banned"))
	assert.Error(t, err)
}

func TestAdminService_CreateAdmin_Success(t *testing.T) {
	d := setupAdminService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()

	d.adminRepo.EXPECT().GetByID(ctx, int64(1)).Return(activeAdmin(1), nil)
	d.hashSvc.EXPECT().Hash("s3cret-pass").Return("$argon2id$hash", nil)
	d.adminRepo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, a *domain.AdminUser) error {
			assert.Equal(t, "moderator_two", a.Username)
			assert.Equal(t, "$argon2id$hash", a.PasswordHash)
			assert.True(t, a.IsActive)
			require.NotNil(t, a.CreatedBy)
			assert.Equal(t, int64(1), *a.CreatedBy)
			a.ID = 2
			return nil
		})
	d.audit.EXPECT().Record(ctx, gomock.Any())

	admin, err := d.svc.CreateAdmin(ctx, testActor(), ports.CreateAdminRequest{
		Username: "moderator_two",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), admin.ID)
	assert.Equal(t, "admin", admin.Role)
}

func TestAdminService_CreateAdmin_DuplicateUsername(t *testing.T) {
	d := setupAdminService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()

	d.adminRepo.EXPECT().GetByID(ctx, int64(1)).Return(activeAdmin(1), nil)
	d.hashSvc.EXPECT().Hash(gomock.Any()).Return("$argon2id$hash", nil)
	d.adminRepo.EXPECT().Create(ctx, gomock.Any()).Return(ports.ErrDuplicateKey)

	_, err := d.svc.CreateAdmin(ctx, testActor(), ports.CreateAdminRequest{
		Username: "root_admin",
		Password: "s3cret-pass",
	})
	assert.Equal(t, "AUTH_003", appErrorCode(t, err))
}

func TestAdminService_CreateAdmin_WeakPassword(t *testing.T) {
	d := setupAdminService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.adminRepo.EXPECT().GetByID(ctx, int64(1)).Return(activeAdmin(1), nil)

	_, err := d.svc.CreateAdmin(ctx, testActor(), ports.CreateAdminRequest{
		Username: "moderator_two",
		Password: "short",
	})
	assert.Error(t, err)
}

func TestAdminService_SetAdminStatus_SelfLockoutDenied(t *testing.T) {
	d := setupAdminService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.adminRepo.EXPECT().GetByID(ctx, int64(1)).Return(activeAdmin(1), nil)

	err := d.svc.SetAdminStatus(ctx, testActor(), 1, false)
	assert.Equal(t, "ADM_002", appErrorCode(t, err))
}

func TestAdminService_SetAdminStatus_SelfReactivateAllowed(t *testing.T) {
	d := setupAdminService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.adminRepo.EXPECT().GetByID(ctx, int64(1)).Return(activeAdmin(1), nil)
	d.adminRepo.EXPECT().SetActive(ctx, int64(1), true).Return(nil)
	d.audit.EXPECT().Record(ctx, gomock.Any())

	err := d.svc.SetAdminStatus(ctx, testActor(), 1, true)
	assert.NoError(t, err)
}

func TestAdminService_DeleteAdmin_SelfDenied(t *testing.T) {
	d := setupAdminService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.adminRepo.EXPECT().GetByID(ctx, int64(1)).Return(activeAdmin(1), nil)

	err := d.svc.DeleteAdmin(ctx, testActor(), 1)
	assert.Equal(t, "ADM_002", appErrorCode(t, err))
}

func TestAdminService_SetSiteEnabled(t *testing.T) {
	d := setupAdminService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.adminRepo.EXPECT().GetByID(ctx, int64(1)).Return(activeAdmin(1), nil)
	d.settingsRepo.EXPECT().SetSiteEnabled(ctx, false).Return(nil)
	d.audit.EXPECT().Record(ctx, gomock.Any()).Do(func(_ context.Context, e *domain.AuthEvent) {
		assert.Equal(t, domain.AuthActionSiteToggle, e.Action)
	})

	err := d.svc.SetSiteEnabled(ctx, testActor(), false)
	assert.NoError(t, err)
}

func TestAdminService_Stats(t *testing.T) {
	d := setupAdminService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.adminRepo.EXPECT().GetByID(ctx, int64(1)).Return(activeAdmin(1), nil)
	d.accountRepo.EXPECT().Count(ctx).Return(int64(25), nil)
	d.orderRepo.EXPECT().Stats(ctx).Return(&ports.OrderStats{TotalOrders: 10, FulfilledOrders: 8, Revenue: 160000}, nil)
	d.txRepo.EXPECT().Count(ctx).Return(int64(120), nil)

	stats, err := d.svc.Stats(ctx, testActor())
	require.NoError(t, err)
	assert.Equal(t, int64(25), stats.Accounts)
	assert.Equal(t, int64(10), stats.Orders)
	assert.Equal(t, int64(8), stats.FulfilledOrders)
	assert.Equal(t, int64(160000), stats.Revenue)
	assert.Equal(t, int64(120), stats.LedgerEntries)
}
