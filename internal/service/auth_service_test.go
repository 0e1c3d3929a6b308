package service

import (
	"context"
	"testing"
	"time"

	"gameserver-market/internal/core/domain"
	"gameserver-market/internal/core/ports/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type authTestDeps struct {
	svc       *AuthServiceImpl
	adminRepo *mocks.MockAdminRepository
	hashSvc   *mocks.MockHashService
	tokenSvc  *mocks.MockTokenService
	audit     *mocks.MockAuditService
	ctrl      *gomock.Controller
}

func setupAuthService(t *testing.T) *authTestDeps {
	ctrl := gomock.NewController(t)
	d := &authTestDeps{
		adminRepo: mocks.NewMockAdminRepository(ctrl),
		hashSvc:   mocks.NewMockHashService(ctrl),
		tokenSvc:  mocks.NewMockTokenService(ctrl),
		audit:     mocks.NewMockAuditService(ctrl),
		ctrl:      ctrl,
	}
	d.svc = NewAuthService(d.adminRepo, d.hashSvc, d.tokenSvc, d.audit)
	return d
}

func TestAuthService_AdminLogin_Success(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	admin := &domain.AdminUser{ID: 1, Username: "root_admin", PasswordHash: "$argon2id$hash", IsActive: true}
	expiry := time.Now().Add(12 * time.Hour)

	d.adminRepo.EXPECT().GetByUsername(ctx, "root_admin").Return(admin, nil)
	d.hashSvc.EXPECT().Verify("correct-password", "$argon2id$hash").Return(true, nil)
	d.tokenSvc.EXPECT().Generate(int64(1), "root_admin").Return("jwt-token", expiry, nil)
	d.audit.EXPECT().Record(ctx, gomock.Any()).Do(func(_ context.Context, e *domain.AuthEvent) {
		assert.Equal(t, domain.AuthActionAdminLogin, e.Action)
		assert.Equal(t, domain.AuthEventSuccess, e.Result)
		require.NotNil(t, e.ActorID)
		assert.Equal(t, int64(1), *e.ActorID)
	})

	session, err := d.svc.AdminLogin(ctx, "root_admin", "correct-password", "10.0.0.1", "curl/8")
	require.NoError(t, err)
	assert.Equal(t, "jwt-token", session.Token)
	assert.Equal(t, expiry, session.Expiry)
	assert.Equal(t, "root_admin", session.Admin.Username)
}

func TestAuthService_AdminLogin_WrongPassword(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	admin := &domain.AdminUser{ID: 1, Username: "root_admin", PasswordHash: "$argon2id$hash", IsActive: true}

	d.adminRepo.EXPECT().GetByUsername(ctx, "root_admin").Return(admin, nil)
	d.hashSvc.EXPECT().Verify("wrong-password", "$argon2id$hash").Return(false, nil)
	d.audit.EXPECT().Record(ctx, gomock.Any()).Do(func(_ context.Context, e *domain.AuthEvent) {
		assert.Equal(t, domain.AuthEventFailure, e.Result)
	})

	_, err := d.svc.AdminLogin(ctx, "root_admin", "wrong-password", "10.0.0.1", "curl/8")
	assert.Equal(t, "AUTH_001", appErrorCode(t, err))
}

func TestAuthService_AdminLogin_UnknownUser(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()

	d.adminRepo.EXPECT().GetByUsername(ctx, "ghost").Return(nil, nil)
	d.audit.EXPECT().Record(ctx, gomock.Any())

	_, err := d.svc.AdminLogin(ctx, "ghost", "any", "10.0.0.1", "curl/8")
	assert.Equal(t, "AUTH_001", appErrorCode(t, err))
}

func TestAuthService_AdminLogin_InactiveAdmin(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	admin := &domain.AdminUser{ID: 1, Username: "root_admin", PasswordHash: "$argon2id$hash", IsActive: false}

	d.adminRepo.EXPECT().GetByUsername(ctx, "root_admin").Return(admin, nil)
	d.audit.EXPECT().Record(ctx, gomock.Any())

	// Same error as wrong password: the response never reveals which check
	// rejected the login.
	_, err := d.svc.AdminLogin(ctx, "root_admin", "correct-password", "10.0.0.1", "curl/8")
	assert.Equal(t, "AUTH_001", appErrorCode(t, err))
}
