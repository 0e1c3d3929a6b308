package service

import (
	"context"
	"fmt"
	"time"

	"gameserver-market/internal/core/domain"
	"gameserver-market/internal/core/ports"
	"gameserver-market/pkg/apperror"
)

// AuthServiceImpl implements ports.AuthService. Player identity is owned by
// the game server's own auth; this service only signs in administrators.
type AuthServiceImpl struct {
	adminRepo ports.AdminRepository
	hashSvc   ports.HashService
	tokenSvc  ports.TokenService
	audit     ports.AuditService
}

// NewAuthService creates a new AuthServiceImpl.
func NewAuthService(
	adminRepo ports.AdminRepository,
	hashSvc ports.HashService,
	tokenSvc ports.TokenService,
	audit ports.AuditService,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		adminRepo: adminRepo,
		hashSvc:   hashSvc,
		tokenSvc:  tokenSvc,
		audit:     audit,
	}
}

// AdminLogin verifies credentials and issues a session token. Both outcomes
// leave an auth event; failures never reveal which check rejected the login.
func (s *AuthServiceImpl) AdminLogin(ctx context.Context, username, password, ip, userAgent string) (*ports.AdminSession, error) {
	admin, err := s.adminRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get admin: %w", err))
	}

	fail := func() (*ports.AdminSession, error) {
		s.audit.Record(ctx, &domain.AuthEvent{
			ActorName: username,
			Action:    domain.AuthActionAdminLogin,
			IP:        ip,
			UserAgent: userAgent,
			Result:    domain.AuthEventFailure,
			CreatedAt: time.Now().UTC(),
		})
		return nil, apperror.ErrInvalidCredentials()
	}

	if admin == nil || !admin.IsActive {
		return fail()
	}

	match, err := s.hashSvc.Verify(password, admin.PasswordHash)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("verify password: %w", err))
	}
	if !match {
		return fail()
	}

	token, expiry, err := s.tokenSvc.Generate(admin.ID, admin.Username)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate token: %w", err))
	}

	s.audit.Record(ctx, &domain.AuthEvent{
		ActorID:   &admin.ID,
		ActorName: admin.Username,
		Action:    domain.AuthActionAdminLogin,
		IP:        ip,
		UserAgent: userAgent,
		Result:    domain.AuthEventSuccess,
		CreatedAt: time.Now().UTC(),
	})

	return &ports.AdminSession{
		Token:  token,
		Expiry: expiry,
		Admin:  admin,
	}, nil
}
