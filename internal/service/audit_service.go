package service

import (
	"context"
	"fmt"

	"gameserver-market/internal/core/domain"
	"gameserver-market/internal/core/ports"
	"gameserver-market/pkg/apperror"

	"github.com/rs/zerolog"
)

type auditService struct {
	repo ports.AuthEventRepository
	log  zerolog.Logger
}

// NewAuditService creates a new audit service.
// If repo is nil, audit events are only written to the logger.
func NewAuditService(repo ports.AuthEventRepository, log zerolog.Logger) ports.AuditService {
	return &auditService{repo: repo, log: log}
}

// Record persists an audit event asynchronously (fire-and-forget).
func (s *auditService) Record(ctx context.Context, event *domain.AuthEvent) {
	go func() {
		line := s.log.Info()
		if event.ActorID != nil {
			line = line.Int64("actor_id", *event.ActorID)
		}
		line.
			Str("actor", event.ActorName).
			Str("action", string(event.Action)).
			Str("ip", event.IP).
			Str("result", string(event.Result)).
			Msg("audit")

		if s.repo != nil {
			if err := s.repo.Create(context.Background(), event); err != nil {
				s.log.Warn().Err(err).Str("action", string(event.Action)).Msg("failed to persist audit event")
			}
		}
	}()
}

// List returns the most recent audit events.
func (s *auditService) List(ctx context.Context, limit int) ([]domain.AuthEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	events, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list auth events: %w", err))
	}
	return events, nil
}
