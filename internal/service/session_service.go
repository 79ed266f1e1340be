package service

import (
	"context"

	"github.com/Freeeeeet/calm_scheduler/internal/model"
	"go.uber.org/zap"
)

// SessionStore чтение сессий провайдера
type SessionStore interface {
	ListByProvider(ctx context.Context, providerID int64) ([]*model.Session, error)
}

type SessionService struct {
	store  SessionStore
	logger *zap.Logger
}

func NewSessionService(store SessionStore, logger *zap.Logger) *SessionService {
	return &SessionService{store: store, logger: logger}
}

// ListSessions получает сессии, записанные к провайдеру
func (s *SessionService) ListSessions(ctx context.Context, providerID int64) ([]*model.Session, error) {
	sessions, err := s.store.ListByProvider(ctx, providerID)
	if err != nil {
		s.logger.Error("Failed to list sessions",
			zap.Int64("provider_id", providerID),
			zap.Error(err))
		return nil, storeErr("list sessions", err)
	}
	return sessions, nil
}
