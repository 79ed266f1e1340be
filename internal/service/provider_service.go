package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Freeeeeet/calm_scheduler/internal/model"
	"go.uber.org/zap"
)

// ProviderStore хранилище провайдеров, в проде repository.ProviderRepository
type ProviderStore interface {
	Create(ctx context.Context, provider *model.Provider) error
	GetByTelegramID(ctx context.Context, telegramID int64) (*model.Provider, error)
}

var ErrEmptyDisplayName = errors.New("display name is required")

type ProviderService struct {
	providerRepo ProviderStore
	logger       *zap.Logger
}

func NewProviderService(providerRepo ProviderStore, logger *zap.Logger) *ProviderService {
	return &ProviderService{
		providerRepo: providerRepo,
		logger:       logger,
	}
}

// Register привязывает Telegram-аккаунт к новому провайдеру.
// Если аккаунт уже привязан, возвращает существующего провайдера.
func (s *ProviderService) Register(ctx context.Context, telegramID int64, displayName string, group model.Group) (*model.Provider, error) {
	existing, err := s.providerRepo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("get provider: %w", err)
	}

	if existing != nil {
		s.logger.Info("Provider already registered",
			zap.Int64("provider_id", existing.ID),
			zap.Int64("telegram_id", telegramID))
		return existing, nil
	}

	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, ErrEmptyDisplayName
	}

	provider := &model.Provider{
		TelegramID:  &telegramID,
		DisplayName: displayName,
		Group:       group,
	}

	if err := s.providerRepo.Create(ctx, provider); err != nil {
		s.logger.Error("Failed to create provider",
			zap.Int64("telegram_id", telegramID),
			zap.Error(err))
		return nil, fmt.Errorf("create provider: %w", err)
	}

	s.logger.Info("Provider registered",
		zap.Int64("provider_id", provider.ID),
		zap.Int64("telegram_id", telegramID),
		zap.String("group", string(group)))

	return provider, nil
}

// GetByTelegramID получает провайдера по Telegram ID, nil если не найден
func (s *ProviderService) GetByTelegramID(ctx context.Context, telegramID int64) (*model.Provider, error) {
	return s.providerRepo.GetByTelegramID(ctx, telegramID)
}
