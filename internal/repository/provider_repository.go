package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/calm_scheduler/internal/model"
	"github.com/Freeeeeet/calm_scheduler/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProviderRepository struct {
	*base.Repository
}

func NewProviderRepository(pool *pgxpool.Pool) *ProviderRepository {
	return &ProviderRepository{Repository: base.NewRepository(pool)}
}

// Create создаёт провайдера
func (r *ProviderRepository) Create(ctx context.Context, provider *model.Provider) error {
	query := `
		INSERT INTO providers (telegram_id, display_name, provider_group)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.QueryRow(
		ctx, query,
		provider.TelegramID,
		provider.DisplayName,
		string(provider.Group),
	).Scan(&provider.ID, &provider.CreatedAt)

	if err != nil {
		return fmt.Errorf("create provider: %w", err)
	}

	return nil
}

// GetByTelegramID получает провайдера по Telegram ID
func (r *ProviderRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*model.Provider, error) {
	query := `
		SELECT id, telegram_id, display_name, provider_group, created_at
		FROM providers
		WHERE telegram_id = $1
	`

	var (
		provider model.Provider
		group    string
	)

	err := r.QueryRow(ctx, query, telegramID).Scan(
		&provider.ID,
		&provider.TelegramID,
		&provider.DisplayName,
		&group,
		&provider.CreatedAt,
	)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil // Провайдер не найден
		}
		return nil, fmt.Errorf("get provider by telegram id: %w", err)
	}

	provider.Group = model.Group(group)
	return &provider, nil
}
