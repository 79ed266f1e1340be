package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/calm_scheduler/internal/model"
	"github.com/Freeeeeet/calm_scheduler/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionRepository только чтение таблицы sessions
type SessionRepository struct {
	*base.Repository
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{Repository: base.NewRepository(pool)}
}

// ListByProvider получает сессии провайдера, старые первыми
func (r *SessionRepository) ListByProvider(ctx context.Context, providerID int64) ([]*model.Session, error) {
	query := `
		SELECT id, slot_id, expert_peer_id, student_id, status, created_at
		FROM sessions
		WHERE expert_peer_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.Query(ctx, query, providerID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*model.Session
	for rows.Next() {
		var (
			session model.Session
			status  string
		)
		err := rows.Scan(
			&session.ID,
			&session.SlotID,
			&session.ProviderID,
			&session.StudentID,
			&status,
			&session.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		session.Status = model.SessionStatus(status)
		sessions = append(sessions, &session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	return sessions, nil
}
