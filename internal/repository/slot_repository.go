package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/calm_scheduler/internal/model"
	"github.com/Freeeeeet/calm_scheduler/internal/repository/base"
	"github.com/Freeeeeet/calm_scheduler/internal/schedule"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const slotColumns = `id, provider_id, provider_group, day, start_time, end_time, created_at`

// SlotRepository хранилище слотов в PostgreSQL.
// Пересечения отсекает exclusion constraint таблицы provider_slots.
type SlotRepository struct {
	*base.Repository
}

func NewSlotRepository(pool *pgxpool.Pool) *SlotRepository {
	return &SlotRepository{Repository: base.NewRepository(pool)}
}

// FetchSlots получает слоты провайдера за день, по возрастанию start_time
func (r *SlotRepository) FetchSlots(ctx context.Context, providerID int64, day time.Time) ([]*model.Slot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM provider_slots
		WHERE provider_id = $1 AND day = $2
		ORDER BY start_time
	`

	rows, err := r.Query(ctx, query, providerID, model.DayOf(day))
	if err != nil {
		return nil, fmt.Errorf("fetch slots: %w", err)
	}
	return collectSlots(rows)
}

// FetchAllSlots слоты всех провайдеров за день, по возрастанию start_time
func (r *SlotRepository) FetchAllSlots(ctx context.Context, day time.Time) ([]*model.Slot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM provider_slots
		WHERE day = $1
		ORDER BY start_time, provider_id, id
	`

	rows, err := r.Query(ctx, query, model.DayOf(day))
	if err != nil {
		return nil, fmt.Errorf("fetch all slots: %w", err)
	}
	return collectSlots(rows)
}

// GetSlot получает слот по ID
func (r *SlotRepository) GetSlot(ctx context.Context, id int64) (*model.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM provider_slots WHERE id = $1`

	slot, err := scanSlot(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, schedule.ErrNotFound
		}
		return nil, fmt.Errorf("get slot by id: %w", err)
	}

	return slot, nil
}

// InsertSlot сохраняет слот, заполняет ID и CreatedAt
func (r *SlotRepository) InsertSlot(ctx context.Context, slot *model.Slot) error {
	if err := slot.Validate(); err != nil {
		return err
	}
	if err := insertSlot(ctx, r.Pool(), slot); err != nil {
		return classify("insert slot", err)
	}
	return nil
}

// DeleteSlot удаляет слот по ID
func (r *SlotRepository) DeleteSlot(ctx context.Context, id int64) error {
	affected, err := r.ExecAffected(ctx, `DELETE FROM provider_slots WHERE id = $1`, id)
	if err != nil {
		return classify("delete slot", err)
	}

	if affected == 0 {
		return schedule.ErrNotFound
	}

	return nil
}

// DeleteAllSlots удаляет все слоты провайдера за день, возвращает количество
func (r *SlotRepository) DeleteAllSlots(ctx context.Context, providerID int64, day time.Time) (int64, error) {
	affected, err := r.ExecAffected(ctx,
		`DELETE FROM provider_slots WHERE provider_id = $1 AND day = $2`,
		providerID, model.DayOf(day),
	)
	if err != nil {
		return 0, classify("delete all slots", err)
	}
	return affected, nil
}

// ReplaceSlot меняет окно слота: удаление и вставка в одной транзакции
func (r *SlotRepository) ReplaceSlot(ctx context.Context, oldID int64, slot *model.Slot) error {
	if err := slot.Validate(); err != nil {
		return err
	}

	err := r.InTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM provider_slots WHERE id = $1`, oldID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return schedule.ErrNotFound
		}
		return insertSlot(ctx, tx, slot)
	})
	if err != nil {
		return classify("replace slot", err)
	}

	return nil
}

// DeleteSlotsBefore удаляет прошедшие слоты без сессий
func (r *SlotRepository) DeleteSlotsBefore(ctx context.Context, day time.Time) (int64, error) {
	query := `
		DELETE FROM provider_slots ps
		WHERE ps.day < $1
		  AND NOT EXISTS (SELECT 1 FROM sessions s WHERE s.slot_id = ps.id)
	`

	affected, err := r.ExecAffected(ctx, query, model.DayOf(day))
	if err != nil {
		return 0, fmt.Errorf("delete slots before: %w", err)
	}
	return affected, nil
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func insertSlot(ctx context.Context, db queryRower, slot *model.Slot) error {
	query := `
		INSERT INTO provider_slots (provider_id, provider_group, day, start_time, end_time)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	return db.QueryRow(
		ctx, query,
		slot.ProviderID,
		string(slot.Group),
		model.DayOf(slot.Day),
		clockToPg(slot.StartTime),
		clockToPg(slot.EndTime),
	).Scan(&slot.ID, &slot.CreatedAt)
}

func collectSlots(rows pgx.Rows) ([]*model.Slot, error) {
	defer rows.Close()

	var slots []*model.Slot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch slots: %w", err)
	}

	return slots, nil
}

func scanSlot(row pgx.Row) (*model.Slot, error) {
	var (
		slot       model.Slot
		group      string
		start, end pgtype.Time
	)

	err := row.Scan(
		&slot.ID,
		&slot.ProviderID,
		&group,
		&slot.Day,
		&start,
		&end,
		&slot.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	slot.Group = model.Group(group)
	slot.StartTime = clockFromPg(start)
	slot.EndTime = clockFromPg(end)

	// Запись из базы проходит ту же проверку, что и при вставке
	if err := slot.Validate(); err != nil {
		return nil, err
	}

	return &slot, nil
}

// classify переводит ошибки PostgreSQL в ошибки планировщика
func classify(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, schedule.ErrNotFound):
		return err
	case base.IsExclusionViolation(err):
		return fmt.Errorf("%s: %w: %v", op, schedule.ErrOverlap, err)
	case base.IsForeignKeyViolation(err):
		return fmt.Errorf("%s: %w: %v", op, schedule.ErrSlotBooked, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

const microsecondsPerMinute = int64(time.Minute / time.Microsecond)

func clockToPg(c model.Clock) pgtype.Time {
	return pgtype.Time{Microseconds: int64(c) * microsecondsPerMinute, Valid: true}
}

func clockFromPg(t pgtype.Time) model.Clock {
	if !t.Valid {
		return -1
	}
	return model.Clock(t.Microseconds / microsecondsPerMinute)
}
