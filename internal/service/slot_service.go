package service

import (
	"context"
	"errors"
	"time"

	"github.com/Freeeeeet/calm_scheduler/internal/events"
	"github.com/Freeeeeet/calm_scheduler/internal/lock"
	"github.com/Freeeeeet/calm_scheduler/internal/model"
	"github.com/Freeeeeet/calm_scheduler/internal/schedule"
	"go.uber.org/zap"
)

// SlotStore внешнее хранилище слотов
type SlotStore interface {
	FetchSlots(ctx context.Context, providerID int64, day time.Time) ([]*model.Slot, error)
	FetchAllSlots(ctx context.Context, day time.Time) ([]*model.Slot, error)
	GetSlot(ctx context.Context, id int64) (*model.Slot, error)
	InsertSlot(ctx context.Context, slot *model.Slot) error
	DeleteSlot(ctx context.Context, id int64) error
	DeleteAllSlots(ctx context.Context, providerID int64, day time.Time) (int64, error)
	ReplaceSlot(ctx context.Context, oldID int64, slot *model.Slot) error
	DeleteSlotsBefore(ctx context.Context, day time.Time) (int64, error)
}

// SlotRequest окно, предложенное провайдером
type SlotRequest struct {
	ProviderID int64
	Group      model.Group
	Day        time.Time
	Start      model.Clock
	End        model.Clock
}

// Skipped кандидат из шаблона, который не прошёл проверку
type Skipped struct {
	Window model.Window
	Err    error
}

// FillResult результат заполнения дня по шаблону
type FillResult struct {
	Created []*model.Slot
	Skipped []Skipped
}

type SlotService struct {
	store     SlotStore
	locker    lock.Locker
	publisher events.Publisher
	policy    schedule.Policy
	logger    *zap.Logger
}

func NewSlotService(
	store SlotStore,
	locker lock.Locker,
	publisher events.Publisher,
	policy schedule.Policy,
	logger *zap.Logger,
) *SlotService {
	if locker == nil {
		locker = lock.NewKeyedMutex()
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &SlotService{
		store:     store,
		locker:    locker,
		publisher: publisher,
		policy:    policy,
		logger:    logger,
	}
}

// ListSlots получает слоты провайдера за день
func (s *SlotService) ListSlots(ctx context.Context, providerID int64, day time.Time) ([]*model.Slot, error) {
	slots, err := s.store.FetchSlots(ctx, providerID, model.DayOf(day))
	if err != nil {
		return nil, storeErr("fetch slots", err)
	}
	return slots, nil
}

// ListAllSlots слоты всех провайдеров за день по возрастанию start_time
func (s *SlotService) ListAllSlots(ctx context.Context, day time.Time) ([]*model.Slot, error) {
	slots, err := s.store.FetchAllSlots(ctx, model.DayOf(day))
	if err != nil {
		return nil, storeErr("fetch all slots", err)
	}
	return slots, nil
}

// CheckSlot проверяет окно без сохранения
func (s *SlotService) CheckSlot(ctx context.Context, req SlotRequest) (schedule.Accepted, error) {
	existing, err := s.store.FetchSlots(ctx, req.ProviderID, model.DayOf(req.Day))
	if err != nil {
		return schedule.Accepted{}, storeErr("fetch slots", err)
	}
	return s.policy.ProposeSlot(req.ProviderID, req.Day, req.Start, req.End, existing)
}

// AddSlot проверяет и сохраняет новое окно
func (s *SlotService) AddSlot(ctx context.Context, req SlotRequest) (*model.Slot, error) {
	log := s.logger.With(
		zap.Int64("provider_id", req.ProviderID),
		zap.String("day", model.FormatDay(req.Day)),
		zap.Stringer("start_time", req.Start),
		zap.Stringer("end_time", req.End),
	)

	var slot *model.Slot
	err := s.withProviderLock(ctx, req.ProviderID, func() error {
		accepted, err := s.CheckSlot(ctx, req)
		if err != nil {
			log.Info("Slot rejected", zap.Error(err))
			return err
		}

		slot = accepted.Slot(req.Group)
		if err := s.store.InsertSlot(ctx, slot); err != nil {
			if errors.Is(err, schedule.ErrOverlap) {
				// Конкурентная запись успела раньше: отдаём конкретный конфликт
				return s.resolveOverlap(ctx, req, 0, err)
			}
			log.Error("Failed to insert slot", zap.Error(err))
			return writeErr("insert slot", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("Slot created", zap.Int64("slot_id", slot.ID))
	s.publish(ctx, events.NewSlotEvent(events.SlotCreated, slot))

	return slot, nil
}

// DeleteSlot удаляет слот по ID
func (s *SlotService) DeleteSlot(ctx context.Context, slotID int64) error {
	slot, err := s.store.GetSlot(ctx, slotID)
	if err != nil {
		return storeErr("get slot", err)
	}
	return s.deleteSlot(ctx, slot)
}

// DeleteProviderSlot удаляет слот, только если он принадлежит провайдеру.
// Чужой слот неотличим от несуществующего.
func (s *SlotService) DeleteProviderSlot(ctx context.Context, providerID, slotID int64) error {
	slot, err := s.store.GetSlot(ctx, slotID)
	if err != nil {
		return storeErr("get slot", err)
	}
	if slot.ProviderID != providerID {
		return schedule.ErrNotFound
	}
	return s.deleteSlot(ctx, slot)
}

func (s *SlotService) deleteSlot(ctx context.Context, slot *model.Slot) error {
	if err := s.store.DeleteSlot(ctx, slot.ID); err != nil {
		s.logger.Warn("Failed to delete slot",
			zap.Int64("slot_id", slot.ID),
			zap.Error(err))
		return storeErr("delete slot", err)
	}

	s.logger.Info("Slot deleted",
		zap.Int64("slot_id", slot.ID),
		zap.Int64("provider_id", slot.ProviderID))
	s.publish(ctx, events.NewSlotEvent(events.SlotDeleted, slot))

	return nil
}

// ClearDay удаляет все слоты провайдера за день
func (s *SlotService) ClearDay(ctx context.Context, providerID int64, day time.Time) (int64, error) {
	day = model.DayOf(day)

	var count int64
	err := s.withProviderLock(ctx, providerID, func() error {
		var err error
		count, err = s.store.DeleteAllSlots(ctx, providerID, day)
		if err != nil {
			s.logger.Error("Failed to clear day",
				zap.Int64("provider_id", providerID),
				zap.String("day", model.FormatDay(day)),
				zap.Error(err))
			return storeErr("delete all slots", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("Day cleared",
		zap.Int64("provider_id", providerID),
		zap.String("day", model.FormatDay(day)),
		zap.Int64("count", count))

	if count > 0 {
		s.publish(ctx, events.NewClearedEvent(providerID, day, count))
	}

	return count, nil
}

// MoveSlot меняет окно слота. Слот не изменяется на месте: старый удаляется, новый вставляется.
func (s *SlotService) MoveSlot(ctx context.Context, providerID, slotID int64, start, end model.Clock) (*model.Slot, error) {
	var moved *model.Slot
	err := s.withProviderLock(ctx, providerID, func() error {
		current, err := s.store.GetSlot(ctx, slotID)
		if err != nil {
			return storeErr("get slot", err)
		}
		if current.ProviderID != providerID {
			return schedule.ErrNotFound
		}

		existing, err := s.store.FetchSlots(ctx, providerID, current.Day)
		if err != nil {
			return storeErr("fetch slots", err)
		}

		accepted, err := s.policy.ProposeSlot(providerID, current.Day, start, end, withoutSlot(existing, slotID))
		if err != nil {
			s.logger.Info("Slot move rejected",
				zap.Int64("slot_id", slotID),
				zap.Error(err))
			return err
		}

		moved = accepted.Slot(current.Group)
		if err := s.store.ReplaceSlot(ctx, slotID, moved); err != nil {
			if errors.Is(err, schedule.ErrOverlap) {
				req := SlotRequest{ProviderID: providerID, Group: current.Group, Day: current.Day, Start: start, End: end}
				return s.resolveOverlap(ctx, req, slotID, err)
			}
			return writeErr("replace slot", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Slot moved",
		zap.Int64("previous_slot_id", slotID),
		zap.Int64("slot_id", moved.ID),
		zap.Stringer("window", moved.Window()))

	e := events.NewSlotEvent(events.SlotMoved, moved)
	e.PreviousID = slotID
	s.publish(ctx, e)

	return moved, nil
}

// FillDay создаёт слоты по шаблону, пропуская кандидатов с конфликтами
func (s *SlotService) FillDay(ctx context.Context, providerID int64, group model.Group, day time.Time, tpl schedule.Template) (*FillResult, error) {
	day = model.DayOf(day)

	result := &FillResult{}
	err := s.withProviderLock(ctx, providerID, func() error {
		existing, err := s.store.FetchSlots(ctx, providerID, day)
		if err != nil {
			return storeErr("fetch slots", err)
		}

		for candidate := range schedule.BulkGenerateDefaultSlots(providerID, day, tpl) {
			accepted, err := s.policy.ProposeSlot(providerID, day, candidate.Window.Start, candidate.Window.End, existing)
			if err != nil {
				result.Skipped = append(result.Skipped, Skipped{Window: candidate.Window, Err: err})
				continue
			}

			slot := accepted.Slot(group)
			if err := s.store.InsertSlot(ctx, slot); err != nil {
				if errors.Is(err, schedule.ErrOverlap) {
					result.Skipped = append(result.Skipped, Skipped{Window: candidate.Window, Err: err})
					continue
				}
				s.logger.Error("Failed to insert template slot",
					zap.Int64("provider_id", providerID),
					zap.Stringer("window", candidate.Window),
					zap.Error(err))
				return writeErr("insert slot", err)
			}

			existing = append(existing, slot)
			result.Created = append(result.Created, slot)
		}
		return nil
	})

	// Созданные до ошибки слоты уже сохранены, события о них нужны в любом случае
	for _, slot := range result.Created {
		s.publish(ctx, events.NewSlotEvent(events.SlotCreated, slot))
	}

	if err != nil {
		if len(result.Created) == 0 {
			return nil, err
		}
		return result, err
	}

	s.logger.Info("Day filled from template",
		zap.Int64("provider_id", providerID),
		zap.String("day", model.FormatDay(day)),
		zap.Int("created", len(result.Created)),
		zap.Int("skipped", len(result.Skipped)))

	return result, nil
}

// PurgeBefore удаляет слоты за дни раньше day
func (s *SlotService) PurgeBefore(ctx context.Context, day time.Time) (int64, error) {
	count, err := s.store.DeleteSlotsBefore(ctx, model.DayOf(day))
	if err != nil {
		return 0, storeErr("delete slots before", err)
	}
	return count, nil
}

// withProviderLock выполняет fn под блокировкой провайдера.
// События публикуются вызывающим уже после освобождения.
func (s *SlotService) withProviderLock(ctx context.Context, providerID int64, fn func() error) error {
	unlock, err := s.locker.Lock(ctx, lock.ProviderKey(providerID))
	if err != nil {
		s.logger.Error("Failed to lock provider", zap.Int64("provider_id", providerID), zap.Error(err))
		return storeErr("lock provider", err)
	}
	defer unlock()

	return fn()
}

// resolveOverlap перечитывает день и строит ConflictError с границами слота
func (s *SlotService) resolveOverlap(ctx context.Context, req SlotRequest, ignoreID int64, cause error) error {
	existing, err := s.store.FetchSlots(ctx, req.ProviderID, model.DayOf(req.Day))
	if err != nil {
		return storeErr("insert slot", cause)
	}

	if _, err := s.policy.ProposeSlot(req.ProviderID, req.Day, req.Start, req.End, withoutSlot(existing, ignoreID)); err != nil {
		s.logger.Info("Slot rejected by store", zap.Int64("provider_id", req.ProviderID), zap.Error(err))
		return err
	}
	return storeErr("insert slot", cause)
}

func (s *SlotService) publish(ctx context.Context, e events.Event) {
	// Ошибка публикации не отменяет уже сохранённое изменение
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Warn("Failed to publish slot event",
			zap.String("event_type", string(e.Type)),
			zap.Int64("provider_id", e.ProviderID),
			zap.Error(err))
	}
}

func withoutSlot(slots []*model.Slot, id int64) []*model.Slot {
	if id == 0 {
		return slots
	}
	result := make([]*model.Slot, 0, len(slots))
	for _, slot := range slots {
		if slot.ID != id {
			result = append(result, slot)
		}
	}
	return result
}

func storeErr(op string, err error) error {
	if errors.Is(err, schedule.ErrNotFound) {
		return schedule.ErrNotFound
	}
	return &schedule.StoreError{Op: op, Err: err}
}

// writeErr как storeErr, но некорректная запись остаётся ошибкой ввода
func writeErr(op string, err error) error {
	if errors.Is(err, model.ErrInvalidSlot) {
		return err
	}
	return storeErr(op, err)
}
