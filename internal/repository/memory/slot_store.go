// Package memory хранилище слотов в памяти процесса.
// Повторяет семантику PostgreSQL-хранилища, включая запрет пересечений.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/Freeeeeet/calm_scheduler/internal/model"
	"github.com/Freeeeeet/calm_scheduler/internal/schedule"
)

type SlotStore struct {
	mu     sync.RWMutex
	nextID int64
	slots  map[int64]model.Slot
	booked map[int64]bool
	now    func() time.Time
}

func NewSlotStore() *SlotStore {
	return &SlotStore{
		slots:  make(map[int64]model.Slot),
		booked: make(map[int64]bool),
		now:    time.Now,
	}
}

// MarkBooked помечает слот как занятый сессией, такой слот нельзя удалить
func (s *SlotStore) MarkBooked(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.booked[id] = true
}

func (s *SlotStore) FetchSlots(_ context.Context, providerID int64, day time.Time) ([]*model.Slot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*model.Slot
	for _, slot := range s.slots {
		if slot.ProviderID == providerID && model.SameDay(slot.Day, day) {
			c := slot
			result = append(result, &c)
		}
	}

	slices.SortFunc(result, func(a, b *model.Slot) int {
		if a.StartTime != b.StartTime {
			return int(a.StartTime - b.StartTime)
		}
		return int(a.ID - b.ID)
	})

	return result, nil
}

// FetchAllSlots слоты всех провайдеров за день: start_time, затем провайдер
func (s *SlotStore) FetchAllSlots(_ context.Context, day time.Time) ([]*model.Slot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*model.Slot
	for _, slot := range s.slots {
		if model.SameDay(slot.Day, day) {
			c := slot
			result = append(result, &c)
		}
	}

	slices.SortFunc(result, func(a, b *model.Slot) int {
		return cmp.Or(
			cmp.Compare(a.StartTime, b.StartTime),
			cmp.Compare(a.ProviderID, b.ProviderID),
			cmp.Compare(a.ID, b.ID),
		)
	})

	return result, nil
}

func (s *SlotStore) GetSlot(_ context.Context, id int64) (*model.Slot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slot, ok := s.slots[id]
	if !ok {
		return nil, schedule.ErrNotFound
	}
	return &slot, nil
}

func (s *SlotStore) InsertSlot(_ context.Context, slot *model.Slot) error {
	if err := slot.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.insertLocked(slot, 0)
}

func (s *SlotStore) DeleteSlot(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.slots[id]; !ok {
		return schedule.ErrNotFound
	}
	if s.booked[id] {
		return fmt.Errorf("delete slot: %w", schedule.ErrSlotBooked)
	}

	delete(s.slots, id)
	return nil
}

func (s *SlotStore) DeleteAllSlots(_ context.Context, providerID int64, day time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []int64
	for id, slot := range s.slots {
		if slot.ProviderID != providerID || !model.SameDay(slot.Day, day) {
			continue
		}
		// Как и FK в базе: вся операция отклоняется
		if s.booked[id] {
			return 0, fmt.Errorf("delete all slots: %w", schedule.ErrSlotBooked)
		}
		ids = append(ids, id)
	}

	for _, id := range ids {
		delete(s.slots, id)
	}
	return int64(len(ids)), nil
}

func (s *SlotStore) ReplaceSlot(_ context.Context, oldID int64, slot *model.Slot) error {
	if err := slot.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.slots[oldID]; !ok {
		return schedule.ErrNotFound
	}
	if s.booked[oldID] {
		return fmt.Errorf("replace slot: %w", schedule.ErrSlotBooked)
	}

	return s.insertLocked(slot, oldID)
}

func (s *SlotStore) DeleteSlotsBefore(_ context.Context, day time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := model.DayOf(day)
	var n int64
	for id, slot := range s.slots {
		if slot.Day.Before(cutoff) && !s.booked[id] {
			delete(s.slots, id)
			n++
		}
	}
	return n, nil
}

// insertLocked вставляет слот; replacing - ID слота, который удаляется в той же операции
func (s *SlotStore) insertLocked(slot *model.Slot, replacing int64) error {
	day := model.DayOf(slot.Day)
	for id, existing := range s.slots {
		if id == replacing || existing.ProviderID != slot.ProviderID || !model.SameDay(existing.Day, day) {
			continue
		}
		if existing.Window().Overlaps(slot.Window()) {
			return fmt.Errorf("insert slot: %w", schedule.ErrOverlap)
		}
	}

	if replacing != 0 {
		delete(s.slots, replacing)
	}

	s.nextID++
	slot.ID = s.nextID
	slot.Day = day
	slot.CreatedAt = s.now()
	s.slots[slot.ID] = *slot
	return nil
}
