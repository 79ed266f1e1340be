// Package schedule содержит проверку окон доступности провайдеров.
//
// Все функции пакета чистые: существующие слоты передаются вызывающим,
// сохранение выполняет сервисный слой.
package schedule

import (
	"time"

	"github.com/Freeeeeet/calm_scheduler/internal/model"
)

// Policy настройки проверки пересечений
type Policy struct {
	// AllowTouching разрешает слоты, соприкасающиеся границами
	AllowTouching bool
}

// DefaultPolicy полуоткрытые интервалы, касание разрешено
var DefaultPolicy = Policy{AllowTouching: true}

// Accepted окно прошло проверку и готово к сохранению
type Accepted struct {
	ProviderID int64
	Day        time.Time
	Window     model.Window
}

// Slot собирает запись для хранилища
func (a Accepted) Slot(group model.Group) *model.Slot {
	return &model.Slot{
		ProviderID: a.ProviderID,
		Group:      group,
		Day:        a.Day,
		StartTime:  a.Window.Start,
		EndTime:    a.Window.End,
	}
}

// ProposeSlot проверяет окно по DefaultPolicy
func ProposeSlot(providerID int64, day time.Time, start, end model.Clock, existing []*model.Slot) (Accepted, error) {
	return DefaultPolicy.ProposeSlot(providerID, day, start, end, existing)
}

// ProposeSlot проверяет новое окно против существующих слотов провайдера.
// Слоты других провайдеров и других дней не учитываются.
// При нескольких конфликтах возвращается первый по порядку в existing.
func (p Policy) ProposeSlot(providerID int64, day time.Time, start, end model.Clock, existing []*model.Slot) (Accepted, error) {
	day = model.DayOf(day)
	proposed := model.Window{Start: start, End: end}

	if start == end {
		return Accepted{}, ErrEqualBounds
	}
	if start > end {
		return Accepted{}, ErrInvertedRange
	}

	for _, slot := range existing {
		if slot == nil || slot.ProviderID != providerID || !model.SameDay(slot.Day, day) {
			continue
		}
		if p.conflicts(proposed, slot.Window()) {
			return Accepted{}, &ConflictError{
				SlotID: slot.ID,
				Start:  slot.StartTime,
				End:    slot.EndTime,
			}
		}
	}

	return Accepted{ProviderID: providerID, Day: day, Window: proposed}, nil
}

func (p Policy) conflicts(a, b model.Window) bool {
	if a.Overlaps(b) {
		return true
	}
	return !p.AllowTouching && a.Touches(b)
}

// Overlaps симметричная проверка пересечения двух окон по политике
func (p Policy) Overlaps(a, b model.Window) bool {
	return p.conflicts(a, b)
}
