package schedule

import (
	"errors"
	"fmt"

	"github.com/Freeeeeet/calm_scheduler/internal/model"
)

var (
	ErrEqualBounds   = errors.New("start and end time cannot be the same")
	ErrInvertedRange = errors.New("start time cannot be after end time")
	ErrNotFound      = errors.New("slot not found")

	// ErrOverlap хранилище отклонило вставку по exclusion constraint
	ErrOverlap = errors.New("slot overlaps an existing slot")
	// ErrSlotBooked на слот ссылается сессия, удалять нельзя
	ErrSlotBooked = errors.New("slot has a booked session")
)

// ConflictError новое окно пересекается с существующим слотом
type ConflictError struct {
	SlotID int64
	Start  model.Clock
	End    model.Clock
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("this time conflicts with an existing slot from %s to %s", e.Start, e.End)
}

// Window возвращает границы конфликтующего слота
func (e *ConflictError) Window() model.Window {
	return model.Window{Start: e.Start, End: e.End}
}

// StoreError ошибка внешнего хранилища, передаётся как есть
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("slot store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsValidation true для ошибок, которые исправляются только новым вводом
func IsValidation(err error) bool {
	var conflict *ConflictError
	return errors.Is(err, ErrEqualBounds) ||
		errors.Is(err, ErrInvertedRange) ||
		errors.Is(err, model.ErrInvalidSlot) ||
		errors.As(err, &conflict)
}
