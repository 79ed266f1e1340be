package handlers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/calm_scheduler/internal/model"
	"github.com/Freeeeeet/calm_scheduler/internal/schedule"
	"github.com/Freeeeeet/calm_scheduler/internal/service"
)

const (
	usageRegister = "Usage: /register expert|peer <name>"
	usageSlots    = "Usage: /slots [YYYY-MM-DD|today|tomorrow]"
	usageAddSlot  = "Usage: /addslot <YYYY-MM-DD> <HH:MM> <HH:MM>\nExample: /addslot 2026-10-16 09:00 09:50"
	usageDelSlot  = "Usage: /delslot <slot id>"
	usageClearDay = "Usage: /clearday <YYYY-MM-DD>"
	usageFillDay  = "Usage: /fillday <YYYY-MM-DD>"
)

func formatSlots(day time.Time, slots []*model.Slot) string {
	if len(slots) == 0 {
		return fmt.Sprintf("📭 No slots on %s.\n\nAdd one with /addslot or /fillday.", model.FormatDay(day))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🗓 Slots on %s:\n\n", model.FormatDay(day))
	for _, slot := range slots {
		fmt.Fprintf(&sb, "#%d  %s\n", slot.ID, slot.Window())
	}
	return sb.String()
}

func formatFillResult(day time.Time, result *service.FillResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📋 %s: created %d slot(s)", model.FormatDay(day), len(result.Created))
	if len(result.Skipped) == 0 {
		return sb.String()
	}

	sb.WriteString("\n\nSkipped:\n")
	for _, s := range result.Skipped {
		fmt.Fprintf(&sb, "• %s (%s)\n", s.Window, describeError(s.Err))
	}
	return sb.String()
}

// describeError текст для пользователя; неизвестные ошибки не раскрываются
func describeError(err error) string {
	var conflict *schedule.ConflictError

	switch {
	case errors.Is(err, schedule.ErrEqualBounds):
		return "start and end time cannot be the same"
	case errors.Is(err, schedule.ErrInvertedRange):
		return "start time cannot be after end time"
	case errors.As(err, &conflict):
		return fmt.Sprintf("conflicts with slot #%d %s", conflict.SlotID, conflict.Window())
	case errors.Is(err, schedule.ErrOverlap):
		return "overlaps an existing slot"
	case errors.Is(err, schedule.ErrNotFound):
		return "slot not found"
	case errors.Is(err, schedule.ErrSlotBooked):
		return "slot has a booked session and cannot be removed"
	case errors.Is(err, model.ErrInvalidClock):
		return "time must look like HH:MM"
	case errors.Is(err, model.ErrInvalidDay):
		return "day must look like YYYY-MM-DD"
	}
	return "something went wrong, try again later"
}
