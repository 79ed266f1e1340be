package schedule

import (
	"iter"
	"time"

	"github.com/Freeeeeet/calm_scheduler/internal/model"
)

// Template шаблон дня: сессии длиной Session начинаются каждые Step,
// первая в From, последняя должна закончиться не позже Until
type Template struct {
	From    model.Clock
	Until   model.Clock
	Session time.Duration
	Step    time.Duration
}

// DefaultTemplate 50-минутные сессии с 09:00 до 15:50
var DefaultTemplate = Template{
	From:    model.MustClock(9, 0),
	Until:   model.MustClock(15, 50),
	Session: 50 * time.Minute,
	Step:    time.Hour,
}

// Windows перечисляет окна шаблона. Последовательность конечна и
// может обходиться повторно.
func (t Template) Windows() iter.Seq[model.Window] {
	return func(yield func(model.Window) bool) {
		if t.Session < time.Minute || t.Step < time.Minute || !t.From.Valid() || !t.Until.Valid() {
			return
		}
		for start := t.From; ; start = start.Add(t.Step) {
			end := start.Add(t.Session)
			if end > t.Until || !end.Valid() {
				return
			}
			if !yield(model.Window{Start: start, End: end}) {
				return
			}
		}
	}
}

// Proposal кандидат в слоты, ещё не проверенный
type Proposal struct {
	ProviderID int64
	Day        time.Time
	Window     model.Window
}

// BulkGenerateDefaultSlots генерирует кандидатов на день по шаблону.
// Ничего не проверяет и не сохраняет: каждый кандидат нужно пропустить через ProposeSlot.
func BulkGenerateDefaultSlots(providerID int64, day time.Time, tpl Template) iter.Seq[Proposal] {
	day = model.DayOf(day)
	return func(yield func(Proposal) bool) {
		for w := range tpl.Windows() {
			if !yield(Proposal{ProviderID: providerID, Day: day, Window: w}) {
				return
			}
		}
	}
}
