package model

import (
	"fmt"
	"strings"
	"time"
)

// Group тип провайдера: эксперт или peer listener
type Group string

const (
	GroupExpert Group = "EXPERT"
	GroupPeer   Group = "PEER"
)

// ParseGroup разбирает группу без учёта регистра
func ParseGroup(s string) (Group, error) {
	switch Group(strings.ToUpper(strings.TrimSpace(s))) {
	case GroupExpert:
		return GroupExpert, nil
	case GroupPeer:
		return GroupPeer, nil
	}
	return "", fmt.Errorf("unknown provider group %q", s)
}

// Slot окно доступности провайдера в конкретный день, [StartTime, EndTime)
type Slot struct {
	ID         int64     `json:"id"`
	ProviderID int64     `json:"provider_id" validate:"required,gt=0"`
	Group      Group     `json:"group" validate:"required,oneof=EXPERT PEER"`
	Day        time.Time `json:"day" validate:"required"`
	StartTime  Clock     `json:"start_time" validate:"min=0,max=1439"`
	EndTime    Clock     `json:"end_time" validate:"min=0,max=1439,gtfield=StartTime"`
	CreatedAt  time.Time `json:"created_at"`
}

// Window возвращает интервал слота
func (s *Slot) Window() Window {
	return Window{Start: s.StartTime, End: s.EndTime}
}

// Window полуоткрытый интервал времени суток [Start, End)
type Window struct {
	Start Clock `json:"start_time"`
	End   Clock `json:"end_time"`
}

// Overlaps проверяет пересечение полуоткрытых интервалов.
// Касание границ (10:00-11:00 и 11:00-12:00) пересечением не считается.
func (w Window) Overlaps(o Window) bool {
	return w.Start < o.End && o.Start < w.End
}

// Touches true если интервалы соприкасаются концами
func (w Window) Touches(o Window) bool {
	return w.End == o.Start || o.End == w.Start
}

func (w Window) Duration() time.Duration {
	return time.Duration(w.End-w.Start) * time.Minute
}

func (w Window) String() string {
	return w.Start.String() + "-" + w.End.String()
}
