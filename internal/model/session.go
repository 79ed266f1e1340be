package model

import "time"

// SessionStatus статус сессии с провайдером
type SessionStatus string

const (
	SessionPending  SessionStatus = "PENDING"
	SessionApproved SessionStatus = "APPROVED"
	SessionDenied   SessionStatus = "DENIED"
)

// Session запись студента к провайдеру. Сессиями управляет приложение,
// здесь они только читаются и защищают слот от удаления.
type Session struct {
	ID         int64         `json:"id"`
	SlotID     *int64        `json:"slot_id,omitempty"`
	ProviderID int64         `json:"provider_id"`
	StudentID  int64         `json:"student_id"`
	Status     SessionStatus `json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
}
