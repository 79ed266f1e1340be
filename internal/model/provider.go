package model

import "time"

// Provider эксперт или peer listener, предлагающий слоты
type Provider struct {
	ID          int64     `json:"id"`
	TelegramID  *int64    `json:"telegram_id"` // nil если аккаунт не привязан
	DisplayName string    `json:"display_name"`
	Group       Group     `json:"group"`
	CreatedAt   time.Time `json:"created_at"`
}
