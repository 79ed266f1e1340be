package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/calm_scheduler/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// CallbackPrefix общий префикс callback data этого бота
const CallbackPrefix = "clearday:"

const (
	clearDayConfirm = CallbackPrefix + "yes:" // clearday:yes:2026-10-16
	clearDayCancel  = CallbackPrefix + "no"
)

func clearDayKeyboard(day time.Time) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{{
			{Text: "✅ Yes, clear", CallbackData: clearDayConfirm + model.FormatDay(day)},
			{Text: "❌ Cancel", CallbackData: clearDayCancel},
		}},
	}
}

// parseClearDayCallback возвращает день и false при отмене
func parseClearDayCallback(data string) (time.Time, bool, error) {
	if data == clearDayCancel {
		return time.Time{}, false, nil
	}
	raw, ok := strings.CutPrefix(data, clearDayConfirm)
	if !ok {
		return time.Time{}, false, fmt.Errorf("unknown callback %q", data)
	}
	day, err := model.ParseDay(raw)
	if err != nil {
		return time.Time{}, false, err
	}
	return day, true, nil
}

// HandleCallbackQuery обрабатывает нажатия на inline кнопки
func (h *Handlers) HandleCallbackQuery(ctx context.Context, b *bot.Bot, update *models.Update) {
	callback := update.CallbackQuery
	if callback == nil {
		return
	}

	message := callback.Message.Message
	if message == nil {
		h.answerCallback(ctx, b, callback.ID, "Message is too old")
		return
	}

	day, confirmed, err := parseClearDayCallback(callback.Data)
	if err != nil {
		h.logger.Warn("Unknown callback", zap.String("data", callback.Data), zap.Error(err))
		h.answerCallback(ctx, b, callback.ID, "Unknown action")
		return
	}

	if !confirmed {
		h.answerCallback(ctx, b, callback.ID, "")
		h.editMessage(ctx, b, message, "Cancelled.")
		return
	}

	provider, err := h.providerService.GetByTelegramID(ctx, callback.From.ID)
	if err != nil || provider == nil {
		h.logger.Error("Failed to resolve provider for callback",
			zap.Int64("telegram_id", callback.From.ID),
			zap.Error(err))
		h.answerCallback(ctx, b, callback.ID, "Register first with /register")
		return
	}

	count, err := h.slotService.ClearDay(ctx, provider.ID, day)
	if err != nil {
		h.answerCallback(ctx, b, callback.ID, "")
		h.editMessage(ctx, b, message, "❌ "+describeError(err))
		return
	}

	h.answerCallback(ctx, b, callback.ID, "")
	h.editMessage(ctx, b, message, fmt.Sprintf("🧹 Removed %d slot(s) on %s.", count, model.FormatDay(day)))
}

func (h *Handlers) answerCallback(ctx context.Context, b *bot.Bot, callbackID, text string) {
	if _, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
	}); err != nil {
		h.logger.Error("Failed to answer callback", zap.Error(err))
	}
}

func (h *Handlers) editMessage(ctx context.Context, b *bot.Bot, message *models.Message, text string) {
	if _, err := b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    message.Chat.ID,
		MessageID: message.ID,
		Text:      text,
	}); err != nil {
		h.logger.Error("Failed to edit message",
			zap.Int64("chat_id", message.Chat.ID),
			zap.Error(err))
	}
}
