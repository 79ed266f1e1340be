package handlers

import (
	"context"

	"github.com/Freeeeeet/calm_scheduler/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// requireProvider проверяет что Telegram-аккаунт привязан к провайдеру
// Возвращает provider и true если OK, nil и false если нет
func (h *Handlers) requireProvider(ctx context.Context, b *bot.Bot, update *models.Update) (*model.Provider, bool) {
	if update.Message == nil || update.Message.From == nil {
		return nil, false
	}

	telegramID := update.Message.From.ID
	provider, err := h.providerService.GetByTelegramID(ctx, telegramID)

	if err != nil {
		h.logger.Error("Failed to get provider", zap.Int64("telegram_id", telegramID), zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Something went wrong. Try again later.")
		return nil, false
	}

	if provider == nil {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ You are not registered as a provider.\n\n"+usageRegister)
		return nil, false
	}

	return provider, true
}

// sendError отправляет сообщение об ошибке и логирует если не удалось
func (h *Handlers) sendError(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		h.logger.Error("Failed to send error message",
			zap.Int64("chat_id", chatID),
			zap.String("text", text),
			zap.Error(err),
		)
	}
}

// sendMessage отправляет сообщение и логирует если не удалось
func (h *Handlers) sendMessage(ctx context.Context, b *bot.Bot, chatID int64, text string, keyboard ...*models.InlineKeyboardMarkup) {
	params := &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	}
	if len(keyboard) > 0 && keyboard[0] != nil {
		params.ReplyMarkup = keyboard[0]
	}

	if _, err := b.SendMessage(ctx, params); err != nil {
		h.logger.Error("Failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}
