package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/Freeeeeet/calm_scheduler/internal/model"
	"github.com/Freeeeeet/calm_scheduler/internal/schedule"
	"github.com/Freeeeeet/calm_scheduler/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

const helpText = "📚 Commands:\n\n" +
	"/register expert|peer <name> - Register as a provider\n" +
	"/slots [day] - Slots for a day (default today)\n" +
	"/addslot <day> <HH:MM> <HH:MM> - Add a slot\n" +
	"/delslot <id> - Delete a slot\n" +
	"/clearday <day> - Remove all slots of a day\n" +
	"/fillday <day> - Add default slots 09:00-15:50\n" +
	"/help - Show this reference\n\n" +
	"Day is YYYY-MM-DD, today or tomorrow."

// HandleStart обрабатывает команду /start
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	provider, err := h.providerService.GetByTelegramID(ctx, update.Message.From.ID)
	if err != nil {
		h.logger.Error("Failed to get provider", zap.Int64("telegram_id", update.Message.From.ID), zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Something went wrong. Try again later.")
		return
	}

	greeting := fmt.Sprintf("👋 Hi, %s!\n\nThis bot manages your availability slots in C.A.L.M Companion.\n\n", update.Message.From.FirstName)
	if provider == nil {
		greeting += "To get started, register:\n" + usageRegister + "\n\n"
	}

	h.sendMessage(ctx, b, update.Message.Chat.ID, greeting+helpText)
}

// HandleHelp обрабатывает команду /help
func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	h.sendMessage(ctx, b, update.Message.Chat.ID, helpText)
}

// HandleRegister обрабатывает команду /register
func (h *Handlers) HandleRegister(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	chatID := update.Message.Chat.ID

	group, name, err := parseRegisterArgs(commandArgs(update.Message.Text))
	if err != nil {
		h.sendError(ctx, b, chatID, "❌ "+usageRegister)
		return
	}

	provider, err := h.providerService.Register(ctx, update.Message.From.ID, name, group)
	if err != nil {
		h.logger.Error("Failed to register provider", zap.Int64("telegram_id", update.Message.From.ID), zap.Error(err))
		h.sendError(ctx, b, chatID, "❌ Registration failed. Try again later.")
		return
	}

	h.sendMessage(ctx, b, chatID, fmt.Sprintf("✅ Registered %s as %s (provider #%d).", provider.DisplayName, provider.Group, provider.ID))
}

// HandleSlots обрабатывает команду /slots
func (h *Handlers) HandleSlots(ctx context.Context, b *bot.Bot, update *models.Update) {
	provider, ok := h.requireProvider(ctx, b, update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	day, err := parseDayArg(commandArgs(update.Message.Text), h.now())
	if err != nil {
		h.sendError(ctx, b, chatID, "❌ "+usageSlots)
		return
	}

	slots, err := h.slotService.ListSlots(ctx, provider.ID, day)
	if err != nil {
		h.sendError(ctx, b, chatID, "❌ "+describeError(err))
		return
	}

	h.sendMessage(ctx, b, chatID, formatSlots(day, slots))
}

// HandleAddSlot обрабатывает команду /addslot
func (h *Handlers) HandleAddSlot(ctx context.Context, b *bot.Bot, update *models.Update) {
	provider, ok := h.requireProvider(ctx, b, update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	day, start, end, err := parseAddSlotArgs(commandArgs(update.Message.Text), h.now())
	if err != nil {
		text := "❌ " + usageAddSlot
		if !errors.Is(err, errUsage) {
			text = "❌ " + describeError(err) + "\n\n" + usageAddSlot
		}
		h.sendError(ctx, b, chatID, text)
		return
	}

	slot, err := h.slotService.AddSlot(ctx, service.SlotRequest{
		ProviderID: provider.ID,
		Group:      provider.Group,
		Day:        day,
		Start:      start,
		End:        end,
	})
	if err != nil {
		h.sendError(ctx, b, chatID, "❌ "+describeError(err))
		return
	}

	h.sendMessage(ctx, b, chatID, fmt.Sprintf("✅ Slot #%d added: %s %s", slot.ID, model.FormatDay(slot.Day), slot.Window()))
}

// HandleDeleteSlot обрабатывает команду /delslot
func (h *Handlers) HandleDeleteSlot(ctx context.Context, b *bot.Bot, update *models.Update) {
	provider, ok := h.requireProvider(ctx, b, update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	slotID, err := parseSlotIDArg(commandArgs(update.Message.Text))
	if err != nil {
		h.sendError(ctx, b, chatID, "❌ "+usageDelSlot)
		return
	}

	if err := h.slotService.DeleteProviderSlot(ctx, provider.ID, slotID); err != nil {
		h.sendError(ctx, b, chatID, "❌ "+describeError(err))
		return
	}

	h.sendMessage(ctx, b, chatID, fmt.Sprintf("🗑 Slot #%d deleted.", slotID))
}

// HandleClearDay обрабатывает команду /clearday, удаление только после подтверждения
func (h *Handlers) HandleClearDay(ctx context.Context, b *bot.Bot, update *models.Update) {
	if _, ok := h.requireProvider(ctx, b, update); !ok {
		return
	}
	chatID := update.Message.Chat.ID

	args := commandArgs(update.Message.Text)
	if len(args) == 0 {
		h.sendError(ctx, b, chatID, "❌ "+usageClearDay)
		return
	}
	day, err := parseDayArg(args, h.now())
	if err != nil {
		h.sendError(ctx, b, chatID, "❌ "+usageClearDay)
		return
	}

	h.sendMessage(ctx, b, chatID,
		fmt.Sprintf("⚠️ Remove all slots on %s? Days with booked sessions cannot be cleared.", model.FormatDay(day)),
		clearDayKeyboard(day))
}

// HandleFillDay обрабатывает команду /fillday
func (h *Handlers) HandleFillDay(ctx context.Context, b *bot.Bot, update *models.Update) {
	provider, ok := h.requireProvider(ctx, b, update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	args := commandArgs(update.Message.Text)
	if len(args) == 0 {
		h.sendError(ctx, b, chatID, "❌ "+usageFillDay)
		return
	}
	day, err := parseDayArg(args, h.now())
	if err != nil {
		h.sendError(ctx, b, chatID, "❌ "+usageFillDay)
		return
	}

	result, err := h.slotService.FillDay(ctx, provider.ID, provider.Group, day, schedule.DefaultTemplate)
	if err != nil {
		h.sendError(ctx, b, chatID, "❌ "+describeError(err))
		return
	}

	h.sendMessage(ctx, b, chatID, formatFillResult(day, result))
}
