package controller

import (
	"context"

	"github.com/Freeeeeet/calm_scheduler/internal/controller/handlers"
	"github.com/Freeeeeet/calm_scheduler/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

type BotController struct {
	bot      *bot.Bot
	handlers *handlers.Handlers
	logger   *zap.Logger
}

func NewBotController(
	botInstance *bot.Bot,
	providerService *service.ProviderService,
	slotService *service.SlotService,
	logger *zap.Logger,
) *BotController {
	return &BotController{
		bot:      botInstance,
		handlers: handlers.NewHandlers(providerService, slotService, logger),
		logger:   logger,
	}
}

// RegisterHandlers регистрирует все обработчики команд
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, c.handlers.HandleStart)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, c.handlers.HandleHelp)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/register", bot.MatchTypePrefix, c.handlers.HandleRegister)

	// Команды провайдера
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/slots", bot.MatchTypePrefix, c.handlers.HandleSlots)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/addslot", bot.MatchTypePrefix, c.handlers.HandleAddSlot)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/delslot", bot.MatchTypePrefix, c.handlers.HandleDeleteSlot)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/clearday", bot.MatchTypePrefix, c.handlers.HandleClearDay)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/fillday", bot.MatchTypePrefix, c.handlers.HandleFillDay)

	// Подтверждение очистки дня
	c.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, handlers.CallbackPrefix, bot.MatchTypePrefix, c.handlers.HandleCallbackQuery)

	return c.setCommands(ctx)
}

// setCommands устанавливает список команд в меню бота
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "start", Description: "🚀 Start"},
		{Command: "help", Description: "❓ Command reference"},
		{Command: "register", Description: "📝 Register as expert or peer"},
		{Command: "slots", Description: "🗓 My slots for a day"},
		{Command: "addslot", Description: "➕ Add a slot"},
		{Command: "delslot", Description: "🗑 Delete a slot"},
		{Command: "clearday", Description: "🧹 Remove all slots of a day"},
		{Command: "fillday", Description: "📋 Fill a day with default slots"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})

	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("✅ Bot commands menu set")
	return nil
}

// Start запускает бота, блокируется до отмены ctx
func (c *BotController) Start(ctx context.Context) error {
	c.logger.Info("Starting bot...")
	c.bot.Start(ctx)
	return nil
}
