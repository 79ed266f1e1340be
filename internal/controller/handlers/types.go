package handlers

import (
	"time"

	"github.com/Freeeeeet/calm_scheduler/internal/service"
	"go.uber.org/zap"
)

// Handlers содержит все зависимости для обработки команд
type Handlers struct {
	providerService *service.ProviderService
	slotService     *service.SlotService
	now             func() time.Time
	logger          *zap.Logger
}

func NewHandlers(
	providerService *service.ProviderService,
	slotService *service.SlotService,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		providerService: providerService,
		slotService:     slotService,
		now:             time.Now,
		logger:          logger,
	}
}
