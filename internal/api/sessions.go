package api

import (
	"net/http"
	"time"

	"github.com/Freeeeeet/calm_scheduler/internal/model"
	"github.com/Freeeeeet/calm_scheduler/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SessionHandler struct {
	sessions *service.SessionService
	logger   *zap.Logger
}

func NewSessionHandler(sessions *service.SessionService, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, logger: logger}
}

type sessionResponse struct {
	ID        int64               `json:"id"`
	SlotID    *int64              `json:"slot_id"`
	StudentID int64               `json:"student_id"`
	Status    model.SessionStatus `json:"status"`
	CreatedAt time.Time           `json:"created_at"`
}

// ListSessions GET /sessions
func (h *SessionHandler) ListSessions(c *gin.Context) {
	providerID, ok := providerIDParam(c)
	if !ok {
		return
	}

	sessions, err := h.sessions.ListSessions(c.Request.Context(), providerID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	result := make([]sessionResponse, 0, len(sessions))
	for _, s := range sessions {
		result = append(result, sessionResponse{
			ID:        s.ID,
			SlotID:    s.SlotID,
			StudentID: s.StudentID,
			Status:    s.Status,
			CreatedAt: s.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"provider_id": providerID, "sessions": result})
}
