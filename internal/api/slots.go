package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Freeeeeet/calm_scheduler/internal/model"
	"github.com/Freeeeeet/calm_scheduler/internal/schedule"
	"github.com/Freeeeeet/calm_scheduler/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SlotHandler struct {
	slots  *service.SlotService
	logger *zap.Logger
}

func NewSlotHandler(slots *service.SlotService, logger *zap.Logger) *SlotHandler {
	return &SlotHandler{slots: slots, logger: logger}
}

type slotRequest struct {
	Day       string `json:"day" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
	Group     string `json:"group" binding:"required,oneof=EXPERT PEER expert peer"`
}

type moveRequest struct {
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
}

type templateRequest struct {
	From           string `json:"from" binding:"required"`
	Until          string `json:"until" binding:"required"`
	SessionMinutes int    `json:"session_minutes" binding:"required,min=1,max=1439"`
	StepMinutes    int    `json:"step_minutes" binding:"required,min=1,max=1439"`
}

type fillRequest struct {
	Day      string           `json:"day" binding:"required"`
	Group    string           `json:"group" binding:"required,oneof=EXPERT PEER expert peer"`
	Template *templateRequest `json:"template"`
}

type slotResponse struct {
	ID         int64       `json:"id"`
	ProviderID int64       `json:"provider_id"`
	Group      model.Group `json:"group"`
	Day        string      `json:"day"`
	StartTime  model.Clock `json:"start_time"`
	EndTime    model.Clock `json:"end_time"`
}

type skippedResponse struct {
	StartTime model.Clock `json:"start_time"`
	EndTime   model.Clock `json:"end_time"`
	Reason    string      `json:"reason"`
}

func toResponse(slot *model.Slot) slotResponse {
	return slotResponse{
		ID:         slot.ID,
		ProviderID: slot.ProviderID,
		Group:      slot.Group,
		Day:        model.FormatDay(slot.Day),
		StartTime:  slot.StartTime,
		EndTime:    slot.EndTime,
	}
}

func toResponses(slots []*model.Slot) []slotResponse {
	result := make([]slotResponse, 0, len(slots))
	for _, slot := range slots {
		result = append(result, toResponse(slot))
	}
	return result
}

// ListSlots GET /slots?day=YYYY-MM-DD
func (h *SlotHandler) ListSlots(c *gin.Context) {
	providerID, ok := providerIDParam(c)
	if !ok {
		return
	}
	day, ok := queryDay(c)
	if !ok {
		return
	}

	slots, err := h.slots.ListSlots(c.Request.Context(), providerID, day)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"slots": toResponses(slots)})
}

// ListAllSlots GET /api/v1/slots?day=YYYY-MM-DD, слоты всех провайдеров
func (h *SlotHandler) ListAllSlots(c *gin.Context) {
	day, ok := queryDay(c)
	if !ok {
		return
	}

	slots, err := h.slots.ListAllSlots(c.Request.Context(), day)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"slots": toResponses(slots)})
}

// AddSlot POST /slots
func (h *SlotHandler) AddSlot(c *gin.Context) {
	req, ok := h.bindSlotRequest(c)
	if !ok {
		return
	}

	slot, err := h.slots.AddSlot(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"slot": toResponse(slot)})
}

// CheckSlot POST /slots/check, проверка без сохранения
func (h *SlotHandler) CheckSlot(c *gin.Context) {
	req, ok := h.bindSlotRequest(c)
	if !ok {
		return
	}

	accepted, err := h.slots.CheckSlot(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"available":  true,
		"day":        model.FormatDay(accepted.Day),
		"start_time": accepted.Window.Start,
		"end_time":   accepted.Window.End,
	})
}

// MoveSlot PUT /slots/:slotID
func (h *SlotHandler) MoveSlot(c *gin.Context) {
	providerID, ok := providerIDParam(c)
	if !ok {
		return
	}
	slotID, ok := slotIDParam(c)
	if !ok {
		return
	}

	var body moveRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "Invalid request payload", err)
		return
	}
	start, end, ok := parseWindow(c, body.StartTime, body.EndTime)
	if !ok {
		return
	}

	slot, err := h.slots.MoveSlot(c.Request.Context(), providerID, slotID, start, end)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"slot": toResponse(slot)})
}

// DeleteSlot DELETE /slots/:slotID
func (h *SlotHandler) DeleteSlot(c *gin.Context) {
	providerID, ok := providerIDParam(c)
	if !ok {
		return
	}
	slotID, ok := slotIDParam(c)
	if !ok {
		return
	}

	if err := h.slots.DeleteProviderSlot(c.Request.Context(), providerID, slotID); err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ClearDay DELETE /slots?day=YYYY-MM-DD
func (h *SlotHandler) ClearDay(c *gin.Context) {
	providerID, ok := providerIDParam(c)
	if !ok {
		return
	}
	day, ok := queryDay(c)
	if !ok {
		return
	}

	count, err := h.slots.ClearDay(c.Request.Context(), providerID, day)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": count})
}

// FillDay POST /slots/defaults
func (h *SlotHandler) FillDay(c *gin.Context) {
	providerID, ok := providerIDParam(c)
	if !ok {
		return
	}

	var body fillRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "Invalid request payload", err)
		return
	}

	day, err := model.ParseDay(body.Day)
	if err != nil {
		badRequest(c, "Invalid day", err)
		return
	}
	group, _ := model.ParseGroup(body.Group)

	tpl := schedule.DefaultTemplate
	if body.Template != nil {
		from, until, ok := parseWindow(c, body.Template.From, body.Template.Until)
		if !ok {
			return
		}
		tpl = schedule.Template{
			From:    from,
			Until:   until,
			Session: time.Duration(body.Template.SessionMinutes) * time.Minute,
			Step:    time.Duration(body.Template.StepMinutes) * time.Minute,
		}
	}

	result, err := h.slots.FillDay(c.Request.Context(), providerID, group, day, tpl)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	skipped := make([]skippedResponse, 0, len(result.Skipped))
	for _, s := range result.Skipped {
		skipped = append(skipped, skippedResponse{
			StartTime: s.Window.Start,
			EndTime:   s.Window.End,
			Reason:    s.Err.Error(),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"created": toResponses(result.Created),
		"skipped": skipped,
	})
}

func (h *SlotHandler) bindSlotRequest(c *gin.Context) (service.SlotRequest, bool) {
	providerID, ok := providerIDParam(c)
	if !ok {
		return service.SlotRequest{}, false
	}

	var body slotRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "Invalid request payload", err)
		return service.SlotRequest{}, false
	}

	day, err := model.ParseDay(body.Day)
	if err != nil {
		badRequest(c, "Invalid day", err)
		return service.SlotRequest{}, false
	}

	start, end, ok := parseWindow(c, body.StartTime, body.EndTime)
	if !ok {
		return service.SlotRequest{}, false
	}

	// binding уже проверил oneof
	group, _ := model.ParseGroup(body.Group)

	return service.SlotRequest{
		ProviderID: providerID,
		Group:      group,
		Day:        day,
		Start:      start,
		End:        end,
	}, true
}

func providerIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("providerID"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid provider ID"})
		return 0, false
	}
	return id, true
}

func slotIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("slotID"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid slot ID"})
		return 0, false
	}
	return id, true
}

func queryDay(c *gin.Context) (time.Time, bool) {
	raw := c.Query("day")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing day query parameter"})
		return time.Time{}, false
	}
	day, err := model.ParseDay(raw)
	if err != nil {
		badRequest(c, "Invalid day", err)
		return time.Time{}, false
	}
	return day, true
}

func parseWindow(c *gin.Context, rawStart, rawEnd string) (model.Clock, model.Clock, bool) {
	start, err := model.ParseClock(rawStart)
	if err != nil {
		badRequest(c, "Invalid start time", err)
		return 0, 0, false
	}
	end, err := model.ParseClock(rawEnd)
	if err != nil {
		badRequest(c, "Invalid end time", err)
		return 0, 0, false
	}
	return start, end, true
}

func badRequest(c *gin.Context, msg string, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg, "message": err.Error()})
}

// writeError переводит ошибки планировщика в HTTP-ответы
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	var (
		conflict *schedule.ConflictError
		storeErr *schedule.StoreError
	)

	switch {
	case errors.Is(err, schedule.ErrEqualBounds), errors.Is(err, schedule.ErrInvertedRange),
		errors.Is(err, model.ErrInvalidSlot):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{
			"error": err.Error(),
			"conflict": gin.H{
				"slot_id":    conflict.SlotID,
				"start_time": conflict.Start,
				"end_time":   conflict.End,
			},
		})
	case errors.Is(err, schedule.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Slot not found"})
	case errors.Is(err, schedule.ErrSlotBooked):
		c.JSON(http.StatusConflict, gin.H{"error": "Slot has a booked session and cannot be removed"})
	case errors.As(err, &storeErr):
		logger.Error("Slot store failure", zap.String("op", storeErr.Op), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Slot store unavailable"})
	default:
		logger.Error("Unexpected error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}
