package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/Freeeeeet/calm_scheduler/internal/model"
	"github.com/Freeeeeet/calm_scheduler/internal/repository/memory"
	"github.com/Freeeeeet/calm_scheduler/internal/schedule"
	"github.com/Freeeeeet/calm_scheduler/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func setup(t *testing.T) (*gin.Engine, *memory.SlotStore) {
	t.Helper()
	router, store, _ := setupWithSessions(t)
	return router, store
}

func setupWithSessions(t *testing.T) (*gin.Engine, *memory.SlotStore, *memory.SessionStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewSlotStore()
	sessions := memory.NewSessionStore(store)
	logger := zaptest.NewLogger(t)
	svc := service.NewSlotService(store, nil, nil, schedule.DefaultPolicy, logger)
	return NewRouter(svc, service.NewSessionService(sessions, logger), logger), store, sessions
}

func doRequest(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func slotBody(start, end string) gin.H {
	return gin.H{"day": "2026-10-16", "start_time": start, "end_time": end, "group": "EXPERT"}
}

const slotsPath = "/api/v1/providers/7/slots"

func TestHealthz(t *testing.T) {
	router, _ := setup(t)
	rec := doRequest(t, router, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAddSlot(t *testing.T) {
	router, _ := setup(t)

	rec := doRequest(t, router, http.MethodPost, slotsPath, slotBody("09:00", "09:50"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	slot := decode(t, rec)["slot"].(map[string]any)
	assert.Equal(t, "2026-10-16", slot["day"])
	assert.Equal(t, "09:00", slot["start_time"])
	assert.Equal(t, "09:50", slot["end_time"])
	assert.Equal(t, "EXPERT", slot["group"])

	// касание границ допустимо
	rec = doRequest(t, router, http.MethodPost, slotsPath, slotBody("09:50", "10:40"))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestAddSlot_Errors(t *testing.T) {
	router, _ := setup(t)
	rec := doRequest(t, router, http.MethodPost, slotsPath, slotBody("09:00", "10:00"))
	require.Equal(t, http.StatusCreated, rec.Code)
	existingID := decode(t, rec)["slot"].(map[string]any)["id"]

	tests := []struct {
		name   string
		path   string
		body   any
		status int
	}{
		{"equal bounds", slotsPath, slotBody("11:00", "11:00"), http.StatusUnprocessableEntity},
		{"inverted", slotsPath, slotBody("12:00", "11:00"), http.StatusUnprocessableEntity},
		{"conflict", slotsPath, slotBody("09:30", "10:30"), http.StatusConflict},
		{"bad time", slotsPath, slotBody("9am", "10:30"), http.StatusBadRequest},
		{"bad group", slotsPath, gin.H{"day": "2026-10-16", "start_time": "13:00", "end_time": "14:00", "group": "ADMIN"}, http.StatusBadRequest},
		{"bad day", slotsPath, gin.H{"day": "16.10.2026", "start_time": "13:00", "end_time": "14:00", "group": "PEER"}, http.StatusBadRequest},
		{"bad provider", "/api/v1/providers/abc/slots", slotBody("13:00", "14:00"), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, router, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}

	rec = doRequest(t, router, http.MethodPost, slotsPath, slotBody("09:30", "10:30"))
	conflict := decode(t, rec)["conflict"].(map[string]any)
	assert.Equal(t, existingID, conflict["slot_id"])
	assert.Equal(t, "09:00", conflict["start_time"])
	assert.Equal(t, "10:00", conflict["end_time"])
}

func TestCheckSlot_DoesNotPersist(t *testing.T) {
	router, store := setup(t)

	rec := doRequest(t, router, http.MethodPost, slotsPath+"/check", slotBody("2026-10-16T09:00:00Z", "2026-10-16T10:00:00Z"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode(t, rec)
	assert.Equal(t, true, out["available"])
	assert.Equal(t, "09:00", out["start_time"])

	slots, err := store.FetchSlots(context.Background(), 7, mustDay(t, "2026-10-16"))
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestListAndClearDay(t *testing.T) {
	router, _ := setup(t)
	doRequest(t, router, http.MethodPost, slotsPath, slotBody("11:00", "12:00"))
	doRequest(t, router, http.MethodPost, slotsPath, slotBody("09:00", "10:00"))

	rec := doRequest(t, router, http.MethodGet, slotsPath+"?day=2026-10-16", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	slots := decode(t, rec)["slots"].([]any)
	require.Len(t, slots, 2)
	assert.Equal(t, "09:00", slots[0].(map[string]any)["start_time"])

	rec = doRequest(t, router, http.MethodGet, slotsPath, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, router, http.MethodDelete, slotsPath+"?day=2026-10-16", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), decode(t, rec)["deleted"])

	rec = doRequest(t, router, http.MethodGet, slotsPath+"?day=2026-10-16", nil)
	assert.Empty(t, decode(t, rec)["slots"])
}

func TestMoveAndDeleteSlot(t *testing.T) {
	router, store := setup(t)
	rec := doRequest(t, router, http.MethodPost, slotsPath, slotBody("09:00", "10:00"))
	id := int64(decode(t, rec)["slot"].(map[string]any)["id"].(float64))
	path := slotsPath + "/" + itoa(id)

	rec = doRequest(t, router, http.MethodPut, path, gin.H{"start_time": "09:30", "end_time": "10:30"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	moved := decode(t, rec)["slot"].(map[string]any)
	assert.Equal(t, "09:30", moved["start_time"])
	movedID := int64(moved["id"].(float64))

	rec = doRequest(t, router, http.MethodDelete, "/api/v1/providers/8/slots/"+itoa(movedID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	store.MarkBooked(movedID)
	rec = doRequest(t, router, http.MethodDelete, slotsPath+"/"+itoa(movedID), nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doRequest(t, router, http.MethodDelete, slotsPath+"/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFillDay(t *testing.T) {
	router, _ := setup(t)
	doRequest(t, router, http.MethodPost, slotsPath, slotBody("10:15", "10:45"))

	rec := doRequest(t, router, http.MethodPost, slotsPath+"/defaults", gin.H{"day": "2026-10-16", "group": "PEER"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode(t, rec)
	assert.Len(t, out["created"], 6)
	assert.Len(t, out["skipped"], 1)

	rec = doRequest(t, router, http.MethodPost, slotsPath+"/defaults", gin.H{
		"day":   "2026-10-17",
		"group": "PEER",
		"template": gin.H{
			"from": "18:00", "until": "20:00", "session_minutes": 30, "step_minutes": 30,
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, decode(t, rec)["created"], 4)
}

func TestListAllSlots(t *testing.T) {
	router, _ := setup(t)
	doRequest(t, router, http.MethodPost, "/api/v1/providers/2/slots", slotBody("11:00", "12:00"))
	doRequest(t, router, http.MethodPost, slotsPath, slotBody("09:00", "10:00"))
	doRequest(t, router, http.MethodPost, "/api/v1/providers/3/slots", gin.H{
		"day": "2026-10-17", "start_time": "08:00", "end_time": "09:00", "group": "PEER",
	})

	rec := doRequest(t, router, http.MethodGet, "/api/v1/slots?day=2026-10-16", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	slots := decode(t, rec)["slots"].([]any)
	require.Len(t, slots, 2)
	assert.Equal(t, float64(7), slots[0].(map[string]any)["provider_id"])
	assert.Equal(t, "09:00", slots[0].(map[string]any)["start_time"])
	assert.Equal(t, float64(2), slots[1].(map[string]any)["provider_id"])

	rec = doRequest(t, router, http.MethodGet, "/api/v1/slots", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListSessions(t *testing.T) {
	router, _, sessions := setupWithSessions(t)
	rec := doRequest(t, router, http.MethodPost, slotsPath, slotBody("09:00", "10:00"))
	slotID := int64(decode(t, rec)["slot"].(map[string]any)["id"].(float64))

	sessions.AddSession(&model.Session{SlotID: &slotID, ProviderID: 7, StudentID: 100, Status: model.SessionApproved})
	sessions.AddSession(&model.Session{ProviderID: 7, StudentID: 101})
	sessions.AddSession(&model.Session{ProviderID: 8, StudentID: 102})

	rec = doRequest(t, router, http.MethodGet, "/api/v1/providers/7/sessions", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	list := decode(t, rec)["sessions"].([]any)
	require.Len(t, list, 2)
	first := list[0].(map[string]any)
	assert.Equal(t, float64(slotID), first["slot_id"])
	assert.Equal(t, "APPROVED", first["status"])
	second := list[1].(map[string]any)
	assert.Nil(t, second["slot_id"])
	assert.Equal(t, "PENDING", second["status"])

	// слот с сессией нельзя удалить
	rec = doRequest(t, router, http.MethodDelete, slotsPath+"/"+itoa(slotID), nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/v1/providers/0/sessions", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWriteError_InvalidRecord(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	err := fmt.Errorf("%w: provider_id must be positive", model.ErrInvalidSlot)
	writeError(c, zaptest.NewLogger(t), err)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid slot record")
}

func mustDay(t *testing.T, s string) time.Time {
	t.Helper()
	day, err := model.ParseDay(s)
	require.NoError(t, err)
	return day
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
