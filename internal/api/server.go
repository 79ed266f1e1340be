// Package api HTTP API слотов для мобильного приложения.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Freeeeeet/calm_scheduler/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
}

// NewRouter собирает gin-роутер со всеми маршрутами
func NewRouter(slots *service.SlotService, sessions *service.SessionService, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	h := NewSlotHandler(slots, logger)
	sh := NewSessionHandler(sessions, logger)

	router.GET("/api/v1/slots", h.ListAllSlots)
	router.GET("/api/v1/providers/:providerID/sessions", sh.ListSessions)

	group := router.Group("/api/v1/providers/:providerID/slots")
	group.GET("", h.ListSlots)
	group.POST("", h.AddSlot)
	group.DELETE("", h.ClearDay)
	group.POST("/check", h.CheckSlot)
	group.POST("/defaults", h.FillDay)
	group.PUT("/:slotID", h.MoveSlot)
	group.DELETE("/:slotID", h.DeleteSlot)

	return router
}

func NewServer(addr string, router http.Handler, logger *zap.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// Start блокируется до остановки сервера
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
