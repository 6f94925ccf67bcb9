package handler

import (
	"net/http"

	"product-catalog/internal/logger"
	"product-catalog/pkg/envelope"
	"product-catalog/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	MsgRunning   = "Running"
	MsgHealthy   = "Service is running"
	MsgUnhealthy = "Database connection failed"
)

// HealthChecker reports whether a backing store is reachable.
type HealthChecker interface {
	Health() error
}

type StatusHandler struct {
	db HealthChecker
}

// NewStatusHandler creates the status handler. A nil db always reports healthy.
func NewStatusHandler(db HealthChecker) *StatusHandler {
	return &StatusHandler{db: db}
}

func (h *StatusHandler) Status(c *gin.Context) {
	utils.Respond(c, envelope.Empty[envelope.None](http.StatusOK, MsgRunning))
}

func (h *StatusHandler) Health(c *gin.Context) {
	if h.db != nil {
		if err := h.db.Health(); err != nil {
			logger.Error("Health check failed",
				zap.String("event", "health_check_failed"),
				zap.Error(err),
			)
			utils.Respond(c, envelope.Empty[envelope.None](http.StatusServiceUnavailable, MsgUnhealthy))
			return
		}
	}
	utils.Respond(c, envelope.Empty[envelope.None](http.StatusOK, MsgHealthy))
}
