package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/suweldo/payroll-backend/internal/infrastructure/scheduler"
)

// SystemHandler handles system-related API endpoints
type SystemHandler struct {
	BaseHandler
	startTime        time.Time
	db               *gorm.DB
	trigger          *scheduler.CronTrigger
	schedulerEnabled bool
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db *gorm.DB, trigger *scheduler.CronTrigger, schedulerEnabled bool) *SystemHandler {
	return &SystemHandler{
		startTime:        time.Now(),
		db:               db,
		trigger:          trigger,
		schedulerEnabled: schedulerEnabled,
	}
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// GetSystemInfo returns basic system information including version and uptime
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	info := SystemInfoResponse{
		Name:      "Payroll Backend API",
		Version:   "1.0.0",
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}

	h.Success(c, info)
}

// PingResponse represents the ping response
type PingResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Ping checks if the API is responsive
func (h *SystemHandler) Ping(c *gin.Context) {
	h.Success(c, PingResponse{
		Message:   "pong",
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// Health reports process liveness and database connectivity
func (h *SystemHandler) Health(c *gin.Context) {
	resp := HealthResponse{Status: "ok", Database: "ok"}

	if h.db != nil {
		sqlDB, err := h.db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			resp.Status = "degraded"
			resp.Database = "unreachable"
			c.JSON(http.StatusServiceUnavailable, resp)
			return
		}
	}

	c.JSON(http.StatusOK, resp)
}

// GetSchedulerStatus reports whether the sweep scheduler is enabled
func (h *SystemHandler) GetSchedulerStatus(c *gin.Context) {
	types := scheduler.AllSweepTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}

	h.Success(c, SchedulerStatusData{
		Enabled:        h.schedulerEnabled,
		AvailableTypes: names,
	})
}

// SweepTriggerResponse acknowledges a manually queued sweep
type SweepTriggerResponse struct {
	SweepType string    `json:"sweep_type"`
	AsOf      time.Time `json:"as_of"`
	Queued    bool      `json:"queued"`
}

// TriggerSweep queues a maintenance sweep outside the daily schedule
func (h *SystemHandler) TriggerSweep(c *gin.Context) {
	var sweepType scheduler.SweepType
	switch c.Param("type") {
	case "loan-defaults":
		sweepType = scheduler.SweepTypeLoanDefaults
	case "unclaimed-envelopes":
		sweepType = scheduler.SweepTypeUnclaimedEnvelopes
	default:
		h.Error(c, http.StatusBadRequest, "INVALID_SWEEP_TYPE", "Unknown sweep type")
		return
	}

	if h.trigger == nil {
		h.Error(c, http.StatusServiceUnavailable, "SCHEDULER_DISABLED", "Sweep scheduler is not running")
		return
	}

	asOf := time.Now()
	if err := h.trigger.TriggerManualSweep(sweepType, asOf); err != nil {
		h.Error(c, http.StatusServiceUnavailable, "SWEEP_QUEUE_FULL", err.Error())
		return
	}

	c.JSON(http.StatusAccepted, SweepTriggerResponse{
		SweepType: string(sweepType),
		AsOf:      asOf,
		Queued:    true,
	})
}

// RegisterRoutes registers system endpoints
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	system := rg.Group("/system")
	{
		system.GET("/info", h.GetSystemInfo)
		system.GET("/ping", h.Ping)
		system.GET("/health", h.Health)
		system.GET("/scheduler", h.GetSchedulerStatus)
		system.POST("/sweeps/:type", h.TriggerSweep)
	}
}
