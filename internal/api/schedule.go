package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/perchlabs/perch/internal/db"
)

type updateScheduleRequest struct {
	IntervalMinutes int  `json:"interval_minutes" binding:"required"`
	Enabled         bool `json:"enabled"`
}

// getSchedule returns the periodic ingestion configuration
func (r *Router) getSchedule(c *gin.Context) {
	scheduleRepo := db.NewScheduleRepository(r.repo)
	schedule, err := scheduleRepo.Get(c.Request.Context())
	if err != nil {
		r.logger.Error("Failed to load schedule", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "database error")
		return
	}

	c.JSON(http.StatusOK, scheduleJSON(schedule))
}

// updateSchedule updates the periodic ingestion configuration and
// reloads the scheduler to pick it up
func (r *Router) updateSchedule(c *gin.Context) {
	var req updateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "interval_minutes is required")
		return
	}
	if req.IntervalMinutes < 1 || req.IntervalMinutes > 1440 {
		respondError(c, http.StatusBadRequest, "interval_minutes must be between 1 and 1440")
		return
	}

	scheduleRepo := db.NewScheduleRepository(r.repo)
	schedule, err := scheduleRepo.Get(c.Request.Context())
	if err != nil {
		r.logger.Error("Failed to load schedule", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "database error")
		return
	}

	schedule.IntervalMinutes = req.IntervalMinutes
	schedule.Enabled = req.Enabled
	if err := scheduleRepo.Update(c.Request.Context(), schedule); err != nil {
		r.logger.Error("Failed to update schedule", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "database error")
		return
	}

	if r.scheduler != nil {
		if err := r.scheduler.Reload(c.Request.Context()); err != nil {
			r.logger.Error("Failed to reload scheduler", zap.Error(err))
			respondError(c, http.StatusInternalServerError, "schedule saved but scheduler reload failed")
			return
		}
	}

	c.JSON(http.StatusOK, scheduleJSON(schedule))
}
