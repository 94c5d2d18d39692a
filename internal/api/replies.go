package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/perchlabs/perch/internal/db"
	"github.com/perchlabs/perch/internal/models"
)

// listReplies returns captured replies, newest first
func (r *Router) listReplies(c *gin.Context) {
	replyRepo := db.NewReplyRepository(r.repo)
	replies, err := replyRepo.List(c.Request.Context(),
		queryInt(c, "limit", defaultPageSize),
		queryInt(c, "offset", 0))
	if err != nil {
		r.logger.Error("Failed to list replies", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "database error")
		return
	}

	out := make([]gin.H, 0, len(replies))
	for i := range replies {
		out = append(out, replyJSON(&replies[i]))
	}
	c.JSON(http.StatusOK, out)
}

// listLogs returns ingestion log rows, optionally filtered by account
// and status
func (r *Router) listLogs(c *gin.Context) {
	filter := db.LogFilter{
		Limit:  queryInt(c, "limit", defaultPageSize),
		Offset: queryInt(c, "offset", 0),
	}
	if v := c.Query("account_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid account_id")
			return
		}
		filter.AccountID = id
	}
	if v := c.Query("status"); v != "" {
		status := models.RunStatus(v)
		switch status {
		case models.RunStatusSuccess, models.RunStatusFailed, models.RunStatusPartial:
			filter.Status = status
		default:
			respondError(c, http.StatusBadRequest, "invalid status")
			return
		}
	}

	logRepo := db.NewLogRepository(r.repo)
	logs, err := logRepo.List(c.Request.Context(), filter)
	if err != nil {
		r.logger.Error("Failed to list logs", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "database error")
		return
	}

	out := make([]gin.H, 0, len(logs))
	for i := range logs {
		out = append(out, logJSON(&logs[i]))
	}
	c.JSON(http.StatusOK, out)
}
