package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/perchlabs/perch/internal/cache"
	"github.com/perchlabs/perch/internal/db"
	"github.com/perchlabs/perch/internal/twitter"
)

const (
	statsCacheKey = "dashboard:stats"
	statsCacheTTL = time.Minute
	statsWindow   = 30 * 24 * time.Hour
)

// dashboardStats returns overview statistics for the operator
// dashboard. Results are cached in Redis for a short interval since
// every page load hits this endpoint.
func (r *Router) dashboardStats(c *gin.Context) {
	if cached, err := r.cache.Get(statsCacheKey); err == nil {
		c.Data(http.StatusOK, "application/json", []byte(cached))
		return
	}

	ctx := c.Request.Context()
	since := time.Now().Add(-statsWindow)

	accountRepo := db.NewAccountRepository(r.repo)
	postRepo := db.NewPostRepository(r.repo)
	replyRepo := db.NewReplyRepository(r.repo)
	logRepo := db.NewLogRepository(r.repo)

	totalAccounts, activeAccounts, err := accountRepo.Count(ctx)
	if err != nil {
		r.logger.Error("Failed to count accounts", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "database error")
		return
	}
	totalPosts, err := postRepo.CountSince(ctx, since)
	if err != nil {
		r.logger.Error("Failed to count posts", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "database error")
		return
	}
	totalReplies, err := replyRepo.CountSince(ctx, since)
	if err != nil {
		r.logger.Error("Failed to count replies", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "database error")
		return
	}
	logCount, err := logRepo.Count(ctx)
	if err != nil {
		r.logger.Error("Failed to count logs", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "database error")
		return
	}

	var lastRun *time.Time
	latest, err := logRepo.Latest(ctx)
	if err != nil {
		r.logger.Error("Failed to load latest log", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "database error")
		return
	}
	if latest != nil {
		t := latest.CreatedAt
		lastRun = &t
	}

	stats := gin.H{
		"total_accounts":  totalAccounts,
		"active_accounts": activeAccounts,
		"total_posts":     totalPosts,
		"total_replies":   totalReplies,
		"ingestion_runs":  logCount,
		"last_run_at":     lastRun,
	}

	if body, err := json.Marshal(stats); err == nil {
		if err := r.cache.Set(statsCacheKey, string(body), statsCacheTTL); err != nil && !errors.Is(err, cache.ErrCacheDisabled) {
			r.logger.Warn("Failed to cache dashboard stats", zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, stats)
}

// connectivityCheck verifies the upstream API is reachable with the
// configured credentials. A not-found for the probe handle still
// proves reachability.
func (r *Router) connectivityCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	_, err := r.client.ResolveAccount(ctx, "twitter")
	available := err == nil || errors.Is(err, twitter.ErrNotFound)

	status := gin.H{"available": available}
	if err != nil && !available {
		status["error"] = err.Error()
	}

	c.JSON(http.StatusOK, status)
}
