package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/perchlabs/perch/internal/cache"
	"github.com/perchlabs/perch/internal/db"
	"github.com/perchlabs/perch/internal/monitor"
	"github.com/perchlabs/perch/internal/scheduler"
	"github.com/perchlabs/perch/internal/twitter"
	"github.com/perchlabs/perch/pkg/logging"
)

// Router sets up API routes
type Router struct {
	repo      *db.Repository
	cache     *cache.Cache
	service   *monitor.Service
	client    *twitter.Client
	scheduler *scheduler.Scheduler
	logger    *zap.Logger
}

// NewRouter creates a new API router
func NewRouter(database *db.DB, redisCache *cache.Cache, service *monitor.Service, client *twitter.Client, sched *scheduler.Scheduler) *Router {
	return &Router{
		repo:      db.NewRepository(database.DB),
		cache:     redisCache,
		service:   service,
		client:    client,
		scheduler: sched,
		logger:    logging.WithComponent("api-router"),
	}
}

// SetupRoutes sets up all API routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	engine.GET("/health", r.healthHandler)

	api := engine.Group("/api")
	{
		api.GET("/accounts", r.listAccounts)
		api.POST("/accounts", r.addAccount)
		api.GET("/accounts/:id", r.getAccount)
		api.PATCH("/accounts/:id", r.updateAccount)
		api.POST("/accounts/:id/ingest", r.ingestAccount)
		api.POST("/ingest", r.ingestAll)

		api.GET("/posts", r.listPosts)
		api.GET("/posts/:id", r.getPost)
		api.GET("/posts/:id/replies", r.listPostReplies)
		api.GET("/replies", r.listReplies)
		api.GET("/logs", r.listLogs)

		api.GET("/schedule", r.getSchedule)
		api.PUT("/schedule", r.updateSchedule)
	}

	dash := engine.Group("/dashboard")
	{
		dash.GET("/stats", r.dashboardStats)
		dash.GET("/connectivity", r.connectivityCheck)
	}
}

// healthHandler handles health check requests
func (r *Router) healthHandler(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":  "OK",
		"service": "perch-api",
	})
}

// respondError writes a JSON error body
func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}
