package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"aria/internal/config"
	"aria/internal/server/app"
	"aria/internal/session"
)

// NewRouter builds the gin engine with all routes and middleware.
func NewRouter(cfg *config.Config, runs *session.Manager, broadcaster *app.ViewBroadcaster, startTime time.Time) *gin.Engine {
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	if cfg.Server.EnableCORS {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
		corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
		corsConfig.AllowWebSockets = true
		engine.Use(cors.New(corsConfig))
	}

	ingest := NewIngestHandler(runs, broadcaster)
	run := NewRunHandler(runs)
	sse := NewSSEHandler(runs, broadcaster, cfg.Server.Heartbeat)
	ws := NewWSHandler(runs, broadcaster)

	api := engine.Group("/api")
	{
		api.POST("/runs/events", ingest.HandleNewRunEvents)
		api.POST("/runs/:id/events", ingest.HandleEvents)
		api.POST("/runs/:id/end", run.HandleEnd)
		api.GET("/runs/:id", run.HandleView)
		api.GET("/runs/:id/steps", run.HandleSteps)
		api.GET("/runs/:id/message", run.HandleMessage)
		api.GET("/runs/:id/status", run.HandleStatus)
		api.GET("/runs/:id/stream", sse.HandleStream)
		api.GET("/runs/:id/ws", ws.HandleStream)
		api.DELETE("/runs/:id", run.HandleDrop)
	}

	engine.GET("/healthz", func(c *gin.Context) {
		published, dropped := broadcaster.Stats()
		c.JSON(http.StatusOK, gin.H{
			"status":          "ok",
			"uptime":          time.Since(startTime).String(),
			"live_runs":       runs.LiveCount(),
			"views_published": published,
			"views_dropped":   dropped,
		})
	})

	return engine
}
