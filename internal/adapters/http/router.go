package http

import (
	"context"
	stdhttp "net/http"
	"path/filepath"
	"time"

	"github.com/dkeye/Chat/internal/adapters/signal"
	"github.com/dkeye/Chat/internal/config"
	"github.com/dkeye/Chat/internal/domain"
	"github.com/dkeye/Chat/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// RequestLogger writes one zerolog line per HTTP request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("module", "adapters.http").
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, ctl *signal.SignalWSController, metrics *observability.Metrics) *gin.Engine {
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(RequestLogger())
	}
	r.Use(gin.Recovery())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(filepath.Join(cfg.StaticPath, "index.html"))
	})

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(stdhttp.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	r.GET("/ws", func(c *gin.Context) {
		ctl.HandleSignal(ctx, c)
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	api := r.Group("/api")

	// GET /api/rooms: live rooms with member counts
	api.GET("/rooms", func(c *gin.Context) {
		var rooms []domain.RoomInfo
		if err := ctl.Loop.Call(c.Request.Context(), func() { rooms = ctl.Orch.Rooms() }); err != nil {
			log.Error().Err(err).Str("module", "adapters.http").Msg("list rooms")
			c.JSON(stdhttp.StatusServiceUnavailable, gin.H{"error": "unavailable"})
			return
		}
		c.JSON(stdhttp.StatusOK, gin.H{"rooms": rooms})
	})

	// GET /api/rooms/:name/members: roster of one room
	api.GET("/rooms/:name/members", func(c *gin.Context) {
		name := domain.RoomName(c.Param("name"))
		var (
			users []domain.Username
			found bool
		)
		if err := ctl.Loop.Call(c.Request.Context(), func() { users, found = ctl.Orch.Roster(name) }); err != nil {
			log.Error().Err(err).Str("module", "adapters.http").Str("room", string(name)).Msg("room members")
			c.JSON(stdhttp.StatusServiceUnavailable, gin.H{"error": "unavailable"})
			return
		}
		if !found {
			c.JSON(stdhttp.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		c.JSON(stdhttp.StatusOK, gin.H{"room": name, "users": users})
	})

	return r
}
