package main

import (
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/castrelay/signaling/config"
	"github.com/castrelay/signaling/internal/handlers"
	"github.com/castrelay/signaling/internal/middleware"
	"github.com/castrelay/signaling/internal/presence"
	"github.com/castrelay/signaling/internal/registry"
	"github.com/castrelay/signaling/internal/signaling"
	"github.com/castrelay/signaling/internal/turnrest"
)

func main() {
	cfg := config.Load()

	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.Warnf("invalid log level %q, using info", cfg.LogLevel)
	}

	// Optional presence mirror
	var mirror *presence.Mirror
	if cfg.Redis.Addr != "" {
		var err error
		mirror, err = presence.Connect(cfg.Redis)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer mirror.Close()
		log.Info("Redis presence mirror enabled")
	}

	// Optional TURN REST credentials
	var turnGen *turnrest.Generator
	if cfg.ICE.TURNSecret != "" {
		var err error
		turnGen, err = turnrest.NewGenerator(cfg.ICE.TURNSecret, cfg.ICE.TURNTTL)
		if err != nil {
			log.Fatalf("Invalid TURN REST configuration: %v", err)
		}
	}

	reg := registry.New()
	hub := signaling.NewHub()
	router := signaling.NewRouter(reg, hub, mirror, cfg.SameSubnetOnly)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.Default()

	// Global CORS middleware (runs before routing)
	engine.Use(handlers.OriginFilter(cfg.AllowedOrigins))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	apiGroup := engine.Group("/api")
	{
		// Client-facing discovery endpoints (public)
		apiGroup.GET("/ice-servers", handlers.ICEServers(cfg.ICE, turnGen))
		apiGroup.GET("/client-ip", handlers.ClientIP)

		// Operator room stats (requires JWT)
		apiGroup.GET("/rooms", middleware.JWTAuth(cfg.JWTSecret), handlers.ListRooms(reg))
		apiGroup.GET("/rooms/:roomId", middleware.JWTAuth(cfg.JWTSecret), handlers.GetRoom(reg))
	}

	// WebSocket signaling endpoint
	wsGroup := engine.Group("/ws")
	{
		wsGroup.GET("/signal", handlers.Signaling(hub, router))
	}

	log.Infof("Starting screen-share signaling server on port %s", cfg.Port)
	if err := engine.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
