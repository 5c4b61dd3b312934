package main

import (
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/mossy-p/flake/config"
	"github.com/mossy-p/flake/internal/handlers"
	"github.com/mossy-p/flake/internal/middleware"
	"github.com/mossy-p/flake/internal/room"
	"github.com/mossy-p/flake/internal/store"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log.SetFormatter(&log.JSONFormatter{})
	log.SetLevel(log.InfoLevel)

	// Open the room store
	st, err := openStore(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to open room store")
	}
	defer st.Close()

	log.WithField("backend", cfg.StoreBackend).Info("room store ready")

	rooms := room.NewService(st)
	handler := handlers.NewHandler(rooms)

	// Setup Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.NewRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst))

	// Global CORS middleware (runs before routing)
	router.Use(handlers.OriginFilter(cfg.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Room API
	apiGroup := router.Group("/api")
	{
		// Admin login (public)
		apiGroup.POST("/auth/login", handlers.Login(cfg.AdminUsername, cfg.AdminPassword, cfg.JWTSecret))

		apiGroup.POST("/rooms", handler.CreateRoom)
		apiGroup.GET("/rooms/:code", handler.GetRoom)
		apiGroup.POST("/rooms/:code/join", handler.JoinRoom)
		apiGroup.POST("/rooms/:code/vote", handler.CastVote)
		apiGroup.POST("/rooms/:code/flake", handler.Flake)
		apiGroup.GET("/rooms/:code/results", handler.GetResults)
		apiGroup.POST("/rooms/:code/size", handler.ResizeRoom)

		// Admin endpoints (require JWT)
		adminGroup := apiGroup.Group("/admin", middleware.JWTAuth(cfg.JWTSecret))
		{
			adminGroup.GET("/rooms/:code", handler.InspectRoom)
			adminGroup.DELETE("/rooms/:code", handler.DeleteRoom)
		}
	}

	// WebSocket live results endpoint
	wsGroup := router.Group("/ws")
	{
		wsGroup.GET("/rooms/:code", handler.WatchResults)
	}

	// Start server
	log.WithField("port", cfg.Port).Info("starting flake server")
	if err := router.Run(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("failed to start server")
	}
}

func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.StoreBackend {
	case "bbolt":
		return store.NewBBoltStore(cfg.BBoltPath)
	default:
		return store.NewRedisStore(cfg.Redis)
	}
}
