package main

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/watercup/backend/pkg/watercup/auth"
	"github.com/watercup/backend/pkg/watercup/config"
	"github.com/watercup/backend/pkg/watercup/database"
	"github.com/watercup/backend/pkg/watercup/groups"
	"github.com/watercup/backend/pkg/watercup/hydration"
	"github.com/watercup/backend/pkg/watercup/leaderboard"
	"github.com/watercup/backend/pkg/watercup/models"
	"github.com/watercup/backend/pkg/watercup/realtime"

	_ "github.com/watercup/backend/api/swagger"
)

// @title Water Cup API
// @version 1.0
// @description Group hydration logging with live weekly leaderboards.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Session token. Format: "Bearer {token}"

func main() {
	// .env is optional; real deployments configure through the environment
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Auth.JWTSecret != "" {
		auth.SetJWTSecret(cfg.Auth.JWTSecret)
	}

	if err := database.Connect(cfg.Database.SqlitePath); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := models.AutoMigrate(database.GetDB()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	// Redis fans change signals out across instances; without it the
	// in-process notifier still serves a single node.
	var notifier realtime.Notifier
	if cfg.Database.Redis.Address != "" {
		client, err := database.ConnectRedis(cfg.Database.Redis.Address, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer client.Close()
		notifier = realtime.NewRedisNotifier(client)
		log.Println("Using redis change notifier")
	} else {
		notifier = realtime.NewMemoryNotifier()
		log.Println("Redis not configured, using in-process change notifier")
	}

	gin.SetMode(cfg.Server.Mode)
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		authHandler := auth.NewHandler(database.GetDB(), auth.LogSender{}, cfg.Auth.CodeTTL)
		authHandler.RegisterRoutes(api.Group("/auth"))

		// Everything below requires a real (non-anonymous) session
		groupsGroup := api.Group("/groups")
		groupsGroup.Use(auth.AuthMiddleware())

		groupsHandler := groups.NewHandler(database.GetDB())
		groupsHandler.RegisterRoutes(groupsGroup)
		groupsHandler.RegisterMemberRoutes(groupsGroup)

		hydrationHandler := hydration.NewHandler(database.GetDB(), notifier)
		hydrationHandler.RegisterRoutes(groupsGroup)

		leaderboardHandler := leaderboard.NewHandler(database.GetDB())
		leaderboardHandler.RegisterRoutes(groupsGroup)

		realtimeHandler := realtime.NewHandler(database.GetDB(), notifier)
		realtimeHandler.RegisterRoutes(groupsGroup)
	}

	log.Printf("Starting server on %s", cfg.Server.Address)
	if err := r.Run(cfg.Server.Address); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
