package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/anjaneya-sharma/Information-Integration-and-Applications-Project/internal/app"
	"github.com/anjaneya-sharma/Information-Integration-and-Applications-Project/internal/config"
	"github.com/anjaneya-sharma/Information-Integration-and-Applications-Project/internal/handler"
	"github.com/anjaneya-sharma/Information-Integration-and-Applications-Project/internal/service"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Print version info
	log.Printf("Real Estate Listing Search")
	log.Printf("Version: %s", Version)
	log.Printf("Build Time: %s", BuildTime)
	log.Printf("Git Commit: %s", GitCommit)
	log.Println("")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	ctx := context.Background()
	application, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer application.Close()

	application.CheckSources(ctx)
	log.Printf("   - Sources: %v", application.Executor.Sources())
	log.Printf("   - Column match threshold: %.2f", cfg.Mapping.MatchThreshold)
	log.Printf("   - Duplicate field threshold: %.2f (min %d fields)", cfg.Dedup.FieldThreshold, cfg.Dedup.MinMatchingFields)

	var refresher *service.MappingRefresher
	if cfg.Mapping.ReloadCron != "" {
		refresher, err = service.NewMappingRefresher(cfg.Mapping.ReloadCron, application.Mapper)
		if err != nil {
			log.Fatalf("Failed to schedule mapping reload: %v", err)
		}
		refresher.Start()
	}

	log.Println("✅ Services initialized")

	// Initialize handlers
	searchHandler := handler.NewSearchHandler(application.Search, cfg.Search.ResultLimit)
	feedbackHandler := handler.NewFeedbackHandler(application.Search)
	adminHandler := handler.NewAdminHandler(application.Admin)

	// Setup Gin router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.AllowedOrigins}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":     "healthy",
			"service":    "listing-search",
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// Version endpoint
	router.GET("/version", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// API routes
	apiV1 := router.Group("/api/v1")
	{
		// Search endpoints
		apiV1.POST("/search", searchHandler.Search)
		apiV1.GET("/search", searchHandler.SearchForm)

		// Feedback endpoint
		apiV1.POST("/feedback", feedbackHandler.Submit)

		// Administration
		apiV1.GET("/mappings", adminHandler.Mappings)
		apiV1.POST("/mappings/reload", adminHandler.ReloadMappings)
		apiV1.GET("/sources", adminHandler.Sources)
		apiV1.GET("/sources/:id/schema", adminHandler.Schema)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{"error": "API endpoint not found"})
	})

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("🚀 Starting server on %s", addr)
	log.Printf("📝 API Documentation: http://localhost:%d/api/v1", cfg.Server.Port)

	// Graceful shutdown
	go func() {
		if err := router.Run(addr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if refresher != nil {
		refresher.Stop()
	}
	log.Println("✅ Server stopped")
}
