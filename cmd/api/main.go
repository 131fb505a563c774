package main

import (
	"os"
	"strconv"

	"github.com/Ru28/growgreen-backend/internal/db"
	"github.com/Ru28/growgreen-backend/internal/handlers"
	"github.com/Ru28/growgreen-backend/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file before anything reads the environment
	envMissing := godotenv.Load() != nil

	logger := logging.Setup(logging.DefaultLogConfig())
	if envMissing {
		logger.Debug().Msg("no .env file found, using environment variables")
	}

	// Initialize database
	if err := db.InitDB(); err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.CloseDB()

	// Get number of close workers from env or default to 5
	numWorkers := 5
	if workers := os.Getenv("NUM_WORKERS"); workers != "" {
		if n, err := strconv.Atoi(workers); err == nil && n > 0 {
			numWorkers = n
		}
	}

	// Initialize close processor
	closeProcessor := handlers.NewCloseProcessor(numWorkers)
	closeProcessor.Start()
	defer closeProcessor.Stop()

	// Set Gin mode based on environment
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create Gin router
	router := gin.Default()

	// API routes
	api := router.Group("/api")
	{
		// Portfolio snapshot; clients re-fetch this after every mutation
		api.GET("/trades", handlers.GetAllTradeData)

		// Active trade lifecycle
		api.POST("/trades/active", handlers.CreateActiveTrade)
		api.PUT("/trades/active/:id", handlers.UpdateActiveTrade)
		api.DELETE("/trades/active/:id", handlers.DeleteActiveTrade)
		api.POST("/trades/active/:id/close", closeProcessor.CloseTrade)

		// Closed trade corrections
		api.PUT("/trades/closed/:id", handlers.UpdateClosedTrade)
		api.DELETE("/trades/closed/:id", handlers.DeleteClosedTrade)

		// Report metrics and export
		api.PUT("/report", handlers.UpdateReport)
		api.GET("/report/download", handlers.DownloadReport)
	}

	// WebSocket endpoint
	router.GET("/ws/valuation", handlers.HandleValuationSocket)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	})

	// Get port from environment or default
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logger.Info().Str("port", port).Msg("server starting")
	if err := router.Run(":" + port); err != nil {
		logger.Fatal().Err(err).Msg("failed to start server")
	}
}
