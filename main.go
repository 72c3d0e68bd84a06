package main

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"tripcraft/database"
	"tripcraft/handlers"
	"tripcraft/itinerary"
	"tripcraft/services"
)

func main() {
	// Load .env file (ignored in production where env vars are set directly)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found — using environment variables")
	}

	database.InitDB()
	services.InitAmadeus()
	services.InitTrains()
	services.InitPlaces()
	services.InitAI()

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.SetTrustedProxies([]string{"0.0.0.0/0"})

	// CORS — allow configured frontend origins
	allowedOrigins := []string{"http://localhost:5173", "http://localhost:3000"}
	if urls := os.Getenv("FRONTEND_URL"); urls != "" {
		for _, u := range strings.Split(urls, ",") {
			if u = strings.TrimSpace(u); u != "" {
				allowedOrigins = append(allowedOrigins, u)
			}
		}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Session-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Session-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// Builder state lives in JSON files, one per session
	stateDir := os.Getenv("BUILDER_STATE_DIR")
	if stateDir == "" {
		stateDir = "./data/builder"
	}
	builder := handlers.NewBuilderHandler(itinerary.NewManager(stateDir), handlers.DBTripSaver{})

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthHandler)

		builder.Register(api.Group("/builder"))

		search := api.Group("/search")
		{
			search.POST("/flights", handlers.SearchFlightsHandler)
			search.POST("/trains", handlers.SearchTrainsHandler)
			search.POST("/hotels", handlers.SearchHotelsHandler)
			search.POST("/places", handlers.SearchPlacesHandler)
		}

		api.POST("/generate", handlers.GenerateHandler)

		api.POST("/trips", handlers.SaveTripHandler)
		api.GET("/trips", handlers.ListTripsHandler)
		api.GET("/trips/:id", handlers.GetTripHandler)
		api.GET("/trips/:id/pdf", handlers.TripPDFHandler)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("🚀 TripCraft backend starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
