package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tripcraft/database"
	"tripcraft/itinerary"
	"tripcraft/services"
)

// DBTripSaver persists confirmed trips to Postgres. It backs both the trips
// endpoint and the builder's confirm step.
type DBTripSaver struct{}

func (DBTripSaver) SaveTrip(ctx context.Context, p itinerary.TripPayload) (string, error) {
	if p.Destination == "" {
		return "", fmt.Errorf("destination is required")
	}

	marshal := func(items []itinerary.SelectionItem) string {
		data, err := json.Marshal(items)
		if err != nil {
			return "[]"
		}
		return string(data)
	}

	trip := &database.Trip{
		ID:             uuid.New().String(),
		Destination:    p.Destination,
		StartDate:      p.StartDate,
		EndDate:        p.EndDate,
		Duration:       p.Duration,
		Budget:         p.Budget,
		TotalCost:      p.TotalSpent,
		TravelJSON:     marshal(p.Travel),
		HotelsJSON:     marshal(p.Hotels),
		ActivitiesJSON: marshal(p.Activities),
		DiningJSON:     marshal(p.Dining),
	}
	if err := database.SaveTrip(trip); err != nil {
		return "", fmt.Errorf("save trip: %w", err)
	}
	return trip.ID, nil
}

// ─── Handlers ─────────────────────────────────────────────────────────────────

// SaveTripHandler is the trip-persistence service: it accepts the aggregated
// builder payload and returns the new trip's identifier.
func SaveTripHandler(c *gin.Context) {
	var payload itinerary.TripPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if payload.Destination == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Destination is required"})
		return
	}
	if payload.Budget < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Budget must not be negative"})
		return
	}

	id, err := DBTripSaver{}.SaveTrip(c.Request.Context(), payload)
	if err != nil {
		log.Printf("❌ Failed to save trip: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save trip"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"trip_id": id})
}

type tripView struct {
	ID          string                    `json:"id"`
	Destination string                    `json:"destination"`
	StartDate   string                    `json:"start_date"`
	EndDate     string                    `json:"end_date"`
	Duration    int                       `json:"duration"`
	Budget      float64                   `json:"budget"`
	TotalCost   float64                   `json:"total_cost"`
	Travel      []itinerary.SelectionItem `json:"travel"`
	Hotels      []itinerary.SelectionItem `json:"hotels"`
	Activities  []itinerary.SelectionItem `json:"activities"`
	Dining      []itinerary.SelectionItem `json:"dining"`
	CreatedAt   string                    `json:"created_at"`
}

func GetTripHandler(c *gin.Context) {
	trip, err := database.GetTrip(c.Param("id"))
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Trip not found"})
		return
	}
	if err != nil {
		log.Printf("❌ Failed to load trip: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load trip"})
		return
	}

	unmarshal := func(raw string) []itinerary.SelectionItem {
		items := []itinerary.SelectionItem{}
		if raw != "" {
			if err := json.Unmarshal([]byte(raw), &items); err != nil {
				log.Printf("⚠️  Corrupt selection JSON on trip %s: %v", trip.ID, err)
			}
		}
		return items
	}

	c.JSON(http.StatusOK, tripView{
		ID:          trip.ID,
		Destination: trip.Destination,
		StartDate:   trip.StartDate,
		EndDate:     trip.EndDate,
		Duration:    trip.Duration,
		Budget:      trip.Budget,
		TotalCost:   trip.TotalCost,
		Travel:      unmarshal(trip.TravelJSON),
		Hotels:      unmarshal(trip.HotelsJSON),
		Activities:  unmarshal(trip.ActivitiesJSON),
		Dining:      unmarshal(trip.DiningJSON),
		CreatedAt:   trip.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

func ListTripsHandler(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	trips, err := database.ListTrips(limit)
	if err != nil {
		log.Printf("❌ Failed to list trips: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list trips"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"trips": trips})
}

// TripPDFHandler renders the trip itinerary as PDF, caching the bytes on the
// trip row after the first render.
func TripPDFHandler(c *gin.Context) {
	trip, err := database.GetTrip(c.Param("id"))
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Trip not found"})
		return
	}
	if err != nil {
		log.Printf("❌ Failed to load trip: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load trip"})
		return
	}

	pdfBytes := trip.PDFData
	if len(pdfBytes) == 0 {
		unmarshal := func(raw string) []itinerary.SelectionItem {
			var items []itinerary.SelectionItem
			_ = json.Unmarshal([]byte(raw), &items)
			return items
		}
		doc := services.TripDocument{
			TripID: trip.ID,
			Payload: itinerary.TripPayload{
				Destination: trip.Destination,
				Duration:    trip.Duration,
				StartDate:   trip.StartDate,
				EndDate:     trip.EndDate,
				Budget:      trip.Budget,
				TotalSpent:  trip.TotalCost,
				Travel:      unmarshal(trip.TravelJSON),
				Hotels:      unmarshal(trip.HotelsJSON),
				Activities:  unmarshal(trip.ActivitiesJSON),
				Dining:      unmarshal(trip.DiningJSON),
			},
			AISummary: trip.AISummary,
		}

		pdfBytes, err = services.GenerateTripPDF(doc)
		if err != nil {
			log.Printf("❌ PDF generation failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate PDF"})
			return
		}
		if err := database.UpdateTripPDF(trip.ID, pdfBytes); err != nil {
			log.Printf("⚠️  Failed to cache PDF for trip %s: %v", trip.ID, err)
		}
	}

	c.Header("Content-Disposition", "attachment; filename=tripcraft-itinerary.pdf")
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

func HealthHandler(c *gin.Context) {
	dbStatus := "ok"
	if database.DB == nil {
		dbStatus = "not initialized"
	} else if err := database.DB.Ping(); err != nil {
		dbStatus = "error: " + err.Error()
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"service":  "TripCraft API",
		"database": dbStatus,
	})
}
