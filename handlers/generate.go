package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tripcraft/services"
)

type generateRequest struct {
	Destination string  `json:"destination" binding:"required"`
	StartDate   string  `json:"start_date" binding:"required"`
	EndDate     string  `json:"end_date" binding:"required"`
	PartySize   int     `json:"party_size"`
	TripType    string  `json:"trip_type"`
	Budget      float64 `json:"budget"`
	Notes       string  `json:"notes"`
}

// GenerateHandler asks the configured AI backend for a complete itinerary
// matching the fixed schema. Without a backend the deterministic fallback
// itinerary is returned, labeled as estimated.
func GenerateHandler(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start date format. Use YYYY-MM-DD"})
		return
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid end date format. Use YYYY-MM-DD"})
		return
	}
	if end.Before(start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "End date must not be before start date"})
		return
	}
	if req.Budget < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Budget must not be negative"})
		return
	}
	if req.PartySize <= 0 {
		req.PartySize = 1
	}

	days := int(end.Sub(start).Hours()/24) + 1

	aiReq := services.ItineraryRequest{
		Destination: req.Destination,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Days:        days,
		PartySize:   req.PartySize,
		TripType:    req.TripType,
		Budget:      req.Budget,
		Notes:       req.Notes,
	}

	gen := services.GetGenerator()
	if gen == nil {
		c.JSON(http.StatusOK, gin.H{
			"itinerary": services.FallbackItinerary(aiReq),
			"source":    sourceEstimated,
		})
		return
	}

	it, err := gen.GenerateItinerary(c.Request.Context(), aiReq)
	if err != nil {
		log.Printf("❌ Itinerary generation failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Itinerary generation failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"itinerary": it, "source": sourceLive})
}
