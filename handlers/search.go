package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"tripcraft/services"
)

// Search handlers are thin proxies: validate the query, call the collaborator,
// fall back to estimated data when it is unconfigured or failing, and label
// the source either way.

const (
	sourceLive      = "live"
	sourceEstimated = "estimated"
)

// ─── Flights ─────────────────────────────────────────────────────────────────

type flightSearchRequest struct {
	Origin        string `json:"origin" binding:"required"`
	Destination   string `json:"destination" binding:"required"`
	DepartureDate string `json:"departure_date" binding:"required"`
	Passengers    int    `json:"passengers"`
}

type flightSearchResponse struct {
	Flights []services.Flight `json:"flights"`
	Source  string            `json:"source"`
}

func SearchFlightsHandler(c *gin.Context) {
	var req flightSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	req.Origin = strings.ToUpper(strings.TrimSpace(req.Origin))
	req.Destination = strings.ToUpper(strings.TrimSpace(req.Destination))
	if len(req.Origin) != 3 || len(req.Destination) != 3 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Airport codes must be exactly 3 characters (e.g. LHR, JFK)"})
		return
	}
	if _, err := time.Parse("2006-01-02", req.DepartureDate); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid departure date format. Use YYYY-MM-DD"})
		return
	}
	if req.Passengers <= 0 {
		req.Passengers = 1
	}

	source := sourceLive
	var flights []services.Flight

	client := services.GetAmadeusClient()
	if client.Configured() {
		live, err := client.SearchFlights(req.Origin, req.Destination, req.DepartureDate, req.Passengers)
		switch {
		case err != nil:
			log.Printf("⚠️  Amadeus flight search failed: %v — using fallback", err)
		case len(live) == 0:
			log.Println("⚠️  Amadeus returned 0 flights — using fallback")
		default:
			flights = live
		}
	}
	if flights == nil {
		flights = services.FallbackFlights(req.Origin, req.Destination, req.DepartureDate)
		source = sourceEstimated
	}

	c.JSON(http.StatusOK, flightSearchResponse{Flights: flights, Source: source})
}

// ─── Trains ──────────────────────────────────────────────────────────────────

type trainSearchRequest struct {
	Origin      string `json:"origin" binding:"required"`
	Destination string `json:"destination" binding:"required"`
	Date        string `json:"date" binding:"required"`
}

func SearchTrainsHandler(c *gin.Context) {
	var req trainSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date format. Use YYYY-MM-DD"})
		return
	}

	source := sourceLive
	var trains []services.TrainOption

	client := services.GetTrainClient()
	if client.Configured() {
		live, err := client.SearchTrains(req.Origin, req.Destination, req.Date)
		if err != nil {
			log.Printf("⚠️  Train search failed: %v — using fallback", err)
		} else if len(live) > 0 {
			trains = live
		}
	}
	if trains == nil {
		trains = services.FallbackTrains(req.Origin, req.Destination, req.Date)
		source = sourceEstimated
	}

	c.JSON(http.StatusOK, gin.H{"trains": trains, "source": source})
}

// ─── Hotels ──────────────────────────────────────────────────────────────────

type hotelSearchRequest struct {
	CityCode string `json:"city_code" binding:"required"`
	CheckIn  string `json:"check_in" binding:"required"`
	CheckOut string `json:"check_out" binding:"required"`
	Guests   int    `json:"guests"`
}

func SearchHotelsHandler(c *gin.Context) {
	var req hotelSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	req.CityCode = strings.ToUpper(strings.TrimSpace(req.CityCode))
	checkIn, err := time.Parse("2006-01-02", req.CheckIn)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid check-in date format. Use YYYY-MM-DD"})
		return
	}
	checkOut, err := time.Parse("2006-01-02", req.CheckOut)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid check-out date format. Use YYYY-MM-DD"})
		return
	}
	if !checkOut.After(checkIn) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Check-out date must be after check-in date"})
		return
	}
	if req.Guests <= 0 {
		req.Guests = 1
	}

	source := sourceLive
	var hotels []services.Hotel

	client := services.GetAmadeusClient()
	if client.Configured() {
		live, err := client.SearchHotels(req.CityCode, req.CheckIn, req.CheckOut, req.Guests)
		switch {
		case err != nil:
			log.Printf("⚠️  Amadeus hotel search failed: %v — using fallback", err)
		case len(live) == 0:
			log.Println("⚠️  Amadeus returned 0 hotels — using fallback")
		default:
			hotels = live
		}
	}
	if hotels == nil {
		hotels = services.FallbackHotels(req.CityCode)
		source = sourceEstimated
	}

	c.JSON(http.StatusOK, gin.H{"hotels": hotels, "source": source})
}

// ─── Local places ────────────────────────────────────────────────────────────

type placeSearchRequest struct {
	Query    string `json:"query" binding:"required"`
	Location string `json:"location" binding:"required"`
}

func SearchPlacesHandler(c *gin.Context) {
	var req placeSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	source := sourceLive
	var places []services.Place

	client := services.GetPlacesClient()
	if client.Configured() {
		live, err := client.SearchPlaces(req.Query, req.Location)
		if err != nil {
			log.Printf("⚠️  Place search failed: %v — using fallback", err)
		} else if len(live) > 0 {
			places = live
		}
	}
	if places == nil {
		places = services.FallbackPlaces(req.Query, req.Location)
		source = sourceEstimated
	}

	c.JSON(http.StatusOK, gin.H{"places": places, "source": source})
}
