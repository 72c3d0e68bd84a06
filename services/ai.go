package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ─── Fixed response schema ────────────────────────────────────────────────────

// GeneratedItinerary is the fixed schema every generation backend must emit.
type GeneratedItinerary struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Destination string         `json:"destination"`
	Duration    int            `json:"duration"`
	Budget      float64        `json:"budget"`
	Days        []DayPlan      `json:"days"`
	Flights     []FlightOption `json:"flights,omitempty"`
	Places      []string       `json:"places,omitempty"`
	Activities  []string       `json:"activities,omitempty"`
	Dining      []string       `json:"dining,omitempty"`
}

type DayPlan struct {
	Day           int      `json:"day"`
	Activities    []string `json:"activities"`
	Meals         []string `json:"meals"`
	Accommodation string   `json:"accommodation,omitempty"`
}

type FlightOption struct {
	Airline   string  `json:"airline"`
	Price     float64 `json:"price"`
	Departure string  `json:"departure"`
	Arrival   string  `json:"arrival"`
	Duration  string  `json:"duration,omitempty"`
}

// ItineraryRequest describes the trip the model should plan.
type ItineraryRequest struct {
	Destination string
	StartDate   string
	EndDate     string
	Days        int
	PartySize   int
	TripType    string
	Budget      float64
	Notes       string
}

// Generator produces a schema-valid itinerary for a trip request.
type Generator interface {
	GenerateItinerary(ctx context.Context, req ItineraryRequest) (*GeneratedItinerary, error)
}

var generator Generator

// InitAI selects the generation backend: Gemini when GEMINI_API_KEY is set,
// HuggingFace when HUGGINGFACE_API_KEY is set, otherwise nothing (handlers
// fall back to a canned itinerary).
func InitAI() {
	provider := strings.ToLower(os.Getenv("AI_PROVIDER"))

	switch {
	case provider == "gemini" || (provider == "" && os.Getenv("GEMINI_API_KEY") != ""):
		g, err := newGeminiGenerator()
		if err != nil {
			log.Printf("⚠️  Gemini init failed: %v — AI itineraries will use fallback data", err)
			return
		}
		generator = g
		log.Println("✅ AI (Gemini) initialized")
	case os.Getenv("HUGGINGFACE_API_KEY") != "":
		generator = newHuggingFaceGenerator()
		log.Println("✅ AI (HuggingFace) initialized")
	default:
		log.Println("⚠️  No AI provider configured — AI itineraries will use fallback data")
	}
}

func GetGenerator() Generator {
	return generator
}

// ─── Shared prompt + decoding ─────────────────────────────────────────────────

func buildItineraryPrompt(req ItineraryRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a travel planner. Plan a %d-day trip to %s for %d traveler(s)",
		req.Days, req.Destination, req.PartySize)
	if req.TripType != "" {
		fmt.Fprintf(&b, " (%s trip)", req.TripType)
	}
	fmt.Fprintf(&b, ", %s to %s, total budget $%.0f.", req.StartDate, req.EndDate, req.Budget)
	if req.Notes != "" {
		fmt.Fprintf(&b, " Preferences: %s.", req.Notes)
	}
	b.WriteString(`
Respond with ONLY a JSON object, no prose, matching exactly:
{"title": string, "destination": string, "duration": number, "budget": number,
 "days": [{"day": number, "activities": [string], "meals": [string], "accommodation": string}],
 "flights": [{"airline": string, "price": number, "departure": string, "arrival": string, "duration": string}],
 "places": [string], "activities": [string], "dining": [string]}`)
	return b.String()
}

// decodeItinerary parses and validates model output against the fixed schema.
// Models wrap JSON in markdown fences often enough that those are stripped
// before decoding.
func decodeItinerary(raw string, req ItineraryRequest) (*GeneratedItinerary, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	// Tolerate leading/trailing prose around the object
	if start := strings.Index(s, "{"); start >= 0 {
		if end := strings.LastIndex(s, "}"); end > start {
			s = s[start : end+1]
		}
	}

	var it GeneratedItinerary
	if err := json.Unmarshal([]byte(s), &it); err != nil {
		return nil, fmt.Errorf("model returned malformed JSON: %w", err)
	}
	if it.Destination == "" {
		it.Destination = req.Destination
	}
	if len(it.Days) == 0 {
		return nil, fmt.Errorf("model response has no day plans")
	}
	if it.Duration == 0 {
		it.Duration = len(it.Days)
	}
	if it.ID == "" {
		it.ID = uuid.New().String()
	}
	return &it, nil
}

// ─── Fallback itinerary ───────────────────────────────────────────────────────

// FallbackItinerary builds a deterministic itinerary when no AI backend is
// available.
func FallbackItinerary(req ItineraryRequest) *GeneratedItinerary {
	days := req.Days
	if days <= 0 {
		days = 3
	}

	rotation := [][2]string{
		{"Old town walking tour", "Local bistro dinner"},
		{"Museum morning, market afternoon", "Street food crawl"},
		{"Day trip to the coast", "Seafood restaurant"},
		{"Park and viewpoint circuit", "Neighborhood trattoria"},
	}

	plans := make([]DayPlan, 0, days)
	for d := 1; d <= days; d++ {
		r := rotation[(d-1)%len(rotation)]
		plans = append(plans, DayPlan{
			Day:           d,
			Activities:    []string{r[0]},
			Meals:         []string{"Breakfast at the hotel", r[1]},
			Accommodation: "Mid-range hotel, central " + req.Destination,
		})
	}

	start, _ := time.Parse("2006-01-02", req.StartDate)
	return &GeneratedItinerary{
		ID:          uuid.New().String(),
		Title:       fmt.Sprintf("%d days in %s", days, req.Destination),
		Destination: req.Destination,
		Duration:    days,
		Budget:      req.Budget,
		Days:        plans,
		Flights: []FlightOption{
			{Airline: "Turkish Airlines", Price: 420, Departure: start.Format("2006-01-02") + "T08:00", Arrival: start.Format("2006-01-02") + "T12:30", Duration: "4h 30m"},
			{Airline: "Wizz Air", Price: 260, Departure: start.Format("2006-01-02") + "T14:00", Arrival: start.Format("2006-01-02") + "T19:45", Duration: "5h 45m"},
		},
		Places:     []string{"Old Town", "Central Market", "City Museum"},
		Activities: []string{"Walking tour", "Museum visit", "Boat trip"},
		Dining:     []string{"Local bistro", "Street food market", "Seafood restaurant"},
	}
}
