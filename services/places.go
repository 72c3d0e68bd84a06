package services

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"tripcraft/itinerary"
)

// Place is a local point of interest: an activity venue or a restaurant.
type Place struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Location    string  `json:"location"`
	Rating      float64 `json:"rating,omitempty"`
	Price       float64 `json:"price"` // estimated per-person cost
	Category    string  `json:"category,omitempty"`
	Cuisine     string  `json:"cuisine,omitempty"`
}

// PlacesClient queries a SerpAPI-style local results endpoint.
type PlacesClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

var placesClient *PlacesClient

func InitPlaces() {
	placesClient = &PlacesClient{
		apiKey:  os.Getenv("SERPAPI_KEY"),
		baseURL: getEnvDefault("SERPAPI_URL", "https://serpapi.com/search.json"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	if placesClient.apiKey == "" {
		log.Println("⚠️  SERPAPI_KEY not set — local place search will use estimated data")
	}
}

func GetPlacesClient() *PlacesClient {
	return placesClient
}

func (c *PlacesClient) Configured() bool {
	return c != nil && c.apiKey != ""
}

type serpLocalResponse struct {
	LocalResults []struct {
		Title       string  `json:"title"`
		Description string  `json:"description"`
		Address     string  `json:"address"`
		Rating      float64 `json:"rating"`
		Price       string  `json:"price"`
		Type        string  `json:"type"`
	} `json:"local_results"`
}

// SearchPlaces runs a free-text local search scoped to a location.
func (c *PlacesClient) SearchPlaces(query, location string) ([]Place, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("places provider not configured")
	}

	endpoint := fmt.Sprintf("%s?engine=google_local&q=%s&location=%s&api_key=%s",
		c.baseURL,
		url.QueryEscape(query),
		url.QueryEscape(location),
		url.QueryEscape(c.apiKey),
	)

	resp, err := c.httpClient.Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("place search failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("places provider error (%d): %s", resp.StatusCode, string(body))
	}

	var parsed serpLocalResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse place results: %w", err)
	}

	places := make([]Place, 0, len(parsed.LocalResults))
	for _, r := range parsed.LocalResults {
		// The provider encodes cost as "$".."$$$$"; missing price means free entry
		price := 0.0
		if r.Price != "" {
			if p, err := itinerary.ParsePrice(r.Price); err == nil {
				price = p
			} else {
				price = float64(len(r.Price)) * 15
			}
		}
		places = append(places, Place{
			Name:        r.Title,
			Description: r.Description,
			Location:    r.Address,
			Rating:      r.Rating,
			Price:       price,
			Category:    r.Type,
		})
	}
	return places, nil
}

// FallbackPlaces produces plausible activity and dining options without an
// API key.
func FallbackPlaces(query, location string) []Place {
	return []Place{
		{Name: "Old Town Walking Tour", Description: "Guided two-hour walk through the historic center", Location: location, Rating: 4.7, Price: 25, Category: "tour"},
		{Name: "City Museum", Description: "Art and history collections", Location: location, Rating: 4.5, Price: 18, Category: "museum"},
		{Name: "Riverside Food Market", Description: "Street food stalls and local produce", Location: location, Rating: 4.4, Price: 15, Category: "market"},
		{Name: "Harbor Boat Trip", Description: "One-hour sightseeing cruise", Location: location, Rating: 4.3, Price: 30, Category: "tour"},
		{Name: "Trattoria Centrale", Description: "Family-run kitchen, seasonal menu", Location: location, Rating: 4.6, Price: 40, Category: "restaurant", Cuisine: "italian"},
		{Name: "Sakura House", Description: "Counter seating, fixed omakase", Location: location, Rating: 4.8, Price: 75, Category: "restaurant", Cuisine: "japanese"},
	}
}
