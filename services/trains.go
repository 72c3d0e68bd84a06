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

// TrainOption is a rail connection between two stations.
type TrainOption struct {
	Operator      string  `json:"operator"`
	TrainNumber   string  `json:"train_number,omitempty"`
	Route         string  `json:"route"`
	DepartureTime string  `json:"departure_time"`
	ArrivalTime   string  `json:"arrival_time"`
	Duration      string  `json:"duration"`
	Price         float64 `json:"price"`
	Class         string  `json:"class,omitempty"`
	Currency      string  `json:"currency,omitempty"`
}

// TrainClient queries a RapidAPI-hosted rail schedule provider.
type TrainClient struct {
	apiKey     string
	apiHost    string
	httpClient *http.Client
}

var trainClient *TrainClient

func InitTrains() {
	trainClient = &TrainClient{
		apiKey:  os.Getenv("RAPIDAPI_KEY"),
		apiHost: getEnvDefault("RAPIDAPI_TRAINS_HOST", "trains.p.rapidapi.com"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	if trainClient.apiKey == "" {
		log.Println("⚠️  RAPIDAPI_KEY not set — train search will use estimated data")
	}
}

func GetTrainClient() *TrainClient {
	return trainClient
}

func (c *TrainClient) Configured() bool {
	return c != nil && c.apiKey != ""
}

type trainSearchResponse struct {
	Results []struct {
		Operator    string `json:"operator"`
		TrainNumber string `json:"train_number"`
		Departure   string `json:"departure"`
		Arrival     string `json:"arrival"`
		Duration    string `json:"duration"`
		Price       string `json:"price"`
		Class       string `json:"class"`
	} `json:"results"`
}

// SearchTrains returns connections between two stations on a date.
func (c *TrainClient) SearchTrains(origin, destination, date string) ([]TrainOption, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("train provider not configured")
	}

	endpoint := fmt.Sprintf("https://%s/v1/search?from=%s&to=%s&date=%s",
		c.apiHost,
		url.QueryEscape(origin),
		url.QueryEscape(destination),
		url.QueryEscape(date),
	)

	req, err := http.NewRequest("GET", endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", c.apiHost)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("train search failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("train provider error (%d): %s", resp.StatusCode, string(body))
	}

	var parsed trainSearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse train results: %w", err)
	}

	trains := make([]TrainOption, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		price, err := itinerary.ParsePrice(r.Price)
		if err != nil {
			continue // provider rows without a usable price are skipped
		}
		trains = append(trains, TrainOption{
			Operator:      r.Operator,
			TrainNumber:   r.TrainNumber,
			Route:         origin + "-" + destination,
			DepartureTime: r.Departure,
			ArrivalTime:   r.Arrival,
			Duration:      r.Duration,
			Price:         price,
			Class:         r.Class,
			Currency:      "USD",
		})
	}
	return trains, nil
}

// FallbackTrains produces plausible rail options without an API key.
func FallbackTrains(origin, destination, date string) []TrainOption {
	day, _ := time.Parse("2006-01-02", date)

	options := []struct {
		operator string
		price    float64
		minutes  int
		class    string
	}{
		{"InterCity Express", 85, 180, "second"},
		{"EuroNight", 120, 420, "sleeper"},
		{"Regional Express", 45, 260, "second"},
		{"InterCity Express", 140, 180, "first"},
	}

	trains := make([]TrainOption, 0, len(options))
	for i, opt := range options {
		dep := time.Date(day.Year(), day.Month(), day.Day(), 7+i*4, 15, 0, 0, time.UTC)
		arr := dep.Add(time.Duration(opt.minutes) * time.Minute)
		trains = append(trains, TrainOption{
			Operator:      opt.operator,
			TrainNumber:   fmt.Sprintf("IC%d", 400+i*17),
			Route:         origin + "-" + destination,
			DepartureTime: dep.Format(time.RFC3339),
			ArrivalTime:   arr.Format(time.RFC3339),
			Duration:      formatMinutes(opt.minutes),
			Price:         opt.price,
			Class:         opt.class,
			Currency:      "USD",
		})
	}
	return trains
}

func getEnvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
