package services

import (
	"strings"
	"testing"
)

const sampleItineraryJSON = `{
	"title": "5 days in Tokyo",
	"destination": "Tokyo",
	"duration": 5,
	"budget": 4000,
	"days": [
		{"day": 1, "activities": ["Senso-ji temple"], "meals": ["Ramen lunch"], "accommodation": "Shinjuku hotel"},
		{"day": 2, "activities": ["Tsukiji market"], "meals": ["Sushi breakfast"]}
	],
	"flights": [{"airline": "ANA", "price": 850, "departure": "2026-09-10T08:00", "arrival": "2026-09-11T14:00", "duration": "14h"}],
	"places": ["Asakusa", "Shibuya"],
	"activities": ["Temple visit"],
	"dining": ["Ramen bar"]
}`

func TestDecodeItinerary(t *testing.T) {
	req := ItineraryRequest{Destination: "Tokyo", Days: 5}

	it, err := decodeItinerary(sampleItineraryJSON, req)
	if err != nil {
		t.Fatalf("decodeItinerary: %v", err)
	}
	if it.Destination != "Tokyo" || it.Duration != 5 || len(it.Days) != 2 {
		t.Errorf("decoded itinerary wrong: %+v", it)
	}
	if it.ID == "" {
		t.Error("expected an ID to be assigned")
	}
	if it.Days[0].Accommodation != "Shinjuku hotel" {
		t.Errorf("day 1 accommodation = %q", it.Days[0].Accommodation)
	}
}

func TestDecodeItineraryStripsMarkdownFences(t *testing.T) {
	fenced := "```json\n" + sampleItineraryJSON + "\n```"
	if _, err := decodeItinerary(fenced, ItineraryRequest{Destination: "Tokyo"}); err != nil {
		t.Fatalf("fenced JSON rejected: %v", err)
	}

	prose := "Here is your plan:\n" + sampleItineraryJSON + "\nEnjoy!"
	if _, err := decodeItinerary(prose, ItineraryRequest{Destination: "Tokyo"}); err != nil {
		t.Fatalf("JSON with surrounding prose rejected: %v", err)
	}
}

func TestDecodeItineraryRejectsMalformedOutput(t *testing.T) {
	req := ItineraryRequest{Destination: "Tokyo"}

	if _, err := decodeItinerary("I cannot plan that trip.", req); err == nil {
		t.Error("expected error for non-JSON output")
	}
	if _, err := decodeItinerary(`{"title": "empty", "days": []}`, req); err == nil {
		t.Error("expected error for itinerary without day plans")
	}
}

func TestDecodeItineraryFillsDefaults(t *testing.T) {
	raw := `{"title": "Trip", "days": [{"day": 1, "activities": [], "meals": []}, {"day": 2, "activities": [], "meals": []}]}`
	it, err := decodeItinerary(raw, ItineraryRequest{Destination: "Lisbon"})
	if err != nil {
		t.Fatalf("decodeItinerary: %v", err)
	}
	if it.Destination != "Lisbon" {
		t.Errorf("destination default not applied: %q", it.Destination)
	}
	if it.Duration != 2 {
		t.Errorf("duration not derived from day count: %d", it.Duration)
	}
}

func TestFallbackItinerary(t *testing.T) {
	it := FallbackItinerary(ItineraryRequest{
		Destination: "Lisbon",
		StartDate:   "2026-09-10",
		EndDate:     "2026-09-14",
		Days:        5,
		Budget:      3000,
	})

	if len(it.Days) != 5 {
		t.Errorf("day plans = %d; want 5", len(it.Days))
	}
	if it.Destination != "Lisbon" || it.Budget != 3000 {
		t.Errorf("fallback itinerary wrong: %+v", it)
	}
	for _, d := range it.Days {
		if len(d.Activities) == 0 || len(d.Meals) == 0 {
			t.Errorf("day %d has empty plans", d.Day)
		}
	}
}

func TestBuildItineraryPromptDemandsJSON(t *testing.T) {
	prompt := buildItineraryPrompt(ItineraryRequest{
		Destination: "Tokyo",
		StartDate:   "2026-09-10",
		EndDate:     "2026-09-15",
		Days:        5,
		PartySize:   2,
		TripType:    "honeymoon",
		Budget:      8000,
	})

	for _, want := range []string{"Tokyo", "5-day", "2 traveler", "honeymoon", "$8000", "JSON"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}
