package services

import "testing"

func TestParseFlightOffers(t *testing.T) {
	raw := []byte(`{
		"data": [
			{
				"price": {"grandTotal": "432.10", "currency": "USD"},
				"itineraries": [{
					"duration": "PT7H25M",
					"segments": [
						{"departure": {"iataCode": "LHR", "at": "2026-09-10T08:30"}, "arrival": {"iataCode": "CDG", "at": "2026-09-10T10:45"}, "carrierCode": "BA", "number": "303"},
						{"departure": {"iataCode": "CDG", "at": "2026-09-10T12:00"}, "arrival": {"iataCode": "JFK", "at": "2026-09-10T15:55"}, "carrierCode": "BA", "number": "117"}
					]
				}],
				"validatingAirlineCodes": ["BA"]
			},
			{
				"price": {"grandTotal": "0", "currency": "USD"},
				"itineraries": [{"duration": "PT2H", "segments": []}]
			}
		]
	}`)

	flights, err := parseFlightOffers(raw, "LHR", "JFK")
	if err != nil {
		t.Fatalf("parseFlightOffers: %v", err)
	}
	if len(flights) != 1 {
		t.Fatalf("flights = %d; want 1 (zero-price offer dropped)", len(flights))
	}

	f := flights[0]
	if f.Price != 432.10 {
		t.Errorf("price = %.2f; want 432.10", f.Price)
	}
	if f.Airline != "British Airways" || f.AirlineCode != "BA" {
		t.Errorf("airline = %q (%q)", f.Airline, f.AirlineCode)
	}
	if f.Stops != 1 {
		t.Errorf("stops = %d; want 1", f.Stops)
	}
	if f.Duration != "7h 25m" {
		t.Errorf("duration = %q; want 7h 25m", f.Duration)
	}
	if f.Route != "LHR-JFK" {
		t.Errorf("route = %q", f.Route)
	}
	if f.FlightNumber != "BA303" {
		t.Errorf("flight number = %q; want BA303", f.FlightNumber)
	}
}

func TestParseFlightOffersRejectsMalformedJSON(t *testing.T) {
	if _, err := parseFlightOffers([]byte("{oops"), "LHR", "JFK"); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestHumanDuration(t *testing.T) {
	tests := []struct{ iso, want string }{
		{"PT5H30M", "5h 30m"},
		{"PT2H", "2h"},
		{"PT45M", "45m"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := humanDuration(tt.iso); got != tt.want {
			t.Errorf("humanDuration(%q) = %q; want %q", tt.iso, got, tt.want)
		}
	}
}

func TestParseRating(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"4", 4},
		{"5", 5},
		{"9", 5},  // clamped to the 5-star scale
		{"", 4.0}, // missing ratings default
	}
	for _, tt := range tests {
		if got := parseRating(tt.raw); got != tt.want {
			t.Errorf("parseRating(%q) = %.1f; want %.1f", tt.raw, got, tt.want)
		}
	}
}

func TestFallbackFlightsCoverPriceTiers(t *testing.T) {
	flights := FallbackFlights("LHR", "JFK", "2026-09-10")
	if len(flights) != 5 {
		t.Fatalf("flights = %d; want 5", len(flights))
	}

	cheapest, priciest := flights[0].Price, flights[0].Price
	for _, f := range flights {
		if f.Price <= 0 {
			t.Errorf("non-positive fallback price: %+v", f)
		}
		if f.Route != "LHR-JFK" {
			t.Errorf("route = %q", f.Route)
		}
		if f.Price < cheapest {
			cheapest = f.Price
		}
		if f.Price > priciest {
			priciest = f.Price
		}
	}
	if cheapest == priciest {
		t.Error("fallback should span multiple price tiers")
	}
}

func TestFallbackHotelsUseCityName(t *testing.T) {
	hotels := FallbackHotels("LHR")
	if len(hotels) == 0 {
		t.Fatal("no fallback hotels")
	}
	for _, h := range hotels {
		if h.Price <= 0 || h.Rating <= 0 {
			t.Errorf("bad fallback hotel: %+v", h)
		}
		if h.Location == "" {
			t.Errorf("hotel without location: %+v", h)
		}
	}
}
