package services

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"tripcraft/itinerary"
)

// ─── Types ────────────────────────────────────────────────────────────────────

type Flight struct {
	Price         float64 `json:"price"`
	Airline       string  `json:"airline"`
	AirlineCode   string  `json:"airline_code,omitempty"`
	FlightNumber  string  `json:"flight_number,omitempty"`
	Route         string  `json:"route"`
	DepartureTime string  `json:"departure_time"`
	ArrivalTime   string  `json:"arrival_time"`
	Duration      string  `json:"duration"`
	Stops         int     `json:"stops"`
	Currency      string  `json:"currency,omitempty"`
}

type Hotel struct {
	Name      string   `json:"name"`
	HotelID   string   `json:"hotel_id,omitempty"`
	Price     float64  `json:"price"` // per night
	Rating    float64  `json:"rating"`
	Location  string   `json:"location"`
	Amenities []string `json:"amenities,omitempty"`
	Currency  string   `json:"currency,omitempty"`
}

// ─── Amadeus Client ───────────────────────────────────────────────────────────

type AmadeusClient struct {
	clientID     string
	clientSecret string
	baseURL      string
	accessToken  string
	tokenExpiry  time.Time
	mu           sync.Mutex
	httpClient   *http.Client
}

var amadeusClient *AmadeusClient

func InitAmadeus() {
	baseURL := "https://test.api.amadeus.com" // free test environment
	if os.Getenv("AMADEUS_ENV") == "production" {
		baseURL = "https://api.amadeus.com"
	}

	amadeusClient = &AmadeusClient{
		clientID:     os.Getenv("AMADEUS_CLIENT_ID"),
		clientSecret: os.Getenv("AMADEUS_CLIENT_SECRET"),
		baseURL:      baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	if amadeusClient.clientID == "" || amadeusClient.clientSecret == "" {
		log.Println("⚠️  AMADEUS_CLIENT_ID or AMADEUS_CLIENT_SECRET not set — flight/hotel search will use estimated data")
		return
	}

	// Pre-warm the token
	if err := amadeusClient.refreshToken(); err != nil {
		log.Printf("⚠️  Amadeus token pre-warm failed: %v", err)
	} else {
		log.Println("✅ Amadeus API authenticated")
	}
}

func GetAmadeusClient() *AmadeusClient {
	return amadeusClient
}

// Configured reports whether live search is possible.
func (c *AmadeusClient) Configured() bool {
	return c != nil && c.clientID != "" && c.clientSecret != ""
}

// ─── OAuth2 Token ─────────────────────────────────────────────────────────────

func (c *AmadeusClient) refreshToken() error {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)

	req, err := http.NewRequest("POST",
		c.baseURL+"/v1/security/oauth2/token",
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("token request failed (%d): %s", resp.StatusCode, string(body))
	}

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to parse token response: %w", err)
	}

	c.mu.Lock()
	c.accessToken = result.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(result.ExpiresIn-30) * time.Second)
	c.mu.Unlock()

	return nil
}

func (c *AmadeusClient) getToken() (string, error) {
	c.mu.Lock()
	expired := time.Now().After(c.tokenExpiry)
	token := c.accessToken
	c.mu.Unlock()

	if expired || token == "" {
		if err := c.refreshToken(); err != nil {
			return "", err
		}
		c.mu.Lock()
		token = c.accessToken
		c.mu.Unlock()
	}
	return token, nil
}

func (c *AmadeusClient) get(path string) ([]byte, error) {
	token, err := c.getToken()
	if err != nil {
		return nil, fmt.Errorf("auth failed: %w", err)
	}

	req, err := http.NewRequest("GET", c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("amadeus error (%d): %s", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}

// ─── Flight Search ────────────────────────────────────────────────────────────

// SearchFlights queries the Amadeus Flight Offers Search API for one-way
// offers on the given route.
func (c *AmadeusClient) SearchFlights(origin, destination, departureDate string, adults int) ([]Flight, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("amadeus not configured")
	}

	path := fmt.Sprintf(
		"/v2/shopping/flight-offers?originLocationCode=%s&destinationLocationCode=%s"+
			"&departureDate=%s&adults=%d&max=8&currencyCode=USD",
		url.QueryEscape(origin),
		url.QueryEscape(destination),
		url.QueryEscape(departureDate),
		adults,
	)

	body, err := c.get(path)
	if err != nil {
		return nil, fmt.Errorf("flight search failed: %w", err)
	}
	return parseFlightOffers(body, origin, destination)
}

type amadeusSegment struct {
	Departure struct {
		IataCode string `json:"iataCode"`
		At       string `json:"at"`
	} `json:"departure"`
	Arrival struct {
		IataCode string `json:"iataCode"`
		At       string `json:"at"`
	} `json:"arrival"`
	CarrierCode string `json:"carrierCode"`
	Number      string `json:"number"`
}

type amadeusFlightOffersResponse struct {
	Data []struct {
		Price struct {
			GrandTotal string `json:"grandTotal"`
			Currency   string `json:"currency"`
		} `json:"price"`
		Itineraries []struct {
			Duration string           `json:"duration"`
			Segments []amadeusSegment `json:"segments"`
		} `json:"itineraries"`
		ValidatingAirlineCodes []string `json:"validatingAirlineCodes"`
	} `json:"data"`
}

func parseFlightOffers(data []byte, origin, destination string) ([]Flight, error) {
	var resp amadeusFlightOffersResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse flight offers: %w", err)
	}

	flights := make([]Flight, 0, len(resp.Data))
	for _, offer := range resp.Data {
		if len(offer.Itineraries) == 0 {
			continue
		}

		price, err := itinerary.ParsePrice(offer.Price.GrandTotal)
		if err != nil || price <= 0 {
			continue
		}

		outbound := offer.Itineraries[0]
		carrier := ""
		if len(outbound.Segments) > 0 {
			carrier = outbound.Segments[0].CarrierCode
		} else if len(offer.ValidatingAirlineCodes) > 0 {
			carrier = offer.ValidatingAirlineCodes[0]
		}

		f := Flight{
			Price:       price,
			Airline:     airlineName(carrier),
			AirlineCode: carrier,
			Route:       origin + "-" + destination,
			Currency:    offer.Price.Currency,
			Stops:       maxInt(0, len(outbound.Segments)-1),
			Duration:    humanDuration(outbound.Duration),
		}
		if len(outbound.Segments) > 0 {
			f.DepartureTime = outbound.Segments[0].Departure.At
			f.ArrivalTime = outbound.Segments[len(outbound.Segments)-1].Arrival.At
			f.FlightNumber = carrier + outbound.Segments[0].Number
		}
		flights = append(flights, f)
	}
	return flights, nil
}

// ─── Hotel Search ─────────────────────────────────────────────────────────────

// SearchHotels runs the two-step Amadeus hotel flow: list hotel IDs for the
// city, then fetch bookable offers for them.
func (c *AmadeusClient) SearchHotels(cityCode, checkIn, checkOut string, adults int) ([]Hotel, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("amadeus not configured")
	}

	hotelIDs, err := c.hotelIDsByCity(cityCode)
	if err != nil {
		return nil, fmt.Errorf("hotel list failed: %w", err)
	}
	if len(hotelIDs) == 0 {
		return nil, fmt.Errorf("no hotels found for city %s", cityCode)
	}
	// Cap the ID list to stay under the offers endpoint's rate limits
	if len(hotelIDs) > 20 {
		hotelIDs = hotelIDs[:20]
	}

	return c.hotelOffers(hotelIDs, checkIn, checkOut, adults)
}

func (c *AmadeusClient) hotelIDsByCity(cityCode string) ([]string, error) {
	// Hotel search wants city codes, not airport codes
	path := fmt.Sprintf("/v1/reference-data/locations/hotels/by-city?cityCode=%s&radius=5&radiusUnit=KM&hotelSource=ALL",
		url.QueryEscape(airportToCity(cityCode)))

	body, err := c.get(path)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data []struct {
			HotelID string `json:"hotelId"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse hotel list: %w", err)
	}

	ids := make([]string, 0, len(resp.Data))
	for _, h := range resp.Data {
		ids = append(ids, h.HotelID)
	}
	return ids, nil
}

type amadeusHotelOffersResponse struct {
	Data []struct {
		Hotel struct {
			HotelID  string `json:"hotelId"`
			Name     string `json:"name"`
			CityCode string `json:"cityCode"`
			Address  struct {
				CityName string `json:"cityName"`
			} `json:"address"`
			Rating string `json:"rating"`
		} `json:"hotel"`
		Available bool `json:"available"`
		Offers    []struct {
			Price struct {
				Total    string `json:"total"`
				Currency string `json:"currency"`
			} `json:"price"`
		} `json:"offers"`
	} `json:"data"`
}

func (c *AmadeusClient) hotelOffers(hotelIDs []string, checkIn, checkOut string, adults int) ([]Hotel, error) {
	path := fmt.Sprintf("/v3/shopping/hotel-offers?hotelIds=%s&checkInDate=%s&checkOutDate=%s&adults=%d&roomQuantity=1&currency=USD&bestRateOnly=true",
		url.QueryEscape(strings.Join(hotelIDs, ",")),
		url.QueryEscape(checkIn),
		url.QueryEscape(checkOut),
		adults,
	)

	body, err := c.get(path)
	if err != nil {
		return nil, fmt.Errorf("hotel offers failed: %w", err)
	}

	var resp amadeusHotelOffersResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse hotel offers: %w", err)
	}

	hotels := make([]Hotel, 0, len(resp.Data))
	for _, item := range resp.Data {
		if !item.Available || len(item.Offers) == 0 {
			continue
		}
		price, err := itinerary.ParsePrice(item.Offers[0].Price.Total)
		if err != nil || price <= 0 {
			continue
		}

		location := item.Hotel.Address.CityName
		if location == "" {
			location = item.Hotel.CityCode
		}
		hotels = append(hotels, Hotel{
			Name:     item.Hotel.Name,
			HotelID:  item.Hotel.HotelID,
			Price:    price,
			Rating:   parseRating(item.Hotel.Rating),
			Location: location,
			Currency: item.Offers[0].Price.Currency,
		})
	}
	return hotels, nil
}

// ─── Fallback (when Amadeus is not configured or fails) ──────────────────────

// FallbackFlights produces plausible flight options without an API key. The
// response is labeled as estimated data by the handler.
func FallbackFlights(origin, destination, departureDate string) []Flight {
	base := 350.0
	durMin := 240
	if info, ok := fallbackRoutes[origin+"-"+destination]; ok {
		base = info.price
		durMin = info.minutes
	}

	options := []struct {
		airline  string
		priceMod float64
		stops    int
	}{
		{"Turkish Airlines", 1.00, 0},
		{"Lufthansa", 1.15, 0},
		{"Emirates", 1.30, 0},
		{"Wizz Air", 0.65, 1},
		{"FlyDubai", 0.80, 1},
	}

	depDate, _ := time.Parse("2006-01-02", departureDate)

	flights := make([]Flight, 0, len(options))
	for i, opt := range options {
		price := float64(int(base*opt.priceMod/5) * 5)
		dur := durMin
		if opt.stops > 0 {
			dur += 90
		}

		dep := time.Date(depDate.Year(), depDate.Month(), depDate.Day(), 6+i*3, 0, 0, 0, time.UTC)
		arr := dep.Add(time.Duration(dur) * time.Minute)

		flights = append(flights, Flight{
			Price:         price,
			Airline:       opt.airline,
			Route:         origin + "-" + destination,
			DepartureTime: dep.Format(time.RFC3339),
			ArrivalTime:   arr.Format(time.RFC3339),
			Duration:      formatMinutes(dur),
			Stops:         opt.stops,
			Currency:      "USD",
		})
	}
	return flights
}

var fallbackRoutes = map[string]struct {
	price   float64
	minutes int
}{
	"LHR-JFK": {450, 480}, "JFK-LHR": {450, 480},
	"LHR-CDG": {80, 75}, "CDG-LHR": {80, 75},
	"BER-CDG": {120, 105}, "CDG-BER": {120, 105},
	"FRA-IST": {150, 165}, "IST-FRA": {150, 165},
	"IST-DXB": {250, 240}, "DXB-IST": {250, 240},
	"LIS-MAD": {90, 80}, "MAD-LIS": {90, 80},
}

// FallbackHotels produces plausible hotel options without an API key.
func FallbackHotels(destination string) []Hotel {
	city := airportToCity(destination)
	tiers := []struct {
		name    string
		price   float64
		rating  float64
		area    string
		extras  []string
	}{
		{"Grand City Hotel", 150, 4.5, "City Center", []string{"wifi", "gym", "breakfast"}},
		{"Business Inn", 95, 4.2, "Business District", []string{"wifi", "parking"}},
		{"Boutique Residence", 120, 4.4, "Arts District", []string{"wifi", "bar"}},
		{"Economy Suites", 65, 3.9, "Near Airport", []string{"wifi"}},
		{"Luxury Collection", 240, 4.7, "Historic Center", []string{"wifi", "spa", "pool"}},
	}

	hotels := make([]Hotel, 0, len(tiers))
	for _, t := range tiers {
		hotels = append(hotels, Hotel{
			Name:      t.name,
			Price:     t.price,
			Rating:    t.rating,
			Location:  t.area + ", " + city,
			Amenities: t.extras,
			Currency:  "USD",
		})
	}
	return hotels
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

// humanDuration converts an ISO 8601 duration (PT5H30M) to "5h 30m".
func humanDuration(iso string) string {
	iso = strings.TrimPrefix(iso, "PT")
	var parts []string
	if i := strings.Index(iso, "H"); i >= 0 {
		parts = append(parts, iso[:i]+"h")
		iso = iso[i+1:]
	}
	if i := strings.Index(iso, "M"); i >= 0 {
		parts = append(parts, iso[:i]+"m")
	}
	return strings.Join(parts, " ")
}

func formatMinutes(minutes int) string {
	h := minutes / 60
	m := minutes % 60
	if m > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dh", h)
}

func parseRating(s string) float64 {
	r, err := itinerary.ParsePrice(s)
	if err != nil || r <= 0 {
		return 4.0 // Amadeus omits ratings for many properties
	}
	if r > 5 {
		r = 5
	}
	return r
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// airportToCity maps airport IATA codes to the city codes the hotel API wants.
func airportToCity(airport string) string {
	mapping := map[string]string{
		"LHR": "LON", "LGW": "LON", "STN": "LON",
		"CDG": "PAR", "ORY": "PAR",
		"JFK": "NYC", "LGA": "NYC", "EWR": "NYC",
		"NRT": "TYO", "HND": "TYO",
		"FCO": "ROM", "CIA": "ROM",
		"BER": "BER", "FRA": "FRA", "IST": "IST",
		"DXB": "DXB", "LIS": "LIS", "MAD": "MAD",
	}
	if city, ok := mapping[airport]; ok {
		return city
	}
	return airport
}

// airlineName returns the full airline name for an IATA carrier code.
func airlineName(code string) string {
	names := map[string]string{
		"TK": "Turkish Airlines",
		"LH": "Lufthansa",
		"AF": "Air France",
		"BA": "British Airways",
		"EK": "Emirates",
		"QR": "Qatar Airways",
		"FR": "Ryanair",
		"U2": "EasyJet",
		"W6": "Wizz Air",
		"FZ": "FlyDubai",
		"UA": "United Airlines",
		"AA": "American Airlines",
		"DL": "Delta Air Lines",
		"KL": "KLM",
		"IB": "Iberia",
		"TP": "TAP Air Portugal",
		"SQ": "Singapore Airlines",
		"NH": "ANA",
		"JL": "Japan Airlines",
		"EY": "Etihad Airways",
	}
	if name, ok := names[code]; ok {
		return name
	}
	if code != "" {
		return code + " Airlines"
	}
	return "Unknown Airline"
}
