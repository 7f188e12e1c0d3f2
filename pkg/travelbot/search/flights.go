package search

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const defaultFlightBaseURL = "https://api.aviationstack.com/v1"

// airportCodes maps well-known city names to their primary IATA codes.
var airportCodes = map[string]string{
	"boston":        "BOS",
	"new york":      "JFK",
	"los angeles":   "LAX",
	"chicago":       "ORD",
	"miami":         "MIA",
	"san francisco": "SFO",
	"paris":         "CDG",
	"london":        "LHR",
	"rome":          "FCO",
	"tokyo":         "NRT",
	"barcelona":     "BCN",
	"amsterdam":     "AMS",
}

// AirportCode resolves a city name to an IATA airport code. Cities
// outside the table fall back to the first three letters uppercased,
// which the flight API rejects cleanly when it is not a real code.
func AirportCode(city string) string {
	key := strings.ToLower(strings.TrimSpace(city))
	if code, ok := airportCodes[key]; ok {
		return code
	}
	letters := []rune(key)
	if len(letters) > 3 {
		letters = letters[:3]
	}
	return strings.ToUpper(string(letters))
}

// FlightClient searches scheduled flights through the AviationStack API.
type FlightClient struct {
	cfg    clientConfig
	apiKey string
}

var _ FlightProvider = (*FlightClient)(nil)

// NewFlightClient builds a flight client. The key is the AviationStack
// access key.
func NewFlightClient(apiKey string, opts ...Option) *FlightClient {
	return &FlightClient{
		cfg:    newClientConfig(defaultFlightBaseURL, 4, opts...),
		apiKey: apiKey,
	}
}

type aviationResponse struct {
	Data  []aviationFlight `json:"data"`
	Error *aviationError   `json:"error"`
}

// aviationError is the in-body error envelope the API returns alongside
// a 200 status.
type aviationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type aviationFlight struct {
	Airline struct {
		Name string `json:"name"`
	} `json:"airline"`
	Flight struct {
		Number string `json:"number"`
	} `json:"flight"`
	Departure struct {
		Scheduled string `json:"scheduled"`
	} `json:"departure"`
	Arrival struct {
		Scheduled string `json:"scheduled"`
	} `json:"arrival"`
	Aircraft struct {
		Registration string `json:"registration"`
	} `json:"aircraft"`
}

// Search looks up scheduled flights between the query's cities. Route
// endpoints resolve through AirportCode before the call.
func (c *FlightClient) Search(ctx context.Context, q FlightQuery) ([]Flight, error) {
	if strings.TrimSpace(q.Origin) == "" || strings.TrimSpace(q.Destination) == "" {
		return nil, fmt.Errorf("flight search: origin and destination are required")
	}
	dep := AirportCode(q.Origin)
	arr := AirportCode(q.Destination)

	return withRetry(ctx, c.cfg.retry, func(ctx context.Context) ([]Flight, error) {
		return c.fetch(ctx, dep, arr)
	})
}

func (c *FlightClient) fetch(ctx context.Context, dep, arr string) ([]Flight, error) {
	params := url.Values{}
	params.Set("access_key", c.apiKey)
	params.Set("dep_iata", dep)
	params.Set("arr_iata", arr)
	params.Set("limit", strconv.Itoa(c.cfg.limit))

	var payload aviationResponse
	if err := c.cfg.getJSON(ctx, ProviderFlights, "/flights", params, nil, &payload); err != nil {
		return nil, err
	}
	if payload.Error != nil {
		return nil, apiError(ProviderFlights, payload.Error.Code, payload.Error.Message)
	}
	if len(payload.Data) == 0 {
		return nil, fmt.Errorf("flights %s-%s: %w", dep, arr, ErrNoResults)
	}

	flights := make([]Flight, 0, len(payload.Data))
	for _, f := range payload.Data {
		if len(flights) == c.cfg.limit {
			break
		}
		airline := f.Airline.Name
		if airline == "" {
			airline = "Unknown airline"
		}
		flights = append(flights, Flight{
			Airline:   airline,
			Number:    f.Flight.Number,
			Departure: f.Departure.Scheduled,
			Arrival:   f.Arrival.Scheduled,
			Aircraft:  f.Aircraft.Registration,
			Note:      "Contact airline for pricing",
		})
	}
	return flights, nil
}

// apiError classifies an in-body provider error by its code. Key and
// quota problems keep their severity even though the HTTP status was 200.
func apiError(provider, code, message string) error {
	kind := KindParse
	switch code {
	case "invalid_access_key", "missing_access_key", "inactive_user":
		kind = KindAuth
	case "usage_limit_reached", "rate_limit_reached":
		kind = KindQuota
	}
	return &ServiceError{
		Provider: provider,
		Kind:     kind,
		Message:  fmt.Sprintf("api error %s: %s", code, message),
	}
}
