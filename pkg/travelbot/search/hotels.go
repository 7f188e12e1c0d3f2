package search

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

const (
	defaultHotelBaseURL = "https://booking-com.p.rapidapi.com"
	defaultHotelAPIHost = "booking-com.p.rapidapi.com"
)

// HotelClient searches hotel availability through the Booking.com API
// on RapidAPI. A search is two calls: resolve the destination to a
// location id, then query availability for it.
type HotelClient struct {
	cfg     clientConfig
	apiKey  string
	apiHost string
}

var _ HotelProvider = (*HotelClient)(nil)

// WithAPIHost overrides the X-RapidAPI-Host header. Tests point it at
// a local server.
func WithAPIHost(host string) Option {
	return func(cfg *clientConfig) { cfg.apiHost = host }
}

// NewHotelClient builds a hotel client. The key is the RapidAPI key.
func NewHotelClient(apiKey string, opts ...Option) *HotelClient {
	cfg := newClientConfig(defaultHotelBaseURL, 4, opts...)
	host := cfg.apiHost
	if host == "" {
		host = defaultHotelAPIHost
	}
	return &HotelClient{cfg: cfg, apiKey: apiKey, apiHost: host}
}

type bookingLocation struct {
	DestID string `json:"dest_id"`
	Name   string `json:"name"`
}

type bookingSearchResponse struct {
	Result []bookingHotel `json:"result"`
}

type bookingHotel struct {
	HotelName     string  `json:"hotel_name"`
	MinTotalPrice float64 `json:"min_total_price"`
	District      string  `json:"district"`
	City          string  `json:"city"`
	ReviewScore   float64 `json:"review_score"`
}

// Search finds hotels for the query's stay. The resolve and search
// calls run as one unit per attempt, so a retry never pairs a fresh
// search with a stale location id.
func (c *HotelClient) Search(ctx context.Context, q HotelQuery) ([]Hotel, error) {
	if strings.TrimSpace(q.Destination) == "" {
		return nil, fmt.Errorf("hotel search: destination is required")
	}
	if !q.CheckOut.After(q.CheckIn) {
		return nil, fmt.Errorf("hotel search: check-out must be after check-in")
	}

	return withRetry(ctx, c.cfg.retry, func(ctx context.Context) ([]Hotel, error) {
		destID, err := c.resolveDestination(ctx, q.Destination)
		if err != nil {
			return nil, err
		}
		return c.searchByDestID(ctx, destID, q)
	})
}

func (c *HotelClient) headers() map[string]string {
	return map[string]string{
		"X-RapidAPI-Key":  c.apiKey,
		"X-RapidAPI-Host": c.apiHost,
	}
}

// resolveDestination maps a city name to the provider's location id.
func (c *HotelClient) resolveDestination(ctx context.Context, destination string) (string, error) {
	params := url.Values{}
	params.Set("name", destination)
	params.Set("locale", "en-gb")

	var locations []bookingLocation
	if err := c.cfg.getJSON(ctx, ProviderHotels, "/v1/hotels/locations", params, c.headers(), &locations); err != nil {
		return "", err
	}
	if len(locations) == 0 || locations[0].DestID == "" {
		return "", fmt.Errorf("hotel location %q: %w", destination, ErrNoResults)
	}
	return locations[0].DestID, nil
}

func (c *HotelClient) searchByDestID(ctx context.Context, destID string, q HotelQuery) ([]Hotel, error) {
	params := url.Values{}
	params.Set("dest_id", destID)
	params.Set("dest_type", "city")
	params.Set("checkin_date", q.CheckIn.Format("2006-01-02"))
	params.Set("checkout_date", q.CheckOut.Format("2006-01-02"))
	params.Set("adults_number", "2")
	params.Set("room_number", "1")
	params.Set("order_by", "popularity")
	params.Set("filter_by_currency", "USD")
	params.Set("locale", "en-gb")
	params.Set("units", "metric")
	params.Set("page_number", "0")

	var payload bookingSearchResponse
	if err := c.cfg.getJSON(ctx, ProviderHotels, "/v1/hotels/search", params, c.headers(), &payload); err != nil {
		return nil, err
	}
	if len(payload.Result) == 0 {
		return nil, fmt.Errorf("hotels in %q: %w", q.Destination, ErrNoResults)
	}

	nights := q.Nights()
	hotels := make([]Hotel, 0, c.cfg.limit)
	for _, h := range payload.Result {
		if len(hotels) == c.cfg.limit {
			break
		}
		location := h.District
		if location == "" {
			location = h.City
		}
		if location == "" {
			location = "City center"
		}
		total := int(h.MinTotalPrice)
		hotels = append(hotels, Hotel{
			Name:          h.HotelName,
			TotalPrice:    total,
			PricePerNight: total / nights,
			Location:      location,
			Rating:        h.ReviewScore,
		})
	}
	return hotels, nil
}
