// Package search provides clients for the three travel data providers:
// flights (AviationStack-compatible), hotels (Booking.com-compatible via
// RapidAPI), and attractions (Google Places-compatible).
//
// All clients share one error taxonomy (ServiceError) and one bounded
// retry policy. Auth and quota failures are never retried; transient
// and parse failures retry with exponential backoff until the attempt
// ceiling, then surface to the caller. Callers degrade to the fallback
// catalogs in this package rather than blocking the conversation.
package search

import (
	"context"
	"errors"
	"time"
)

// Provider names used in errors, logs, and metrics.
const (
	ProviderFlights     = "flights"
	ProviderHotels      = "hotels"
	ProviderAttractions = "attractions"
)

// ErrNoResults indicates the provider answered correctly but had
// nothing for the query. Not retried.
var ErrNoResults = errors.New("no results")

// FlightProvider searches scheduled flights between two cities.
type FlightProvider interface {
	Search(ctx context.Context, q FlightQuery) ([]Flight, error)
}

// HotelProvider searches hotel availability for a stay window.
type HotelProvider interface {
	Search(ctx context.Context, q HotelQuery) ([]Hotel, error)
}

// AttractionProvider searches attractions matching interest terms.
type AttractionProvider interface {
	Search(ctx context.Context, q AttractionQuery) ([]Attraction, error)
}

// FlightQuery describes a flight search. Origin and Destination are
// city names; the client resolves them to IATA codes.
type FlightQuery struct {
	Origin      string
	Destination string
}

// Flight is one scheduled flight option.
type Flight struct {
	Airline   string `json:"airline"`
	Number    string `json:"number"`
	Departure string `json:"departure"`
	Arrival   string `json:"arrival"`
	Aircraft  string `json:"aircraft,omitempty"`
	Note      string `json:"note,omitempty"`
}

// HotelQuery describes a hotel search for a stay window.
type HotelQuery struct {
	Destination string
	CheckIn     time.Time
	CheckOut    time.Time
}

// Nights returns the stay length in nights, at least 1.
func (q HotelQuery) Nights() int {
	n := int(q.CheckOut.Sub(q.CheckIn).Hours() / 24)
	if n < 1 {
		return 1
	}
	return n
}

// Hotel is one hotel option with normalized pricing.
type Hotel struct {
	Name          string  `json:"name"`
	PricePerNight int     `json:"price_per_night"`
	TotalPrice    int     `json:"total_price"`
	Location      string  `json:"location"`
	Rating        float64 `json:"rating,omitempty"`
}

// AttractionQuery describes an attraction search. One request is
// issued per interest term; results are merged, de-duplicated, and
// ranked by rating.
type AttractionQuery struct {
	Destination string
	Interests   []string

	// Limit caps the merged result count. Zero means the client default.
	Limit int
}

// Attraction is one attraction with its ranking signals.
type Attraction struct {
	Name       string  `json:"name"`
	Rating     float64 `json:"rating,omitempty"`
	Address    string  `json:"address,omitempty"`
	Category   string  `json:"category,omitempty"`
	PriceLevel string  `json:"price_level,omitempty"`
	Lat        float64 `json:"lat,omitempty"`
	Lng        float64 `json:"lng,omitempty"`
}
