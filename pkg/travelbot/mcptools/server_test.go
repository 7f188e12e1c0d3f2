package mcptools

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mansiraturi/travelbot/pkg/travelbot/observability"
	"github.com/mansiraturi/travelbot/pkg/travelbot/search"
)

type stubFlights struct {
	flights []search.Flight
	err     error
	calls   int
	last    search.FlightQuery
}

func (s *stubFlights) Search(_ context.Context, q search.FlightQuery) ([]search.Flight, error) {
	s.calls++
	s.last = q
	return s.flights, s.err
}

type stubHotels struct {
	hotels []search.Hotel
	err    error
	calls  int
	last   search.HotelQuery
}

func (s *stubHotels) Search(_ context.Context, q search.HotelQuery) ([]search.Hotel, error) {
	s.calls++
	s.last = q
	return s.hotels, s.err
}

type stubAttractions struct {
	attractions []search.Attraction
	err         error
	calls       int
	last        search.AttractionQuery
}

func (s *stubAttractions) Search(_ context.Context, q search.AttractionQuery) ([]search.Attraction, error) {
	s.calls++
	s.last = q
	return s.attractions, s.err
}

func newTestServer(flights *stubFlights, hotels *stubHotels, attractions *stubAttractions, opts ...Option) *Server {
	if flights == nil {
		flights = &stubFlights{}
	}
	if hotels == nil {
		hotels = &stubHotels{}
	}
	if attractions == nil {
		attractions = &stubAttractions{}
	}
	opts = append([]Option{WithLogger(observability.NewNop())}, opts...)
	return NewServer(flights, hotels, attractions, opts...)
}

func TestServer_SearchFlights(t *testing.T) {
	flights := &stubFlights{flights: []search.Flight{
		{Airline: "Air France", Number: "AF007", Departure: "09:15", Arrival: "22:40"},
		{Airline: "Delta", Number: "DL264", Departure: "17:30", Arrival: "07:05"},
	}}
	srv := newTestServer(flights, nil, nil)

	out, err := srv.handleSearchFlights(context.Background(), mcp.CallToolRequest{}, map[string]any{
		"origin":      "New York",
		"destination": "Paris",
	})
	require.NoError(t, err)

	assert.Equal(t, search.FlightQuery{Origin: "New York", Destination: "Paris"}, flights.last)
	require.Len(t, out.Flights, 2)
	assert.Equal(t, "AF007", out.Flights[0].Number)
}

func TestServer_SearchFlights_MissingArgs(t *testing.T) {
	flights := &stubFlights{}
	srv := newTestServer(flights, nil, nil)

	_, err := srv.handleSearchFlights(context.Background(), mcp.CallToolRequest{}, map[string]any{
		"destination": "Paris",
	})
	assert.ErrorContains(t, err, "required")
	assert.Zero(t, flights.calls)
}

func TestServer_SearchFlights_ProviderError(t *testing.T) {
	flights := &stubFlights{err: errors.New("upstream timeout")}
	srv := newTestServer(flights, nil, nil)

	_, err := srv.handleSearchFlights(context.Background(), mcp.CallToolRequest{}, map[string]any{
		"origin":      "New York",
		"destination": "Paris",
	})
	assert.ErrorContains(t, err, "flight search")
	assert.ErrorContains(t, err, "upstream timeout")
}

func TestServer_SearchHotels_DefaultWindow(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	hotels := &stubHotels{hotels: []search.Hotel{{Name: "Hotel Lutetia", PricePerNight: 320}}}
	srv := newTestServer(nil, hotels, nil, WithClock(func() time.Time { return now }))

	out, err := srv.handleSearchHotels(context.Background(), mcp.CallToolRequest{}, map[string]any{
		"destination": "Paris",
	})
	require.NoError(t, err)

	assert.Equal(t, "Paris", hotels.last.Destination)
	assert.Equal(t, time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC), hotels.last.CheckIn)
	assert.Equal(t, time.Date(2026, 4, 7, 0, 0, 0, 0, time.UTC), hotels.last.CheckOut)
	assert.Equal(t, 7, hotels.last.Nights())
	require.Len(t, out.Hotels, 1)
}

func TestServer_SearchHotels_ExplicitDates(t *testing.T) {
	hotels := &stubHotels{}
	srv := newTestServer(nil, hotels, nil)

	_, err := srv.handleSearchHotels(context.Background(), mcp.CallToolRequest{}, map[string]any{
		"destination": "Tokyo",
		"check_in":    "2026-05-10",
		"check_out":   "2026-05-14",
	})
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC), hotels.last.CheckIn)
	assert.Equal(t, time.Date(2026, 5, 14, 0, 0, 0, 0, time.UTC), hotels.last.CheckOut)
	assert.Equal(t, 4, hotels.last.Nights())
}

func TestServer_SearchHotels_BadDate(t *testing.T) {
	hotels := &stubHotels{}
	srv := newTestServer(nil, hotels, nil)

	_, err := srv.handleSearchHotels(context.Background(), mcp.CallToolRequest{}, map[string]any{
		"destination": "Tokyo",
		"check_in":    "next tuesday",
	})
	assert.ErrorContains(t, err, "YYYY-MM-DD")
	assert.Zero(t, hotels.calls)
}

func TestServer_SearchAttractions(t *testing.T) {
	attractions := &stubAttractions{attractions: []search.Attraction{
		{Name: "Louvre Museum", Rating: 4.7},
	}}
	srv := newTestServer(nil, nil, attractions)

	out, err := srv.handleSearchAttractions(context.Background(), mcp.CallToolRequest{}, map[string]any{
		"destination": "Paris",
		"interests":   "food , history ,,art",
		"limit":       float64(5),
	})
	require.NoError(t, err)

	assert.Equal(t, "Paris", attractions.last.Destination)
	assert.Equal(t, []string{"food", "history", "art"}, attractions.last.Interests)
	assert.Equal(t, 5, attractions.last.Limit)
	require.Len(t, out.Attractions, 1)
	assert.Equal(t, "Louvre Museum", out.Attractions[0].Name)
}

func TestServer_SearchAttractions_Defaults(t *testing.T) {
	attractions := &stubAttractions{}
	srv := newTestServer(nil, nil, attractions)

	_, err := srv.handleSearchAttractions(context.Background(), mcp.CallToolRequest{}, map[string]any{
		"destination": "Rome",
	})
	require.NoError(t, err)

	assert.Nil(t, attractions.last.Interests)
	assert.Zero(t, attractions.last.Limit)
}

func TestServer_SearchAttractions_MissingDestination(t *testing.T) {
	attractions := &stubAttractions{}
	srv := newTestServer(nil, nil, attractions)

	_, err := srv.handleSearchAttractions(context.Background(), mcp.CallToolRequest{}, map[string]any{})
	assert.ErrorContains(t, err, "destination is required")
	assert.Zero(t, attractions.calls)
}
