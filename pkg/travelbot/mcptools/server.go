// Package mcptools exposes the travel search providers as MCP tools,
// so agents can call flight, hotel, and attraction search directly
// over the Model Context Protocol.
package mcptools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mansiraturi/travelbot/pkg/travelbot"
	"github.com/mansiraturi/travelbot/pkg/travelbot/search"
)

const (
	serverName = "travelbot-search"

	dateLayout = "2006-01-02"
)

// Server wraps the three search providers as an MCP tool server.
type Server struct {
	flights     search.FlightProvider
	hotels      search.HotelProvider
	attractions search.AttractionProvider

	logger *slog.Logger
	now    func() time.Time

	mcpServer *server.MCPServer
}

// Option configures the server.
type Option func(*Server)

// WithLogger sets the logger. MCP servers on stdio must log to stderr
// only; the caller is responsible for the handler's destination.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the clock used for default stay windows.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// NewServer creates an MCP server over the given providers.
func NewServer(flights search.FlightProvider, hotels search.HotelProvider, attractions search.AttractionProvider, opts ...Option) *Server {
	s := &Server{
		flights:     flights,
		hotels:      hotels,
		attractions: attractions,
		logger:      slog.Default(),
		now:         time.Now,
		mcpServer:   server.NewMCPServer(serverName, strings.TrimSpace(travelbot.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	return s
}

// ServeStdio runs the server on stdin/stdout until the stream closes.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// FlightResults is the structured output of search_flights.
type FlightResults struct {
	Flights []search.Flight `json:"flights"`
}

// HotelResults is the structured output of search_hotels.
type HotelResults struct {
	Hotels []search.Hotel `json:"hotels"`
}

// AttractionResults is the structured output of search_attractions.
type AttractionResults struct {
	Attractions []search.Attraction `json:"attractions"`
}

func (s *Server) registerTools() {
	flightsTool := mcp.NewTool("search_flights",
		mcp.WithDescription("Search flight options between two cities."),
		mcp.WithString("origin", mcp.Required(), mcp.Description("Departure city")),
		mcp.WithString("destination", mcp.Required(), mcp.Description("Arrival city")),
		mcp.WithOutputSchema[FlightResults](),
	)
	s.mcpServer.AddTool(flightsTool, mcp.NewStructuredToolHandler(s.handleSearchFlights))

	hotelsTool := mcp.NewTool("search_hotels",
		mcp.WithDescription("Search hotels in a city for a stay window. Without dates, a one-week stay a month out is assumed."),
		mcp.WithString("destination", mcp.Required(), mcp.Description("City to stay in")),
		mcp.WithString("check_in", mcp.Description("Check-in date, YYYY-MM-DD (optional)")),
		mcp.WithString("check_out", mcp.Description("Check-out date, YYYY-MM-DD (optional)")),
		mcp.WithOutputSchema[HotelResults](),
	)
	s.mcpServer.AddTool(hotelsTool, mcp.NewStructuredToolHandler(s.handleSearchHotels))

	attractionsTool := mcp.NewTool("search_attractions",
		mcp.WithDescription("Search attractions in a city, optionally focused on interests."),
		mcp.WithString("destination", mcp.Required(), mcp.Description("City to explore")),
		mcp.WithString("interests", mcp.Description("Comma-separated interests, e.g. \"food, history\" (optional)")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results (optional)")),
		mcp.WithOutputSchema[AttractionResults](),
	)
	s.mcpServer.AddTool(attractionsTool, mcp.NewStructuredToolHandler(s.handleSearchAttractions))
}

func (s *Server) handleSearchFlights(ctx context.Context, _ mcp.CallToolRequest, args map[string]any) (FlightResults, error) {
	origin, _ := args["origin"].(string)
	destination, _ := args["destination"].(string)
	if origin == "" || destination == "" {
		return FlightResults{}, errors.New("origin and destination are required")
	}

	flights, err := s.flights.Search(ctx, search.FlightQuery{Origin: origin, Destination: destination})
	if err != nil {
		s.logger.Warn("flight search failed", "origin", origin, "destination", destination, "error", err)
		return FlightResults{}, fmt.Errorf("flight search: %w", err)
	}
	return FlightResults{Flights: flights}, nil
}

func (s *Server) handleSearchHotels(ctx context.Context, _ mcp.CallToolRequest, args map[string]any) (HotelResults, error) {
	destination, _ := args["destination"].(string)
	if destination == "" {
		return HotelResults{}, errors.New("destination is required")
	}

	checkIn, err := parseDate(args, "check_in")
	if err != nil {
		return HotelResults{}, err
	}
	checkOut, err := parseDate(args, "check_out")
	if err != nil {
		return HotelResults{}, err
	}
	checkIn, checkOut = defaultWindow(checkIn, checkOut, s.now())

	hotels, err := s.hotels.Search(ctx, search.HotelQuery{Destination: destination, CheckIn: checkIn, CheckOut: checkOut})
	if err != nil {
		s.logger.Warn("hotel search failed", "destination", destination, "error", err)
		return HotelResults{}, fmt.Errorf("hotel search: %w", err)
	}
	return HotelResults{Hotels: hotels}, nil
}

func (s *Server) handleSearchAttractions(ctx context.Context, _ mcp.CallToolRequest, args map[string]any) (AttractionResults, error) {
	destination, _ := args["destination"].(string)
	if destination == "" {
		return AttractionResults{}, errors.New("destination is required")
	}

	var interests []string
	if raw, _ := args["interests"].(string); raw != "" {
		for _, term := range strings.Split(raw, ",") {
			if term = strings.TrimSpace(term); term != "" {
				interests = append(interests, term)
			}
		}
	}
	limit, _ := args["limit"].(float64)

	attractions, err := s.attractions.Search(ctx, search.AttractionQuery{
		Destination: destination,
		Interests:   interests,
		Limit:       int(limit),
	})
	if err != nil {
		s.logger.Warn("attraction search failed", "destination", destination, "error", err)
		return AttractionResults{}, fmt.Errorf("attraction search: %w", err)
	}
	return AttractionResults{Attractions: attractions}, nil
}

func parseDate(args map[string]any, key string) (time.Time, error) {
	raw, _ := args[key].(string)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be a YYYY-MM-DD date: %q", key, raw)
	}
	return t, nil
}

// defaultWindow fills missing stay dates: a month out, one week long.
func defaultWindow(checkIn, checkOut, now time.Time) (time.Time, time.Time) {
	if checkIn.IsZero() {
		checkIn = now.UTC().Truncate(24 * time.Hour).AddDate(0, 0, 30)
	}
	if !checkOut.After(checkIn) {
		checkOut = checkIn.AddDate(0, 0, 7)
	}
	return checkIn, checkOut
}
