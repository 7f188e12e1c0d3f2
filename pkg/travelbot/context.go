package travelbot

import (
	"context"
	"log/slog"
	"time"

	"github.com/mansiraturi/travelbot/pkg/travelbot/interpret"
	"github.com/mansiraturi/travelbot/pkg/travelbot/search"
)

// Context provides execution context to nodes. It extends
// context.Context with the collaborators nodes call and per-step
// metadata.
//
// Context is immutable after creation. The orchestrator derives a
// fresh context for each node execution with the stage set and the
// logger enriched.
type Context interface {
	context.Context

	// Services

	// Logger returns the configured logger, enriched with conversation
	// and stage context. Never nil.
	Logger() *slog.Logger

	// Interpreter returns the free-text interpreter.
	Interpreter() interpret.Interpreter

	// Flights returns the flight search provider.
	Flights() search.FlightProvider

	// Hotels returns the hotel search provider.
	Hotels() search.HotelProvider

	// Attractions returns the attraction search provider.
	Attractions() search.AttractionProvider

	// Now returns the current wall-clock time. Injected so resumption
	// stays deterministic under test.
	Now() time.Time

	// Metadata

	// ConversationID returns the conversation this step belongs to.
	ConversationID() string

	// Stage returns the stage being executed.
	Stage() Stage
}

// executionContext is the internal implementation of Context.
type executionContext struct {
	context.Context

	logger         *slog.Logger
	interp         interpret.Interpreter
	flights        search.FlightProvider
	hotels         search.HotelProvider
	attractions    search.AttractionProvider
	now            func() time.Time
	conversationID string
	stage          Stage
}

// Logger returns the configured logger.
func (c *executionContext) Logger() *slog.Logger {
	if c.logger == nil {
		return slog.Default()
	}
	return c.logger
}

// Interpreter returns the free-text interpreter.
func (c *executionContext) Interpreter() interpret.Interpreter {
	return c.interp
}

// Flights returns the flight search provider.
func (c *executionContext) Flights() search.FlightProvider {
	return c.flights
}

// Hotels returns the hotel search provider.
func (c *executionContext) Hotels() search.HotelProvider {
	return c.hotels
}

// Attractions returns the attraction search provider.
func (c *executionContext) Attractions() search.AttractionProvider {
	return c.attractions
}

// Now returns the current wall-clock time.
func (c *executionContext) Now() time.Time {
	if c.now == nil {
		return time.Now()
	}
	return c.now()
}

// ConversationID returns the conversation identifier.
func (c *executionContext) ConversationID() string {
	return c.conversationID
}

// Stage returns the stage being executed.
func (c *executionContext) Stage() Stage {
	return c.stage
}
