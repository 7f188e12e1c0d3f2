package travelbot

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mansiraturi/travelbot/pkg/travelbot/observability"
	"github.com/mansiraturi/travelbot/pkg/travelbot/search"
)

// The search nodes never fail the conversation over a provider error:
// the slot degrades to the fallback catalog, the failure lands in the
// error log, and planning continues. Only a canceled or expired step
// context aborts, which leaves the stage unrun so resumption retries
// the search.

func searchFlights(ctx Context, s State) (State, Outcome, error) {
	q := search.FlightQuery{Origin: s.Trip.Origin, Destination: s.Trip.Destination}
	flights, err := ctx.Flights().Search(ctx, q)
	if err != nil {
		if aborted(err) {
			return s, Outcome{}, err
		}
		kind := search.KindOf(err)
		logDegraded(ctx, search.ProviderFlights, kind, err)
		s.RecordError(search.ProviderFlights, kind, err.Error(), ctx.Now())
		s.Results.Flights = FallbackSlot(search.FallbackFlights(q.Origin, q.Destination), err.Error())
		return s, Outcome{}, nil
	}
	s.Results.Flights = Populated(flights)
	return s, Outcome{}, nil
}

func searchHotels(ctx Context, s State) (State, Outcome, error) {
	checkIn, checkOut := stayWindow(&s.Trip, ctx.Now())
	q := search.HotelQuery{Destination: s.Trip.Destination, CheckIn: checkIn, CheckOut: checkOut}
	hotels, err := ctx.Hotels().Search(ctx, q)
	if err != nil {
		if aborted(err) {
			return s, Outcome{}, err
		}
		kind := search.KindOf(err)
		logDegraded(ctx, search.ProviderHotels, kind, err)
		s.RecordError(search.ProviderHotels, kind, err.Error(), ctx.Now())
		s.Results.Hotels = FallbackSlot(search.FallbackHotels(q.Destination, q.Nights()), err.Error())
		return s, Outcome{}, nil
	}
	s.Results.Hotels = Populated(hotels)
	return s, Outcome{}, nil
}

func searchAttractions(ctx Context, s State) (State, Outcome, error) {
	q := search.AttractionQuery{Destination: s.Trip.Destination, Interests: interestTerms(&s.Trip)}
	attractions, err := ctx.Attractions().Search(ctx, q)
	if err != nil {
		if aborted(err) {
			return s, Outcome{}, err
		}
		kind := search.KindOf(err)
		logDegraded(ctx, search.ProviderAttractions, kind, err)
		s.RecordError(search.ProviderAttractions, kind, err.Error(), ctx.Now())
		s.Results.Attractions = FallbackSlot(search.FallbackAttractions(q.Destination), err.Error())
		return s, Outcome{}, nil
	}
	s.Results.Attractions = Populated(attractions)
	return s, Outcome{}, nil
}

// aborted reports whether the error came from the step context rather
// than the provider.
func aborted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// logDegraded reports a degradation. Auth failures mean a broken
// credential that every later conversation will hit too, so they log
// at error; everything else is a warning.
func logDegraded(ctx Context, provider, kind string, err error) {
	if kind == string(search.KindAuth) {
		ctx.Logger().Error("provider degraded to fallback",
			"provider", provider,
			"kind", kind,
			"error", err.Error(),
		)
		return
	}
	observability.LogProviderDegraded(ctx.Logger(), provider, kind, err)
}

// stayWindow derives the hotel check-in and check-out dates from the
// trip. A window that is unset or already past shifts a month out so
// the query stays bookable.
func stayWindow(t *TripRequest, now time.Time) (checkIn, checkOut time.Time) {
	today := now.UTC().Truncate(24 * time.Hour)
	nights := t.Days()
	if nights < 1 {
		nights = 7
	}
	checkIn = t.DepartDate
	checkOut = t.ReturnDate
	if checkIn.IsZero() || checkIn.Before(today) {
		checkIn = today.AddDate(0, 0, 30)
		checkOut = checkIn.AddDate(0, 0, nights)
	}
	if !checkOut.After(checkIn) {
		checkOut = checkIn.AddDate(0, 0, nights)
	}
	return checkIn, checkOut
}

// interestTerms builds the attraction search terms from the stated
// interests plus the travel style, with a sightseeing default when
// neither is known.
func interestTerms(t *TripRequest) []string {
	terms := append([]string(nil), t.Interests...)
	if t.Style != "" && !containsFold(terms, t.Style) {
		terms = append(terms, t.Style)
	}
	if len(terms) == 0 {
		terms = []string{"cultural", "sightseeing"}
	}
	return terms
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
