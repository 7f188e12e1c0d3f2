package travelbot

import (
	"fmt"
	"strings"
	"time"

	"github.com/mansiraturi/travelbot/pkg/travelbot/search"
)

// Itinerary is the finished plan: the trip parameters as settled, the
// three result slots as they ended up, and a day-by-day outline. Slots
// keep their fallback marking so consumers can tell canned data from
// live data.
type Itinerary struct {
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	DepartDate  time.Time `json:"depart_date,omitzero"`
	ReturnDate  time.Time `json:"return_date,omitzero"`
	Days        int       `json:"days"`
	Travelers   int       `json:"travelers"`
	Budget      string    `json:"budget"`
	Style       string    `json:"style"`

	Flights     ResultSlot[search.Flight]     `json:"flights"`
	Hotels      ResultSlot[search.Hotel]      `json:"hotels"`
	Attractions ResultSlot[search.Attraction] `json:"attractions"`

	// Notices flag the sections built from fallback data.
	Notices []string `json:"notices,omitempty"`

	GeneratedAt time.Time `json:"generated_at"`
}

// createItinerary assembles the final plan from everything the
// conversation gathered and replies with its rendered form.
func createItinerary(ctx Context, s State) (State, Outcome, error) {
	it := buildItinerary(&s, ctx.Now())
	s.Itinerary = &it
	return s, Outcome{Reply: it.Render()}, nil
}

func buildItinerary(s *State, now time.Time) Itinerary {
	style := s.Trip.Style
	if style == "" {
		style = defaultStyle
	}
	budget := s.Trip.Budget
	if budget == "" {
		budget = "flexible"
	}
	days := s.Trip.Days()
	if days < 1 {
		days = 1
	}

	return Itinerary{
		Origin:      s.Trip.Origin,
		Destination: s.Trip.Destination,
		DepartDate:  s.Trip.DepartDate,
		ReturnDate:  s.Trip.ReturnDate,
		Days:        days,
		Travelers:   s.Trip.Travelers,
		Budget:      budget,
		Style:       style,
		Flights:     cloneSlot(s.Results.Flights),
		Hotels:      cloneSlot(s.Results.Hotels),
		Attractions: cloneSlot(s.Results.Attractions),
		Notices:     degradedNotices(s),
		GeneratedAt: now,
	}
}

// degradedNotices produces one reader-facing notice per fallback slot.
func degradedNotices(s *State) []string {
	var notices []string
	if s.Results.Flights.Status == SlotFallback {
		notices = append(notices, notice("flight", s.Results.Flights.FailedWith))
	}
	if s.Results.Hotels.Status == SlotFallback {
		notices = append(notices, notice("hotel", s.Results.Hotels.FailedWith))
	}
	if s.Results.Attractions.Status == SlotFallback {
		notices = append(notices, notice("attraction", s.Results.Attractions.FailedWith))
	}
	return notices
}

func notice(section, cause string) string {
	n := fmt.Sprintf("Live %s data was unavailable; showing typical options instead.", section)
	if cause != "" {
		n += " (" + cause + ")"
	}
	return n
}

// Render formats the itinerary as plain text for chat replies.
func (it *Itinerary) Render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Your %s itinerary: %s to %s\n", it.Style, it.Origin, it.Destination)
	if !it.DepartDate.IsZero() && !it.ReturnDate.IsZero() {
		fmt.Fprintf(&b, "%s to %s (%d days), ", it.DepartDate.Format("Jan 2"), it.ReturnDate.Format("Jan 2, 2006"), it.Days)
	}
	fmt.Fprintf(&b, "%d traveler(s), %s budget\n", it.Travelers, it.Budget)

	if len(it.Flights.Items) > 0 {
		b.WriteString("\nFlights\n")
		for _, f := range it.Flights.Items {
			fmt.Fprintf(&b, "  - %s %s (%s -> %s)\n", f.Airline, f.Number, f.Departure, f.Arrival)
			if f.Note != "" {
				fmt.Fprintf(&b, "    %s\n", f.Note)
			}
		}
	}

	if len(it.Hotels.Items) > 0 {
		b.WriteString("\nHotels\n")
		for _, h := range it.Hotels.Items {
			fmt.Fprintf(&b, "  - %s, %s: $%d/night ($%d total)", h.Name, h.Location, h.PricePerNight, h.TotalPrice)
			if h.Rating > 0 {
				fmt.Fprintf(&b, ", rated %.1f", h.Rating)
			}
			b.WriteString("\n")
		}
	}

	if len(it.Attractions.Items) > 0 {
		b.WriteString("\nDay by day\n")
		for day := 1; day <= it.Days; day++ {
			a := it.Attractions.Items[(day-1)%len(it.Attractions.Items)]
			fmt.Fprintf(&b, "  Day %d: %s", day, a.Name)
			if a.Category != "" {
				fmt.Fprintf(&b, " (%s)", a.Category)
			}
			b.WriteString("\n")
		}
	}

	if len(it.Notices) > 0 {
		b.WriteString("\nHeads up\n")
		for _, n := range it.Notices {
			fmt.Fprintf(&b, "  - %s\n", n)
		}
	}

	return b.String()
}

func cloneSlot[T any](s ResultSlot[T]) ResultSlot[T] {
	s.Items = append([]T(nil), s.Items...)
	return s
}

func (it *Itinerary) clone() *Itinerary {
	out := *it
	out.Flights = cloneSlot(it.Flights)
	out.Hotels = cloneSlot(it.Hotels)
	out.Attractions = cloneSlot(it.Attractions)
	out.Notices = append([]string(nil), it.Notices...)
	return &out
}
