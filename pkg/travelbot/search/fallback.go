package search

import (
	"fmt"
	"strings"
)

// Fallback data stands in for a provider that failed past its retry
// ceiling. The conversation keeps moving on these entries and the
// itinerary flags them as degraded.

// FallbackFlights returns placeholder route guidance with no live
// schedule data.
func FallbackFlights(origin, destination string) []Flight {
	route := fmt.Sprintf("%s to %s", origin, destination)
	return []Flight{
		{
			Airline:   "Major carriers",
			Number:    "varies",
			Departure: "Morning and evening departures typical",
			Arrival:   "See carrier schedules",
			Note:      "Live flight data unavailable for " + route + ". Compare fares directly with airlines.",
		},
	}
}

// FallbackHotels returns generic lodging tiers priced for the stay.
func FallbackHotels(destination string, nights int) []Hotel {
	if nights < 1 {
		nights = 1
	}
	tiers := []Hotel{
		{Name: destination + " Budget Inn", PricePerNight: 80, Location: "Near transit", Rating: 7.2},
		{Name: destination + " City Hotel", PricePerNight: 150, Location: "City center", Rating: 8.0},
		{Name: destination + " Grand Resort", PricePerNight: 260, Location: "Old town", Rating: 8.7},
	}
	for i := range tiers {
		tiers[i].TotalPrice = tiers[i].PricePerNight * nights
	}
	return tiers
}

var fallbackAttractions = map[string][]Attraction{
	"rome": {
		{Name: "Colosseum", Rating: 4.6, Address: "Piazza del Colosseo, Rome", Category: "Historic monument", PriceLevel: "Moderate"},
		{Name: "Vatican Museums", Rating: 4.5, Address: "Vatican City", Category: "Museum", PriceLevel: "Moderate"},
		{Name: "Roman Forum", Rating: 4.5, Address: "Via della Salara Vecchia, Rome", Category: "Historic site", PriceLevel: "Moderate"},
		{Name: "Pantheon", Rating: 4.5, Address: "Piazza della Rotonda, Rome", Category: "Historic monument", PriceLevel: "Free"},
		{Name: "Trevi Fountain", Rating: 4.4, Address: "Piazza di Trevi, Rome", Category: "Monument", PriceLevel: "Free"},
	},
	"paris": {
		{Name: "Louvre Museum", Rating: 4.7, Address: "Rue de Rivoli, Paris", Category: "Museum", PriceLevel: "Moderate"},
		{Name: "Eiffel Tower", Rating: 4.6, Address: "Champ de Mars, Paris", Category: "Monument", PriceLevel: "Moderate"},
		{Name: "Notre-Dame Cathedral", Rating: 4.5, Address: "Ile de la Cite, Paris", Category: "Historic monument", PriceLevel: "Free"},
		{Name: "Arc de Triomphe", Rating: 4.5, Address: "Place Charles de Gaulle, Paris", Category: "Monument", PriceLevel: "Budget"},
		{Name: "Sacre-Coeur", Rating: 4.5, Address: "Montmartre, Paris", Category: "Religious site", PriceLevel: "Free"},
	},
	"london": {
		{Name: "British Museum", Rating: 4.6, Address: "Great Russell St, London", Category: "Museum", PriceLevel: "Free"},
		{Name: "Tower of London", Rating: 4.5, Address: "Tower Hill, London", Category: "Historic castle", PriceLevel: "Expensive"},
		{Name: "Westminster Abbey", Rating: 4.5, Address: "Westminster, London", Category: "Religious site", PriceLevel: "Expensive"},
		{Name: "Tate Modern", Rating: 4.5, Address: "Bankside, London", Category: "Art museum", PriceLevel: "Free"},
		{Name: "Big Ben", Rating: 4.4, Address: "Westminster, London", Category: "Historic monument", PriceLevel: "Free"},
	},
	"tokyo": {
		{Name: "Meiji Shrine", Rating: 4.4, Address: "Shibuya, Tokyo", Category: "Religious site", PriceLevel: "Free"},
		{Name: "Senso-ji Temple", Rating: 4.3, Address: "Asakusa, Tokyo", Category: "Religious site", PriceLevel: "Free"},
		{Name: "Tokyo National Museum", Rating: 4.3, Address: "Ueno, Tokyo", Category: "Museum", PriceLevel: "Budget"},
		{Name: "Shibuya Crossing", Rating: 4.2, Address: "Shibuya, Tokyo", Category: "Landmark", PriceLevel: "Free"},
		{Name: "Imperial Palace", Rating: 4.2, Address: "Chiyoda, Tokyo", Category: "Historic site", PriceLevel: "Free"},
	},
}

// FallbackAttractions returns a curated catalog for well-known cities
// and generic city highlights everywhere else.
func FallbackAttractions(destination string) []Attraction {
	key := strings.ToLower(strings.TrimSpace(destination))
	if i := strings.Index(key, ","); i >= 0 {
		key = strings.TrimSpace(key[:i])
	}
	for city, catalog := range fallbackAttractions {
		if key != "" && (strings.Contains(key, city) || strings.Contains(city, key)) {
			out := make([]Attraction, len(catalog))
			copy(out, catalog)
			return out
		}
	}
	return []Attraction{
		{Name: destination + " City Center", Rating: 4.0, Address: destination, Category: "City area", PriceLevel: "Free"},
		{Name: destination + " Main Square", Rating: 4.0, Address: destination + " center", Category: "Public square", PriceLevel: "Free"},
		{Name: destination + " Historic District", Rating: 4.0, Address: destination, Category: "Historic area", PriceLevel: "Free"},
	}
}
