package search

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strings"
)

const (
	defaultPlacesBaseURL = "https://maps.googleapis.com/maps/api"

	// maxInterestTerms caps how many interest queries one search issues.
	maxInterestTerms = 3

	// resultsPerTerm caps how many places each interest query keeps
	// before merging.
	resultsPerTerm = 5
)

// AttractionClient searches points of interest through the Google
// Places text search API. One request runs per interest term, and the
// merged results are deduplicated and ranked by rating.
type AttractionClient struct {
	cfg    clientConfig
	apiKey string
}

var _ AttractionProvider = (*AttractionClient)(nil)

// NewAttractionClient builds an attraction client. The key is a Google
// Maps API key with Places enabled.
func NewAttractionClient(apiKey string, opts ...Option) *AttractionClient {
	return &AttractionClient{
		cfg:    newClientConfig(defaultPlacesBaseURL, 8, opts...),
		apiKey: apiKey,
	}
}

type placesResponse struct {
	Results      []placeResult `json:"results"`
	Status       string        `json:"status"`
	ErrorMessage string        `json:"error_message"`
}

type placeResult struct {
	Name             string  `json:"name"`
	Rating           float64 `json:"rating"`
	FormattedAddress string  `json:"formatted_address"`
	PriceLevel       *int    `json:"price_level"`
	Geometry         struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
}

// Search collects attractions for the destination across the query's
// interests. Each interest term is retried on its own; the first term
// that exhausts its retries fails the whole search.
func (c *AttractionClient) Search(ctx context.Context, q AttractionQuery) ([]Attraction, error) {
	if strings.TrimSpace(q.Destination) == "" {
		return nil, fmt.Errorf("attraction search: destination is required")
	}

	terms := q.Interests
	if len(terms) == 0 {
		terms = []string{"tourist attraction"}
	}
	if len(terms) > maxInterestTerms {
		terms = terms[:maxInterestTerms]
	}

	var merged []Attraction
	for _, term := range terms {
		found, err := withRetry(ctx, c.cfg.retry, func(ctx context.Context) ([]Attraction, error) {
			return c.fetchTerm(ctx, term, q.Destination)
		})
		if err != nil {
			return nil, err
		}
		merged = append(merged, found...)
	}

	merged = dedupeAttractions(merged)
	if len(merged) == 0 {
		return nil, fmt.Errorf("attractions in %q: %w", q.Destination, ErrNoResults)
	}

	rankAttractions(merged)
	limit := q.Limit
	if limit <= 0 || limit > c.cfg.limit {
		limit = c.cfg.limit
	}
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged, nil
}

// fetchTerm runs one text search. Zero results for a term is not an
// error; other terms may still produce attractions.
func (c *AttractionClient) fetchTerm(ctx context.Context, term, destination string) ([]Attraction, error) {
	params := url.Values{}
	params.Set("query", term+" "+destination)
	params.Set("type", "tourist_attraction")
	params.Set("key", c.apiKey)

	var payload placesResponse
	if err := c.cfg.getJSON(ctx, ProviderAttractions, "/place/textsearch/json", params, nil, &payload); err != nil {
		return nil, err
	}
	if err := placesStatusError(payload.Status, payload.ErrorMessage); err != nil {
		return nil, err
	}

	results := payload.Results
	if len(results) > resultsPerTerm {
		results = results[:resultsPerTerm]
	}
	attractions := make([]Attraction, 0, len(results))
	for _, p := range results {
		attractions = append(attractions, Attraction{
			Name:       p.Name,
			Rating:     p.Rating,
			Address:    p.FormattedAddress,
			Category:   term,
			PriceLevel: priceLevelDescription(p.PriceLevel),
			Lat:        p.Geometry.Location.Lat,
			Lng:        p.Geometry.Location.Lng,
		})
	}
	return attractions, nil
}

// placesStatusError maps the in-body status field the Places API uses
// instead of HTTP codes. ZERO_RESULTS is not a failure.
func placesStatusError(status, message string) error {
	var kind Kind
	switch status {
	case "OK", "ZERO_RESULTS", "":
		return nil
	case "REQUEST_DENIED":
		kind = KindAuth
	case "OVER_QUERY_LIMIT", "OVER_DAILY_LIMIT":
		kind = KindQuota
	case "UNKNOWN_ERROR":
		kind = KindTransient
	default:
		kind = KindParse
	}
	if message == "" {
		message = "places status " + status
	}
	return &ServiceError{Provider: ProviderAttractions, Kind: kind, Message: message}
}

// priceLevelDescription translates the numeric price_level scale.
func priceLevelDescription(level *int) string {
	if level == nil {
		return "Unknown"
	}
	switch *level {
	case 0:
		return "Free"
	case 1:
		return "Budget"
	case 2:
		return "Moderate"
	case 3:
		return "Expensive"
	case 4:
		return "Very expensive"
	default:
		return "Unknown"
	}
}

// dedupeAttractions drops repeats of the same place surfaced by
// different interest terms. Two entries match when their normalized
// names and rounded coordinates agree; the first occurrence wins.
func dedupeAttractions(attractions []Attraction) []Attraction {
	seen := make(map[string]struct{}, len(attractions))
	out := attractions[:0]
	for _, a := range attractions {
		key := fmt.Sprintf("%s|%.3f|%.3f", normalizeName(a.Name), roundCoord(a.Lat), roundCoord(a.Lng))
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, a)
	}
	return out
}

func normalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// roundCoord rounds to three decimal places, roughly a hundred meters,
// so minor coordinate jitter between responses does not defeat dedup.
func roundCoord(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// rankAttractions orders by rating descending. Ties break by name so
// the ranking is deterministic across runs.
func rankAttractions(attractions []Attraction) {
	sort.SliceStable(attractions, func(i, j int) bool {
		if attractions[i].Rating != attractions[j].Rating {
			return attractions[i].Rating > attractions[j].Rating
		}
		return attractions[i].Name < attractions[j].Name
	})
}
