package interpret

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rulesAt(now time.Time) *RulesInterpreter {
	r := NewRules()
	r.Now = func() time.Time { return now }
	return r
}

func TestRulesExtractTrip(t *testing.T) {
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	t.Run("full request", func(t *testing.T) {
		fields, err := rulesAt(now).ExtractTrip(ctx, "I want to fly from Boston to Rome for 7 days, 2 travelers, interested in food and history")
		require.NoError(t, err)
		assert.Equal(t, "Boston", fields.Origin)
		assert.Equal(t, "Rome", fields.Destination)
		assert.Equal(t, 7, fields.DurationDays)
		assert.Equal(t, 2, fields.Travelers)
		assert.Equal(t, []string{"food", "history"}, fields.Interests)
	})

	t.Run("month range resolves forward", func(t *testing.T) {
		fields, err := rulesAt(now).ExtractTrip(ctx, "Flights from NYC to Paris, 2 travelers, June 1-8")
		require.NoError(t, err)
		assert.Equal(t, "NYC", fields.Origin)
		assert.Equal(t, "Paris", fields.Destination)
		assert.Equal(t, "2027-06-01", fields.DepartDate, "June already passed this year")
		assert.Equal(t, "2027-06-08", fields.ReturnDate)
		assert.Equal(t, 2, fields.Travelers)
	})

	t.Run("iso dates", func(t *testing.T) {
		fields, err := rulesAt(now).ExtractTrip(ctx, "from Boston to Tokyo, 2026-10-01 to 2026-10-12")
		require.NoError(t, err)
		assert.Equal(t, "2026-10-01", fields.DepartDate)
		assert.Equal(t, "2026-10-12", fields.ReturnDate)
	})

	t.Run("destination only", func(t *testing.T) {
		fields, err := rulesAt(now).ExtractTrip(ctx, "I want to visit Paris for a few days")
		require.NoError(t, err)
		assert.Empty(t, fields.Origin)
		assert.Equal(t, "Paris", fields.Destination)
	})

	t.Run("multiword cities", func(t *testing.T) {
		fields, err := rulesAt(now).ExtractTrip(ctx, "from New York to San Francisco for 3 days")
		require.NoError(t, err)
		assert.Equal(t, "New York", fields.Origin)
		assert.Equal(t, "San Francisco", fields.Destination)
	})

	t.Run("weeks and party words", func(t *testing.T) {
		fields, err := rulesAt(now).ExtractTrip(ctx, "two of us... actually make it a couple's 2 week trip to Amsterdam")
		require.NoError(t, err)
		assert.Equal(t, 14, fields.DurationDays)
		assert.Equal(t, 2, fields.Travelers)
	})

	t.Run("style and budget", func(t *testing.T) {
		fields, err := rulesAt(now).ExtractTrip(ctx, "a relaxing trip to Barcelona, budget around $3000 total")
		require.NoError(t, err)
		assert.Equal(t, "leisure", fields.Style)
		assert.Contains(t, fields.Budget, "$3000")
	})

	t.Run("grammar is not a destination", func(t *testing.T) {
		fields, err := rulesAt(now).ExtractTrip(ctx, "I just want to go.")
		require.NoError(t, err)
		assert.Empty(t, fields.Destination)
		assert.True(t, fields.IsZero())
	})
}

func TestRulesExtractUpdate(t *testing.T) {
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()
	current := TripFields{Destination: "Rome"}

	t.Run("bare city answer", func(t *testing.T) {
		fields, err := rulesAt(now).ExtractUpdate(ctx, "Boston", FieldOrigin, current)
		require.NoError(t, err)
		assert.Equal(t, "Boston", fields.Origin)
	})

	t.Run("from-prefixed answer", func(t *testing.T) {
		fields, err := rulesAt(now).ExtractUpdate(ctx, "from Chicago", FieldOrigin, current)
		require.NoError(t, err)
		assert.Equal(t, "Chicago", fields.Origin)
	})

	t.Run("bare number answer", func(t *testing.T) {
		fields, err := rulesAt(now).ExtractUpdate(ctx, "2", FieldTravelers, current)
		require.NoError(t, err)
		assert.Equal(t, 2, fields.Travelers)
	})

	t.Run("date answer", func(t *testing.T) {
		fields, err := rulesAt(now).ExtractUpdate(ctx, "September 24", FieldDepartDate, current)
		require.NoError(t, err)
		assert.Equal(t, "2026-09-24", fields.DepartDate)
	})

	t.Run("duration counts as a date answer", func(t *testing.T) {
		fields, err := rulesAt(now).ExtractUpdate(ctx, "7 days", FieldDepartDate, current)
		require.NoError(t, err)
		assert.Equal(t, 7, fields.DurationDays)
		assert.Empty(t, fields.DepartDate)
	})

	t.Run("answer can carry extra fields", func(t *testing.T) {
		fields, err := rulesAt(now).ExtractUpdate(ctx, "from Boston to Rome, 2 travelers", FieldOrigin, current)
		require.NoError(t, err)
		assert.Equal(t, "Boston", fields.Origin)
		assert.Equal(t, "Rome", fields.Destination)
		assert.Equal(t, 2, fields.Travelers)
	})
}

func TestRulesClassify(t *testing.T) {
	ctx := context.Background()
	options := []Option{
		{ID: "customize", Label: "Pick a travel style first", Hints: []string{"customize", "style", "options"}},
		{ID: "quick", Label: "Build the itinerary right away", Hints: []string{"quick", "skip", "fast", "just"}},
	}

	tests := []struct {
		name    string
		message string
		want    string
		wantErr bool
	}{
		{"exact id", "customize", "customize", false},
		{"ordinal", "2", "quick", false},
		{"hint phrase", "just show me something quick", "quick", false},
		{"style hint", "I'd like to pick my style", "customize", false},
		{"unrecognized", "what's the weather like?", "", true},
		{"empty", "  ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewRules().Classify(ctx, tt.message, "Customize or quick?", options)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrNoChoice)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTripFieldsMerge(t *testing.T) {
	base := TripFields{Origin: "Boston", Destination: "Rome", Travelers: 2}
	update := TripFields{Destination: "Paris", DurationDays: 5}

	merged := base.Merge(update)
	assert.Equal(t, "Boston", merged.Origin, "unset update fields keep base values")
	assert.Equal(t, "Paris", merged.Destination, "set update fields win")
	assert.Equal(t, 2, merged.Travelers)
	assert.Equal(t, 5, merged.DurationDays)
}
