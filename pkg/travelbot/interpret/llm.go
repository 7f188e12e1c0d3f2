package interpret

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
)

// LLMInterpreter implements Interpreter over any langchaingo model.
type LLMInterpreter struct {
	model       llms.Model
	temperature float64
	now         func() time.Time
}

var _ Interpreter = (*LLMInterpreter)(nil)

// LLMOption configures the LLM interpreter.
type LLMOption func(*LLMInterpreter)

// WithTemperature sets the sampling temperature. Extraction wants it
// low; the default is 0.
func WithTemperature(t float64) LLMOption {
	return func(l *LLMInterpreter) { l.temperature = t }
}

// WithNow overrides the clock used to resolve relative dates.
func WithNow(now func() time.Time) LLMOption {
	return func(l *LLMInterpreter) { l.now = now }
}

// NewLLM builds an interpreter around a langchaingo model.
func NewLLM(model llms.Model, opts ...LLMOption) *LLMInterpreter {
	l := &LLMInterpreter{
		model: model,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *LLMInterpreter) complete(ctx context.Context, prompt string) (string, error) {
	text, err := llms.GenerateFromSinglePrompt(ctx, l.model, prompt,
		llms.WithTemperature(l.temperature))
	if err != nil {
		return "", fmt.Errorf("llm completion: %w", err)
	}
	return text, nil
}

// ExtractTrip pulls trip fields from a free-text message.
func (l *LLMInterpreter) ExtractTrip(ctx context.Context, message string) (TripFields, error) {
	text, err := l.complete(ctx, extractTripPrompt(message, l.now()))
	if err != nil {
		return TripFields{}, err
	}
	return parseTripFields(text)
}

// ExtractUpdate interprets a reply to a question about one field.
func (l *LLMInterpreter) ExtractUpdate(ctx context.Context, message, focus string, current TripFields) (TripFields, error) {
	text, err := l.complete(ctx, extractUpdatePrompt(message, focus, current, l.now()))
	if err != nil {
		return TripFields{}, err
	}
	return parseTripFields(text)
}

// Classify asks the model which option the reply selects. Any answer
// that does not resolve to an offered option becomes ErrNoChoice.
func (l *LLMInterpreter) Classify(ctx context.Context, message, question string, options []Option) (string, error) {
	text, err := l.complete(ctx, classifyPrompt(message, question, options))
	if err != nil {
		return "", err
	}
	answer := strings.TrimSpace(text)
	if strings.EqualFold(answer, "none") {
		return "", ErrNoChoice
	}
	if id, ok := matchOption(answer, options); ok {
		return id, nil
	}
	return "", fmt.Errorf("%w: model answered %q", ErrNoChoice, answer)
}
