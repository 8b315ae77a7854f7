package llm

import (
	"context"
	"encoding/json"
	"errors"
)

// Client abstracts LLM providers for question generation.
type Client interface {
	GenerateQuestions(ctx context.Context, input GenerateInput) (json.RawMessage, error)
}

// GenerateInput captures the inputs needed to generate quiz questions.
type GenerateInput struct {
	TopicTitle   string
	ContextText  string
	EasyCount    int
	MediumCount  int
	HardMCQCount int
	HardCount    int
	Language     string
}

type fixJSONKey struct{}

// WithFixJSON returns a context signaling a fix-JSON retry with the given raw output.
func WithFixJSON(ctx context.Context, raw string) context.Context {
	return context.WithValue(ctx, fixJSONKey{}, raw)
}

// FixJSONFromContext returns the raw JSON to repair, if any.
func FixJSONFromContext(ctx context.Context) (string, bool) {
	val := ctx.Value(fixJSONKey{})
	raw, ok := val.(string)
	return raw, ok
}

// ErrNotImplemented is returned by the placeholder client.
var ErrNotImplemented = errors.New("LLM not implemented")

// PlaceholderClient is a stub implementation until provider wiring is added.
type PlaceholderClient struct{}

// GenerateQuestions returns ErrNotImplemented.
func (PlaceholderClient) GenerateQuestions(ctx context.Context, input GenerateInput) (json.RawMessage, error) {
	_ = ctx
	_ = input
	return nil, ErrNotImplemented
}
