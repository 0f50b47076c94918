package llm

import (
	"context"
	"encoding/json"
	"errors"
)

// Client abstracts generative providers for recommendation drafting. Inputs
// are already sanitized; implementations must never receive raw farmer
// identifiers.
type Client interface {
	Recommend(ctx context.Context, input PromptInput) (json.RawMessage, error)
}

// PromptInput carries the sanitized query and anonymized farm context for a
// generation request.
type PromptInput struct {
	Query              string
	Intent             string
	Language           string
	Region             string
	FarmType           string
	Crops              []string
	SeasonPhase        string
	MaxRecommendations int
	PromptVersion      string
}

// GeneratedItem is one recommendation as produced by the provider.
type GeneratedItem struct {
	Text       string   `json:"text"`
	Category   string   `json:"category"`
	Priority   string   `json:"priority"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// GeneratedPayload is the JSON document providers are instructed to return.
type GeneratedPayload struct {
	Recommendations []GeneratedItem `json:"recommendations"`
}

// ParsePayload decodes and minimally validates provider output.
func ParsePayload(raw json.RawMessage) (GeneratedPayload, error) {
	var payload GeneratedPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return GeneratedPayload{}, err
	}
	if len(payload.Recommendations) == 0 {
		return GeneratedPayload{}, errors.New("provider returned no recommendations")
	}
	return payload, nil
}

// ErrNotImplemented is returned by the placeholder client.
var ErrNotImplemented = errors.New("LLM not implemented")

// PlaceholderClient is a stub implementation until provider wiring is added.
type PlaceholderClient struct{}

// Recommend returns ErrNotImplemented.
func (PlaceholderClient) Recommend(ctx context.Context, input PromptInput) (json.RawMessage, error) {
	_ = ctx
	_ = input
	return nil, ErrNotImplemented
}
