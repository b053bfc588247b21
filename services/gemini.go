package services

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

// ErrBadRequest marks a failure class that retrying cannot fix (malformed
// request, blocked prompt). The invoker aborts early on it.
var ErrBadRequest = errors.New("non-retriable inference request failure")

// TextGenerator is the single capability the analysis agents need from the
// inference service: prompt in, raw text out. The Gemini client satisfies it;
// tests substitute a stub.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// GeminiGenerator calls the Gemini API with a fixed model and temperature.
type GeminiGenerator struct {
	client      *genai.Client
	model       string
	temperature float32
}

// NewGeminiGenerator initializes the Gemini client. The API key is required.
func NewGeminiGenerator(ctx context.Context, apiKey, model string, temperature float32) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is not configured")
	}
	if model == "" {
		model = defaultGeminiModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gemini client: %w", err)
	}
	return &GeminiGenerator{client: client, model: model, temperature: temperature}, nil
}

// GenerateText sends the prompt and returns the model's raw text response.
func (g *GeminiGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	cfg := &genai.GenerateContentConfig{Temperature: genai.Ptr(g.temperature)}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", classifyGeminiError(err)
	}
	return resp.Text(), nil
}

// classifyGeminiError wraps client-side API errors in ErrBadRequest so the
// invoker does not burn its retry budget on them. Rate limiting (429) and
// server errors stay retriable.
func classifyGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code >= 400 && apiErr.Code < 500 && apiErr.Code != 429 && apiErr.Code != 408 {
			return fmt.Errorf("%w: %v", ErrBadRequest, err)
		}
	}
	return err
}
