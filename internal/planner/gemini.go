package planner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/tripsmith/itinerary-api/internal/config"
)

// defaultTemperature keeps itineraries varied without drifting off-schema.
const defaultTemperature = 0.7

// GeminiGenerator implements Generator with the Gemini API, constraining
// output to OutputSchema.
type GeminiGenerator struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGeminiGenerator builds a generator from cfg. The API key comes from cfg
// only; the SDK's own environment lookup is never relied on.
func NewGeminiGenerator(ctx context.Context, cfg config.GeminiConfig) (*GeminiGenerator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("planner.NewGeminiGenerator: API key is required")
	}
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("planner.NewGeminiGenerator: %w", err)
	}
	return &GeminiGenerator{client: client, model: cfg.Model, timeout: cfg.Timeout}, nil
}

func (g *GeminiGenerator) contentConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](defaultTemperature),
		ResponseMIMEType: "application/json",
		ResponseSchema:   OutputSchema(),
	}
}

func (g *GeminiGenerator) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.timeout)
}

// Generate sends prompt in a single request and returns the full response text.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), g.contentConfig())
	if err != nil {
		return "", fmt.Errorf("planner.GeminiGenerator.Generate: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", errors.New("planner.GeminiGenerator.Generate: empty response")
	}
	return text, nil
}

// Stream sends prompt and calls onChunk with each text fragment as it arrives.
// It returns the concatenated text. An error from onChunk aborts the stream.
func (g *GeminiGenerator) Stream(ctx context.Context, prompt string, onChunk func(string) error) (string, error) {
	ctx, cancel := g.withTimeout(ctx)
	defer cancel()

	var full strings.Builder
	for resp, err := range g.client.Models.GenerateContentStream(ctx, g.model, genai.Text(prompt), g.contentConfig()) {
		if err != nil {
			return "", fmt.Errorf("planner.GeminiGenerator.Stream: %w", err)
		}
		chunk := resp.Text()
		if chunk == "" {
			continue
		}
		full.WriteString(chunk)
		if err := onChunk(chunk); err != nil {
			return "", fmt.Errorf("planner.GeminiGenerator.Stream: %w", err)
		}
	}
	return full.String(), nil
}
