// Package gemini talks to Google's Gemini models for financial advice and
// simulated market prices. Both features degrade to local fallbacks when the
// model is not configured or unavailable.
package gemini

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "gemini-2.5-flash"

// Config configures the Gemini client.
type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// generator is the subset of *genai.Models the client calls.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client implements usecase.Advisor and usecase.PriceSimulator.
type Client struct {
	models  generator
	model   string
	timeout time.Duration
	logger  zerolog.Logger
	random  func() float64
}

// NewClient creates a Gemini client. With an empty API key no connection is
// made and every call takes its fallback path.
func NewClient(ctx context.Context, cfg Config, logger zerolog.Logger) (*Client, error) {
	var models generator
	if cfg.APIKey != "" {
		gc, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cfg.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("create genai client: %w", err)
		}
		models = gc.Models
	}
	return newClient(models, cfg, logger), nil
}

func newClient(models generator, cfg Config, logger zerolog.Logger) *Client {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		models:  models,
		model:   cfg.Model,
		timeout: cfg.Timeout,
		logger:  logger.With().Str("component", "gemini").Logger(),
		random:  rand.Float64,
	}
}

// Enabled reports whether an API key was configured.
func (c *Client) Enabled() bool {
	return c.models != nil
}

func (c *Client) generate(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), config)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}
