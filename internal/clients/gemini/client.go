// Package gemini provides a client for the Google Gemini API
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
)

const (
	DefaultModel           = "gemini-2.0-flash"
	DefaultRateLimit       = 30 // requests per minute
	DefaultMaxOutputTokens = 300
)

var (
	// ErrNoContent is returned when the model produced no text.
	ErrNoContent = errors.New("no content generated")

	// ErrRateLimited is returned when the request could not be admitted by
	// the client-side rate limiter before the context deadline.
	ErrRateLimited = errors.New("gemini rate limit exceeded")
)

// contentGenerator is the slice of genai.Models the client uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client implements interfaces.TextGenerator on top of Gemini
type Client struct {
	models            contentGenerator
	model             string
	temperature       *float32
	maxOutputTokens   int32
	systemInstruction string
	limiter           *rate.Limiter
	logger            *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithModel sets the model to use
func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the maximum requests per minute
func WithRateLimit(perMinute int) ClientOption {
	return func(c *Client) {
		if perMinute > 0 {
			c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
		}
	}
}

// WithTemperature sets the sampling temperature
func WithTemperature(t float32) ClientOption {
	return func(c *Client) {
		c.temperature = &t
	}
}

// WithMaxOutputTokens caps the response length
func WithMaxOutputTokens(n int32) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.maxOutputTokens = n
		}
	}
}

// WithSystemInstruction sets the system prompt sent with every request
func WithSystemInstruction(text string) ClientOption {
	return func(c *Client) {
		c.systemInstruction = text
	}
}

// NewClient creates a new Gemini client
func NewClient(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return newClient(genaiClient.Models, opts...), nil
}

func newClient(models contentGenerator, opts ...ClientOption) *Client {
	c := &Client{
		models:          models,
		model:           DefaultModel,
		maxOutputTokens: DefaultMaxOutputTokens,
		limiter:         rate.NewLimiter(rate.Every(time.Minute/DefaultRateLimit), 1),
		logger:          common.NewSilentLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model returns the configured model name
func (c *Client) Model() string {
	return c.model
}

// GenerateContent generates text from a prompt
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRateLimited, err)
	}

	c.logger.Debug().Str("model", c.model).Int("prompt_chars", len(prompt)).Msg("Generating content")

	start := time.Now()
	result, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), c.generateConfig())
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text, err := extractTextFromResponse(result)
	if err != nil {
		return "", err
	}
	c.logger.Debug().Str("model", c.model).Dur("elapsed", time.Since(start)).Msg("Content generated")
	return text, nil
}

func (c *Client) generateConfig() *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		Temperature:     c.temperature,
		MaxOutputTokens: c.maxOutputTokens,
	}
	if c.systemInstruction != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: c.systemInstruction}}}
	}
	return config
}

// extractTextFromResponse joins the text parts of the first candidate
func extractTextFromResponse(result *genai.GenerateContentResponse) (string, error) {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", ErrNoContent
	}

	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", ErrNoContent
	}
	return sb.String(), nil
}

var _ interfaces.TextGenerator = (*Client)(nil)
