// Package gemini wraps the Google GenAI SDK for explanation generation.
package gemini

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/dartview/dartview-go/internal/domain"
	"github.com/dartview/dartview-go/internal/infra/observability"
	"github.com/dartview/dartview-go/internal/infra/resilience"
)

const Service = "gemini"

// Client generates text with a fixed Gemini model. A bulkhead bounds
// concurrent generations so a burst of viewers cannot exhaust the API
// quota in one go.
type Client struct {
	client   *genai.Client
	model    string
	bulkhead *resilience.Bulkhead
	metrics  *observability.Metrics
}

// NewClient creates a Gemini client for the given model.
func NewClient(ctx context.Context, apiKey, model string, maxConcurrency int, metrics *observability.Metrics) (*Client, error) {
	cl, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Client{
		client:   cl,
		model:    model,
		bulkhead: resilience.NewBulkhead(maxConcurrency),
		metrics:  metrics,
	}, nil
}

// Generate produces one completion for the prompt.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if err := c.bulkhead.Acquire(ctx); err != nil {
		return "", &domain.ErrTimeout{Operation: "generate explanation"}
	}
	defer c.bulkhead.Release()

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(0.4)),
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), config)
	if err != nil {
		return "", &domain.ErrExternalService{Service: Service, Err: err}
	}

	if c.metrics != nil && result.UsageMetadata != nil {
		c.metrics.RecordTokens(
			int(result.UsageMetadata.PromptTokenCount),
			int(result.UsageMetadata.CandidatesTokenCount),
		)
	}

	text := result.Text()
	if text == "" {
		return "", &domain.ErrExternalService{Service: Service, Err: errors.New("empty completion")}
	}
	return text, nil
}
