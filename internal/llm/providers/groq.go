package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/lkl2050/ecommerce-llm-pipeline/internal/config"
	"github.com/lkl2050/ecommerce-llm-pipeline/internal/llm/prompts"
	"github.com/lkl2050/ecommerce-llm-pipeline/internal/logging"
	"github.com/lkl2050/ecommerce-llm-pipeline/internal/logging/types"
	"github.com/lkl2050/ecommerce-llm-pipeline/pkg/models"
)

// GroqProvider implements the provider interface against Groq's
// OpenAI-compatible chat completions endpoint
type GroqProvider struct {
	config  *config.Config
	client  *http.Client
	limiter *rate.Limiter
	logger  types.Logger
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Messages    []chatMessage `json:"messages"`
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	TopP        float64       `json:"top_p"`
	Stream      bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// NewGroqProvider creates a new Groq provider instance
func NewGroqProvider(cfg *config.Config) *GroqProvider {
	// Requests-per-minute config, expressed as a token bucket.
	rpm := cfg.LLM.RateLimit
	if rpm <= 0 {
		rpm = 30
	}

	return &GroqProvider{
		config: cfg,
		client: &http.Client{
			Timeout: cfg.LLM.Timeout,
		},
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1),
		logger:  logging.GetGlobalLogger(),
	}
}

// GenerateContent runs one strategy template against a product
func (gp *GroqProvider) GenerateContent(ctx context.Context, tmpl prompts.Template, product models.Product) (string, error) {
	if err := gp.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter interrupted: %w", err)
	}

	payload := chatRequest{
		Messages: []chatMessage{
			{Role: "system", Content: tmpl.SystemPrompt},
			{Role: "user", Content: tmpl.Render(product)},
		},
		Model:       gp.config.LLM.Model,
		Temperature: tmpl.Temperature,
		MaxTokens:   tmpl.MaxTokens,
		TopP:        1,
		Stream:      false,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, gp.config.LLM.APIURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+gp.config.LLM.APIKey)
	req.Header.Set("Content-Type", "application/json")

	startTime := time.Now()

	resp, err := gp.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("Groq API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("Groq API returned status %d: %s", resp.StatusCode, string(detail))
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode Groq response: %w", err)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("empty response from Groq")
	}

	gp.logger.Debug("Groq generation completed", map[string]interface{}{
		"strategy":        string(tmpl.Name),
		"processing_time": time.Since(startTime).String(),
	})

	return result.Choices[0].Message.Content, nil
}

// IsHealthy checks if the provider is configured
func (gp *GroqProvider) IsHealthy(ctx context.Context) error {
	if gp.config.LLM.APIKey == "" {
		return fmt.Errorf("Groq API key not configured, set GROQ_API_KEY or LLM_API_KEY")
	}
	if gp.config.LLM.APIURL == "" {
		return fmt.Errorf("Groq API URL not configured")
	}
	return nil
}

// GetProviderName returns the name of the provider
func (gp *GroqProvider) GetProviderName() string {
	return "groq"
}
