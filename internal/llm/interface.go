package llm

import (
	"context"

	"github.com/lkl2050/ecommerce-llm-pipeline/internal/llm/prompts"
	"github.com/lkl2050/ecommerce-llm-pipeline/pkg/models"
)

// Provider defines the interface for text generation backends
type Provider interface {
	// GenerateContent runs one strategy template against a product and
	// returns the raw model response
	GenerateContent(ctx context.Context, tmpl prompts.Template, product models.Product) (string, error)

	// IsHealthy checks if the provider is configured and available
	IsHealthy(ctx context.Context) error

	// GetProviderName returns the name of the provider
	GetProviderName() string
}
