package llm

import (
	"context"
	"testing"

	"github.com/lkl2050/ecommerce-llm-pipeline/internal/config"
	"github.com/lkl2050/ecommerce-llm-pipeline/internal/llm/prompts"
	"github.com/lkl2050/ecommerce-llm-pipeline/pkg/models"
)

func disabledManager(t *testing.T) *Manager {
	t.Helper()
	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	cfg.LLM.APIKey = "test-key"
	cfg.LLM.DisableCalls = true
	return NewManager(cfg)
}

func TestManagerStartWithCallsDisabled(t *testing.T) {
	manager := disabledManager(t)

	if err := manager.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if manager.IsHealthy() {
		t.Error("manager must report unhealthy when calls are disabled")
	}
}

func TestManagerGenerateContentWithCallsDisabled(t *testing.T) {
	manager := disabledManager(t)
	if err := manager.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	tmpl := prompts.Get(prompts.StrategyGeneral)
	_, err := manager.GenerateContent(context.Background(), tmpl, models.Product{Title: "Acme Laptop"})
	if err == nil {
		t.Error("expected an error when calls are disabled")
	}
}
