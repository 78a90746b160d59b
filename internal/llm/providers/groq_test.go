package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lkl2050/ecommerce-llm-pipeline/internal/config"
	"github.com/lkl2050/ecommerce-llm-pipeline/internal/llm/prompts"
	"github.com/lkl2050/ecommerce-llm-pipeline/pkg/models"
)

func groqTestConfig(t *testing.T, endpoint string) *config.Config {
	t.Helper()
	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	cfg.LLM.APIURL = endpoint
	cfg.LLM.APIKey = "test-key"
	cfg.LLM.Model = "llama-3.3-70b-versatile"
	cfg.LLM.RateLimit = 6000 // keep tests fast
	return cfg
}

func sampleProduct() models.Product {
	return models.Product{
		Title:       "Acme Laptop 15",
		Price:       "$899.99",
		Description: "Intel Core i5, 8GB RAM",
		Rating:      "4.5 out of 5 stars",
		URL:         "https://example.com/p/acme",
	}
}

func TestGroqGenerateContent(t *testing.T) {
	var captured chatRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "SUMMARY: Great.\nHIGHLIGHTS: a|b"}},
			},
		})
	}))
	defer server.Close()

	provider := NewGroqProvider(groqTestConfig(t, server.URL))
	tmpl := prompts.Get(prompts.StrategyGeneral)

	content, err := provider.GenerateContent(context.Background(), tmpl, sampleProduct())
	if err != nil {
		t.Fatalf("GenerateContent: %v", err)
	}
	if !strings.Contains(content, "SUMMARY: Great.") {
		t.Errorf("content = %q", content)
	}

	if captured.Model != "llama-3.3-70b-versatile" {
		t.Errorf("model = %q", captured.Model)
	}
	if captured.Stream {
		t.Error("stream must be false")
	}
	if captured.TopP != 1 {
		t.Errorf("top_p = %v, want 1", captured.TopP)
	}
	if captured.Temperature != tmpl.Temperature {
		t.Errorf("temperature = %v, want the template's %v", captured.Temperature, tmpl.Temperature)
	}
	if captured.MaxTokens != tmpl.MaxTokens {
		t.Errorf("max_tokens = %d, want %d", captured.MaxTokens, tmpl.MaxTokens)
	}

	if len(captured.Messages) != 2 {
		t.Fatalf("got %d messages, want system+user", len(captured.Messages))
	}
	if captured.Messages[0].Role != "system" || captured.Messages[0].Content != tmpl.SystemPrompt {
		t.Error("first message must carry the system prompt")
	}
	if captured.Messages[1].Role != "user" {
		t.Errorf("second message role = %q", captured.Messages[1].Role)
	}
	for _, want := range []string{"Acme Laptop 15", "$899.99", "Intel Core i5"} {
		if !strings.Contains(captured.Messages[1].Content, want) {
			t.Errorf("user message missing %q", want)
		}
	}
}

func TestGroqGenerateContentAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limit exceeded"}}`))
	}))
	defer server.Close()

	provider := NewGroqProvider(groqTestConfig(t, server.URL))

	_, err := provider.GenerateContent(context.Background(), prompts.Get(prompts.StrategyGeneral), sampleProduct())
	if err == nil {
		t.Fatal("expected an error for a non-200 response")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("err = %v, want the status surfaced", err)
	}
}

func TestGroqGenerateContentEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	provider := NewGroqProvider(groqTestConfig(t, server.URL))

	if _, err := provider.GenerateContent(context.Background(), prompts.Get(prompts.StrategyGeneral), sampleProduct()); err == nil {
		t.Error("expected an error for an empty choices array")
	}
}

func TestGroqIsHealthy(t *testing.T) {
	cfg := groqTestConfig(t, "https://api.groq.com/openai/v1/chat/completions")
	provider := NewGroqProvider(cfg)
	if err := provider.IsHealthy(context.Background()); err != nil {
		t.Errorf("IsHealthy with key configured: %v", err)
	}

	cfg.LLM.APIKey = ""
	if err := provider.IsHealthy(context.Background()); err == nil {
		t.Error("expected an error without an API key")
	}

	if provider.GetProviderName() != "groq" {
		t.Errorf("provider name = %q", provider.GetProviderName())
	}
}
