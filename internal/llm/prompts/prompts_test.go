package prompts

import (
	"fmt"
	"strings"
	"testing"

	"github.com/lkl2050/ecommerce-llm-pipeline/pkg/models"
)

func TestSelectStrategy(t *testing.T) {
	tests := []struct {
		name  string
		title string
		price string
		index int
		want  Strategy
	}{
		{"gaming keyword wins", "ASUS ROG Gaming Laptop", "$1,099.99", 3, StrategyTechnical},
		{"gaming beats price band", "HP Gaming Rig", "$450.00", 3, StrategyTechnical},
		{"business keyword", "Lenovo ThinkPad Business Edition", "$999.99", 3, StrategyBusiness},
		{"professional keyword", "Dell Professional Workstation", "$999.99", 3, StrategyBusiness},
		{"budget band under 500", "Acer Aspire 3", "$449.99", 3, StrategyBudget},
		{"technical band over 1200", "MacBook Pro 16", "$2,499.99", 3, StrategyTechnical},
		{"comparison every tenth", "Acme Laptop", "$899.99", 10, StrategyComparison},
		{"comparison at index zero", "Acme Laptop", "$899.99", 0, StrategyComparison},
		{"general otherwise", "Acme Laptop", "$899.99", 7, StrategyGeneral},
		{"missing price counts as budget", "Acme Laptop", models.PriceNotAvailable, 7, StrategyBudget},
		{"boundary 500 is not budget", "Acme Laptop", "$500.00", 7, StrategyGeneral},
		{"boundary 1200 is not technical", "Acme Laptop", "$1,200.00", 7, StrategyGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SelectStrategy(tt.title, tt.price, tt.index); got != tt.want {
				t.Errorf("SelectStrategy(%q, %q, %d) = %q, want %q", tt.title, tt.price, tt.index, got, tt.want)
			}
		})
	}
}

func TestSelectStrategyMidRangeBatch(t *testing.T) {
	// A batch of 12 mid-range items: only positions 0 and 10 rotate to
	// comparison, everything else stays general.
	for i := 0; i < 12; i++ {
		got := SelectStrategy("Acme Laptop 15", "$899.99", i)
		want := StrategyGeneral
		if i == 0 || i == 10 {
			want = StrategyComparison
		}
		if got != want {
			t.Errorf("index %d: got %q, want %q", i, got, want)
		}
	}
}

func TestSelectStrategyIsPure(t *testing.T) {
	for i := 0; i < 10; i++ {
		if got := SelectStrategy("Acme Laptop", "$899.99", 7); got != StrategyGeneral {
			t.Fatalf("repeated call %d returned %q, selection must be deterministic", i, got)
		}
	}
}

func TestPriceValue(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"$1,299.99", 1299},
		{"$499", 499},
		{"899.99", 899},
		{"From $2,000 today", 2000},
		{models.PriceNotAvailable, 0},
		{"", 0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.in), func(t *testing.T) {
			if got := PriceValue(tt.in); got != tt.want {
				t.Errorf("PriceValue(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestGetTemplates(t *testing.T) {
	for _, strategy := range []Strategy{StrategyGeneral, StrategyTechnical, StrategyBusiness, StrategyComparison, StrategyBudget} {
		tmpl := Get(strategy)
		if tmpl.Name != strategy {
			t.Errorf("Get(%q).Name = %q", strategy, tmpl.Name)
		}
		if tmpl.SystemPrompt == "" || tmpl.UserTemplate == "" {
			t.Errorf("strategy %q has an empty prompt", strategy)
		}
		if tmpl.Temperature <= 0 || tmpl.Temperature > 1 {
			t.Errorf("strategy %q temperature %v out of range", strategy, tmpl.Temperature)
		}
		if tmpl.MaxTokens <= 0 {
			t.Errorf("strategy %q has no token ceiling", strategy)
		}
		if !strings.Contains(tmpl.UserTemplate, "SUMMARY:") || !strings.Contains(tmpl.UserTemplate, "HIGHLIGHTS:") {
			t.Errorf("strategy %q template does not request the tagged format", strategy)
		}
	}

	// Unknown strategies degrade to the general template.
	if tmpl := Get(Strategy("nonsense")); tmpl.Name != StrategyGeneral {
		t.Errorf("unknown strategy resolved to %q, want general", tmpl.Name)
	}
}

func TestTemplateRender(t *testing.T) {
	product := models.Product{
		Title:       "Acme Laptop 15",
		Price:       "$899.99",
		Description: "Intel Core i5, 8GB RAM",
		Rating:      "4.5 out of 5 stars",
	}

	rendered := Get(StrategyGeneral).Render(product)
	for _, want := range []string{product.Title, product.Price, product.Description, product.Rating} {
		if !strings.Contains(rendered, want) {
			t.Errorf("rendered prompt missing %q", want)
		}
	}
	if strings.Contains(rendered, "{title}") || strings.Contains(rendered, "{rating}") {
		t.Error("rendered prompt still contains placeholders")
	}

	// Missing ratings render as a sentinel instead of an empty slot.
	product.Rating = ""
	if rendered := Get(StrategyGeneral).Render(product); !strings.Contains(rendered, "Not rated") {
		t.Error("empty rating must render as \"Not rated\"")
	}
}

func TestUsageCounter(t *testing.T) {
	counter := NewUsageCounter()
	counter.Record(StrategyGeneral)
	counter.Record(StrategyGeneral)
	counter.Record(StrategyFallback)

	snapshot := counter.Snapshot()
	if snapshot[StrategyGeneral] != 2 || snapshot[StrategyFallback] != 1 {
		t.Errorf("snapshot = %v", snapshot)
	}

	// Mutating the snapshot must not touch the counter.
	snapshot[StrategyGeneral] = 99
	if counter.Snapshot()[StrategyGeneral] != 2 {
		t.Error("snapshot must be a copy")
	}
}
