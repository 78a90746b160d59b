// Package prompts holds the generation strategy templates and the pure
// selection logic that assigns one to each product.
package prompts

import (
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/lkl2050/ecommerce-llm-pipeline/pkg/models"
)

// Strategy identifies one of the content generation strategies.
type Strategy string

const (
	StrategyGeneral    Strategy = "general"
	StrategyTechnical  Strategy = "technical"
	StrategyBusiness   Strategy = "business"
	StrategyComparison Strategy = "comparison"
	StrategyBudget     Strategy = "budget_conscious"

	// StrategyFallback marks records whose content came from the
	// deterministic generator after a failed upstream call.
	StrategyFallback Strategy = "fallback"
)

// Template is one strategy's prompt pair plus its sampling parameters.
type Template struct {
	Name         Strategy
	SystemPrompt string
	UserTemplate string
	Temperature  float64
	MaxTokens    int
}

var templates = map[Strategy]Template{
	StrategyGeneral: {
		Name: StrategyGeneral,
		SystemPrompt: "You are a creative marketing copywriter for a e-commerce platform specializing in consumer electronics. " +
			"Your goal is to write compelling, benefit-focused product descriptions that convert browsers into buyers. " +
			"Focus on emotional appeal, value propositions, and solving customer problems. " +
			"Use persuasive language without being pushy.",
		UserTemplate: `Create compelling marketing content for this product:

Product: {title}
Price: {price}
Features: {description}
Rating: {rating}

Write:
1. A 1-2 sentence marketing summary that highlights the main benefits and creates desire
2. 4 punchy bullet points focusing on key selling points (not just features)(under 60 characters each, avoid mentioning operating systems)

Format:
SUMMARY: [compelling marketing summary]
HIGHLIGHTS: [benefit 1]|[benefit 2]|[benefit 3]|[emotional appeal or unique value]

Make it sound premium and desirable!`,
		Temperature: 0.7,
		MaxTokens:   200,
	},
	StrategyTechnical: {
		Name: StrategyTechnical,
		SystemPrompt: "You are a technical product analyst who helps consumers understand complex specifications. " +
			"Break down technical jargon into clear, actionable insights. Focus on what specs mean for real-world usage.",
		UserTemplate: `Analyze this product's technical aspects:

Product: {title}
Price: {price}
Specifications: {description}
User Rating: {rating}

Provide:
1. A technical summary explaining what the specs mean for everyday use
2. 4 technical selling points that matter to buyers (under 60 characters each, avoid mentioning operating systems)

Format:
SUMMARY: [technical analysis in plain English]
HIGHLIGHTS: [high performance]|[high end feature]

Focus on practical implications, not just raw specs.`,
		Temperature: 0.6,
		MaxTokens:   200,
	},
	StrategyBusiness: {
		Name: StrategyBusiness,
		SystemPrompt: "You are a technical product expert who helps consumers to evaluate products for workplace productivity and ROI. " +
			"Focus on professional use, performance, travel portability, productivity benefits. " +
			"Consider factors like weight/portability, durability, support.",
		UserTemplate: `Analyze this product for professional use:

Product: {title}
Price: {price}
Specifications: {description}
User Rating: {rating}

Provide:
1. A 1-2 sentence business-focused summary on travel portability, performance and productivity benefits
2. 4 selling points for business computer users like reliability, travel portability and performance (under 60 characters each)

Format:
SUMMARY: [professional business usage value analysis and workplace/travel benefits]
HIGHLIGHTS: [productivity and performance benefit]|[travel portability]|[durability and quality aspect]

Focus on ROI and business impact.`,
		Temperature: 0.6,
		MaxTokens:   200,
	},
	StrategyComparison: {
		Name: StrategyComparison,
		SystemPrompt: "You are a product comparison expert who helps consumers make informed decisions. " +
			"Analyze products objectively, highlighting both strengths and potential considerations.",
		UserTemplate: `Create a comparative analysis for this product:

Product: {title}
Price: {price}
Details: {description}
Rating: {rating}

Generate:
1. A 1-2 sentences balanced summary comparing this to similar products in its category
2. 4 comparison points covering strengths, value, use cases, and considerations (under 60 characters each, avoid mentioning operating systems)

Format:
SUMMARY: [comparative analysis with market positioning]
HIGHLIGHTS: [competitive advantage]|[best use case]|[value comparison]|[potential consideration]

Be objective and helpful for decision-making.`,
		Temperature: 0.6,
		MaxTokens:   200,
	},
	StrategyBudget: {
		Name: StrategyBudget,
		SystemPrompt: "You are a shopping consultant who guides budget conscious customers to the right purchase decisions. " +
			"Provide practical advice about why this product is value for money. " +
			"Focus on affordability, value, and practical use cases.",
		UserTemplate: `Create a buyer's guide entry for:

Product: {title}
Price: {price}
Features: {description}
Rating: {rating}

Write:
1. A 1-2 sentence summary explaining why this product is value for money
2. 4 key points highlighting value, affordability, and practicality considerations (under 60 characters each, avoid mentioning operating systems)

Format:
SUMMARY: [buyer guidance focusing on fit and suitability]
HIGHLIGHTS: [affordability]|[discount and low price]|[practicality]

Make it actionable buying advice.`,
		Temperature: 0.7,
		MaxTokens:   200,
	},
}

// Get returns the template for a strategy. Unknown strategies get the
// general template.
func Get(strategy Strategy) Template {
	if tmpl, ok := templates[strategy]; ok {
		return tmpl
	}
	return templates[StrategyGeneral]
}

// Render fills the user template with product fields.
func (t Template) Render(p models.Product) string {
	rating := p.Rating
	if rating == "" {
		rating = "Not rated"
	}
	replacer := strings.NewReplacer(
		"{title}", p.Title,
		"{price}", p.Price,
		"{description}", p.Description,
		"{rating}", rating,
	)
	return replacer.Replace(t.UserTemplate)
}

// Price thresholds for strategy selection.
const (
	budgetPriceCeiling  = 500
	technicalPriceFloor = 1200
	comparisonEveryNth  = 10
)

var priceValueRe = regexp.MustCompile(`\$?(\d+)`)

// SelectStrategy picks a strategy from the product's title keywords, its
// price band, and its position in the batch. Pure function of its inputs.
func SelectStrategy(title, price string, index int) Strategy {
	titleLower := strings.ToLower(title)
	priceValue := PriceValue(price)

	switch {
	case strings.Contains(titleLower, "gaming"):
		return StrategyTechnical
	case strings.Contains(titleLower, "business") || strings.Contains(titleLower, "professional"):
		return StrategyBusiness
	case priceValue < budgetPriceCeiling:
		return StrategyBudget
	case priceValue > technicalPriceFloor:
		return StrategyTechnical
	case index%comparisonEveryNth == 0:
		return StrategyComparison
	default:
		return StrategyGeneral
	}
}

// PriceValue extracts the whole dollar amount from a price string.
// Unparseable input yields 0.
func PriceValue(price string) int {
	normalized := strings.ReplaceAll(price, ",", "")
	match := priceValueRe.FindStringSubmatch(normalized)
	if match == nil {
		return 0
	}
	value, err := strconv.Atoi(match[1])
	if err != nil {
		return 0
	}
	return value
}

// UsageCounter tracks how often each strategy ran during a batch.
type UsageCounter struct {
	mu     sync.Mutex
	counts map[Strategy]int
}

// NewUsageCounter creates an empty counter.
func NewUsageCounter() *UsageCounter {
	return &UsageCounter{counts: make(map[Strategy]int)}
}

// Record increments a strategy's count.
func (u *UsageCounter) Record(strategy Strategy) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.counts[strategy]++
}

// Snapshot returns a copy of the current counts.
func (u *UsageCounter) Snapshot() map[Strategy]int {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make(map[Strategy]int, len(u.counts))
	for k, v := range u.counts {
		out[k] = v
	}
	return out
}
