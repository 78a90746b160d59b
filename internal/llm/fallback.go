package llm

import (
	"fmt"
	"strings"

	"github.com/lkl2050/ecommerce-llm-pipeline/pkg/models"
)

// FallbackContent builds deterministic summary and highlights from the
// listing itself, used when the generation call fails. The template is chosen
// from category keywords in the title.
func FallbackContent(p models.Product) (string, []string) {
	words := titleWords(p.Title)

	switch {
	case words["gaming"]:
		return fmt.Sprintf("High-performance gaming %s designed for serious gamers. Available at %s with cutting-edge features for immersive gameplay.", p.Title, p.Price),
			[]string{"Gaming-optimized performance", "Immersive experience", fmt.Sprintf("Available at %s", p.Price), "Perfect for gamers"}
	case words["business"] || words["professional"]:
		return fmt.Sprintf("Professional-grade %s built for business productivity. Priced at %s for reliable performance in demanding work environments.", p.Title, p.Price),
			[]string{"Business-grade reliability", "Professional performance", fmt.Sprintf("Competitive at %s", p.Price), "Productivity focused"}
	case words["laptop"] || words["computer"] || words["pc"]:
		return fmt.Sprintf("Versatile %s combining performance and portability. At %s, it offers excellent value for computing needs.", p.Title, p.Price),
			[]string{"Balanced performance", "Portable design", fmt.Sprintf("Great value at %s", p.Price), "Versatile computing"}
	default:
		return fmt.Sprintf("Quality %s offering reliable performance and great value. Available at %s with features designed to exceed expectations.", p.Title, p.Price),
			[]string{"Quality construction", "Reliable performance", fmt.Sprintf("Fair price at %s", p.Price), "Exceeds expectations"}
	}
}

func titleWords(title string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(title)) {
		words[w] = true
	}
	return words
}
