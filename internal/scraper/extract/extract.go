package extract

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/lkl2050/ecommerce-llm-pipeline/pkg/models"
)

// SelectorPolicy holds the ordered selector candidates used when extracting
// listing fields from a category page. Retail sites rename their CSS classes
// frequently, so every field carries a waterfall of alternatives tried in order.
type SelectorPolicy struct {
	Cards      []string
	Titles     []string
	Prices     []string
	Ratings    []string
	LoadMore   []string
	DetailSpec []string
}

// DefaultSelectorPolicy returns the selector waterfall tuned for the
// Best Buy Canada category layout.
func DefaultSelectorPolicy() SelectorPolicy {
	return SelectorPolicy{
		Cards: []string{
			`[data-automation="product-item"]`,
			`.product-item`,
			`.productItemContainer`,
			`[class*="product"]`,
			`.x-productListItem`,
			`a[href*="laptop"]`,
		},
		Titles: []string{
			`[data-automation="product-title"]`,
			`.product-item-name`,
			`h3 a`,
			`h4 a`,
			`.productItemName`,
			`a[href*="laptop"]`,
		},
		Prices: []string{
			`[data-automation="product-price"]`,
			`.current-price`,
			`.price`,
			`[class*="price"]`,
			`.screenReaderOnly`,
		},
		Ratings: []string{
			`[data-automation="product-rating"]`,
			`.rating`,
			`[class*="rating"]`,
			`[class*="star"]`,
		},
		LoadMore: []string{
			`[data-automation="load-more"]`,
			`.load-more-button`,
		},
		DetailSpec: []string{
			`[data-testid="more-information-container"]`,
			`.productDescription_2WBlx`,
			`.moreInformation_389hV`,
			`.boxContentsContainer_1bKGR`,
			`[data-testid="box-content-col-0"]`,
		},
	}
}

var (
	priceQualifierRe = regexp.MustCompile(`(?i)(current price|sale price|was|now)`)
	priceAmountRe    = regexp.MustCompile(`\$[\d,]+\.?\d*`)
	whitespaceRe     = regexp.MustCompile(`\s+`)
)

// CardExtractor turns a single product card selection into a Product.
type CardExtractor struct {
	policy  SelectorPolicy
	baseURL string
}

// NewCardExtractor creates an extractor that resolves relative links
// against baseURL.
func NewCardExtractor(policy SelectorPolicy, baseURL string) *CardExtractor {
	return &CardExtractor{
		policy:  policy,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// ExtractCard pulls the listing fields out of one card. It returns false when
// the card carries too little data to be worth keeping, which happens for
// sponsored placeholders and partially rendered cards.
func (e *CardExtractor) ExtractCard(card *goquery.Selection) (models.Product, bool) {
	title := models.UnknownTitle
	if text := firstText(card, e.policy.Titles); text != "" {
		title = text
	}

	price := models.PriceNotAvailable
	for _, selector := range e.policy.Prices {
		text := strings.TrimSpace(card.Find(selector).First().Text())
		if strings.Contains(text, "$") {
			price = CleanPrice(text)
			break
		}
	}

	productURL := ""
	if href, ok := card.Find("a").First().Attr("href"); ok && href != "" {
		productURL = e.AbsoluteURL(href)
	}
	if goquery.NodeName(card) == "a" {
		if href, ok := card.Attr("href"); ok && href != "" {
			productURL = e.AbsoluteURL(href)
		}
	}

	rating := firstText(card, e.policy.Ratings)
	imageURL := extractImageURL(card)

	product := models.Product{
		Title:     CleanText(title, models.MaxTitleLen),
		Price:     price,
		URL:       productURL,
		Rating:    rating,
		ImageURL:  imageURL,
		ScrapedAt: time.Now(),
	}
	return product, product.IsValid()
}

// AbsoluteURL resolves a card link against the catalog origin. Any
// leading-slash href is joined to the base URL, protocol relative ones
// included, since catalog cards only ever link within the site. Fully
// qualified links pass through untouched.
func (e *CardExtractor) AbsoluteURL(href string) string {
	if strings.HasPrefix(href, "/") {
		return e.baseURL + href
	}
	return href
}

// firstText returns the first non-empty trimmed text among the selector
// candidates, in order.
func firstText(sel *goquery.Selection, selectors []string) string {
	for _, selector := range selectors {
		if text := strings.TrimSpace(sel.Find(selector).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

func extractImageURL(card *goquery.Selection) string {
	img := card.Find("img").First()
	src, ok := img.Attr("src")
	if !ok || src == "" {
		src, _ = img.Attr("data-src")
	}
	if src == "" || strings.HasPrefix(src, "data:") {
		return ""
	}
	if !strings.HasPrefix(src, "http") {
		return "https:" + src
	}
	return src
}

// CleanPrice normalizes a raw price string to a dollar amount. Marketing
// qualifiers are stripped first so that "Save $200" style fragments do not
// win over the actual figure.
func CleanPrice(raw string) string {
	if raw == "" {
		return models.PriceNotAvailable
	}

	cleaned := priceQualifierRe.ReplaceAllString(raw, "")
	cleaned = whitespaceRe.ReplaceAllString(strings.TrimSpace(cleaned), " ")

	if match := priceAmountRe.FindString(cleaned); match != "" {
		return match
	}

	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return models.PriceNotAvailable
	}
	return models.TruncateRunes(cleaned, models.MaxRawPriceLen)
}

// CleanText collapses runs of whitespace and caps the result at max runes.
func CleanText(text string, max int) string {
	if text == "" {
		return ""
	}
	cleaned := whitespaceRe.ReplaceAllString(strings.TrimSpace(text), " ")
	return models.TruncateRunes(cleaned, max)
}

// ResolveRedirectURL unwraps ad tracking redirects so the corpus stores the
// real product page. Criteo wraps the destination in a dest query parameter.
func ResolveRedirectURL(rawURL string) string {
	if !strings.Contains(rawURL, "criteo.com") {
		return rawURL
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	dest := parsed.Query().Get("dest")
	if dest == "" {
		return rawURL
	}
	if unescaped, err := url.QueryUnescape(dest); err == nil {
		return unescaped
	}
	return dest
}

// ExtractDetailSpecs pulls the specification block from a product detail
// document using the first matching selector candidate.
func ExtractDetailSpecs(doc *goquery.Document, selectors []string) string {
	for _, selector := range selectors {
		if text := strings.TrimSpace(doc.Find(selector).First().Text()); text != "" {
			return models.TruncateRunes(text, models.MaxDescriptionLen)
		}
	}
	return ""
}

// PlaceholderDescription builds the short generic description used when a
// detail page yields no specification block.
func PlaceholderDescription(category, title string) string {
	if category == "" {
		category = "Catalog"
	}
	return fmt.Sprintf("%s product available at Best Buy Canada. %s", category, title)
}
