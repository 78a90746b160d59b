package antibot

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Structural markers of bot challenge interstitials.
var challengeSelectors = []string{
	`iframe[src*="recaptcha"]`,
	`[class*="captcha"]`,
	`[id*="captcha"]`,
}

// Text markers that challenge pages show instead of content.
var challengePhrases = []string{
	"verify you are human",
	"unusual traffic",
}

// DetectChallenge scans a rendered document for bot challenge markers.
// It returns the indicator that matched.
func DetectChallenge(doc *goquery.Document) (string, bool) {
	for _, selector := range challengeSelectors {
		if doc.Find(selector).Length() > 0 {
			return selector, true
		}
	}

	body := strings.ToLower(doc.Find("body").Text())
	for _, phrase := range challengePhrases {
		if strings.Contains(body, phrase) {
			return phrase, true
		}
	}

	return "", false
}

// FindRecaptchaSiteKey returns the reCAPTCHA site key embedded in a
// challenge page, when present.
func FindRecaptchaSiteKey(doc *goquery.Document) (string, bool) {
	key, ok := doc.Find("[data-sitekey]").First().Attr("data-sitekey")
	if !ok || key == "" {
		return "", false
	}
	return key, true
}
