package catalog

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sneakify/feed-adapter/internal/feed"
)

// sliceRule describes how to cut a display name out of a market's SEO title:
// skip `start` leading characters (localized prefix phrases), stop `deduct`
// characters before the SKU token.
type sliceRule struct {
	start  int
	deduct int
}

var defaultSliceRule = sliceRule{start: 0, deduct: 2}

// Per-market overrides, data not branches. French and Mexican SEO titles open
// with a longer localized prefix; Korean and Mexican ones put fewer characters
// between the name and the SKU token.
var seoSliceRules = map[string]sliceRule{
	"FR": {start: 21, deduct: 2},
	"KR": {start: 0, deduct: 1},
	"MX": {start: 28, deduct: 1},
}

// ResolveDisplayName derives a human-readable product name from published
// content. It tries the cover card's title/subtitle pair first, then slices
// the SEO title around the SKU token with market-specific offsets. Returns
// false when neither shape yields a name; the caller falls back to the feed's
// full title.
func ResolveDisplayName(country, sku string, content *feed.PublishedContent) (string, bool) {
	if content == nil {
		return "", false
	}

	card := content.Properties.CoverCard
	if card.Title != "" && card.Subtitle != "" {
		return fmt.Sprintf("%s '%s'", card.Subtitle, card.Title), true
	}

	seoTitle := content.Properties.SEO.Title
	if sku == "" || !strings.Contains(seoTitle, "("+sku+")") {
		return "", false
	}

	rule, ok := seoSliceRules[country]
	if !ok {
		rule = defaultSliceRule
	}

	// Upstream offsets are character positions, so slice runes, not bytes:
	// localized prefixes are not ASCII.
	skuAt := utf8.RuneCountInString(seoTitle[:strings.Index(seoTitle, sku)])
	end := skuAt - rule.deduct

	runes := []rune(seoTitle)
	if end <= rule.start || end > len(runes) {
		return "", false
	}
	return string(runes[rule.start:end]), true
}
