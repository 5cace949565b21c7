package pricesource

import (
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
)

// DefaultSelectors are tried in order, the first one that yields a price
// wins.
var DefaultSelectors = []string{
	"div[class*='YMlIz FpEdX']",
	"div[class*='airline-price']",
	"span[class*='price']",
	"[aria-label*='price']",
}

// SampleSize is how many matching elements are considered, the page lists
// several fare tiers up front and the cheapest of them is taken.
const SampleSize = 5

type Match struct {
	Amount   decimal.Decimal
	Selector string
}

// ParseAmount keeps only the digits of text and parses them as a whole
// amount.
func ParseAmount(text string) (decimal.Decimal, bool) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, text)
	if digits == "" {
		return decimal.Decimal{}, false
	}
	amount, err := decimal.NewFromString(digits)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return amount, true
}

func elementAmount(s *goquery.Selection) (decimal.Decimal, bool) {
	text := strings.TrimFunc(s.Text(), unicode.IsSpace)
	if amount, ok := ParseAmount(text); ok {
		return amount, true
	}
	if label, ok := s.Attr("aria-label"); ok {
		return ParseAmount(label)
	}
	return decimal.Decimal{}, false
}

// Extract runs selectors against the document in order. For a selector,
// only the innermost matching elements are kept, the first SampleSize of
// them are parsed and the lowest amount is returned.
func Extract(doc *goquery.Selection, selectors []string) (Match, bool) {
	if len(selectors) == 0 {
		selectors = DefaultSelectors
	}
	for _, selector := range selectors {
		innermost := doc.Find(selector).FilterFunction(func(_ int, s *goquery.Selection) bool {
			return s.Find(selector).Length() == 0
		})
		sample := innermost.Slice(0, min(SampleSize, innermost.Length()))

		var lowest decimal.Decimal
		found := false
		sample.Each(func(_ int, s *goquery.Selection) {
			amount, ok := elementAmount(s)
			if !ok {
				return
			}
			if !found || amount.LessThan(lowest) {
				lowest = amount
				found = true
			}
		})
		if found {
			return Match{Amount: lowest, Selector: selector}, true
		}
	}
	return Match{}, false
}
