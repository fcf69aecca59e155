package parser

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/aluiziolira/scrapedash/models"
)

// ValidateProduct ensures the API returned the fields the detail view needs.
func ValidateProduct(p *models.Product) error {
	if p == nil {
		return fmt.Errorf("product is nil")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("product missing name")
	}
	return nil
}

var currencyReplacer = strings.NewReplacer(
	"₹", "",
	"Rs.", "",
	"Rs", "",
	"INR", "",
	"£", "",
	"Â£", "",
	"$", "",
	"€", "",
	",", "",
)

// NormalizePrice removes currency symbols, thousands separators and
// surrounding whitespace.
func NormalizePrice(price string) string {
	price = strings.TrimSpace(price)
	price = currencyReplacer.Replace(price)
	return strings.TrimSpace(price)
}

// ParsePrice converts a display price into a number.
func ParsePrice(price string) (float64, bool) {
	normalized := NormalizePrice(price)
	if normalized == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(normalized, 64)
	if err != nil || value < 0 {
		return 0, false
	}
	return value, true
}

// DiscountPercent derives the whole-number discount between an original
// and a current price. It returns false when either price is unusable or
// there is no reduction.
func DiscountPercent(current, original string) (int, bool) {
	cur, ok := ParsePrice(current)
	if !ok {
		return 0, false
	}
	orig, ok := ParsePrice(original)
	if !ok || orig <= 0 || cur >= orig {
		return 0, false
	}
	return int(math.Round((orig - cur) / orig * 100)), true
}

// RatingToNumeric extracts the leading score from ratings such as
// "4.3 out of 5 stars" or "4.1★". Unparseable ratings yield 0.
func RatingToNumeric(rating string) float64 {
	rating = strings.TrimSpace(rating)
	end := 0
	for end < len(rating) {
		c := rating[end]
		if (c >= '0' && c <= '9') || c == '.' {
			end++
			continue
		}
		break
	}
	if end == 0 {
		return 0
	}
	value, err := strconv.ParseFloat(rating[:end], 64)
	if err != nil || value < 0 || value > 5 {
		return 0
	}
	return value
}

// NormalizeAvailability trims spacing from the availability text.
func NormalizeAvailability(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
