// Package registry holds the compiled-in table of supported marketplaces:
// their API endpoints, external site URLs, URL validation rules and the
// field mapping used to decode their payloads.
package registry

import (
	"errors"
	"net/url"
	"strings"

	"github.com/aluiziolira/scrapedash/models"
)

// ErrUnknownSite is returned when a site identifier is not registered.
var ErrUnknownSite = errors.New("registry: unknown site")

// Field names a normalised product or category attribute.
type Field string

const (
	FieldName           Field = "name"
	FieldBrand          Field = "brand"
	FieldPrice          Field = "price"
	FieldOriginalPrice  Field = "original_price"
	FieldDiscount       Field = "discount"
	FieldCurrency       Field = "currency"
	FieldRating         Field = "rating"
	FieldReviewCount    Field = "review_count"
	FieldAvailability   Field = "availability"
	FieldDescription    Field = "description"
	FieldImages         Field = "images"
	FieldSpecifications Field = "specifications"
	FieldOffers         Field = "offers"
	FieldURL            Field = "url"
	FieldScrapedAt      Field = "scraped_at"
	FieldProducts       Field = "products"
	FieldTotalProducts  Field = "total_products"
	FieldPage           Field = "page"
)

// FieldMap lists, per field, the payload keys to try in order. Keys may be
// dotted paths into nested objects ("price.current").
type FieldMap map[Field][]string

var defaultFields = FieldMap{
	FieldName:           {"productName", "name", "title", "product_name"},
	FieldBrand:          {"brand", "brandName", "manufacturer"},
	FieldPrice:          {"price", "sellingPrice", "currentPrice", "salePrice", "price.current"},
	FieldOriginalPrice:  {"originalPrice", "mrp", "listPrice", "price.original"},
	FieldDiscount:       {"discount", "discountPercentage", "price.discount"},
	FieldCurrency:       {"currency", "price.currency"},
	FieldRating:         {"rating", "averageRating", "ratings.average"},
	FieldReviewCount:    {"reviewCount", "ratingCount", "reviews", "ratings.count"},
	FieldAvailability:   {"availability", "stock", "inStock"},
	FieldDescription:    {"description", "about"},
	FieldImages:         {"images", "imageUrls", "image", "mainImage"},
	FieldSpecifications: {"specifications", "specs", "productDetails", "technicalDetails"},
	FieldOffers:         {"offers", "bankOffers", "coupons"},
	FieldURL:            {"url", "productUrl", "sourceUrl"},
	FieldScrapedAt:      {"scrapedAt", "scraped_at", "timestamp"},
	FieldProducts:       {"products", "items", "results"},
	FieldTotalProducts:  {"totalProducts", "total", "count"},
	FieldPage:           {"page", "currentPage"},
}

// Site describes one marketplace the dashboard can drive.
type Site struct {
	ID      string
	Name    string
	Color   string
	SiteURL string

	// ProductPath and CategoryPath are relative to the API base URL.
	// An empty CategoryPath means the marketplace has no category mode.
	ProductPath  string
	CategoryPath string

	// Domain and ProductMarkers form the product URL predicate: the URL
	// must contain Domain and at least one marker.
	Domain         string
	ProductMarkers []string

	ImageHosts []string
	Fields     FieldMap
}

// SupportsCategory reports whether the site exposes a category endpoint.
func (s *Site) SupportsCategory() bool {
	return s.CategoryPath != ""
}

// Path returns the API path for mode.
func (s *Site) Path(mode models.Mode) string {
	if mode == models.ModeCategory {
		return s.CategoryPath
	}
	return s.ProductPath
}

// ValidateProductURL applies the product URL predicate.
func (s *Site) ValidateProductURL(raw string) bool {
	lower := strings.ToLower(strings.TrimSpace(raw))
	if lower == "" || !strings.Contains(lower, s.Domain) {
		return false
	}
	for _, marker := range s.ProductMarkers {
		if strings.Contains(lower, strings.ToLower(marker)) {
			return true
		}
	}
	return false
}

// ValidateCategoryURL reports whether raw is usable as a category URL.
// Category inputs are only checked for presence.
func (s *Site) ValidateCategoryURL(raw string) bool {
	return strings.TrimSpace(raw) != ""
}

// ValidateURL dispatches to the predicate for mode.
func (s *Site) ValidateURL(mode models.Mode, raw string) bool {
	if mode == models.ModeCategory {
		return s.SupportsCategory() && s.ValidateCategoryURL(raw)
	}
	return s.ValidateProductURL(raw)
}

// Keys returns the payload keys for field, site-specific aliases first.
func (s *Site) Keys(field Field) []string {
	own := s.Fields[field]
	base := defaultFields[field]
	if len(own) == 0 {
		return base
	}
	out := make([]string, 0, len(own)+len(base))
	seen := make(map[string]struct{}, len(own)+len(base))
	for _, group := range [][]string{own, base} {
		for _, key := range group {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, key)
		}
	}
	return out
}

// ImageHostAllowed reports whether rawURL points at one of the site's
// image hosts.
func (s *Site) ImageHostAllowed(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	for _, allowed := range s.ImageHosts {
		allowed = strings.ToLower(allowed)
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return true
		}
	}
	return false
}

// All returns every registered site in display order.
func All() []*Site {
	out := make([]*Site, len(sites))
	copy(out, sites)
	return out
}

// Lookup finds a site by identifier.
func Lookup(id string) (*Site, error) {
	if s, ok := byID[strings.ToLower(id)]; ok {
		return s, nil
	}
	return nil, ErrUnknownSite
}

var byID = func() map[string]*Site {
	m := make(map[string]*Site, len(sites))
	for _, s := range sites {
		m[s.ID] = s
	}
	return m
}()
