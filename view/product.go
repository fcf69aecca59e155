// Package view turns fetched products and category pages into values the
// templates render. Nothing here touches the network or mutates its input.
package view

import (
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/aluiziolira/scrapedash/models"
	"github.com/aluiziolira/scrapedash/parser"
)

// OfferPreview is how many offers show before the list is expanded.
const OfferPreview = 3

// State is the transient view state kept by a panel.
type State struct {
	ImageIndex     int
	OffersExpanded bool
}

// Image is one carousel entry.
type Image struct {
	Src      string
	Original string
	Active   bool
	Position int
}

// Spec is a row of the specification table.
type Spec struct {
	Key   string
	Value string
}

// ProductView is the rendered form of a product.
type ProductView struct {
	Title       string
	Brand       string
	Description string
	SourceURL   string
	ScrapedAt   string

	Price         string
	OriginalPrice string
	Discount      string
	HasDiscount   bool
	Currency      string

	Rating      string
	RatingValue float64
	FullStars   int
	ReviewCount string

	Availability string
	InStock      bool

	Gallery Gallery
	Images  []Image
	Current Image

	Specs []Spec

	Offers         []string
	HiddenOffers   int
	OffersExpanded bool
	CanExpand      bool
}

// NewProductView builds the detail view of p for site.
func NewProductView(siteID string, p *models.Product, st State) *ProductView {
	if p == nil {
		return nil
	}
	v := &ProductView{
		Title:         p.Name,
		Brand:         p.Brand,
		Description:   p.Description,
		SourceURL:     p.URL,
		Price:         p.Price,
		OriginalPrice: p.OriginalPrice,
		Currency:      p.Currency,
		Rating:        p.Rating,
		ReviewCount:   p.ReviewCount,
		Availability:  p.Availability,
		InStock:       inStock(p.Availability),
	}
	if !p.ScrapedAt.IsZero() {
		v.ScrapedAt = p.ScrapedAt.Format(time.RFC1123)
	}

	v.Discount = discountLabel(p.Discount)
	v.HasDiscount = v.Discount != "" && p.OriginalPrice != "" && p.OriginalPrice != p.Price

	v.RatingValue = parser.RatingToNumeric(p.Rating)
	v.FullStars = int(v.RatingValue)

	v.Gallery = NewGallery(len(p.Images)).Select(st.ImageIndex)
	for i, src := range p.Images {
		img := Image{
			Src:      ProxyURL(siteID, src),
			Original: src,
			Active:   i == v.Gallery.Index,
			Position: i,
		}
		v.Images = append(v.Images, img)
		if img.Active {
			v.Current = img
		}
	}
	if len(v.Images) == 0 {
		v.Current = Image{Src: PlaceholderURL(p.Name)}
	}

	v.Specs = sortedSpecs(p.Specifications)

	v.OffersExpanded = st.OffersExpanded
	v.CanExpand = len(p.Offers) > OfferPreview
	if v.CanExpand && !st.OffersExpanded {
		v.Offers = append([]string(nil), p.Offers[:OfferPreview]...)
		v.HiddenOffers = len(p.Offers) - OfferPreview
	} else {
		v.Offers = append([]string(nil), p.Offers...)
	}
	return v
}

// ProxyURL routes an image through the dashboard's image proxy.
func ProxyURL(siteID, raw string) string {
	q := url.Values{}
	q.Set("site", siteID)
	q.Set("u", raw)
	return "/images?" + q.Encode()
}

// PlaceholderURL points at a generated placeholder image.
func PlaceholderURL(label string) string {
	q := url.Values{}
	q.Set("label", label)
	return "/images/placeholder?" + q.Encode()
}

func sortedSpecs(m map[string]string) []Spec {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	specs := make([]Spec, 0, len(keys))
	for _, k := range keys {
		specs = append(specs, Spec{Key: k, Value: m[k]})
	}
	return specs
}

func discountLabel(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if strings.Trim(raw, "0123456789.") == "" {
		raw += "%"
	}
	if !strings.Contains(strings.ToLower(raw), "off") {
		raw += " off"
	}
	return raw
}

func inStock(availability string) bool {
	lower := strings.ToLower(availability)
	if lower == "" {
		return false
	}
	for _, negative := range []string{"out of stock", "unavailable", "sold out", "currently not available"} {
		if strings.Contains(lower, negative) {
			return false
		}
	}
	return true
}
