// Package models defines data structures shared by the dashboard.
package models

import (
	"encoding/json"
	"time"
)

// Mode selects which scrape endpoint a request targets.
type Mode string

const (
	ModeProduct  Mode = "product"
	ModeCategory Mode = "category"
)

// ParseMode maps form input to a Mode, defaulting to product.
func ParseMode(s string) Mode {
	if Mode(s) == ModeCategory {
		return ModeCategory
	}
	return ModeProduct
}

// ScrapeRequest is the body posted to the scraping API.
type ScrapeRequest struct {
	URL  string `json:"url"`
	Page int    `json:"page,omitempty"`
}

// Envelope wraps every scraping API response.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

// Product is a fetched product record, normalised across marketplaces.
type Product struct {
	SiteID         string            `csv:"site" json:"site"`
	Name           string            `csv:"name" json:"productName"`
	Brand          string            `csv:"brand" json:"brand,omitempty"`
	Price          string            `csv:"price" json:"price,omitempty"`
	OriginalPrice  string            `csv:"original_price" json:"originalPrice,omitempty"`
	Discount       string            `csv:"discount" json:"discount,omitempty"`
	Currency       string            `csv:"currency" json:"currency,omitempty"`
	Rating         string            `csv:"rating" json:"rating,omitempty"`
	ReviewCount    string            `csv:"review_count" json:"reviewCount,omitempty"`
	Availability   string            `csv:"availability" json:"availability,omitempty"`
	Description    string            `csv:"-" json:"description,omitempty"`
	Images         []string          `csv:"-" json:"images,omitempty"`
	Specifications map[string]string `csv:"-" json:"specifications,omitempty"`
	Offers         []string          `csv:"-" json:"offers,omitempty"`
	URL            string            `csv:"url" json:"url"`
	ScrapedAt      time.Time         `csv:"scraped_at" json:"scrapedAt"`
}

// Category is a page of products from a category listing.
type Category struct {
	SiteID        string     `json:"site"`
	URL           string     `json:"url"`
	Products      []*Product `json:"products"`
	TotalProducts int        `json:"totalProducts"`
	Page          int        `json:"page"`
}

// Result holds exactly one of Product or Category.
type Result struct {
	Mode     Mode      `json:"mode"`
	Product  *Product  `json:"product,omitempty"`
	Category *Category `json:"category,omitempty"`
}

// ItemCount reports how many products the result carries.
func (r *Result) ItemCount() int {
	switch {
	case r == nil:
		return 0
	case r.Product != nil:
		return 1
	case r.Category != nil:
		return len(r.Category.Products)
	default:
		return 0
	}
}
