package view

import "github.com/aluiziolira/scrapedash/models"

// Card is a product tile in a category listing.
type Card struct {
	Title         string
	Brand         string
	Price         string
	OriginalPrice string
	Discount      string
	Rating        string
	Image         string
	URL           string
}

// CategoryView is the rendered form of a category page.
type CategoryView struct {
	SourceURL string
	Cards     []Card
	Total     int
	Page      int
	PrevPage  int
	NextPage  int
}

// HasPrev reports whether an earlier page exists.
func (c *CategoryView) HasPrev() bool { return c.PrevPage > 0 }

// HasNext reports whether a later page likely exists.
func (c *CategoryView) HasNext() bool { return c.NextPage > 0 }

// NewCategoryView builds the listing view of c for site.
func NewCategoryView(siteID string, c *models.Category) *CategoryView {
	if c == nil {
		return nil
	}
	page := c.Page
	if page < 1 {
		page = 1
	}
	v := &CategoryView{
		SourceURL: c.URL,
		Total:     c.TotalProducts,
		Page:      page,
	}
	for _, p := range c.Products {
		if p == nil {
			continue
		}
		card := Card{
			Title:         p.Name,
			Brand:         p.Brand,
			Price:         p.Price,
			OriginalPrice: p.OriginalPrice,
			Discount:      discountLabel(p.Discount),
			Rating:        p.Rating,
			URL:           p.URL,
			Image:         PlaceholderURL(p.Name),
		}
		if len(p.Images) > 0 {
			card.Image = ProxyURL(siteID, p.Images[0])
		}
		v.Cards = append(v.Cards, card)
	}

	if page > 1 {
		v.PrevPage = page - 1
	}
	// Page size is inferred from this page.
	if n := len(v.Cards); n > 0 && (page-1)*n+n < c.TotalProducts {
		v.NextPage = page + 1
	}
	return v
}
