package view

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aluiziolira/scrapedash/models"
	"github.com/google/go-cmp/cmp"
)

func TestGalleryWraps(t *testing.T) {
	for n := 1; n <= 6; n++ {
		for start := 0; start < n; start++ {
			g := NewGallery(n).Select(start)
			for i := 0; i < n; i++ {
				g = g.Next()
			}
			if g.Index != start {
				t.Fatalf("n=%d start=%d: %d nexts ended at %d", n, start, n, g.Index)
			}
		}
		if got := NewGallery(n).Prev().Index; got != n-1 {
			t.Fatalf("n=%d: prev from 0 = %d, want %d", n, got, n-1)
		}
	}
}

func TestGalleryEmptyIsNoop(t *testing.T) {
	g := NewGallery(0)
	if g.Next() != g || g.Prev() != g || g.Select(2) != g {
		t.Fatalf("empty gallery must not move")
	}
}

func TestGallerySelectIgnoresOutOfRange(t *testing.T) {
	g := NewGallery(3).Select(1)
	if got := g.Select(5).Index; got != 1 {
		t.Fatalf("select out of range moved to %d", got)
	}
	if got := g.Select(-1).Index; got != 1 {
		t.Fatalf("select negative moved to %d", got)
	}
}

func sampleProduct() *models.Product {
	return &models.Product{
		SiteID:        "amazon",
		Name:          "Echo Dot",
		Brand:         "Amazon",
		Price:         "₹4,499",
		OriginalPrice: "₹5,999",
		Discount:      "25",
		Rating:        "4.3 out of 5 stars",
		Availability:  "In stock",
		Images: []string{
			"https://m.media-amazon.com/a.jpg",
			"https://m.media-amazon.com/b.jpg",
		},
		Specifications: map[string]string{"Weight": "304 g", "Colour": "Blue", "Brand": "Amazon"},
		Offers:         []string{"o1", "o2", "o3", "o4", "o5"},
		URL:            "https://www.amazon.in/dp/B0F945QD5Z",
		ScrapedAt:      time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestNewProductView(t *testing.T) {
	p := sampleProduct()
	v := NewProductView("amazon", p, State{ImageIndex: 1})

	if v.Title != "Echo Dot" || v.Brand != "Amazon" {
		t.Fatalf("title/brand = %q/%q", v.Title, v.Brand)
	}
	if v.Discount != "25% off" || !v.HasDiscount {
		t.Fatalf("discount = %q (%v)", v.Discount, v.HasDiscount)
	}
	if v.RatingValue != 4.3 || v.FullStars != 4 {
		t.Fatalf("rating = %v / %d stars", v.RatingValue, v.FullStars)
	}
	if !v.InStock {
		t.Fatalf("expected in stock")
	}

	wantSpecs := []Spec{{"Brand", "Amazon"}, {"Colour", "Blue"}, {"Weight", "304 g"}}
	if diff := cmp.Diff(wantSpecs, v.Specs); diff != "" {
		t.Fatalf("specs mismatch (-want +got):\n%s", diff)
	}

	if v.Current.Original != "https://m.media-amazon.com/b.jpg" || !v.Images[1].Active || v.Images[0].Active {
		t.Fatalf("current image = %+v", v.Current)
	}
	parsed, err := url.Parse(v.Current.Src)
	if err != nil {
		t.Fatalf("parse proxy url: %v", err)
	}
	if parsed.Path != "/images" || parsed.Query().Get("site") != "amazon" || parsed.Query().Get("u") != p.Images[1] {
		t.Fatalf("proxy url = %q", v.Current.Src)
	}
}

func TestOffersCollapse(t *testing.T) {
	p := sampleProduct()

	collapsed := NewProductView("amazon", p, State{})
	if diff := cmp.Diff([]string{"o1", "o2", "o3"}, collapsed.Offers); diff != "" {
		t.Fatalf("collapsed offers (-want +got):\n%s", diff)
	}
	if collapsed.HiddenOffers != 2 || !collapsed.CanExpand {
		t.Fatalf("hidden = %d, canExpand = %v", collapsed.HiddenOffers, collapsed.CanExpand)
	}

	expanded := NewProductView("amazon", p, State{OffersExpanded: true})
	if len(expanded.Offers) != 5 || expanded.HiddenOffers != 0 {
		t.Fatalf("expanded offers = %v", expanded.Offers)
	}

	p.Offers = p.Offers[:2]
	short := NewProductView("amazon", p, State{})
	if short.CanExpand || len(short.Offers) != 2 {
		t.Fatalf("short list should not collapse: %+v", short.Offers)
	}
}

func TestProductViewDoesNotMutateInput(t *testing.T) {
	p := sampleProduct()
	before := *p
	before.Offers = append([]string(nil), p.Offers...)
	before.Images = append([]string(nil), p.Images...)

	v := NewProductView("amazon", p, State{})
	v.Offers[0] = "changed"

	if diff := cmp.Diff(&before, p); diff != "" {
		t.Fatalf("input mutated (-before +after):\n%s", diff)
	}
}

func TestProductViewWithoutImagesUsesPlaceholder(t *testing.T) {
	p := sampleProduct()
	p.Images = nil
	v := NewProductView("amazon", p, State{ImageIndex: 3})
	if !strings.HasPrefix(v.Current.Src, "/images/placeholder?") {
		t.Fatalf("current src = %q", v.Current.Src)
	}
	if v.Gallery.Size != 0 {
		t.Fatalf("gallery size = %d", v.Gallery.Size)
	}
}

func TestInStock(t *testing.T) {
	tests := map[string]bool{
		"In stock":               true,
		"Only 2 left in stock.":  true,
		"Currently unavailable.": false,
		"OUT OF STOCK":           false,
		"":                       false,
	}
	for input, want := range tests {
		if got := inStock(input); got != want {
			t.Errorf("inStock(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestNewCategoryView(t *testing.T) {
	c := &models.Category{
		URL: "https://www.flipkart.com/mobiles",
		Products: []*models.Product{
			{Name: "A", Images: []string{"https://rukminim1.flixcart.com/a.jpg"}},
			{Name: "B"},
		},
		TotalProducts: 6,
		Page:          2,
	}
	v := NewCategoryView("flipkart", c)

	if len(v.Cards) != 2 || v.Total != 6 || v.Page != 2 {
		t.Fatalf("unexpected view %+v", v)
	}
	if !v.HasPrev() || v.PrevPage != 1 {
		t.Fatalf("prev page = %d", v.PrevPage)
	}
	if !v.HasNext() || v.NextPage != 3 {
		t.Fatalf("next page = %d", v.NextPage)
	}
	if !strings.HasPrefix(v.Cards[0].Image, "/images?") || !strings.HasPrefix(v.Cards[1].Image, "/images/placeholder?") {
		t.Fatalf("card images = %q / %q", v.Cards[0].Image, v.Cards[1].Image)
	}

	c.Page = 3
	if last := NewCategoryView("flipkart", c); last.HasNext() {
		t.Fatalf("last page should not offer a next page")
	}
}

func TestPlaceholder(t *testing.T) {
	svg := string(Placeholder(`<script>"x"</script>`, 200, 100))
	if !strings.HasPrefix(svg, "<svg") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatalf("not an svg document: %s", svg)
	}
	if strings.Contains(svg, "<script>") {
		t.Fatalf("label was not escaped: %s", svg)
	}
	if !strings.Contains(svg, `width="200"`) || !strings.Contains(svg, `height="100"`) {
		t.Fatalf("dimensions missing: %s", svg)
	}
	if !strings.Contains(string(Placeholder("", 0, 0)), "No image") {
		t.Fatalf("empty label should fall back")
	}
}
