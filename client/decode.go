package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aluiziolira/scrapedash/models"
	"github.com/aluiziolira/scrapedash/parser"
	"github.com/aluiziolira/scrapedash/registry"
)

var errMissingData = errors.New("response reported success without data")

func decodeObject(raw json.RawMessage) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, errMissingData
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode data: %w", err)
	}
	return v, nil
}

// decodeProduct maps a product payload onto models.Product using the
// site's field map.
func decodeProduct(site *registry.Site, raw json.RawMessage, sourceURL string, now time.Time) (*models.Product, error) {
	v, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("product data is %T, want object", v)
	}
	p := productFromMap(site, obj, sourceURL, now)
	if err := parser.ValidateProduct(p); err != nil {
		return nil, fmt.Errorf("incomplete product data: %w", err)
	}
	return p, nil
}

// decodeCategory accepts either {products, totalProducts, page} or a bare
// array of products.
func decodeCategory(site *registry.Site, raw json.RawMessage, sourceURL string, page int, now time.Time) (*models.Category, error) {
	v, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}

	var items []any
	total, gotTotal := 0, false
	if page <= 0 {
		page = 1
	}

	switch data := v.(type) {
	case []any:
		items = data
	case map[string]any:
		productsValue, found := lookupFirst(data, site.Keys(registry.FieldProducts))
		if !found {
			return nil, fmt.Errorf("category data has no products list")
		}
		list, ok := productsValue.([]any)
		if !ok {
			return nil, fmt.Errorf("category products is %T, want array", productsValue)
		}
		items = list
		if n, ok := intValue(data, site.Keys(registry.FieldTotalProducts)); ok {
			total, gotTotal = n, true
		}
		if n, ok := intValue(data, site.Keys(registry.FieldPage)); ok && n > 0 {
			page = n
		}
	default:
		return nil, fmt.Errorf("category data is %T, want object or array", v)
	}

	products := make([]*models.Product, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		products = append(products, productFromMap(site, obj, "", now))
	}
	if !gotTotal {
		total = len(products)
	}

	return &models.Category{
		SiteID:        site.ID,
		URL:           sourceURL,
		Products:      products,
		TotalProducts: total,
		Page:          page,
	}, nil
}

func productFromMap(site *registry.Site, obj map[string]any, sourceURL string, now time.Time) *models.Product {
	text := func(field registry.Field) string {
		v, ok := lookupFirst(obj, site.Keys(field))
		if !ok {
			return ""
		}
		return stringValue(v)
	}

	p := &models.Product{
		SiteID:         site.ID,
		Name:           strings.TrimSpace(text(registry.FieldName)),
		Brand:          strings.TrimSpace(text(registry.FieldBrand)),
		Price:          strings.TrimSpace(text(registry.FieldPrice)),
		OriginalPrice:  strings.TrimSpace(text(registry.FieldOriginalPrice)),
		Discount:       strings.TrimSpace(text(registry.FieldDiscount)),
		Currency:       strings.TrimSpace(text(registry.FieldCurrency)),
		Rating:         strings.TrimSpace(text(registry.FieldRating)),
		ReviewCount:    strings.TrimSpace(text(registry.FieldReviewCount)),
		Availability:   parser.NormalizeAvailability(text(registry.FieldAvailability)),
		Description:    strings.TrimSpace(text(registry.FieldDescription)),
		URL:            strings.TrimSpace(text(registry.FieldURL)),
		Images:         imageList(obj, site.Keys(registry.FieldImages)),
		Specifications: specMap(obj, site.Keys(registry.FieldSpecifications)),
		Offers:         offerList(obj, site.Keys(registry.FieldOffers)),
		ScrapedAt:      now,
	}
	if p.URL == "" {
		p.URL = sourceURL
	}
	if p.Discount == "" {
		if pct, ok := parser.DiscountPercent(p.Price, p.OriginalPrice); ok {
			p.Discount = strconv.Itoa(pct) + "%"
		}
	}
	if raw := text(registry.FieldScrapedAt); raw != "" {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			p.ScrapedAt = ts
		}
	}
	return p
}

// lookupFirst returns the first present, non-null value among keys.
func lookupFirst(obj map[string]any, keys []string) (any, bool) {
	for _, key := range keys {
		if v, ok := lookupPath(obj, key); ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func lookupPath(obj map[string]any, path string) (any, bool) {
	var cur any = obj
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "In stock"
		}
		return "Out of stock"
	case map[string]any:
		for _, key := range []string{"value", "text", "display", "amount"} {
			if inner, ok := t[key]; ok {
				return stringValue(inner)
			}
		}
	}
	return ""
}

func intValue(obj map[string]any, keys []string) (int, bool) {
	v, ok := lookupFirst(obj, keys)
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

func imageList(obj map[string]any, keys []string) []string {
	v, ok := lookupFirst(obj, keys)
	if !ok {
		return nil
	}
	var out []string
	add := func(item any) {
		switch t := item.(type) {
		case string:
			if s := strings.TrimSpace(t); s != "" {
				out = append(out, s)
			}
		case map[string]any:
			for _, key := range []string{"url", "src", "hiRes", "large"} {
				if s, ok := t[key].(string); ok && strings.TrimSpace(s) != "" {
					out = append(out, strings.TrimSpace(s))
					return
				}
			}
		}
	}
	if list, ok := v.([]any); ok {
		for _, item := range list {
			add(item)
		}
	} else {
		add(v)
	}
	return out
}

func specMap(obj map[string]any, keys []string) map[string]string {
	v, ok := lookupFirst(obj, keys)
	if !ok {
		return nil
	}
	out := make(map[string]string)
	switch t := v.(type) {
	case map[string]any:
		for key, value := range t {
			if s := strings.TrimSpace(stringValue(value)); s != "" {
				out[strings.TrimSpace(key)] = s
			}
		}
	case []any:
		for _, item := range t {
			entry, ok := item.(map[string]any)
			if !ok {
				continue
			}
			name := firstString(entry, "key", "name", "label", "title")
			value := firstString(entry, "value", "text", "description")
			if name != "" && value != "" {
				out[name] = value
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func offerList(obj map[string]any, keys []string) []string {
	v, ok := lookupFirst(obj, keys)
	if !ok {
		return nil
	}
	list, ok := v.([]any)
	if !ok {
		if s := strings.TrimSpace(stringValue(v)); s != "" {
			return []string{s}
		}
		return nil
	}
	var out []string
	for _, item := range list {
		switch t := item.(type) {
		case string:
			if s := strings.TrimSpace(t); s != "" {
				out = append(out, s)
			}
		case map[string]any:
			title := firstString(t, "title", "type", "name")
			desc := firstString(t, "description", "text", "offer", "details")
			switch {
			case title != "" && desc != "":
				out = append(out, title+": "+desc)
			case title != "":
				out = append(out, title)
			case desc != "":
				out = append(out, desc)
			}
		}
	}
	return out
}

func firstString(obj map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := obj[key]; ok {
			if s := strings.TrimSpace(stringValue(v)); s != "" {
				return s
			}
		}
	}
	return ""
}
