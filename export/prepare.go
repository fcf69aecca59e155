package export

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aluiziolira/scrapedash/models"
	"github.com/aluiziolira/scrapedash/parser"
)

// Stats reports what Prepare dropped.
type Stats struct {
	Written    int
	Invalid    int
	Duplicates int
}

// Prepare drops invalid products and later duplicates, keyed by URL (or
// site and name when a product has no URL). Order is preserved.
func Prepare(products []*models.Product) ([]*models.Product, Stats) {
	var st Stats
	seen := make(map[string]struct{}, len(products))
	out := make([]*models.Product, 0, len(products))

	for _, p := range products {
		if err := parser.ValidateProduct(p); err != nil {
			st.Invalid++
			slog.Debug("export skipped product", slog.Any("error", err))
			continue
		}
		key := dedupeKey(p)
		if _, ok := seen[key]; ok {
			st.Duplicates++
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	st.Written = len(out)
	return out, st
}

// Encode prepares products and writes them to w in format f.
func Encode(w io.Writer, f Format, products []*models.Product) (Stats, error) {
	writer, err := NewWriter(w, f)
	if err != nil {
		return Stats{}, err
	}
	prepared, st := Prepare(products)
	if err := writer.Write(prepared); err != nil {
		return st, err
	}
	if err := writer.Close(); err != nil {
		return st, fmt.Errorf("close %s writer: %w", f, err)
	}
	return st, nil
}

func dedupeKey(p *models.Product) string {
	if url := strings.TrimSpace(p.URL); url != "" {
		return "url:" + url
	}
	return "name:" + p.SiteID + "|" + strings.ToLower(strings.TrimSpace(p.Name))
}
