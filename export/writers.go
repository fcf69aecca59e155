// Package export writes fetched products as CSV or JSON lines.
package export

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aluiziolira/scrapedash/models"
	"github.com/aluiziolira/scrapedash/parser"
)

// ErrUnknownFormat is returned for an export format other than csv or json.
var ErrUnknownFormat = errors.New("export: unknown format")

// Format selects the output encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat maps a query value to a Format. Empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "json", "jsonl", "ndjson":
		return FormatJSON, nil
	}
	return "", ErrUnknownFormat
}

// ContentType is the MIME type served for f.
func (f Format) ContentType() string {
	if f == FormatJSON {
		return "application/x-ndjson"
	}
	return "text/csv; charset=utf-8"
}

// Extension is the file suffix for f.
func (f Format) Extension() string {
	if f == FormatJSON {
		return "jsonl"
	}
	return "csv"
}

// Writer receives batches of products.
type Writer interface {
	Write(products []*models.Product) error
	Close() error
}

// NewWriter returns the writer for f over w.
func NewWriter(w io.Writer, f Format) (Writer, error) {
	switch f {
	case FormatCSV:
		return NewCSVWriter(w)
	case FormatJSON:
		return NewJSONWriter(w), nil
	}
	return nil, ErrUnknownFormat
}

var csvHeader = []string{
	"site", "name", "brand", "price", "original_price", "discount", "currency",
	"rating", "rating_numeric", "review_count", "availability", "image_url", "url", "scraped_at",
}

// CSVWriter writes products as CSV rows after a header row.
type CSVWriter struct {
	writer *csv.Writer
	mu     sync.Mutex
}

// NewCSVWriter writes the header row to w.
func NewCSVWriter(w io.Writer) (*CSVWriter, error) {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv header: %w", err)
	}
	return &CSVWriter{writer: writer}, nil
}

// Write appends products.
func (cw *CSVWriter) Write(products []*models.Product) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	for _, p := range products {
		image := ""
		if len(p.Images) > 0 {
			image = p.Images[0]
		}
		scrapedAt := ""
		if !p.ScrapedAt.IsZero() {
			scrapedAt = p.ScrapedAt.UTC().Format(time.RFC3339)
		}
		record := []string{
			p.SiteID,
			p.Name,
			p.Brand,
			p.Price,
			p.OriginalPrice,
			p.Discount,
			p.Currency,
			p.Rating,
			strconv.FormatFloat(parser.RatingToNumeric(p.Rating), 'f', -1, 64),
			p.ReviewCount,
			p.Availability,
			image,
			p.URL,
			scrapedAt,
		}
		for i := range record {
			record[i] = neutralizeFormula(record[i])
		}
		if err := cw.writer.Write(record); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}
	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		return fmt.Errorf("flush csv records: %w", err)
	}
	return nil
}

// neutralizeFormula prefixes cells a spreadsheet would evaluate.
func neutralizeFormula(v string) string {
	if v == "" {
		return v
	}
	switch v[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + v
	}
	return v
}

// Close flushes buffered rows.
func (cw *CSVWriter) Close() error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		return fmt.Errorf("flush csv writer: %w", err)
	}
	return nil
}

// JSONWriter writes newline-delimited JSON records.
type JSONWriter struct {
	writer  *bufio.Writer
	encoder *json.Encoder
	mu      sync.Mutex
}

// NewJSONWriter wraps w.
func NewJSONWriter(w io.Writer) *JSONWriter {
	buffer := bufio.NewWriter(w)
	return &JSONWriter{
		writer:  buffer,
		encoder: json.NewEncoder(buffer),
	}
}

// Write appends products in JSONL format.
func (jw *JSONWriter) Write(products []*models.Product) error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	for _, p := range products {
		if err := jw.encoder.Encode(p); err != nil {
			return fmt.Errorf("encode json record: %w", err)
		}
	}
	if err := jw.writer.Flush(); err != nil {
		return fmt.Errorf("flush json writer: %w", err)
	}
	return nil
}

// Close flushes buffers.
func (jw *JSONWriter) Close() error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	if err := jw.writer.Flush(); err != nil {
		return fmt.Errorf("flush json writer: %w", err)
	}
	return nil
}
