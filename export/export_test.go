package export

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aluiziolira/scrapedash/models"
)

func products() []*models.Product {
	at := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	return []*models.Product{
		{SiteID: "amazon", Name: "Echo Dot", Price: "₹4,499", Rating: "4.3 out of 5 stars", URL: "https://www.amazon.in/dp/A", Images: []string{"https://m.media-amazon.com/a.jpg"}, ScrapedAt: at},
		{SiteID: "amazon", Name: "Echo Dot (again)", URL: "https://www.amazon.in/dp/A", ScrapedAt: at},
		{SiteID: "amazon", Name: "  ", URL: "https://www.amazon.in/dp/B"},
		nil,
		{SiteID: "amazon", Name: "Kindle", URL: "https://www.amazon.in/dp/C", ScrapedAt: at},
		{SiteID: "flipkart", Name: "Card only"},
		{SiteID: "flipkart", Name: "card ONLY "},
	}
}

func TestPrepareValidatesAndDedupes(t *testing.T) {
	out, st := Prepare(products())

	if st.Written != 3 || st.Invalid != 2 || st.Duplicates != 2 {
		t.Fatalf("stats = %+v", st)
	}
	want := []string{"Echo Dot", "Kindle", "Card only"}
	for i, p := range out {
		if p.Name != want[i] {
			t.Fatalf("out[%d] = %q, want %q", i, p.Name, want[i])
		}
	}
}

func TestEncodeCSV(t *testing.T) {
	var buf bytes.Buffer
	st, err := Encode(&buf, FormatCSV, products())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if st.Written != 3 {
		t.Fatalf("written = %d", st.Written)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("records = %d, want 4", len(records))
	}
	if records[0][0] != "site" || records[0][1] != "name" {
		t.Fatalf("unexpected header: %v", records[0])
	}
	first := records[1]
	if first[1] != "Echo Dot" || first[8] != "4.3" || first[11] != "https://m.media-amazon.com/a.jpg" || first[13] != "2026-02-01T10:00:00Z" {
		t.Fatalf("unexpected first row: %v", first)
	}
	if records[3][13] != "" {
		t.Fatalf("missing timestamp should stay empty, got %q", records[3][13])
	}
}

func TestEncodeCSVNeutralizesFormulas(t *testing.T) {
	hostile := []*models.Product{{
		SiteID: "amazon",
		Name:   `=HYPERLINK("http://evil.test","click")`,
		Brand:  "@SUM(A1:A2)",
		Price:  "+1",
		Rating: "-2+3",
		URL:    "https://www.amazon.in/dp/Z",
	}}
	var buf bytes.Buffer
	if _, err := Encode(&buf, FormatCSV, hostile); err != nil {
		t.Fatalf("encode: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	row := records[1]
	tests := []struct {
		col  int
		want string
	}{
		{col: 1, want: `'=HYPERLINK("http://evil.test","click")`},
		{col: 2, want: "'@SUM(A1:A2)"},
		{col: 3, want: "'+1"},
		{col: 7, want: "'-2+3"},
		{col: 12, want: "https://www.amazon.in/dp/Z"},
	}
	for _, tt := range tests {
		if row[tt.col] != tt.want {
			t.Fatalf("column %d = %q, want %q", tt.col, row[tt.col], tt.want)
		}
	}
}

func TestEncodeJSONLines(t *testing.T) {
	var buf bytes.Buffer
	if _, err := Encode(&buf, FormatJSON, products()); err != nil {
		t.Fatalf("encode: %v", err)
	}

	scanner := bufio.NewScanner(&buf)
	var names []string
	for scanner.Scan() {
		var p models.Product
		if err := json.Unmarshal(scanner.Bytes(), &p); err != nil {
			t.Fatalf("decode line %q: %v", scanner.Text(), err)
		}
		names = append(names, p.Name)
	}
	if len(names) != 3 || names[0] != "Echo Dot" {
		t.Fatalf("names = %v", names)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		err  bool
	}{
		{in: "", want: FormatCSV},
		{in: "CSV", want: FormatCSV},
		{in: "ndjson", want: FormatJSON},
		{in: "xml", err: true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.err || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
	if _, err := NewWriter(&bytes.Buffer{}, Format("xml")); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("NewWriter(xml) = %v", err)
	}
	if FormatJSON.Extension() != "jsonl" || FormatCSV.ContentType() != "text/csv; charset=utf-8" {
		t.Fatalf("unexpected format metadata")
	}
}
