package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/aluiziolira/scrapedash/models"
	"github.com/aluiziolira/scrapedash/registry"
)

type nopScraper struct{}

func (nopScraper) Scrape(context.Context, *registry.Site, models.Mode, models.ScrapeRequest) (*models.Result, error) {
	return nil, errors.New("unused")
}

func TestSectionSwitch(t *testing.T) {
	d := New(registry.All(), nopScraper{})
	defer d.Close()

	if d.Section() != SectionDashboard {
		t.Fatalf("initial section = %q", d.Section())
	}

	tests := []struct {
		in      string
		want    Section
		wantErr bool
	}{
		{in: "scrapers", want: SectionScrapers},
		{in: " Data ", want: SectionData},
		{in: "analytics", want: SectionAnalytics},
		{in: "reports", want: SectionAnalytics, wantErr: true},
		{in: "", want: SectionAnalytics, wantErr: true},
		{in: "settings", want: SectionSettings},
	}
	for _, tt := range tests {
		err := d.SetSection(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("SetSection(%q) error = %v", tt.in, err)
		}
		if err != nil && !errors.Is(err, ErrUnknownSection) {
			t.Fatalf("SetSection(%q) error = %v, want ErrUnknownSection", tt.in, err)
		}
		if d.Section() != tt.want {
			t.Fatalf("after %q section = %q, want %q", tt.in, d.Section(), tt.want)
		}
	}
}

func TestNavMarksActive(t *testing.T) {
	d := New(registry.All(), nopScraper{})
	defer d.Close()

	if err := d.SetSection("data"); err != nil {
		t.Fatalf("set section: %v", err)
	}
	active := 0
	for _, item := range d.Nav() {
		if item.Active {
			active++
			if item.Section != SectionData {
				t.Fatalf("active item = %q", item.Section)
			}
		}
	}
	if active != 1 {
		t.Fatalf("active items = %d, want 1", active)
	}
	if d.Nav()[0].Active {
		t.Fatalf("nav should not share state between calls")
	}
}

func TestSidebarToggle(t *testing.T) {
	d := New(registry.All(), nopScraper{})
	defer d.Close()

	if d.SidebarCollapsed() {
		t.Fatalf("sidebar starts expanded")
	}
	if !d.ToggleSidebar() || !d.SidebarCollapsed() {
		t.Fatalf("first toggle collapses")
	}
	if d.ToggleSidebar() {
		t.Fatalf("second toggle expands")
	}
}

func TestShellHasEveryPanel(t *testing.T) {
	d := New(registry.All(), nopScraper{})
	defer d.Close()
	for _, site := range registry.All() {
		if _, err := d.Shell().Panel(site.ID); err != nil {
			t.Fatalf("panel %s: %v", site.ID, err)
		}
	}
}
