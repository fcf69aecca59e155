package tabs

import (
	"context"
	"errors"
	"testing"

	"github.com/aluiziolira/scrapedash/models"
	"github.com/aluiziolira/scrapedash/panel"
	"github.com/aluiziolira/scrapedash/registry"
)

type stubScraper struct {
	started chan struct{}
	release chan struct{}
}

func (s *stubScraper) Scrape(ctx context.Context, site *registry.Site, mode models.Mode, req models.ScrapeRequest) (*models.Result, error) {
	if s.started != nil {
		s.started <- struct{}{}
		select {
		case <-s.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return &models.Result{Mode: models.ModeProduct, Product: &models.Product{Name: req.URL}}, nil
}

func ids(tabs []Tab) []string {
	out := make([]string, 0, len(tabs))
	for _, t := range tabs {
		out = append(out, t.ID)
	}
	return out
}

func TestVisibleSearchIsCaseInsensitive(t *testing.T) {
	s := New(registry.All(), &stubScraper{})
	defer s.Close()

	s.SetSearch("  AMAZ ")
	got := ids(s.Visible())
	if len(got) != 1 || got[0] != "amazon" {
		t.Fatalf("visible = %v, want [amazon]", got)
	}

	s.SetSearch("")
	if len(s.Visible()) != len(registry.All()) {
		t.Fatalf("empty search should show every tab")
	}
}

func TestStatusFilterUsesRealTelemetry(t *testing.T) {
	s := New(registry.All(), &stubScraper{})
	defer s.Close()

	amazon, _ := s.Panel("amazon")
	if err := amazon.Submit(context.Background(), panel.Input{URL: "https://www.amazon.in/dp/B0F945QD5Z"}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	ikea, _ := s.Panel("ikea")
	if _, err := ikea.TogglePause(); err != nil {
		t.Fatalf("pause: %v", err)
	}

	s.SetFilter(FilterCompleted)
	if got := ids(s.Visible()); len(got) != 1 || got[0] != "amazon" {
		t.Fatalf("completed = %v, want [amazon]", got)
	}
	s.SetFilter(FilterPaused)
	if got := ids(s.Visible()); len(got) != 1 || got[0] != "ikea" {
		t.Fatalf("paused = %v, want [ikea]", got)
	}

	for _, tab := range s.Tabs() {
		if tab.ID == "amazon" {
			if tab.ItemsScraped != 1 || tab.Runs != 1 || tab.LastRun.IsZero() {
				t.Fatalf("amazon tab = %+v", tab)
			}
		}
	}

	st := s.Stats()
	if st.Sites != len(registry.All()) || st.Completed != 1 || st.Paused != 1 || st.ItemsScraped != 1 {
		t.Fatalf("stats = %+v", st)
	}
	if st.Idle != st.Sites-2 {
		t.Fatalf("idle = %d, want %d", st.Idle, st.Sites-2)
	}
}

func TestRunningStatusWhileLoading(t *testing.T) {
	stub := &stubScraper{started: make(chan struct{}), release: make(chan struct{})}
	s := New(registry.All(), stub)
	defer s.Close()

	flipkart, _ := s.Panel("flipkart")
	done := make(chan error, 1)
	go func() {
		done <- flipkart.Submit(context.Background(), panel.Input{URL: "https://www.flipkart.com/x/p/itm1"})
	}()
	<-stub.started

	s.SetFilter(FilterRunning)
	if got := ids(s.Visible()); len(got) != 1 || got[0] != "flipkart" {
		t.Fatalf("running = %v, want [flipkart]", got)
	}

	close(stub.release)
	if err := <-done; err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got := ids(s.Visible()); len(got) != 0 {
		t.Fatalf("nothing should be running, got %v", got)
	}
}

func TestFilteringKeepsSelection(t *testing.T) {
	s := New(registry.All(), &stubScraper{})
	defer s.Close()

	if err := s.Select("IKEA"); err != nil {
		t.Fatalf("select: %v", err)
	}
	s.SetSearch("flip")
	if s.SelectedID() != "ikea" {
		t.Fatalf("filter changed selection to %q", s.SelectedID())
	}
	if got := s.Selected().Site().ID; got != "ikea" {
		t.Fatalf("mounted panel = %q, want ikea", got)
	}
	for _, tab := range s.Visible() {
		if tab.Selected {
			t.Fatalf("hidden selection leaked into visible tabs: %+v", tab)
		}
	}

	s.SetSearch("")
	for _, tab := range s.Visible() {
		if tab.Selected != (tab.ID == "ikea") {
			t.Fatalf("tab %s selected=%v", tab.ID, tab.Selected)
		}
	}
}

func TestSelectUnknownSite(t *testing.T) {
	s := New(registry.All(), &stubScraper{})
	defer s.Close()
	if err := s.Select("nope"); !errors.Is(err, registry.ErrUnknownSite) {
		t.Fatalf("select unknown = %v", err)
	}
	if _, err := s.Panel("nope"); !errors.Is(err, registry.ErrUnknownSite) {
		t.Fatalf("panel unknown = %v", err)
	}
	if s.SelectedID() != registry.All()[0].ID {
		t.Fatalf("failed select must keep the default")
	}
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		in      string
		want    Filter
		wantErr bool
	}{
		{in: "", want: FilterAll},
		{in: "Running", want: FilterRunning},
		{in: "completed", want: FilterCompleted},
		{in: "done", want: FilterAll, wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseFilter(tt.in)
		if got != tt.want || (err != nil) != tt.wantErr {
			t.Errorf("ParseFilter(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestCloseClosesPanels(t *testing.T) {
	s := New(registry.All(), &stubScraper{})
	s.Close()
	amazon, _ := s.Panel("amazon")
	err := amazon.Submit(context.Background(), panel.Input{URL: "https://www.amazon.in/dp/B0F945QD5Z"})
	if !errors.Is(err, panel.ErrClosed) {
		t.Fatalf("submit after close = %v", err)
	}
}
