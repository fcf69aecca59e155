// Package tabs aggregates the per-site panels into a searchable,
// filterable tab strip. Tabs are keyed by site ID and their status is
// derived from what each panel has actually done.
package tabs

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/aluiziolira/scrapedash/panel"
	"github.com/aluiziolira/scrapedash/registry"
)

// ErrUnknownFilter is returned for a status filter outside the known set.
var ErrUnknownFilter = errors.New("tabs: unknown status filter")

// Status is the tab badge.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusRunning   Status = "running"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
)

// Filter narrows the visible tabs by status. FilterAll shows every tab.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterIdle      Filter = Filter(StatusIdle)
	FilterRunning   Filter = Filter(StatusRunning)
	FilterPaused    Filter = Filter(StatusPaused)
	FilterCompleted Filter = Filter(StatusCompleted)
)

// Filters lists the accepted filters in display order.
var Filters = []Filter{FilterAll, FilterIdle, FilterRunning, FilterPaused, FilterCompleted}

// ParseFilter maps form input to a Filter. Empty input means all.
func ParseFilter(s string) (Filter, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return FilterAll, nil
	}
	for _, f := range Filters {
		if Filter(s) == f {
			return f, nil
		}
	}
	return FilterAll, ErrUnknownFilter
}

// Tab is the metadata shown for one site.
type Tab struct {
	ID           string
	Name         string
	URL          string
	Color        string
	Status       Status
	LastRun      time.Time
	ItemsScraped int
	Runs         int
	Selected     bool
}

// Stats summarises all panels.
type Stats struct {
	Sites        int
	Running      int
	Paused       int
	Completed    int
	Idle         int
	Runs         int
	Failures     int
	ItemsScraped int
}

// Shell owns one panel per site.
type Shell struct {
	order  []string
	panels map[string]*panel.Panel

	mu       sync.Mutex
	selected string
	query    string
	filter   Filter
}

// New creates a panel per site, all driven by scraper. The first site is
// selected.
func New(sites []*registry.Site, scraper panel.Scraper) *Shell {
	s := &Shell{
		order:  make([]string, 0, len(sites)),
		panels: make(map[string]*panel.Panel, len(sites)),
		filter: FilterAll,
	}
	for _, site := range sites {
		if _, dup := s.panels[site.ID]; dup {
			continue
		}
		s.order = append(s.order, site.ID)
		s.panels[site.ID] = panel.New(site, scraper)
	}
	if len(s.order) > 0 {
		s.selected = s.order[0]
	}
	return s
}

// Panel returns the panel for a site ID.
func (s *Shell) Panel(id string) (*panel.Panel, error) {
	p, ok := s.panels[strings.ToLower(id)]
	if !ok {
		return nil, registry.ErrUnknownSite
	}
	return p, nil
}

// Select makes id the mounted panel.
func (s *Shell) Select(id string) error {
	id = strings.ToLower(id)
	if _, ok := s.panels[id]; !ok {
		return registry.ErrUnknownSite
	}
	s.mu.Lock()
	s.selected = id
	s.mu.Unlock()
	return nil
}

// Selected returns the mounted panel. Filtering never changes it.
func (s *Shell) Selected() *panel.Panel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.panels[s.selected]
}

// SelectedID returns the mounted site ID.
func (s *Shell) SelectedID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// SetSearch sets the name filter.
func (s *Shell) SetSearch(q string) {
	s.mu.Lock()
	s.query = strings.TrimSpace(q)
	s.mu.Unlock()
}

// SetFilter sets the status filter.
func (s *Shell) SetFilter(f Filter) {
	s.mu.Lock()
	s.filter = f
	s.mu.Unlock()
}

// Search returns the current name filter and status filter.
func (s *Shell) Search() (string, Filter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query, s.filter
}

// Tabs returns every tab in registry order.
func (s *Shell) Tabs() []Tab {
	s.mu.Lock()
	selected := s.selected
	s.mu.Unlock()

	out := make([]Tab, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, tabFor(s.panels[id], id == selected))
	}
	return out
}

// Visible returns the tabs matching both the search and the status filter.
func (s *Shell) Visible() []Tab {
	query, filter := s.Search()
	query = strings.ToLower(query)

	var out []Tab
	for _, tab := range s.Tabs() {
		if query != "" && !strings.Contains(strings.ToLower(tab.Name), query) {
			continue
		}
		if filter != FilterAll && Filter(tab.Status) != filter {
			continue
		}
		out = append(out, tab)
	}
	return out
}

// Stats aggregates panel telemetry.
func (s *Shell) Stats() Stats {
	var st Stats
	for _, id := range s.order {
		snap := s.panels[id].Snapshot()
		st.Sites++
		st.Runs += snap.Runs
		st.Failures += snap.Failures
		st.ItemsScraped += snap.Items
		switch StatusOf(snap) {
		case StatusRunning:
			st.Running++
		case StatusPaused:
			st.Paused++
		case StatusCompleted:
			st.Completed++
		default:
			st.Idle++
		}
	}
	return st
}

// Close closes every panel, cancelling in-flight requests.
func (s *Shell) Close() {
	for _, id := range s.order {
		s.panels[id].Close()
	}
}

func tabFor(p *panel.Panel, selected bool) Tab {
	snap := p.Snapshot()
	site := snap.Site
	return Tab{
		ID:           site.ID,
		Name:         site.Name,
		URL:          site.SiteURL,
		Color:        site.Color,
		Status:       StatusOf(snap),
		LastRun:      snap.LastRun,
		ItemsScraped: snap.Items,
		Runs:         snap.Runs,
		Selected:     selected,
	}
}

// StatusOf derives the tab badge from a panel snapshot.
func StatusOf(snap panel.Snapshot) Status {
	switch {
	case snap.Loading:
		return StatusRunning
	case snap.Paused:
		return StatusPaused
	case !snap.LastSuccess.IsZero() && snap.LastSuccess.Equal(snap.LastRun):
		return StatusCompleted
	default:
		return StatusIdle
	}
}
