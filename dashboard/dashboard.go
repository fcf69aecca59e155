// Package dashboard holds the top-level operator state: which section is
// showing, whether the sidebar is collapsed, and the scraper tab shell.
package dashboard

import (
	"errors"
	"strings"
	"sync"

	"github.com/aluiziolira/scrapedash/panel"
	"github.com/aluiziolira/scrapedash/registry"
	"github.com/aluiziolira/scrapedash/tabs"
)

// ErrUnknownSection is returned for a section outside the known set.
var ErrUnknownSection = errors.New("dashboard: unknown section")

// Section is a sidebar destination.
type Section string

const (
	SectionDashboard Section = "dashboard"
	SectionScrapers  Section = "scrapers"
	SectionAnalytics Section = "analytics"
	SectionData      Section = "data"
	SectionSettings  Section = "settings"
)

// NavItem is one sidebar entry.
type NavItem struct {
	Section Section
	Label   string
	Active  bool
}

var sections = []NavItem{
	{Section: SectionDashboard, Label: "Dashboard"},
	{Section: SectionScrapers, Label: "Scrapers"},
	{Section: SectionAnalytics, Label: "Analytics"},
	{Section: SectionData, Label: "Data"},
	{Section: SectionSettings, Label: "Settings"},
}

// ParseSection validates a section name.
func ParseSection(s string) (Section, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, item := range sections {
		if Section(s) == item.Section {
			return item.Section, nil
		}
	}
	return "", ErrUnknownSection
}

// Dashboard is one operator's view of the application.
type Dashboard struct {
	shell *tabs.Shell

	mu        sync.Mutex
	section   Section
	collapsed bool
}

// New builds a dashboard over sites, starting on the dashboard section.
func New(sites []*registry.Site, scraper panel.Scraper) *Dashboard {
	return &Dashboard{
		shell:   tabs.New(sites, scraper),
		section: SectionDashboard,
	}
}

// Shell returns the scraper tab shell.
func (d *Dashboard) Shell() *tabs.Shell {
	return d.shell
}

// Section returns the active section.
func (d *Dashboard) Section() Section {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.section
}

// SetSection switches the active section.
func (d *Dashboard) SetSection(name string) error {
	section, err := ParseSection(name)
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.section = section
	d.mu.Unlock()
	return nil
}

// ToggleSidebar flips the collapsed flag and returns the new value.
func (d *Dashboard) ToggleSidebar() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.collapsed = !d.collapsed
	return d.collapsed
}

// SidebarCollapsed reports the collapsed flag.
func (d *Dashboard) SidebarCollapsed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.collapsed
}

// Nav returns the sidebar entries with the active one marked.
func (d *Dashboard) Nav() []NavItem {
	active := d.Section()
	out := make([]NavItem, len(sections))
	copy(out, sections)
	for i := range out {
		out[i].Active = out[i].Section == active
	}
	return out
}

// Close releases every panel.
func (d *Dashboard) Close() {
	d.shell.Close()
}
