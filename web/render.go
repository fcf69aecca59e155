package web

import (
	"net/http"
	"time"

	"github.com/aluiziolira/scrapedash/dashboard"
	"github.com/aluiziolira/scrapedash/models"
	"github.com/aluiziolira/scrapedash/panel"
	"github.com/aluiziolira/scrapedash/registry"
	"github.com/aluiziolira/scrapedash/tabs"
	"github.com/aluiziolira/scrapedash/view"
)

type pageData struct {
	RequestID string
	Nav       []dashboard.NavItem
	Section   dashboard.Section
	Collapsed bool

	Query   string
	Filter  tabs.Filter
	Filters []tabs.Filter
	Tabs    []tabs.Tab
	Stats   tabs.Stats

	Panel *panelData
	Data  []dataRow
}

type panelData struct {
	Site     *registry.Site
	Snap     panel.Snapshot
	Product  *view.ProductView
	Category *view.CategoryView
	History  []historyItem
}

type historyItem struct {
	Name      string
	Price     string
	URL       string
	ScrapedAt time.Time
}

type dataRow struct {
	Site     *registry.Site
	Products int
	Runs     int
	Failures int
	LastRun  time.Time
}

func buildPage(r *http.Request, d *dashboard.Dashboard) *pageData {
	shell := d.Shell()
	query, filter := shell.Search()
	data := &pageData{
		RequestID: RequestIDFrom(r.Context()),
		Nav:       d.Nav(),
		Section:   d.Section(),
		Collapsed: d.SidebarCollapsed(),
		Query:     query,
		Filter:    filter,
		Filters:   tabs.Filters,
		Stats:     shell.Stats(),
	}

	switch data.Section {
	case dashboard.SectionScrapers:
		data.Tabs = shell.Visible()
		if p := shell.Selected(); p != nil {
			data.Panel = newPanelData(p.Snapshot())
		}
	case dashboard.SectionData:
		for _, tab := range shell.Tabs() {
			p, _ := shell.Panel(tab.ID)
			snap := p.Snapshot()
			data.Data = append(data.Data, dataRow{
				Site:     snap.Site,
				Products: len(exportable(snap)),
				Runs:     snap.Runs,
				Failures: snap.Failures,
				LastRun:  snap.LastRun,
			})
		}
	default:
		data.Tabs = shell.Tabs()
	}
	return data
}

func newPanelData(snap panel.Snapshot) *panelData {
	pd := &panelData{Site: snap.Site, Snap: snap}
	st := view.State{ImageIndex: snap.ImageIndex, OffersExpanded: snap.OffersExpanded}
	if p := snap.Product(); p != nil {
		pd.Product = view.NewProductView(snap.Site.ID, p, st)
	}
	if c := snap.Category(); c != nil {
		pd.Category = view.NewCategoryView(snap.Site.ID, c)
	}
	for _, p := range snap.History {
		pd.History = append(pd.History, historyItem{
			Name:      p.Name,
			Price:     p.Price,
			URL:       p.URL,
			ScrapedAt: p.ScrapedAt,
		})
	}
	return pd
}

// panelState is the JSON form of a panel snapshot.
type panelState struct {
	Site         string            `json:"site"`
	Name         string            `json:"name"`
	Status       panel.Status      `json:"status"`
	TabStatus    tabs.Status       `json:"tabStatus"`
	Loading      bool              `json:"loading"`
	Paused       bool              `json:"paused"`
	Input        inputState        `json:"input"`
	Result       *models.Result    `json:"result,omitempty"`
	Error        *errorState       `json:"error,omitempty"`
	History      []*models.Product `json:"history"`
	ImageIndex   int               `json:"imageIndex"`
	ItemsScraped int               `json:"itemsScraped"`
	Runs         int               `json:"runs"`
	Failures     int               `json:"failures"`
	LastRun      *time.Time        `json:"lastRun,omitempty"`
}

type inputState struct {
	URL  string      `json:"url"`
	Mode models.Mode `json:"mode"`
	Page int         `json:"page"`
}

type errorState struct {
	Kind      panel.Kind `json:"kind"`
	Message   string     `json:"message"`
	Retryable bool       `json:"retryable"`
}

func newPanelState(snap panel.Snapshot) panelState {
	out := panelState{
		Site:         snap.Site.ID,
		Name:         snap.Site.Name,
		Status:       snap.Status,
		TabStatus:    tabs.StatusOf(snap),
		Loading:      snap.Loading,
		Paused:       snap.Paused,
		Input:        inputState{URL: snap.Input.URL, Mode: snap.Input.Mode, Page: snap.Input.Page},
		Result:       snap.Result,
		History:      snap.History,
		ImageIndex:   snap.ImageIndex,
		ItemsScraped: snap.Items,
		Runs:         snap.Runs,
		Failures:     snap.Failures,
	}
	if out.History == nil {
		out.History = []*models.Product{}
	}
	if snap.Failure != nil {
		out.Error = &errorState{
			Kind:      snap.Failure.Kind,
			Message:   snap.Failure.Message,
			Retryable: snap.Failure.Retryable(),
		}
	}
	if !snap.LastRun.IsZero() {
		lastRun := snap.LastRun
		out.LastRun = &lastRun
	}
	return out
}
