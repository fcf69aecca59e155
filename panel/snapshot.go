package panel

import (
	"time"

	"github.com/aluiziolira/scrapedash/models"
	"github.com/aluiziolira/scrapedash/registry"
)

// Snapshot is a point-in-time copy of a panel for rendering. Result and
// history entries are shared read-only; they are never mutated after a
// fetch completes.
type Snapshot struct {
	Site    *registry.Site
	Input   Input
	Status  Status
	Loading bool
	Paused  bool
	Closed  bool

	Result  *models.Result
	Failure *Failure
	History []*models.Product

	ImageIndex     int
	OffersExpanded bool

	Runs        int
	Failures    int
	Items       int
	LastRun     time.Time
	LastSuccess time.Time
}

// Snapshot copies the current state.
func (p *Panel) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	history := make([]*models.Product, len(p.history))
	copy(history, p.history)

	var failure *Failure
	if p.failure != nil {
		f := *p.failure
		failure = &f
	}

	return Snapshot{
		Site:           p.site,
		Input:          p.input,
		Status:         p.status,
		Loading:        p.loading,
		Paused:         p.paused,
		Closed:         p.closed,
		Result:         p.result,
		Failure:        failure,
		History:        history,
		ImageIndex:     p.gallery.Index,
		OffersExpanded: p.expanded,
		Runs:           p.runs,
		Failures:       p.failures,
		Items:          p.items,
		LastRun:        p.lastRun,
		LastSuccess:    p.lastSuccess,
	}
}

// Product returns the fetched product, if the last result was one.
func (s Snapshot) Product() *models.Product {
	if s.Result == nil {
		return nil
	}
	return s.Result.Product
}

// Category returns the fetched category page, if any.
func (s Snapshot) Category() *models.Category {
	if s.Result == nil {
		return nil
	}
	return s.Result.Category
}
