// Package panel implements the per-site scrape workflow: input, one
// request at a time, result or failure, and a short history.
package panel

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aluiziolira/scrapedash/models"
	"github.com/aluiziolira/scrapedash/registry"
	"github.com/aluiziolira/scrapedash/view"
)

// HistoryLimit caps the number of products remembered per panel.
const HistoryLimit = 5

// Scraper performs one scrape call. *client.Client satisfies it.
type Scraper interface {
	Scrape(ctx context.Context, site *registry.Site, mode models.Mode, req models.ScrapeRequest) (*models.Result, error)
}

// Status is the position in the idle/loading/success/error machine.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Input is what the operator submits.
type Input struct {
	URL  string
	Mode models.Mode
	Page int
}

// Panel owns the state of one site's scrape workflow. All methods are
// safe for concurrent use.
type Panel struct {
	site    *registry.Site
	scraper Scraper

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	input     Input
	submitted bool
	status    Status
	loading   bool
	paused    bool
	closed    bool
	result    *models.Result
	failure   *Failure
	history   []*models.Product
	gallery   view.Gallery
	expanded  bool

	runs        int
	failures    int
	items       int
	lastRun     time.Time
	lastSuccess time.Time

	now func() time.Time
}

// New creates an idle panel for site.
func New(site *registry.Site, scraper Scraper) *Panel {
	ctx, cancel := context.WithCancel(context.Background())
	return &Panel{
		site:    site,
		scraper: scraper,
		ctx:     ctx,
		cancel:  cancel,
		input:   Input{Mode: models.ModeProduct, Page: 1},
		status:  StatusIdle,
		now:     time.Now,
	}
}

// Site returns the site the panel drives.
func (p *Panel) Site() *registry.Site {
	return p.site
}

// Submit validates in and, when valid, performs exactly one scrape call.
// It blocks until the call finishes. A nil return means success; a
// *Failure describes a validation, transport or server failure.
// ErrInFlight and ErrClosed leave the panel untouched.
func (p *Panel) Submit(ctx context.Context, in Input) error {
	in = normalizeInput(in)

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	if p.loading {
		p.mu.Unlock()
		return ErrInFlight
	}
	p.input = in
	p.submitted = true

	if f := p.precheck(in); f != nil {
		p.fail(f)
		p.mu.Unlock()
		return f
	}

	p.loading = true
	p.status = StatusLoading
	p.failure = nil
	p.result = nil
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.loading = false
		if p.status == StatusLoading {
			p.status = StatusIdle
		}
		p.mu.Unlock()
	}()

	reqCtx, cancel := context.WithCancel(p.ctx)
	defer cancel()
	if ctx != nil {
		stop := context.AfterFunc(ctx, cancel)
		defer stop()
	}

	req := models.ScrapeRequest{URL: in.URL}
	if in.Mode == models.ModeCategory {
		req.Page = in.Page
	}

	slog.Debug("panel submit",
		slog.String("site", p.site.ID),
		slog.String("mode", string(in.Mode)),
		slog.String("url", in.URL),
	)
	res, err := p.scraper.Scrape(reqCtx, p.site, in.Mode, req)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}

	p.runs++
	p.lastRun = p.now()
	if err != nil {
		f := classify(p.site, in.Mode, err)
		p.failures++
		p.fail(f)
		return f
	}

	p.result = res
	p.status = StatusSuccess
	p.items += res.ItemCount()
	p.lastSuccess = p.lastRun
	p.expanded = false
	p.gallery = view.NewGallery(0)
	if res.Product != nil {
		p.gallery = view.NewGallery(len(res.Product.Images))
		p.pushHistory(res.Product)
	}
	return nil
}

// Retry re-submits the last input.
func (p *Panel) Retry(ctx context.Context) error {
	p.mu.Lock()
	in, ok := p.input, p.submitted
	p.mu.Unlock()
	if !ok {
		return ErrNothingToRetry
	}
	return p.Submit(ctx, in)
}

// Clear returns a finished panel to idle. History and input are kept.
func (p *Panel) Clear() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	if p.loading {
		return ErrInFlight
	}
	p.status = StatusIdle
	p.result = nil
	p.failure = nil
	p.gallery = view.NewGallery(0)
	p.expanded = false
	return nil
}

// TogglePause flips the paused flag and returns the new value. A paused
// panel refuses submits; a running request is left alone.
func (p *Panel) TogglePause() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return p.paused, ErrClosed
	}
	p.paused = !p.paused
	return p.paused, nil
}

// NextImage advances the gallery.
func (p *Panel) NextImage() {
	p.mu.Lock()
	p.gallery = p.gallery.Next()
	p.mu.Unlock()
}

// PrevImage moves the gallery back.
func (p *Panel) PrevImage() {
	p.mu.Lock()
	p.gallery = p.gallery.Prev()
	p.mu.Unlock()
}

// SelectImage jumps the gallery to i.
func (p *Panel) SelectImage(i int) {
	p.mu.Lock()
	p.gallery = p.gallery.Select(i)
	p.mu.Unlock()
}

// ToggleOffers expands or collapses the offers list.
func (p *Panel) ToggleOffers() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.expanded = !p.expanded
	return p.expanded
}

// Close cancels any in-flight request and makes further actions fail with
// ErrClosed. The in-flight result, if any, is discarded.
func (p *Panel) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()
	p.cancel()
}

func (p *Panel) precheck(in Input) *Failure {
	if p.paused {
		return pausedFailure(p.site)
	}
	if in.Mode == models.ModeCategory && !p.site.SupportsCategory() {
		return unsupportedFailure(p.site, in.Mode)
	}
	if !p.site.ValidateURL(in.Mode, in.URL) {
		return validationFailure(p.site, in.Mode)
	}
	return nil
}

// fail records f. Callers hold p.mu.
func (p *Panel) fail(f *Failure) {
	p.failure = f
	p.result = nil
	p.status = StatusError
	p.gallery = view.NewGallery(0)
	p.expanded = false
}

// pushHistory prepends product, dropping the oldest past the limit.
// Callers hold p.mu.
func (p *Panel) pushHistory(product *models.Product) {
	next := make([]*models.Product, 0, HistoryLimit)
	next = append(next, product)
	for _, old := range p.history {
		if len(next) == HistoryLimit {
			break
		}
		next = append(next, old)
	}
	p.history = next
}

func normalizeInput(in Input) Input {
	in.URL = strings.TrimSpace(in.URL)
	if in.Mode != models.ModeCategory {
		in.Mode = models.ModeProduct
	}
	if in.Page < 1 {
		in.Page = 1
	}
	return in
}
