// Package imageproxy fetches product images for the detail view. Hosts are
// restricted per site, bytes are cached, and every failure resolves to a
// generated placeholder rather than a retry.
package imageproxy

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aluiziolira/scrapedash/config"
	"github.com/aluiziolira/scrapedash/registry"
	"github.com/aluiziolira/scrapedash/view"
	"github.com/gocolly/colly/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

var (
	// ErrHostNotAllowed is returned for URLs outside the site's image hosts.
	ErrHostNotAllowed = errors.New("imageproxy: host not allowed")
	// ErrNotImage is returned when the upstream answers with another type.
	ErrNotImage = errors.New("imageproxy: not an image")
	// ErrTooLarge is returned when the body reaches the size limit.
	ErrTooLarge = errors.New("imageproxy: image too large")
)

// Image is a fetched image body.
type Image struct {
	Body        []byte
	ContentType string
	Fallback    bool
}

// Proxy fetches and caches images.
type Proxy struct {
	collector *colly.Collector
	cache     *expirable.LRU[string, Image]
	failed    *expirable.LRU[string, error]
	maxBytes  int
	Metrics   *Metrics
}

// New builds a proxy from cfg. A nil metrics disables instrumentation.
func New(cfg *config.Config, metrics *Metrics) (*Proxy, error) {
	collector := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
	)
	collector.IgnoreRobotsTxt = true
	collector.MaxBodySize = cfg.ImageMaxBytes
	collector.SetRequestTimeout(cfg.ImageTimeout)
	collector.SetRedirectHandler(checkRedirect)

	if err := collector.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: cfg.ImageParallelism,
	}); err != nil {
		return nil, fmt.Errorf("configure image limits: %w", err)
	}

	p := &Proxy{
		collector: collector,
		cache:     expirable.NewLRU[string, Image](cfg.ImageCacheSize, nil, cfg.ImageCacheTTL),
		failed:    expirable.NewLRU[string, error](cfg.ImageCacheSize, nil, cfg.ImageCacheTTL),
		maxBytes:  cfg.ImageMaxBytes,
		Metrics:   metrics,
	}
	p.configureHandlers()
	return p, nil
}

// maxRedirects bounds the hops followed for one image.
const maxRedirects = 5

// checkRedirect follows a redirect only when some site that owns the
// original image host also allows the target host.
func checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("%w: stopped after %d redirects", ErrHostNotAllowed, len(via))
	}
	origin := via[0].URL.String()
	target := req.URL.String()
	for _, site := range registry.All() {
		if site.ImageHostAllowed(origin) && site.ImageHostAllowed(target) {
			return nil
		}
	}
	return fmt.Errorf("%w: redirect to %s", ErrHostNotAllowed, req.URL.Host)
}

// WithTransport swaps the collector transport, mainly for tests.
func (p *Proxy) WithTransport(rt http.RoundTripper) {
	p.collector.WithTransport(rt)
}

func (p *Proxy) configureHandlers() {
	p.collector.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "image/avif,image/webp,image/*,*/*;q=0.8")
		r.Ctx.Put("start", time.Now())
	})
	p.collector.OnResponse(func(r *colly.Response) {
		r.Ctx.Put("body", r.Body)
		r.Ctx.Put("type", r.Headers.Get("Content-Type"))
		if start, ok := r.Request.Ctx.GetAny("start").(time.Time); ok {
			p.Metrics.observe(time.Since(start))
		}
	})
	p.collector.OnError(func(r *colly.Response, err error) {
		statusCode := 0
		if r != nil {
			statusCode = r.StatusCode
		}
		url := ""
		if r != nil && r.Request != nil && r.Request.URL != nil {
			url = r.Request.URL.String()
		}
		slog.Debug("image fetch error",
			slog.String("url", url),
			slog.Int("status", statusCode),
			slog.Any("error", err),
		)
	})
}

// Fetch returns the image at rawURL for site, from cache when possible.
// Failures are remembered for the cache TTL so a broken image is not
// fetched again on every render.
func (p *Proxy) Fetch(site *registry.Site, rawURL string) (Image, error) {
	rawURL = strings.TrimSpace(rawURL)
	if site == nil || !site.ImageHostAllowed(rawURL) {
		p.Metrics.fallback("host")
		return Image{}, ErrHostNotAllowed
	}
	if img, ok := p.cache.Get(rawURL); ok {
		p.Metrics.hit()
		return img, nil
	}
	if err, ok := p.failed.Get(rawURL); ok {
		p.Metrics.hit()
		return Image{}, err
	}
	p.Metrics.miss()

	img, err := p.fetch(rawURL)
	if err != nil {
		p.failed.Add(rawURL, err)
		p.Metrics.fallback(reason(err))
		return Image{}, err
	}
	p.cache.Add(rawURL, img)
	return img, nil
}

// FetchOrPlaceholder is Fetch with the placeholder substituted on failure.
func (p *Proxy) FetchOrPlaceholder(site *registry.Site, rawURL, label string) Image {
	img, err := p.Fetch(site, rawURL)
	if err != nil {
		return Placeholder(label)
	}
	return img
}

// Placeholder returns the generated fallback image.
func Placeholder(label string) Image {
	return Image{
		Body:        view.Placeholder(label, 400, 400),
		ContentType: "image/svg+xml",
		Fallback:    true,
	}
}

func (p *Proxy) fetch(rawURL string) (Image, error) {
	ctx := colly.NewContext()
	if err := p.collector.Request(http.MethodGet, rawURL, nil, ctx, nil); err != nil {
		return Image{}, fmt.Errorf("fetch image: %w", err)
	}

	body, _ := ctx.GetAny("body").([]byte)
	contentType := ctx.Get("type")
	mediaType := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	if !strings.HasPrefix(mediaType, "image/") || mediaType == "image/svg+xml" {
		return Image{}, fmt.Errorf("%w: %q", ErrNotImage, contentType)
	}
	if len(body) == 0 {
		return Image{}, fmt.Errorf("%w: empty body", ErrNotImage)
	}
	if len(body) >= p.maxBytes {
		return Image{}, ErrTooLarge
	}
	return Image{Body: body, ContentType: contentType}, nil
}

func reason(err error) string {
	switch {
	case errors.Is(err, ErrHostNotAllowed):
		return "host"
	case errors.Is(err, ErrNotImage):
		return "type"
	case errors.Is(err, ErrTooLarge):
		return "size"
	default:
		return "fetch"
	}
}
