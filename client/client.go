// Package client talks to the remote scraping API. One Scrape call is one
// HTTP POST; the response envelope is decoded through the site's field map.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aluiziolira/scrapedash/config"
	"github.com/aluiziolira/scrapedash/models"
	"github.com/aluiziolira/scrapedash/registry"
	"github.com/go-resty/resty/v2"
)

// Client wraps a resty client bound to the API base URL.
type Client struct {
	baseURL string
	http    *resty.Client
	Metrics *Metrics

	now func() time.Time
}

// Option customises a Client.
type Option func(*Client)

// WithTransport replaces the HTTP transport, mainly for tests.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.http.SetTransport(rt)
	}
}

// WithMetrics sets the collectors used to record calls.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.Metrics = m
	}
}

// New builds a client from cfg.
func New(cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("client: nil config")
	}
	if strings.TrimSpace(cfg.APIBaseURL) == "" {
		return nil, fmt.Errorf("client: API base URL cannot be empty")
	}

	httpClient := resty.New().
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", cfg.UserAgent)
	if cfg.RequestTimeout > 0 {
		httpClient.SetTimeout(cfg.RequestTimeout)
	}
	instrument(httpClient)

	c := &Client{
		baseURL: strings.TrimRight(cfg.APIBaseURL, "/"),
		http:    httpClient,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Endpoint returns the absolute URL for site in mode.
func (c *Client) Endpoint(site *registry.Site, mode models.Mode) string {
	return c.baseURL + site.Path(mode)
}

// Scrape posts req to the site's endpoint for mode and decodes the result.
// Transport failures come back as ErrTimeout, ErrConnection or
// ErrCanceled; API-reported failures as ErrServer; anything undecodable
// as ErrBadResponse.
func (c *Client) Scrape(ctx context.Context, site *registry.Site, mode models.Mode, req models.ScrapeRequest) (*models.Result, error) {
	if site == nil {
		return nil, registry.ErrUnknownSite
	}
	path := site.Path(mode)
	if path == "" {
		return nil, fmt.Errorf("site %s has no %s endpoint", site.ID, mode)
	}
	if mode == models.ModeProduct {
		req.Page = 0
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	endpoint := c.Endpoint(site, mode)
	release := c.Metrics.TrackInFlight()
	start := time.Now()

	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(endpoint)
	release()

	result, err := c.handle(site, mode, req, res, err)
	elapsed := time.Since(start)

	if err != nil {
		label := ErrorTypeLabel(err)
		c.Metrics.ObserveRequest(site.ID, string(mode), "failure", elapsed)
		c.Metrics.IncError(label)
		slog.Error("scrape request failed",
			slog.String("site", site.ID),
			slog.String("mode", string(mode)),
			slog.String("category", label),
			slog.Duration("elapsed", elapsed),
			slog.Any("error", err),
		)
		return nil, err
	}

	c.Metrics.ObserveRequest(site.ID, string(mode), "success", elapsed)
	slog.Debug("scrape request finished",
		slog.String("site", site.ID),
		slog.String("mode", string(mode)),
		slog.Int("items", result.ItemCount()),
		slog.Duration("elapsed", elapsed),
	)
	return result, nil
}

func (c *Client) handle(site *registry.Site, mode models.Mode, req models.ScrapeRequest, res *resty.Response, err error) (*models.Result, error) {
	if err != nil {
		return nil, classifyTransportError(err)
	}

	status := res.StatusCode()
	var env models.Envelope
	if decodeErr := json.Unmarshal(res.Body(), &env); decodeErr != nil {
		if status >= http.StatusBadRequest {
			return nil, ErrServer{StatusCode: status}
		}
		return nil, ErrBadResponse{StatusCode: status, Err: fmt.Errorf("decode envelope: %w", decodeErr)}
	}

	if !env.Success {
		return nil, ErrServer{StatusCode: status, Message: strings.TrimSpace(env.Message)}
	}
	if status >= http.StatusBadRequest {
		return nil, ErrBadResponse{StatusCode: status, Err: fmt.Errorf("success envelope with status %d", status)}
	}

	now := c.now()
	switch mode {
	case models.ModeCategory:
		category, decodeErr := decodeCategory(site, env.Data, req.URL, req.Page, now)
		if decodeErr != nil {
			return nil, ErrBadResponse{StatusCode: status, Err: decodeErr}
		}
		return &models.Result{Mode: mode, Category: category}, nil
	default:
		product, decodeErr := decodeProduct(site, env.Data, req.URL, now)
		if decodeErr != nil {
			return nil, ErrBadResponse{StatusCode: status, Err: decodeErr}
		}
		return &models.Result{Mode: models.ModeProduct, Product: product}, nil
	}
}
