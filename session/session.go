// Package session keeps one dashboard per operator, keyed by a random
// cookie ID, in a bounded LRU. Evicted or removed sessions are closed,
// which cancels their in-flight scrapes.
package session

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/aluiziolira/scrapedash/dashboard"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
)

// Factory builds a fresh dashboard for a new session.
type Factory func() *dashboard.Dashboard

// Store is a bounded set of live sessions.
type Store struct {
	mu      sync.Mutex
	cache   *lru.Cache[string, *dashboard.Dashboard]
	factory Factory
	metrics *Metrics
}

// NewStore creates a store holding at most size sessions.
func NewStore(size int, factory Factory, metrics *Metrics) (*Store, error) {
	if factory == nil {
		return nil, fmt.Errorf("session: nil factory")
	}
	s := &Store{factory: factory, metrics: metrics}
	cache, err := lru.NewWithEvict[string, *dashboard.Dashboard](size, s.onEvict)
	if err != nil {
		return nil, fmt.Errorf("session cache: %w", err)
	}
	s.cache = cache
	return s, nil
}

func (s *Store) onEvict(id string, d *dashboard.Dashboard) {
	d.Close()
	s.metrics.closed()
	slog.Debug("session closed", slog.String("session", id))
}

// Get returns the dashboard for id, refreshing its recency.
func (s *Store) Get(id string) (*dashboard.Dashboard, bool) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, false
	}
	return s.cache.Get(id)
}

// Acquire returns the session for id, creating a new one under a fresh ID
// when id is unknown. created reports whether the caller must hand out
// the new ID.
func (s *Store) Acquire(id string) (string, *dashboard.Dashboard, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d, ok := s.Get(id); ok {
		return id, d, false
	}
	newID := uuid.NewString()
	d := s.factory()
	s.cache.Add(newID, d)
	s.metrics.created()
	slog.Debug("session created", slog.String("session", newID))
	return newID, d, true
}

// Remove closes and drops the session for id.
func (s *Store) Remove(id string) bool {
	return s.cache.Remove(id)
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	return s.cache.Len()
}

// Close drops every session.
func (s *Store) Close() {
	s.cache.Purge()
}

// Metrics tracks session churn.
type Metrics struct {
	Active  prometheus.Gauge
	Created prometheus.Counter
	Closed  prometheus.Counter
}

// NewMetrics registers the session collectors on registry.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		Active: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scrapedash_sessions_active",
			Help: "Operator sessions currently held.",
		}),
		Created: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scrapedash_sessions_created_total",
			Help: "Operator sessions created.",
		}),
		Closed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scrapedash_sessions_closed_total",
			Help: "Operator sessions closed.",
		}),
	}
	if registry != nil {
		registry.MustRegister(m.Active, m.Created, m.Closed)
	}
	return m
}

func (m *Metrics) created() {
	if m == nil {
		return
	}
	m.Created.Inc()
	m.Active.Inc()
}

func (m *Metrics) closed() {
	if m == nil {
		return
	}
	m.Closed.Inc()
	m.Active.Dec()
}
