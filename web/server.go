// Package web serves the dashboard: server-rendered pages, form actions,
// a JSON view of each panel, the image proxy and history export.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/aluiziolira/scrapedash/dashboard"
	"github.com/aluiziolira/scrapedash/imageproxy"
	"github.com/aluiziolira/scrapedash/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed templates/*.html
var templateFS embed.FS

// Deps are the collaborators the handlers need.
type Deps struct {
	Sessions     *session.Store
	Images       *imageproxy.Proxy
	CookieName   string
	SecureCookie bool
	// Registry receives HTTP metrics; nil skips them.
	Registry *prometheus.Registry
}

// Server holds parsed templates and dependencies.
type Server struct {
	deps  Deps
	pages *template.Template
}

// New parses the templates and validates deps.
func New(d Deps) (*Server, error) {
	if d.Sessions == nil {
		return nil, fmt.Errorf("web: nil session store")
	}
	if d.Images == nil {
		return nil, fmt.Errorf("web: nil image proxy")
	}
	if d.CookieName == "" {
		return nil, fmt.Errorf("web: empty cookie name")
	}
	pages, err := template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Server{deps: d, pages: pages}, nil
}

// Handler returns the routed, instrumented handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.withSession(s.index))
	mux.HandleFunc("POST /sidebar/toggle", s.withSession(s.toggleSidebar))
	mux.HandleFunc("POST /section/{section}", s.withSession(s.setSection))

	mux.HandleFunc("POST /panels/{site}/submit", s.withSession(s.submit))
	mux.HandleFunc("POST /panels/{site}/retry", s.withSession(s.retry))
	mux.HandleFunc("POST /panels/{site}/clear", s.withSession(s.clear))
	mux.HandleFunc("POST /panels/{site}/pause", s.withSession(s.pause))
	mux.HandleFunc("POST /panels/{site}/expand", s.withSession(s.expand))
	mux.HandleFunc("POST /panels/{site}/gallery/{dir}", s.withSession(s.gallery))
	mux.HandleFunc("GET /api/panels/{site}", s.withSession(s.panelJSON))

	mux.HandleFunc("GET /images", s.image)
	mux.HandleFunc("GET /images/placeholder", s.placeholder)
	mux.HandleFunc("GET /export/{site}", s.withSession(s.export))

	mux.HandleFunc("POST /logout", s.logout)
	mux.HandleFunc("GET /health", s.health)

	var h http.Handler = mux
	if s.deps.Registry != nil {
		h = instrument(s.deps.Registry, h)
	}
	return Chain(h, RequestID, Recover, AccessLog)
}

func instrument(reg *prometheus.Registry, next http.Handler) http.Handler {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scrapedash_http_requests_total",
		Help: "HTTP requests served by the dashboard.",
	}, []string{"code", "method"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scrapedash_http_request_duration_seconds",
		Help:    "Dashboard request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"code", "method"})
	reg.MustRegister(requests, duration)
	return promhttp.InstrumentHandlerDuration(duration, promhttp.InstrumentHandlerCounter(requests, next))
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, d *dashboard.Dashboard)

// withSession resolves the operator's dashboard, issuing a cookie for a
// new session.
func (s *Server) withSession(h sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var id string
		if c, err := r.Cookie(s.deps.CookieName); err == nil {
			id = c.Value
		}
		newID, d, created := s.deps.Sessions.Acquire(id)
		if created {
			http.SetCookie(w, &http.Cookie{
				Name:     s.deps.CookieName,
				Value:    newID,
				Path:     "/",
				HttpOnly: true,
				Secure:   s.deps.SecureCookie,
				SameSite: http.SameSiteLaxMode,
			})
		}
		h(w, r, d)
	}
}

var templateFuncs = template.FuncMap{
	"when": func(t time.Time) string {
		if t.IsZero() {
			return "never"
		}
		return t.Local().Format("2006-01-02 15:04:05")
	},
	"upper": strings.ToUpper,
	"inc":   func(n int) int { return n + 1 },
	// scoped pairs a nested view with the site it belongs to.
	"scoped": func(site string, v any) scopedView {
		return scopedView{Site: site, View: v}
	},
	"seq": func(n int) []int {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out
	},
}

type scopedView struct {
	Site string
	View any
}
