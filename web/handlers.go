package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/aluiziolira/scrapedash/dashboard"
	"github.com/aluiziolira/scrapedash/export"
	"github.com/aluiziolira/scrapedash/models"
	"github.com/aluiziolira/scrapedash/panel"
	"github.com/aluiziolira/scrapedash/registry"
	"github.com/aluiziolira/scrapedash/tabs"
	"github.com/aluiziolira/scrapedash/view"
)

func (s *Server) index(w http.ResponseWriter, r *http.Request, d *dashboard.Dashboard) {
	q := r.URL.Query()
	shell := d.Shell()

	if q.Has("section") {
		if err := d.SetSection(q.Get("section")); err != nil {
			s.fail(w, r, http.StatusNotFound, "unknown_section", "unknown section")
			return
		}
	}
	if q.Has("site") {
		if err := shell.Select(q.Get("site")); err != nil {
			s.fail(w, r, http.StatusNotFound, "unknown_site", "unknown site")
			return
		}
	}
	if q.Has("q") {
		shell.SetSearch(q.Get("q"))
	}
	if q.Has("status") {
		f, err := tabs.ParseFilter(q.Get("status"))
		if err != nil {
			s.fail(w, r, http.StatusBadRequest, "bad_filter", "unknown status filter")
			return
		}
		shell.SetFilter(f)
	}
	if q.Has("img") {
		if i, err := strconv.Atoi(q.Get("img")); err == nil {
			shell.Selected().SelectImage(i)
		}
	}

	s.render(w, r, http.StatusOK, buildPage(r, d))
}

func (s *Server) toggleSidebar(w http.ResponseWriter, r *http.Request, d *dashboard.Dashboard) {
	collapsed := d.ToggleSidebar()
	if wantsJSON(r) {
		WriteJSON(w, http.StatusOK, map[string]bool{"collapsed": collapsed})
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) setSection(w http.ResponseWriter, r *http.Request, d *dashboard.Dashboard) {
	if err := d.SetSection(r.PathValue("section")); err != nil {
		s.fail(w, r, http.StatusNotFound, "unknown_section", "unknown section")
		return
	}
	if wantsJSON(r) {
		WriteJSON(w, http.StatusOK, map[string]string{"section": string(d.Section())})
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type submitBody struct {
	URL  string `json:"url"`
	Mode string `json:"mode"`
	Page int    `json:"page"`
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request, d *dashboard.Dashboard) {
	p, ok := s.panelFor(w, r, d)
	if !ok {
		return
	}

	var body submitBody
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&body); err != nil {
			s.fail(w, r, http.StatusBadRequest, "bad_request", "invalid JSON body")
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			s.fail(w, r, http.StatusBadRequest, "bad_request", "invalid form")
			return
		}
		body.URL = r.PostFormValue("url")
		body.Mode = r.PostFormValue("mode")
		body.Page, _ = strconv.Atoi(r.PostFormValue("page"))
	}

	_ = d.Shell().Select(p.Site().ID)
	// Navigating away must not abandon the scrape; closing the session does.
	ctx := context.WithoutCancel(r.Context())
	err := p.Submit(ctx, panel.Input{
		URL:  body.URL,
		Mode: models.ParseMode(body.Mode),
		Page: body.Page,
	})
	s.finish(w, r, p, err)
}

func (s *Server) retry(w http.ResponseWriter, r *http.Request, d *dashboard.Dashboard) {
	p, ok := s.panelFor(w, r, d)
	if !ok {
		return
	}
	s.finish(w, r, p, p.Retry(context.WithoutCancel(r.Context())))
}

func (s *Server) clear(w http.ResponseWriter, r *http.Request, d *dashboard.Dashboard) {
	p, ok := s.panelFor(w, r, d)
	if !ok {
		return
	}
	s.finish(w, r, p, p.Clear())
}

func (s *Server) pause(w http.ResponseWriter, r *http.Request, d *dashboard.Dashboard) {
	p, ok := s.panelFor(w, r, d)
	if !ok {
		return
	}
	_, err := p.TogglePause()
	s.finish(w, r, p, err)
}

func (s *Server) expand(w http.ResponseWriter, r *http.Request, d *dashboard.Dashboard) {
	p, ok := s.panelFor(w, r, d)
	if !ok {
		return
	}
	p.ToggleOffers()
	s.finish(w, r, p, nil)
}

func (s *Server) gallery(w http.ResponseWriter, r *http.Request, d *dashboard.Dashboard) {
	p, ok := s.panelFor(w, r, d)
	if !ok {
		return
	}
	switch r.PathValue("dir") {
	case "next":
		p.NextImage()
	case "prev":
		p.PrevImage()
	default:
		s.fail(w, r, http.StatusNotFound, "not_found", "unknown gallery direction")
		return
	}
	s.finish(w, r, p, nil)
}

func (s *Server) panelJSON(w http.ResponseWriter, r *http.Request, d *dashboard.Dashboard) {
	p, ok := s.panelFor(w, r, d)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, newPanelState(p.Snapshot()))
}

// imageCSP keeps proxied and generated images inert when opened directly.
const imageCSP = "default-src 'none'; style-src 'unsafe-inline'; sandbox"

func (s *Server) image(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	site, _ := registry.Lookup(q.Get("site"))
	label := q.Get("label")
	if label == "" && site != nil {
		label = site.Name
	}

	img := s.deps.Images.FetchOrPlaceholder(site, q.Get("u"), label)
	w.Header().Set("Content-Type", img.ContentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Content-Security-Policy", imageCSP)
	if img.Fallback {
		w.Header().Set("X-Image-Fallback", "placeholder")
		w.Header().Set("Cache-Control", "no-store")
	} else {
		w.Header().Set("Cache-Control", "public, max-age=3600")
	}
	_, _ = w.Write(img.Body)
}

func (s *Server) placeholder(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	width := boundedInt(q.Get("w"), 400)
	height := boundedInt(q.Get("h"), 400)
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Content-Security-Policy", imageCSP)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(view.Placeholder(q.Get("label"), width, height))
}

func (s *Server) export(w http.ResponseWriter, r *http.Request, d *dashboard.Dashboard) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, "bad_format", "format must be csv or json")
		return
	}

	id := strings.ToLower(r.PathValue("site"))
	var panels []*panel.Panel
	if id == "all" {
		for _, tab := range d.Shell().Tabs() {
			p, _ := d.Shell().Panel(tab.ID)
			panels = append(panels, p)
		}
	} else {
		p, err := d.Shell().Panel(id)
		if err != nil {
			s.fail(w, r, http.StatusNotFound, "unknown_site", "unknown site")
			return
		}
		panels = append(panels, p)
	}

	var products []*models.Product
	for _, p := range panels {
		products = append(products, exportable(p.Snapshot())...)
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-history.%s"`, id, format.Extension()))
	st, err := export.Encode(w, format, products)
	if err != nil {
		slog.Error("export failed", slog.String("site", id), slog.Any("error", err))
		return
	}
	slog.Debug("export written",
		slog.String("site", id),
		slog.String("format", string(format)),
		slog.Int("written", st.Written),
		slog.Int("duplicates", st.Duplicates),
		slog.Int("invalid", st.Invalid),
	)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(s.deps.CookieName); err == nil {
		s.deps.Sessions.Remove(c.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.deps.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.deps.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	if wantsJSON(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.deps.Sessions.Len(),
	})
}

func (s *Server) panelFor(w http.ResponseWriter, r *http.Request, d *dashboard.Dashboard) (*panel.Panel, bool) {
	p, err := d.Shell().Panel(r.PathValue("site"))
	if err != nil {
		s.fail(w, r, http.StatusNotFound, "unknown_site", "unknown site")
		return nil, false
	}
	return p, true
}

// finish answers a panel action: JSON clients get the panel state and a
// status reflecting err, browsers are sent back to the panel.
func (s *Server) finish(w http.ResponseWriter, r *http.Request, p *panel.Panel, err error) {
	if !wantsJSON(r) {
		target := "/?" + url.Values{
			"section": {string(dashboard.SectionScrapers)},
			"site":    {p.Site().ID},
		}.Encode()
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}

	var f *panel.Failure
	switch {
	case err == nil:
		WriteJSON(w, http.StatusOK, newPanelState(p.Snapshot()))
	case errors.As(err, &f) && f.Kind == panel.KindValidation:
		WriteJSON(w, http.StatusUnprocessableEntity, newPanelState(p.Snapshot()))
	case errors.As(err, &f):
		WriteJSON(w, http.StatusBadGateway, newPanelState(p.Snapshot()))
	case errors.Is(err, panel.ErrInFlight):
		WriteError(w, r, http.StatusConflict, "in_flight", "a request is already running for this panel")
	case errors.Is(err, panel.ErrNothingToRetry):
		WriteError(w, r, http.StatusConflict, "nothing_to_retry", "nothing has been submitted yet")
	case errors.Is(err, panel.ErrClosed):
		WriteError(w, r, http.StatusGone, "closed", "session closed")
	default:
		WriteError(w, r, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	if wantsJSON(r) || strings.HasPrefix(r.URL.Path, "/api/") {
		WriteError(w, r, status, code, message)
		return
	}
	http.Error(w, message, status)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, data *pageData) {
	var buf bytes.Buffer
	if err := s.pages.ExecuteTemplate(&buf, "page", data); err != nil {
		slog.Error("render page",
			slog.String("request_id", RequestIDFrom(r.Context())),
			slog.Any("error", err),
		)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func exportable(snap panel.Snapshot) []*models.Product {
	products := append([]*models.Product(nil), snap.History...)
	if c := snap.Category(); c != nil {
		products = append(products, c.Products...)
	}
	return products
}

func boundedInt(raw string, def int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 16 || n > 2000 {
		return def
	}
	return n
}
