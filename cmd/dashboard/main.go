package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aluiziolira/scrapedash/client"
	"github.com/aluiziolira/scrapedash/config"
	"github.com/aluiziolira/scrapedash/dashboard"
	"github.com/aluiziolira/scrapedash/imageproxy"
	"github.com/aluiziolira/scrapedash/registry"
	"github.com/aluiziolira/scrapedash/session"
	"github.com/aluiziolira/scrapedash/web"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"
)

const shutdownTimeout = 5 * time.Second

func main() {
	configPath := flag.String("config", "", "Optional YAML config file")
	listSites := flag.Bool("list-sites", false, "Print the supported marketplaces and exit")
	verbose := flag.Bool("v", false, "Enable verbose logging")
	addr := flag.String("addr", "", "Dashboard listen address (overrides config)")
	metricsAddr := flag.String("metrics-addr", "", "Prometheus metrics listen address, e.g. :9090")
	apiBase := flag.String("api", "", "Scraping API base URL")
	timeout := flag.Duration("timeout", 0, "Per-request timeout for the scraping API (0 waits indefinitely)")
	logFile := flag.String("log-file", "", "Also write logs to this rotated file")
	flag.Parse()

	if *listSites {
		printSites(os.Stdout)
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "v":
			cfg.Verbose = *verbose
		case "addr":
			cfg.ListenAddr = *addr
		case "metrics-addr":
			cfg.MetricsAddr = *metricsAddr
		case "api":
			cfg.APIBaseURL = *apiBase
		case "timeout":
			cfg.RequestTimeout = *timeout
		case "log-file":
			cfg.LogFile = *logFile
		}
	})

	logger, level, closeLog := newLogger(cfg.Verbose, cfg.LogFile)
	defer closeLog()
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		slog.Error("dashboard stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

// loadConfig layers defaults, the optional file and the environment.
func loadConfig(path string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if path != "" {
		if err := config.LoadFile(cfg, path); err != nil {
			return nil, err
		}
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(cfg *config.Config) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	api, err := client.New(cfg, client.WithMetrics(client.NewMetrics(reg)))
	if err != nil {
		return fmt.Errorf("initialising API client: %w", err)
	}
	images, err := imageproxy.New(cfg, imageproxy.NewMetrics(reg))
	if err != nil {
		return fmt.Errorf("initialising image proxy: %w", err)
	}

	sites := registry.All()
	sessions, err := session.NewStore(cfg.MaxSessions, func() *dashboard.Dashboard {
		return dashboard.New(sites, api)
	}, session.NewMetrics(reg))
	if err != nil {
		return fmt.Errorf("initialising sessions: %w", err)
	}
	defer sessions.Close()

	srv, err := web.New(web.Deps{
		Sessions:     sessions,
		Images:       images,
		CookieName:   cfg.SessionCookie,
		SecureCookie: cfg.SecureCookie,
		Registry:     reg,
	})
	if err != nil {
		return fmt.Errorf("initialising web server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	servers := []*http.Server{{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}}
	if cfg.MetricsAddr != "" {
		servers = append(servers, &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
			ReadHeaderTimeout: 10 * time.Second,
		})
		slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
	}

	slog.Info("starting dashboard",
		slog.String("addr", cfg.ListenAddr),
		slog.String("api", cfg.APIBaseURL),
		slog.Int("sites", len(sites)),
		slog.Int("max_sessions", cfg.MaxSessions),
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, s := range servers {
		g.Go(func() error {
			if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("listen %s: %w", s.Addr, err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutdown signal received, draining connections")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		var errs []error
		for _, s := range servers {
			if err := s.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("shutdown %s: %w", s.Addr, err))
			}
		}
		return errors.Join(errs...)
	})
	return g.Wait()
}

func printSites(w io.Writer) {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"ID", "Name", "Product endpoint", "Category endpoint", "Image hosts"})
	for _, s := range registry.All() {
		category := s.CategoryPath
		if category == "" {
			category = "-"
		}
		t.AppendRow(table.Row{s.ID, s.Name, s.ProductPath, category, len(s.ImageHosts)})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d sites", len(registry.All()))})
	t.Render()
}

func newLogger(verbose bool, logFile string) (*slog.Logger, *slog.LevelVar, func()) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}
	opts := &slog.HandlerOptions{Level: level}

	if logFile != "" {
		rotator := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    5,
			MaxBackups: 3,
			MaxAge:     30,
			Compress:   true,
		}
		handler := slog.NewJSONHandler(io.MultiWriter(os.Stdout, rotator), opts)
		return slog.New(handler), level, func() { _ = rotator.Close() }
	}

	var handler slog.Handler
	if isTerminal(os.Stdout) {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(handler), level, func() {}
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
