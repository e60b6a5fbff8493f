package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"ppiviz/internal/adapter"
	"ppiviz/internal/config"
	"ppiviz/internal/core/analysis"
	"ppiviz/internal/core/layout"
	"ppiviz/internal/handler"
	"ppiviz/internal/hub"
	"ppiviz/internal/metrics"
	"ppiviz/internal/repository/sqlite"
	"ppiviz/internal/resolver"
	"ppiviz/internal/service"
	"ppiviz/internal/watcher"
)

func main() {
	configPath := flag.String("config", "", "Config file path (default: search $PPIVIZ_CONFIG, ./ppiviz.yaml, XDG, /etc)")
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting ppiviz server...")

	cfg, path, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if path != "" {
		log.Printf("Config loaded: %s", path)
	} else {
		log.Println("No config file found, using defaults")
	}
	log.Printf("Config:\n%s", cfg.Summary())

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer repo.Close()
	log.Printf("Database opened: %s", cfg.Database.Path)

	res, err := resolver.Load(cfg.Tables.Genes, cfg.Tables.Proteins)
	if err != nil {
		log.Fatalf("Failed to load identifier tables: %v", err)
	}
	log.Printf("Identifier tables loaded: %d genes", res.Count())

	source, err := buildSource(cfg.String, repo, m)
	if err != nil {
		log.Fatalf("Failed to configure interaction source: %v", err)
	}
	log.Printf("Interaction source: %s", source.Name())

	eventBus := service.NewEventBus()

	sseHub := hub.New().WithObserver(m)
	hubDone := make(chan struct{})
	go sseHub.Run(hubDone)

	// Connect event bus to SSE hub
	eventChan := make(chan service.Event, 100)
	eventBus.Subscribe(eventChan)
	go func() {
		for event := range eventChan {
			sseHub.Broadcast(hub.Message{SessionID: event.SessionID, Event: event})
		}
	}()

	svc := service.NewPPIService(
		res,
		adapter.NewFetcher(source, cfg.String.EdgeThreshold()),
		analysis.New(cfg.Analysis.Options()).WithObserver(m),
		layout.New(cfg.Layout.Options()).WithObserver(m),
		repo,
		service.NewSessionStore().WithObserver(m),
		eventBus,
		service.Options{
			DefaultLayout: cfg.Layout.DefaultLayout(),
		},
	)

	bgCtx, bgCancel := context.WithCancel(context.Background())

	if cfg.Tables.Watch {
		w := watcher.New(res).
			WithDebounce(cfg.Tables.Debounce.Duration()).
			OnReload(svc.TablesReloaded)
		go func() {
			if err := w.Watch(bgCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("Table watcher stopped: %v", err)
			}
		}()
	}

	go housekeeping(bgCtx, cfg, svc, repo)

	mux := http.NewServeMux()
	handler.NewSessionHandler(svc, sseHub).Register(mux)
	handler.NewCatalogHandler(svc).Register(mux)
	mux.Handle("GET /metrics", m.Handler())

	finalHandler := handler.Chain(mux,
		handler.Logger,
		handler.Instrument(m),
		handler.CORS,
		handler.Recover,
	)

	// No WriteTimeout: the event stream stays open
	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           finalHandler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Server listening on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	bgCancel()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownGrace.Duration())
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	close(hubDone)

	log.Println("Server stopped")
}

func loadConfig(path string) (*config.Config, string, error) {
	if path != "" {
		return config.LoadFromPath(path)
	}
	return config.Load()
}

// buildSource registers every interaction source and picks the configured
// one, wrapped in the response cache when a TTL is set
func buildSource(cfg config.StringConfig, repo *sqlite.Repository, m *metrics.Metrics) (adapter.InteractionSource, error) {
	registry := adapter.NewRegistry()

	opts := append(cfg.StringOptions(), adapter.WithObserver(m))
	if err := registry.Register(adapter.NewStringClient(opts...)); err != nil {
		return nil, err
	}
	if cfg.DataDir != "" {
		if err := registry.Register(adapter.NewFileSource(cfg.DataDir)); err != nil {
			return nil, err
		}
	}

	source, err := registry.Get(cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("%w (available: %v)", err, registry.Names())
	}
	if cfg.CacheTTL > 0 {
		source = adapter.NewCachedSource(source, repo, cfg.Species, cfg.CacheTTL.Duration(), m)
	}
	return source, nil
}

// housekeeping closes idle sessions and purges expired cache rows
func housekeeping(ctx context.Context, cfg *config.Config, svc *service.PPIService, repo *sqlite.Repository) {
	ticker := time.NewTicker(cfg.Server.SweepInterval.Duration())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ttl := cfg.Server.SessionTTL.Duration(); ttl > 0 {
				svc.SweepSessions(ttl)
			}
			if ttl := cfg.String.CacheTTL.Duration(); ttl > 0 {
				n, err := repo.PurgeInteractions(ctx, time.Now().Add(-ttl))
				if err != nil {
					log.Printf("Cache purge failed: %v", err)
				} else if n > 0 {
					log.Printf("Purged %d expired cache entries", n)
				}
			}
		}
	}
}
