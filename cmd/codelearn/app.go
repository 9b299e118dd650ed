package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/justinas/alice"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	codelearn "github.com/Niavlys042/codelearn-journey-forge.github.io"
	"github.com/Niavlys042/codelearn-journey-forge.github.io/api"
	"github.com/Niavlys042/codelearn-journey-forge.github.io/internal/config"
	"github.com/Niavlys042/codelearn-journey-forge.github.io/internal/session"
)

// app holds the collaborators shared by every command.
type app struct {
	cfg         config.Config
	logger      zerolog.Logger
	sessionPath string
	store       *session.FileStore
	registry    *prometheus.Registry
	client      *codelearn.Client
	queries     *codelearn.QueryClient
	service     *api.Service
	out         io.Writer

	stopMetrics func(context.Context) error
}

type globalFlags struct {
	apiURL      string
	sessionFile string
	timeout     time.Duration
}

func newApp(ctx context.Context, flags globalFlags, out io.Writer) (*app, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("configuration load failed: %w", err)
	}
	if flags.apiURL != "" {
		cfg.API.URL = flags.apiURL
	}
	if flags.sessionFile != "" {
		cfg.Session.File = flags.sessionFile
	}
	if flags.timeout > 0 {
		cfg.API.Timeout = flags.timeout
	}

	logger := log.Logger
	if level, err := zerolog.ParseLevel(cfg.Observe.LogLevel); err == nil && os.Getenv("ENV") != "development" {
		logger = logger.Level(level)
	}

	sessionPath := cfg.Session.File
	if sessionPath == "" {
		sessionPath, err = session.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	store := session.NewFileStore(sessionPath)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	metrics := codelearn.NewMetricsCollectorWithRegistry(registry)

	opts := []codelearn.Option{
		codelearn.WithBaseURL(cfg.API.URL),
		codelearn.WithTimeout(cfg.API.Timeout),
		codelearn.WithCredentials(store),
		codelearn.WithLogger(logger),
		codelearn.WithMetricsCollector(metrics),
	}
	if cfg.Observe.TracingEnabled {
		opts = append(opts, codelearn.WithTracing())
	}

	client := codelearn.New(opts...)
	if !client.IsValid() {
		return nil, client.ValidationError()
	}

	queries := codelearn.NewQueryClient(
		codelearn.WithStaleTime(cfg.Cache.StaleTime),
		codelearn.WithGCTime(cfg.Cache.GCTime),
		codelearn.WithMaxEntries(cfg.Cache.MaxEntries),
		codelearn.WithQueryMetrics(metrics),
		codelearn.WithQueryLogger(logger),
	)

	a := &app{
		cfg:         cfg,
		logger:      logger,
		sessionPath: sessionPath,
		store:       store,
		registry:    registry,
		client:      client,
		queries:     queries,
		service: api.NewService(client, queries,
			api.WithNotifier(codelearn.NewLogNotifier(logger)),
			api.WithMessages(cfg.Messages.Messages()),
		),
		out:         out,
		stopMetrics: func(context.Context) error { return nil },
	}

	if cfg.Observe.MetricsEnabled {
		a.serveMetrics(cfg.Observe.MetricsAddr)
	}

	return a, nil
}

// serveMetrics exposes the registry for the lifetime of the command.
func (a *app) serveMetrics(addr string) {
	handler := alice.New(
		hlog.NewHandler(a.logger),
		hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
			hlog.FromRequest(r).Debug().
				Str("path", r.URL.Path).
				Int("status", status).
				Dur("duration", duration).
				Msg("metrics scrape")
		}),
	).Then(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))

	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		a.logger.Info().Str("addr", addr).Msg("serving metrics")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Warn().Err(err).Msg("metrics server stopped")
		}
	}()

	a.stopMetrics = server.Shutdown
}

// close waits for background refetches and stops the metrics server.
func (a *app) close() {
	a.queries.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.stopMetrics(ctx); err != nil {
		a.logger.Warn().Err(err).Msg("metrics server shutdown failed")
	}
}

// print writes v as YAML, keeping the field order of its JSON form.
func (a *app) print(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	blockStyle(&node)

	enc := yaml.NewEncoder(a.out)
	enc.SetIndent(2)
	defer func() { _ = enc.Close() }()
	return enc.Encode(&node)
}

// blockStyle drops the flow and quoting styles a node inherits from JSON.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}
