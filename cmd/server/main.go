package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"slidecast-go/internal/config"
	"slidecast-go/internal/constants"
	"slidecast-go/internal/events"
	"slidecast-go/internal/logging"
	mw "slidecast-go/internal/middleware"
	tracing "slidecast-go/internal/monitoring/tracing"
	"slidecast-go/internal/oauth"
	srv "slidecast-go/internal/server"
	usagestats "slidecast-go/internal/stats"
	store "slidecast-go/internal/storage"
	upstream "slidecast-go/internal/upstream/gemini"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	debug := flag.Bool("debug", false, "Enable debug mode")
	flag.Parse()

	mgr, err := config.NewManager(*configPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}
	cfg := mgr.Config()
	if *debug {
		cfg.Security.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	config.SetManager(mgr)

	if err := logging.Setup(cfg); err != nil {
		log.WithError(err).Fatal("failed to configure logging")
	}

	traceShutdown, err := tracing.Init(context.Background())
	if err != nil {
		log.WithError(err).Warn("failed to initialize tracing")
	}
	if traceShutdown != nil {
		defer func() {
			if err := traceShutdown(context.Background()); err != nil {
				log.WithError(err).Warn("failed to shutdown tracing")
			}
		}()
	}

	log.Infof("starting slidecast (config: %s)", *configPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mgr.Watch(ctx)

	hub := events.NewHub()
	if cfg.Security.Debug {
		for _, topic := range []string{events.TopicConfigUpdated, events.TopicDeckSaved, events.TopicExplainFinished} {
			hub.Subscribe(topic, func(_ context.Context, evt events.Event) {
				log.WithField("topic", evt.Topic).Debugf("event: %v", evt.Payload)
			})
		}
	}
	mgr.OnReload(func(updated *config.Config) {
		hub.Publish(ctx, events.TopicConfigUpdated, updated.Server.Port, nil)
	})

	backend, backendName, err := store.BuildWithFallback(ctx, &cfg.Storage)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize storage")
	}
	defer backend.Close()
	log.WithField("backend", backendName).Info("storage ready")

	client := buildUpstreamClient(ctx, cfg)

	usageInterval := time.Duration(cfg.RateLimit.UsageResetIntervalHours) * time.Hour
	usage := usagestats.NewUsageStats(backend, usageInterval)
	if usageInterval > 0 {
		mw.SafeGo("usage-reset", func() { usage.StartPeriodicReset(ctx) })
	}

	engine := srv.BuildEngine(srv.Dependencies{
		Config:      mgr,
		Upstream:    client,
		Storage:     backend,
		BackendName: backendName,
		Usage:       usage,
		Hub:         hub,
	})

	httpSrv := &http.Server{Addr: ":" + cfg.Server.Port, Handler: engine}
	go func() {
		log.Infof("slidecast listening on :%s", cfg.Server.Port)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("http server: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutdown signal received")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), constants.ServerShutdownTimeout)
	defer cancelShutdown()
	_ = httpSrv.Shutdown(shutdownCtx)

	time.Sleep(constants.ServerGracefulWait)
	log.Info("server stopped")
}

// buildUpstreamClient wires the Gemini client with an OAuth token source
// when refresh credentials are configured; otherwise the API key header
// carries auth.
func buildUpstreamClient(ctx context.Context, cfg *config.Config) *upstream.Client {
	client := upstream.New(cfg)
	if oauth.Enabled(cfg.OAuth) {
		ts, err := oauth.TokenSource(ctx, cfg.OAuth)
		if err != nil {
			log.WithError(err).Warn("oauth token source unavailable, falling back to api key auth")
			return client
		}
		log.Info("upstream auth: oauth token source")
		return client.WithTokenSource(ts)
	}
	if cfg.Upstream.APIKey == "" {
		log.Warn("no upstream credentials configured; explain requests will fail")
	}
	return client
}
