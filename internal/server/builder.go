package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"slidecast-go/internal/config"
	"slidecast-go/internal/events"
	"slidecast-go/internal/handlers/decks"
	"slidecast-go/internal/handlers/explain"
	mw "slidecast-go/internal/middleware"
	"slidecast-go/internal/stats"
	"slidecast-go/internal/storage"
)

// Dependencies holds the runtime services the HTTP engine is built from.
type Dependencies struct {
	Config      *config.Manager
	Upstream    explain.Generator
	Storage     storage.Backend
	BackendName string
	Usage       *stats.UsageStats
	Hub         *events.Hub
}

// BuildEngine constructs the gin engine: middleware chain, explain
// routes, deck routes, health and metrics.
func BuildEngine(deps Dependencies) *gin.Engine {
	cfg := deps.Config.Config()

	if !cfg.Security.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	_ = engine.SetTrustedProxies([]string{})

	engine.Use(mw.Recovery(), mw.RequestID(), mw.Metrics(), mw.CORS(), mw.RequestLogger())
	if cfg.RateLimit.RPS > 0 {
		engine.Use(mw.RateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
	}

	registerRoutes(engine, cfg, deps)
	return engine
}

func registerRoutes(engine *gin.Engine, cfg *config.Config, deps Dependencies) {
	root := engine.Group(cfg.Server.BasePath)

	root.GET("/healthz", healthHandler(deps.Storage, deps.BackendName))
	root.GET("/metrics", gin.WrapH(promhttp.Handler()))

	explainHandler := explain.New(deps.Config, deps.Upstream, deps.Usage, deps.Hub)
	deckHandler := decks.New(deps.Storage, deps.BackendName, deps.Hub)

	gen := root.Group("")
	if len(cfg.Security.APIKeys) > 0 {
		gen.Use(mw.APIKeyAuth(cfg.Security.APIKeys))
	}
	gen.POST("/v1/explain", explainHandler.Explain)
	gen.POST("/v1/explain/slides", explainHandler.ExplainSlides)
	gen.GET("/v1/explain/live", explainHandler.Live)
	gen.POST("/v1/decks", deckHandler.Save)
	gen.GET("/v1/decks", deckHandler.List)
	gen.GET("/v1/decks/:id", deckHandler.Get)
	gen.GET("/v1/decks/:id/html", deckHandler.ViewHTML)
	gen.GET("/v1/decks/:id/pdf", deckHandler.ExportPDF)

	mgmt := root.Group("", mw.ManagementAuth(config.ManagementKeyValidator(cfg)))
	mgmt.DELETE("/v1/decks/:id", deckHandler.Delete)
	mgmt.GET("/v1/usage", usageHandler(deps.Usage))
	mgmt.DELETE("/v1/usage", usageResetHandler(deps.Usage))
}
