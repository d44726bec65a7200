package api

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	chat_module "github.com/ethanbaker/ytchat/internal/api/modules/chat"
	health_module "github.com/ethanbaker/ytchat/internal/api/modules/health"
	"github.com/ethanbaker/ytchat/internal/llm"
	"github.com/ethanbaker/ytchat/internal/orchestrator"
	"github.com/ethanbaker/ytchat/internal/session"
	"github.com/ethanbaker/ytchat/internal/transcript"
	"github.com/ethanbaker/ytchat/pkg/sdk"
	"github.com/ethanbaker/ytchat/pkg/utils"
)

//go:embed web/index.html
var indexHTML []byte

// Start wires up the service and runs the HTTP server. It returns only on
// startup failure (e.g. the port is already bound).
func Start(cfg *utils.Config, log *logrus.Logger) error {
	// Initialized configuration settings
	address := cfg.GetWithDefault("SERVER_ADDRESS", "0.0.0.0")
	port := cfg.GetWithDefault("SERVER_PORT", "8501")

	// Transcript provider, with the on-disk cache unless disabled
	var providerOpts []transcript.Option
	if cfg.GetBoolWithDefault("TRANSCRIPT_CACHE", true) {
		dir := cfg.GetWithDefault("TRANSCRIPT_DIR", "transcripts")
		providerOpts = append(providerOpts, transcript.WithCache(transcript.NewCache(dir)))
	}
	provider := transcript.NewClient(log, providerOpts...)

	// Prompt templates and the hosted model client
	prompts, err := llm.LoadPrompts(cfg)
	if err != nil {
		return fmt.Errorf("failed to load prompts: %w", err)
	}
	completer := llm.New(cfg, log)

	// Orchestrator with optional video metadata enrichment
	timeout := time.Duration(cfg.GetIntWithDefault("REQUEST_TIMEOUT_SEC", 60)) * time.Second
	orchOpts := []orchestrator.Option{orchestrator.WithTimeout(timeout)}
	if key := cfg.Get("YOUTUBE_API_KEY"); key != "" {
		meta, err := transcript.NewMetadataClient(context.Background(), key, log)
		if err != nil {
			log.WithError(err).Warn("video metadata disabled")
		} else {
			orchOpts = append(orchOpts, orchestrator.WithMetadata(meta))
		}
	}
	orch := orchestrator.New(provider, completer, prompts, log, orchOpts...)

	// Session store with idle eviction
	store := session.NewStore()
	ttl := time.Duration(cfg.GetIntWithDefault("SESSION_TTL_MINUTES", 60)) * time.Minute
	janitor, err := session.NewJanitor(store, ttl, 5*time.Minute, log)
	if err != nil {
		return fmt.Errorf("failed to create session janitor: %w", err)
	}
	janitor.Start()
	defer janitor.Stop()

	// Add app level settings/routes
	if !cfg.GetBoolWithDefault("GIN_DEBUG", false) {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.Default()
	engine.SetTrustedProxies(nil)

	// Add CORS using gin-contrib/cors (https://github.com/gin-contrib/cors for documentation)
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(cfg.GetWithDefault("CORS_ALLOWED_ORIGINS", "*"), ","),
		AllowMethods:     []string{"OPTIONS", "GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(sdk.NewErrorResponse(http.StatusNotFound, "Route not found", nil).AsGinResponse())
	})

	// Dashboard page
	engine.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
	})

	// Base group '/api' for all API routes
	baseGroup := engine.Group("/api")

	health_module.RegisterRoutes(baseGroup)
	chat_module.RegisterRoutes(baseGroup, chat_module.NewController(orch, store, log))

	// Then after performing initial setup, start the server
	addr := address + ":" + port
	log.WithField("addr", addr).Info("starting server")
	if err := engine.Run(addr); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
