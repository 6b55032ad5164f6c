package http

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	echoMid "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/promptdeck/promptdeck/internal/billing"
	"github.com/promptdeck/promptdeck/internal/config"
	"github.com/promptdeck/promptdeck/internal/http/middleware"
	"github.com/promptdeck/promptdeck/internal/logger"
	"github.com/promptdeck/promptdeck/internal/metrics"
	"github.com/promptdeck/promptdeck/internal/repository"
	"github.com/promptdeck/promptdeck/internal/service/membership"
)

type Server struct{ e *echo.Echo }

func NewServer(cfg config.Config, mysqlDB, clickhouseDB *sqlx.DB, rds *redis.Client) *Server {
	// repos (MySQL)
	customersRepo := repository.NewCustomersRepository(mysqlDB)
	promptsRepo := repository.NewPromptsRepository(mysqlDB)
	outboxRepo := repository.NewOutboxRepository(mysqlDB)

	// repos (ClickHouse)
	auditRepo := repository.NewBillingEventsRepository(clickhouseDB)

	// services
	membersSvc := membership.New(customersRepo, rds, cfg.Membership.CacheTTL, logger.L())

	verifier := billing.NewVerifier(cfg.Stripe.WebhookSecret)
	fetcher := billing.NewStripeFetcher(cfg.Stripe.APIKey)
	publisher := billing.NewOutboxPublisher(outboxRepo)
	reconciler := billing.NewReconciler(customersRepo, fetcher, publisher, membersSvc, logger.L())
	router := billing.NewRouter(reconciler, logger.L())

	// echo
	e := echo.New()
	e.HideBanner = true
	e.Use(echoMid.Recover(), echoMid.Logger())

	metrics.MustRegister(prometheus.DefaultRegisterer)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// health
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	// webhook endpoint: signature verification is the auth, no JWT here
	e.POST("/v1/stripe/webhooks", stripeWebhookHandler(verifier, router, auditRepo))

	// middlewares
	authMW := middleware.JWTMiddleware(cfg.Auth.JWTSecret)
	rlMW := middleware.RateLimitMiddleware(middleware.RateLimitConfig{
		Redis:          rds,
		DefaultRPS:     cfg.RateLimit.RPS,
		KeyPrefix:      "rl:user:",
		Window:         time.Second,
		RetryAfterHint: true,
	})

	// routes
	v1 := e.Group("/v1", authMW, rlMW)
	v1.GET("/membership", membershipHandler(membersSvc))
	v1.GET("/prompts", listPromptsHandler(promptsRepo))
	v1.POST("/prompts", createPromptHandler(promptsRepo, membersSvc))
	v1.PUT("/prompts/:id", updatePromptHandler(promptsRepo))
	v1.DELETE("/prompts/:id", deletePromptHandler(promptsRepo))
	v1.GET("/billing/events", listBillingEventsHandler(auditRepo))

	return &Server{e: e}
}

func (s *Server) Start(addr string) error {
	log.Printf("http: listening on %s", addr)
	return s.e.Start(addr)
}
func (s *Server) Shutdown(ctx context.Context) error { return s.e.Shutdown(ctx) }
