package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/wakesup1/fintrack/internal/auth"
	"github.com/wakesup1/fintrack/internal/cache"
	"github.com/wakesup1/fintrack/internal/config"
	"github.com/wakesup1/fintrack/internal/http/handlers"
	"github.com/wakesup1/fintrack/internal/http/middlewares"
	"github.com/wakesup1/fintrack/internal/observability"
	"github.com/wakesup1/fintrack/internal/repo/postgres"
)

const maxBodyBytes = 1 << 20 // 1 MiB

func NewRouter(
	log *slog.Logger,
	pool *pgxpool.Pool,
	cfg config.Config,
	prom *observability.Prom,
	reg *prometheus.Registry,
	store cache.Store,
) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("fintrack"))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	r.Use(middlewares.RequireJSON())
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))

	if prom != nil {
		r.Use(prom.GinHandleMiddleware())
	}

	// health
	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if reg != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	// wire up repositories
	usersRepo := postgres.NewUsersRepo(pool, prom)
	transactionsRepo := postgres.NewTransactionsRepo(pool, prom)

	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.TokenTTL())
	authMiddleware := middlewares.NewAuthMiddleware(jwtManager)

	authHandler := handlers.NewAuthHandler(usersRepo, usersRepo, jwtManager)
	transactionsHandler := handlers.NewTransactionsHandlerWithCache(transactionsRepo, store)

	r.POST("/auth/register", authHandler.Register)
	r.POST("/auth/login", authHandler.Login)
	r.GET("/auth/me", authMiddleware.RequireAuth(), authHandler.Me)

	r.GET("/transactions", transactionsHandler.ListTransactions)
	r.POST("/transactions", transactionsHandler.CreateTransaction)
	r.DELETE("/transactions", transactionsHandler.DeleteAllTransactions)
	r.PATCH("/transactions", transactionsHandler.BulkUpdateTransactions)
	r.GET("/transactions/summary", transactionsHandler.GetSummary)
	r.PUT("/transactions/:id", transactionsHandler.UpdateTransaction)
	r.DELETE("/transactions/:id", transactionsHandler.DeleteTransaction)

	return r
}
