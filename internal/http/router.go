// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, idempotency, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	_ "github.com/cardbox/warranty-backend/docs"
	"github.com/cardbox/warranty-backend/internal/config"
	"github.com/cardbox/warranty-backend/internal/domain"
	"github.com/cardbox/warranty-backend/internal/http/handlers"
	"github.com/cardbox/warranty-backend/internal/http/middleware"
	"github.com/cardbox/warranty-backend/internal/repo"
	"github.com/cardbox/warranty-backend/internal/services"
)

// warrantyRepoShim adapts the repository free functions to the
// services.WarrantyRepo interface expected by the WarrantyService. This keeps
// services decoupled from the concrete repo package while reusing existing
// functions.
type warrantyRepoShim struct{}

// CreateWarranty proxies repo.CreateWarranty.
func (warrantyRepoShim) CreateWarranty(ctx context.Context, db *gorm.DB, w *domain.Warranty) (*domain.Warranty, error) {
	return repo.CreateWarranty(ctx, db, w)
}

// GetWarranty proxies repo.GetWarranty.
func (warrantyRepoShim) GetWarranty(ctx context.Context, db *gorm.DB, id string) (*domain.Warranty, error) {
	return repo.GetWarranty(ctx, db, id)
}

// GetWarrantyByCode proxies repo.GetWarrantyByCode.
func (warrantyRepoShim) GetWarrantyByCode(ctx context.Context, db *gorm.DB, code string) (*domain.Warranty, error) {
	return repo.GetWarrantyByCode(ctx, db, code)
}

// ClaimWarranty proxies repo.ClaimWarranty (atomic conditional update).
func (warrantyRepoShim) ClaimWarranty(ctx context.Context, db *gorm.DB, code, buyerID, buyerEmail string, now time.Time) (int64, error) {
	return repo.ClaimWarranty(ctx, db, code, buyerID, buyerEmail, now)
}

// ReleaseWarranty proxies repo.ReleaseWarranty (atomic conditional update).
func (warrantyRepoShim) ReleaseWarranty(ctx context.Context, db *gorm.DB, id, buyerID, buyerEmail string, now time.Time) (int64, error) {
	return repo.ReleaseWarranty(ctx, db, id, buyerID, buyerEmail, now)
}

// AppendEvent proxies repo.AppendEvent.
func (warrantyRepoShim) AppendEvent(ctx context.Context, db *gorm.DB, warrantyID, action, actor string) (*domain.WarrantyEvent, error) {
	return repo.AppendEvent(ctx, db, warrantyID, action, actor)
}

// ListEvents proxies repo.ListEvents.
func (warrantyRepoShim) ListEvents(ctx context.Context, db *gorm.DB, warrantyID string) ([]domain.WarrantyEvent, error) {
	return repo.ListEvents(ctx, db, warrantyID)
}

// CountSellerWarranties proxies repo.CountSellerWarranties (pagination support).
func (warrantyRepoShim) CountSellerWarranties(ctx context.Context, db *gorm.DB, sellerID string) (int64, error) {
	return repo.CountSellerWarranties(ctx, db, sellerID)
}

// ListSellerWarrantiesPage proxies repo.ListSellerWarrantiesPage (pagination support).
func (warrantyRepoShim) ListSellerWarrantiesPage(ctx context.Context, db *gorm.DB, sellerID string, offset, limit int) ([]domain.Warranty, error) {
	return repo.ListSellerWarrantiesPage(ctx, db, sellerID, offset, limit)
}

// CountBuyerWarranties proxies repo.CountBuyerWarranties (pagination support).
func (warrantyRepoShim) CountBuyerWarranties(ctx context.Context, db *gorm.DB, buyerID string) (int64, error) {
	return repo.CountBuyerWarranties(ctx, db, buyerID)
}

// ListBuyerWarrantiesPage proxies repo.ListBuyerWarrantiesPage (pagination support).
func (warrantyRepoShim) ListBuyerWarrantiesPage(ctx context.Context, db *gorm.DB, buyerID string, offset, limit int) ([]domain.Warranty, error) {
	return repo.ListBuyerWarrantiesPage(ctx, db, buyerID, offset, limit)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), idempotency and rate
// limiting, CORS and security headers, health and metrics endpoints, and then
// mounts the versioned public API under /api/v*.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Idempotency validator (before rate limiter to allow bypass on replay)
//  8. Rate limiter (per user/IP, bypass on replay)
//  9. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{
			"X-User-Email", // auth proxy identity headers carry PII
			"X-User-Name",
		},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Idempotency validation (before rate limiting)
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{
			MaxLen: 200,
		},
		func(ctx context.Context, userID, scope, key string, now time.Time) (bool, error) {
			rec, err := repo.GetIdempotency(ctx, db, userID, scope, key, now)
			if err != nil || rec == nil {
				return false, nil
			}
			return true, nil
		},
	))

	// 8) Token-bucket rate limiter per user/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	// 9) CORS posture (safe defaults: allow all if none configured)
	allowHeaders := []string{
		"Origin", "Content-Type", "Accept", "Accept-Language", "Authorization",
		"X-User-ID", "X-User-Email", "X-User-Name", middleware.HeaderIdempotencyKey,
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "ETag", middleware.HeaderIdempotencyReplayed},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "ETag", middleware.HeaderIdempotencyReplayed},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false, // the warranty list ETag flow depends on caching
		EnablePolicy: true,
		// Claim retries answer with a replay marker browser clients must see.
		ExposeHeaders: []string{middleware.HeaderIdempotencyReplayed},
	}))

	// Compress list-heavy JSON responses
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// API docs (opt-in)
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← repo/db
	warrantySvc := services.NewWarrantyService(db, warrantyRepoShim{})
	if cfg.CodeMaxAttempts > 0 {
		warrantySvc.CodeMaxAttempts = cfg.CodeMaxAttempts
	}
	verifySvc := &services.VerifyService{DB: db}
	h := handlers.New(warrantySvc, verifySvc, db, cfg.IdempotencyTTL)

	// Public API
	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)
	{
		// Seller surface
		api.POST("/warranties", h.IssueWarranty)
		api.GET("/warranties", h.ListWarranties)
		api.GET("/warranties/:id", h.GetWarranty)

		// Buyer surface
		api.POST("/claims", h.ClaimWarranty)
		api.POST("/warranties/manual", h.SelfDeclareWarranty)
		api.POST("/warranties/:id/release", h.ReleaseWarranty)
		api.GET("/me/warranties", h.ListMyWarranties)

		// Public verification (no identity required)
		api.GET("/verify", h.VerifyWarranty)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
