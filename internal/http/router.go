// Package httpapi wires the HTTP transport (Gin) to the autoresponder
// services, middleware, and route handlers. It centralizes tracing,
// correlation IDs, redacted logging, panic recovery, metrics, CORS, security
// headers, bearer auth, and rate limiting.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	_ "github.com/Notho-freedom/Autoresponder/docs" // swagger spec registration

	"github.com/Notho-freedom/Autoresponder/internal/auth"
	"github.com/Notho-freedom/Autoresponder/internal/config"
	"github.com/Notho-freedom/Autoresponder/internal/http/handlers"
	"github.com/Notho-freedom/Autoresponder/internal/http/middleware"
	"github.com/Notho-freedom/Autoresponder/internal/intake"
	"github.com/Notho-freedom/Autoresponder/internal/notify"
	"github.com/Notho-freedom/Autoresponder/internal/services"
)

// maxBodyBytes caps every request body. Form webhooks are a few KiB.
const maxBodyBytes = 1 << 20

// Deps are the long-lived collaborators built once by cmd/server.
type Deps struct {
	Ledger services.Ledger
	Email  notify.Channel
	SMS    notify.Channel

	// Normalizer defaults to the French/English alias table.
	Normalizer handlers.Normalizer
	Version    string
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine and mounts the API under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. CORS and Security headers
//
// Bearer auth guards the webhook and the admin group; the rate limiter only
// guards the webhook.
func RegisterRoutes(r *gin.Engine, deps Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{"X-API-Key"},
	}))
	r.Use(middleware.Recovery())
	r.Use(limitBody(maxBodyBytes))
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.Use(corsMiddleware(cfg.CORS.AllowedOrigins)...)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		EnablePolicy: true,
	}))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← ledger/channels
	norm := deps.Normalizer
	if norm == nil {
		norm = intake.NewNormalizer(intake.DefaultAliases)
	}
	dispatch := &services.DispatchService{
		Ledger:         deps.Ledger,
		Email:          deps.Email,
		SMS:            deps.SMS,
		ChannelTimeout: cfg.Notify.Timeout,
		LedgerTimeout:  cfg.Ledger.Timeout,
	}
	status := &services.StatusService{Ledger: deps.Ledger, Email: deps.Email, SMS: deps.SMS}
	responses := &services.ResponseService{Ledger: deps.Ledger}

	h := handlers.New(norm, dispatch, status, responses, handlers.Options{
		ServiceName: cfg.OTEL.ServiceName,
		Version:     deps.Version,
		MaxLimit:    cfg.ResponsesMaxLimit,
	})

	r.GET("/", h.Info)

	requireAuth := middleware.BearerAuth(auth.NewGate(cfg.SecretKey))
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByIP())

	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		api.POST("/receive", rl.Handler(), requireAuth, h.Receive)
		api.GET("/status", h.Status)

		admin := api.Group("/responses",
			requireAuth,
			gzip.Gzip(gzip.DefaultCompression),
			middleware.SecurityHeaders(middleware.SecurityOptions{NoStore: true}),
		)
		admin.GET("", h.ListResponses)
		admin.GET("/export", h.ExportResponses)
		admin.GET("/:id", h.GetResponse)
		admin.DELETE("/:id", h.DeleteResponse)
	}
}

// corsMiddleware returns the CORS chain. With no allowlist every origin is
// accepted without credentials; otherwise only listed origins are echoed.
func corsMiddleware(allowedOrigins []string) []gin.HandlerFunc {
	base := cors.Config{
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}

	if len(allowedOrigins) == 0 {
		base.AllowAllOrigins = true
		return []gin.HandlerFunc{
			// ACAO: * even without an Origin header, so plain health checks see it.
			func(c *gin.Context) {
				c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
				c.Next()
			},
			cors.New(base),
		}
	}

	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}
	base.AllowOrigins = allowedOrigins
	return []gin.HandlerFunc{
		func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		},
		cors.New(base),
	}
}

// limitBody caps the request body size using http.MaxBytesReader. Reads past
// the cap fail with *http.MaxBytesError.
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
