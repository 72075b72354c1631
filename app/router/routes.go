// Package router provides HTTP routing, middleware configuration, and server setup for the web application
package router

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/compress"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"zaplinks/app/dto"
	"zaplinks/app/handlers"
	"zaplinks/app/middleware"
	"zaplinks/config"
	"zaplinks/utils"
)

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	GetApp() *fiber.App
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app              *fiber.App
	cfg              *config.ProductionConfig
	redirectHandler  handlers.RedirectHandlerInterface
	campaignHandler  handlers.CampaignHandlerInterface
	smartLinkHandler handlers.SmartLinkHandlerInterface
	domainHandler    handlers.DomainHandlerInterface
	zapiHandler      handlers.ZAPIHandlerInterface
}

// NewFiberRouter creates a new Fiber router
func NewFiberRouter(
	cfg *config.ProductionConfig,
	redirectHandler handlers.RedirectHandlerInterface,
	campaignHandler handlers.CampaignHandlerInterface,
	smartLinkHandler handlers.SmartLinkHandlerInterface,
	domainHandler handlers.DomainHandlerInterface,
	zapiHandler handlers.ZAPIHandlerInterface,
) Router {
	app := fiber.New(fiber.Config{
		AppName:      "ZapLinks API",
		ServerHeader: "ZapLinks",
		ErrorHandler: errorHandler,
		BodyLimit:    4 * 1024 * 1024, // 4MB
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ProxyHeader:  cfg.Server.ProxyHeader,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	return &FiberRouter{
		app:              app,
		cfg:              cfg,
		redirectHandler:  redirectHandler,
		campaignHandler:  campaignHandler,
		smartLinkHandler: smartLinkHandler,
		domainHandler:    domainHandler,
		zapiHandler:      zapiHandler,
	}
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	log.Println("Setting up routes...")

	r.setupMiddleware()

	// Public resolver routes. CORS is wide open here: the landing page can
	// be hosted on any customer domain.
	redirect := r.app.Group("", cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "HEAD", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		MaxAge:       utils.CORSMaxAge,
	}))
	redirect.Use(limiter.New(limiter.Config{
		Max:        r.cfg.Security.RedirectRateLimit,
		Expiration: r.cfg.Security.RateLimitWindow,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: rateLimitReached,
	}))
	redirect.Get("/resolve", r.redirectHandler.Resolve)
	redirect.Get("/r/:slug", r.redirectHandler.ResolvePath)

	// Management API routes
	api := r.app.Group("/api/v1")

	// Health check route (no rate limiting, no auth)
	api.Get("/health", r.healthCheck)

	api.Use(limiter.New(limiter.Config{
		Max:        r.cfg.Security.GlobalRateLimit,
		Expiration: r.cfg.Security.RateLimitWindow,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: rateLimitReached,
		Next: func(c fiber.Ctx) bool {
			return c.Path() == "/api/v1/health"
		},
	}))
	api.Use(middleware.APIKeyAuth(&r.cfg.Security))

	campaigns := api.Group("/campaigns")
	campaigns.Post("/", r.campaignHandler.CreateCampaign)
	campaigns.Get("/", r.campaignHandler.ListCampaigns)
	campaigns.Get("/:uuid", r.campaignHandler.GetCampaign)
	campaigns.Put("/:uuid", r.campaignHandler.UpdateCampaign)
	campaigns.Delete("/:uuid", r.campaignHandler.ArchiveCampaign)
	campaigns.Post("/:uuid/groups", r.campaignHandler.AddGroup)
	campaigns.Get("/:uuid/groups", r.campaignHandler.ListGroups)
	campaigns.Put("/:uuid/groups/:id", r.campaignHandler.UpdateGroup)
	campaigns.Delete("/:uuid/groups/:id", r.campaignHandler.RemoveGroup)

	smartLinks := api.Group("/smart-links")
	smartLinks.Post("/", r.smartLinkHandler.CreateSmartLink)
	smartLinks.Get("/", r.smartLinkHandler.ListSmartLinks)
	smartLinks.Get("/:uuid", r.smartLinkHandler.GetSmartLink)
	smartLinks.Put("/:uuid", r.smartLinkHandler.UpdateSmartLink)
	smartLinks.Delete("/:uuid", r.smartLinkHandler.DeactivateSmartLink)
	smartLinks.Get("/:uuid/stats", r.smartLinkHandler.GetStats)
	smartLinks.Get("/:uuid/export", r.smartLinkHandler.ExportClicks)

	domains := api.Group("/domains")
	domains.Post("/", r.domainHandler.RegisterDomain)
	domains.Get("/", r.domainHandler.ListDomains)
	domains.Post("/:id/verify", r.domainHandler.VerifyDomain)
	domains.Delete("/:id", r.domainHandler.RemoveDomain)

	whatsapp := api.Group("/whatsapp")
	whatsapp.Get("/status", r.zapiHandler.InstanceStatus)
	whatsapp.Get("/qr-code", r.zapiHandler.QRCode)
	whatsapp.Post("/send-text", r.zapiHandler.SendText)

	// Prometheus metrics endpoint
	if r.cfg.Metrics.Enabled {
		metricsHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
		r.app.Get(r.cfg.Metrics.Path, func(c fiber.Ctx) error {
			metricsHandler(c.RequestCtx())
			return nil
		})
	}

	// Not found handler
	r.app.Use(r.notFoundHandler)

	log.Println("Routes configured successfully")
}

func (r *FiberRouter) setupMiddleware() {
	// Request ID middleware - must be first
	r.app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return generateRequestID()
		},
	}))

	// Security headers middleware
	r.app.Use(helmet.New(helmet.Config{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000, // 1 year
		HSTSExcludeSubdomains: false,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		XDNSPrefetchControl:   "off",
		XDownloadOptions:      "noopen",
		XPermittedCrossDomain: "none",
	}))

	// CORS for the management API. Resolver routes override this with a
	// permissive policy in SetupRoutes.
	r.app.Use(cors.New(cors.Config{
		AllowOrigins:     r.cfg.Security.AllowedOrigins,
		AllowMethods:     r.cfg.Security.AllowedMethods,
		AllowHeaders:     r.cfg.Security.AllowedHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: r.cfg.Security.AllowCredentials,
		MaxAge:           r.cfg.Security.CORSMaxAge,
	}))

	// Compression middleware for performance
	r.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Prometheus metrics middleware
	if r.cfg.Metrics.Enabled {
		r.app.Use(middleware.Metrics())
	}

	// Structured access log
	if r.cfg.Logging.EnableAccessLog {
		r.app.Use(logger.New(logger.Config{
			Format:     `{"time":"${time}","pid":"${pid}","request_id":"${locals:requestid}","level":"info","method":"${method}","path":"${path}","protocol":"${protocol}","ip":"${ip}","user_agent":"${ua}","status":${status},"latency":"${latency}","bytes_in":${bytesReceived},"bytes_out":${bytesSent},"referer":"${referer}"}` + "\n",
			TimeFormat: time.RFC3339,
			TimeZone:   "UTC",
			Next: func(c fiber.Ctx) bool {
				return c.Path() == "/api/v1/health"
			},
		}))
	}

	// Recovery middleware with custom error handling
	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e interface{}) {
			log.Printf(`{"time":"%s","level":"error","request_id":"%s","event":"panic","error":"%v","path":"%s","method":"%s","ip":"%s"}`,
				utils.UTCNow().Format(time.RFC3339),
				c.Locals("requestid"),
				e,
				c.Path(),
				c.Method(),
				c.IP(),
			)
		},
	}))
}

// Start starts the HTTP server
func (r *FiberRouter) Start(address string) error {
	log.Printf("Starting server on %s", address)
	return r.app.Listen(address)
}

// GetApp returns the underlying Fiber app
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

func (r *FiberRouter) healthCheck(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":      "healthy",
		"timestamp":   utils.UTCNowRFC3339(),
		"version":     r.cfg.Deployment.Version,
		"environment": r.cfg.Deployment.Environment,
	})
}

func (r *FiberRouter) notFoundHandler(c fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.APIResponse{
		Success: false,
		Message: "Resource not found",
		Error: dto.ErrorDetail{
			Code: "NOT_FOUND",
		},
	})
}

func rateLimitReached(c fiber.Ctx) error {
	return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
		Success: false,
		Message: "Too many requests. Please try again later.",
		Error: dto.ErrorDetail{
			Code: "RATE_LIMIT_EXCEEDED",
		},
	})
}

func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	return c.Status(code).JSON(dto.APIResponse{
		Success: false,
		Message: err.Error(),
		Error: dto.ErrorDetail{
			Code: "INTERNAL_ERROR",
		},
	})
}

func generateRequestID() string {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "unknown"
	}
	return hex.EncodeToString(bytes)
}
