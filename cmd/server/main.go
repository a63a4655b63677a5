package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/glowdesk/backend/internal/application/catalog"
	crmapp "github.com/glowdesk/backend/internal/application/crm"
	financeapp "github.com/glowdesk/backend/internal/application/finance"
	identityapp "github.com/glowdesk/backend/internal/application/identity"
	packagesapp "github.com/glowdesk/backend/internal/application/packages"
	salesapp "github.com/glowdesk/backend/internal/application/sales"
	"github.com/glowdesk/backend/internal/infrastructure/auth"
	"github.com/glowdesk/backend/internal/infrastructure/config"
	"github.com/glowdesk/backend/internal/infrastructure/logger"
	"github.com/glowdesk/backend/internal/infrastructure/persistence"
	"github.com/glowdesk/backend/internal/infrastructure/telemetry"
	"github.com/glowdesk/backend/internal/interfaces/http/handler"
	"github.com/glowdesk/backend/internal/interfaces/http/middleware"
	"github.com/glowdesk/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/glowdesk/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			GlowDesk Backend API
//	@version		1.0
//	@description	Back-office API for beauty and wellness salons: clients, priced services, prepaid session packages, sales and attendant commissions.
//	@termsOfService	http://swagger.io/terms/

//	@contact.name	API Support
//	@contact.url	https://github.com/glowdesk/backend
//	@contact.email	support@glowdesk.example.com

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

//	@externalDocs.description	OpenAPI
//	@externalDocs.url			https://swagger.io/resources/open-api/

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting GlowDesk Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize OpenTelemetry providers. With telemetry disabled both
	// constructors return no-op providers, so the wiring below is safe
	// either way.
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	meterProvider, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	// Database query tracing (otelgorm + slow query detection)
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:          true,
			LogFullSQL:       cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh:  cfg.Telemetry.DBSlowQueryThresh,
			DBSystem:         "postgresql",
			WithoutVariables: !cfg.Telemetry.DBLogFullSQL,
		}, log)
		if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
			log.Fatal("Failed to register database tracing", zap.Error(err))
		}
		log.Info("Database tracing enabled",
			zap.Duration("slow_query_threshold", cfg.Telemetry.DBSlowQueryThresh),
		)
	}

	// Initialize repositories
	clientRepo := persistence.NewGormClientRepository(db.DB)
	serviceRepo := persistence.NewGormServiceRepository(db.DB)
	packageRepo := persistence.NewGormClientPackageRepository(db.DB)
	commissionRepo := persistence.NewGormCommissionRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Initialize application services
	saleService := salesapp.NewSaleService(txScope)
	packageService := packagesapp.NewPackageService(packageRepo)
	clientService := crmapp.NewClientService(clientRepo)
	catalogService := catalogapp.NewCatalogService(serviceRepo)
	commissionService := financeapp.NewCommissionService(commissionRepo)
	userService := identityapp.NewUserService(userRepo)

	// Business metrics: counters fed by the sale flow plus periodic
	// package ledger gauges per tenant.
	if cfg.Telemetry.Enabled {
		businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
			Meter:           meterProvider.Meter("glowdesk-business"),
			Logger:          log,
			PackageProvider: telemetry.NewGormPackageMetricsProvider(db.DB),
		})
		if err != nil {
			log.Fatal("Failed to initialize business metrics", zap.Error(err))
		}
		saleService.SetBusinessMetrics(businessMetrics)
		businessMetrics.StartPeriodicCollection(
			context.Background(),
			telemetry.NewGormTenantProvider(db.DB),
			5*time.Minute,
		)
		defer businessMetrics.Stop()
	}

	// JWT authentication. Tokens are issued out of band; the optional
	// Redis blacklist lets revoked tokens take effect before expiry.
	jwtService := auth.NewJWTService(cfg.JWT)

	var tokenBlacklist auth.TokenBlacklist
	if cfg.Redis.Host != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing redis client", zap.Error(err))
			}
		}()
		tokenBlacklist = auth.NewRedisTokenBlacklist(redisClient)
		log.Info("Token blacklist enabled", zap.String("redis", fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)))
	}

	// Initialize HTTP handlers
	saleHandler := handler.NewSaleHandler(saleService)
	packageHandler := handler.NewPackageHandler(packageService)
	clientHandler := handler.NewClientHandler(clientService)
	serviceHandler := handler.NewServiceHandler(catalogService)
	commissionHandler := handler.NewCommissionHandler(commissionService)
	userHandler := handler.NewUserHandler(userService)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	// 7. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Request tracing and HTTP metrics (if telemetry enabled)
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     true,
		}))
		engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
			MeterProvider: meterProvider,
			ServiceName:   cfg.Telemetry.ServiceName,
			Enabled:       true,
		}))
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Swagger documentation endpoint, gated per config (disabled, JWT,
	// or IP whitelist). The guard gets a JWT middleware without skip
	// lists; the default config exempts /swagger and would defeat
	// RequireAuth.
	swaggerGuard := middleware.SwaggerProtection(middleware.SwaggerConfig{
		Enabled:     cfg.Swagger.Enabled,
		RequireAuth: cfg.Swagger.RequireAuth,
		AllowedIPs:  cfg.Swagger.AllowedIPs,
	}, middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		Logger:     log,
	}))
	engine.GET("/swagger/*any", swaggerGuard, ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Apply JWT authentication middleware to API routes
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: tokenBlacklist,
		SkipPaths: []string{
			"/api/v1/ping",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		Logger: log,
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Sales domain (sales lifecycle, per-sale commissions)
	salesRoutes := router.NewDomainGroup("sales", "/sales")
	salesRoutes.POST("", saleHandler.Create)
	salesRoutes.GET("", saleHandler.List)
	salesRoutes.GET("/:id", saleHandler.GetByID)
	salesRoutes.PUT("/:id", saleHandler.Update)
	salesRoutes.POST("/:id/confirm", saleHandler.Confirm)
	salesRoutes.POST("/:id/cancel", saleHandler.Cancel)
	salesRoutes.GET("/:id/commissions", commissionHandler.ListBySale)

	// CRM domain (client registry, per-client packages)
	clientRoutes := router.NewDomainGroup("crm", "/clients")
	clientRoutes.POST("", clientHandler.Create)
	clientRoutes.GET("", clientHandler.List)
	clientRoutes.GET("/:id", clientHandler.GetByID)
	clientRoutes.PUT("/:id", clientHandler.Update)
	clientRoutes.POST("/:id/deactivate", clientHandler.Deactivate)
	clientRoutes.POST("/:id/reactivate", clientHandler.Reactivate)
	clientRoutes.GET("/:id/packages", packageHandler.ListByClient)

	// Catalog domain (service registry, price tiers, price preview)
	serviceRoutes := router.NewDomainGroup("catalog", "/services")
	serviceRoutes.POST("", serviceHandler.Create)
	serviceRoutes.GET("", serviceHandler.List)
	serviceRoutes.GET("/:id", serviceHandler.GetByID)
	serviceRoutes.PUT("/:id", serviceHandler.Update)
	serviceRoutes.PUT("/:id/tiers", serviceHandler.ReplaceTiers)
	serviceRoutes.GET("/:id/price-preview", serviceHandler.PreviewPrice)
	serviceRoutes.POST("/:id/deactivate", serviceHandler.Deactivate)
	serviceRoutes.POST("/:id/reactivate", serviceHandler.Reactivate)

	// Packages domain (prepaid session ledgers, read side)
	packageRoutes := router.NewDomainGroup("packages", "/packages")
	packageRoutes.GET("", packageHandler.List)
	packageRoutes.GET("/:id", packageHandler.GetByID)
	packageRoutes.GET("/:id/statement", packageHandler.GetStatement)

	// Finance domain (commission entries)
	commissionRoutes := router.NewDomainGroup("finance", "/commissions")
	commissionRoutes.GET("", commissionHandler.List)

	// Identity domain (staff accounts)
	userRoutes := router.NewDomainGroup("identity", "/users")
	userRoutes.POST("", userHandler.Create)
	userRoutes.GET("", userHandler.List)
	userRoutes.PUT("/me/password", userHandler.ChangePassword)
	userRoutes.GET("/:id", userHandler.GetByID)
	userRoutes.PUT("/:id", userHandler.Update)
	userRoutes.PUT("/:id/role", userHandler.ChangeRole)
	userRoutes.POST("/:id/deactivate", userHandler.Deactivate)
	userRoutes.POST("/:id/reactivate", userHandler.Reactivate)

	// Register all domain groups
	r.Register(salesRoutes).
		Register(clientRoutes).
		Register(serviceRoutes).
		Register(packageRoutes).
		Register(commissionRoutes).
		Register(userRoutes)

	// Register system routes with swagger-documented handlers
	systemHandler := handler.NewSystemHandler()
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)
	r.Register(systemRoutes)

	// Setup routes
	r.Setup()

	// Also keep a simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
