package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/chargehub/chargehub-api/internal/adapter/cache"
	"github.com/chargehub/chargehub-api/internal/adapter/grpc/server"
	"github.com/chargehub/chargehub-api/internal/adapter/http/fiber/handlers"
	"github.com/chargehub/chargehub-api/internal/adapter/http/fiber/middleware"
	"github.com/chargehub/chargehub-api/internal/adapter/queue"
	"github.com/chargehub/chargehub-api/internal/adapter/storage/local"
	"github.com/chargehub/chargehub-api/internal/adapter/storage/postgres"
	"github.com/chargehub/chargehub-api/internal/adapter/vault"
	wsAdapter "github.com/chargehub/chargehub-api/internal/adapter/websocket"
	"github.com/chargehub/chargehub-api/internal/domain"
	"github.com/chargehub/chargehub-api/internal/infrastructure/circuitbreaker"
	"github.com/chargehub/chargehub-api/internal/observability/telemetry"
	"github.com/chargehub/chargehub-api/internal/service/admin"
	"github.com/chargehub/chargehub-api/internal/service/auth"
	"github.com/chargehub/chargehub-api/internal/service/booking"
	"github.com/chargehub/chargehub-api/internal/service/chat"
	"github.com/chargehub/chargehub-api/internal/service/email"
	"github.com/chargehub/chargehub-api/internal/service/file"
	"github.com/chargehub/chargehub-api/internal/service/health"
	"github.com/chargehub/chargehub-api/internal/service/notification"
	"github.com/chargehub/chargehub-api/internal/service/report"
	"github.com/chargehub/chargehub-api/internal/service/station"
	"github.com/chargehub/chargehub-api/internal/service/user"
	"github.com/chargehub/chargehub-api/pkg/config"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// 2. Initialize Logger
	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	logger.Info("Starting ChargeHub API",
		zap.String("service", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// 3. Secrets from Vault override env and file settings
	if err := vault.Apply(ctx, cfg, logger); err != nil {
		logger.Fatal("Failed to load secrets from vault", zap.Error(err))
	}
	if cfg.JWT.Secret == "" {
		logger.Fatal("jwt.secret is required")
	}

	// 4. Initialize OpenTelemetry (Distributed Tracing)
	if cfg.OpenTelemetry.Enabled {
		tracerProvider, err := telemetry.InitTracer(cfg.OpenTelemetry, cfg.App.Version)
		if err != nil {
			logger.Fatal("Failed to initialize tracer", zap.Error(err))
		}
		defer func() {
			if err := tracerProvider.Shutdown(context.Background()); err != nil {
				logger.Error("Error shutting down tracer provider", zap.Error(err))
			}
		}()
	}

	// 5. Initialize PostgreSQL Connection Pool
	db, err := postgres.NewConnection(cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("Failed to get underlying SQL DB", zap.Error(err))
	}
	defer sqlDB.Close()

	if cfg.Database.AutoMigrate {
		if err := postgres.RunMigrations(db, cfg.Booking.PreventOverlap); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	// 6. Initialize Cache (Redis, in-memory fallback)
	appCache, err := cache.New(cfg.Redis, logger)
	if err != nil {
		logger.Fatal("Failed to initialize cache", zap.Error(err))
	}
	defer appCache.Close()

	// 7. Initialize Message Queue
	messageQueue, err := queue.New(cfg.Queue, logger)
	if err != nil {
		logger.Fatal("Failed to initialize message queue", zap.Error(err))
	}
	defer messageQueue.Close()

	// 8. Initialize Repositories
	userRepo := postgres.NewUserRepository(db, logger)
	vehicleRepo := postgres.NewVehicleRepository(db, logger)
	stationRepo := postgres.NewStationRepository(db, logger)
	bookingRepo := postgres.NewBookingRepository(db, logger)
	chatRepo := postgres.NewChatRepository(db, logger)
	notificationRepo := postgres.NewNotificationRepository(db, logger)
	reportRepo := postgres.NewReportRepository(db, logger)
	fileRepo := postgres.NewFileRepository(db, logger)

	blobStore, err := local.NewStorage(cfg.Storage.UploadDir)
	if err != nil {
		logger.Fatal("Failed to initialize upload storage", zap.Error(err))
	}

	// 9. Initialize Services (Business Logic Layer)
	jwtService := auth.NewJWTService(
		cfg.JWT.Secret,
		cfg.JWT.Issuer,
		cfg.JWT.AccessTokenDuration,
		cfg.JWT.RefreshTokenDuration,
		appCache,
		logger,
	)
	authService := auth.NewService(userRepo, jwtService, logger)
	rbacService := auth.NewRBACService(logger)

	mailer, err := email.NewService(cfg.Email, circuitbreaker.New("email", cfg.CircuitBreaker, logger), logger)
	if err != nil {
		logger.Fatal("Failed to initialize email service", zap.Error(err))
	}

	authService.SetWelcomer(mailer)

	notificationService := notification.NewService(notificationRepo, userRepo, mailer, messageQueue, logger)
	userService := user.NewService(userRepo, vehicleRepo, bookingRepo, fileRepo, logger)
	stationService := station.NewService(stationRepo, userRepo, bookingRepo, fileRepo, notificationService, logger)
	chatService := chat.NewService(chatRepo, userRepo, messageQueue, logger)
	reportService := report.NewService(reportRepo, notificationService, logger)
	fileService := file.NewService(fileRepo, blobStore, cfg.Storage, logger)
	adminService := admin.NewService(userRepo, stationRepo, bookingRepo, reportRepo, logger)
	bookingService := booking.NewService(
		bookingRepo,
		userRepo,
		vehicleRepo,
		stationRepo,
		chatService,
		notificationService,
		appCache,
		messageQueue,
		bookingConfig(cfg.Booking),
		logger,
	)

	healthService := health.NewService(cfg.App.Version, logger)
	healthService.Register("database", true, sqlDB.PingContext)
	healthService.Register("cache", false, func(ctx context.Context) error { return appCache.Ping() })

	// 10. Initialize WebSocket Hub (for real-time updates)
	wsHub := wsAdapter.NewHub(logger)
	go wsHub.Run(ctx)
	if err := wsHub.Relay(messageQueue, domain.SubjectNotificationCreated, domain.SubjectChatMessage); err != nil {
		logger.Fatal("Failed to subscribe websocket relay", zap.Error(err))
	}

	// 11. Initialize Fiber HTTP Server
	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		ServerHeader:          cfg.App.Name,
		DisableStartupMessage: true,
		ReadTimeout:           cfg.HTTP.ReadTimeout,
		WriteTimeout:          cfg.HTTP.WriteTimeout,
		IdleTimeout:           cfg.HTTP.IdleTimeout,
		BodyLimit:             cfg.HTTP.BodyLimit,
		ErrorHandler:          middleware.ErrorHandler(logger, cfg.App.IsDevelopment()),
	})

	// Global Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(middleware.Metrics())
	app.Use(middleware.NewCORS(cfg.CORS))
	if cfg.RateLimiting.Enabled {
		app.Use(middleware.RateLimit(cfg.RateLimiting))
	}
	if cfg.CircuitBreaker.Enabled {
		app.Use(middleware.CircuitBreaker(cfg.CircuitBreaker, logger))
	}

	// Health Check Endpoints
	health.NewFiberHandler(healthService).RegisterRoutes(app)

	// Metrics endpoint for Prometheus
	metricsHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	app.Get("/metrics", func(c *fiber.Ctx) error {
		metricsHandler(c.Context())
		return nil
	})

	authMiddleware := middleware.AuthRequired(authService)

	// API v1 Routes
	v1 := app.Group("/api/v1")

	// Auth routes (public)
	authHandler := handlers.NewAuthHandler(authService, logger)
	v1.Post("/auth/login", authHandler.Login)
	v1.Post("/auth/register", authHandler.Register)
	v1.Post("/auth/refresh", authHandler.RefreshToken)
	v1.Post("/auth/logout", authMiddleware, authHandler.Logout)
	v1.Get("/auth/me", authMiddleware, authHandler.Me)

	admin.NewHandler(adminService, stationService, reportService).RegisterRoutes(v1, authMiddleware, rbacService)

	// Booking routes live under /api/bookings, aliased under /api/v1/bookings
	booking.NewHandler(bookingService).RegisterRoutes(app, authMiddleware)

	// Protected routes
	protected := v1.Group("", authMiddleware)
	handlers.NewUserHandler(userService, fileService, logger).RegisterRoutes(protected)
	handlers.NewStationHandler(stationService, logger).RegisterRoutes(protected)
	handlers.NewChatHandler(chatService, logger).RegisterRoutes(protected)
	handlers.NewNotificationHandler(notificationService, logger).RegisterRoutes(protected)
	handlers.NewReportHandler(reportService, logger).RegisterRoutes(protected)
	handlers.NewFileHandler(fileService, logger).RegisterRoutes(protected)

	// WebSocket routes
	app.Use("/ws", authMiddleware, func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// Real-time updates WebSocket
	app.Get("/ws/updates", websocket.New(func(c *websocket.Conn) {
		userID, _ := c.Locals(middleware.LocalUserID).(string)
		wsHub.Serve(c, userID)
	}))

	// 12. Initialize gRPC Server (health for internal load balancers)
	var grpcServer *server.GRPCServer
	if cfg.GRPC.Enabled {
		grpcServer = server.NewGRPCServer(healthService, logger)
		lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPC.Port))
		if err != nil {
			logger.Fatal("Failed to listen for gRPC", zap.Error(err))
		}
		go grpcServer.Watch(ctx, 15*time.Second)
		go func() {
			logger.Info("Starting gRPC Server", zap.Int("port", cfg.GRPC.Port))
			if err := grpcServer.Serve(lis); err != nil {
				logger.Error("gRPC Server failed", zap.Error(err))
			}
		}()
	}

	// 13. Start Background Workers
	go runNoShowSweeper(ctx, bookingService, cfg.Booking.NoShowSweepInterval, logger)

	// 14. Start HTTP Server
	go func() {
		logger.Info("Starting HTTP Server", zap.Int("port", cfg.HTTP.Port))
		if err := app.Listen(fmt.Sprintf(":%d", cfg.HTTP.Port)); err != nil {
			logger.Fatal("HTTP Server failed", zap.Error(err))
		}
	}()

	// 15. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	if grpcServer != nil {
		grpcServer.Stop()
	}

	logger.Info("Server exited gracefully")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.App.IsDevelopment() {
		zcfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid logging.level %q: %w", cfg.Logging.Level, err)
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	return zcfg.Build()
}

func bookingConfig(cfg config.BookingConfig) *domain.BookingConfig {
	return &domain.BookingConfig{
		SlotSizeMinutes:    cfg.SlotSizeMinutes,
		MaxSlotsPerBooking: cfg.MaxSlotsPerBooking,
		PreventOverlap:     cfg.PreventOverlap,
		SlotsCacheTTL:      cfg.SlotsCacheTTL,
	}
}

// noShowProcessor is satisfied by booking.Service.
type noShowProcessor interface {
	ProcessNoShows(ctx context.Context) (int, error)
}

// runNoShowSweeper periodically marks overdue bookings without an arrival as
// no-shows until ctx is cancelled.
func runNoShowSweeper(ctx context.Context, bookings noShowProcessor, interval time.Duration, logger *zap.Logger) {
	if interval <= 0 {
		logger.Info("No-show sweeper disabled")
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := bookings.ProcessNoShows(ctx)
			if err != nil {
				logger.Error("No-show sweep failed", zap.Error(err))
				continue
			}
			if n > 0 {
				logger.Info("No-show sweep completed", zap.Int("marked", n))
			}
		}
	}
}
