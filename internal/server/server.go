package server

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"audiotable/internal/catalog"
	"audiotable/internal/config"
	"audiotable/internal/handlers"
	"audiotable/internal/health"
	"audiotable/internal/logging"
	"audiotable/internal/media"
	"audiotable/internal/metrics"
	"audiotable/internal/middleware"
	"audiotable/internal/services"
)

// Version of the application
var Version = "1.0.0"

// bodySlack leaves room for multipart framing around the largest upload
const bodySlack = 1 << 20

// Server is the HTTP API of the audio table
type Server struct {
	app         *fiber.App
	cfg         *config.AppConfig
	repo        *services.Repository
	authService *services.AuthService
	dir         *catalog.Directory
	importer    *catalog.Importer
	syncer      *catalog.Syncer
	metrics     *metrics.Metrics
	gatherer    prometheus.Gatherer
	logger      *logging.Logger
}

// New creates the server and registers every route. m and gatherer may be
// nil, in which case nothing is recorded and /metrics serves the default
// registry.
func New(cfg *config.AppConfig, db *gorm.DB, m *metrics.Metrics, gatherer prometheus.Gatherer) *Server {
	repo := services.NewRepository(db)
	dir := catalog.NewDirectory(cfg.Storage.AudioDir)

	s := &Server{
		cfg:         cfg,
		repo:        repo,
		authService: services.NewAuthService(db, cfg.JWT.Secret, cfg.JWT.AccessExpiry()),
		dir:         dir,
		importer:    catalog.NewImporter(repo, dir, m),
		syncer:      catalog.NewSyncer(repo, dir, m),
		metrics:     m,
		gatherer:    gatherer,
		logger:      logging.GetGlobalLogger(),
	}

	s.app = fiber.New(fiber.Config{
		AppName:      "audiotable v" + Version,
		ServerHeader: "audiotable",
		BodyLimit:    int(cfg.Storage.MaxUploadSize) + bodySlack,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	})

	s.app.Use(recover.New())
	s.app.Use(s.logger.FiberLoggerMiddleware())
	s.app.Use(helmet.New(helmet.Config{
		// Audio is played from the frontend origin
		CrossOriginResourcePolicy: "cross-origin",
	}))
	s.app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.Server.AllowedOrigins(),
		AllowMethods:  "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:  "Origin,Content-Type,Accept,Authorization,Range," + logging.RequestIDHeader,
		ExposeHeaders: "Content-Disposition,Content-Range,Accept-Ranges," + logging.RequestIDHeader,
	}))
	if m != nil {
		s.app.Use(middleware.MetricsMiddleware(m))
	}

	s.setupRoutes()

	return s
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	authHandler := handlers.NewAuthHandler(s.authService)
	rowsHandler := handlers.NewRowsHandler(s.repo)
	bulkHandler := handlers.NewBulkHandler(s.importer)
	audioHandler := handlers.NewAudioHandler(s.repo, s.dir, media.NewUploadValidator(&media.ValidationConfig{
		MaxFileSize:    s.cfg.Storage.MaxUploadSize,
		AllowedFormats: s.cfg.Storage.AllowedFormats,
	}), s.metrics)
	exportHandler := handlers.NewExportHandler(s.repo)
	maintenanceHandler := handlers.NewMaintenanceHandler(s.syncer)
	metricsHandler := handlers.NewMetricsHandler(s.gatherer)

	protected := middleware.NewAuthMiddleware(s.cfg.JWT.Secret).JWTProtected()

	// Operability
	health.RegisterHealthRoutes(s.app, health.NewChecker(s.repo, s.dir.Root(), s.metrics))
	s.app.Get("/metrics", metricsHandler.Metrics())

	// Auth
	auth := s.app.Group("/auth")
	auth.Post("/login", middleware.NewAuthRateLimiter(s.cfg.RateLimit.LoginPerMinute), authHandler.Login)
	auth.Get("/me", protected, authHandler.Me)

	// Rows, listing is public
	rows := s.app.Group("/rows")
	rows.Get("/", rowsHandler.List)
	rows.Post("/", protected, rowsHandler.Create)
	rows.Post("/bulk", protected, middleware.RateLimitByUser(s.cfg.RateLimit.BulkPerMinute), bulkHandler.Import)
	rows.Put("/:id", protected, rowsHandler.Update)
	rows.Delete("/:id", protected, rowsHandler.Delete)

	// Audio, streaming is public so <audio> tags work without a token
	s.app.Get("/audio/:id", audioHandler.Stream)
	s.app.Post("/upload", protected, audioHandler.Upload)

	s.app.Get("/export.xlsx", exportHandler.Export)

	s.app.Post("/maintenance/sync-audio-db", protected, maintenanceHandler.SyncAudio)
}

// App returns the underlying Fiber app
func (s *Server) App() *fiber.App {
	return s.app
}

// Syncer returns the directory syncer shared with scheduled jobs
func (s *Server) Syncer() *catalog.Syncer {
	return s.syncer
}

// Start listens on the configured address until Shutdown is called
func (s *Server) Start() error {
	if err := s.dir.Ensure(); err != nil {
		return err
	}
	s.logger.Zerolog().Info().Str("addr", s.cfg.Server.Addr()).Msg("starting API server")
	return s.app.Listen(s.cfg.Server.Addr())
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
