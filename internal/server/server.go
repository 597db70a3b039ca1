// Package server contains the HTTP handlers and routing for the job board API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "jobboard/docs" // swagger docs
	"jobboard/internal/auth"
	"jobboard/internal/bootstrap"
	"jobboard/internal/cache"
	"jobboard/internal/config"
	"jobboard/internal/featureflags"
	"jobboard/internal/media"
	"jobboard/internal/middleware"
	"jobboard/internal/models"
	"jobboard/internal/repository"
	"jobboard/internal/scheduler"
	"jobboard/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Locals keys set by AuthRequired.
const (
	localPrincipal = "principal"
	localClaims    = "claims"
	localUserID    = middleware.UserIDLocal
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	tokens         *auth.TokenService
	featureFlags   *featureflags.Manager
	sweeper        *scheduler.Scheduler
	maxUpload      int64

	userRepo repository.UserRepository

	authService         *service.AuthService
	userService         *service.UserService
	providerService     *service.ProviderService
	jobService          *service.JobService
	applicationService  *service.ApplicationService
	notificationService *service.NotificationService
	complaintService    *service.ComplaintService
	adminService        *service.AdminService
}

// NewServer connects to the configured stores and wires every service.
func NewServer(cfg *config.Config) (*Server, error) {
	db, redisClient, err := bootstrap.InitRuntime(cfg)
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps wires the server around an existing database and optional
// Redis client. Tests use it with in-memory sqlite.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	tokens, err := auth.NewTokenService(cfg.JWTSecret, time.Duration(cfg.JWTTTLHours)*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("token service: %w", err)
	}

	userRepo := repository.NewUserRepository(db)
	providerRepo := repository.NewProviderRepository(db)
	jobRepo := repository.NewJobRepository(db)
	appRepo := repository.NewApplicationRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	complaintRepo := repository.NewComplaintRepository(db)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("jobboard-api"),
		tokens:         tokens,
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
		maxUpload:      cfg.MaxUploadBytes(),
		userRepo:       userRepo,
	}

	s.notificationService = service.NewNotificationService(notificationRepo)
	s.authService = service.NewAuthService(userRepo, tokens)
	s.userService = service.NewUserService(userRepo, attachmentRepo)
	s.providerService = service.NewProviderService(providerRepo, userRepo, jobRepo, appRepo, attachmentRepo, s.notificationService)
	s.jobService = service.NewJobService(jobRepo, s.providerService)
	s.applicationService = service.NewApplicationService(appRepo, jobRepo, attachmentRepo, s.providerService, s.notificationService, s.featureFlags)
	s.complaintService = service.NewComplaintService(complaintRepo, s.notificationService)
	s.adminService = service.NewAdminService(userRepo, jobRepo, appRepo)

	sweeper, err := scheduler.New(s.jobService, cfg.JobExpirySchedule)
	if err != nil {
		return nil, fmt.Errorf("job expiry schedule: %w", err)
	}
	s.sweeper = sweeper

	return s, nil
}

// App builds the Fiber application with middleware and routes installed.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}

	// Room for the largest multipart request: every company doc plus a logo.
	bodyLimit := int(s.maxUpload) * (media.MaxCompanyDocs + 2)

	app := fiber.New(fiber.Config{
		AppName:   "Job Board API",
		BodyLimit: bodyLimit,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Message: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
		},
	})

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())

	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	// Context Middleware to propagate Request ID and trace ID
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before anything that can short-circuit so error responses
	// still carry the headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders:    "Content-Disposition",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"message": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Job Board API Metrics",
	}))
	api.Get("/swagger/*", swagger.HandlerDefault)

	authed := s.AuthRequired()
	limiter := middleware.NewLimiter(s.redis, s.config.RateLimitEnabled())
	applicant := RoleRequired(models.RoleApplicant)
	provider := RoleRequired(models.RoleProvider)
	admin := RoleRequired(models.RoleAdmin)

	// Auth & self-service
	authGroup := api.Group("/auth")
	authGroup.Post("/register", limiter.Handler(middleware.RegisterRule), s.Register)
	authGroup.Post("/login", limiter.Handler(middleware.LoginRule), s.Login)
	authGroup.Post("/logout", authed, s.Logout)
	authGroup.Get("/me", authed, s.GetMe)
	authGroup.Get("/me/resume", authed, s.GetMyResume)
	authGroup.Get("/me/profile-image", authed, s.GetMyProfileImage)
	authGroup.Post("/me/profile-image", authed, s.UploadMyProfileImage)
	authGroup.Put("/profile", authed, s.UpdateMyProfile)

	// Jobs: specific routes before /:id
	jobs := api.Group("/jobs")
	jobs.Get("/", s.ListJobs)
	jobs.Get("/provider/jobs", authed, provider, s.ListMyJobs)
	jobs.Post("/", authed, provider, s.CreateJob)
	jobs.Get("/:id", s.GetJob)
	jobs.Put("/:id", authed, provider, s.UpdateJob)
	jobs.Delete("/:id", authed, provider, s.DeleteJob)

	// Applications
	apps := api.Group("/applications", authed)
	apps.Post("/", applicant, limiter.Handler(middleware.ApplyRule), s.CreateApplication)
	apps.Get("/", applicant, s.ListMyApplications)
	apps.Get("/stats/user", applicant, s.GetMyApplicationStats)
	apps.Get("/:id/resume", s.DownloadApplicationResume)
	apps.Put("/:id/status", provider, s.UpdateApplicationStatus)
	apps.Get("/:id", s.GetApplication)
	apps.Delete("/:id", s.DeleteApplication)

	// Provider self-service
	prov := api.Group("/provider", authed, provider)
	prov.Get("/profile", s.GetProviderProfile)
	prov.Post("/profile", s.CreateProviderProfile)
	prov.Put("/profile", s.UpdateProviderProfile)
	prov.Post("/profile/resubmit", s.ResubmitProvider)
	prov.Get("/profile/logo", s.GetProviderLogo)
	prov.Delete("/profile/docs/:docId", s.DeleteProviderDoc)
	prov.Get("/applicants", s.ListApplicants)
	prov.Get("/stats", s.GetProviderStats)

	// Notifications
	notes := api.Group("/notifications", authed)
	notes.Get("/", s.ListNotifications)
	notes.Get("/unread/count", s.GetUnreadCount)
	notes.Put("/read/all", s.MarkAllNotificationsRead)
	notes.Put("/:id/read", s.MarkNotificationRead)
	notes.Delete("/:id", s.DeleteNotification)

	// Complaints
	complaints := api.Group("/complaints", authed)
	complaints.Post("/", limiter.Handler(middleware.ComplaintRule), s.CreateComplaint)
	complaints.Get("/", s.ListComplaints)
	complaints.Get("/my-complaints", s.ListMyComplaints)
	complaints.Get("/admin/all", admin, s.ListAllComplaints)
	complaints.Put("/admin/:id/review", admin, s.ReviewComplaint)

	// Admin
	adm := api.Group("/admin", authed, admin)
	adm.Get("/users", s.AdminListUsers)
	adm.Put("/users/:id/status", s.AdminSetUserStatus)
	adm.Get("/stats", s.AdminStats)
	adm.Get("/providers", s.AdminListProviders)
	adm.Get("/providers/:id/docs/:docId", s.AdminDownloadProviderDoc)
	adm.Put("/providers/:id/verify", s.AdminVerifyProvider)
	adm.Put("/providers/:id", s.AdminVerifyProvider)
	adm.Get("/providers/:id", s.AdminGetProvider)
	adm.Get("/jobs", s.AdminListJobs)
	adm.Put("/jobs/:id/deactivate", s.AdminDeactivateJob)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports database and Redis health. Redis is optional, so
// only a configured-but-unreachable Redis fails readiness.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AuthRequired verifies the bearer token, rejects revoked tokens and
// deactivated accounts, and stores the caller's Principal in locals.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := ""
		if parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2); len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			tokenString = strings.TrimSpace(parts[1])
		}
		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthenticatedError("Authorization required"))
		}

		claims, err := s.tokens.Verify(tokenString)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthenticatedError("Invalid or expired token"))
		}

		ctx := c.UserContext()
		revoked, err := cache.IsRevoked(ctx, claims.ID)
		if err != nil {
			middleware.Logger.WarnContext(ctx, "revocation check failed", slog.String("error", err.Error()))
		}
		if revoked {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthenticatedError("Token has been revoked"))
		}

		user, err := s.userRepo.GetByID(ctx, claims.UserID)
		if err != nil {
			if models.IsCode(err, models.CodeNotFound) {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthenticatedError("User not found"))
			}
			return models.RespondError(c, err)
		}
		if !user.IsActive {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Account is deactivated"))
		}

		c.Locals(localUserID, user.ID)
		c.Locals(localClaims, claims)
		c.Locals(localPrincipal, models.Principal{UserID: user.ID, Role: user.Role})
		c.SetUserContext(middleware.WithUserID(ctx, user.ID))

		return c.Next()
	}
}

// RoleRequired rejects callers whose role is not in roles. Must run after AuthRequired.
func RoleRequired(roles ...models.Role) fiber.Handler {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	denied := "Access denied. Required role: " + strings.Join(names, " or ")

	return func(c *fiber.Ctx) error {
		p, ok := c.Locals(localPrincipal).(models.Principal)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthenticatedError("Authorization required"))
		}
		for _, r := range roles {
			if p.Role == r {
				return c.Next()
			}
		}
		return models.RespondWithError(c, fiber.StatusForbidden, models.NewForbiddenError(denied))
	}
}

// Start runs the expiry sweep and blocks serving HTTP.
func (s *Server) Start() error {
	app := s.App()
	s.sweeper.Start()

	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.sweeper != nil {
		s.sweeper.Stop(ctx)
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
