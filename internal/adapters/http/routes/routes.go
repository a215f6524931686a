package routes

import (
	"libraryhub/internal/adapters/http/handlers"
	"libraryhub/internal/adapters/http/middleware"
	"libraryhub/internal/adapters/persistence/reminders"
	"libraryhub/internal/adapters/persistence/repositories"
	"libraryhub/internal/config"
	"libraryhub/internal/core/services"
	"libraryhub/internal/pkg/ratelimit"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
)

// Dependencies are the services shared by the HTTP layer and background jobs
type Dependencies struct {
	Store        repositories.Store
	Views        *middleware.ViewVersions
	Reminders    services.ReminderLog
	AuthLimiter  *ratelimit.FixedWindowLimiter
	Auth         *services.AuthService
	Books        *services.BookService
	Members      *services.MemberService
	Transactions *services.TransactionService
	Reports      *services.ReportService
}

// NewDependencies wires services on top of store. A nil rdb selects the
// in-process reminder log and rate limiter.
func NewDependencies(store repositories.Store, rdb *redis.Client, cfg *config.Config) (*Dependencies, error) {
	views := middleware.NewViewVersions()

	var reminderLog services.ReminderLog = reminders.NewMemoryLog()
	var authLimiter *ratelimit.FixedWindowLimiter
	if rdb != nil {
		reminderLog = reminders.NewRedisLog(rdb, "libraryhub:reminder", cfg.Loans.ReminderTTL)

		limiter, err := ratelimit.NewFixedWindowLimiter(rdb, "libraryhub:auth", middleware.AuthRequestLimit, middleware.AuthRequestWindow)
		if err != nil {
			return nil, err
		}
		authLimiter = limiter
	}

	transactionService := services.NewTransactionService(store, views, reminderLog, cfg.Loans.PeriodDays)

	return &Dependencies{
		Store:        store,
		Views:        views,
		Reminders:    reminderLog,
		AuthLimiter:  authLimiter,
		Auth:         services.NewAuthService(store.Users(), cfg),
		Books:        services.NewBookService(store, views),
		Members:      services.NewMemberService(store, views),
		Transactions: transactionService,
		Reports:      services.NewReportService(store, transactionService, reminderLog),
	}, nil
}

// Setup configures all routes for the application
func Setup(app *fiber.App, deps *Dependencies, cfg *config.Config) error {
	policy, err := middleware.PolicyFromConfig(cfg)
	if err != nil {
		return err
	}

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(deps.Store, cfg)
	authHandler := handlers.NewAuthHandler(deps.Auth, cfg)
	bookHandler := handlers.NewBookHandler(deps.Books)
	memberHandler := handlers.NewMemberHandler(deps.Members)
	transactionHandler := handlers.NewTransactionHandler(deps.Transactions)
	reportHandler := handlers.NewReportHandler(deps.Reports, deps.Transactions)

	// Health check & docs are public under the default policy
	app.Get("/health", healthHandler.HealthCheck)
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Every route below passes through the session guard
	app.Use(middleware.SessionGuard(policy, cfg))
	viewCache := middleware.ViewCache(deps.Views)

	app.Get("/", viewCache, reportHandler.Dashboard)

	setupAuthRoutes(app.Group("/auth"), authHandler, deps)

	books := app.Group("/books", viewCache)
	books.Get("/", bookHandler.List)
	books.Post("/", bookHandler.Create)
	books.Get("/export", bookHandler.Export)
	books.Get("/:id", bookHandler.Get)
	books.Put("/:id", bookHandler.Update)
	books.Delete("/:id", bookHandler.Delete)

	members := app.Group("/members", viewCache)
	members.Get("/", memberHandler.List)
	members.Post("/", memberHandler.Create)
	members.Get("/export", memberHandler.Export)
	members.Get("/:id", memberHandler.Get)
	members.Put("/:id", memberHandler.Update)
	members.Delete("/:id", memberHandler.Delete)

	transactions := app.Group("/transactions", viewCache)
	transactions.Get("/", transactionHandler.List)
	transactions.Get("/export", transactionHandler.Export)
	transactions.Post("/borrow", transactionHandler.Borrow)
	transactions.Get("/:id", transactionHandler.Get)
	transactions.Post("/:id/return", transactionHandler.Return)

	reports := app.Group("/reports", viewCache)
	reports.Get("/", reportHandler.Reports)
	reports.Get("/overdue", reportHandler.Overdue)
	reports.Post("/overdue/:id/reminder", reportHandler.SendReminder)

	return nil
}

// setupAuthRoutes configures login, signup and logout
func setupAuthRoutes(router fiber.Router, authHandler *handlers.AuthHandler, deps *Dependencies) {
	throttle := middleware.AuthRateLimiter(deps.AuthLimiter)

	router.Get("/login", middleware.NoCacheHeaders(), authHandler.LoginPage)
	router.Post("/login", throttle, authHandler.Login)
	router.Get("/signup", middleware.NoCacheHeaders(), authHandler.SignupPage)
	router.Post("/signup", throttle, authHandler.Signup)
	router.Post("/logout", authHandler.Logout)
}
