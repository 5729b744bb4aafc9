package server

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mansoorceksport/periodize/internal/config"
	"github.com/mansoorceksport/periodize/internal/handler"
	"github.com/mansoorceksport/periodize/internal/middleware"
	"github.com/mansoorceksport/periodize/internal/repository"
	"github.com/mansoorceksport/periodize/internal/service"
)

// AppDependencies holds the dependencies required to start the application.
type AppDependencies struct {
	Config      *config.Config
	MongoDB     *mongo.Database
	RedisClient *redis.Client
}

// NewApp creates and configures the Fiber application with the given
// dependencies.
func NewApp(deps AppDependencies) *fiber.App {
	// Repositories
	templateRepo := repository.NewMongoTemplateRepository(deps.MongoDB)
	programRepo := repository.NewMongoProgramRepository(deps.MongoDB)
	scheduleRepo := repository.NewMongoScheduleRepository(deps.MongoDB)
	sessionRepo := repository.NewMongoSessionRepository(deps.MongoDB)
	maxRepo := repository.NewMongoMaxEstimateRepository(deps.MongoDB)
	exerciseRepo := repository.NewMongoExerciseRepository(deps.MongoDB)
	cacheRepo := repository.NewRedisCacheRepository(deps.RedisClient)

	// Services
	resolver := service.NewWeightResolver(deps.Config.Engine.RoundingIncrement)
	estimator := service.NewOneRepMaxEstimator(maxRepo, deps.Config.Engine.EpleyDivisor, deps.Config.Engine.MaxStaleness)
	expander := service.NewPeriodizationExpander(resolver)
	aggregationService := service.NewAggregationService(sessionRepo, cacheRepo, estimator, deps.Config.Engine.AggregateTTL)
	scheduleService := service.NewScheduleService(scheduleRepo, sessionRepo, templateRepo, programRepo, expander, estimator, aggregationService)
	sessionService := service.NewSessionService(sessionRepo, scheduleRepo, estimator, aggregationService)
	libraryService := service.NewLibraryService(templateRepo, programRepo, exerciseRepo)

	// Handlers
	libraryHandler := handler.NewLibraryHandler(libraryService)
	scheduleHandler := handler.NewScheduleHandler(scheduleService)
	sessionHandler := handler.NewSessionHandler(sessionService)
	analyticsHandler := handler.NewAnalyticsHandler(aggregationService, estimator)
	catalogHandler := handler.NewCatalogHandler(exerciseRepo)

	app := fiber.New(fiber.Config{
		AppName:      "Periodize API",
		ErrorHandler: customErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Correlation-ID",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": "periodize",
		})
	})

	v1 := app.Group("/v1")

	// Exercise catalog (public read)
	v1.Get("/exercises", catalogHandler.List)
	v1.Get("/exercises/:id", catalogHandler.Get)

	// Everything below is user-scoped.
	authed := v1.Group("")
	authed.Use(middleware.VerifyAccessToken(deps.Config.JWT.Secret))
	authed.Use(middleware.Idempotency(deps.RedisClient, deps.Config.Server.IdempotencyTTL))

	templates := authed.Group("/templates")
	templates.Post("/", libraryHandler.CreateTemplate)
	templates.Get("/", libraryHandler.ListTemplates)
	templates.Get("/:id", libraryHandler.GetTemplate)
	templates.Put("/:id", libraryHandler.UpdateTemplate)
	templates.Delete("/:id", libraryHandler.DeleteTemplate)

	programs := authed.Group("/programs")
	programs.Post("/", libraryHandler.CreateProgram)
	programs.Get("/", libraryHandler.ListPrograms)
	programs.Get("/:id", libraryHandler.GetProgram)
	programs.Put("/:id", libraryHandler.UpdateProgram)
	programs.Delete("/:id", libraryHandler.DeleteProgram)
	programs.Post("/:id/expand", scheduleHandler.ExpandProgram)
	programs.Post("/:id/schedule", scheduleHandler.ScheduleProgram)

	schedules := authed.Group("/schedules")
	schedules.Post("/", scheduleHandler.Create)
	schedules.Get("/", scheduleHandler.List)
	schedules.Get("/:id", scheduleHandler.Get)
	schedules.Post("/:id/start", scheduleHandler.Start)
	schedules.Post("/:id/complete", scheduleHandler.Complete)
	schedules.Post("/:id/skip", scheduleHandler.Skip)
	schedules.Post("/:id/cancel", scheduleHandler.Cancel)
	schedules.Patch("/:id/reschedule", scheduleHandler.Reschedule)

	sessions := authed.Group("/sessions")
	sessions.Post("/", sessionHandler.Start)
	sessions.Get("/:id", sessionHandler.Get)
	sessions.Post("/:id/sets", sessionHandler.LogSet)
	sessions.Post("/:id/finalize", sessionHandler.Finalize)
	sessions.Put("/:id/sets", sessionHandler.Correct)

	stats := authed.Group("/stats")
	stats.Get("/period", analyticsHandler.PeriodStats)
	stats.Get("/day", analyticsHandler.DayTotals)
	stats.Get("/progression/:exerciseID", analyticsHandler.Progression)

	maxes := authed.Group("/maxes")
	maxes.Get("/", analyticsHandler.ListMaxes)
	maxes.Get("/:exerciseID", analyticsHandler.GetMax)
	maxes.Put("/:exerciseID", analyticsHandler.SetManualMax)

	return app
}

// EnsureIndexes creates the Mongo indexes the engine relies on, most
// importantly the partial unique index enforcing one active workout per
// (user, date, template) slot.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	if err := repository.NewMongoScheduleRepository(db).EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := repository.NewMongoSessionRepository(db).EnsureIndexes(ctx); err != nil {
		return err
	}
	return repository.NewMongoMaxEstimateRepository(db).EnsureIndexes(ctx)
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	log.Printf("Error: %v", err)
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
