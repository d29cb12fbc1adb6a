// Package main provides the Flowgent API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/flowgent/flowgent/pkg/eventbus"
	"github.com/flowgent/flowgent/pkg/persistence"
	"github.com/flowgent/flowgent/pkg/registry"
	"github.com/flowgent/flowgent/pkg/scope"
	"github.com/flowgent/flowgent/pkg/services"
	"github.com/flowgent/flowgent/pkg/web"
	"github.com/flowgent/flowgent/pkg/workflow"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	registry    *registry.Registry
	eventBus    eventbus.EventBus
	scopes      *scope.Manager
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	registry *registry.Registry,
	eventBus eventbus.EventBus,
	scopes *scope.Manager,
) *API {
	return &API{
		logger:      logger,
		persistence: persistence,
		registry:    registry,
		eventBus:    eventBus,
		scopes:      scopes,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	executor := workflow.NewExecutor(
		a.scopes,
		a.registry,
		a.logger,
		workflow.WithExecutionRepository(a.persistence.ExecutionRepository()),
		workflow.WithEventPublisher(a.eventBus),
	)

	workflowService := services.NewWorkflow(a.persistence)
	executionService := services.NewExecution(a.persistence, executor, a.scopes)

	handlers := web.NewAPIHandlers(workflowService, executionService, a.validate, a.registry)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Flowgent API")
	})

	w := app.Group("/workflows")
	w.Get("/", handlers.GetWorkflows)
	w.Post("/", handlers.CreateWorkflow)
	w.Get("/:id", handlers.GetWorkflow)
	w.Patch("/:id", handlers.UpdateWorkflow)
	w.Delete("/:id", handlers.DeleteWorkflow)
	w.Get("/:id/validate", handlers.ValidateWorkflow)
	w.Post("/:id/publish", handlers.PublishWorkflow)
	w.Post("/:id/unpublish", handlers.UnpublishWorkflow)
	w.Post("/:id/execute", handlers.ExecuteWorkflow)
	w.Get("/:id/executions", handlers.GetExecutionHistory)

	e := app.Group("/executions")
	e.Get("/:id", handlers.GetExecution)
	e.Post("/:id/cancel", handlers.CancelExecution)

	app.Get("/scopes/:id/variables", handlers.GetScopeVariables)
	app.Get("/access-logs", handlers.GetAccessLogs)
	app.Get("/node-types", handlers.GetNodeTypes)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	return a.App().Listen(":" + strconv.Itoa(port))
}
