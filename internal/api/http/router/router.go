package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dtroode/numbook-server/internal/api/http/handler"
	"github.com/dtroode/numbook-server/internal/api/http/middleware"
	"github.com/dtroode/numbook-server/internal/logger"
	"github.com/dtroode/numbook-server/internal/model"
)

// bodyLimit caps request bodies. Every endpoint takes small JSON documents.
const bodyLimit = 64 * 1024

// Router wires handlers and middleware into a fiber application.
type Router struct {
	authService    handler.AuthService
	numberService  handler.NumberService
	backupService  handler.BackupService
	contextManager model.ContextManager
	logger         *logger.Logger
}

func New(
	authService handler.AuthService,
	numberService handler.NumberService,
	backupService handler.BackupService,
	contextManager model.ContextManager,
	logger *logger.Logger,
) *Router {
	return &Router{
		authService:    authService,
		numberService:  numberService,
		backupService:  backupService,
		contextManager: contextManager,
		logger:         logger,
	}
}

// Register builds the application with every route mounted under /api.
func (r *Router) Register() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "numbook",
		BodyLimit:             bodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          handler.ErrorHandler(r.logger),
	})

	logging := middleware.NewLogging(r.logger)
	authenticate := middleware.NewAuthenticate(r.authService, r.contextManager, r.logger)

	api := app.Group("/api", logging.Handle)

	r.registerAuthRoutes(api, authenticate)
	r.registerNumberRoutes(api, authenticate)
	r.registerBackupRoutes(api, authenticate)

	return app
}

func (r *Router) registerAuthRoutes(api fiber.Router, authenticate *middleware.Authenticate) {
	h := handler.NewAuth(r.authService, r.contextManager, r.logger)

	auth := api.Group("/auth")
	auth.Post("/login", h.Login)
	auth.Post("/logout", h.Logout)
	auth.Get("/me", h.Me)

	auth.Post("/change-credentials", authenticate.Handle, authenticate.RequireAdmin, h.ChangeCredentials)
	auth.Post("/create-user", authenticate.Handle, authenticate.RequireAdmin, h.CreateUser)
	auth.Get("/users", authenticate.Handle, authenticate.RequireAdmin, h.ListUsers)
	auth.Delete("/users/:id", authenticate.Handle, authenticate.RequireAdmin, h.DeleteUser)
}

func (r *Router) registerNumberRoutes(api fiber.Router, authenticate *middleware.Authenticate) {
	h := handler.NewNumber(r.numberService, r.contextManager, r.logger)

	api.Get("/numbers", authenticate.Handle, h.List)
	api.Post("/numbers", authenticate.Handle, h.Add)
	api.Delete("/numbers/:id", authenticate.Handle, authenticate.RequireAdmin, h.Delete)
	api.Get("/export", authenticate.Handle, h.Export)
}

func (r *Router) registerBackupRoutes(api fiber.Router, authenticate *middleware.Authenticate) {
	h := handler.NewBackup(r.backupService, r.logger)

	api.Post("/backup/trigger", authenticate.Handle, authenticate.RequireAdmin, h.Trigger)
}
