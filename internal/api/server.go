package api

import (
	"errors"
	"fmt"
	"net"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rxtech-lab/recipes-mcp/internal/api/middleware"
	"github.com/rxtech-lab/recipes-mcp/internal/lifecycle"
	"github.com/rxtech-lab/recipes-mcp/internal/mcp"
	"github.com/rxtech-lab/recipes-mcp/internal/server"
	"go.uber.org/zap"
)

type APIServer struct {
	app       *fiber.App
	services  *server.Services
	mcpServer *mcp.MCPServer
	validate  *validator.Validate
	logger    *zap.Logger
	port      int
}

func NewAPIServer(svcs *server.Services) *APIServer {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	// Add middleware
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
		Output:     zap.NewStdLog(svcs.Logger.Named("http")).Writer(),
	}))

	return &APIServer{
		app:      app,
		services: svcs,
		validate: validator.New(),
		logger:   svcs.Logger.Named("api"),
	}
}

func (s *APIServer) SetupRoutes() {
	// Template catalog
	s.app.Get("/api/templates", s.handleListTemplates)
	s.app.Get("/api/templates/:id", s.handleGetTemplate)
	s.app.Get("/api/templates/:id/compile", s.handleCompileTemplate)
	s.app.Get("/api/templates/:id/replacement", s.handleResolveReplacement)

	// Action sessions
	sessions := s.app.Group("/api/sessions")
	sessions.Post("/", s.handleStartSession)
	sessions.Get("/:id", s.handleGetSession)
	sessions.Post("/:id/select", s.handleSelectTemplate)
	sessions.Post("/:id/deprecation", s.handleToggleDeprecation)
	sessions.Post("/:id/replacement", s.handleUseReplacement)
	sessions.Post("/:id/configure", s.handleConfigure)
	sessions.Get("/:id/review", s.handleReview)
	sessions.Post("/:id/execute", s.handleExecute)

	// Client-side telemetry
	s.app.Post("/api/telemetry", s.handleTrackEvent)

	// Operator endpoints
	admin := s.app.Group("/api/admin", middleware.AuthMiddleware(middleware.AuthConfig{
		Secret: s.services.Config.Admin.JWTSecret,
	}))
	admin.Post("/reload", s.handleReload)
	admin.Put("/templates", s.handlePublishTemplates)
	admin.Get("/telemetry", s.handleListEvents)

	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Health check
	s.app.Get("/health", func(c *fiber.Ctx) error {
		reg := s.services.Registry
		if !reg.Ready() {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "loading"})
		}
		return c.JSON(fiber.Map{
			"status":    "ok",
			"templates": reg.Snapshot().Len(),
			"version":   reg.Version(),
		})
	})
}

// EnableStreamableHttp mounts the MCP server on /mcp. SetMCPServer must be called first.
func (s *APIServer) EnableStreamableHttp() error {
	if s.mcpServer == nil {
		return errors.New("mcp server is not set")
	}
	s.app.All("/mcp", adaptor.HTTPHandler(s.mcpServer.StreamableHTTPServer()))
	return nil
}

// Start starts the server on port, or on a random available port when port is nil
func (s *APIServer) Start(port *int) (int, error) {
	listener, err := net.Listen("tcp", addr(port))
	if err != nil {
		return 0, fmt.Errorf("failed to listen: %w", err)
	}
	s.port = listener.Addr().(*net.TCPAddr).Port

	go func() {
		if err := s.app.Listener(listener); err != nil {
			s.logger.Error("API server stopped", zap.Error(err))
		}
	}()

	return s.port, nil
}

func addr(port *int) string {
	if port == nil {
		return ":0"
	}
	return fmt.Sprintf(":%d", *port)
}

func (s *APIServer) Shutdown() error {
	return s.app.Shutdown()
}

func (s *APIServer) GetPort() int {
	return s.port
}

// GetFiberApp exposes the app for adaptors and app.Test
func (s *APIServer) GetFiberApp() *fiber.App {
	return s.app
}

// SetMCPServer sets the MCP server instance served on /mcp
func (s *APIServer) SetMCPServer(mcpServer *mcp.MCPServer) {
	s.mcpServer = mcpServer
}

// GetMCPServer returns the MCP server instance
func (s *APIServer) GetMCPServer() *mcp.MCPServer {
	return s.mcpServer
}

func (s *APIServer) resolver() *lifecycle.Resolver {
	return lifecycle.NewResolver(s.services.Registry)
}
