package handler

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/rxtech-lab/recipes-mcp/internal/api"
	"github.com/rxtech-lab/recipes-mcp/internal/config"
	"github.com/rxtech-lab/recipes-mcp/internal/mcp"
	"github.com/rxtech-lab/recipes-mcp/internal/server"
)

var (
	apiServer *api.APIServer
	initOnce  sync.Once
	initErr   error
)

// Handler is the main Vercel function handler
func Handler(w http.ResponseWriter, r *http.Request) {
	initOnce.Do(func() {
		initErr = initializeAPIServer()
	})
	if initErr != nil {
		log.Printf("Failed to initialize API server: %v", initErr)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	adaptor.FiberApp(apiServer.GetFiberApp())(w, r)
}

func initializeAPIServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	// Vercel only allows writes under /tmp
	if os.Getenv("VERCEL") == "1" && cfg.DB.Driver == "sqlite" {
		cfg.DB.Path = "/tmp/recipes.db"
	}
	// Function instances do not live long enough for a file watcher.
	cfg.Templates.Watch = false

	logger, err := cfg.NewLogger(true)
	if err != nil {
		return err
	}

	dbService, err := server.OpenDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	svcs, err := server.InitializeServices(context.Background(), cfg, dbService.GetDB(), logger)
	if err != nil {
		return err
	}

	apiServer = api.NewAPIServer(svcs)
	apiServer.SetupRoutes()
	apiServer.SetMCPServer(mcp.NewMCPServer(svcs.ToolDeps()))
	if err := apiServer.EnableStreamableHttp(); err != nil {
		return err
	}

	apiServer.GetFiberApp().Get("/", func(c *fiber.Ctx) error {
		return c.JSON(map[string]interface{}{
			"message": "Recipes MCP API",
			"status":  "running",
			"version": "1.0.0",
		})
	})

	return nil
}
