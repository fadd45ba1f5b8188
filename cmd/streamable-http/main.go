package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload" // Automatically load .env file if present
	"github.com/rxtech-lab/recipes-mcp/internal/api"
	"github.com/rxtech-lab/recipes-mcp/internal/config"
	"github.com/rxtech-lab/recipes-mcp/internal/mcp"
	"github.com/rxtech-lab/recipes-mcp/internal/server"
	"github.com/rxtech-lab/recipes-mcp/internal/services"
	"go.uber.org/zap"
)

func configureAndStartServer(ctx context.Context, cfg *config.Config, dbService services.DBService, logger *zap.Logger, port int) (*api.APIServer, *server.Services, int, error) {
	svcs, err := server.InitializeServices(ctx, cfg, dbService.GetDB(), logger)
	if err != nil {
		return nil, nil, 0, err
	}

	mcpServer := mcp.NewMCPServer(svcs.ToolDeps())
	apiServer := api.NewAPIServer(svcs)
	apiServer.SetupRoutes()
	apiServer.SetMCPServer(mcpServer)
	if err := apiServer.EnableStreamableHttp(); err != nil {
		_ = svcs.Close()
		return nil, nil, 0, err
	}

	var portPtr *int
	if port != 0 {
		portPtr = &port
	}
	startedPort, err := apiServer.Start(portPtr)
	if err != nil {
		_ = svcs.Close()
		return nil, nil, 0, err
	}
	return apiServer, svcs, startedPort, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Invalid configuration:", err)
		os.Exit(1)
	}

	logger, err := cfg.NewLogger(true)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to initialize logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	dbService, err := server.OpenDatabase(cfg)
	if err != nil {
		logger.Fatal("failed to initialize database service", zap.Error(err))
	}
	defer dbService.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	apiServer, svcs, port, err := configureAndStartServer(ctx, cfg, dbService, logger, cfg.Server.Port)
	if err != nil {
		logger.Fatal("failed to start API server", zap.Error(err))
	}
	defer svcs.Close()

	logger.Info("API server started",
		zap.Int("port", port),
		zap.String("db_driver", cfg.DB.Driver),
		zap.String("templates_source", cfg.Templates.Source),
	)

	<-ctx.Done()
	logger.Info("shutting down server")

	if err := apiServer.Shutdown(); err != nil {
		logger.Error("error shutting down API server", zap.Error(err))
	}
	logger.Info("server shut down successfully")
}
