package main

import (
	"context"
	"flag"
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

// Build information (set via ldflags)
var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildTime  = "unknown"
)

func configureAndStartServer(ctx context.Context, cfg *config.Config, dbService services.DBService, logger *zap.Logger, port int) (*api.APIServer, *server.Services, int, error) {
	svcs, err := server.InitializeServices(ctx, cfg, dbService.GetDB(), logger)
	if err != nil {
		return nil, nil, 0, err
	}

	// The local API has no streamable MCP endpoint; stdio is the MCP transport.
	apiServer := api.NewAPIServer(svcs)
	apiServer.SetupRoutes()
	apiServer.SetMCPServer(mcp.NewMCPServer(svcs.ToolDeps()))

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
	// Command line flags
	var showVersion = flag.Bool("version", false, "Show version information")
	var showHelp = flag.Bool("help", false, "Show help information")
	var enableLog = flag.Bool("log", false, "Enable logging output")
	flag.Parse()

	// stdout carries the MCP protocol, so informational output goes to stderr
	if *showVersion {
		fmt.Fprintf(os.Stderr, "Recipes MCP Server\n")
		fmt.Fprintf(os.Stderr, "Version: %s\n", Version)
		fmt.Fprintf(os.Stderr, "Commit: %s\n", CommitHash)
		fmt.Fprintf(os.Stderr, "Built: %s\n", BuildTime)
		return
	}

	if *showHelp {
		fmt.Fprintf(os.Stderr, "Recipes MCP Server\n\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		fmt.Fprintf(os.Stderr, "  --version    Show version information\n")
		fmt.Fprintf(os.Stderr, "  --help       Show this help message\n")
		fmt.Fprintf(os.Stderr, "  --log        Enable logging output\n\n")
		fmt.Fprintf(os.Stderr, "Description:\n")
		fmt.Fprintf(os.Stderr, "  Curated DeFi action templates: browse, compile and resolve deprecations.\n")
		fmt.Fprintf(os.Stderr, "  Provides 4 MCP tools plus a local HTTP API for the action flow.\n\n")
		fmt.Fprintf(os.Stderr, "Environment:\n")
		fmt.Fprintf(os.Stderr, "  DB_PATH, TEMPLATES_FILE, TEMPLATES_WATCH, ALLOW_DEPRECATION_SIMULATION, LOG_LEVEL\n")
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fatal("Invalid configuration:", err)
	}

	// Logging stays off unless --log is passed
	logger, err := cfg.NewLogger(*enableLog)
	if err != nil {
		fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	dbService, err := server.OpenDatabase(cfg)
	if err != nil {
		fatal("Failed to initialize database:", err)
	}
	defer dbService.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	apiServer, svcs, port, err := configureAndStartServer(ctx, cfg, dbService, logger, 0) // 0 for random port
	if err != nil {
		fatal("Failed to start API server:", err)
	}
	defer svcs.Close()

	logger.Info("API server started", zap.Int("port", port))

	go func() {
		if err := apiServer.GetMCPServer().Start(); err != nil {
			logger.Error("MCP server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down servers")

	if err := apiServer.Shutdown(); err != nil {
		logger.Error("error shutting down API server", zap.Error(err))
	}
}

func fatal(message string, err error) {
	fmt.Fprintln(os.Stderr, message, err)
	os.Exit(1)
}
