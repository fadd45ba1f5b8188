package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/rxtech-lab/recipes-mcp/internal/api"
	"github.com/rxtech-lab/recipes-mcp/internal/config"
	"github.com/rxtech-lab/recipes-mcp/internal/server"
	"github.com/rxtech-lab/recipes-mcp/internal/services"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type StreamableHTTPTestSuite struct {
	suite.Suite
	db        services.DBService
	svcs      *server.Services
	apiServer *api.APIServer
	port      int
}

func (suite *StreamableHTTPTestSuite) SetupSuite() {
	cfg := &config.Config{
		DB:        config.DBConfig{Driver: "sqlite", Path: ":memory:"},
		Templates: config.TemplatesConfig{Source: "embedded", AllowDeprecationSimulation: true},
		Log:       config.LogConfig{Level: "info"},
	}
	db, err := services.NewSqliteDBService(":memory:")
	suite.Require().NoError(err)
	suite.db = db

	apiServer, svcs, port, err := configureAndStartServer(context.Background(), cfg, db, zap.NewNop(), 0)
	suite.Require().NoError(err)
	suite.Require().NotZero(port, "Port should not be 0")

	suite.apiServer = apiServer
	suite.svcs = svcs
	suite.port = port

	// Wait for server to be ready
	time.Sleep(100 * time.Millisecond)
}

func (suite *StreamableHTTPTestSuite) TearDownSuite() {
	if suite.apiServer != nil {
		suite.apiServer.Shutdown()
	}
	if suite.svcs != nil {
		suite.svcs.Close()
	}
	if suite.db != nil {
		suite.db.Close()
	}
}

func (suite *StreamableHTTPTestSuite) getBaseURL() string {
	return fmt.Sprintf("http://localhost:%d", suite.port)
}

func (suite *StreamableHTTPTestSuite) TestMCPInitialize() {
	client := &http.Client{Timeout: 10 * time.Second}

	mcpRequest := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "initialize",
		"params": map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities":    map[string]interface{}{},
			"clientInfo": map[string]interface{}{
				"name":    "test-client",
				"version": "1.0.0",
			},
		},
	}

	requestBody, err := json.Marshal(mcpRequest)
	suite.Require().NoError(err)

	req, err := http.NewRequest("POST", suite.getBaseURL()+"/mcp", bytes.NewBuffer(requestBody))
	suite.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")

	resp, err := client.Do(req)
	suite.Require().NoError(err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	suite.Require().NoError(err)
	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.Contains(string(body), "Recipes MCP Server")
}

func (suite *StreamableHTTPTestSuite) TestHealth() {
	resp, err := http.Get(suite.getBaseURL() + "/health")
	suite.Require().NoError(err)
	defer resp.Body.Close()
	suite.Equal(http.StatusOK, resp.StatusCode)
}

func TestStreamableHTTPTestSuite(t *testing.T) {
	suite.Run(t, new(StreamableHTTPTestSuite))
}
