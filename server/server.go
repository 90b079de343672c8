package server

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/cnosuke/pagemeta/config"
	"github.com/cnosuke/pagemeta/scraper"
	"github.com/cockroachdb/errors"
)

// NewMCPServer - Create an MCP server with the scrape tool registered
func NewMCPServer(name, version string, s PageScraper, defaults scraper.Options) (*server.MCPServer, error) {
	// Create custom hooks for error handling
	hooks := &server.Hooks{}
	hooks.AddOnError(func(ctx context.Context, id any, method mcp.MCPMethod, message any, err error) {
		zap.S().Errorw("MCP error occurred",
			"id", id,
			"method", method,
			"error", err,
		)
	})

	zap.S().Debugw("creating MCP server",
		"name", name,
		"version", version,
	)
	mcpServer := server.NewMCPServer(
		name,
		version,
		server.WithHooks(hooks),
		server.WithToolCapabilities(false),
	)

	zap.S().Debugw("registering tools")
	if err := RegisterAllTools(mcpServer, s, defaults); err != nil {
		return nil, err
	}
	return mcpServer, nil
}

// Run - Execute the MCP server
func Run(cfg *config.Config, name string, version string, revision string) error {
	zap.S().Infow("starting pagemeta MCP server")

	// Format version string with revision if available
	versionString := version
	if revision != "" && revision != "xxx" {
		versionString = versionString + " (" + revision + ")"
	}

	s, err := scraper.NewFromConfig(cfg)
	if err != nil {
		zap.S().Errorw("failed to create scraper", "error", err)
		return err
	}

	mcpServer, err := NewMCPServer(name, versionString, s, scraper.DefaultOptions(cfg))
	if err != nil {
		zap.S().Errorw("failed to register tools", "error", err)
		return err
	}

	// Start the server with stdio transport
	zap.S().Infow("starting MCP server")
	err = server.ServeStdio(mcpServer)
	if err != nil {
		zap.S().Errorw("failed to start server", "error", err)
		return errors.Wrap(err, "failed to start server")
	}

	// ServeStdio will block until the server is terminated
	zap.S().Infow("server shutting down")
	return nil
}
