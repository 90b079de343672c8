package server

import (
	"github.com/cnosuke/pagemeta/scraper"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterAllTools - Register all tools with the server
func RegisterAllTools(mcpServer *server.MCPServer, s PageScraper, defaults scraper.Options) error {
	// Register scrape tool
	if err := RegisterScrapeTool(mcpServer, s, defaults); err != nil {
		return err
	}

	return nil
}
