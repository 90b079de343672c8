package server

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cnosuke/pagemeta/scraper"
	"github.com/cnosuke/pagemeta/types"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// PageScraper is the part of *scraper.Scraper used by the tools.
type PageScraper interface {
	Scrape(ctx context.Context, rawURL string, opts scraper.Options) (*types.ScrapedPage, error)
}

// NewScrapeTool - Define the scrape tool
func NewScrapeTool(defaults scraper.Options) mcp.Tool {
	return mcp.NewTool("scrape",
		mcp.WithDescription("Fetches a web page and returns its title, canonical URL, description and language as JSON."),
		mcp.WithString("url",
			mcp.Description("HTTP or HTTPS URL to scrape"),
			mcp.Required(),
		),
		mcp.WithBoolean("strip_tracking",
			mcp.Description(fmt.Sprintf("Remove tracking query parameters before fetching (default %t)", defaults.StripTracking)),
		),
		mcp.WithNumber("timeout",
			mcp.Description(fmt.Sprintf("Request timeout in seconds (default %g)", defaults.Timeout.Seconds())),
		),
	)
}

// RegisterScrapeTool - Register the scrape tool
func RegisterScrapeTool(mcpServer *server.MCPServer, s PageScraper, defaults scraper.Options) error {
	zap.S().Debugw("registering scrape tool")
	mcpServer.AddTool(NewScrapeTool(defaults), scrapeHandler(s, defaults))
	return nil
}

func scrapeHandler(s PageScraper, defaults scraper.Options) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		opts := defaults
		opts.StripTracking = request.GetBool("strip_tracking", defaults.StripTracking)
		if seconds := request.GetFloat("timeout", 0); seconds > 0 {
			opts.Timeout = time.Duration(seconds * float64(time.Second))
		}

		zap.S().Infow("executing scrape",
			"url", url,
			"strip_tracking", opts.StripTracking,
			"timeout", opts.Timeout)

		page, err := s.Scrape(ctx, url, opts)
		if err != nil {
			kind := types.KindOf(err)
			zap.S().Warnw("scrape failed",
				"url", url,
				"kind", kind.String(),
				"error", err)
			return mcp.NewToolResultError(fmt.Sprintf("[%s] %s", kind, err.Error())), nil
		}

		jsonResponse, err := json.Marshal(page)
		if err != nil {
			zap.S().Errorw("failed to marshal response to JSON",
				"error", err)
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response to JSON: %s", err.Error())), nil
		}

		return mcp.NewToolResultText(string(jsonResponse)), nil
	}
}
