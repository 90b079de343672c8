package main

import (
	"fmt"
	"os"
	"time"

	"github.com/cnosuke/pagemeta/api"
	"github.com/cnosuke/pagemeta/config"
	"github.com/cnosuke/pagemeta/internal/logging"
	"github.com/cnosuke/pagemeta/render"
	"github.com/cnosuke/pagemeta/scraper"
	"github.com/cnosuke/pagemeta/server"
	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

var (
	// Version and Revision are replaced when building.
	Version  = "0.0.1"
	Revision = "xxx"
)

const appName = "pagemeta"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func scrapeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "url",
			Aliases: []string{"u"},
			Usage:   "URL of the page to scrape",
		},
		&cli.StringFlag{
			Name:    "style",
			Aliases: []string{"s"},
			Value:   string(render.StyleFull),
			Usage:   "markdown style: full or link",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Value:   string(render.FormatMarkdown),
			Usage:   "output format: markdown or json",
		},
		&cli.IntFlag{
			Name:    "timeout",
			Aliases: []string{"t"},
			Usage:   "request timeout in seconds (default from config)",
		},
		&cli.StringFlag{
			Name:  "user-agent",
			Usage: "User-Agent header (default from config)",
		},
		&cli.BoolFlag{
			Name:  "cleanup-tracking",
			Usage: "remove tracking query parameters before fetching (default from config)",
		},
		&cli.BoolFlag{
			Name:  "no-cleanup-tracking",
			Usage: "keep tracking query parameters",
		},
	}
}

func newApp() *cli.App {
	var (
		cfg     *config.Config
		cleanup func()
	)

	return &cli.App{
		Name:    appName,
		Usage:   "Summarize a web page as a markdown link or JSON record",
		Version: fmt.Sprintf("%s (%s)", Version, Revision),
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the YAML config file",
			},
		}, scrapeFlags()...),
		Before: func(c *cli.Context) error {
			var err error
			cfg, err = config.LoadConfig(c.String("config"))
			if err != nil {
				return err
			}
			cleanup, err = logging.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.Path)
			return err
		},
		After: func(c *cli.Context) error {
			if cleanup != nil {
				cleanup()
			}
			return nil
		},
		Action: func(c *cli.Context) error {
			return runScrape(c, cfg)
		},
		Commands: []*cli.Command{
			{
				Name:  "scrape",
				Usage: "Scrape a single page and print the summary",
				Flags: scrapeFlags(),
				Action: func(c *cli.Context) error {
					return runScrape(c, cfg)
				},
			},
			{
				Name:  "mcp",
				Usage: "Serve the scrape tool over MCP stdio",
				Action: func(c *cli.Context) error {
					return server.Run(cfg, appName, Version, Revision)
				},
			},
			{
				Name:  "serve",
				Usage: "Serve the HTTP API",
				Action: func(c *cli.Context) error {
					return api.Run(cfg)
				},
			},
		},
	}
}

func runScrape(c *cli.Context, cfg *config.Config) error {
	rawURL := c.String("url")
	if rawURL == "" {
		return errors.New(`required flag "url" not set`)
	}
	style, err := render.ParseStyle(c.String("style"))
	if err != nil {
		return err
	}
	format, err := render.ParseFormat(c.String("format"))
	if err != nil {
		return err
	}

	opts := scraper.DefaultOptions(cfg)
	if c.IsSet("timeout") {
		opts.Timeout = time.Duration(c.Int("timeout")) * time.Second
	}
	if ua := c.String("user-agent"); ua != "" {
		opts.UserAgent = ua
	}
	if c.IsSet("cleanup-tracking") {
		opts.StripTracking = c.Bool("cleanup-tracking")
	}
	if c.Bool("no-cleanup-tracking") {
		opts.StripTracking = false
	}

	s, err := scraper.NewFromConfig(cfg)
	if err != nil {
		return err
	}

	zap.S().Debugw("scraping", "url", rawURL, "style", style, "format", format)
	page, err := s.Scrape(c.Context, rawURL, opts)
	if err != nil {
		return err
	}
	return render.Write(c.App.Writer, page, style, format)
}
