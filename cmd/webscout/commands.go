package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/mycok/webscout/app"
	"github.com/mycok/webscout/search"
	"github.com/mycok/webscout/search/external"
	"github.com/mycok/webscout/service"
	"github.com/mycok/webscout/service/frontend"
	"github.com/mycok/webscout/service/mcptools"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the crawl scheduler and the HTTP front end",
		Action: withApp(func(ctx context.Context, a *app.App) error {
			fe, err := frontend.New(frontend.Config{
				IndexSearcher:  a.Engine,
				EngineSearcher: a.Engines,
				CrawlStats:     a.Scheduler,
				ListenAddr:     a.Config.HTTP.ListenAddr,
				Logger:         logger.WithField("service", "frontend"),
			})
			if err != nil {
				return err
			}

			group := service.Group{a.Scheduler, fe}
			if w := a.SeedWatcher(); w != nil {
				group = append(group, w)
			}

			if err = group.Execute(ctx); err != nil {
				return err
			}

			logger.Info("shutdown complete")

			return nil
		}),
	}
}

func crawlCommand() *cli.Command {
	return &cli.Command{
		Name:  "crawl",
		Usage: "Crawl the seed URLs on the configured interval",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "once",
				Usage: "Run a single crawl cycle, print its report and exit",
			},
		},
		Action: func(c *cli.Context) error {
			return withApp(func(ctx context.Context, a *app.App) error {
				if c.Bool("once") {
					rep, err := a.Scheduler.RunCycle(ctx)
					if err != nil {
						return err
					}

					return newPrinter(c.App.Writer, isTerminal(os.Stdout)).report(rep)
				}

				group := service.Group{a.Scheduler}
				if w := a.SeedWatcher(); w != nil {
					group = append(group, w)
				}

				return group.Execute(ctx)
			})(c)
		},
	}
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search the local text index",
		ArgsUsage: "<keyword>",
		Flags:     pageFlags(0),
		Action: func(c *cli.Context) error {
			keyword := strings.Join(c.Args().Slice(), " ")

			return withApp(func(ctx context.Context, a *app.App) error {
				if c.Bool("browse") {
					sess := search.NewSession(a.Engine, c.Int("size"))

					return browse(ctx, sess, keyword, c.App.Reader, newPrinter(c.App.Writer, true))
				}

				page, err := a.Engine.Search(keyword, c.Int("page"), c.Int("size"))
				if err != nil {
					return err
				}

				return newPrinter(c.App.Writer, isTerminal(os.Stdout)).page(page)
			})(c)
		},
	}
}

func enginesCommand() *cli.Command {
	flags := append([]cli.Flag{
		&cli.StringFlag{
			Name:  "engine",
			Usage: "External engine to query (defaults to the configured engine)",
		},
		&cli.IntFlag{
			Name:  "pages",
			Usage: "Number of engine result pages to fetch",
		},
		&cli.StringFlag{
			Name:  "filter",
			Usage: "Result field the engine filters on",
		},
		&cli.BoolFlag{
			Name:  "ignore-duplicates",
			Usage: "Ask the engine to drop duplicate results",
		},
		&cli.StringFlag{
			Name:  "proxy",
			Usage: "Proxy URL for the engine requests",
		},
	}, pageFlags(10)...)

	return &cli.Command{
		Name:      "engines",
		Usage:     "Search the web through an external search engine",
		ArgsUsage: "<keyword>",
		Flags:     flags,
		Action: func(c *cli.Context) error {
			req := external.Request{
				Keyword:          strings.Join(c.Args().Slice(), " "),
				Engine:           c.String("engine"),
				MaxPages:         c.Int("pages"),
				FilterField:      c.String("filter"),
				IgnoreDuplicates: c.Bool("ignore-duplicates"),
				Proxy:            c.String("proxy"),
			}

			return withExternalApp(func(ctx context.Context, a *app.App) error {
				if c.Bool("browse") {
					// A pager of its own keeps the flag values for every
					// search of the session.
					sess := search.NewSession(external.NewPager(a.Aggregator, req), c.Int("size"))

					return browse(ctx, sess, req.Keyword, c.App.Reader, newPrinter(c.App.Writer, true))
				}

				page, err := a.Engines.Search(ctx, req, c.Int("page"), c.Int("size"))
				if err != nil {
					return err
				}

				return newPrinter(c.App.Writer, isTerminal(os.Stdout)).page(page)
			})(c)
		},
	}
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the search tools to MCP clients over stdio",
		Action: withApp(func(ctx context.Context, a *app.App) error {
			srv, err := mcptools.New(mcptools.Config{
				IndexSearcher:  a.Engine,
				EngineSearcher: a.Engines,
				Version:        appSHA,
				Logger:         logger.WithField("service", "mcp-tools"),
			})
			if err != nil {
				return err
			}

			if err = srv.Run(ctx); err != nil && ctx.Err() == nil {
				return fmt.Errorf("mcp: %w", err)
			}

			return nil
		}),
	}
}

func pageFlags(defaultSize int) []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "page",
			Value: 1,
			Usage: "1-based page number",
		},
		&cli.IntFlag{
			Name:  "size",
			Value: defaultSize,
			Usage: "Number of results per page (0 uses the configured default)",
		},
		&cli.BoolFlag{
			Name:  "browse",
			Usage: "Page through the results interactively, reading commands from stdin",
		},
	}
}
