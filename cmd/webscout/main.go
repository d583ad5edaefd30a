package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/mycok/webscout/app"
	"github.com/mycok/webscout/config"
)

var (
	appName = "webscout"
	appSHA  = "latest-app-git-sha" // Populated by the compiler at the linking stage.

	rootLogger = logrus.New()
	logger     *logrus.Entry
	appConfig  config.Config
)

func main() {
	host, _ := os.Hostname()
	logger = rootLogger.WithFields(logrus.Fields{
		"app":  appName,
		"sha":  appSHA,
		"host": host,
	})

	if err := newCLI().Run(os.Args); err != nil {
		logger.WithField("err", err).Error("shutting down due to an error")
		_ = os.Stderr.Sync()

		os.Exit(1)
	}
}

func newCLI() *cli.App {
	app := cli.NewApp()
	app.Name = appName
	app.Usage = "crawl, index and search the web"
	app.Version = appSHA
	app.Flags = globalFlags()
	app.Before = configure
	app.Commands = []*cli.Command{
		serveCommand(),
		crawlCommand(),
		searchCommand(),
		enginesCommand(),
		mcpCommand(),
	}

	return app
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			EnvVars: []string{"WEBSCOUT_CONFIG"},
			Usage:   "Path to a YAML (.yaml, .yml) or TOML (.toml) configuration file",
		},
		&cli.StringFlag{
			Name:    "text-index-uri",
			EnvVars: []string{"WEBSCOUT_TEXT_INDEX_URI"},
			Usage: "URI for connecting to a text-index data store." +
				" [supported URI's: in-memory://, es://node1:9200,...,nodeN:9200," +
				" postgresql://user@host:5432/webscout?sslmode=disable, sqlite:///path/to/index.db]",
		},
		&cli.BoolFlag{
			Name:    "es-sync-updates",
			EnvVars: []string{"WEBSCOUT_ES_SYNC_UPDATES"},
			Usage:   "Refresh the Elasticsearch index after every write",
		},
		&cli.StringFlag{
			Name:    "log-level",
			EnvVars: []string{"WEBSCOUT_LOG_LEVEL"},
			Usage:   "Minimum log level: trace, debug, info, warn or error",
		},
		&cli.StringFlag{
			Name:    "log-format",
			EnvVars: []string{"WEBSCOUT_LOG_FORMAT"},
			Usage:   "Log output format: text or json",
		},
		&cli.StringFlag{
			Name:    "listen-addr",
			EnvVars: []string{"WEBSCOUT_LISTEN_ADDR"},
			Usage:   "Address to listen on for incoming front-end requests",
		},
		&cli.DurationFlag{
			Name:    "crawl-interval",
			EnvVars: []string{"WEBSCOUT_CRAWL_INTERVAL"},
			Usage:   "Time between subsequent crawl cycles",
		},
		&cli.StringSliceFlag{
			Name:    "seed",
			EnvVars: []string{"WEBSCOUT_SEEDS"},
			Usage:   "Seed URL to crawl (repeatable)",
		},
		&cli.StringFlag{
			Name:    "seed-file",
			EnvVars: []string{"WEBSCOUT_SEED_FILE"},
			Usage:   "File with one seed URL per line; changes are picked up while serving",
		},
		&cli.StringFlag{
			Name:    "extractor",
			EnvVars: []string{"WEBSCOUT_EXTRACTOR"},
			Usage:   "Content extraction mode: selector, markup or readability",
		},
		&cli.BoolFlag{
			Name:    "dedup-by-url",
			EnvVars: []string{"WEBSCOUT_DEDUP_BY_URL"},
			Usage:   "Replace previously indexed documents when a URL is re-crawled",
		},
		&cli.BoolFlag{
			Name:    "ignore-robots",
			EnvVars: []string{"WEBSCOUT_IGNORE_ROBOTS"},
			Usage:   "Do not consult robots.txt before fetching",
		},
	}
}

// configure loads the configuration file, applies flag overrides and sets
// up the root logger accordingly.
func configure(c *cli.Context) error {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return err
		}
	}

	applyFlags(c, &cfg)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level, _ := logrus.ParseLevel(cfg.Log.Level)
	rootLogger.SetLevel(level)
	if cfg.Log.Format == "json" {
		rootLogger.SetFormatter(new(logrus.JSONFormatter))
	} else {
		rootLogger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	appConfig = cfg

	return nil
}

func applyFlags(c *cli.Context, cfg *config.Config) {
	if c.IsSet("text-index-uri") {
		cfg.TextIndexURI = c.String("text-index-uri")
	}
	if c.IsSet("es-sync-updates") {
		cfg.ESSyncUpdates = c.Bool("es-sync-updates")
	}
	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}
	if c.IsSet("log-format") {
		cfg.Log.Format = c.String("log-format")
	}
	if c.IsSet("listen-addr") {
		cfg.HTTP.ListenAddr = c.String("listen-addr")
	}
	if c.IsSet("crawl-interval") {
		cfg.Crawl.Interval = config.Duration{Duration: c.Duration("crawl-interval")}
	}
	if c.IsSet("seed") {
		cfg.Crawl.Seeds = c.StringSlice("seed")
	}
	if c.IsSet("seed-file") {
		cfg.Crawl.SeedFile = c.String("seed-file")
	}
	if c.IsSet("extractor") {
		cfg.Crawl.Extractor = c.String("extractor")
	}
	if c.IsSet("dedup-by-url") {
		cfg.Crawl.DedupByURL = c.Bool("dedup-by-url")
	}
	if c.IsSet("ignore-robots") {
		cfg.Crawl.IgnoreRobots = c.Bool("ignore-robots")
	}
}

// withApp builds the application for the duration of fn.
func withApp(fn func(ctx context.Context, a *app.App) error) cli.ActionFunc {
	return runApp(app.New, fn)
}

// withExternalApp is like withApp but only wires the external search
// components, leaving the text index closed.
func withExternalApp(fn func(ctx context.Context, a *app.App) error) cli.ActionFunc {
	return runApp(app.NewExternal, fn)
}

func runApp(
	newApp func(config.Config, *logrus.Entry) (*app.App, error),
	fn func(ctx context.Context, a *app.App) error,
) cli.ActionFunc {
	return func(_ *cli.Context) error {
		a, err := newApp(appConfig, logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := a.Close(); err != nil {
				logger.WithField("err", err).Warn("closing text index")
			}
		}()

		ctx, cancelFn := signalContext(context.Background())
		defer cancelFn()

		start := time.Now()
		err = fn(ctx, a)
		logger.WithField("elapsed", time.Since(start).String()).Debug("command finished")

		return err
	}
}

// signalContext returns a context that is cancelled when the process
// receives SIGINT or SIGHUP.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancelFn := context.WithCancel(parent)

	go func() {
		signalChan := make(chan os.Signal, 1)
		signal.Notify(signalChan, syscall.SIGINT, syscall.SIGHUP)
		defer signal.Stop(signalChan)

		select {
		case s := <-signalChan:
			logger.WithField("signal", s.String()).Info("shutting down due to os signal")
			cancelFn()
		case <-ctx.Done():
		}
	}()

	return ctx, cancelFn
}
