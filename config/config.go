// Package config loads webscout settings from YAML or TOML files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/mycok/webscout/crawler"
	"github.com/mycok/webscout/crawler/extract"
)

// Duration is a time.Duration written as a string such as "90s" or "1h".
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v

	return nil
}

// MarshalText formats the duration as a string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config holds every setting of the webscout binary.
type Config struct {
	TextIndexURI  string `yaml:"text_index_uri" toml:"text_index_uri"`
	ESSyncUpdates bool   `yaml:"es_sync_updates" toml:"es_sync_updates"`

	Log      LogConfig      `yaml:"log" toml:"log"`
	Crawl    CrawlConfig    `yaml:"crawl" toml:"crawl"`
	Search   SearchConfig   `yaml:"search" toml:"search"`
	External ExternalConfig `yaml:"external" toml:"external"`
	HTTP     HTTPConfig     `yaml:"http" toml:"http"`
}

// LogConfig configures the root logger.
type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// CrawlConfig configures the crawler and its scheduler.
type CrawlConfig struct {
	Interval        Duration `yaml:"interval" toml:"interval"`
	Seeds           []string `yaml:"seeds" toml:"seeds"`
	SeedFile        string   `yaml:"seed_file" toml:"seed_file"`
	Delay           Duration `yaml:"delay" toml:"delay"`
	IgnoreRobots    bool     `yaml:"ignore_robots" toml:"ignore_robots"`
	RobotsTTL       Duration `yaml:"robots_ttl" toml:"robots_ttl"`
	UserAgent       string   `yaml:"user_agent" toml:"user_agent"`
	Workers         int      `yaml:"workers" toml:"workers"`
	FetchTimeout    Duration `yaml:"fetch_timeout" toml:"fetch_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout" toml:"shutdown_timeout"`
	MaxBodyBytes    int64    `yaml:"max_body_bytes" toml:"max_body_bytes"`
	Extractor       string   `yaml:"extractor" toml:"extractor"`
	DedupByURL      bool     `yaml:"dedup_by_url" toml:"dedup_by_url"`
}

// SearchConfig configures the local query engine.
type SearchConfig struct {
	PageSize         int     `yaml:"page_size" toml:"page_size"`
	MaxPageSize      int     `yaml:"max_page_size" toml:"max_page_size"`
	MaxSummaryLength int     `yaml:"max_summary_length" toml:"max_summary_length"`
	TitleBoost       float64 `yaml:"title_boost" toml:"title_boost"`
}

// ExternalConfig configures the external engine aggregator.
type ExternalConfig struct {
	Command          []string `yaml:"command" toml:"command"`
	WorkDir          string   `yaml:"work_dir" toml:"work_dir"`
	Engine           string   `yaml:"engine" toml:"engine"`
	BaseName         string   `yaml:"base_name" toml:"base_name"`
	Pages            int      `yaml:"pages" toml:"pages"`
	Filter           string   `yaml:"filter" toml:"filter"`
	IgnoreDuplicates bool     `yaml:"ignore_duplicates" toml:"ignore_duplicates"`
	Proxy            string   `yaml:"proxy" toml:"proxy"`
	Timeout          Duration `yaml:"timeout" toml:"timeout"`
	KeepDuplicates   bool     `yaml:"keep_duplicates" toml:"keep_duplicates"`
}

// HTTPConfig configures the HTTP front end.
type HTTPConfig struct {
	ListenAddr string `yaml:"listen_addr" toml:"listen_addr"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		TextIndexURI: "in-memory://",
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Crawl: CrawlConfig{
			Interval:        Duration{time.Hour},
			Delay:           Duration{2 * time.Second},
			RobotsTTL:       Duration{24 * time.Hour},
			UserAgent:       crawler.DefaultUserAgent,
			Workers:         runtime.NumCPU(),
			FetchTimeout:    Duration{30 * time.Second},
			ShutdownTimeout: Duration{30 * time.Second},
			MaxBodyBytes:    10 << 20,
			Extractor:       extract.ModeSelector,
		},
		Search: SearchConfig{
			PageSize:         10,
			MaxPageSize:      100,
			MaxSummaryLength: 256,
			TitleBoost:       2.0,
		},
		External: ExternalConfig{
			Command:  []string{"python", "search_engines_cli.py"},
			Engine:   "bing",
			BaseName: "output",
			Pages:    5,
			Filter:   "title",
			Timeout:  Duration{2 * time.Minute},
		},
		HTTP: HTTPConfig{
			ListenAddr: ":8080",
		},
	}
}

// Load reads the file at path on top of the defaults. The format is picked
// from the extension: .yaml, .yml or .toml.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	default:
		return cfg, fmt.Errorf("config: unsupported file extension %q", ext)
	}
	if err != nil {
		return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	if err = cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}

	return cfg, nil
}

// Validate reports every invalid setting in cfg.
func (cfg Config) Validate() error {
	var err error

	if cfg.TextIndexURI == "" {
		err = multierror.Append(err, fmt.Errorf("text index URI not provided"))
	}

	if cfg.Crawl.Interval.Duration <= 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value for crawl interval, must be > 0"))
	}

	if cfg.Crawl.Delay.Duration < 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value for crawl delay, must be >= 0"))
	}

	if cfg.Crawl.Workers < 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value for crawl workers, must be >= 0"))
	}

	if cfg.Crawl.FetchTimeout.Duration < 0 || cfg.Crawl.ShutdownTimeout.Duration < 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value for crawl timeouts, must be >= 0"))
	}

	switch cfg.Crawl.Extractor {
	case "", extract.ModeSelector, extract.ModeMarkup, extract.ModeReadability:
	default:
		err = multierror.Append(err, fmt.Errorf("unknown extractor mode %q", cfg.Crawl.Extractor))
	}

	if cfg.Search.PageSize <= 0 || cfg.Search.PageSize > cfg.Search.MaxPageSize {
		err = multierror.Append(err, fmt.Errorf("invalid value for search page size, must be in [1, %d]", cfg.Search.MaxPageSize))
	}

	if cfg.Search.TitleBoost < 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value for title boost, must be >= 0"))
	}

	if cfg.External.Pages < 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value for external pages, must be >= 0"))
	}

	if _, lvlErr := logrus.ParseLevel(cfg.Log.Level); lvlErr != nil {
		err = multierror.Append(err, lvlErr)
	}

	switch cfg.Log.Format {
	case "text", "json":
	default:
		err = multierror.Append(err, fmt.Errorf("unknown log format %q", cfg.Log.Format))
	}

	return err
}
