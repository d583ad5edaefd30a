package mcptools

import (
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/mycok/webscout/service/frontend"
)

// Config defines configurations for the MCP tool server.
type Config struct {
	// API for searching the local index.
	IndexSearcher frontend.IndexSearcher

	// API for searching external engines. Optional; when nil the
	// search_engines tool is not registered.
	EngineSearcher frontend.EngineSearcher

	// Version reported to MCP clients. Defaults to "dev".
	Version string

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

func (config *Config) validate() error {
	var err error

	if config.IndexSearcher == nil {
		err = multierror.Append(err, fmt.Errorf("index searcher not provided"))
	}

	if config.Version == "" {
		config.Version = "dev"
	}

	if config.Logger == nil {
		config.Logger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})
	}

	return err
}
