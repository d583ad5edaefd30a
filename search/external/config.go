package external

import (
	"fmt"
	"io"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
)

const (
	defaultEngine   = "bing"
	defaultBaseName = "output"
	defaultPages    = 5
	defaultFilter   = "title"
	defaultTimeout  = 2 * time.Minute

	outputFormat = "json"
)

var defaultCommand = []string{"python", "search_engines_cli.py"}

// Config defines configurations for the external engine aggregator.
type Config struct {
	// Command and leading arguments that start the search process. The
	// search arguments are appended to it. Defaults to
	// "python search_engines_cli.py".
	Command []string

	// Working directory of the search process. Defaults to the current
	// directory.
	WorkDir string

	// Extra environment variables passed to the search process on top of
	// the current environment.
	Env []string

	// Directory under which a fresh output directory is created per call.
	// Defaults to os.TempDir().
	TempDir string

	// Defaults applied to requests that leave the matching field empty.
	Engine   string
	BaseName string
	Pages    int
	Filter   string
	Proxy    string

	// Upper bound on a single search process run. Defaults to 2 minutes.
	Timeout time.Duration

	// Results are deduplicated by link unless KeepDuplicates is set.
	KeepDuplicates bool

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

func (config *Config) validate() error {
	var err error

	if len(config.Command) == 0 {
		config.Command = append([]string(nil), defaultCommand...)
	} else if config.Command[0] == "" {
		err = multierror.Append(err, fmt.Errorf("search command not provided"))
	}

	if config.Engine == "" {
		config.Engine = defaultEngine
	}

	if config.BaseName == "" {
		config.BaseName = defaultBaseName
	}

	if config.Pages < 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value for pages, must be > 0"))
	} else if config.Pages == 0 {
		config.Pages = defaultPages
	}

	if config.Filter == "" {
		config.Filter = defaultFilter
	}

	if config.Timeout < 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value for timeout, must be > 0"))
	} else if config.Timeout == 0 {
		config.Timeout = defaultTimeout
	}

	if config.Logger == nil {
		config.Logger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})
	}

	return err
}
