// Package store selects a text index implementation from a URI.
package store

import (
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mycok/webscout/textindexer/index"
	"github.com/mycok/webscout/textindexer/store/es"
	memindex "github.com/mycok/webscout/textindexer/store/memory"
	"github.com/mycok/webscout/textindexer/store/pg"
	"github.com/mycok/webscout/textindexer/store/sqlite"
)

// SupportedURIs lists the URI forms accepted by Open.
const SupportedURIs = "in-memory://, es://node1:9200,...,nodeN:9200[/index][?sync=true], " +
	"sqlite:///path/to/index.db, postgresql://user@host:5432/db?sslmode=disable"

// Index is a text indexer that holds resources which must be released.
type Index interface {
	index.Indexer
	io.Closer
}

// Open returns the text index implementation selected by the URI scheme.
func Open(textIndexURI string, logger *logrus.Entry) (Index, error) {
	if textIndexURI == "" {
		return nil, fmt.Errorf("text index URI must be specified")
	}

	u, err := url.Parse(textIndexURI)
	if err != nil {
		return nil, fmt.Errorf("failed to parse text index URI: %w", err)
	}

	switch u.Scheme {
	case "in-memory":
		logger.Info("using in-memory index store")

		return memindex.NewInMemoryIndex()
	case "es":
		nodes := strings.Split(u.Host, ",")
		for i := 0; i < len(nodes); i++ {
			nodes[i] = "http://" + nodes[i]
		}
		syncUpdates, _ := strconv.ParseBool(u.Query().Get("sync"))
		indexName := strings.Trim(u.Path, "/")
		logger.WithField("index", indexName).Info("using ES index store")

		return es.NewEsIndexer(nodes, indexName, syncUpdates)
	case "sqlite":
		path := strings.TrimPrefix(textIndexURI, "sqlite://")
		if i := strings.IndexByte(path, '?'); i >= 0 {
			path = path[:i]
		}
		if path == "" {
			return nil, fmt.Errorf("sqlite index URI requires a file path")
		}
		logger.WithField("path", path).Info("using sqlite index store")

		return sqlite.NewSQLiteIndex(path)
	case "postgresql", "postgres":
		logger.Info("using postgres index store")

		return pg.NewPostgresIndex(textIndexURI)
	default:
		return nil, fmt.Errorf("unsupported text index URI scheme: %q", u.Scheme)
	}
}
