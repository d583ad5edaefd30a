// Package mcptools exposes webscout searches as Model Context Protocol tools.
package mcptools

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/mycok/webscout/search"
	"github.com/mycok/webscout/search/external"
)

const defaultEnginePageSize = 10

// IndexSearchInput is the input of the search_index tool.
type IndexSearchInput struct {
	Keyword string `json:"keyword" jsonschema:"the keyword or quoted phrase to search for"`
	Page    int    `json:"page,omitempty" jsonschema:"1-based page number (default 1)"`
	Size    int    `json:"size,omitempty" jsonschema:"number of results per page (default 10)"`
}

// EngineSearchInput is the input of the search_engines tool.
type EngineSearchInput struct {
	Keyword          string `json:"keyword" jsonschema:"the keyword to search for"`
	Engine           string `json:"engine,omitempty" jsonschema:"external engine name (default bing)"`
	Pages            int    `json:"pages,omitempty" jsonschema:"number of engine result pages to fetch (default 5)"`
	Filter           string `json:"filter,omitempty" jsonschema:"result field the engine filters on (default title)"`
	IgnoreDuplicates bool   `json:"ignore_duplicates,omitempty" jsonschema:"ask the engine to drop duplicate results"`
	Page             int    `json:"page,omitempty" jsonschema:"1-based page number (default 1)"`
	Size             int    `json:"size,omitempty" jsonschema:"number of results per page (default 10)"`
}

// Server serves the webscout tools over MCP. It satisfies the
// service.Service interface.
type Server struct {
	config Config
	server *mcp.Server
}

// New creates and returns a configured MCP tool server.
func New(config Config) (*Server, error) {
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("mcp tools: config validation failed: %w", err)
	}

	s := &Server{
		config: config,
		server: mcp.NewServer(&mcp.Implementation{
			Name:    "webscout",
			Version: config.Version,
		}, nil),
	}

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_index",
		Description: "Search the pages crawled into the local webscout index",
	}, s.searchIndex)

	if config.EngineSearcher != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "search_engines",
			Description: "Search the web through an external search engine",
		}, s.searchEngines)
	}

	return s, nil
}

// Name returns the name of the service.
func (s *Server) Name() string { return "mcp-tools" }

// Run serves the tools over stdio until ctx is cancelled or the client
// disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.config.Logger.Info("serving tools over stdio")

	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Connect serves the tools over an arbitrary transport.
func (s *Server) Connect(ctx context.Context, t mcp.Transport) (*mcp.ServerSession, error) {
	return s.server.Connect(ctx, t, nil)
}

func (s *Server) searchIndex(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input IndexSearchInput,
) (*mcp.CallToolResult, search.Page, error) {
	start := time.Now()

	page, err := s.config.IndexSearcher.Search(input.Keyword, input.Page, input.Size)
	s.logCall("search_index", input.Keyword, start, err)
	if err != nil {
		return nil, search.Page{}, err
	}

	return nil, *page, nil
}

func (s *Server) searchEngines(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input EngineSearchInput,
) (*mcp.CallToolResult, search.Page, error) {
	size := input.Size
	if size == 0 {
		size = defaultEnginePageSize
	}

	req := external.Request{
		Keyword:          input.Keyword,
		Engine:           input.Engine,
		MaxPages:         input.Pages,
		FilterField:      input.Filter,
		IgnoreDuplicates: input.IgnoreDuplicates,
	}

	start := time.Now()

	page, err := s.config.EngineSearcher.Search(ctx, req, input.Page, size)
	s.logCall("search_engines", input.Keyword, start, err)
	if err != nil {
		return nil, search.Page{}, err
	}

	return nil, *page, nil
}

func (s *Server) logCall(tool, keyword string, start time.Time, err error) {
	entry := s.config.Logger.WithFields(logrus.Fields{
		"tool":    tool,
		"keyword": keyword,
		"elapsed": time.Since(start).String(),
	})
	if err != nil {
		entry.WithField("err", err).Warn("tool call failed")

		return
	}

	entry.Debug("tool call served")
}
