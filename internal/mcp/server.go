package mcp

import (
	"context"
	"net/http"
	"time"

	errors "github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	srv "github.com/mark3labs/mcp-go/server"

	"github.com/Laisky/tavily-mcp/internal/mcp/tools"
	"github.com/Laisky/tavily-mcp/library/log"
	"github.com/Laisky/tavily-mcp/library/search/tavily"
)

type ctxKey string

const (
	keyAuthorization ctxKey = "authorization"
)

// ServerName and ServerVersion identify this MCP implementation to clients
// during the initialize handshake.
const (
	ServerName    = "tavily-mcp"
	ServerVersion = "1.0.0"
)

// httpLogBodyLimit caps how many request/response body bytes reach debug logs.
const httpLogBodyLimit = 4096

const serverInstructions = "This server exposes Tavily-powered web intelligence tools. " +
	"Use tavily_search for general web queries, qna_search for short factual questions, " +
	"get_search_context to assemble RAG context, detailed_news_search or smart_search for " +
	"tuned presets, and tavily_extract/tavily_crawl/tavily_map to read specific sites. " +
	"Call get_current_date first when a query involves relative dates like 'today' or 'recent'."

// Server wraps the MCP server state for the HTTP transport.
type Server struct {
	handler   http.Handler
	logger    logSDK.Logger
	mcpServer *srv.MCPServer
	toolNames []string
}

// NewServer constructs a remote MCP server exposing HTTP endpoints under a single handler.
func NewServer(provider tools.Provider, executor tools.SearchExecutor, settings ToolsSettings, logger logSDK.Logger) (*Server, error) {
	if provider == nil {
		return nil, errors.New("search provider is required")
	}
	if executor == nil {
		return nil, errors.New("search executor is required")
	}
	if logger == nil {
		logger = log.Logger
	}

	hooks := newMCPHooks(logger.Named("mcp_hooks"))

	mcpServer := srv.NewMCPServer(
		ServerName,
		ServerVersion,
		srv.WithToolCapabilities(true),
		srv.WithInstructions(serverInstructions),
		srv.WithRecovery(),
		srv.WithHooks(hooks),
	)

	streamable := srv.NewStreamableHTTPServer(
		mcpServer,
		srv.WithHTTPContextFunc(contextWithRequestAuthorization),
	)

	s := &Server{
		handler:   withQueryAPIKeyPromotion(withHTTPLogging(streamable, logger.Named("mcp_http")), logger),
		logger:    logger.Named("mcp"),
		mcpServer: mcpServer,
	}

	registry, err := buildToolRegistry(provider, executor, settings, s.logger)
	if err != nil {
		return nil, errors.Wrap(err, "build tool registry")
	}

	for _, entry := range registry {
		mcpServer.AddTool(entry.tool.Definition(), s.instrumentedHandler(entry.name, entry.tool))
		s.toolNames = append(s.toolNames, entry.name)
	}

	s.logger.Info("mcp tools registered", zap.Strings("tools", s.toolNames))

	return s, nil
}

// Handler returns the HTTP handler that should be mounted to serve MCP traffic.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// AvailableToolNames lists the tools registered on this server instance.
func (s *Server) AvailableToolNames() []string {
	if s == nil || len(s.toolNames) == 0 {
		return nil
	}

	names := make([]string, len(s.toolNames))
	copy(names, s.toolNames)
	return names
}

// contextWithRequestAuthorization copies the Authorization header into the MCP
// request context so tool handlers can resolve per-request Tavily keys. A
// bearer key supplied by the client overrides the process-level credential.
func contextWithRequestAuthorization(ctx context.Context, r *http.Request) context.Context {
	authHeader := r.Header.Get("Authorization")
	ctx = context.WithValue(ctx, keyAuthorization, authHeader)

	if apiKey := extractAPIKey(authHeader); apiKey != "" {
		ctx = tavily.ContextWithAPIKey(ctx, apiKey)
	}

	return ctx
}

type toolRegistration struct {
	name string
	tool tools.Tool
}

// buildToolRegistry instantiates every enabled tool in a stable order.
func buildToolRegistry(provider tools.Provider, executor tools.SearchExecutor, settings ToolsSettings, logger logSDK.Logger) ([]toolRegistration, error) {
	clock := tools.Clock(time.Now)

	var registry []toolRegistration
	add := func(name string, tool tools.Tool, err error) error {
		if err != nil {
			return errors.Wrapf(err, "build tool %q", name)
		}
		registry = append(registry, toolRegistration{name: name, tool: tool})
		return nil
	}

	if settings.CurrentDateEnabled {
		tool, err := tools.NewCurrentDateTool(clock)
		if err := add("get_current_date", tool, err); err != nil {
			return nil, err
		}
	}
	if settings.SearchEnabled {
		tool, err := tools.NewSearchTool(executor, logger)
		if err := add("tavily_search", tool, err); err != nil {
			return nil, err
		}
	}
	if settings.HealthCheckEnabled {
		tool, err := tools.NewHealthCheckTool(provider, clock, logger)
		if err := add("tavily_health_check", tool, err); err != nil {
			return nil, err
		}
	}
	if settings.QNAEnabled {
		tool, err := tools.NewQNATool(provider, logger)
		if err := add("qna_search", tool, err); err != nil {
			return nil, err
		}
	}
	if settings.SearchContextEnabled {
		tool, err := tools.NewSearchContextTool(provider, logger)
		if err := add("get_search_context", tool, err); err != nil {
			return nil, err
		}
	}
	if settings.NewsSearchEnabled {
		tool, err := tools.NewNewsSearchTool(executor, logger)
		if err := add("detailed_news_search", tool, err); err != nil {
			return nil, err
		}
	}
	if settings.SmartSearchEnabled {
		tool, err := tools.NewSmartSearchTool(executor, logger)
		if err := add("smart_search", tool, err); err != nil {
			return nil, err
		}
	}
	if settings.ExtractEnabled {
		tool, err := tools.NewExtractTool(provider, logger)
		if err := add("tavily_extract", tool, err); err != nil {
			return nil, err
		}
	}
	if settings.CrawlEnabled {
		tool, err := tools.NewCrawlTool(provider, logger)
		if err := add("tavily_crawl", tool, err); err != nil {
			return nil, err
		}
	}
	if settings.MapEnabled {
		tool, err := tools.NewMapTool(provider, logger)
		if err := add("tavily_map", tool, err); err != nil {
			return nil, err
		}
	}

	return registry, nil
}
