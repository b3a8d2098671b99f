// Package web gin server
package web

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	errors "github.com/Laisky/errors/v2"
	ginMw "github.com/Laisky/gin-middlewares/v7"
	gconfig "github.com/Laisky/go-config/v2"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/Laisky/tavily-mcp/internal/mcp"
	"github.com/Laisky/tavily-mcp/library/log"
)

const shutdownGrace = 10 * time.Second

// RunServer blocks serving HTTP traffic on addr until ctx is cancelled or the
// listener fails. Cancellation drains in-flight requests before returning.
func RunServer(ctx context.Context, addr string, mcpSrv *mcp.Server) error {
	if mcpSrv == nil {
		return errors.New("mcp server is required")
	}

	engine := buildEngine(mcpSrv)

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var pool errgroup.Group
	pool.Go(func() error {
		log.Logger.Info("listening on http", zap.String("addr", addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "run http server")
		}
		return nil
	})
	pool.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return errors.Wrap(httpSrv.Shutdown(shutdownCtx), "shutdown http server")
	})

	return pool.Wait()
}

// buildEngine assembles the gin engine: logging and CORS middlewares, health
// probes, the MCP endpoint, and the inspector debug page.
func buildEngine(mcpSrv *mcp.Server) *gin.Engine {
	if !gconfig.Shared.GetBool("debug") {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		ginMw.NewLoggerMiddleware(
			ginMw.WithLoggerMwColored(),
			ginMw.WithLevel(log.Logger.Level().String()),
			ginMw.WithLogger(log.Logger.Named("gin")),
		),
		newAllowCORS(gconfig.Shared.GetStringSlice("settings.web.allowed_origins")),
	)

	engine.Any("/health", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "hello, world")
	})
	engine.GET("/healthz", newHealthzHandler(mcpSrv.AvailableToolNames()))

	engine.Any("/mcp", gin.WrapH(mcpSrv.Handler()))
	engine.GET("/inspector", gin.WrapH(mcp.NewInspectorHandler("/mcp", mcpSrv.AvailableToolNames(), log.Logger.Named("inspector"))))

	return engine
}

// newHealthzHandler reports process identity and the registered tool set.
func newHealthzHandler(toolNames []string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"name":    mcp.ServerName,
			"version": mcp.ServerVersion,
			"tools":   toolNames,
		})
	}
}

// newAllowCORS builds the CORS middleware. An empty allow-list admits every
// origin, which suits a personal MCP deployment where access control rides in
// the bearer token; entries match the origin host exactly or as a parent
// domain.
func newAllowCORS(allowedOrigins []string) gin.HandlerFunc {
	normalized := make([]string, 0, len(allowedOrigins))
	for _, entry := range allowedOrigins {
		entry = strings.ToLower(strings.TrimSpace(entry))
		if entry != "" {
			normalized = append(normalized, entry)
		}
	}

	return func(ctx *gin.Context) {
		origin := strings.TrimSpace(ctx.Request.Header.Get("Origin"))

		if origin == "" {
			if ctx.Request.Method == http.MethodOptions {
				// blank-origin preflight from non-browser MCP clients
				ctx.Header("Access-Control-Allow-Origin", "*")
				ctx.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, HEAD")
				ctx.Header("Access-Control-Allow-Headers", "*")
				ctx.Header("Access-Control-Max-Age", "86400")
				ctx.AbortWithStatus(http.StatusNoContent)
				return
			}

			ctx.Next()
			return
		}

		if originAllowed(origin, normalized) {
			ctx.Header("Access-Control-Allow-Origin", origin)
			ctx.Header("Access-Control-Allow-Credentials", "true")
			ctx.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, HEAD")
			ctx.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept, Origin, X-Requested-With, Mcp-Session-Id, Last-Event-ID")
			ctx.Header("Access-Control-Expose-Headers", "Mcp-Session-Id")
			ctx.Header("Access-Control-Max-Age", "86400")
			ctx.Header("Vary", "Origin")

			if ctx.Request.Method == http.MethodOptions {
				ctx.AbortWithStatus(http.StatusNoContent)
				return
			}
		} else if ctx.Request.Method == http.MethodOptions {
			// deny preflight from disallowed origins
			ctx.AbortWithStatus(http.StatusForbidden)
			return
		}

		ctx.Next()
	}
}

// originAllowed reports whether origin may access this server given the
// normalized allow-list.
func originAllowed(origin string, allowed []string) bool {
	parsed, err := url.Parse(origin)
	if err != nil || parsed.Hostname() == "" {
		return false
	}

	if len(allowed) == 0 {
		return true
	}

	host := strings.ToLower(parsed.Hostname())
	for _, entry := range allowed {
		if host == entry || strings.HasSuffix(host, "."+entry) {
			return true
		}
	}

	return false
}
