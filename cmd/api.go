package cmd

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	errors "github.com/Laisky/errors/v2"
	gconfig "github.com/Laisky/go-config/v2"
	gcmd "github.com/Laisky/go-utils/v6/cmd"
	"github.com/Laisky/zap"
	"github.com/spf13/cobra"

	"github.com/Laisky/tavily-mcp/internal/mcp"
	"github.com/Laisky/tavily-mcp/internal/web"
	"github.com/Laisky/tavily-mcp/library"
	"github.com/Laisky/tavily-mcp/library/log"
	"github.com/Laisky/tavily-mcp/library/search"
	"github.com/Laisky/tavily-mcp/library/search/tavily"
)

var apiCMD = &cobra.Command{
	Use:   "api",
	Short: "api",
	Long:  `run the tavily MCP API server`,
	Args:  gcmd.NoExtraArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return initialize(cmd.Context(), cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAPI()
	},
}

func init() {
	rootCMD.AddCommand(apiCMD)
}

func runAPI() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	client, err := buildTavilyClient()
	if err != nil {
		return errors.Wrap(err, "build tavily client")
	}

	orchestrator, err := search.NewOrchestrator(client,
		search.WithLogger(log.Logger.Named("orchestrator")))
	if err != nil {
		return errors.Wrap(err, "build search orchestrator")
	}

	srv, err := mcp.NewServer(client, orchestrator,
		mcp.LoadToolsSettingsFromConfig(), log.Logger.Named("mcp"))
	if err != nil {
		return errors.Wrap(err, "build mcp server")
	}

	return web.RunServer(ctx, gconfig.Shared.GetString("listen"), srv)
}

// buildTavilyClient assembles the upstream client from the environment and
// settings. TAVILY_API_KEY is mandatory so a misconfigured deployment fails
// before any listener binds.
func buildTavilyClient() (*tavily.Client, error) {
	apiKey := library.StripBearerPrefix(os.Getenv("TAVILY_API_KEY"))
	if apiKey == "" {
		return nil, errors.New("TAVILY_API_KEY environment variable is required")
	}

	opts := []tavily.Option{
		tavily.WithLogger(log.Logger.Named("tavily")),
	}

	baseURL := strings.TrimSpace(os.Getenv("TAVILY_BASE_URL"))
	if baseURL == "" {
		baseURL = gconfig.Shared.GetString("settings.tavily.base_url")
	}
	if baseURL != "" {
		opts = append(opts, tavily.WithBaseURL(baseURL))
	}

	if userAgent := gconfig.Shared.GetString("settings.tavily.user_agent"); userAgent != "" {
		opts = append(opts, tavily.WithUserAgent(userAgent))
	}

	if proxyAddr := gconfig.Shared.GetString("settings.tavily.proxy"); proxyAddr != "" {
		proxyClient, err := newProxyHTTPClient(proxyAddr)
		if err != nil {
			return nil, errors.Wrap(err, "build proxy http client")
		}
		opts = append(opts, tavily.WithHTTPClient(proxyClient))
	}

	return tavily.New(apiKey, opts...)
}

// newProxyHTTPClient builds an HTTP client that routes through the given
// forward proxy, keeping the same overall timeout as the default client.
func newProxyHTTPClient(proxyAddr string) (*http.Client, error) {
	proxyURL, err := url.Parse(proxyAddr)
	if err != nil {
		return nil, errors.Wrapf(err, "parse proxy url %q", proxyAddr)
	}

	return &http.Client{
		Timeout: tavily.DefaultHTTPTimeout,
		Transport: &http.Transport{
			Proxy: http.ProxyURL(proxyURL),
		},
	}, nil
}
