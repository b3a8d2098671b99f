// Package cmd command line
package cmd

import (
	"context"
	"fmt"

	"github.com/Laisky/errors/v2"
	gconfig "github.com/Laisky/go-config/v2"
	gcmd "github.com/Laisky/go-utils/v6/cmd"
	glog "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Laisky/tavily-mcp/library/config"
	"github.com/Laisky/tavily-mcp/library/log"
)

var rootCMD = &cobra.Command{
	Use:   "tavily-mcp",
	Short: "tavily-mcp",
	Long:  `MCP server exposing Tavily web search, extract, crawl and map tools`,
	Args:  gcmd.NoExtraArgs,
}

func initialize(ctx context.Context, cmd *cobra.Command) error {
	if err := gconfig.Shared.BindPFlags(cmd.Flags()); err != nil {
		return errors.Wrap(err, "bind pflags")
	}

	setupSettings(ctx)
	setupLogger(ctx)

	if err := validateStartupConfig(); err != nil {
		return errors.Wrap(err, "validate startup config")
	}

	return nil
}

func setupSettings(ctx context.Context) {
	// mode
	if gconfig.Shared.GetBool("debug") {
		fmt.Println("run in debug mode")
		gconfig.Shared.Set("log-level", "debug")
	} else { // prod mode
		fmt.Println("run in prod mode")
	}

	// .env first so TAVILY_API_KEY can live beside the binary in dev
	if err := godotenv.Load(); err != nil {
		log.Logger.Debug("skip .env", zap.Error(err))
	}

	// config file is optional; env-only deployments are the norm
	if cfgPath := gconfig.Shared.GetString("config"); cfgPath != "" {
		config.LoadFromFile(cfgPath)
	}
}

func setupLogger(ctx context.Context) {
	lvl := gconfig.Shared.GetString("log-level")
	if err := log.Logger.ChangeLevel(glog.Level(lvl)); err != nil {
		log.Logger.Panic("change log level", zap.Error(err), zap.String("level", lvl))
	}
}

func init() {
	rootCMD.PersistentFlags().Bool("debug", false, "run in debug mode")
	rootCMD.PersistentFlags().String("listen", "127.0.0.1:8000", "like `127.0.0.1:8000`")
	rootCMD.PersistentFlags().StringP("config", "c", "", "config file path")
	rootCMD.PersistentFlags().String("log-level", "info", "`debug/info/error`")
}

// Execute execute root command
func Execute() {
	if err := rootCMD.Execute(); err != nil {
		glog.Shared.Panic("start", zap.Error(err))
	}
}
