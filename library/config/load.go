// Package config loads the optional YAML settings file into the shared
// go-config source.
package config

import (
	"path/filepath"

	gconfig "github.com/Laisky/go-config/v2"
	"github.com/Laisky/zap"

	"github.com/Laisky/tavily-mcp/library/log"
)

// LoadFromFile reads cfgPath into the shared config source and records the
// containing directory under cfg_dir. An unreadable explicit path is fatal.
func LoadFromFile(cfgPath string) {
	gconfig.Shared.Set("cfg_dir", filepath.Dir(cfgPath))
	if err := gconfig.Shared.LoadFromFile(cfgPath); err != nil {
		log.Logger.Panic("load configuration",
			zap.Error(err),
			zap.String("config", cfgPath))
	}

	log.Logger.Info("load configuration", zap.String("config", cfgPath))
}
