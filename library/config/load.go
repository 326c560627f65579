// Package config loads the YAML settings file into the shared configuration.
package config

import (
	"path/filepath"

	"github.com/Laisky/errors/v2"
	gconfig "github.com/Laisky/go-config/v2"
	"github.com/Laisky/zap"

	"github.com/Laisky/laisky-blog-cms/library/log"
)

// LoadFromFile loads cfgPath into gconfig.Shared and records its directory
// under `cfg_dir`, so relative paths in the settings can be resolved.
func LoadFromFile(cfgPath string) error {
	gconfig.Shared.Set("cfg_dir", filepath.Dir(cfgPath))
	if err := gconfig.Shared.LoadFromFile(cfgPath); err != nil {
		return errors.Wrapf(err, "load configuration from %q", cfgPath)
	}

	log.Logger.Info("load configuration", zap.String("config", cfgPath))
	return nil
}
