// Package log is a logging package that provides functions to log messages.
package log

import (
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
)

// Logger is the process-wide root logger, named per component via Named.
var Logger logSDK.Logger

func init() {
	var err error
	if Logger, err = logSDK.NewConsoleWithName("blog-cms", logSDK.LevelInfo); err != nil {
		logSDK.Shared.Panic("new logger", zap.Error(err))
	}
}

// SetLevel changes the root logger level, e.g. `debug`, `info`, `warn`, `error`.
func SetLevel(lvl string) error {
	return Logger.ChangeLevel(logSDK.Level(lvl))
}
