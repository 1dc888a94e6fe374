package main

import (
	"path/filepath"

	"github.com/decred/slog"
	"github.com/duskwallet/dwd"
	"github.com/duskwallet/dwd/build"
)

var log slog.Logger

func initLogging(cfg *daemonFlags) (*build.RotatingLogWriter, error) {
	root := build.NewRotatingLogWriter()
	dwd.SetupLoggers(root)
	dwd.AddSubLogger(root, "DWDD", func(l slog.Logger) { log = l })

	logFile := filepath.Join(cfg.LogDir, defaultLogFilename)
	err := root.InitLogRotator(
		logFile, defaultMaxLogFileSize*1024*1024, defaultMaxLogFiles,
	)
	if err != nil {
		return nil, err
	}

	root.SetLogLevels(cfg.DebugLevel)
	return root, nil
}
