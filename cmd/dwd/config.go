package main

import (
	"os"
	"path/filepath"

	"github.com/btcsuite/btcutil"
	"github.com/jessevdk/go-flags"
)

const (
	defaultConfigFilename = "dwd.conf"
	defaultLogFilename    = "dwd.log"
	defaultLogLevel       = "info"
	defaultMetricsListen  = "127.0.0.1:9332"
	defaultMaxLogFileSize = 10
	defaultMaxLogFiles    = 3
)

var (
	defaultHomeDir    = btcutil.AppDataDir("dwd", false)
	defaultConfigFile = filepath.Join(defaultHomeDir, defaultConfigFilename)
	defaultLogDir     = filepath.Join(defaultHomeDir, "logs")
)

// daemonFlags are the command-line-only knobs: where things live and how
// loud to log, mirroring the split between flag-only daemon settings and
// the account-facing settings persisted in wallet.Config.
type daemonFlags struct {
	HomeDir       string `short:"b" long:"homedir" description:"directory holding the account store and config file"`
	ConfigFile    string `short:"C" long:"configfile" description:"path to a config file"`
	LogDir        string `long:"logdir" description:"directory to log output to"`
	DebugLevel    string `short:"d" long:"debuglevel" description:"logging level for all subsystems"`
	MetricsListen string `long:"metricslisten" description:"listen address for the /metrics debug endpoint"`
}

func defaultDaemonFlags() daemonFlags {
	return daemonFlags{
		HomeDir:       defaultHomeDir,
		ConfigFile:    defaultConfigFile,
		LogDir:        defaultLogDir,
		DebugLevel:    defaultLogLevel,
		MetricsListen: defaultMetricsListen,
	}
}

// loadDaemonFlags parses the command line, falling back to defaults
// derived from HomeDir when ConfigFile/LogDir were not set explicitly.
func loadDaemonFlags() (*daemonFlags, error) {
	cfg := defaultDaemonFlags()
	parser := flags.NewParser(&cfg, flags.Default)
	if _, err := parser.Parse(); err != nil {
		return nil, err
	}

	if cfg.HomeDir != defaultHomeDir {
		if cfg.ConfigFile == defaultConfigFile {
			cfg.ConfigFile = filepath.Join(cfg.HomeDir, defaultConfigFilename)
		}
		if cfg.LogDir == defaultLogDir {
			cfg.LogDir = filepath.Join(cfg.HomeDir, "logs")
		}
	}

	if err := os.MkdirAll(cfg.HomeDir, 0700); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.LogDir, 0700); err != nil {
		return nil, err
	}

	return &cfg, nil
}
