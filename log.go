package dwd

import (
	"github.com/decred/slog"
	"github.com/duskwallet/dwd/account"
	"github.com/duskwallet/dwd/build"
	"github.com/duskwallet/dwd/crypto"
	"github.com/duskwallet/dwd/explorer"
	"github.com/duskwallet/dwd/spend"
	"github.com/duskwallet/dwd/stealth"
	"github.com/duskwallet/dwd/store"
	"github.com/duskwallet/dwd/sync"
	"github.com/duskwallet/dwd/wallet"
)

// subsystemLoggers lists every package this daemon wires a sub-logger into,
// keyed by the subsystem tag each package's own log.go was registered
// under.
var subsystemLoggers = map[string]func(slog.Logger){
	"WLTD": wallet.UseLogger,
	"ACCT": account.UseLogger,
	"STOR": store.UseLogger,
	"SYNC": sync.UseLogger,
	"SPND": spend.UseLogger,
	"STLH": stealth.UseLogger,
	"CRPT": crypto.UseLogger,
	"XPLR": explorer.UseLogger,
}

// SetupLoggers replaces every package-level logger declared with
// build.NewSubLogger(tag, nil) at init time with one backed by root, the
// daemon's single rotating log writer. Called once cmd/dwd has parsed its
// configuration and knows where the log file lives.
func SetupLoggers(root *build.RotatingLogWriter) {
	for subsystem, useLogger := range subsystemLoggers {
		AddSubLogger(root, subsystem, useLogger)
	}
}

// AddSubLogger is a helper method to conveniently create and register the
// logger of one or more sub systems.
func AddSubLogger(root *build.RotatingLogWriter, subsystem string,
	useLoggers ...func(slog.Logger)) {

	logger := build.NewSubLogger(subsystem, root.GenSubLogger)
	SetSubLogger(root, subsystem, logger, useLoggers...)
}

// SetSubLogger is a helper method to conveniently register the logger of a
// sub system.
func SetSubLogger(root *build.RotatingLogWriter, subsystem string,
	logger slog.Logger, useLoggers ...func(slog.Logger)) {

	root.RegisterSubLogger(subsystem, logger)
	for _, useLogger := range useLoggers {
		useLogger(logger)
	}
}
