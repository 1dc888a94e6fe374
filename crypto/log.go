package crypto

import (
	"github.com/decred/slog"
	"github.com/duskwallet/dwd/build"
)

// cryptoLog is a logger that is initialized with no output filters. This
// means the package will not perform any logging by default until the
// caller requests it.
var cryptoLog slog.Logger

func init() {
	UseLogger(build.NewSubLogger("CRPT", nil))
}

// DisableLog disables all library log output.
func DisableLog() {
	UseLogger(slog.Disabled)
}

// UseLogger uses a specified Logger to output package logging info.
func UseLogger(logger slog.Logger) {
	cryptoLog = logger
}
