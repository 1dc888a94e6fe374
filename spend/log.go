package spend

import (
	"github.com/decred/slog"
	"github.com/duskwallet/dwd/build"
)

var log slog.Logger

func init() {
	UseLogger(build.NewSubLogger("SPND", nil))
}

// UseLogger uses a specified Logger to output package logging info.
func UseLogger(logger slog.Logger) {
	log = logger
}
