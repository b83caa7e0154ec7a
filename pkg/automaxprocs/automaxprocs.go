package automaxprocs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/Cleverse/go-utilities/utils"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ticket-integrity/pkg/logger"
	"github.com/gaze-network/ticket-integrity/pkg/logger/slogx"
	"go.uber.org/automaxprocs/maxprocs"
)

// initialMaxProcs is the initial value of GOMAXPROCS.
var initialMaxProcs = Current()

// Init sets GOMAXPROCS to the container CPU quota before the HTTP server and ledger workers start.
func Init() error {
	logger := logger.With(
		slogx.String("package", "automaxprocs"),
		slogx.String("event", "set_gomaxprocs"),
		slogx.Int("prev_maxprocs", initialMaxProcs),
	)

	// Create a logger function for `maxprocs.Set`.
	setMaxProcLogger := func(format string, v ...any) {
		fields := make([]slog.Attr, 0, 1)

		// `maxprocs.Set` will always pass current GOMAXPROCS value to logger.
		// except when calling `undo` function, it will not pass any value.
		if val, ok := utils.Optional(v); ok {
			// if `GOMAXPROCS` environment variable is set, then `automaxprocs` will honor it.
			if _, exists := os.LookupEnv("GOMAXPROCS"); exists {
				val = Current()
			}

			// add logging field for `set_maxprocs` value if it's present in integer value.
			if setmaxprocs, ok := val.(int); ok {
				fields = append(fields, slogx.Int("set_maxprocs", setmaxprocs))
			}
		}

		logger.LogAttrs(context.Background(), slog.LevelInfo, fmt.Sprintf(format, v...), fields...)
	}

	// Set GOMAXPROCS to match the Linux container CPU quota (if any), returning
	// any error encountered and an undo function.
	//
	// Set is a no-op on non-Linux systems and in Linux environments without a
	// configured CPU quota.
	if _, err := maxprocs.Set(maxprocs.Logger(setMaxProcLogger), maxprocs.Min(1)); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// Current returns the current value of GOMAXPROCS.
func Current() int {
	return runtime.GOMAXPROCS(0)
}
