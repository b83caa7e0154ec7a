package logger

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/errors/errbase"
)

// errorAttrReplacer renders error attributes as their message.
func errorAttrReplacer(groups []string, attr slog.Attr) slog.Attr {
	if len(groups) == 0 && (attr.Key == ErrorKey || attr.Key == "err") {
		if err, ok := attr.Value.Any().(error); ok && err != nil {
			return slog.String(attr.Key, err.Error())
		}
	}
	return attr
}

// middlewareErrorStackTrace adds the verbose error and the innermost stack trace to records
// that carry an error attribute.
func middlewareErrorStackTrace() middleware {
	return func(next handleFunc) handleFunc {
		return func(ctx context.Context, rec slog.Record) error {
			var extra []slog.Attr
			rec.Attrs(func(attr slog.Attr) bool {
				if attr.Key != ErrorKey && attr.Key != "err" {
					return true
				}
				err, ok := attr.Value.Any().(error)
				if !ok || err == nil {
					return true
				}
				extra = append(extra, slog.String(ErrorVerboseKey, fmt.Sprintf("%+v", err)))
				if st := deepestStackTrace(err); st != nil {
					extra = append(extra, slog.Any(ErrorStackTraceKey, traceLines(st)))
				}
				return false
			})
			rec.AddAttrs(extra...)
			return next(ctx, rec)
		}
	}
}

func deepestStackTrace(err error) errbase.StackTrace {
	var st errbase.StackTrace
	for e := err; e != nil; e = errors.UnwrapOnce(e) {
		if x, ok := e.(errbase.StackTraceProvider); ok {
			st = x.StackTrace()
		}
	}
	return st
}

func traceLines(frames errbase.StackTrace) []string {
	lines := make([]string, 0, len(frames))

	// skip consecutive runtime frames at the bottom of the trace
	skipping := true
	for i := len(frames) - 1; i >= 0; i-- {
		pc := uintptr(frames[i]) - 1
		fn := runtime.FuncForPC(pc)
		if fn == nil {
			lines = append(lines, "unknown")
			skipping = false
			continue
		}

		name := fn.Name()
		if skipping && strings.HasPrefix(name, "runtime.") {
			continue
		}
		skipping = false

		filename, lineNr := fn.FileLine(pc)
		lines = append(lines, fmt.Sprintf("%s %s:%d", name, filename, lineNr))
	}

	// reverse back to innermost-first order
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
	return lines
}
