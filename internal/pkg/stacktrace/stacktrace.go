// Package stacktrace reports the stack frames that belong to this module.
package stacktrace

import (
	"log/slog"
	"runtime"
	"runtime/debug"
	"strconv"
	"strings"
)

const maxDepth = 64

// moduleRoot is the directory holding internal/, derived from this file's
// own location so it works with and without -trimpath.
var moduleRoot = func() string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return ""
	}
	root, found := strings.CutSuffix(file, "internal/pkg/stacktrace/stacktrace.go")
	if !found {
		return ""
	}
	return root
}()

// Capture returns the caller's frames under internal/, innermost first, as
// "internal/<path>.go:<line>". From a deferred recover the panicking frames
// are included.
func Capture() []string {
	return capture(3)
}

// Attr is Capture as a slog attribute named "stack". It falls back to the
// full runtime stack when no frame is under internal/.
func Attr() slog.Attr {
	if frames := capture(3); len(frames) > 0 {
		return slog.Any("stack", frames)
	}
	return slog.String("stack", string(debug.Stack()))
}

func capture(skip int) []string {
	if moduleRoot == "" {
		return nil
	}

	pcs := make([]uintptr, maxDepth)
	n := runtime.Callers(skip, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	var out []string
	for {
		f, more := frames.Next()
		if rel, ok := strings.CutPrefix(f.File, moduleRoot); ok && strings.HasPrefix(rel, "internal/") {
			out = append(out, rel+":"+strconv.Itoa(f.Line))
		}
		if !more {
			break
		}
	}
	return out
}
