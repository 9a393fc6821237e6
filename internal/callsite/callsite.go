// Package callsite captures the file, line and function of a caller for use
// as a raise-site payload.
package callsite

import (
	"path"
	"runtime"
)

// Frame identifies one call site.
type Frame struct {
	File     string
	Line     int
	Function string
}

// Capture returns the frame skip levels above the caller of Capture, so
// Capture(0) describes the immediate caller. The reported function name is
// trimmed of its package path.
func Capture(skip int) (Frame, bool) {
	pc, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return Frame{}, false
	}

	f := Frame{
		File: file,
		Line: line,
	}
	if fn := runtime.FuncForPC(pc); fn != nil {
		f.Function = path.Base(fn.Name())
	}
	return f, true
}
