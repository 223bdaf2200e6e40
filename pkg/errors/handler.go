package errors

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// ErrorHandler receives errors reported by the viewer.
type ErrorHandler interface {
	HandleError(err *ViewerError)
}

var (
	// defaultHandler is the global error handler.
	defaultHandler ErrorHandler = &LogHandler{}

	handlerMu sync.RWMutex
)

// SetHandler configures the global error handler.
// Pass nil to restore the default LogHandler.
func SetHandler(h ErrorHandler) {
	handlerMu.Lock()
	defer handlerMu.Unlock()
	if h == nil {
		defaultHandler = &LogHandler{}
	} else {
		defaultHandler = h
	}
}

// Report sends an error to the global handler.
// If err.Timestamp is zero, it is set to the current time.
func Report(err *ViewerError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	handlerMu.RLock()
	h := defaultHandler
	handlerMu.RUnlock()
	if h != nil {
		h.HandleError(err)
	}
}

// LogHandler is an ErrorHandler that logs errors to stderr.
type LogHandler struct {
	// Verbose includes timestamps in the output.
	Verbose bool
}

// HandleError logs a ViewerError to stderr.
func (h *LogHandler) HandleError(err *ViewerError) {
	if err == nil {
		return
	}
	if h.Verbose {
		fmt.Fprintf(os.Stderr, "[periscope %s] %s %s: %v\n",
			err.Kind, err.Timestamp.Format(time.RFC3339), err.Op, err.Err)
		return
	}
	fmt.Fprintf(os.Stderr, "[periscope %s] %s: %v\n", err.Kind, err.Op, err.Err)
}
