package utils

import (
	"fmt"
	"runtime/debug"

	"go.uber.org/zap"
)

// PanicError is a panic recovered from a goroutine, with the stack at the point of panic.
type PanicError struct {
	Component string
	Value     any
	Stack     []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic in %s: %v", e.Component, e.Value)
}

// RecoverError turns a panic in the calling goroutine into an error stored in
// *errp. It must be deferred directly.
func RecoverError(component string, logger *zap.Logger, errp *error) {
	r := recover()
	if r == nil {
		return
	}
	if logger == nil {
		logger = zap.L()
	}
	perr := &PanicError{Component: component, Value: r, Stack: debug.Stack()}
	logger.Error("panic recovered",
		zap.String("component", component),
		zap.Any("value", r),
		zap.ByteString("stack", perr.Stack))
	*errp = perr
}

// SafeGoroutine runs fn on a new goroutine and logs instead of crashing if it panics.
func SafeGoroutine(component string, logger *zap.Logger, fn func()) {
	go func() {
		var err error
		defer RecoverError(component, logger, &err)
		fn()
	}()
}
