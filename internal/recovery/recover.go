// Package recovery isolates panics raised by collaborator code (fetchers,
// group sinks, layer stores) and turns them into errors.
package recovery

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrPanic is wrapped by every error produced from a recovered panic.
var ErrPanic = errors.New("panic recovered")

// RecoverToError calls fn and converts a panic into an error wrapping ErrPanic.
//
// Example:
//
//	err := recovery.RecoverToError(logger, "Replace", func() error {
//	    return sink.Replace(ctx, group)
//	})
func RecoverToError(logger *slog.Logger, operation string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logPanic(logger, operation, r)
			err = fmt.Errorf("%w: %s: %v", ErrPanic, operation, r)
		}
	}()
	return fn()
}

// RecoverToValue is RecoverToError for functions returning a value.
// A panic yields the zero value.
func RecoverToValue[T any](logger *slog.Logger, operation string, fn func() (T, error)) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			logPanic(logger, operation, r)
			var zero T
			result = zero
			err = fmt.Errorf("%w: %s: %v", ErrPanic, operation, r)
		}
	}()
	return fn()
}

// RecoverToStatus calls fn and converts a panic into a codes.Internal gRPC
// status error. Use in RPC handlers.
func RecoverToStatus(logger *slog.Logger, operation string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logPanic(logger, operation, r)
			err = status.Errorf(codes.Internal, "%s panicked: %v", operation, r)
		}
	}()
	return fn()
}

func logPanic(logger *slog.Logger, operation string, r any) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Error("Panic recovered",
		"operation", operation,
		"panic", r,
		"stack", string(debug.Stack()),
	)
}
