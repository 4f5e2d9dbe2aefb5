package flight

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/hugr-lab/layerfilter/auth"
)

// ErrInvalidConfig is returned by NewServer for an unusable ServerConfig.
var ErrInvalidConfig = errors.New("invalid server config")

// ServerConfig configures a layer Flight server.
type ServerConfig struct {
	// Store supplies layer schemas and records.
	// REQUIRED: Must not be nil.
	Store LayerStore

	// Auth validates bearer tokens. When it also implements
	// auth.LayerAuthorizer, layer access is checked per request.
	// OPTIONAL: nil disables authentication.
	Auth auth.Authenticator

	// Allocator is used for Arrow buffers.
	// OPTIONAL: Defaults to memory.DefaultAllocator.
	Allocator memory.Allocator

	// Logger receives server logs.
	// OPTIONAL: Defaults to slog.Default().
	Logger *slog.Logger

	// LogLevel creates a text logger on stderr at this level when Logger is nil.
	// OPTIONAL.
	LogLevel *slog.Level

	// MaxMessageSize limits gRPC message size in bytes.
	// OPTIONAL: 0 keeps the gRPC default.
	MaxMessageSize int
}

func validateConfig(config ServerConfig) error {
	if config.Store == nil {
		return fmt.Errorf("store is required")
	}
	if config.MaxMessageSize < 0 {
		return fmt.Errorf("max message size must not be negative")
	}
	return nil
}

func newLogger(logger *slog.Logger, level *slog.Level) *slog.Logger {
	if logger != nil {
		return logger
	}
	if level != nil {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: *level}))
	}
	return slog.Default()
}
