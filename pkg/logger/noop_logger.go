package logger

import (
	"context"

	"github.com/trackops/riskregistry/pkg/constants"
)

// noopLogger discards all messages. Used in tests and as a safe default.
type noopLogger struct{}

// NewNoopLogger returns a Logger that does nothing.
func NewNoopLogger() Logger {
	return &noopLogger{}
}

func (n *noopLogger) Debug(ctx context.Context, message string, fields ...Field)            {}
func (n *noopLogger) Info(ctx context.Context, message string, fields ...Field)             {}
func (n *noopLogger) Warn(ctx context.Context, message string, fields ...Field)             {}
func (n *noopLogger) Error(ctx context.Context, message string, err error, fields ...Field) {}
func (n *noopLogger) Fatal(ctx context.Context, message string, err error, fields ...Field) {}
func (n *noopLogger) WithComponent(component string) Logger                                 { return n }
func (n *noopLogger) SetLevel(level constants.LogLevel)                                     {}
