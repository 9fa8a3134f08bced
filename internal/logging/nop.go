package logging

import "github.com/arloliu/grouper/types"

// NopLogger discards all log messages. It is the default when no logger is configured.
type NopLogger struct{}

var _ types.Logger = (*NopLogger)(nil)

// NewNop creates a logger that discards everything.
//
// Example:
//
//	svc, err := grouper.NewService(&cfg, src, grouper.WithLogger(logging.NewNop()))
func NewNop() *NopLogger {
	return &NopLogger{}
}

func (NopLogger) Debug(string, ...any) {}

func (NopLogger) Info(string, ...any) {}

func (NopLogger) Warn(string, ...any) {}

func (NopLogger) Error(string, ...any) {}

// Fatal discards the message and does not exit.
func (NopLogger) Fatal(string, ...any) {}
