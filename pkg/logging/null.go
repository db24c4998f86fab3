package logging

import "context"

// NullLogger drops every message. Components fall back to it when no
// logger is configured, so they never need nil checks at call sites.
type NullLogger struct{}

// NewNullLogger returns a logger that drops every message
func NewNullLogger() *NullLogger {
	return &NullLogger{}
}

func (l *NullLogger) Debug(context.Context, string, Fields)        {}
func (l *NullLogger) Info(context.Context, string, Fields)         {}
func (l *NullLogger) Warn(context.Context, string, Fields)         {}
func (l *NullLogger) Error(context.Context, string, error, Fields) {}

// WithFields returns l; dropped messages carry no fields
func (l *NullLogger) WithFields(Fields) Logger { return l }

func (l *NullLogger) Close() error { return nil }
