// Package corelog builds the structured logger every engine session uses
// for internal tracing: one constructor per deployment mode, nothing
// fancier.
package corelog

import "go.uber.org/zap"

// New returns a production JSON logger, or a development console logger
// when dev is true (handy for cmd/ren's REPL, which a human is watching).
func New(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// Discard returns a logger whose output goes nowhere, used by tests that
// don't want to assert on log lines but still need a non-nil *zap.Logger.
func Discard() *zap.Logger { return zap.NewNop() }
