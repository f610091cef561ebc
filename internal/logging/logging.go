// Package logging wraps go.uber.org/zap, grounded on the structured
// logging style Aidin1998-finalex and luxfi-dex both use for
// trading-engine internals. It is used for startup, shutdown, and
// error-path logging only — never on the ring-buffer/CAS hot path
// (spec §5 names exactly three suspension points, and none of them is
// a log call).
package logging

import "go.uber.org/zap"

// New builds a production zap.Logger, or a development logger with
// human-friendly console output when dev is true.
func New(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// Must panics if New fails; intended for use during process startup
// in cmd/matchcored, mirroring the teacher's log.Fatalf-on-init-error
// style but upgraded to structured logging.
func Must(dev bool) *zap.Logger {
	l, err := New(dev)
	if err != nil {
		panic(err)
	}
	return l
}
