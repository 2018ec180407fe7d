// Package testlog routes structured log output through the test runner.
package testlog

import (
	"testing"

	"github.com/rs/zerolog"
)

// Logger returns a debug-level logger whose output lands in t's log, so
// session traces show up only for failing or -v runs.
func Logger(t *testing.T) zerolog.Logger {
	t.Helper()
	return zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.DebugLevel).With().Timestamp().Logger()
}
