// Package loggertest provides a logger.Logger for tests.
package loggertest

import (
	"meet-and-greet/internal/logger"
	"testing"

	"go.uber.org/zap/zaptest"
)

// New writes through testing.TB so output shows up only for failing tests.
func New(t testing.TB) logger.Logger {
	return logger.NewZapAdapter(zaptest.NewLogger(t))
}
