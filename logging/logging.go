// Package logging constructs the zap loggers used throughout the
// publisher.
package logging

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// New builds a *zap.SugaredLogger: the development encoder (readable,
// colorized level names) when dev is true, the production JSON encoder
// otherwise.
func New(dev bool) (*zap.SugaredLogger, error) {
	var logger *zap.Logger
	var err error
	if dev {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, errors.Wrap(err, "logging: build zap logger")
	}
	return logger.Sugar(), nil
}

// Noop returns a logger that discards everything, for tests that need a
// *zap.SugaredLogger but don't care about its output.
func Noop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
