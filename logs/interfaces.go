// Package logs defines the logging seam used across the engine. Any logging
// backend with a logr adapter can be plugged in.
package logs

import "io"

//go:generate go tool mockgen -destination=./mocks/mock_$GOPACKAGE.go -package=mocks github.com/forgekit/forge/$GOPACKAGE Loggers

type Loggers interface {
	io.Closer
	// Check returns whether the loggers are correctly defined or not.
	Check() error
	// SetLoggerSource sets the source of the logger e.g. smith, foundry, fan-out.
	SetLoggerSource(source string) error
	// Log logs to the output logger.
	Log(output ...any)
	// LogError logs to the error logger.
	LogError(err ...any)
}
