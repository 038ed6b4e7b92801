package logs

import (
	"log"
	"os"

	"github.com/go-logr/stdr"
)

// NewStdLogger returns loggers writing to standard output via stdr.
func NewStdLogger(loggerSource string) (Loggers, error) {
	return NewLogrLogger(stdr.New(log.New(os.Stdout, "", log.LstdFlags)), loggerSource)
}
