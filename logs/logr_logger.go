package logs

import (
	"fmt"
	"strings"

	"github.com/go-logr/logr"

	"github.com/forgekit/forge/commonerrors"
)

const KeyLoggerSource = "logger-source"

type logrLogger struct {
	logger logr.Logger
}

func (l *logrLogger) Close() error {
	return nil
}

func (l *logrLogger) Check() error {
	if l.logger.GetSink() == nil {
		return commonerrors.ErrNoLogger
	}
	return nil
}

func (l *logrLogger) SetLoggerSource(source string) error {
	if strings.TrimSpace(source) == "" {
		return commonerrors.UndefinedVariable("logger source")
	}
	l.logger = l.logger.WithName(source).WithValues(KeyLoggerSource, source)
	return nil
}

func (l *logrLogger) Log(output ...any) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintln(output...)))
}

func (l *logrLogger) LogError(err ...any) {
	l.logger.Error(nil, strings.TrimSpace(fmt.Sprintln(err...)))
}

// NewLogrLogger creates loggers based on a logr implementation (https://github.com/go-logr/logr).
func NewLogrLogger(logrImpl logr.Logger, loggerSource string) (loggers Loggers, err error) {
	loggers = &logrLogger{logger: logrImpl}
	err = loggers.SetLoggerSource(loggerSource)
	return
}
