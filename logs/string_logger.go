package logs

import (
	"fmt"
	"strings"

	"github.com/sasha-s/go-deadlock"
)

// StringLoggers collects log lines in memory. It is intended for tests.
type StringLoggers struct {
	mu      deadlock.RWMutex
	source  string
	content strings.Builder
}

func (l *StringLoggers) Check() error {
	return nil
}

func (l *StringLoggers) SetLoggerSource(source string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.source = source
	return nil
}

func (l *StringLoggers) Log(output ...any) {
	l.append("Output", output...)
}

func (l *StringLoggers) LogError(err ...any) {
	l.append("Error", err...)
}

func (l *StringLoggers) append(stream string, content ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.content.WriteString(fmt.Sprintf("[%v] %v: %v\n", l.source, stream, strings.TrimSpace(fmt.Sprintln(content...))))
}

// GetLogContent returns everything logged so far.
func (l *StringLoggers) GetLogContent() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.content.String()
}

func (l *StringLoggers) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.content.Reset()
	return nil
}

// NewStringLogger returns loggers which retain their content in memory.
func NewStringLogger(loggerSource string) (*StringLoggers, error) {
	l := &StringLoggers{}
	err := l.SetLoggerSource(loggerSource)
	return l, err
}
