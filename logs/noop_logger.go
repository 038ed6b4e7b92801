package logs

type noopLogger struct{}

func (l *noopLogger) Close() error                   { return nil }
func (l *noopLogger) Check() error                   { return nil }
func (l *noopLogger) SetLoggerSource(string) error   { return nil }
func (l *noopLogger) Log(...any)                     {}
func (l *noopLogger) LogError(...any)                {}

// NewNoopLogger returns loggers that discard everything they are given.
func NewNoopLogger() Loggers {
	return &noopLogger{}
}
