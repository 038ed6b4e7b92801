package foundry

import (
	"time"

	"github.com/sasha-s/go-deadlock"

	"github.com/forgekit/forge/logs"
	"github.com/forgekit/forge/operation"
)

type (
	// OperationStartedHandler is notified before an operation runs.
	OperationStartedHandler func(op operation.Operation, f *Foundry, input any)
	// OperationCompletedHandler is notified after an operation succeeds.
	OperationCompletedHandler func(op operation.Operation, f *Foundry, input, output any, elapsed time.Duration)
	// OperationFailedHandler is notified after an operation fails.
	OperationFailedHandler func(op operation.Operation, f *Foundry, input any, err error, elapsed time.Duration)
)

// Events delivers operation lifecycle notifications synchronously on the
// executing call. A panicking subscriber is recovered and logged; it can
// never change the outcome of the operation it observes.
type Events struct {
	mu        deadlock.RWMutex
	loggers   logs.Loggers
	started   []OperationStartedHandler
	completed []OperationCompletedHandler
	failed    []OperationFailedHandler
}

func newEvents(loggers logs.Loggers) *Events {
	return &Events{loggers: loggers}
}

// OnOperationStarted subscribes to operation-started notifications.
func (e *Events) OnOperationStarted(h OperationStartedHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.started = append(e.started, h)
}

// OnOperationCompleted subscribes to operation-completed notifications.
func (e *Events) OnOperationCompleted(h OperationCompletedHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.completed = append(e.completed, h)
}

// OnOperationFailed subscribes to operation-failed notifications.
func (e *Events) OnOperationFailed(h OperationFailedHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failed = append(e.failed, h)
}

// Clear drops every subscriber. Long-lived publishers must clear their
// subscriber lists on release or they become a leak.
func (e *Events) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.started = nil
	e.completed = nil
	e.failed = nil
}

func (e *Events) notify(deliver func()) {
	defer func() {
		if r := recover(); r != nil {
			e.loggers.LogError("event subscriber panicked:", r)
		}
	}()
	deliver()
}

func (e *Events) fireOperationStarted(op operation.Operation, f *Foundry, input any) {
	e.mu.RLock()
	handlers := e.started
	e.mu.RUnlock()
	for _, h := range handlers {
		e.notify(func() { h(op, f, input) })
	}
}

func (e *Events) fireOperationCompleted(op operation.Operation, f *Foundry, input, output any, elapsed time.Duration) {
	e.mu.RLock()
	handlers := e.completed
	e.mu.RUnlock()
	for _, h := range handlers {
		e.notify(func() { h(op, f, input, output, elapsed) })
	}
}

func (e *Events) fireOperationFailed(op operation.Operation, f *Foundry, input any, err error, elapsed time.Duration) {
	e.mu.RLock()
	handlers := e.failed
	e.mu.RUnlock()
	for _, h := range handlers {
		e.notify(func() { h(op, f, input, err, elapsed) })
	}
}
