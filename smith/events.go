package smith

import (
	"fmt"
	"time"

	"github.com/sasha-s/go-deadlock"

	"github.com/forgekit/forge/foundry"
	"github.com/forgekit/forge/logs"
	"github.com/forgekit/forge/operation"
	"github.com/forgekit/forge/workflow"
)

// RunStartedHandler is called when a workflow run begins, after the workflow
// has been bound to its foundry.
type RunStartedHandler func(wf *workflow.Workflow, f *foundry.Foundry)

// RunCompletedHandler is called when a workflow run completes successfully.
type RunCompletedHandler func(wf *workflow.Workflow, f *foundry.Foundry, elapsed time.Duration)

// RunFailedHandler is called when a workflow run fails, before any
// compensation takes place.
type RunFailedHandler func(wf *workflow.Workflow, f *foundry.Foundry, failedStep string, err error)

// CompensationTriggeredHandler is called when a failed run starts walking its
// ledger backwards.
type CompensationTriggeredHandler func(wf *workflow.Workflow, f *foundry.Foundry, failedStep string, cause error)

// RestoreStartedHandler is called before an operation's compensation runs.
type RestoreStartedHandler func(op operation.Operation, f *foundry.Foundry)

// RestoreCompletedHandler is called after an operation's compensation succeeded.
type RestoreCompletedHandler func(op operation.Operation, f *foundry.Foundry, elapsed time.Duration)

// RestoreFailedHandler is called after an operation's compensation failed.
type RestoreFailedHandler func(op operation.Operation, f *foundry.Foundry, err error)

// CompensationCompletedHandler is called once the whole ledger has been
// walked, with the tally of compensations that succeeded and failed.
type CompensationCompletedHandler func(wf *workflow.Workflow, f *foundry.Foundry, succeeded, failed int)

// Events lets callers observe workflow runs and compensations. Handlers are
// invoked synchronously on the run's goroutine; a panicking handler is
// recovered and logged so that it cannot abort the run.
type Events struct {
	mu                    deadlock.RWMutex
	loggers               logs.Loggers
	runStarted            []RunStartedHandler
	runCompleted          []RunCompletedHandler
	runFailed             []RunFailedHandler
	compensationTriggered []CompensationTriggeredHandler
	restoreStarted        []RestoreStartedHandler
	restoreCompleted      []RestoreCompletedHandler
	restoreFailed         []RestoreFailedHandler
	compensationCompleted []CompensationCompletedHandler
}

func newEvents(loggers logs.Loggers) *Events {
	return &Events{loggers: loggers}
}

// OnRunStarted subscribes a handler to run-started events.
func (e *Events) OnRunStarted(handler RunStartedHandler) {
	if handler == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.runStarted = append(e.runStarted, handler)
}

// OnRunCompleted subscribes a handler to run-completed events.
func (e *Events) OnRunCompleted(handler RunCompletedHandler) {
	if handler == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.runCompleted = append(e.runCompleted, handler)
}

// OnRunFailed subscribes a handler to run-failed events.
func (e *Events) OnRunFailed(handler RunFailedHandler) {
	if handler == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.runFailed = append(e.runFailed, handler)
}

// OnCompensationTriggered subscribes a handler to compensation-triggered events.
func (e *Events) OnCompensationTriggered(handler CompensationTriggeredHandler) {
	if handler == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.compensationTriggered = append(e.compensationTriggered, handler)
}

// OnRestoreStarted subscribes a handler to restore-started events.
func (e *Events) OnRestoreStarted(handler RestoreStartedHandler) {
	if handler == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.restoreStarted = append(e.restoreStarted, handler)
}

// OnRestoreCompleted subscribes a handler to restore-completed events.
func (e *Events) OnRestoreCompleted(handler RestoreCompletedHandler) {
	if handler == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.restoreCompleted = append(e.restoreCompleted, handler)
}

// OnRestoreFailed subscribes a handler to restore-failed events.
func (e *Events) OnRestoreFailed(handler RestoreFailedHandler) {
	if handler == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.restoreFailed = append(e.restoreFailed, handler)
}

// OnCompensationCompleted subscribes a handler to compensation-completed events.
func (e *Events) OnCompensationCompleted(handler CompensationCompletedHandler) {
	if handler == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.compensationCompleted = append(e.compensationCompleted, handler)
}

// Clear removes every subscribed handler.
func (e *Events) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.runStarted = nil
	e.runCompleted = nil
	e.runFailed = nil
	e.compensationTriggered = nil
	e.restoreStarted = nil
	e.restoreCompleted = nil
	e.restoreFailed = nil
	e.compensationCompleted = nil
}

func (e *Events) notify(event string, call func()) {
	defer func() {
		if r := recover(); r != nil && e.loggers != nil {
			e.loggers.LogError("event subscriber panicked: ", event, ": ", fmt.Sprintf("%v", r))
		}
	}()
	call()
}

func (e *Events) notifyRunStarted(wf *workflow.Workflow, f *foundry.Foundry) {
	e.mu.RLock()
	handlers := make([]RunStartedHandler, len(e.runStarted))
	copy(handlers, e.runStarted)
	e.mu.RUnlock()
	for i := range handlers {
		handler := handlers[i]
		e.notify("run started", func() { handler(wf, f) })
	}
}

func (e *Events) notifyRunCompleted(wf *workflow.Workflow, f *foundry.Foundry, elapsed time.Duration) {
	e.mu.RLock()
	handlers := make([]RunCompletedHandler, len(e.runCompleted))
	copy(handlers, e.runCompleted)
	e.mu.RUnlock()
	for i := range handlers {
		handler := handlers[i]
		e.notify("run completed", func() { handler(wf, f, elapsed) })
	}
}

func (e *Events) notifyRunFailed(wf *workflow.Workflow, f *foundry.Foundry, failedStep string, err error) {
	e.mu.RLock()
	handlers := make([]RunFailedHandler, len(e.runFailed))
	copy(handlers, e.runFailed)
	e.mu.RUnlock()
	for i := range handlers {
		handler := handlers[i]
		e.notify("run failed", func() { handler(wf, f, failedStep, err) })
	}
}

func (e *Events) notifyCompensationTriggered(wf *workflow.Workflow, f *foundry.Foundry, failedStep string, cause error) {
	e.mu.RLock()
	handlers := make([]CompensationTriggeredHandler, len(e.compensationTriggered))
	copy(handlers, e.compensationTriggered)
	e.mu.RUnlock()
	for i := range handlers {
		handler := handlers[i]
		e.notify("compensation triggered", func() { handler(wf, f, failedStep, cause) })
	}
}

func (e *Events) notifyRestoreStarted(op operation.Operation, f *foundry.Foundry) {
	e.mu.RLock()
	handlers := make([]RestoreStartedHandler, len(e.restoreStarted))
	copy(handlers, e.restoreStarted)
	e.mu.RUnlock()
	for i := range handlers {
		handler := handlers[i]
		e.notify("restore started", func() { handler(op, f) })
	}
}

func (e *Events) notifyRestoreCompleted(op operation.Operation, f *foundry.Foundry, elapsed time.Duration) {
	e.mu.RLock()
	handlers := make([]RestoreCompletedHandler, len(e.restoreCompleted))
	copy(handlers, e.restoreCompleted)
	e.mu.RUnlock()
	for i := range handlers {
		handler := handlers[i]
		e.notify("restore completed", func() { handler(op, f, elapsed) })
	}
}

func (e *Events) notifyRestoreFailed(op operation.Operation, f *foundry.Foundry, err error) {
	e.mu.RLock()
	handlers := make([]RestoreFailedHandler, len(e.restoreFailed))
	copy(handlers, e.restoreFailed)
	e.mu.RUnlock()
	for i := range handlers {
		handler := handlers[i]
		e.notify("restore failed", func() { handler(op, f, err) })
	}
}

func (e *Events) notifyCompensationCompleted(wf *workflow.Workflow, f *foundry.Foundry, succeeded, failed int) {
	e.mu.RLock()
	handlers := make([]CompensationCompletedHandler, len(e.compensationCompleted))
	copy(handlers, e.compensationCompleted)
	e.mu.RUnlock()
	for i := range handlers {
		handler := handlers[i]
		e.notify("compensation completed", func() { handler(wf, f, succeeded, failed) })
	}
}
