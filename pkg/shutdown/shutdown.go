// Package shutdown coordinates graceful process shutdown.
//
// Managers (e.g. the POSIX signal manager) decide when shutdown starts;
// callbacks run the actual teardown in registration order.
package shutdown

import "sync"

// Callback is invoked when shutdown is requested. The string argument names
// the manager that triggered the shutdown.
type Callback interface {
	OnShutdown(manager string) error
}

// Func adapts an ordinary function to the Callback interface.
type Func func(manager string) error

// OnShutdown implements Callback.
func (f Func) OnShutdown(manager string) error { return f(manager) }

// Manager watches for a shutdown condition and reports it through the
// interface passed to Start.
type Manager interface {
	GetName() string
	Start(gs Interface) error
	ShutdownStart() error
	ShutdownFinish() error
}

// Interface is what managers see of the GracefulShutdown coordinator.
type Interface interface {
	StartShutdown(m Manager)
	ReportError(err error)
	AddShutdownCallback(cb Callback)
}

// ErrorHandler receives errors raised during shutdown.
type ErrorHandler interface {
	OnError(err error)
}

// GracefulShutdown is the shutdown coordinator.
type GracefulShutdown struct {
	callbacks    []Callback
	managers     []Manager
	errorHandler ErrorHandler
}

// New creates an empty GracefulShutdown.
func New() *GracefulShutdown {
	return &GracefulShutdown{}
}

// Start starts all registered managers.
func (gs *GracefulShutdown) Start() error {
	for _, m := range gs.managers {
		if err := m.Start(gs); err != nil {
			return err
		}
	}
	return nil
}

// AddShutdownManager registers a manager.
func (gs *GracefulShutdown) AddShutdownManager(m Manager) {
	gs.managers = append(gs.managers, m)
}

// AddShutdownCallback registers a callback.
func (gs *GracefulShutdown) AddShutdownCallback(cb Callback) {
	gs.callbacks = append(gs.callbacks, cb)
}

// SetErrorHandler installs the error sink used during shutdown.
func (gs *GracefulShutdown) SetErrorHandler(h ErrorHandler) {
	gs.errorHandler = h
}

// StartShutdown runs all callbacks concurrently, waits for them, then lets
// the triggering manager finish.
func (gs *GracefulShutdown) StartShutdown(m Manager) {
	gs.ReportError(m.ShutdownStart())

	var wg sync.WaitGroup
	for _, cb := range gs.callbacks {
		wg.Add(1)
		go func(cb Callback) {
			defer wg.Done()
			gs.ReportError(cb.OnShutdown(m.GetName()))
		}(cb)
	}
	wg.Wait()

	gs.ReportError(m.ShutdownFinish())
}

// ReportError forwards err to the error handler when one is set.
func (gs *GracefulShutdown) ReportError(err error) {
	if err != nil && gs.errorHandler != nil {
		gs.errorHandler.OnError(err)
	}
}
