// Package posixsignal triggers graceful shutdown on SIGINT/SIGTERM.
package posixsignal

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/Missonix/SSAI-brain/pkg/shutdown"
)

// Name is the manager name reported to shutdown callbacks.
const Name = "PosixSignalManager"

// PosixSignalManager implements shutdown.Manager.
type PosixSignalManager struct {
	signals []os.Signal
}

// NewPosixSignalManager listens for the given signals, defaulting to
// SIGINT and SIGTERM.
func NewPosixSignalManager(sig ...os.Signal) *PosixSignalManager {
	if len(sig) == 0 {
		sig = []os.Signal{os.Interrupt, syscall.SIGTERM}
	}
	return &PosixSignalManager{signals: sig}
}

// GetName returns the manager name.
func (*PosixSignalManager) GetName() string { return Name }

// Start waits for a signal on a background goroutine, then starts shutdown
// and exits the process.
func (m *PosixSignalManager) Start(gs shutdown.Interface) error {
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, m.signals...)
		<-c

		gs.StartShutdown(m)
		os.Exit(0)
	}()
	return nil
}

// ShutdownStart implements shutdown.Manager.
func (*PosixSignalManager) ShutdownStart() error { return nil }

// ShutdownFinish implements shutdown.Manager.
func (*PosixSignalManager) ShutdownFinish() error { return nil }
