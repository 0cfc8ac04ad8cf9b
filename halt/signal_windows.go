//go:build windows

package halt

import (
	"os"
	"os/signal"

	"golang.org/x/sys/windows"
)

// notifyTerminationSignal arranges for ch to receive a single value when
// the process receives Ctrl-C or a Ctrl-Break/close event, and returns a
// func to stop listening. windows.SIGTERM covers the latter: the runtime
// maps console close/logoff/shutdown events onto it for os/signal.
func notifyTerminationSignal(ch chan<- struct{}) func() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, windows.SIGTERM)

	done := make(chan struct{})
	go func() {
		select {
		case <-sigCh:
			select {
			case ch <- struct{}{}:
			default:
			}
		case <-done:
		}
	}()

	return func() {
		close(done)
		signal.Stop(sigCh)
	}
}
