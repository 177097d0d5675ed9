//go:build windows

package cmd

import (
	"os"
	"os/signal"

	"github.com/fulmenhq/fcman/pkg/reconcile"
)

// installSignalHandlers wires Ctrl+C to a graceful abort. There is no
// SIGUSR1 equivalent on Windows, so verbosity escalation is
// unavailable here.
func installSignalHandlers(mon *reconcile.Monitor) {
	ch := make(chan os.Signal, 4)
	signal.Notify(ch, os.Interrupt)

	go func() {
		for range ch {
			mon.Cancel()
			signal.Reset(os.Interrupt)
		}
	}()
}
