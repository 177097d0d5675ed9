//go:build !windows

package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/fulmenhq/fcman/pkg/reconcile"
)

// installSignalHandlers maps process signals onto the monitor token:
// SIGUSR1 escalates the next status line to verbose, SIGINT requests a
// graceful abort of the walk in progress. A second SIGINT kills the
// process the usual way.
func installSignalHandlers(mon *reconcile.Monitor) {
	ch := make(chan os.Signal, 4)
	signal.Notify(ch, syscall.SIGUSR1, os.Interrupt)

	go func() {
		for sig := range ch {
			switch sig {
			case syscall.SIGUSR1:
				mon.EscalateOnce()
			case os.Interrupt:
				mon.Cancel()
				signal.Reset(os.Interrupt)
			}
		}
	}()
}
