// Copyright © 2018 One Concern

package cmd

import (
	"os"
	"os/signal"
)

// registerSIGINTHandlerAbort aborts the migration on SIGINT. A second SIGINT exits right away.
func registerSIGINTHandlerAbort(abort func()) (stop func()) {
	signalChan := make(chan os.Signal, 2)
	signal.Notify(signalChan, os.Interrupt)
	done := make(chan struct{})

	go func() {
		select {
		case <-signalChan:
		case <-done:
			return
		}
		infoLogger.Println("Received SIGINT, stopping after the current changeset...")
		abort()

		select {
		case <-signalChan:
			wrapFatalWithCodef(exitCancelled, "Received SIGINT again, exiting")
		case <-done:
		}
	}()

	return func() {
		signal.Stop(signalChan)
		close(done)
	}
}
