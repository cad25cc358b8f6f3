//go:build !windows
// +build !windows

/*
Package osutil hides the platform differences in signal handling. Windows only has
os.Interrupt so all the other predicates are always false there.
*/
package osutil

import (
	"os"
	"os/signal"
	"syscall"
)

// SignalNotify asks the OS to send the signals hostresolve acts on to the supplied
// channel. The channel should be buffered.
func SignalNotify(c chan os.Signal) {
	signal.Notify(c, os.Interrupt, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGUSR1, syscall.SIGUSR2)
}

// SignalStop undoes SignalNotify.
func SignalStop(c chan os.Signal) {
	signal.Stop(c)
}

// IsSignalUSR1 returns true if the supplied signal is SIGUSR1 (stats report).
func IsSignalUSR1(s os.Signal) bool {
	return s == syscall.SIGUSR1
}

// IsSignalUSR2 returns true if the supplied signal is SIGUSR2 (debug toggle).
func IsSignalUSR2(s os.Signal) bool {
	return s == syscall.SIGUSR2
}

// IsSignalTERM returns true if the supplied signal is SIGTERM.
func IsSignalTERM(s os.Signal) bool {
	return s == syscall.SIGTERM
}

// IsSignalINT returns true if the supplied signal is SIGINT.
func IsSignalINT(s os.Signal) bool {
	return s == os.Interrupt
}

// IsSignalHUP returns true if the supplied signal is SIGHUP (cache flush).
func IsSignalHUP(s os.Signal) bool {
	return s == syscall.SIGHUP
}
