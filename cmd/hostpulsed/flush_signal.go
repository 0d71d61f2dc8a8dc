//go:build !windows
// +build !windows

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/hostpulse/hostpulse/collector"
	"github.com/hostpulse/hostpulse/share/logger"
)

// watchFlushSignal flushes buffered samples to the durable log when
// SIGUSR1 is received.
func watchFlushSignal(s *collector.Sampler, l *logger.Logger) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGUSR1)
	for range signals {
		l.Infof("Signal SIGUSR1 received. Flushing buffered samples to the durable log.")
		s.TriggerFlush()
	}
}
