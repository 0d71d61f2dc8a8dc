//go:build windows
// +build windows

package main

import (
	"github.com/hostpulse/hostpulse/collector"
	"github.com/hostpulse/hostpulse/share/logger"
)

// watchFlushSignal is a no-op on Windows, there is no SIGUSR1. Flushes
// still happen on the hourly schedule and on shutdown.
func watchFlushSignal(*collector.Sampler, *logger.Logger) {}
