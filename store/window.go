package store

import (
	"fmt"
	"time"
)

// Window names a time range of stored samples, as used in request paths.
type Window string

const (
	// WindowAll spans every retained sample.
	WindowAll Window = "all"
	// WindowHour spans the last hour.
	WindowHour Window = "hour"
)

var Windows = []Window{WindowAll, WindowHour}

func ParseWindow(str string) (Window, error) {
	switch Window(str) {
	case WindowAll:
		return WindowAll, nil
	case WindowHour:
		return WindowHour, nil
	default:
		return "", fmt.Errorf("unknown window: %q", str)
	}
}

// Span returns the window length, zero meaning unbounded.
func (w Window) Span() time.Duration {
	if w == WindowHour {
		return time.Hour
	}
	return 0
}

func (w Window) String() string {
	return string(w)
}
