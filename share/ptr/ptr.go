package ptr

import "time"

func Time(t time.Time) *time.Time {
	return &t
}

func Float64(f float64) *float64 {
	return &f
}
