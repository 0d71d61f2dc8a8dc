package metrics

import (
	"context"
	"math"

	"github.com/pkg/errors"

	"github.com/hostpulse/hostpulse/share/models"
)

// Collector reads one metric family from the host and writes it into the
// sample being assembled. Collectors keep state between calls (previous
// counter readings) and are not safe for concurrent use.
type Collector interface {
	Name() string
	Collect(ctx context.Context, s *models.Sample) error
}

// ErrUnavailable marks a metric that can never be read on this host, for
// example a missing temperature sensor. The sampler drops the collector
// after the first occurrence instead of reporting the same failure every
// tick.
var ErrUnavailable = errors.New("metric unavailable on this host")

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// counterRate converts two readings of a monotonic byte counter into a
// bytes-per-second rate. Kernel counter resets yield zero rather than a
// huge negative spike.
func counterRate(prev, cur uint64, elapsedSec float64) float64 {
	if elapsedSec <= 0 || cur <= prev {
		return 0
	}
	return float64(cur-prev) / elapsedSec
}
