package metrics

import (
	"context"
	"math"

	"github.com/shirou/gopsutil/v3/cpu"

	"github.com/hostpulse/hostpulse/share/models"
)

// CPUCollector reports the busy share of the interval between two calls,
// derived from the aggregated cpu time counters.
type CPUCollector struct {
	probe Probe

	lastTimes cpu.TimesStat
	hasLast   bool
}

func NewCPUCollector(probe Probe) *CPUCollector {
	return &CPUCollector{probe: probe}
}

func (c *CPUCollector) Name() string {
	return "cpu"
}

func (c *CPUCollector) Collect(ctx context.Context, s *models.Sample) error {
	cur, err := c.probe.CPUTimes(ctx)
	if err != nil {
		return err
	}

	prev, hadLast := c.lastTimes, c.hasLast
	c.lastTimes = cur
	c.hasLast = true

	if !hadLast {
		// no baseline on the very first call
		s.CPUUsage = 0
		return nil
	}
	s.CPUUsage = round1(busyPercent(prev, cur))
	return nil
}

func cpuTotal(t cpu.TimesStat) float64 {
	return t.User + t.System + t.Idle + t.Nice + t.Iowait + t.Irq +
		t.Softirq + t.Steal
}

func busyPercent(t1, t2 cpu.TimesStat) float64 {
	t1All := cpuTotal(t1)
	t2All := cpuTotal(t2)
	t1Busy := t1All - t1.Idle
	t2Busy := t2All - t2.Idle

	if t2Busy <= t1Busy {
		return 0
	}
	if t2All <= t1All {
		return 100
	}
	return math.Min(100, math.Max(0, (t2Busy-t1Busy)/(t2All-t1All)*100))
}
