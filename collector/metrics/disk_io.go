package metrics

import (
	"context"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set"
	"github.com/shirou/gopsutil/v3/disk"

	"github.com/hostpulse/hostpulse/share/models"
)

// pseudo devices that never carry interesting throughput
var ignoredDevicePrefixes = []string{"loop", "ram", "zram", "dm-"}

// DiskIOCollector reports per-device read and write rates in bytes per
// second, computed the same way NetworkCollector computes interface rates.
type DiskIOCollector struct {
	probe   Probe
	include mapset.Set

	lastCounters map[string]disk.IOCountersStat
	lastSampleAt time.Time
}

// NewDiskIOCollector tracks only the named block devices. An empty include
// list tracks every physical device.
func NewDiskIOCollector(probe Probe, include []string) *DiskIOCollector {
	includeSet := mapset.NewSet()
	for _, name := range include {
		includeSet.Add(name)
	}
	return &DiskIOCollector{
		probe:   probe,
		include: includeSet,
	}
}

func (c *DiskIOCollector) Name() string {
	return "disk_io"
}

func (c *DiskIOCollector) tracked(name string) bool {
	if c.include.Cardinality() > 0 {
		return c.include.Contains(name)
	}
	for _, prefix := range ignoredDevicePrefixes {
		if strings.HasPrefix(name, prefix) {
			return false
		}
	}
	return true
}

func (c *DiskIOCollector) Collect(ctx context.Context, s *models.Sample) error {
	counters, err := c.probe.DiskIOCounters(ctx)
	if err != nil {
		return err
	}

	current := make(map[string]disk.IOCountersStat, len(counters))
	for name, ioc := range counters {
		if c.tracked(name) {
			current[name] = ioc
		}
	}

	elapsed := s.Timestamp.Sub(c.lastSampleAt).Seconds()
	for name, cur := range current {
		prev, seen := c.lastCounters[name]
		if !seen {
			s.DiskIO[name] = models.DiskIORate{}
			continue
		}
		s.DiskIO[name] = models.DiskIORate{
			Read:  counterRate(prev.ReadBytes, cur.ReadBytes, elapsed),
			Write: counterRate(prev.WriteBytes, cur.WriteBytes, elapsed),
		}
	}

	c.lastCounters = current
	c.lastSampleAt = s.Timestamp
	return nil
}
