package metrics

import (
	"context"

	"github.com/hostpulse/hostpulse/share/logger"
	"github.com/hostpulse/hostpulse/share/models"
	"github.com/hostpulse/hostpulse/share/ptr"
)

// DiskUsageCollector reports the used percentage for each configured mount
// point. A mount that cannot be statted (pulled disk, stale NFS) records a
// nil entry so the device stays visible in the output.
type DiskUsageCollector struct {
	probe Probe
	paths []string
	log   *logger.Logger
}

func NewDiskUsageCollector(probe Probe, paths []string, log *logger.Logger) *DiskUsageCollector {
	return &DiskUsageCollector{
		probe: probe,
		paths: paths,
		log:   log,
	}
}

func (c *DiskUsageCollector) Name() string {
	return "disk_usage"
}

func (c *DiskUsageCollector) Collect(ctx context.Context, s *models.Sample) error {
	for _, path := range c.paths {
		usage, err := c.probe.DiskUsage(ctx, path)
		if err != nil {
			c.log.Debugf("disk usage for %s: %v", path, err)
			s.DiskUsage[path] = nil
			continue
		}
		s.DiskUsage[path] = ptr.Float64(round1(usage.UsedPercent))
	}
	return nil
}
