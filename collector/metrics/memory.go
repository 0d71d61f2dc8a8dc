package metrics

import (
	"context"

	"github.com/hostpulse/hostpulse/share/models"
)

type MemoryCollector struct {
	probe Probe
}

func NewMemoryCollector(probe Probe) *MemoryCollector {
	return &MemoryCollector{probe: probe}
}

func (c *MemoryCollector) Name() string {
	return "memory"
}

func (c *MemoryCollector) Collect(ctx context.Context, s *models.Sample) error {
	memStats, err := c.probe.VirtualMemory(ctx)
	if err != nil {
		return err
	}
	s.MemoryUsage = round1(memStats.UsedPercent)
	return nil
}
