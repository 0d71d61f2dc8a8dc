package metrics

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/hostpulse/hostpulse/share/models"
	"github.com/hostpulse/hostpulse/share/ptr"
)

// TempCollector reads the CPU temperature from the first host sensor
// matching one of the configured sensor names.
type TempCollector struct {
	probe   Probe
	sensors []string
}

func NewTempCollector(probe Probe, sensors []string) *TempCollector {
	return &TempCollector{
		probe:   probe,
		sensors: sensors,
	}
}

func (c *TempCollector) Name() string {
	return "cpu_temp"
}

func (c *TempCollector) Collect(ctx context.Context, s *models.Sample) error {
	stats, err := c.probe.SensorsTemperatures(ctx)
	if err != nil {
		return errors.Wrapf(ErrUnavailable, "temperature sensors: %v", err)
	}

	for _, want := range c.sensors {
		for _, stat := range stats {
			if stat.Temperature == 0 {
				continue
			}
			if strings.Contains(strings.ToLower(stat.SensorKey), strings.ToLower(want)) {
				s.CPUTemp = ptr.Float64(round1(stat.Temperature))
				return nil
			}
		}
	}
	return errors.Wrapf(ErrUnavailable, "no sensor matched %v", c.sensors)
}
