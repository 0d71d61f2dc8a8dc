package metrics

import (
	"context"
	"errors"
	"os"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	utilnet "github.com/shirou/gopsutil/v3/net"
)

// Probe abstracts the host statistic reads so collectors can be tested
// against canned values.
type Probe interface {
	CPUTimes(ctx context.Context) (cpu.TimesStat, error)
	VirtualMemory(ctx context.Context) (*mem.VirtualMemoryStat, error)
	DiskUsage(ctx context.Context, path string) (*disk.UsageStat, error)
	DiskIOCounters(ctx context.Context) (map[string]disk.IOCountersStat, error)
	NetIOCounters(ctx context.Context) ([]utilnet.IOCountersStat, error)
	SensorsTemperatures(ctx context.Context) ([]host.TemperatureStat, error)
	Uptime(ctx context.Context) (uint64, error)
	Hostname() (string, error)
}

type realProbe struct{}

func NewProbe() Probe {
	return &realProbe{}
}

func (p *realProbe) CPUTimes(ctx context.Context) (cpu.TimesStat, error) {
	// aggregated over all cores, gopsutil returns a single entry
	times, err := cpu.TimesWithContext(ctx, false)
	if err != nil {
		return cpu.TimesStat{}, err
	}
	if len(times) == 0 {
		return cpu.TimesStat{}, errors.New("no cpu times reported")
	}
	return times[0], nil
}

func (p *realProbe) VirtualMemory(ctx context.Context) (*mem.VirtualMemoryStat, error) {
	return mem.VirtualMemoryWithContext(ctx)
}

func (p *realProbe) DiskUsage(ctx context.Context, path string) (*disk.UsageStat, error) {
	return disk.UsageWithContext(ctx, path)
}

func (p *realProbe) DiskIOCounters(ctx context.Context) (map[string]disk.IOCountersStat, error) {
	return disk.IOCountersWithContext(ctx)
}

func (p *realProbe) NetIOCounters(ctx context.Context) ([]utilnet.IOCountersStat, error) {
	return utilnet.IOCountersWithContext(ctx, true)
}

func (p *realProbe) SensorsTemperatures(ctx context.Context) ([]host.TemperatureStat, error) {
	return host.SensorsTemperaturesWithContext(ctx)
}

func (p *realProbe) Uptime(ctx context.Context) (uint64, error) {
	return host.UptimeWithContext(ctx)
}

func (p *realProbe) Hostname() (string, error) {
	return os.Hostname()
}
