package metrics

import (
	"context"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	utilnet "github.com/shirou/gopsutil/v3/net"
)

// MockProbe returns whatever values its fields hold. Collectors under test
// mutate the fields between calls to simulate counter movement.
type MockProbe struct {
	CPUTimesStat   cpu.TimesStat
	CPUTimesErr    error
	Memory         *mem.VirtualMemoryStat
	MemoryErr      error
	Usage          map[string]*disk.UsageStat
	UsageErr       map[string]error
	IOCounters     map[string]disk.IOCountersStat
	IOCountersErr  error
	NetCounters    []utilnet.IOCountersStat
	NetCountersErr error
	Temps          []host.TemperatureStat
	TempsErr       error
	UptimeSec      uint64
	UptimeErr      error
	Host           string
	HostErr        error
}

var _ Probe = (*MockProbe)(nil)

func (p *MockProbe) CPUTimes(ctx context.Context) (cpu.TimesStat, error) {
	return p.CPUTimesStat, p.CPUTimesErr
}

func (p *MockProbe) VirtualMemory(ctx context.Context) (*mem.VirtualMemoryStat, error) {
	return p.Memory, p.MemoryErr
}

func (p *MockProbe) DiskUsage(ctx context.Context, path string) (*disk.UsageStat, error) {
	if err, ok := p.UsageErr[path]; ok {
		return nil, err
	}
	return p.Usage[path], nil
}

func (p *MockProbe) DiskIOCounters(ctx context.Context) (map[string]disk.IOCountersStat, error) {
	return p.IOCounters, p.IOCountersErr
}

func (p *MockProbe) NetIOCounters(ctx context.Context) ([]utilnet.IOCountersStat, error) {
	return p.NetCounters, p.NetCountersErr
}

func (p *MockProbe) SensorsTemperatures(ctx context.Context) ([]host.TemperatureStat, error) {
	return p.Temps, p.TempsErr
}

func (p *MockProbe) Uptime(ctx context.Context) (uint64, error) {
	return p.UptimeSec, p.UptimeErr
}

func (p *MockProbe) Hostname() (string, error) {
	return p.Host, p.HostErr
}
