package metrics

import (
	"context"
	"time"

	mapset "github.com/deckarep/golang-set"
	utilnet "github.com/shirou/gopsutil/v3/net"

	"github.com/hostpulse/hostpulse/share/models"
)

var loopbackNames = mapset.NewSetWith("lo", "lo0")

// NetworkCollector reports per-interface receive and transmit rates in
// bytes per second. Rates are derived from the byte counter movement
// between the previous and the current sample timestamp, so the first call
// records zero rates for every tracked interface. Interfaces that vanish
// between calls are dropped from the output; when they come back their
// first reading is zero again.
type NetworkCollector struct {
	probe   Probe
	include mapset.Set

	lastCounters map[string]utilnet.IOCountersStat
	lastSampleAt time.Time
}

// NewNetworkCollector tracks only the named interfaces. An empty include
// list tracks every interface except loopback.
func NewNetworkCollector(probe Probe, include []string) *NetworkCollector {
	includeSet := mapset.NewSet()
	for _, name := range include {
		includeSet.Add(name)
	}
	return &NetworkCollector{
		probe:   probe,
		include: includeSet,
	}
}

func (c *NetworkCollector) Name() string {
	return "network"
}

func (c *NetworkCollector) tracked(name string) bool {
	if c.include.Cardinality() == 0 {
		return !loopbackNames.Contains(name)
	}
	return c.include.Contains(name)
}

func (c *NetworkCollector) Collect(ctx context.Context, s *models.Sample) error {
	counters, err := c.probe.NetIOCounters(ctx)
	if err != nil {
		return err
	}

	current := make(map[string]utilnet.IOCountersStat, len(counters))
	for _, ioc := range counters {
		if c.tracked(ioc.Name) {
			current[ioc.Name] = ioc
		}
	}

	elapsed := s.Timestamp.Sub(c.lastSampleAt).Seconds()
	for name, cur := range current {
		prev, seen := c.lastCounters[name]
		if !seen {
			// rates need two readings of the same interface
			s.Network[name] = models.NetworkRate{}
			continue
		}
		s.Network[name] = models.NetworkRate{
			Rx: counterRate(prev.BytesRecv, cur.BytesRecv, elapsed),
			Tx: counterRate(prev.BytesSent, cur.BytesSent, elapsed),
		}
	}

	c.lastCounters = current
	c.lastSampleAt = s.Timestamp
	return nil
}
