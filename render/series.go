package render

import (
	"fmt"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/hostpulse/hostpulse/share/config"
	"github.com/hostpulse/hostpulse/share/models"
)

// ErrNoData is returned when a chart has not a single point to draw,
// either because the window is empty or because no sample carries the
// requested metric.
var ErrNoData = errors.New("no data points in window")

// Metric names one chart, as used in request paths.
type Metric string

const (
	MetricCPU     Metric = "cpu"
	MetricTemp    Metric = "temp"
	MetricMemory  Metric = "memory"
	MetricDisk    Metric = "disk"
	MetricNetwork Metric = "network"
	MetricDiskIO  Metric = "diskio"
)

var Metrics = []Metric{MetricCPU, MetricTemp, MetricMemory, MetricDisk, MetricNetwork, MetricDiskIO}

func ParseMetric(str string) (Metric, error) {
	for _, m := range Metrics {
		if Metric(str) == m {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown metric: %q", str)
}

func (m Metric) String() string {
	return string(m)
}

// Point is one chart value.
type Point struct {
	Timestamp time.Time
	Value     float64
}

// Series is one named line on a chart.
type Series struct {
	Name   string
	Points []Point
}

const bytesPerMB = 1024 * 1024

// chartDef describes how one metric becomes a chart.
type chartDef struct {
	title        string
	yLabel       string
	defaultRange config.AxisRange
	extract      func(samples []*models.Sample) []Series
}

var chartDefs = map[Metric]chartDef{
	MetricCPU: {
		title:        "CPU Usage Over Time",
		yLabel:       "CPU %",
		defaultRange: config.AxisRange{Min: 0, Max: 100},
		extract: func(samples []*models.Sample) []Series {
			points := make([]Point, 0, len(samples))
			for _, s := range samples {
				points = append(points, Point{Timestamp: s.Timestamp, Value: s.CPUUsage})
			}
			return []Series{{Points: points}}
		},
	},
	MetricTemp: {
		title:        "CPU Temperature Over Time",
		yLabel:       "Temperature °C",
		defaultRange: config.AxisRange{Min: 30, Max: 70},
		extract: func(samples []*models.Sample) []Series {
			var points []Point
			for _, s := range samples {
				if s.CPUTemp == nil {
					// hosts without a sensor leave gaps, not zeros
					continue
				}
				points = append(points, Point{Timestamp: s.Timestamp, Value: *s.CPUTemp})
			}
			return []Series{{Points: points}}
		},
	},
	MetricMemory: {
		title:        "Memory Usage Over Time",
		yLabel:       "Memory %",
		defaultRange: config.AxisRange{Min: 0, Max: 100},
		extract: func(samples []*models.Sample) []Series {
			points := make([]Point, 0, len(samples))
			for _, s := range samples {
				points = append(points, Point{Timestamp: s.Timestamp, Value: s.MemoryUsage})
			}
			return []Series{{Points: points}}
		},
	},
	MetricDisk: {
		title:        "Disk Usage Over Time",
		yLabel:       "Disk %",
		defaultRange: config.AxisRange{Min: 0, Max: 100},
		extract:      extractDiskUsage,
	},
	MetricNetwork: {
		title:        "Network Speed Over Time",
		yLabel:       "MB/s",
		defaultRange: config.AxisRange{Min: 0, Max: 1},
		extract:      extractNetwork,
	},
	MetricDiskIO: {
		title:        "Disk I/O Over Time",
		yLabel:       "MB/s",
		defaultRange: config.AxisRange{Min: 0, Max: 1},
		extract:      extractDiskIO,
	},
}

func extractDiskUsage(samples []*models.Sample) []Series {
	byPath := map[string][]Point{}
	for _, s := range samples {
		for path, pct := range s.DiskUsage {
			if pct == nil {
				// unreadable mount leaves a gap
				continue
			}
			byPath[path] = append(byPath[path], Point{Timestamp: s.Timestamp, Value: *pct})
		}
	}
	return sortedSeries(byPath)
}

func extractNetwork(samples []*models.Sample) []Series {
	byName := map[string][]Point{}
	for _, s := range samples {
		for iface, rate := range s.Network {
			byName[iface+" rx"] = append(byName[iface+" rx"], Point{Timestamp: s.Timestamp, Value: rate.Rx / bytesPerMB})
			byName[iface+" tx"] = append(byName[iface+" tx"], Point{Timestamp: s.Timestamp, Value: rate.Tx / bytesPerMB})
		}
	}
	return sortedSeries(byName)
}

func extractDiskIO(samples []*models.Sample) []Series {
	byName := map[string][]Point{}
	for _, s := range samples {
		for dev, rate := range s.DiskIO {
			byName[dev+" read"] = append(byName[dev+" read"], Point{Timestamp: s.Timestamp, Value: rate.Read / bytesPerMB})
			byName[dev+" write"] = append(byName[dev+" write"], Point{Timestamp: s.Timestamp, Value: rate.Write / bytesPerMB})
		}
	}
	return sortedSeries(byName)
}

// sortedSeries flattens a name->points map into series ordered by name so
// colors stay stable between renders.
func sortedSeries(byName map[string][]Point) []Series {
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Series, 0, len(names))
	for _, name := range names {
		out = append(out, Series{Name: name, Points: byName[name]})
	}
	return out
}

// ExtractSeries converts raw samples into the chart series for a metric.
// Devices and mounts become one series each; samples missing a device
// leave a gap in its series.
func ExtractSeries(metric Metric, samples []*models.Sample) []Series {
	def, ok := chartDefs[metric]
	if !ok {
		return nil
	}
	return def.extract(samples)
}
