package models

import (
	"time"
)

// NetworkRate is the throughput of one network interface in bytes per
// second, averaged over the interval since the previous sample.
type NetworkRate struct {
	Rx float64 `json:"rx_speed"`
	Tx float64 `json:"tx_speed"`
}

// DiskIORate is the throughput of one block device in bytes per second,
// averaged over the interval since the previous sample.
type DiskIORate struct {
	Read  float64 `json:"read_speed"`
	Write float64 `json:"write_speed"`
}

// Sample is one host measurement. CPUTemp is nil when no temperature
// sensor is readable on the host. A nil disk usage entry means the mount
// point exists in the configuration but could not be statted.
type Sample struct {
	Timestamp   time.Time              `json:"timestamp"`
	CPUUsage    float64                `json:"cpu_usage"`
	CPUTemp     *float64               `json:"cpu_temp"`
	MemoryUsage float64                `json:"memory_usage"`
	DiskUsage   map[string]*float64    `json:"disk_usage"`
	Network     map[string]NetworkRate `json:"network"`
	DiskIO      map[string]DiskIORate  `json:"disk_io"`
}

// NewSample returns a Sample with all per-device maps allocated so they
// serialize as empty objects rather than null.
func NewSample(ts time.Time) *Sample {
	return &Sample{
		Timestamp: ts,
		DiskUsage: map[string]*float64{},
		Network:   map[string]NetworkRate{},
		DiskIO:    map[string]DiskIORate{},
	}
}
