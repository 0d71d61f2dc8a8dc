package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"

	"github.com/hostpulse/hostpulse/share/logger"
)

const (
	DefaultInterval   = 60 * time.Second
	MinInterval       = time.Second
	DefaultRetention  = 7 * 24 * time.Hour
	DefaultDataDir    = "/var/lib/hostpulse"
	DefaultDataFile   = "hostpulse.json"
	DefaultScratchDir = "/dev/shm"
	ScratchFileName   = "hostpulse_tail.json"

	DefaultWebAddress = "0.0.0.0:9000"
	DefaultMaxPoints  = 200
)

var defaultTempSensors = []string{"cpu_thermal", "cpu-thermal", "coretemp", "k10temp", "soc_thermal"}

// Config is the single on-disk configuration shared by the sampler daemon,
// the web process and the status command. Each binary only validates the
// sections it uses.
type Config struct {
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Web        WebConfig        `mapstructure:"web"`
	Logging    LogConfig        `mapstructure:"logging"`
}

type MonitoringConfig struct {
	Interval           time.Duration `mapstructure:"interval"`
	DataDir            string        `mapstructure:"data_dir"`
	ScratchFile        string        `mapstructure:"scratch_file"`
	Retention          time.Duration `mapstructure:"retention"`
	DiskPaths          []string      `mapstructure:"disk_paths"`
	DiskIODevices      []string      `mapstructure:"disk_io_devices"`
	NetInterfaces      []string      `mapstructure:"net_interfaces"`
	TempSensors        []string      `mapstructure:"temp_sensors"`
	TempDisabled       bool          `mapstructure:"temp_disabled"`
	DisabledMetrics    []string      `mapstructure:"disabled_metrics"`
	HourBucketByMinute bool          `mapstructure:"hour_bucket_by_minute"`
}

// AxisRange is a default y-axis window for one chart. The rendered upper
// bound still grows when observed values exceed it.
type AxisRange struct {
	Min float64 `mapstructure:"min" json:"min"`
	Max float64 `mapstructure:"max" json:"max"`
}

type WebConfig struct {
	Address       string               `mapstructure:"address"`
	DocRoot       string               `mapstructure:"doc_root"`
	CertFile      string               `mapstructure:"cert_file"`
	KeyFile       string               `mapstructure:"key_file"`
	AccessLogFile string               `mapstructure:"access_log_file"`
	MaxPoints     int                  `mapstructure:"max_points"`
	CORSOrigins   []string             `mapstructure:"cors_origins"`
	ChartRanges   map[string]AxisRange `mapstructure:"chart_ranges"`
}

type LogConfig struct {
	LogOutput logger.LogOutput `mapstructure:"log_file"`
	LogLevel  logger.LogLevel  `mapstructure:"log_level"`
}

// DataFile is the durable samples file under the data directory.
func (c *MonitoringConfig) DataFile() string {
	return filepath.Join(c.DataDir, DefaultDataFile)
}

// ParseAndValidate fills defaults and rejects values the sampler cannot
// work with. Warnings about clamped values go to mLog, which buffers them
// until the real log output is up.
func (c *MonitoringConfig) ParseAndValidate(mLog *logger.MemLogger) error {
	if c.Interval == 0 {
		c.Interval = DefaultInterval
	}
	if c.Interval < MinInterval {
		mLog.Errorf("monitoring interval %s too small, defaulting to %s", c.Interval, DefaultInterval)
		c.Interval = DefaultInterval
	}
	if c.Retention == 0 {
		c.Retention = DefaultRetention
	}
	if c.Retention < 0 {
		return fmt.Errorf("invalid retention: %s", c.Retention)
	}
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir
	}
	if c.ScratchFile == "" {
		c.ScratchFile = defaultScratchFile(c.DataDir)
	}
	if len(c.DiskPaths) == 0 {
		c.DiskPaths = []string{"/"}
	}
	if len(c.TempSensors) == 0 {
		c.TempSensors = defaultTempSensors
	}
	for i, name := range c.DisabledMetrics {
		name = strings.ToLower(strings.TrimSpace(name))
		if !knownMetrics[name] {
			return fmt.Errorf("unknown metric %q in disabled_metrics", c.DisabledMetrics[i])
		}
		c.DisabledMetrics[i] = name
	}
	if c.TempDisabled && !c.MetricDisabled("temp") {
		c.DisabledMetrics = append(c.DisabledMetrics, "temp")
	}
	return nil
}

// knownMetrics is the chart-name vocabulary requests use, which is also
// what disabled_metrics entries must be written in.
var knownMetrics = map[string]bool{
	"cpu":     true,
	"temp":    true,
	"memory":  true,
	"disk":    true,
	"network": true,
	"diskio":  true,
}

// MetricDisabled reports whether the named metric was turned off by
// configuration. Disabling cpu or memory leaves their sample fields at the
// neutral zero since the wire format always carries them.
func (c *MonitoringConfig) MetricDisabled(name string) bool {
	for _, m := range c.DisabledMetrics {
		if m == name {
			return true
		}
	}
	return false
}

// defaultScratchFile prefers a ram-backed location so the frequent tail
// rewrites never touch flash storage.
func defaultScratchFile(dataDir string) string {
	if info, err := os.Stat(DefaultScratchDir); err == nil && info.IsDir() {
		return filepath.Join(DefaultScratchDir, ScratchFileName)
	}
	return filepath.Join(dataDir, ScratchFileName)
}

func (c *WebConfig) ParseAndValidate() error {
	if c.Address == "" {
		c.Address = DefaultWebAddress
	}
	if !govalidator.IsDialString(c.Address) {
		return fmt.Errorf("invalid web address: %q", c.Address)
	}
	if c.MaxPoints == 0 {
		c.MaxPoints = DefaultMaxPoints
	}
	if c.MaxPoints < 2 {
		return fmt.Errorf("web max_points must be at least 2, got %d", c.MaxPoints)
	}
	if (c.CertFile == "") != (c.KeyFile == "") {
		return fmt.Errorf("web cert_file and key_file must be set together")
	}
	if c.DocRoot != "" {
		info, err := os.Stat(c.DocRoot)
		if err != nil {
			return fmt.Errorf("web doc_root: %v", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("web doc_root %q is not a directory", c.DocRoot)
		}
	}
	return nil
}
