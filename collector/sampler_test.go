package collector

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostpulse/hostpulse/collector/metrics"
	"github.com/hostpulse/hostpulse/share/config"
	"github.com/hostpulse/hostpulse/share/logger"
	"github.com/hostpulse/hostpulse/share/models"
)

var testLog = logger.NewLogger("sampler-test", logger.LogOutput{File: os.Stdout}, logger.LogLevelDebug)

type storeMock struct {
	mu          sync.Mutex
	added       []*models.Sample
	maybeFlush  int
	forcedFlush int
	addErr      error
}

func (m *storeMock) Add(ctx context.Context, sample *models.Sample) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.addErr != nil {
		return m.addErr
	}
	m.added = append(m.added, sample)
	return nil
}

func (m *storeMock) MaybeFlush(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maybeFlush++
	return nil
}

func (m *storeMock) Flush(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forcedFlush++
	return nil
}

func (m *storeMock) snapshot() (added int, maybe int, forced int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.added), m.maybeFlush, m.forcedFlush
}

func testConf() *config.MonitoringConfig {
	mLog := logger.NewMemLogger()
	conf := &config.MonitoringConfig{Interval: time.Hour, DiskPaths: []string{"/"}}
	if err := conf.ParseAndValidate(&mLog); err != nil {
		panic(err)
	}
	return conf
}

func testProbe() *metrics.MockProbe {
	return &metrics.MockProbe{
		CPUTimesStat: cpu.TimesStat{User: 100, Idle: 100},
		Memory:       &mem.VirtualMemoryStat{UsedPercent: 50},
		Temps:        []host.TemperatureStat{{SensorKey: "cpu_thermal", Temperature: 45.6}},
	}
}

func TestSamplerAssemblesPartialSampleOnCollectorError(t *testing.T) {
	probe := testProbe()
	probe.MemoryErr = errors.New("proc not mounted")
	s := NewSampler(testConf(), testLog, probe, &storeMock{})

	sample := s.assembleSample(context.Background())

	// memory failed but everything else is present
	assert.Equal(t, 0.0, sample.MemoryUsage)
	require.NotNil(t, sample.CPUTemp)
	assert.Equal(t, 45.6, *sample.CPUTemp)
	assert.False(t, sample.Timestamp.IsZero())
}

func TestSamplerDisablesUnavailableCollector(t *testing.T) {
	probe := testProbe()
	probe.TempsErr = errors.New("no sensors")
	s := NewSampler(testConf(), testLog, probe, &storeMock{})

	first := s.assembleSample(context.Background())
	assert.Nil(t, first.CPUTemp)
	assert.True(t, s.disabled["cpu_temp"])

	// sensor recovering later must not re-enable the collector
	probe.TempsErr = nil
	second := s.assembleSample(context.Background())
	assert.Nil(t, second.CPUTemp)
}

func TestSamplerSkipsDisabledMetrics(t *testing.T) {
	mLog := logger.NewMemLogger()
	conf := &config.MonitoringConfig{
		Interval:        time.Hour,
		DiskPaths:       []string{"/"},
		TempDisabled:    true,
		DisabledMetrics: []string{"diskio"},
	}
	require.NoError(t, conf.ParseAndValidate(&mLog))
	s := NewSampler(conf, testLog, testProbe(), &storeMock{})

	sample := s.assembleSample(context.Background())
	assert.Nil(t, sample.CPUTemp)
	assert.Empty(t, sample.DiskIO)
	for _, c := range s.collectors {
		assert.NotEqual(t, "cpu_temp", c.Name())
		assert.NotEqual(t, "disk_io", c.Name())
	}
}

func TestSamplerRunRecordsAndFlushesOnStop(t *testing.T) {
	mock := &storeMock{}
	s := NewSampler(testConf(), testLog, testProbe(), mock)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		require.NoError(t, s.Run(ctx))
	}()

	require.Eventually(t, func() bool {
		added, maybe, _ := mock.snapshot()
		return added == 1 && maybe == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-done

	_, _, forced := mock.snapshot()
	assert.Equal(t, 1, forced, "shutdown must flush the tail")
}

func TestSamplerTriggerFlush(t *testing.T) {
	mock := &storeMock{}
	s := NewSampler(testConf(), testLog, testProbe(), mock)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Run(ctx)
	}()

	require.Eventually(t, func() bool {
		added, _, _ := mock.snapshot()
		return added == 1
	}, 2*time.Second, 10*time.Millisecond)

	s.TriggerFlush()
	require.Eventually(t, func() bool {
		_, _, forced := mock.snapshot()
		return forced >= 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-done
}
