package render

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostpulse/hostpulse/share/models"
	"github.com/hostpulse/hostpulse/share/ptr"
)

func TestParseMetric(t *testing.T) {
	m, err := ParseMetric("cpu")
	require.NoError(t, err)
	assert.Equal(t, MetricCPU, m)

	_, err = ParseMetric("load")
	assert.Error(t, err)
}

func TestExtractSeriesCPU(t *testing.T) {
	base := time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)
	s1 := models.NewSample(base)
	s1.CPUUsage = 12.5
	s2 := models.NewSample(base.Add(time.Minute))
	s2.CPUUsage = 50.0

	series := ExtractSeries(MetricCPU, []*models.Sample{s1, s2})
	require.Len(t, series, 1)
	assert.Empty(t, series[0].Name)
	require.Len(t, series[0].Points, 2)
	assert.Equal(t, 12.5, series[0].Points[0].Value)
	assert.Equal(t, 50.0, series[0].Points[1].Value)
}

func TestExtractSeriesTempSkipsMissingReadings(t *testing.T) {
	base := time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)

	s1 := models.NewSample(base)
	s1.CPUTemp = ptr.Float64(48.2)
	s2 := models.NewSample(base.Add(time.Minute)) // sensor failed here
	s3 := models.NewSample(base.Add(2 * time.Minute))
	s3.CPUTemp = ptr.Float64(48.2)

	series := ExtractSeries(MetricTemp, []*models.Sample{s1, s2, s3})
	require.Len(t, series, 1)
	require.Len(t, series[0].Points, 2)
	assert.Equal(t, base, series[0].Points[0].Timestamp)
	assert.Equal(t, base.Add(2*time.Minute), series[0].Points[1].Timestamp)
}

func TestExtractSeriesDiskUsagePerPath(t *testing.T) {
	base := time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)

	s1 := models.NewSample(base)
	s1.DiskUsage["/"] = ptr.Float64(73.5)
	s1.DiskUsage["/data"] = ptr.Float64(12.0)
	s2 := models.NewSample(base.Add(time.Minute))
	s2.DiskUsage["/"] = ptr.Float64(73.5)
	s2.DiskUsage["/data"] = nil // mount went away

	series := ExtractSeries(MetricDisk, []*models.Sample{s1, s2})
	require.Len(t, series, 2)
	assert.Equal(t, "/", series[0].Name)
	assert.Equal(t, "/data", series[1].Name)
	assert.Len(t, series[0].Points, 2)
	assert.Len(t, series[1].Points, 1)
}

func TestExtractSeriesNetworkScalesToMB(t *testing.T) {
	base := time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)

	s := models.NewSample(base)
	s.Network["eth0"] = models.NetworkRate{Rx: 1048576, Tx: 2097152}

	series := ExtractSeries(MetricNetwork, []*models.Sample{s})
	require.Len(t, series, 2)
	assert.Equal(t, "eth0 rx", series[0].Name)
	assert.Equal(t, 1.0, series[0].Points[0].Value)
	assert.Equal(t, "eth0 tx", series[1].Name)
	assert.Equal(t, 2.0, series[1].Points[0].Value)
}

func TestExtractSeriesDiskIO(t *testing.T) {
	base := time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)

	s := models.NewSample(base)
	s.DiskIO["sda"] = models.DiskIORate{Read: 524288, Write: 1048576}

	series := ExtractSeries(MetricDiskIO, []*models.Sample{s})
	require.Len(t, series, 2)
	assert.Equal(t, "sda read", series[0].Name)
	assert.Equal(t, 0.5, series[0].Points[0].Value)
	assert.Equal(t, "sda write", series[1].Name)
	assert.Equal(t, 1.0, series[1].Points[0].Value)
}
