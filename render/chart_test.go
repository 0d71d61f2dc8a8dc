package render

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostpulse/hostpulse/share/config"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func TestYRange(t *testing.T) {
	testCases := []struct {
		name     string
		axis     config.AxisRange
		observed float64
		wantLo   float64
		wantHi   float64
	}{
		{
			name:     "data inside configured range",
			axis:     config.AxisRange{Min: 0, Max: 100},
			observed: 50,
			wantLo:   0,
			wantHi:   100,
		},
		{
			name:     "spike grows the ceiling with headroom",
			axis:     config.AxisRange{Min: 0, Max: 1},
			observed: 5,
			wantLo:   0,
			wantHi:   5.5,
		},
		{
			name:     "lower bound never moves",
			axis:     config.AxisRange{Min: 30, Max: 70},
			observed: 90,
			wantLo:   30,
			wantHi:   99,
		},
		{
			name:     "empty range stays drawable",
			axis:     config.AxisRange{},
			observed: 0,
			wantLo:   0,
			wantHi:   1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			lo, hi := yRange(tc.axis, tc.observed)
			assert.Equal(t, tc.wantLo, lo)
			assert.InDelta(t, tc.wantHi, hi, 1e-9)
		})
	}
}

func TestRenderProducesPNG(t *testing.T) {
	r := NewRenderer(200, nil)

	series := []Series{{Points: pointsEverySecond(120)}}
	png, err := r.Render(MetricCPU, series, " (Last Hour)")
	require.NoError(t, err)
	assert.Equal(t, pngMagic, png[:8])
}

func TestRenderMultiSeriesWithGaps(t *testing.T) {
	r := NewRenderer(200, map[string]config.AxisRange{
		"network": {Min: 0, Max: 10},
	})

	base := time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)
	withGap := make([]Point, 0, 12)
	ts := base
	for i := 0; i < 12; i++ {
		withGap = append(withGap, Point{Timestamp: ts, Value: float64(i)})
		if i == 5 {
			ts = ts.Add(time.Hour)
		} else {
			ts = ts.Add(time.Minute)
		}
	}

	series := []Series{
		{Name: "eth0 rx", Points: withGap},
		{Name: "eth0 tx", Points: pointsEverySecond(5)},
	}
	png, err := r.Render(MetricNetwork, series, "")
	require.NoError(t, err)
	assert.Equal(t, pngMagic, png[:8])
}

func TestRenderSinglePointDrawsDot(t *testing.T) {
	r := NewRenderer(200, nil)

	series := []Series{{Points: pointsEverySecond(1)}}
	png, err := r.Render(MetricMemory, series, "")
	require.NoError(t, err)
	assert.Equal(t, pngMagic, png[:8])
}

func TestRenderNoData(t *testing.T) {
	r := NewRenderer(200, nil)

	_, err := r.Render(MetricTemp, []Series{{Points: nil}}, "")
	assert.ErrorIs(t, err, ErrNoData)

	_, err = r.Render(MetricDisk, nil, "")
	assert.ErrorIs(t, err, ErrNoData)
}

func TestRenderDownsamplesLongSeries(t *testing.T) {
	r := NewRenderer(50, nil)

	series := []Series{{Points: pointsEverySecond(5000)}}
	png, err := r.Render(MetricCPU, series, "")
	require.NoError(t, err)
	assert.Equal(t, pngMagic, png[:8])
}
