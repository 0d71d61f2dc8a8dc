package render

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pointsEverySecond(n int) []Point {
	base := time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)
	points := make([]Point, n)
	for i := range points {
		points[i] = Point{Timestamp: base.Add(time.Duration(i) * time.Second), Value: float64(i)}
	}
	return points
}

func TestDownsampleShortSeriesPassThrough(t *testing.T) {
	points := pointsEverySecond(10)

	assert.Equal(t, points, Downsample(points, 10))
	assert.Equal(t, points, Downsample(points, 200))
	assert.Equal(t, points, Downsample(nil, 200))
}

func TestDownsampleNeverExceedsBudget(t *testing.T) {
	for _, n := range []int{201, 400, 500, 999, 1000, 5000} {
		out := Downsample(pointsEverySecond(n), 200)
		assert.LessOrEqual(t, len(out), 200, "n=%d", n)
	}

	// 500 points in chunks of 3 make 167
	assert.Len(t, Downsample(pointsEverySecond(500), 200), 167)
}

func TestDownsampleChunkMeanAndMiddleTimestamp(t *testing.T) {
	points := pointsEverySecond(6)

	out := Downsample(points, 3)
	require.Len(t, out, 3)

	// chunks are [0 1] [2 3] [4 5], each contributing its mean and the
	// timestamp of its middle element
	assert.Equal(t, 0.5, out[0].Value)
	assert.Equal(t, 2.5, out[1].Value)
	assert.Equal(t, 4.5, out[2].Value)
	assert.Equal(t, points[1].Timestamp, out[0].Timestamp)
	assert.Equal(t, points[3].Timestamp, out[1].Timestamp)
	assert.Equal(t, points[5].Timestamp, out[2].Timestamp)
}

func TestDownsampleUnevenLastChunk(t *testing.T) {
	// 7 points with a budget of 3 make chunks of 3, 3 and 1
	points := pointsEverySecond(7)

	out := Downsample(points, 3)
	require.Len(t, out, 3)

	assert.Equal(t, 1.0, out[0].Value)
	assert.Equal(t, 4.0, out[1].Value)
	assert.Equal(t, 6.0, out[2].Value)
	assert.Equal(t, points[6].Timestamp, out[2].Timestamp)
}
