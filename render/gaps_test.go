package render

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitSegmentsOnGap(t *testing.T) {
	base := time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)

	// 12 points sampled every 60s with a 600s outage in the middle
	points := make([]Point, 0, 12)
	ts := base
	for i := 0; i < 12; i++ {
		points = append(points, Point{Timestamp: ts, Value: float64(i)})
		if i == 5 {
			ts = ts.Add(600 * time.Second)
		} else {
			ts = ts.Add(60 * time.Second)
		}
	}

	segments := SplitSegments(points)
	require.Len(t, segments, 2)
	assert.Len(t, segments[0], 6)
	assert.Len(t, segments[1], 6)
	assert.Equal(t, points[5], segments[0][5])
	assert.Equal(t, points[6], segments[1][0])
}

func TestSplitSegmentsRegularSeriesStaysWhole(t *testing.T) {
	points := pointsEverySecond(100)

	segments := SplitSegments(points)
	require.Len(t, segments, 1)
	assert.Len(t, segments[0], 100)
}

func TestSplitSegmentsRespectsFloor(t *testing.T) {
	base := time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)

	// dense one-second sampling with a 200s pause: three times the median
	// would split here, the five minute floor must not
	var points []Point
	ts := base
	for i := 0; i < 10; i++ {
		points = append(points, Point{Timestamp: ts, Value: 1})
		if i == 4 {
			ts = ts.Add(200 * time.Second)
		} else {
			ts = ts.Add(time.Second)
		}
	}

	assert.Len(t, SplitSegments(points), 1)
}

func TestSplitSegmentsTinySeries(t *testing.T) {
	assert.Nil(t, SplitSegments(nil))

	one := pointsEverySecond(1)
	require.Len(t, SplitSegments(one), 1)

	// two points are always one segment, the threshold is derived from
	// their own distance
	base := time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)
	two := []Point{
		{Timestamp: base, Value: 1},
		{Timestamp: base.Add(12 * time.Hour), Value: 2},
	}
	assert.Len(t, SplitSegments(two), 1)
}

func TestMedianDuration(t *testing.T) {
	assert.Equal(t, 3*time.Second, medianDuration([]time.Duration{
		time.Second, 3 * time.Second, 5 * time.Second,
	}))
	// even count averages the middle pair
	assert.Equal(t, 4*time.Second, medianDuration([]time.Duration{
		5 * time.Second, time.Second, 3 * time.Second, 7 * time.Second,
	}))
}
