package render

import (
	"sort"
	"time"
)

const (
	// minGapThreshold keeps dense series from splitting on tiny jitter.
	minGapThreshold = 5 * time.Minute
	gapFactor       = 3
)

// SplitSegments cuts a series wherever two consecutive points are further
// apart than three times the median sampling interval, floored at five
// minutes. Each returned segment draws as a solid line; the renderer
// bridges between segments with dashed lines.
func SplitSegments(points []Point) [][]Point {
	if len(points) == 0 {
		return nil
	}
	if len(points) == 1 {
		return [][]Point{points}
	}

	intervals := make([]time.Duration, 0, len(points)-1)
	for i := 1; i < len(points); i++ {
		intervals = append(intervals, points[i].Timestamp.Sub(points[i-1].Timestamp))
	}
	threshold := time.Duration(gapFactor) * medianDuration(intervals)
	if threshold < minGapThreshold {
		threshold = minGapThreshold
	}

	var segments [][]Point
	segStart := 0
	for i := 1; i < len(points); i++ {
		if points[i].Timestamp.Sub(points[i-1].Timestamp) > threshold {
			segments = append(segments, points[segStart:i])
			segStart = i
		}
	}
	return append(segments, points[segStart:])
}

func medianDuration(durations []time.Duration) time.Duration {
	sorted := make([]time.Duration, len(durations))
	copy(sorted, durations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
