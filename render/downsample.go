package render

// Downsample thins a series to at most maxPoints by averaging fixed-size
// chunks. Each chunk contributes one point carrying the mean of its values
// and the timestamp of its middle element. The chunk size rounds up so the
// result never exceeds maxPoints. Short series pass through untouched.
func Downsample(points []Point, maxPoints int) []Point {
	if maxPoints <= 0 || len(points) <= maxPoints {
		return points
	}

	chunkSize := len(points) / maxPoints
	if len(points)%maxPoints != 0 {
		chunkSize++
	}

	out := make([]Point, 0, maxPoints)
	for start := 0; start < len(points); start += chunkSize {
		end := start + chunkSize
		if end > len(points) {
			end = len(points)
		}
		chunk := points[start:end]

		sum := 0.0
		for _, p := range chunk {
			sum += p.Value
		}
		out = append(out, Point{
			Timestamp: chunk[len(chunk)/2].Timestamp,
			Value:     sum / float64(len(chunk)),
		})
	}
	return out
}
