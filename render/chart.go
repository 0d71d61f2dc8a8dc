package render

import (
	"bytes"
	"time"

	"github.com/pkg/errors"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/hostpulse/hostpulse/share/config"
)

const (
	chartWidth  = 1200
	chartHeight = 600

	// xPad widens a degenerate time axis so a single point still renders.
	xPad = 5 * time.Minute

	// yHeadroom keeps the newest points off the chart ceiling.
	yHeadroom = 1.1

	xTimeFormat = "01-02 15:04"

	solidStrokeWidth  = 2.0
	bridgeStrokeWidth = 1.0
	dotWidth          = 4.0
)

var bridgeDashes = []float64{5.0, 5.0}

// Renderer turns extracted series into PNG charts.
type Renderer struct {
	maxPoints int
	ranges    map[string]config.AxisRange
}

// NewRenderer returns a renderer that thins every series to maxPoints and
// overrides the built-in y-axis ranges with the configured ones, keyed by
// metric name.
func NewRenderer(maxPoints int, ranges map[string]config.AxisRange) *Renderer {
	return &Renderer{maxPoints: maxPoints, ranges: ranges}
}

// Render draws the chart for one metric. Each series is downsampled to the
// point budget and split into segments at sampling gaps; segments draw as
// solid lines joined by dashed bridges, and isolated points draw as dots.
// The y axis starts at the configured range and grows to fit the data, it
// never shrinks below the configured maximum.
func (r *Renderer) Render(metric Metric, series []Series, titleSuffix string) ([]byte, error) {
	def, ok := chartDefs[metric]
	if !ok {
		return nil, errors.Errorf("unknown metric: %q", metric)
	}

	var (
		chartSeries []chart.Series
		xMin, xMax  time.Time
		yObserved   float64
		total       int
		hasNamed    bool
	)
	for i, s := range series {
		points := Downsample(s.Points, r.maxPoints)
		if len(points) == 0 {
			continue
		}
		total += len(points)
		if xMin.IsZero() || points[0].Timestamp.Before(xMin) {
			xMin = points[0].Timestamp
		}
		if last := points[len(points)-1].Timestamp; last.After(xMax) {
			xMax = last
		}
		for _, p := range points {
			if p.Value > yObserved {
				yObserved = p.Value
			}
		}
		if s.Name != "" {
			hasNamed = true
		}

		color := chart.GetDefaultColor(i)
		segments := SplitSegments(points)
		for segIdx, seg := range segments {
			if segIdx > 0 {
				prev := segments[segIdx-1]
				chartSeries = append(chartSeries, bridgeSeries(prev[len(prev)-1], seg[0], color))
			}
			name := ""
			if segIdx == 0 {
				// one legend entry per series, bridges and later
				// segments stay out of the legend
				name = s.Name
			}
			chartSeries = append(chartSeries, segmentSeries(name, seg, color))
		}
	}
	if total == 0 {
		return nil, ErrNoData
	}

	axis := def.defaultRange
	if override, ok := r.ranges[metric.String()]; ok {
		axis = override
	}
	yLo, yHi := yRange(axis, yObserved)

	if !xMax.After(xMin) {
		xMin = xMin.Add(-xPad)
		xMax = xMax.Add(xPad)
	}

	graph := chart.Chart{
		Title:  def.title + titleSuffix,
		Width:  chartWidth,
		Height: chartHeight,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat(xTimeFormat),
			Range: &chart.ContinuousRange{
				Min: chart.TimeToFloat64(xMin),
				Max: chart.TimeToFloat64(xMax),
			},
		},
		YAxis: chart.YAxis{
			Name:  def.yLabel,
			Range: &chart.ContinuousRange{Min: yLo, Max: yHi},
		},
		Series: chartSeries,
	}
	if hasNamed {
		graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, errors.Wrapf(err, "render %s chart", metric)
	}
	return buf.Bytes(), nil
}

// yRange grows the configured axis upward to fit the observed maximum with
// some headroom. The lower bound stays put: a quiet interface should not
// zoom the chart into noise.
func yRange(axis config.AxisRange, observed float64) (float64, float64) {
	lo := axis.Min
	hi := axis.Max
	if grown := observed * yHeadroom; grown > hi {
		hi = grown
	}
	if hi <= lo {
		hi = lo + 1
	}
	return lo, hi
}

func segmentSeries(name string, seg []Point, color drawing.Color) chart.TimeSeries {
	style := chart.Style{StrokeColor: color, StrokeWidth: solidStrokeWidth}
	if len(seg) < 2 {
		// a zero-length line is invisible, draw the lone point as a dot
		style = chart.Style{StrokeWidth: chart.Disabled, DotColor: color, DotWidth: dotWidth}
	}
	xs := make([]time.Time, len(seg))
	ys := make([]float64, len(seg))
	for i, p := range seg {
		xs[i] = p.Timestamp
		ys[i] = p.Value
	}
	return chart.TimeSeries{Name: name, XValues: xs, YValues: ys, Style: style}
}

func bridgeSeries(from, to Point, color drawing.Color) chart.TimeSeries {
	return chart.TimeSeries{
		XValues: []time.Time{from.Timestamp, to.Timestamp},
		YValues: []float64{from.Value, to.Value},
		Style: chart.Style{
			StrokeColor:     color,
			StrokeWidth:     bridgeStrokeWidth,
			StrokeDashArray: bridgeDashes,
		},
	}
}
