package output

import (
	"strconv"
	"strings"
)

// Chart renders a column bar chart, one column per value, with the maximum
// labelled on the first row and the minimum on the last.
type Chart struct {
	Height int
	Fill   rune
	Space  rune
	// Label formats the min and max annotations. Defaults to the shortest
	// decimal representation.
	Label func(float64) string
}

// NewChart returns a chart of the given height using half-block fill.
func NewChart(height int) Chart {
	return Chart{Height: height, Fill: '▌', Space: ' '}
}

// Make renders data. Both bounds include zero, so a chart of positive values
// always starts from the baseline.
func (c Chart) Make(data []float64) string {
	if c.Height < 1 || len(data) == 0 {
		return ""
	}
	label := c.Label
	if label == nil {
		label = func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	}

	var lo, hi float64
	for _, v := range data {
		if v < lo {
			lo = v
		}
		if hi < v {
			hi = v
		}
	}
	inc := (hi - lo) / float64(c.Height)

	var b strings.Builder
	b.Grow(c.Height * (len(data) + 1) * 3)
	for row := 0; row < c.Height; row++ {
		floor := hi - float64(row+1)*inc
		for _, v := range data {
			if v > floor {
				b.WriteRune(c.Fill)
			} else {
				b.WriteRune(c.Space)
			}
		}
		if row == 0 {
			b.WriteString(" " + label(hi))
		}
		if row == c.Height-1 {
			b.WriteString(" " + label(lo))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// ChartSize selects the resolution of the report charts.
type ChartSize struct {
	Name    string
	Buckets int
	Height  int
}

var chartSizes = map[string]ChartSize{
	"none":   {Name: "none"},
	"small":  {Name: "small", Buckets: 20, Height: 5},
	"medium": {Name: "medium", Buckets: 50, Height: 10},
	"large":  {Name: "large", Buckets: 100, Height: 20},
}

// ChartSizeByName returns the named size, falling back to medium.
func ChartSizeByName(name string) ChartSize {
	if size, ok := chartSizes[strings.ToLower(name)]; ok {
		return size
	}
	return chartSizes["medium"]
}

// Enabled reports whether charts should be drawn at all.
func (s ChartSize) Enabled() bool {
	return s.Buckets > 0 && s.Height > 0
}
