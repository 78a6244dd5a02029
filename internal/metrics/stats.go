package metrics

import (
	"math"
	"sort"
	"time"
)

// Summary holds the scalar latency statistics of a run.
type Summary struct {
	Mean   time.Duration `json:"-" yaml:"-"`
	Median time.Duration `json:"-" yaml:"-"`
	StdDev time.Duration `json:"-" yaml:"-"`
	Min    time.Duration `json:"-" yaml:"-"`
	Max    time.Duration `json:"-" yaml:"-"`

	// JSON-friendly millisecond fields.
	MeanMs   float64 `json:"mean_ms" yaml:"mean_ms"`
	MedianMs float64 `json:"median_ms" yaml:"median_ms"`
	StdDevMs float64 `json:"stddev_ms" yaml:"stddev_ms"`
	MinMs    float64 `json:"min_ms" yaml:"min_ms"`
	MaxMs    float64 `json:"max_ms" yaml:"max_ms"`
}

// PercentilePoint is one point of the percentile curve.
type PercentilePoint struct {
	Rank      float64       `json:"rank" yaml:"rank"`
	Latency   time.Duration `json:"-" yaml:"-"`
	LatencyMs float64       `json:"latency_ms" yaml:"latency_ms"`
}

// Bin is one equal-width bucket of the latency distribution. It covers
// latencies up to UpperBound.
type Bin struct {
	UpperBound   time.Duration `json:"-" yaml:"-"`
	UpperBoundMs float64       `json:"upper_bound_ms" yaml:"upper_bound_ms"`
	Count        int64         `json:"count" yaml:"count"`
}

// SortedCopy returns the samples in ascending order without modifying the input.
func SortedCopy(samples []time.Duration) []time.Duration {
	sorted := make([]time.Duration, len(samples))
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return sorted
}

// Summarize computes mean, lower median, population standard deviation, min
// and max over ascending samples. Empty input yields a zero Summary.
func Summarize(sorted []time.Duration) Summary {
	n := len(sorted)
	if n == 0 {
		return Summary{}
	}

	var sum int64
	for _, v := range sorted {
		sum += int64(v)
	}
	mean := time.Duration(sum / int64(n))

	var stddev time.Duration
	if n > 1 {
		m := float64(sum) / float64(n)
		var sq float64
		for _, v := range sorted {
			d := float64(v) - m
			sq += d * d
		}
		stddev = time.Duration(math.Sqrt(sq / float64(n)))
	}

	s := Summary{
		Mean:   mean,
		Median: sorted[(n-1)/2],
		StdDev: stddev,
		Min:    sorted[0],
		Max:    sorted[n-1],
	}
	s.MeanMs = toMs(s.Mean)
	s.MedianMs = toMs(s.Median)
	s.StdDevMs = toMs(s.StdDev)
	s.MinMs = toMs(s.Min)
	s.MaxMs = toMs(s.Max)
	return s
}

// Percentiles returns buckets+1 points at ranks k/buckets for k in
// [0, buckets]. The first point is the minimum and the last the maximum.
func Percentiles(sorted []time.Duration, buckets int) []PercentilePoint {
	n := len(sorted)
	if n == 0 || buckets < 1 {
		return nil
	}
	points := make([]PercentilePoint, 0, buckets+1)
	for k := 0; k <= buckets; k++ {
		rank := float64(k) / float64(buckets)
		idx := int(math.Floor(rank * float64(n-1)))
		points = append(points, PercentilePoint{
			Rank:      rank,
			Latency:   sorted[idx],
			LatencyMs: toMs(sorted[idx]),
		})
	}
	return points
}

// Distribution splits [0, max] into bins equal-width buckets and counts the
// samples in each. Empty buckets are kept. A sample v lands in bucket
// min(v*bins/max, bins-1); if max is zero every sample lands in the first.
func Distribution(sorted []time.Duration, bins int) []Bin {
	n := len(sorted)
	if n == 0 || bins < 1 {
		return nil
	}
	maxV := sorted[n-1]
	out := make([]Bin, bins)
	for i := range out {
		upper := time.Duration(int64(maxV) * int64(i+1) / int64(bins))
		out[i] = Bin{UpperBound: upper, UpperBoundMs: toMs(upper)}
	}
	for _, v := range sorted {
		idx := 0
		if maxV > 0 {
			idx = int(int64(v) * int64(bins) / int64(maxV))
			if idx >= bins {
				idx = bins - 1
			}
		}
		out[idx].Count++
	}
	return out
}

// Throughput returns completed outcomes per second of wall-clock time.
func Throughput(total int64, elapsed time.Duration) float64 {
	if elapsed <= 0 || total <= 0 {
		return 0
	}
	return float64(total) / elapsed.Seconds()
}

func toMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
