package metrics

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// DefaultBuckets is the percentile and distribution resolution used when the
// caller does not pick one.
const DefaultBuckets = 50

// Report is the final result of a run.
type Report struct {
	RunID           string              `json:"run_id" yaml:"run_id"`
	Elapsed         time.Duration       `json:"-" yaml:"-"`
	TotalRequests   int64               `json:"total_requests" yaml:"total_requests"`
	Successes       int64               `json:"successes" yaml:"successes"`
	Errors          int64               `json:"errors" yaml:"errors"`
	TotalBytes      int64               `json:"total_bytes" yaml:"total_bytes"`
	StatusHistogram map[int]int64       `json:"status_histogram" yaml:"status_histogram"`
	ErrorKinds      map[ErrorKind]int64 `json:"error_kinds,omitempty" yaml:"error_kinds,omitempty"`
	Summary         Summary             `json:"summary" yaml:"summary"`
	Percentiles     []PercentilePoint   `json:"percentiles" yaml:"percentiles"`
	Distribution    []Bin               `json:"distribution" yaml:"distribution"`
	RequestsPerSec  float64             `json:"requests_per_sec" yaml:"requests_per_sec"`

	ElapsedMs float64 `json:"elapsed_ms" yaml:"elapsed_ms"`
}

// BuildReport reduces a frozen snapshot into a Report. buckets controls both
// the percentile curve resolution and the number of distribution bins; a
// value below 1 selects DefaultBuckets.
func BuildReport(snap Snapshot, elapsed time.Duration, buckets int) Report {
	if buckets < 1 {
		buckets = DefaultBuckets
	}
	sorted := SortedCopy(snap.Latencies)

	statuses := make(map[int]int64, len(snap.Statuses))
	var successes int64
	for code, n := range snap.Statuses {
		statuses[code] = n
		successes += n
	}
	var kinds map[ErrorKind]int64
	if len(snap.ErrorKinds) > 0 {
		kinds = make(map[ErrorKind]int64, len(snap.ErrorKinds))
		for kind, n := range snap.ErrorKinds {
			kinds[kind] = n
		}
	}

	// Empty runs still serialise as [] so the report keeps one shape.
	points := Percentiles(sorted, buckets)
	if points == nil {
		points = []PercentilePoint{}
	}
	bins := Distribution(sorted, buckets)
	if bins == nil {
		bins = []Bin{}
	}

	total := successes + snap.Errors
	return Report{
		RunID:           ulid.Make().String(),
		Elapsed:         elapsed,
		ElapsedMs:       toMs(elapsed),
		TotalRequests:   total,
		Successes:       successes,
		Errors:          snap.Errors,
		TotalBytes:      snap.Bytes,
		StatusHistogram: statuses,
		ErrorKinds:      kinds,
		Summary:         Summarize(sorted),
		Percentiles:     points,
		Distribution:    bins,
		RequestsPerSec:  Throughput(total, elapsed),
	}
}
