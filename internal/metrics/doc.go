// Package metrics aggregates request outcomes and reduces them into a report.
//
// # Collector
//
// A [Collector] is shared by all workers of a run. Each worker records one
// [Outcome] per request:
//
//	collector := metrics.NewCollector(total)
//	_ = collector.Record(metrics.Success(200, 512))
//
// Once every worker has returned, [Collector.Freeze] hands the samples to the
// reducer and any further Record call fails with [ErrFrozen].
//
// # Reduction
//
// [BuildReport] turns a [Snapshot] into a [Report]: summary statistics
// (mean, lower median, population standard deviation, min, max), a
// percentile curve, equal-width latency bins over [0, max], the status
// histogram and throughput. The helpers [Summarize], [Percentiles] and
// [Distribution] are pure functions over sorted samples.
//
// For every report, the status histogram counts plus Errors equal
// TotalRequests.
package metrics
