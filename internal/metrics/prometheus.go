package metrics

import (
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry builds a Prometheus registry describing a finished report.
func Registry(r Report) *prometheus.Registry {
	reg := prometheus.NewRegistry()

	requests := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "rench",
		Name:      "requests",
		Help:      "Completed requests by HTTP status code.",
	}, []string{"status"})
	errorsByKind := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "rench",
		Name:      "errors",
		Help:      "Failed requests by error kind.",
	}, []string{"kind"})
	bytesRead := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "rench",
		Name:      "bytes_read",
		Help:      "Response body bytes read.",
	})
	throughput := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "rench",
		Name:      "requests_per_second",
		Help:      "Completed requests per second of wall-clock time.",
	})
	latency := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "rench",
		Name:      "latency_seconds",
		Help:      "Latency summary statistics.",
	}, []string{"stat"})
	quantiles := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "rench",
		Name:      "latency_quantile_seconds",
		Help:      "Latency at each percentile rank.",
	}, []string{"rank"})

	reg.MustRegister(requests, errorsByKind, bytesRead, throughput, latency, quantiles)

	for code, n := range r.StatusHistogram {
		requests.WithLabelValues(strconv.Itoa(code)).Set(float64(n))
	}
	for kind, n := range r.ErrorKinds {
		errorsByKind.WithLabelValues(string(kind)).Set(float64(n))
	}
	bytesRead.Set(float64(r.TotalBytes))
	throughput.Set(r.RequestsPerSec)

	latency.WithLabelValues("mean").Set(r.Summary.Mean.Seconds())
	latency.WithLabelValues("median").Set(r.Summary.Median.Seconds())
	latency.WithLabelValues("stddev").Set(r.Summary.StdDev.Seconds())
	latency.WithLabelValues("min").Set(r.Summary.Min.Seconds())
	latency.WithLabelValues("max").Set(r.Summary.Max.Seconds())

	for _, p := range r.Percentiles {
		quantiles.WithLabelValues(strconv.FormatFloat(p.Rank, 'f', -1, 64)).Set(p.Latency.Seconds())
	}
	return reg
}

// WriteTextfile writes the report in the Prometheus text exposition format,
// suitable for the node_exporter textfile collector.
func WriteTextfile(path string, r Report) error {
	if err := prometheus.WriteToTextfile(path, Registry(r)); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	return nil
}
