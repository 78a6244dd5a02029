package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/torosent/rench/internal/metrics"
)

// PrintReport outputs a human-readable summary report.
func PrintReport(w io.Writer, r metrics.Report, size ChartSize) {
	fmt.Fprintf(w, "Took %s seconds\n", strconv.FormatFloat(r.Elapsed.Seconds(), 'f', -1, 64))
	fmt.Fprintf(w, "%s requests / second\n", strconv.FormatFloat(r.RequestsPerSec, 'f', -1, 64))

	fmt.Fprintln(w, "\n--- Summary ---")
	fmt.Fprintf(w, "Run ID:            %s\n", r.RunID)
	fmt.Fprintf(w, "Total Requests:    %d\n", r.TotalRequests)
	fmt.Fprintf(w, "Successful:        %d\n", r.Successes)
	fmt.Fprintf(w, "Errors:            %d\n", r.Errors)
	fmt.Fprintf(w, "Bytes Read:        %d\n", r.TotalBytes)
	fmt.Fprintln(w, "\nLatency:")
	fmt.Fprintf(w, "  Mean:            %s\n", r.Summary.Mean)
	fmt.Fprintf(w, "  Median:          %s\n", r.Summary.Median)
	fmt.Fprintf(w, "  Std Dev:         %s\n", r.Summary.StdDev)
	fmt.Fprintf(w, "  Min:             %s\n", r.Summary.Min)
	fmt.Fprintf(w, "  Max:             %s\n", r.Summary.Max)

	fmt.Fprintln(w, "\nStatus Codes:")
	rows := metrics.SortedStatuses(r.StatusHistogram)
	if len(rows) == 0 {
		fmt.Fprintln(w, "  None")
	}
	for _, row := range rows {
		fmt.Fprintf(w, "  %d: %d\n", row.Code, row.Count)
	}

	if kinds := metrics.SortedKinds(r.ErrorKinds); len(kinds) > 0 {
		fmt.Fprintln(w, "\nError Breakdown:")
		for _, k := range kinds {
			fmt.Fprintf(w, "  %s: %d\n", metrics.FriendlyKindName(k.Kind), k.Count)
		}
	}

	if !size.Enabled() || len(r.Percentiles) == 0 {
		return
	}
	chart := NewChart(size.Height)

	curve := make([]float64, len(r.Percentiles))
	for i, p := range r.Percentiles {
		curve[i] = p.LatencyMs
	}
	chart.Label = formatMs
	fmt.Fprintln(w, "\nLatency Percentiles (0% to 100%):")
	fmt.Fprint(w, chart.Make(curve))

	counts := make([]float64, len(r.Distribution))
	for i, b := range r.Distribution {
		counts[i] = float64(b.Count)
	}
	chart.Label = nil
	fmt.Fprintf(w, "\nLatency Distribution (0 to %s):\n", r.Summary.Max)
	fmt.Fprint(w, chart.Make(counts))
}

func formatMs(v float64) string {
	return (time.Duration(v * float64(time.Millisecond))).String()
}

// PrintJSONReport outputs a JSON-formatted report.
func PrintJSONReport(w io.Writer, r metrics.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// PrintYAMLReport outputs a YAML-formatted report.
func PrintYAMLReport(w io.Writer, r metrics.Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return err
	}
	return enc.Close()
}
