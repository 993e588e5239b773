// Package report formats benchmark results into comparison tables.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/weiihann/storebench/harness"
)

// Generate writes a markdown report for the given run.
func Generate(w io.Writer, res *harness.Result) error {
	if res == nil {
		return fmt.Errorf("no result to report")
	}

	// Header.
	fmt.Fprintln(w, "## Benchmark Results")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Run `%s`: %s records, %d iterations after %d warmup\n",
		res.RunID, humanize.Comma(int64(res.Records)), res.Iterations, res.Warmup)
	fmt.Fprintln(w)

	writeDatasets(w, res)
	writeOperations(w, res.Operations)

	return nil
}

// GenerateJSON writes the result as JSON to w.
func GenerateJSON(w io.Writer, res *harness.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(res)
}

func writeDatasets(w io.Writer, res *harness.Result) {
	if res.DatasetsIdentical() {
		fmt.Fprintln(w, "Datasets: **identical**")
	} else {
		fmt.Fprintln(w, "Datasets: **independently generated**")
	}

	fmt.Fprintln(w)

	fmt.Fprintln(w, "| Backend | Records | Seed Time | Fingerprint | DB Size |")
	fmt.Fprintln(w, "|---------|---------|-----------|-------------|---------|")

	for _, d := range res.Datasets {
		fmt.Fprintf(w, "| %s | %s | %s | `%s` | %s |\n",
			d.Backend,
			humanize.Comma(int64(d.Records)),
			formatMs(d.SeedTimeMs),
			d.Fingerprint,
			formatBytes(d.DBSizeBytes),
		)
	}

	fmt.Fprintln(w)
}

func writeOperations(w io.Writer, ops []harness.OperationResult) {
	fastest := findFastest(ops)

	fmt.Fprintln(w, "| Backend | Operation | Mean | StdDev | Min | Max "+
		"| Allocated | Allocs | Ratio |")
	fmt.Fprintln(w, "|---------|-----------|------|--------|-----|-----"+
		"|-----------|--------|-------|")

	var failed []harness.OperationResult

	for _, op := range ops {
		if op.Failed {
			failed = append(failed, op)
			fmt.Fprintf(w, "| %s | %s | failed | - | - | - | - | - | - |\n",
				op.Backend, op.Operation)

			continue
		}

		ratio := 1.0
		if f := fastest[op.Operation]; f > 0 {
			ratio = op.Time.Mean / f
		}

		fmt.Fprintf(w, "| %s | %s | %s | %s | %s | %s | %s | %s | %.2fx |\n",
			op.Backend,
			op.Operation,
			formatDuration(op.Time.Mean),
			formatDuration(op.Time.StdDev),
			formatDuration(op.Time.Min),
			formatDuration(op.Time.Max),
			formatBytes(uint64(math.Round(op.AllocBytes.Mean))),
			humanize.Comma(int64(math.Round(op.Allocs.Mean))),
			ratio,
		)
	}

	if len(failed) == 0 {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Failures:")

	for _, op := range failed {
		fmt.Fprintf(w, "  - %s %s: %s\n", op.Backend, op.Operation, op.Error)
	}
}

// findFastest returns the lowest mean time per operation among the
// backends that completed it.
func findFastest(ops []harness.OperationResult) map[string]float64 {
	fastest := make(map[string]float64)

	for _, op := range ops {
		if op.Failed || op.Time.Mean <= 0 {
			continue
		}
		if f, ok := fastest[op.Operation]; !ok || op.Time.Mean < f {
			fastest[op.Operation] = op.Time.Mean
		}
	}

	return fastest
}

func formatMs(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}

	return fmt.Sprintf("%.2fs", float64(ms)/1000)
}

// formatDuration prints a nanosecond count with a unit suited to its size.
func formatDuration(ns float64) string {
	d := time.Duration(math.Round(ns))

	switch {
	case d < time.Microsecond:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	case d < time.Millisecond:
		return fmt.Sprintf("%.2fµs", float64(d)/float64(time.Microsecond))
	case d < time.Second:
		return fmt.Sprintf("%.2fms", float64(d)/float64(time.Millisecond))
	default:
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
}

func formatBytes(b uint64) string {
	if b == 0 {
		return "-"
	}

	return humanize.IBytes(b)
}
