// Package harness seeds benchmark backends and measures operations
// against them.
package harness

import "time"

// Result holds the structured output of a benchmark run.
type Result struct {
	RunID       string            `json:"run_id"`
	StartedAt   time.Time         `json:"started_at"`
	Records     int               `json:"records"`
	Iterations  int               `json:"iterations"`
	Warmup      int               `json:"warmup"`
	SameDataset bool              `json:"same_dataset"`
	Datasets    []DatasetInfo     `json:"datasets"`
	Operations  []OperationResult `json:"operations"`
}

// DatasetInfo describes how one backend was seeded.
type DatasetInfo struct {
	Backend     string `json:"backend"`
	Path        string `json:"path"`
	Records     int    `json:"records"`
	Seed        int64  `json:"seed"`
	Fingerprint string `json:"fingerprint"`
	SeedTimeMs  int64  `json:"seed_time_ms"`
	DBSizeBytes uint64 `json:"db_size_bytes"`
}

// OperationResult holds the statistics of one operation on one backend.
// Time is in nanoseconds per call; AllocBytes and Allocs are per call.
type OperationResult struct {
	Backend    string  `json:"backend"`
	Operation  string  `json:"operation"`
	Iterations int     `json:"iterations"`
	Time       Summary `json:"time_ns"`
	AllocBytes Summary `json:"alloc_bytes"`
	Allocs     Summary `json:"allocs"`
	Failed     bool    `json:"failed,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// DatasetsIdentical reports whether every backend was seeded with the
// same records.
func (r *Result) DatasetsIdentical() bool {
	if len(r.Datasets) < 2 {
		return true
	}

	first := r.Datasets[0]
	for _, d := range r.Datasets[1:] {
		if d.Fingerprint != first.Fingerprint || d.Records != first.Records {
			return false
		}
	}

	return true
}
