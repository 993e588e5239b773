package workload

import (
	"fmt"

	"github.com/zeebo/xxh3"
)

// Fingerprint accumulates an order-sensitive digest of records. Two
// datasets with the same fingerprint hold the same records in the same
// order, ignoring backend-assigned ids.
type Fingerprint struct {
	h     *xxh3.Hasher
	count int
}

// NewFingerprint returns an empty Fingerprint.
func NewFingerprint() *Fingerprint {
	return &Fingerprint{h: xxh3.New()}
}

// Add folds records into the digest.
func (f *Fingerprint) Add(records ...Record) {
	for _, r := range records {
		// Fields are NUL-terminated so that ("ab", "c") and ("a", "bc")
		// hash differently.
		f.h.WriteString(r.Username)
		f.h.Write([]byte{0})
		f.h.WriteString(r.FullName)
		f.h.Write([]byte{0})
		f.h.WriteString(r.Phone)
		f.h.Write([]byte{0})
		f.count++
	}
}

// Count returns how many records were added.
func (f *Fingerprint) Count() int {
	return f.count
}

// Sum returns the digest as 16 hex digits.
func (f *Fingerprint) Sum() string {
	return fmt.Sprintf("%016x", f.h.Sum64())
}
