package workload

import (
	"regexp"
	"strings"
	"testing"
)

var phonePattern = regexp.MustCompile(
	`^(1-)?(\(\d{3}\) |\d{3}[-.])\d{3}[-.]\d{4}( x\d{3,5})?$`,
)

func TestGenerateDeterministic(t *testing.T) {
	gen1 := NewGenerator(Config{Seed: 42})
	gen2 := NewGenerator(Config{Seed: 42})

	batch1 := gen1.Batch(100)
	batch2 := gen2.Batch(100)

	for i := range batch1 {
		if batch1[i] != batch2[i] {
			t.Fatalf("record %d differs: %+v vs %+v", i, batch1[i], batch2[i])
		}
	}
}

func TestGenerateSeedsDiffer(t *testing.T) {
	batch1 := NewGenerator(Config{Seed: 1}).Batch(50)
	batch2 := NewGenerator(Config{Seed: 2}).Batch(50)

	same := 0
	for i := range batch1 {
		if batch1[i] == batch2[i] {
			same++
		}
	}

	if same == len(batch1) {
		t.Error("different seeds produced identical batches")
	}
}

func TestGenerateZeroSeed(t *testing.T) {
	gen := NewGenerator(Config{})
	if gen.Seed() == 0 {
		t.Error("zero seed was not replaced")
	}
}

func TestGenerateFields(t *testing.T) {
	gen := NewGenerator(Config{Seed: 7})

	for i := 0; i < 1000; i++ {
		r := gen.Generate()

		if r.ID != 0 {
			t.Errorf("record %d: id = %d, want 0", i, r.ID)
		}
		if r.Username == "" || strings.ContainsAny(r.Username, " \t") {
			t.Errorf("record %d: bad username %q", i, r.Username)
		}
		if len(strings.Fields(r.FullName)) < 2 {
			t.Errorf("record %d: full name %q has fewer than two parts",
				i, r.FullName)
		}
		if !phonePattern.MatchString(r.Phone) {
			t.Errorf("record %d: phone %q does not match a known format",
				i, r.Phone)
		}
	}
}

func TestBatchCounts(t *testing.T) {
	tests := []struct {
		name string
		n    int
		want int
	}{
		{name: "negative", n: -1, want: 0},
		{name: "zero", n: 0, want: 0},
		{name: "one", n: 1, want: 1},
		{name: "many", n: 1000, want: 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewGenerator(Config{Seed: 3}).Batch(tt.n)
			if len(got) != tt.want {
				t.Errorf("len = %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestFingerprint(t *testing.T) {
	records := NewGenerator(Config{Seed: 11}).Batch(20)

	f1 := NewFingerprint()
	f1.Add(records...)

	f2 := NewFingerprint()
	for _, r := range records {
		f2.Add(r)
	}

	if f1.Sum() != f2.Sum() {
		t.Errorf("sum = %s, want %s", f2.Sum(), f1.Sum())
	}
	if f1.Count() != 20 {
		t.Errorf("count = %d, want 20", f1.Count())
	}
	if len(f1.Sum()) != 16 {
		t.Errorf("sum %q is not 16 hex digits", f1.Sum())
	}

	reordered := NewFingerprint()
	reordered.Add(records[1], records[0])
	reordered.Add(records[2:]...)

	if reordered.Sum() == f1.Sum() {
		t.Error("fingerprint ignores record order")
	}
}

func TestFingerprintIgnoresID(t *testing.T) {
	r := Record{Username: "a", FullName: "b c", Phone: "555-555-5555"}

	f1 := NewFingerprint()
	f1.Add(r)

	r.ID = 99
	f2 := NewFingerprint()
	f2.Add(r)

	if f1.Sum() != f2.Sum() {
		t.Error("fingerprint depends on id")
	}
}

func TestFingerprintFieldBoundaries(t *testing.T) {
	f1 := NewFingerprint()
	f1.Add(Record{Username: "ab", FullName: "c"})

	f2 := NewFingerprint()
	f2.Add(Record{Username: "a", FullName: "bc"})

	if f1.Sum() == f2.Sum() {
		t.Error("field boundaries are not part of the digest")
	}
}
