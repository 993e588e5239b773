// Package workload generates synthetic user records for seeding and
// exercising benchmark backends. Each record carries a username, a full
// name and a phone number drawn from realistic value pools.
package workload

import (
	"fmt"
	mrand "math/rand"
	"strings"
	"time"
)

// Record is a single user row. ID is assigned by the backend on insert and
// is zero for freshly generated records.
type Record struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

// Config controls record generation.
type Config struct {
	// Seed for the generator's random source. Zero derives one from the
	// current time.
	Seed int64
}

// Generator produces records from its own random source. A Generator is
// not safe for concurrent use; create one per goroutine.
type Generator struct {
	seed int64
	rng  *mrand.Rand
}

// NewGenerator creates a Generator from the given Config.
func NewGenerator(cfg Config) *Generator {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Generator{
		seed: seed,
		rng:  mrand.New(mrand.NewSource(seed)),
	}
}

// Seed returns the effective seed of the generator.
func (g *Generator) Seed() int64 {
	return g.seed
}

// Generate returns one record with no ID assigned.
func (g *Generator) Generate() Record {
	first := g.pick(firstNames)
	last := g.pick(lastNames)

	return Record{
		Username: g.username(first, last),
		FullName: g.fullName(first, last),
		Phone:    g.phone(),
	}
}

// Batch returns n generated records.
func (g *Generator) Batch(n int) []Record {
	if n <= 0 {
		return nil
	}

	records := make([]Record, n)
	for i := range records {
		records[i] = g.Generate()
	}

	return records
}

func (g *Generator) pick(pool []string) string {
	return pool[g.rng.Intn(len(pool))]
}

func (g *Generator) username(first, last string) string {
	switch g.rng.Intn(4) {
	case 0:
		return first + "." + last
	case 1:
		return first + "_" + last + fmt.Sprint(g.rng.Intn(100))
	case 2:
		return first + fmt.Sprint(g.rng.Intn(100))
	default:
		return first[:1] + last + fmt.Sprint(g.rng.Intn(1000))
	}
}

func (g *Generator) fullName(first, last string) string {
	// Roughly one name in ten carries a prefix or suffix.
	switch g.rng.Intn(20) {
	case 0:
		return g.pick(namePrefixes) + " " + first + " " + last
	case 1:
		return first + " " + last + " " + g.pick(nameSuffixes)
	default:
		return first + " " + last
	}
}

func (g *Generator) phone() string {
	format := g.pick(phoneFormats)

	var b strings.Builder
	b.Grow(len(format))

	for i := 0; i < len(format); i++ {
		if format[i] == '#' {
			b.WriteByte(byte('0' + g.rng.Intn(10)))

			continue
		}
		b.WriteByte(format[i])
	}

	return b.String()
}
