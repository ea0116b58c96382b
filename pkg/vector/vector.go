// Package vector provides fixed-dimension embedding vectors, their database
// encoding, and brute-force cosine similarity search.
package vector

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	// ErrDimensionMismatch indicates two vectors of different lengths were compared.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	// ErrZeroMagnitude indicates a vector with zero magnitude cannot be compared.
	ErrZeroMagnitude = errors.New("vector has zero magnitude")
)

// Vector is a fixed-length embedding stored as JSONB.
type Vector []float32

// Value encodes the vector as JSON for database storage.
// A nil vector stores as NULL.
func (v Vector) Value() (driver.Value, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

// Scan decodes a JSONB column into the vector. NULL scans to nil.
func (v *Vector) Scan(src any) error {
	switch s := src.(type) {
	case nil:
		*v = nil
		return nil
	case []byte:
		return json.Unmarshal(s, v)
	case string:
		return json.Unmarshal([]byte(s), v)
	default:
		return fmt.Errorf("cannot scan %T into Vector", src)
	}
}

// CosineDistance returns 1 - cosine similarity, so identical directions
// yield 0 and opposite directions yield 2.
func CosineDistance(a, b Vector) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0, ErrZeroMagnitude
	}

	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB)), nil
}

// Candidate pairs an opaque identifier with its stored vector for ranking.
type Candidate[T any] struct {
	Item   T
	Vector Vector
}

// Ranked is a candidate scored against a query vector.
type Ranked[T any] struct {
	Item     T
	Distance float64
}

// Nearest ranks candidates by ascending cosine distance from query and
// returns at most k results. Candidates whose vectors cannot be compared
// (wrong dimension, zero magnitude) are skipped rather than failing the
// whole scan.
func Nearest[T any](query Vector, candidates []Candidate[T], k int) []Ranked[T] {
	ranked := make([]Ranked[T], 0, len(candidates))

	for _, c := range candidates {
		d, err := CosineDistance(query, c.Vector)
		if err != nil {
			continue
		}
		ranked = append(ranked, Ranked[T]{Item: c.Item, Distance: d})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Distance < ranked[j].Distance
	})

	if k < len(ranked) {
		ranked = ranked[:k]
	}
	return ranked
}
