package vector_test

import (
	"errors"
	"math"
	"testing"

	"github.com/arboretica/lore/pkg/vector"
)

func TestCosineDistance(t *testing.T) {
	tests := []struct {
		name string
		a    vector.Vector
		b    vector.Vector
		want float64
	}{
		{
			name: "identical direction",
			a:    vector.Vector{1, 0, 0},
			b:    vector.Vector{2, 0, 0},
			want: 0,
		},
		{
			name: "orthogonal",
			a:    vector.Vector{1, 0},
			b:    vector.Vector{0, 1},
			want: 1,
		},
		{
			name: "opposite",
			a:    vector.Vector{1, 0},
			b:    vector.Vector{-1, 0},
			want: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := vector.CosineDistance(tt.a, tt.b)
			if err != nil {
				t.Fatalf("CosineDistance() error = %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CosineDistance() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCosineDistanceErrors(t *testing.T) {
	if _, err := vector.CosineDistance(vector.Vector{1}, vector.Vector{1, 2}); !errors.Is(err, vector.ErrDimensionMismatch) {
		t.Errorf("mismatched lengths error = %v, want ErrDimensionMismatch", err)
	}
	if _, err := vector.CosineDistance(vector.Vector{0, 0}, vector.Vector{1, 1}); !errors.Is(err, vector.ErrZeroMagnitude) {
		t.Errorf("zero vector error = %v, want ErrZeroMagnitude", err)
	}
}

func TestNearest(t *testing.T) {
	candidates := []vector.Candidate[string]{
		{Item: "east", Vector: vector.Vector{1, 0}},
		{Item: "north", Vector: vector.Vector{0, 1}},
		{Item: "northeast", Vector: vector.Vector{1, 1}},
		{Item: "west", Vector: vector.Vector{-1, 0}},
	}

	ranked := vector.Nearest(vector.Vector{1, 0}, candidates, 3)

	if len(ranked) != 3 {
		t.Fatalf("Nearest() returned %d results, want 3", len(ranked))
	}

	want := []string{"east", "northeast", "north"}
	for i, w := range want {
		if ranked[i].Item != w {
			t.Errorf("ranked[%d] = %s, want %s", i, ranked[i].Item, w)
		}
	}

	for i := 1; i < len(ranked); i++ {
		if ranked[i].Distance < ranked[i-1].Distance {
			t.Errorf("distances not ascending at %d: %v < %v", i, ranked[i].Distance, ranked[i-1].Distance)
		}
	}
}

func TestNearestSkipsIncomparable(t *testing.T) {
	candidates := []vector.Candidate[string]{
		{Item: "good", Vector: vector.Vector{1, 0}},
		{Item: "wrong dimension", Vector: vector.Vector{1, 0, 0}},
		{Item: "zero", Vector: vector.Vector{0, 0}},
	}

	ranked := vector.Nearest(vector.Vector{1, 0}, candidates, 10)

	if len(ranked) != 1 {
		t.Fatalf("Nearest() returned %d results, want 1", len(ranked))
	}
	if ranked[0].Item != "good" {
		t.Errorf("ranked[0] = %s", ranked[0].Item)
	}
}

func TestScanRoundTrip(t *testing.T) {
	original := vector.Vector{0.25, -1.5, 3}

	value, err := original.Value()
	if err != nil {
		t.Fatalf("Value() error = %v", err)
	}

	var scanned vector.Vector
	if err := scanned.Scan(value); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	if len(scanned) != len(original) {
		t.Fatalf("scanned length = %d, want %d", len(scanned), len(original))
	}
	for i := range original {
		if scanned[i] != original[i] {
			t.Errorf("scanned[%d] = %v, want %v", i, scanned[i], original[i])
		}
	}
}

func TestScanNull(t *testing.T) {
	scanned := vector.Vector{1}
	if err := scanned.Scan(nil); err != nil {
		t.Fatalf("Scan(nil) error = %v", err)
	}
	if scanned != nil {
		t.Errorf("scanned = %v, want nil", scanned)
	}
}
