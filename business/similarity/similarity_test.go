package similarity

import (
	"errors"
	"math"
	"testing"
)

const tolerance = 1e-6

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < tolerance
}

func TestCosine_SelfIsOne(t *testing.T) {
	vectors := [][]float32{
		{1, 0, 0},
		{0.5, 0.5, 0.5},
		{-3, 2, 7},
		{0.001, -0.002, 0.003},
	}

	for _, v := range vectors {
		got, err := Cosine(v, v)
		if err != nil {
			t.Fatalf("Cosine(v, v) error: %v", err)
		}
		if !almostEqual(got, 1.0) {
			t.Errorf("Cosine(%v, %v) = %f, want 1.0", v, v, got)
		}
	}
}

func TestCosine_NegationIsMinusOne(t *testing.T) {
	v := []float32{1, -2, 3}
	neg := []float32{-1, 2, -3}

	got, err := Cosine(v, neg)
	if err != nil {
		t.Fatalf("Cosine error: %v", err)
	}
	if !almostEqual(got, -1.0) {
		t.Errorf("Cosine(v, -v) = %f, want -1.0", got)
	}
}

func TestCosine_ZeroVectorIsZero(t *testing.T) {
	zero := []float32{0, 0, 0}
	other := []float32{4, 5, 6}

	got, err := Cosine(zero, other)
	if err != nil {
		t.Fatalf("Cosine error: %v", err)
	}
	if got != 0 {
		t.Errorf("Cosine(zero, v) = %f, want 0", got)
	}

	got, err = Cosine(other, zero)
	if err != nil {
		t.Fatalf("Cosine error: %v", err)
	}
	if got != 0 {
		t.Errorf("Cosine(v, zero) = %f, want 0", got)
	}
}

func TestCosine_Orthogonal(t *testing.T) {
	got, err := Cosine([]float32{1, 0, 0}, []float32{0, 1, 0})
	if err != nil {
		t.Fatalf("Cosine error: %v", err)
	}
	if !almostEqual(got, 0.0) {
		t.Errorf("orthogonal cosine = %f, want 0", got)
	}
}

func TestCosine_DimensionMismatch(t *testing.T) {
	_, err := Cosine([]float32{1, 2}, []float32{1, 2, 3})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestNormalize(t *testing.T) {
	v := []float32{3, 4}
	n := Normalize(v)

	if !almostEqual(float64(n[0]), 0.6) || !almostEqual(float64(n[1]), 0.8) {
		t.Errorf("Normalize(%v) = %v, want [0.6 0.8]", v, n)
	}

	// input untouched
	if v[0] != 3 || v[1] != 4 {
		t.Errorf("Normalize mutated its input: %v", v)
	}

	zero := Normalize([]float32{0, 0})
	if !IsZero(zero) {
		t.Errorf("Normalize(zero) = %v, want zero vector", zero)
	}
}

func TestMean(t *testing.T) {
	got, err := Mean([][]float32{
		{1, 2, 3},
		{3, 4, 5},
	})
	if err != nil {
		t.Fatalf("Mean error: %v", err)
	}

	want := []float32{2, 3, 4}
	for i := range want {
		if !almostEqual(float64(got[i]), float64(want[i])) {
			t.Errorf("Mean = %v, want %v", got, want)
			break
		}
	}

	if _, err := Mean(nil); err == nil {
		t.Error("Mean(nil) should error")
	}

	if _, err := Mean([][]float32{{1}, {1, 2}}); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}
