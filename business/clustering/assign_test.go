package clustering

import (
	"testing"

	"github.com/google/uuid"
)

func centroidFixture(vectors ...[]float32) []Centroid {
	out := make([]Centroid, 0, len(vectors))
	for _, v := range vectors {
		out = append(out, Centroid{ClusterID: uuid.New(), Vector: v})
	}
	return out
}

func TestAssign_TopKAndThreshold(t *testing.T) {
	centroids := centroidFixture(
		[]float32{1, 0, 0},  // score 1.0
		[]float32{0, 1, 0},  // score 0.0
		[]float32{1, 1, 0},  // score ~0.707
		[]float32{-1, 0, 0}, // score -1.0
	)

	got, err := Assign([]float32{1, 0, 0}, centroids, 2, 0.3)
	if err != nil {
		t.Fatalf("Assign error: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("got %d assignments, want 2", len(got))
	}
	if got[0].ClusterID != centroids[0].ClusterID {
		t.Errorf("best assignment should be the identical centroid")
	}
	if got[1].ClusterID != centroids[2].ClusterID {
		t.Errorf("second assignment should be the diagonal centroid")
	}
	for _, a := range got {
		if a.Score < 0.3 {
			t.Errorf("assignment score %f below threshold", a.Score)
		}
	}
}

func TestAssign_FewerThanTopK(t *testing.T) {
	centroids := centroidFixture(
		[]float32{1, 0, 0},
		[]float32{0, 1, 0},
	)

	got, err := Assign([]float32{1, 0, 0}, centroids, 5, 0.5)
	if err != nil {
		t.Fatalf("Assign error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d assignments, want 1", len(got))
	}
}

func TestAssign_NoQualifyingClusters(t *testing.T) {
	centroids := centroidFixture([]float32{0, 1, 0})

	got, err := Assign([]float32{1, 0, 0}, centroids, 3, 0.5)
	if err != nil {
		t.Fatalf("Assign error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d assignments, want 0", len(got))
	}
}

func TestAssign_MissingEmbedding(t *testing.T) {
	centroids := centroidFixture([]float32{1, 0, 0})

	for _, v := range [][]float32{nil, {}, {0, 0, 0}} {
		got, err := Assign(v, centroids, 3, 0.0)
		if err != nil {
			t.Fatalf("Assign error: %v", err)
		}
		if got != nil {
			t.Errorf("Assign(%v) = %v, want nil", v, got)
		}
	}
}

func TestGroupByThreshold(t *testing.T) {
	embeddings := [][]float32{
		{1, 0},     // group A
		{0.99, 0},  // joins A
		{0, 1},     // group B
		{0, 0.98},  // joins B
		{-1, -0.1}, // its own group
	}

	groups, err := GroupByThreshold(embeddings, 0.8)
	if err != nil {
		t.Fatalf("GroupByThreshold error: %v", err)
	}

	if len(groups) != 3 {
		t.Fatalf("got %d groups, want 3", len(groups))
	}
	if len(groups[0].Members) != 2 || groups[0].Members[0] != 0 || groups[0].Members[1] != 1 {
		t.Errorf("group 0 members = %v, want [0 1]", groups[0].Members)
	}
	if len(groups[1].Members) != 2 {
		t.Errorf("group 1 members = %v, want two members", groups[1].Members)
	}
	if len(groups[2].Members) != 1 || groups[2].Members[0] != 4 {
		t.Errorf("outlier should become a singleton group, got %v", groups[2].Members)
	}
}

func TestGroupByThreshold_Deterministic(t *testing.T) {
	embeddings := [][]float32{
		{1, 0}, {0.9, 0.1}, {0, 1}, {0.1, 0.9},
	}

	first, err := GroupByThreshold(embeddings, 0.7)
	if err != nil {
		t.Fatalf("GroupByThreshold error: %v", err)
	}
	second, err := GroupByThreshold(embeddings, 0.7)
	if err != nil {
		t.Fatalf("GroupByThreshold error: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("non-deterministic group count: %d vs %d", len(first), len(second))
	}
	for g := range first {
		if len(first[g].Members) != len(second[g].Members) {
			t.Errorf("group %d sizes differ between runs", g)
		}
	}
}
