package clustering

import (
	"sort"

	"campusEvents/business/similarity"

	"github.com/google/uuid"
)

// Centroid is one cluster's representative vector, in cluster insertion
// order.
type Centroid struct {
	ClusterID uuid.UUID
	Vector    []float32
}

type Assignment struct {
	ClusterID uuid.UUID
	Score     float64
}

// Assign scores the event embedding against every centroid and returns at
// most topK assignments with score >= threshold, best first. Ties keep
// centroid insertion order. An empty result is not an error.
func Assign(eventEmbedding []float32, centroids []Centroid, topK int, threshold float64) ([]Assignment, error) {
	if len(eventEmbedding) == 0 || similarity.IsZero(eventEmbedding) {
		return nil, nil
	}
	if topK < 1 {
		topK = 1
	}

	scored := make([]Assignment, 0, len(centroids))
	for _, c := range centroids {
		score, err := similarity.Cosine(eventEmbedding, c.Vector)
		if err != nil {
			return nil, err
		}
		if score < threshold {
			continue
		}
		scored = append(scored, Assignment{ClusterID: c.ClusterID, Score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > topK {
		scored = scored[:topK]
	}

	return scored, nil
}
