package clustering

import (
	"campusEvents/business/similarity"
)

// Group is one cluster produced by GroupByThreshold: member indexes into the
// input slice plus the running centroid.
type Group struct {
	Members  []int
	Centroid []float32
}

// GroupByThreshold clusters normalized embeddings with a single greedy pass:
// each vector joins the best-matching existing group when its similarity to
// that group's centroid clears minSimilarity, otherwise it starts a new
// group. Deterministic in input order; every vector lands in exactly one
// group, outliers become singletons.
func GroupByThreshold(embeddings [][]float32, minSimilarity float64) ([]Group, error) {
	groups := make([]Group, 0)

	for idx, vec := range embeddings {
		bestGroup := -1
		bestScore := minSimilarity

		for g := range groups {
			score, err := similarity.Cosine(vec, groups[g].Centroid)
			if err != nil {
				return nil, err
			}
			if score >= bestScore {
				bestScore = score
				bestGroup = g
			}
		}

		if bestGroup < 0 {
			groups = append(groups, Group{
				Members:  []int{idx},
				Centroid: append([]float32(nil), vec...),
			})
			continue
		}

		groups[bestGroup].Members = append(groups[bestGroup].Members, idx)

		members := make([][]float32, 0, len(groups[bestGroup].Members))
		for _, m := range groups[bestGroup].Members {
			members = append(members, embeddings[m])
		}
		centroid, err := similarity.Mean(members)
		if err != nil {
			return nil, err
		}
		groups[bestGroup].Centroid = centroid
	}

	return groups, nil
}
