package dbscan

import (
	"math/rand"
	"testing"
)

// randomFlatData returns n points of dims dimensions in flat row-major
// layout, from a fixed seed for reproducibility.
func randomFlatData(n, dims int) ([]float64, int, int) {
	r := rand.New(rand.NewSource(42))
	data := make([]float64, n*dims)
	for i := range data {
		data[i] = r.Float64() * 10
	}
	return data, n, dims
}

func TestComputePairwiseDistancesParallel_MatchesSequential(t *testing.T) {
	data, n, dims := randomFlatData(60, 4)

	seq := ComputePairwiseDistances(data, n, dims, EuclideanMetric{})
	for _, workers := range []int{2, 4, 7, 100} {
		par := ComputePairwiseDistancesParallel(data, n, dims, EuclideanMetric{}, workers)
		if len(par) != len(seq) {
			t.Fatalf("workers=%d: length %d, expected %d", workers, len(par), len(seq))
		}
		for i := range seq {
			if par[i] != seq[i] {
				t.Fatalf("workers=%d: mismatch at %d: %f vs %f", workers, i, par[i], seq[i])
			}
		}
	}
}

func TestComputePairwiseDistancesParallel_SingleWorkerFallback(t *testing.T) {
	data, n, dims := randomFlatData(10, 2)
	seq := ComputePairwiseDistances(data, n, dims, EuclideanMetric{})
	par := ComputePairwiseDistancesParallel(data, n, dims, EuclideanMetric{}, 1)
	for i := range seq {
		if par[i] != seq[i] {
			t.Fatalf("mismatch at %d: %f vs %f", i, par[i], seq[i])
		}
	}
}
