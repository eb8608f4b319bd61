package dbscan

import (
	"fmt"
	"sort"
)

// NeighborIndex answers fixed-radius and k-th-neighbor queries over an
// immutable feature matrix. It precomputes the full n×n distance matrix
// (flat row-major), which is acceptable for the target data sizes of
// hundreds to low thousands of points. A spatial index could replace the
// matrix behind the same query contract.
//
// Building the index references the caller's data for the duration of the
// constructor only; queries read the precomputed matrix.
type NeighborIndex struct {
	dist []float64 // flat n×n distance matrix
	data []float64 // flat row-major copy of the points, for centroid math
	n    int
	dims int
}

// NewNeighborIndex builds a NeighborIndex over data using metric.
// A nil metric defaults to Euclidean. numWorkers controls parallelism of
// the pairwise distance computation; <= 1 means single-threaded.
func NewNeighborIndex(data [][]float64, metric DistanceMetric, numWorkers int) *NeighborIndex {
	if metric == nil {
		metric = EuclideanMetric{}
	}

	n := len(data)
	if n == 0 {
		return &NeighborIndex{}
	}

	dims := len(data[0])
	flat := make([]float64, n*dims)
	for i, row := range data {
		copy(flat[i*dims:], row)
	}

	return &NeighborIndex{
		dist: ComputePairwiseDistancesParallel(flat, n, dims, metric, numWorkers),
		data: flat,
		n:    n,
		dims: dims,
	}
}

// Len returns the number of indexed points.
func (ix *NeighborIndex) Len() int { return ix.n }

// Dims returns the dimensionality of the indexed points.
func (ix *NeighborIndex) Dims() int { return ix.dims }

// Distance returns the precomputed distance between points i and j.
func (ix *NeighborIndex) Distance(i, j int) float64 {
	return ix.dist[i*ix.n+j]
}

// point returns the coordinates of point i.
func (ix *NeighborIndex) point(i int) []float64 {
	return ix.data[i*ix.dims : (i+1)*ix.dims]
}

// RegionQuery returns the indices of all points within eps of point i,
// inclusive of i itself, in ascending index order. Membership is symmetric:
// j is in RegionQuery(i, eps) exactly when i is in RegionQuery(j, eps).
func (ix *NeighborIndex) RegionQuery(i int, eps float64) []int {
	neighbors := make([]int, 0, 8)
	row := ix.dist[i*ix.n : (i+1)*ix.n]
	for j, d := range row {
		if d <= eps {
			neighbors = append(neighbors, j)
		}
	}
	return neighbors
}

// KDistance returns the distance from point i to its k-th nearest neighbor,
// excluding i itself. k must be >= 1 and at most n-1; equal distances are
// interchangeable for the k-th value, so the result is reproducible.
func (ix *NeighborIndex) KDistance(i, k int) (float64, error) {
	if k < 1 {
		return 0, fmt.Errorf("%w: k must be >= 1, got %d", ErrInvalidParameter, k)
	}
	if ix.n <= k {
		return 0, fmt.Errorf("%w: need more than k=%d points, have %d", ErrInsufficientData, k, ix.n)
	}

	neighbors := make([]float64, 0, ix.n-1)
	for j := 0; j < ix.n; j++ {
		if j != i {
			neighbors = append(neighbors, ix.dist[i*ix.n+j])
		}
	}
	sort.Float64s(neighbors)
	return neighbors[k-1], nil
}

// KDistances returns the k-distance of every indexed point, in point order.
func (ix *NeighborIndex) KDistances(k int) ([]float64, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be >= 1, got %d", ErrInvalidParameter, k)
	}
	if ix.n <= k {
		return nil, fmt.Errorf("%w: need more than k=%d points, have %d", ErrInsufficientData, k, ix.n)
	}

	out := make([]float64, ix.n)
	neighbors := make([]float64, ix.n-1)
	for i := 0; i < ix.n; i++ {
		m := 0
		for j := 0; j < ix.n; j++ {
			if j != i {
				neighbors[m] = ix.dist[i*ix.n+j]
				m++
			}
		}
		sort.Float64s(neighbors)
		out[i] = neighbors[k-1]
	}
	return out, nil
}
