package dbscan

import (
	"math"
	"sort"
)

// KDistanceCurve is the sorted k-distance curve of a feature matrix: the
// distance from each point to its k-th nearest neighbor, sorted ascending.
// Plotting the curve and reading its "elbow" is the classic way to pick Eps;
// SuggestEps provides the deterministic fallback.
type KDistanceCurve struct {
	// K is the neighbor rank the curve was computed for
	// (typically MinSamples).
	K int

	// Distances holds one k-distance per point, sorted ascending.
	Distances []float64
}

// ComputeKDistanceCurve builds the k-distance curve for data. A nil metric
// defaults to Euclidean. Returns ErrInsufficientData when len(data) <= k.
func ComputeKDistanceCurve(data [][]float64, k int, metric DistanceMetric, numWorkers int) (*KDistanceCurve, error) {
	ix := NewNeighborIndex(data, metric, numWorkers)
	return ix.KDistanceCurve(k)
}

// KDistanceCurve builds the k-distance curve from an existing index.
func (ix *NeighborIndex) KDistanceCurve(k int) (*KDistanceCurve, error) {
	distances, err := ix.KDistances(k)
	if err != nil {
		return nil, err
	}
	sort.Float64s(distances)
	return &KDistanceCurve{K: k, Distances: distances}, nil
}

// SuggestEps returns the median of the curve. The elbow of the curve is a
// visual heuristic that is not reliably automatable; the median is the
// deterministic, parameter-free fallback.
func (c *KDistanceCurve) SuggestEps() float64 {
	return c.Percentile(50)
}

// Percentile returns the p-th percentile of the curve, p in [0, 100],
// linearly interpolated between samples: rank h = (n-1)*p/100, blended
// between the two nearest order statistics. The median of an even-length
// curve is the mean of its two middle values.
func (c *KDistanceCurve) Percentile(p float64) float64 {
	s := c.Distances
	h := float64(len(s)-1) * p / 100
	lo := int(math.Floor(h))
	hi := int(math.Ceil(h))
	if lo == hi {
		return s[lo]
	}
	return s[lo] + (h-float64(lo))*(s[hi]-s[lo])
}
