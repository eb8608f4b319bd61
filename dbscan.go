package dbscan

import (
	"fmt"
	"runtime"
)

// Noise is the label assigned to points that belong to no cluster.
const Noise = -1

// Config controls DBSCAN clustering behavior.
// Start with [DefaultConfig] and override the fields you need.
type Config struct {
	// Eps is the neighborhood radius: two points are neighbors when their
	// distance is <= Eps. Must be > 0. There is no usable default; derive
	// one from the k-distance curve (see ComputeKDistanceCurve) when in
	// doubt.
	Eps float64

	// MinSamples is the minimum neighborhood size (the point itself
	// included) for a point to be a core point. Must be >= 1. Default: 5.
	MinSamples int

	// Metric is the distance function used to measure point similarity.
	// Built-in: EuclideanMetric, ManhattanMetric, ChebyshevMetric,
	// MinkowskiMetric. Use DistanceFunc to wrap a custom function.
	// Default: EuclideanMetric.
	Metric DistanceMetric

	// Workers controls the number of goroutines for the pairwise distance
	// computation. 0 means use runtime.NumCPU(). Labels are identical
	// regardless of the worker count.
	Workers int
}

// DefaultConfig returns a Config with reasonable defaults.
// Eps is left zero and must be set (or derived) by the caller.
func DefaultConfig() Config {
	return Config{
		MinSamples: 5,
		Metric:     EuclideanMetric{},
	}
}

// Result contains the output of one DBSCAN clustering run.
type Result struct {
	// Labels assigns each point to a cluster (0-indexed cluster ID, in
	// discovery order) or Noise (-1). Cluster IDs carry no meaning beyond
	// distinguishing groups.
	Labels []int

	// NumClusters is the number of clusters found, noise excluded.
	NumClusters int

	// NumNoise is the number of points labeled Noise.
	NumNoise int

	// NoiseRatio is NumNoise divided by the number of points
	// (0 for an empty input).
	NoiseRatio float64
}

// validateConfig checks that cfg fields are valid and returns a descriptive error if not.
func validateConfig(cfg *Config) error {
	if cfg.Eps <= 0 {
		return fmt.Errorf("%w: Eps must be > 0, got %v", ErrInvalidParameter, cfg.Eps)
	}
	if cfg.MinSamples < 1 {
		return fmt.Errorf("%w: MinSamples must be >= 1, got %d", ErrInvalidParameter, cfg.MinSamples)
	}
	return nil
}

// applyDefaults fills in zero-valued config fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.Metric == nil {
		cfg.Metric = EuclideanMetric{}
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
}

// Cluster performs DBSCAN clustering on the given data. Each element is a
// point (float64 slice); all points must have the same dimensionality.
// Returns an error if the config is invalid. An all-noise labeling is a
// valid result, not an error.
//
// For a fixed data, Eps and MinSamples the labeling is fully deterministic:
// points are processed in increasing index order and neighborhoods are
// expanded in increasing index order.
func Cluster(data [][]float64, cfg Config) (*Result, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	if len(data) == 0 {
		return &Result{Labels: []int{}}, nil
	}

	ix := NewNeighborIndex(data, cfg.Metric, cfg.Workers)
	return ClusterWithIndex(ix, cfg.Eps, cfg.MinSamples)
}

// ClusterWithIndex performs DBSCAN against a prebuilt NeighborIndex.
// Useful when several parameter pairs are tried over the same matrix
// (see Optimize): the distance matrix is computed once.
func ClusterWithIndex(ix *NeighborIndex, eps float64, minSamples int) (*Result, error) {
	if eps <= 0 {
		return nil, fmt.Errorf("%w: Eps must be > 0, got %v", ErrInvalidParameter, eps)
	}
	if minSamples < 1 {
		return nil, fmt.Errorf("%w: MinSamples must be >= 1, got %d", ErrInvalidParameter, minSamples)
	}

	labels := expandClusters(ix, eps, minSamples)
	return summarize(labels), nil
}

// expandClusters runs the expand-cluster loop over dense seeds.
//
// Each point moves UNVISITED -> VISITED exactly once. A point visited with a
// sparse neighborhood is tentatively Noise; it may later be reclassified as
// a border point of a cluster reached from a core point, never the reverse.
// The frontier is an explicit work queue, not recursion, so dense clusters
// cannot exhaust the call stack.
func expandClusters(ix *NeighborIndex, eps float64, minSamples int) []int {
	n := ix.Len()
	labels := make([]int, n)
	for i := range labels {
		labels[i] = Noise
	}
	visited := make([]bool, n)

	nextCluster := 0
	for i := 0; i < n; i++ {
		if visited[i] {
			continue
		}
		visited[i] = true

		seed := ix.RegionQuery(i, eps)
		if len(seed) < minSamples {
			// Tentative noise; a later cluster may still claim it.
			continue
		}

		c := nextCluster
		nextCluster++
		labels[i] = c

		// Frontier of pending neighborhood members, FIFO. RegionQuery
		// returns ascending indices, so expansion order is deterministic.
		frontier := append([]int(nil), seed...)
		for head := 0; head < len(frontier); head++ {
			q := frontier[head]
			if visited[q] {
				if labels[q] == Noise {
					// Border point: claimed by this cluster.
					labels[q] = c
				}
				continue
			}
			visited[q] = true
			labels[q] = c

			reachable := ix.RegionQuery(q, eps)
			if len(reachable) >= minSamples {
				// q is itself a core point; expansion continues through it.
				frontier = append(frontier, reachable...)
			}
		}
	}

	return labels
}

// summarize derives cluster and noise counts from a label assignment.
func summarize(labels []int) *Result {
	numClusters := 0
	numNoise := 0
	for _, l := range labels {
		if l == Noise {
			numNoise++
		} else if l+1 > numClusters {
			numClusters = l + 1
		}
	}

	r := &Result{
		Labels:      labels,
		NumClusters: numClusters,
		NumNoise:    numNoise,
	}
	if len(labels) > 0 {
		r.NoiseRatio = float64(numNoise) / float64(len(labels))
	}
	return r
}
