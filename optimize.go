package dbscan

import (
	"fmt"
	"runtime"
	"sync"
)

// OptimizerConfig controls the parameter grid search.
type OptimizerConfig struct {
	// EpsCandidates are the neighborhood radii to try. All must be > 0.
	EpsCandidates []float64

	// MinSamplesCandidates are the core-point thresholds to try.
	// All must be >= 1.
	MinSamplesCandidates []int

	// MaxNoiseRatio is the acceptance ceiling: a configuration whose noise
	// ratio is >= MaxNoiseRatio is rejected. 0 means the default of 0.5.
	MaxNoiseRatio float64

	// Metric is the distance function. Default: EuclideanMetric.
	Metric DistanceMetric

	// Workers controls how many goroutines evaluate grid trials.
	// 0 means runtime.NumCPU(). The selected winner is identical
	// regardless of the worker count.
	Workers int
}

// DefaultMaxNoiseRatio is the acceptance ceiling used when
// OptimizerConfig.MaxNoiseRatio is zero.
const DefaultMaxNoiseRatio = 0.5

// Trial is the outcome of one (eps, minSamples) grid evaluation.
type Trial struct {
	Eps        float64
	MinSamples int
	Report     *QualityReport
}

// OptimizeResult is the winning configuration plus every evaluated trial
// (in grid order: eps-major, minSamples-minor) for external reporting.
type OptimizeResult struct {
	Eps        float64
	MinSamples int
	Report     *QualityReport
	Trials     []Trial
}

// DefaultGrid derives a candidate grid from a k-distance curve: 20 eps
// values evenly spaced between the curve's 10th and 90th percentiles, and
// minSamples 3 through 10. When the two percentiles coincide (e.g. all
// points equidistant) the single shared value is returned. Exact-duplicate
// records put zeros at the bottom of the curve; a non-positive lower bound
// is clamped to the smallest positive curve value so every candidate is a
// usable radius.
func DefaultGrid(curve *KDistanceCurve) (eps []float64, minSamples []int) {
	lo := curve.Percentile(10)
	hi := curve.Percentile(90)
	if lo <= 0 {
		lo = smallestPositive(curve.Distances)
	}

	if hi <= lo {
		eps = []float64{lo}
	} else {
		step := (hi - lo) / 20
		for i := 0; i < 20; i++ {
			eps = append(eps, lo+float64(i)*step)
		}
	}

	for m := 3; m <= 10; m++ {
		minSamples = append(minSamples, m)
	}
	return eps, minSamples
}

// smallestPositive returns the first positive value of an ascending-sorted
// slice, or 1 when there is none (every record identical).
func smallestPositive(sorted []float64) float64 {
	for _, d := range sorted {
		if d > 0 {
			return d
		}
	}
	return 1
}

// Optimize evaluates the full cross-product of the candidate grids, running
// the clustering engine and the metrics evaluator for each pair over one
// shared distance matrix, and returns the accepted configuration with the
// highest silhouette score.
//
// A configuration is accepted when its scores are computable, it yields at
// least 2 clusters but no more than n/2 (a cluster per couple of points is
// over-segmentation, not structure), and its noise ratio is below the
// ceiling. Ties on silhouette prefer fewer clusters, then smaller eps, then
// smaller minSamples, so selection is a total order and deterministic.
//
// All trials are collected before the winner is chosen; parallel evaluation
// never race-selects. If no candidate is accepted, Optimize returns
// ErrNoViableConfiguration.
func Optimize(data [][]float64, cfg OptimizerConfig) (*OptimizeResult, error) {
	if len(cfg.EpsCandidates) == 0 || len(cfg.MinSamplesCandidates) == 0 {
		return nil, fmt.Errorf("%w: empty candidate grid", ErrInvalidParameter)
	}
	for _, e := range cfg.EpsCandidates {
		if e <= 0 {
			return nil, fmt.Errorf("%w: Eps candidate must be > 0, got %v", ErrInvalidParameter, e)
		}
	}
	for _, m := range cfg.MinSamplesCandidates {
		if m < 1 {
			return nil, fmt.Errorf("%w: MinSamples candidate must be >= 1, got %d", ErrInvalidParameter, m)
		}
	}
	if cfg.MaxNoiseRatio == 0 {
		cfg.MaxNoiseRatio = DefaultMaxNoiseRatio
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}

	ix := NewNeighborIndex(data, cfg.Metric, cfg.Workers)

	trials := make([]Trial, 0, len(cfg.EpsCandidates)*len(cfg.MinSamplesCandidates))
	for _, e := range cfg.EpsCandidates {
		for _, m := range cfg.MinSamplesCandidates {
			trials = append(trials, Trial{Eps: e, MinSamples: m})
		}
	}

	runTrials(ix, trials, cfg.Workers)

	n := len(data)
	var best *Trial
	for i := range trials {
		t := &trials[i]
		if !accepted(t.Report, n, cfg.MaxNoiseRatio) {
			continue
		}
		if best == nil || betterTrial(t, best) {
			best = t
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w: none of %d grid candidates accepted", ErrNoViableConfiguration, len(trials))
	}

	return &OptimizeResult{
		Eps:        best.Eps,
		MinSamples: best.MinSamples,
		Report:     best.Report,
		Trials:     trials,
	}, nil
}

// runTrials fills in the Report of every trial. Trials are independent:
// each reads the shared immutable index and writes only its own slot, so
// chunking them across workers needs no synchronization beyond the join.
func runTrials(ix *NeighborIndex, trials []Trial, numWorkers int) {
	run := func(t *Trial) {
		// Candidates are validated up front; neither call can fail here.
		result, _ := ClusterWithIndex(ix, t.Eps, t.MinSamples)
		t.Report, _ = EvaluateWithIndex(ix, result.Labels)
	}

	if numWorkers <= 1 || len(trials) <= 1 {
		for i := range trials {
			run(&trials[i])
		}
		return
	}

	var wg sync.WaitGroup
	perWorker := (len(trials) + numWorkers - 1) / numWorkers
	for w := 0; w < numWorkers; w++ {
		start := w * perWorker
		end := min(start+perWorker, len(trials))
		if start >= len(trials) {
			break
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				run(&trials[i])
			}
		}(start, end)
	}
	wg.Wait()
}

// accepted applies the degenerate-outcome filter.
func accepted(r *QualityReport, n int, maxNoiseRatio float64) bool {
	return r.Computable &&
		r.NumClusters >= 2 &&
		r.NumClusters <= n/2 &&
		r.NoiseRatio < maxNoiseRatio
}

// betterTrial reports whether a should be preferred over b:
// higher silhouette, then fewer clusters, then smaller eps,
// then smaller minSamples.
func betterTrial(a, b *Trial) bool {
	if a.Report.Silhouette != b.Report.Silhouette {
		return a.Report.Silhouette > b.Report.Silhouette
	}
	if a.Report.NumClusters != b.Report.NumClusters {
		return a.Report.NumClusters < b.Report.NumClusters
	}
	if a.Eps != b.Eps {
		return a.Eps < b.Eps
	}
	return a.MinSamples < b.MinSamples
}
