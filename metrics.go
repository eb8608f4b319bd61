package dbscan

import (
	"fmt"
	"math"
	"runtime"

	"gonum.org/v1/gonum/floats"
)

// QualityReport holds cluster-quality scores for one label assignment over
// one feature matrix. The three scores are computable only when the
// assignment has at least 2 non-noise clusters and at least 2 non-noise
// points; otherwise they are NaN and Computable is false.
type QualityReport struct {
	// Silhouette is the mean silhouette coefficient over non-noise points,
	// in [-1, 1]. Higher is better.
	Silhouette float64

	// DaviesBouldin is the average worst-case similarity between cluster
	// pairs, >= 0. Lower is better.
	DaviesBouldin float64

	// CalinskiHarabasz is the variance-ratio criterion, >= 0.
	// Higher is better.
	CalinskiHarabasz float64

	// Computable reports whether the three scores above hold numeric
	// values. When false they are NaN, not an error: too few clusters is a
	// valid clustering outcome the caller must interpret.
	Computable bool

	// NumClusters is the number of clusters, noise excluded.
	NumClusters int

	// NumNoise is the number of noise points.
	NumNoise int

	// NoiseRatio is NumNoise divided by the number of points.
	NoiseRatio float64
}

// Evaluate computes a QualityReport for labels over data. Any negative label
// is treated as noise; noise points are excluded from all three scores.
// A nil metric defaults to Euclidean. The metric affects the silhouette
// score only: Davies-Bouldin and Calinski-Harabasz are defined in terms of
// centroids and variances and always use Euclidean geometry.
func Evaluate(data [][]float64, labels []int, metric DistanceMetric) (*QualityReport, error) {
	if len(data) != len(labels) {
		return nil, fmt.Errorf("%w: %d points but %d labels", ErrInvalidParameter, len(data), len(labels))
	}
	ix := NewNeighborIndex(data, metric, runtime.NumCPU())
	return EvaluateWithIndex(ix, labels)
}

// EvaluateWithIndex computes a QualityReport from a prebuilt NeighborIndex,
// reusing its distance matrix. See Evaluate.
func EvaluateWithIndex(ix *NeighborIndex, labels []int) (*QualityReport, error) {
	n := ix.Len()
	if n != len(labels) {
		return nil, fmt.Errorf("%w: %d points but %d labels", ErrInvalidParameter, n, len(labels))
	}

	// Gather cluster members; IDs need not be contiguous.
	members := map[int][]int{}
	maxID := -1
	numNoise := 0
	for i, l := range labels {
		if l < 0 {
			numNoise++
			continue
		}
		members[l] = append(members[l], i)
		if l > maxID {
			maxID = l
		}
	}

	report := &QualityReport{
		Silhouette:       math.NaN(),
		DaviesBouldin:    math.NaN(),
		CalinskiHarabasz: math.NaN(),
		NumClusters:      len(members),
		NumNoise:         numNoise,
	}
	if n > 0 {
		report.NoiseRatio = float64(numNoise) / float64(n)
	}

	if len(members) < 2 || n-numNoise < 2 {
		return report, nil
	}

	// Clusters in ascending ID order for deterministic iteration.
	clusters := make([][]int, 0, len(members))
	for id := 0; id <= maxID; id++ {
		if m, ok := members[id]; ok {
			clusters = append(clusters, m)
		}
	}

	report.Silhouette = silhouetteScore(ix, clusters)
	report.DaviesBouldin = daviesBouldinScore(ix, clusters)
	report.CalinskiHarabasz = calinskiHarabaszScore(ix, clusters)
	report.Computable = true
	return report, nil
}

// silhouetteScore is the mean over all clustered points of (b-a)/max(a,b),
// where a is the mean distance to same-cluster peers and b the mean distance
// to the nearest other cluster. Points in singleton clusters score 0.
func silhouetteScore(ix *NeighborIndex, clusters [][]int) float64 {
	var sum float64
	var count int

	for ci, members := range clusters {
		for _, p := range members {
			count++
			if len(members) == 1 {
				continue // singleton scores 0
			}

			var intra float64
			for _, q := range members {
				intra += ix.Distance(p, q) // p==q contributes 0
			}
			a := intra / float64(len(members)-1)

			b := math.Inf(1)
			for cj, others := range clusters {
				if cj == ci {
					continue
				}
				var inter float64
				for _, q := range others {
					inter += ix.Distance(p, q)
				}
				if mean := inter / float64(len(others)); mean < b {
					b = mean
				}
			}

			if m := math.Max(a, b); m > 0 {
				sum += (b - a) / m
			}
		}
	}

	return sum / float64(count)
}

// daviesBouldinScore averages, over clusters, the worst-case ratio
// (scatter_i + scatter_j) / centroidDistance(i, j), where scatter is the
// mean distance of a cluster's points to its centroid.
func daviesBouldinScore(ix *NeighborIndex, clusters [][]int) float64 {
	k := len(clusters)
	centroids := make([][]float64, k)
	scatters := make([]float64, k)
	for i, members := range clusters {
		centroids[i] = ix.centroid(members)
		var sum float64
		for _, p := range members {
			sum += floats.Distance(ix.point(p), centroids[i], 2)
		}
		scatters[i] = sum / float64(len(members))
	}

	var total float64
	for i := 0; i < k; i++ {
		worst := 0.0
		for j := 0; j < k; j++ {
			if j == i {
				continue
			}
			sep := floats.Distance(centroids[i], centroids[j], 2)
			var ratio float64
			if sep == 0 {
				ratio = math.Inf(1)
			} else {
				ratio = (scatters[i] + scatters[j]) / sep
			}
			if ratio > worst {
				worst = ratio
			}
		}
		total += worst
	}
	return total / float64(k)
}

// calinskiHarabaszScore is the ratio of between-cluster to within-cluster
// dispersion scaled by (n-k)/(k-1), over the clustered points only.
// Zero within-cluster dispersion yields 1 by convention.
func calinskiHarabaszScore(ix *NeighborIndex, clusters [][]int) float64 {
	k := len(clusters)

	var all []int
	for _, members := range clusters {
		all = append(all, members...)
	}
	n := len(all)
	grand := ix.centroid(all)

	var between, within float64
	for _, members := range clusters {
		c := ix.centroid(members)
		d := floats.Distance(c, grand, 2)
		between += float64(len(members)) * d * d
		for _, p := range members {
			pd := floats.Distance(ix.point(p), c, 2)
			within += pd * pd
		}
	}

	if within == 0 {
		return 1
	}
	return between * float64(n-k) / (within * float64(k-1))
}

// centroid returns the component-wise mean of the given points.
func (ix *NeighborIndex) centroid(points []int) []float64 {
	c := make([]float64, ix.dims)
	for _, p := range points {
		floats.Add(c, ix.point(p))
	}
	floats.Scale(1/float64(len(points)), c)
	return c
}

// Interpretation bands, informational only. Thresholds follow the usual
// rules of thumb for the three scores.

// SilhouetteBand labels the silhouette score:
// > 0.7 excellent, > 0.5 good, > 0.25 acceptable, otherwise weak.
func (r *QualityReport) SilhouetteBand() string {
	switch {
	case !r.Computable:
		return "not computable (fewer than 2 clusters)"
	case r.Silhouette > 0.7:
		return "excellent clustering (silhouette > 0.7)"
	case r.Silhouette > 0.5:
		return "good clustering (silhouette > 0.5)"
	case r.Silhouette > 0.25:
		return "acceptable clustering (silhouette > 0.25)"
	default:
		return "weak clustering (silhouette <= 0.25)"
	}
}

// DaviesBouldinBand labels the Davies-Bouldin score:
// < 0.5 excellent, < 1.0 good, otherwise moderate.
func (r *QualityReport) DaviesBouldinBand() string {
	switch {
	case !r.Computable:
		return "not computable (fewer than 2 clusters)"
	case r.DaviesBouldin < 0.5:
		return "excellent cluster separation (DB < 0.5)"
	case r.DaviesBouldin < 1.0:
		return "good cluster separation (DB < 1.0)"
	default:
		return "moderate cluster separation (DB >= 1.0)"
	}
}

// NoiseBand labels the noise ratio:
// < 0.1 low, < 0.3 moderate, otherwise high.
func (r *QualityReport) NoiseBand() string {
	switch {
	case r.NoiseRatio < 0.1:
		return "few anomalies detected (< 10%)"
	case r.NoiseRatio < 0.3:
		return "moderate share of anomalies (10-30%)"
	default:
		return "many anomalies detected (> 30%)"
	}
}
