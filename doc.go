// Package dbscan implements Density-Based Spatial Clustering of
// Applications with Noise (DBSCAN) for tabular anomaly detection, together
// with the machinery to choose its parameters: the sorted k-distance curve
// for estimating the neighborhood radius Eps, a silhouette-maximizing grid
// search over (Eps, MinSamples) candidates, and cluster-quality metrics
// (silhouette, Davies-Bouldin, Calinski-Harabasz).
//
// Points not belonging to any dense region are labeled Noise (-1); in an
// anomaly-detection pipeline those are the flagged records.
//
// Basic usage:
//
//	cfg := dbscan.DefaultConfig()
//	cfg.Eps = eps // e.g. from ComputeKDistanceCurve(...).SuggestEps()
//	result, err := dbscan.Cluster(data, cfg)
//	// result.Labels[i] is the cluster ID for point i (-1 = noise)
//
//	report, err := dbscan.Evaluate(data, result.Labels, nil)
//	// report.Silhouette, report.DaviesBouldin, report.CalinskiHarabasz
//
// When Eps is unknown, let the grid search pick both parameters:
//
//	curve, _ := dbscan.ComputeKDistanceCurve(data, 5, nil, 0)
//	eps, minSamples := dbscan.DefaultGrid(curve)
//	best, err := dbscan.Optimize(data, dbscan.OptimizerConfig{
//		EpsCandidates:        eps,
//		MinSamplesCandidates: minSamples,
//	})
//
// The package performs no I/O and holds no global state; for a fixed matrix
// and parameters every operation is deterministic, including which numeric
// ID each cluster receives.
package dbscan
