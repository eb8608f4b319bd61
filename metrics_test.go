package dbscan

import (
	"errors"
	"math"
	"testing"
)

// twoRectClusters is 2 clusters of 2 points each with unit intra-cluster
// distance and centroids 10 apart, small enough to verify scores by hand.
func twoRectClusters() ([][]float64, []int) {
	data := [][]float64{
		{0, 0}, {0, 1},
		{10, 0}, {10, 1},
	}
	return data, []int{0, 0, 1, 1}
}

func TestEvaluate_HandComputedScores(t *testing.T) {
	data, labels := twoRectClusters()
	report, err := Evaluate(data, labels, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !report.Computable {
		t.Fatal("expected computable report")
	}

	// Every point: a = 1, b = (10 + sqrt(101))/2, s = (b-a)/b.
	b := (10 + math.Sqrt(101)) / 2
	wantSil := (b - 1) / b
	if math.Abs(report.Silhouette-wantSil) > 1e-12 {
		t.Errorf("silhouette: expected %f, got %f", wantSil, report.Silhouette)
	}

	// Scatter 0.5 per cluster, centroid separation 10: DB = (0.5+0.5)/10.
	if math.Abs(report.DaviesBouldin-0.1) > 1e-12 {
		t.Errorf("davies-bouldin: expected 0.1, got %f", report.DaviesBouldin)
	}

	// B = 100, W = 1, k = 2, n = 4: CH = (100/1) * (4-2)/(2-1) = 200.
	if math.Abs(report.CalinskiHarabasz-200) > 1e-9 {
		t.Errorf("calinski-harabasz: expected 200, got %f", report.CalinskiHarabasz)
	}

	if report.NumClusters != 2 || report.NumNoise != 0 || report.NoiseRatio != 0 {
		t.Errorf("counts: got %+v", report)
	}
}

func TestEvaluate_NoiseExcluded(t *testing.T) {
	data, labels := twoRectClusters()
	base, err := Evaluate(data, labels, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A distant noise point must not move any of the three scores.
	data = append(data, []float64{100, 100})
	labels = append(labels, Noise)
	report, err := Evaluate(data, labels, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Silhouette != base.Silhouette {
		t.Errorf("silhouette moved by noise: %f vs %f", report.Silhouette, base.Silhouette)
	}
	if report.DaviesBouldin != base.DaviesBouldin {
		t.Errorf("davies-bouldin moved by noise: %f vs %f", report.DaviesBouldin, base.DaviesBouldin)
	}
	if report.CalinskiHarabasz != base.CalinskiHarabasz {
		t.Errorf("calinski-harabasz moved by noise: %f vs %f", report.CalinskiHarabasz, base.CalinskiHarabasz)
	}
	if report.NumNoise != 1 || report.NoiseRatio != 0.2 {
		t.Errorf("expected 1 noise point (ratio 0.2), got %d (%f)", report.NumNoise, report.NoiseRatio)
	}
}

func TestEvaluate_NotComputable(t *testing.T) {
	data := [][]float64{{0, 0}, {0, 1}, {1, 0}, {1, 1}}

	cases := []struct {
		name   string
		labels []int
	}{
		{"single cluster", []int{0, 0, 0, 0}},
		{"all noise", []int{Noise, Noise, Noise, Noise}},
		{"one cluster plus noise", []int{0, 0, 0, Noise}},
		{"two singletons short of points", []int{0, Noise, Noise, 1}},
	}
	for _, c := range cases {
		report, err := Evaluate(data, c.labels, nil)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", c.name, err)
		}
		if c.name == "two singletons short of points" {
			// 2 clusters and 2 non-noise points: computable boundary case.
			if !report.Computable {
				t.Errorf("%s: expected computable", c.name)
			}
			continue
		}
		if report.Computable {
			t.Errorf("%s: expected not computable", c.name)
		}
		if !math.IsNaN(report.Silhouette) || !math.IsNaN(report.DaviesBouldin) || !math.IsNaN(report.CalinskiHarabasz) {
			t.Errorf("%s: expected NaN sentinel scores, got %+v", c.name, report)
		}
	}
}

func TestEvaluate_MetricBounds(t *testing.T) {
	data := clusteredTestData(75)
	cfg := DefaultConfig()
	cfg.Eps = 1.5
	cfg.MinSamples = 4

	result, err := Cluster(data, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	report, err := Evaluate(data, result.Labels, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !report.Computable {
		t.Skip("clustering did not produce 2 clusters; bounds not checkable")
	}

	if report.Silhouette < -1 || report.Silhouette > 1 {
		t.Errorf("silhouette %f outside [-1, 1]", report.Silhouette)
	}
	if report.DaviesBouldin < 0 {
		t.Errorf("davies-bouldin %f negative", report.DaviesBouldin)
	}
	if report.CalinskiHarabasz < 0 {
		t.Errorf("calinski-harabasz %f negative", report.CalinskiHarabasz)
	}
}

func TestEvaluate_LengthMismatch(t *testing.T) {
	_, err := Evaluate([][]float64{{0}, {1}}, []int{0}, nil)
	if !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestEvaluateWithIndex_MatchesEvaluate(t *testing.T) {
	data, labels := twoRectClusters()
	direct, err := Evaluate(data, labels, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ix := NewNeighborIndex(data, nil, 1)
	indexed, err := EvaluateWithIndex(ix, labels)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if direct.Silhouette != indexed.Silhouette || direct.DaviesBouldin != indexed.DaviesBouldin {
		t.Errorf("reports differ: %+v vs %+v", direct, indexed)
	}
}

func TestQualityReport_Bands(t *testing.T) {
	cases := []struct {
		report QualityReport
		sil    string
		db     string
	}{
		{QualityReport{Computable: true, Silhouette: 0.8, DaviesBouldin: 0.3},
			"excellent clustering (silhouette > 0.7)", "excellent cluster separation (DB < 0.5)"},
		{QualityReport{Computable: true, Silhouette: 0.6, DaviesBouldin: 0.8},
			"good clustering (silhouette > 0.5)", "good cluster separation (DB < 1.0)"},
		{QualityReport{Computable: true, Silhouette: 0.3, DaviesBouldin: 1.7},
			"acceptable clustering (silhouette > 0.25)", "moderate cluster separation (DB >= 1.0)"},
		{QualityReport{Computable: true, Silhouette: 0.1, DaviesBouldin: 2},
			"weak clustering (silhouette <= 0.25)", "moderate cluster separation (DB >= 1.0)"},
		{QualityReport{Computable: false},
			"not computable (fewer than 2 clusters)", "not computable (fewer than 2 clusters)"},
	}
	for i, c := range cases {
		if got := c.report.SilhouetteBand(); got != c.sil {
			t.Errorf("case %d: silhouette band %q, expected %q", i, got, c.sil)
		}
		if got := c.report.DaviesBouldinBand(); got != c.db {
			t.Errorf("case %d: davies-bouldin band %q, expected %q", i, got, c.db)
		}
	}

	noise := []struct {
		ratio float64
		want  string
	}{
		{0.05, "few anomalies detected (< 10%)"},
		{0.2, "moderate share of anomalies (10-30%)"},
		{0.4, "many anomalies detected (> 30%)"},
	}
	for _, c := range noise {
		r := QualityReport{NoiseRatio: c.ratio}
		if got := r.NoiseBand(); got != c.want {
			t.Errorf("ratio %f: noise band %q, expected %q", c.ratio, got, c.want)
		}
	}
}
