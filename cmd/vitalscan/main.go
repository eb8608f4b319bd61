// Command vitalscan detects anomalous patient vital-sign records by density
// clustering: records that fall outside every dense cluster are flagged.
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/vitalscan/dbscan"
	"github.com/vitalscan/dbscan/internal/config"
	"github.com/vitalscan/dbscan/internal/dataset"
	"github.com/vitalscan/dbscan/internal/logger"
	"github.com/vitalscan/dbscan/internal/report"
)

var (
	flagConfig     string
	flagInput      string
	flagOutputDir  string
	flagVerbose    bool
	flagEps        float64
	flagMinSamples int
	flagK          int
)

var rootCmd = &cobra.Command{
	Use:   "vitalscan",
	Short: "Density-based anomaly detection for patient vital signs",
	Long: `vitalscan groups similar patient vital-sign records into density-based
clusters (DBSCAN) and flags records outside every dense region as anomalies.

Commands:
  analyze   - cluster the dataset and write CSV/HTML reports
  optimize  - grid-search (eps, min_samples) by silhouette, then analyze
  kdist     - export the k-distance curve and a suggested eps`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logger.Initialize(flagVerbose)
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Cluster the dataset and write reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("eps") {
			cfg.Eps = flagEps
		}
		if cmd.Flags().Changed("min-samples") {
			cfg.MinSamples = flagMinSamples
		}

		ds, matrix, err := prepare(cfg)
		if err != nil {
			return err
		}

		eps := cfg.Eps
		if eps == 0 {
			curve, err := dbscan.ComputeKDistanceCurve(matrix, cfg.MinSamples, nil, 0)
			if err != nil {
				return err
			}
			eps = curve.Percentile(cfg.KDistancePercentile)
			logger.Logger.Infow("eps derived from k-distance curve",
				"k", cfg.MinSamples, "percentile", cfg.KDistancePercentile, "eps", eps)
		}

		return runAnalysis(cfg, ds, matrix, eps, cfg.MinSamples)
	},
}

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Grid-search clustering parameters, then analyze with the best",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ds, matrix, err := prepare(cfg)
		if err != nil {
			return err
		}

		curve, err := dbscan.ComputeKDistanceCurve(matrix, cfg.MinSamples, nil, 0)
		if err != nil {
			return err
		}
		epsCandidates, minSamplesCandidates := dbscan.DefaultGrid(curve)
		logger.Logger.Infow("running grid search",
			"eps_candidates", len(epsCandidates), "min_samples_candidates", len(minSamplesCandidates))

		best, err := dbscan.Optimize(matrix, dbscan.OptimizerConfig{
			EpsCandidates:        epsCandidates,
			MinSamplesCandidates: minSamplesCandidates,
			MaxNoiseRatio:        cfg.MaxNoiseRatio,
		})
		if err != nil {
			return err
		}
		logger.Logger.Infow("best configuration",
			"eps", best.Eps, "min_samples", best.MinSamples,
			"silhouette", best.Report.Silhouette, "clusters", best.Report.NumClusters)

		return runAnalysis(cfg, ds, matrix, best.Eps, best.MinSamples)
	},
}

var kdistCmd = &cobra.Command{
	Use:   "kdist",
	Short: "Export the sorted k-distance curve and a suggested eps",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		_, matrix, err := prepare(cfg)
		if err != nil {
			return err
		}

		k := cfg.MinSamples
		if cmd.Flags().Changed("k") {
			k = flagK
		}
		curve, err := dbscan.ComputeKDistanceCurve(matrix, k, nil, 0)
		if err != nil {
			return err
		}

		path := filepath.Join(flagOutputDir, "k_distance_curve.csv")
		if err := writeCurveCSV(path, curve); err != nil {
			return err
		}

		logger.Logger.Infow("k-distance curve exported",
			"k", k, "path", path,
			"suggested_eps", curve.SuggestEps(),
			"min", curve.Distances[0], "max", curve.Distances[len(curve.Distances)-1])
		fmt.Printf("suggested eps (k=%d): %.6f\n", k, curve.SuggestEps())
		return nil
	},
}

// loadConfig resolves the effective configuration: the YAML file if given,
// defaults otherwise, with the output directory flag taking precedence.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if flagConfig != "" {
		var err error
		if cfg, err = config.Load(flagConfig); err != nil {
			return nil, err
		}
	}
	if flagOutputDir != "" {
		cfg.OutputDir = flagOutputDir
	} else {
		flagOutputDir = cfg.OutputDir
	}
	return cfg, nil
}

// prepare runs the load -> clean -> standardize pipeline.
func prepare(cfg *config.Config) (*dataset.Dataset, [][]float64, error) {
	ds, err := dataset.Load(flagInput, cfg.PatientIDColumn, cfg.FeatureColumns)
	if err != nil {
		return nil, nil, err
	}
	ds.Clean()
	matrix, _, err := ds.Standardize()
	if err != nil {
		return nil, nil, err
	}
	return ds, matrix, nil
}

// runAnalysis clusters, evaluates and writes the report file set.
func runAnalysis(cfg *config.Config, ds *dataset.Dataset, matrix [][]float64, eps float64, minSamples int) error {
	clusterCfg := dbscan.DefaultConfig()
	clusterCfg.Eps = eps
	clusterCfg.MinSamples = minSamples

	result, err := dbscan.Cluster(matrix, clusterCfg)
	if err != nil {
		return err
	}
	qual, err := dbscan.Evaluate(matrix, result.Labels, nil)
	if err != nil {
		return err
	}

	logger.Logger.Infow("clustering finished",
		"eps", eps, "min_samples", minSamples,
		"clusters", result.NumClusters,
		"anomalies", result.NumNoise,
		"noise_ratio", result.NoiseRatio)
	logger.Logger.Infow("clustering quality",
		"silhouette", qual.Silhouette,
		"davies_bouldin", qual.DaviesBouldin,
		"calinski_harabasz", qual.CalinskiHarabasz,
		"interpretation", qual.SilhouetteBand())

	paths, err := report.WriteAll(cfg.OutputDir, &report.Analysis{
		GeneratedAt: time.Now(),
		InputPath:   flagInput,
		Eps:         eps,
		MinSamples:  minSamples,
		Data:        ds,
		Labels:      result.Labels,
		Report:      qual,
	})
	if err != nil {
		return err
	}
	for _, kind := range []string{"clusters", "anomalies", "summary", "html"} {
		logger.Logger.Infow("report written", "kind", kind, "path", paths[kind])
	}
	return nil
}

// writeCurveCSV exports the curve for external plotting tools.
func writeCurveCSV(path string, curve *dbscan.KDistanceCurve) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"rank", "k_distance"}); err != nil {
		return err
	}
	for i, d := range curve.Distances {
		if err := w.Write([]string{strconv.Itoa(i), strconv.FormatFloat(d, 'g', -1, 64)}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "path to YAML configuration file")
	rootCmd.PersistentFlags().StringVarP(&flagInput, "input", "i", "data/patients.csv", "path to the patient CSV file")
	rootCmd.PersistentFlags().StringVarP(&flagOutputDir, "output-dir", "o", "", "directory for generated reports")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	analyzeCmd.Flags().Float64Var(&flagEps, "eps", 0, "neighborhood radius (0 = derive from k-distance curve)")
	analyzeCmd.Flags().IntVar(&flagMinSamples, "min-samples", 0, "minimum neighborhood size for a core point")
	kdistCmd.Flags().IntVar(&flagK, "k", 0, "neighbor rank for the curve (default: min_samples)")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(optimizeCmd)
	rootCmd.AddCommand(kdistCmd)
}

func main() {
	defer logger.Sync()
	if err := rootCmd.Execute(); err != nil {
		logger.Logger.Errorw("run failed", "error", err)
		os.Exit(1)
	}
}
