// Package report renders analysis results: CSV exports of labeled records,
// an anomalies-only extract, a plain-text summary and a self-contained HTML
// report. Rendering consumes the core package's outputs and never feeds back
// into it.
package report

import (
	"encoding/csv"
	"fmt"
	"html/template"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/vitalscan/dbscan"
	"github.com/vitalscan/dbscan/internal/dataset"
	"github.com/vitalscan/dbscan/internal/logger"
)

// Analysis bundles everything one clustering run produced, ready to render.
type Analysis struct {
	GeneratedAt time.Time
	InputPath   string
	Eps         float64
	MinSamples  int
	Data        *dataset.Dataset
	Labels      []int
	Report      *dbscan.QualityReport
}

// AnomalyIDs returns the ids of records labeled noise, in record order.
func AnomalyIDs(ids []string, labels []int) []string {
	var anomalies []string
	for i, l := range labels {
		if l == dbscan.Noise {
			anomalies = append(anomalies, ids[i])
		}
	}
	return anomalies
}

// WriteClustersCSV writes every record with its cluster label and anomaly
// flag appended to the raw feature columns.
func WriteClustersCSV(path string, a *Analysis) error {
	return writeLabeledCSV(path, a, false)
}

// WriteAnomaliesCSV writes only the records labeled noise.
func WriteAnomaliesCSV(path string, a *Analysis) error {
	return writeLabeledCSV(path, a, true)
}

func writeLabeledCSV(path string, a *Analysis, anomaliesOnly bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := append([]string{"patient_id"}, a.Data.Columns...)
	header = append(header, "cluster_label", "is_anomaly")
	if err := w.Write(header); err != nil {
		return fmt.Errorf("report: writing %s: %w", path, err)
	}

	written := 0
	for i, id := range a.Data.IDs {
		isAnomaly := a.Labels[i] == dbscan.Noise
		if anomaliesOnly && !isAnomaly {
			continue
		}
		record := []string{id}
		for _, v := range a.Data.Rows[i] {
			record = append(record, strconv.FormatFloat(v, 'g', -1, 64))
		}
		record = append(record, strconv.Itoa(a.Labels[i]), strconv.FormatBool(isAnomaly))
		if err := w.Write(record); err != nil {
			return fmt.Errorf("report: writing %s: %w", path, err)
		}
		written++
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("report: flushing %s: %w", path, err)
	}

	logger.Logger.Infow("csv written", "path", path, "records", written)
	return nil
}

// WriteSummary writes the plain-text run summary.
func WriteSummary(path string, a *Analysis) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: creating %s: %w", path, err)
	}
	defer f.Close()

	r := a.Report
	fmt.Fprintf(f, "Patient vitals anomaly detection - summary\n")
	fmt.Fprintf(f, "Generated: %s\n", a.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(f, "Input: %s (%d records)\n\n", a.InputPath, a.Data.Len())
	fmt.Fprintf(f, "Parameters: eps=%.4f min_samples=%d\n\n", a.Eps, a.MinSamples)
	fmt.Fprintf(f, "Clusters: %d\n", r.NumClusters)
	fmt.Fprintf(f, "Anomalies: %d (%.2f%%) - %s\n\n", r.NumNoise, 100*r.NoiseRatio, r.NoiseBand())
	fmt.Fprintf(f, "Silhouette:        %s - %s\n", formatScore(r.Silhouette), r.SilhouetteBand())
	fmt.Fprintf(f, "Davies-Bouldin:    %s - %s\n", formatScore(r.DaviesBouldin), r.DaviesBouldinBand())
	fmt.Fprintf(f, "Calinski-Harabasz: %s\n", formatScore(r.CalinskiHarabasz))

	logger.Logger.Infow("summary written", "path", path)
	return nil
}

func formatScore(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// htmlReport is the self-contained HTML report template.
var htmlReport = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Anomaly detection report</title>
<style>
body { font-family: sans-serif; margin: 2em; color: #222; }
table { border-collapse: collapse; margin: 1em 0; }
th, td { border: 1px solid #bbb; padding: 0.4em 0.8em; text-align: left; }
th { background: #f0f0f0; }
.anomaly { color: #b00020; font-weight: bold; }
</style>
</head>
<body>
<h1>Patient vitals anomaly detection</h1>
<p>Generated {{.GeneratedAt.Format "2006-01-02 15:04:05"}} from <code>{{.InputPath}}</code>
({{.Data.Len}} records), eps={{printf "%.4f" .Eps}}, min_samples={{.MinSamples}}.</p>

<h2>Clustering quality</h2>
<table>
<tr><th>Metric</th><th>Value</th><th>Interpretation</th></tr>
<tr><td>Clusters</td><td>{{.Report.NumClusters}}</td><td></td></tr>
<tr><td>Anomalies</td><td>{{.Report.NumNoise}} ({{printf "%.1f" .NoisePercent}}%)</td><td>{{.Report.NoiseBand}}</td></tr>
<tr><td>Silhouette</td><td>{{.Silhouette}}</td><td>{{.Report.SilhouetteBand}}</td></tr>
<tr><td>Davies-Bouldin</td><td>{{.DaviesBouldin}}</td><td>{{.Report.DaviesBouldinBand}}</td></tr>
<tr><td>Calinski-Harabasz</td><td>{{.CalinskiHarabasz}}</td><td></td></tr>
</table>

<h2>Flagged records ({{len .Anomalies}})</h2>
{{if .Anomalies}}
<table>
<tr><th>Patient ID</th></tr>
{{range .Anomalies}}<tr><td class="anomaly">{{.}}</td></tr>
{{end}}
</table>
{{else}}
<p>No records were flagged as anomalies.</p>
{{end}}
</body>
</html>
`))

// htmlContext adapts an Analysis for the template, pre-formatting values
// the template language is awkward with.
type htmlContext struct {
	*Analysis
	NoisePercent     float64
	Silhouette       string
	DaviesBouldin    string
	CalinskiHarabasz string
	Anomalies        []string
}

// WriteHTML writes the self-contained HTML report.
func WriteHTML(path string, a *Analysis) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: creating %s: %w", path, err)
	}
	defer f.Close()

	ctx := htmlContext{
		Analysis:         a,
		NoisePercent:     100 * a.Report.NoiseRatio,
		Silhouette:       formatScore(a.Report.Silhouette),
		DaviesBouldin:    formatScore(a.Report.DaviesBouldin),
		CalinskiHarabasz: formatScore(a.Report.CalinskiHarabasz),
		Anomalies:        AnomalyIDs(a.Data.IDs, a.Labels),
	}
	if err := htmlReport.Execute(f, ctx); err != nil {
		return fmt.Errorf("report: rendering %s: %w", path, err)
	}

	logger.Logger.Infow("html report written", "path", path)
	return nil
}

// WriteAll writes the standard file set into dir and returns the paths.
func WriteAll(dir string, a *Analysis) (map[string]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("report: creating %s: %w", dir, err)
	}

	paths := map[string]string{
		"clusters":  filepath.Join(dir, "patients_with_clusters.csv"),
		"anomalies": filepath.Join(dir, "patients_anomalies.csv"),
		"summary":   filepath.Join(dir, "summary_report.txt"),
		"html":      filepath.Join(dir, "report.html"),
	}
	if err := WriteClustersCSV(paths["clusters"], a); err != nil {
		return nil, err
	}
	if err := WriteAnomaliesCSV(paths["anomalies"], a); err != nil {
		return nil, err
	}
	if err := WriteSummary(paths["summary"], a); err != nil {
		return nil, err
	}
	if err := WriteHTML(paths["html"], a); err != nil {
		return nil, err
	}
	return paths, nil
}
