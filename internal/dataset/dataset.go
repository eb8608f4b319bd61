// Package dataset loads and prepares the patient vitals CSV for clustering:
// column validation, cleaning (duplicate ids, missing values) and z-score
// standardization. The core clustering package only ever sees the finished
// numeric matrix.
package dataset

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/vitalscan/dbscan/internal/logger"
)

// Dataset is a loaded patient table: one id and one raw feature vector per
// record. Missing or non-numeric feature values are held as NaN until Clean
// replaces them.
type Dataset struct {
	IDs     []string
	Columns []string
	Rows    [][]float64
}

// CleanStats reports what Clean changed.
type CleanStats struct {
	DuplicatesDropped int
	ValuesFilled      int
}

// Scaler holds the per-column statistics used for standardization, so
// results can be mapped back to original units.
type Scaler struct {
	Mean []float64
	Std  []float64
}

// Load reads the CSV at path, requiring idColumn and every featureColumn to
// be present in the header. Feature cells that are empty or non-numeric are
// loaded as NaN for Clean to fill.
func Load(path, idColumn string, featureColumns []string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: opening %s: %w", path, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("dataset: reading %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("dataset: %s is empty", path)
	}

	header := records[0]
	colIndex := make(map[string]int, len(header))
	for i, name := range header {
		colIndex[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, name := range append([]string{idColumn}, featureColumns...) {
		if _, ok := colIndex[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("dataset: %s is missing columns %v (available: %v)", path, missing, header)
	}

	d := &Dataset{Columns: featureColumns}
	for _, record := range records[1:] {
		d.IDs = append(d.IDs, record[colIndex[idColumn]])
		row := make([]float64, len(featureColumns))
		for j, name := range featureColumns {
			v, err := strconv.ParseFloat(strings.TrimSpace(record[colIndex[name]]), 64)
			if err != nil {
				v = math.NaN()
			}
			row[j] = v
		}
		d.Rows = append(d.Rows, row)
	}

	logger.Logger.Infow("dataset loaded", "path", path, "records", len(d.Rows), "features", len(featureColumns))
	return d, nil
}

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.Rows) }

// Clean drops duplicate ids (keeping the first occurrence) and replaces
// missing feature values with the column median, matching how the source
// data pipeline prepares records for density clustering.
func (d *Dataset) Clean() CleanStats {
	var stats CleanStats

	seen := make(map[string]bool, len(d.IDs))
	ids := d.IDs[:0]
	rows := d.Rows[:0]
	for i, id := range d.IDs {
		if seen[id] {
			stats.DuplicatesDropped++
			continue
		}
		seen[id] = true
		ids = append(ids, id)
		rows = append(rows, d.Rows[i])
	}
	d.IDs, d.Rows = ids, rows

	for j := range d.Columns {
		median := d.columnMedian(j)
		for _, row := range d.Rows {
			if math.IsNaN(row[j]) {
				row[j] = median
				stats.ValuesFilled++
			}
		}
	}

	if stats.DuplicatesDropped > 0 {
		logger.Logger.Warnw("duplicate records dropped", "count", stats.DuplicatesDropped)
	}
	if stats.ValuesFilled > 0 {
		logger.Logger.Warnw("missing values filled with column median", "count", stats.ValuesFilled)
	}
	return stats
}

// columnMedian returns the median of column j's non-missing values,
// or 0 when the column has none.
func (d *Dataset) columnMedian(j int) float64 {
	values := make([]float64, 0, len(d.Rows))
	for _, row := range d.Rows {
		if !math.IsNaN(row[j]) {
			values = append(values, row[j])
		}
	}
	if len(values) == 0 {
		return 0
	}
	sort.Float64s(values)
	mid := len(values) / 2
	if len(values)%2 == 1 {
		return values[mid]
	}
	return (values[mid-1] + values[mid]) / 2
}

// Standardize returns the z-scored feature matrix and the scaler used.
// Columns with zero spread divide by 1, leaving them centered at 0.
// The dataset must be cleaned first; NaN values are a caller bug.
func (d *Dataset) Standardize() ([][]float64, *Scaler, error) {
	if len(d.Rows) == 0 {
		return nil, nil, fmt.Errorf("dataset: no records to standardize")
	}

	cols := len(d.Columns)
	scaler := &Scaler{
		Mean: make([]float64, cols),
		Std:  make([]float64, cols),
	}

	column := make([]float64, len(d.Rows))
	for j := 0; j < cols; j++ {
		for i, row := range d.Rows {
			column[i] = row[j]
		}
		scaler.Mean[j] = stat.Mean(column, nil)
		scaler.Std[j] = stat.PopStdDev(column, nil)
		if scaler.Std[j] == 0 {
			scaler.Std[j] = 1
		}
	}

	matrix := make([][]float64, len(d.Rows))
	for i, row := range d.Rows {
		scaled := make([]float64, cols)
		for j, v := range row {
			scaled[j] = (v - scaler.Mean[j]) / scaler.Std[j]
		}
		matrix[i] = scaled
	}

	logger.Logger.Infow("features standardized", "records", len(matrix), "features", cols)
	return matrix, scaler, nil
}
