package pipeline

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"

	"nhtsa-pipeline/internal/model"
)

// EncodeCSV serializes the feature table as CSV. Rows are sorted by make
// then model so the artifact is stable across runs with the same data.
func EncodeCSV(rows []model.FeatureRow) ([]byte, error) {
	sorted := make([]model.FeatureRow, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Make != sorted[j].Make {
			return sorted[i].Make < sorted[j].Make
		}
		return sorted[i].Model < sorted[j].Model
	})

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"make", "model", "complaints_count", "recalls_count"}); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for _, r := range sorted {
		row := []string{r.Make, r.Model, strconv.Itoa(r.ComplaintsCount), strconv.Itoa(r.RecallsCount)}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
