package pipeline

import (
	"nhtsa-pipeline/internal/model"
)

type vehicleKey struct {
	make, model string
}

// Aggregate collapses raw complaint and recall records into per-(make,
// model) counts and full-outer-joins the two sides: a pair present in only
// one side gets 0 for the other. Output order is unspecified; callers that
// need determinism sort themselves.
func Aggregate(complaints []model.ComplaintRecord, recalls []model.RecallRecord) []model.FeatureRow {
	complaintCounts := make(map[vehicleKey]int)
	for _, c := range complaints {
		complaintCounts[vehicleKey{c.Make, c.Model}]++
	}

	recallCounts := make(map[vehicleKey]int)
	for _, r := range recalls {
		recallCounts[vehicleKey{r.Make, r.Model}]++
	}

	rows := make([]model.FeatureRow, 0, len(complaintCounts)+len(recallCounts))
	for k, n := range complaintCounts {
		rows = append(rows, model.FeatureRow{
			Make:            k.make,
			Model:           k.model,
			ComplaintsCount: n,
			RecallsCount:    recallCounts[k],
		})
	}
	for k, n := range recallCounts {
		if _, ok := complaintCounts[k]; ok {
			continue
		}
		rows = append(rows, model.FeatureRow{
			Make:         k.make,
			Model:        k.model,
			RecallsCount: n,
		})
	}
	return rows
}
