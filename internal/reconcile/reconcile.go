// Package reconcile merges the target dataset with normalized actual
// volumes and derives the report metrics.
package reconcile

import "github.com/mrankitsharma08/FQL/internal/domain/models"

// Merge performs a left outer join of targets against actuals, keyed
// on MID. The target side drives cardinality and order: every target
// produces exactly one entry, in input order, and actuals with no
// matching target are dropped.
//
// Duplicate MIDs on the actual side are summed. Duplicate rows for
// the same merchant and day are a data-quality signal from the
// upstream service, not something to discard; summing also matches
// how multi-day row sets collapse into one figure per merchant.
func Merge(targets []models.TargetEntry, actuals []models.NormalizedResult) []models.ReconciledEntry {
	byMID := make(map[string]float64, len(actuals))
	for _, a := range actuals {
		byMID[a.MID] += a.ActualVolume
	}

	entries := make([]models.ReconciledEntry, 0, len(targets))
	for _, t := range targets {
		entries = append(entries, models.ReconciledEntry{
			MID:          t.MID,
			TargetVolume: t.TargetVolume,
			ActualVolume: byMID[t.MID], // 0 when absent
		})
	}
	return entries
}

// Summarize computes the aggregate metrics for a reconciled set. Pure
// function of its input; nothing is cached.
func Summarize(entries []models.ReconciledEntry) models.ReportSummary {
	s := models.ReportSummary{MerchantCount: len(entries)}
	for _, e := range entries {
		if e.ActualVolume == 0 {
			s.ZeroVolumeCount++
		}
		if e.ActualVolume > 0 {
			s.ActiveCount++
		}
		s.TotalActualVolume += e.ActualVolume
	}
	return s
}
