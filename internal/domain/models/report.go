package models

import "time"

// ReconciledEntry joins one target against its measured actual volume.
// Exactly one entry exists per distinct MID in the target input, in
// input order. ActualVolume is 0 when the MID was absent from the
// normalized result set.
type ReconciledEntry struct {
	MID          string  `json:"mid"`
	TargetVolume int64   `json:"target_volume"`
	ActualVolume float64 `json:"actual_volume"`
}

// ReportSummary carries the aggregate metrics derived from a
// reconciled set. It is recomputed fresh per request and never
// persisted.
//
// ZeroVolumeCount uses exact equality with 0: volumes are
// integer-scaled after the /100 conversion, so no epsilon is needed.
type ReportSummary struct {
	MerchantCount     int     `json:"merchant_count"`
	ActiveCount       int     `json:"active_count"`
	ZeroVolumeCount   int     `json:"zero_volume_count"`
	TotalActualVolume float64 `json:"total_actual_volume"`
}

// ReportWindow is the time window a report covers: one or more whole
// days, optionally narrowed to a single hour of day.
type ReportWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Hour  *int      `json:"hour,omitempty"`
}

// Report is the full outcome of one pipeline run.
//
// Degraded is true when at least one per-day fetch failed and was
// absorbed as an empty row set. The entries still show 0 for the
// affected merchants, but the flag (and FetchErrors) let the caller
// tell a degraded report apart from a genuine all-zero day.
type Report struct {
	Window      ReportWindow      `json:"window"`
	Entries     []ReconciledEntry `json:"entries"`
	Summary     ReportSummary     `json:"summary"`
	Degraded    bool              `json:"degraded"`
	FetchErrors []string          `json:"fetch_errors,omitempty"`
}
