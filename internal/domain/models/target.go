package models

// TargetEntry is one row of the target dataset supplied by the caller
// (or loaded into Postgres via ingest mode).
//
// Fields:
//   - MID: merchant identifier, unique within one dataset.
//   - TargetVolume: expected total processed volume for the window,
//     pre-scaled to reporting units (same unit as the normalized
//     actual volume after its /100 conversion).
//
// Entries are immutable for the lifetime of a request.
type TargetEntry struct {
	MID          string `json:"MID"`
	TargetVolume int64  `json:"Target_FTD_TPV"`
}

// RawRow is one loosely typed record from the analytics service.
// The column naming is not fixed; the volume column is discovered
// (or declared) at normalization time.
type RawRow map[string]any

// NormalizedResult is a RawRow reduced to its canonical shape.
// ActualVolume is already converted to reporting units (raw value
// divided by 100).
type NormalizedResult struct {
	MID          string
	ActualVolume float64
}
