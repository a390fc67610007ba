package dto

import (
	"fmt"

	"github.com/mrankitsharma08/FQL/internal/domain/models"
)

// croreScale converts reporting units into crores for display.
const croreScale = 1e7

// ReportRow is one merchant line of the rendered report.
//
// ZeroVolume marks rows for highlighting; FormattedTPV is the
// display form of ActualVolume.
type ReportRow struct {
	MID          string  `json:"mid" example:"SPEELONLINE"`
	TargetVolume int64   `json:"target_volume" example:"900000010"`
	ActualVolume float64 `json:"actual_volume" example:"1000.0"`
	FormattedTPV string  `json:"formatted_tpv" example:"₹ 0.00 Cr"`
	ZeroVolume   bool    `json:"zero_volume" example:"false"`
}

// ReportResponse is the JSON structure returned by POST /api/v1/report.
//
// Degraded and FetchErrors expose partial-fetch failures so callers
// can tell an outage apart from a genuine all-zero window.
type ReportResponse struct {
	Window      models.ReportWindow  `json:"window"`
	Summary     models.ReportSummary `json:"summary"`
	TotalTPV    string               `json:"total_tpv" example:"₹ 0.00 Cr"`
	Rows        []ReportRow          `json:"rows"`
	Degraded    bool                 `json:"degraded" example:"false"`
	FetchErrors []string             `json:"fetch_errors,omitempty"`
}

// FormatCrore renders a volume as a two-decimal crore figure, the
// fixed display scale of the report.
func FormatCrore(v float64) string {
	return fmt.Sprintf("₹ %.2f Cr", v/croreScale)
}

// NewReportResponse maps a pipeline report into the API shape.
func NewReportResponse(r *models.Report) ReportResponse {
	rows := make([]ReportRow, len(r.Entries))
	for i, e := range r.Entries {
		rows[i] = ReportRow{
			MID:          e.MID,
			TargetVolume: e.TargetVolume,
			ActualVolume: e.ActualVolume,
			FormattedTPV: FormatCrore(e.ActualVolume),
			ZeroVolume:   e.ActualVolume == 0,
		}
	}
	return ReportResponse{
		Window:      r.Window,
		Summary:     r.Summary,
		TotalTPV:    FormatCrore(r.Summary.TotalActualVolume),
		Rows:        rows,
		Degraded:    r.Degraded,
		FetchErrors: r.FetchErrors,
	}
}
