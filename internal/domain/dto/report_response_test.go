package dto

import (
	"testing"

	"github.com/mrankitsharma08/FQL/internal/domain/models"
)

func TestFormatCrore(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "₹ 0.00 Cr"},
		{1e7, "₹ 1.00 Cr"},
		{2.5e7, "₹ 2.50 Cr"},
		{1234567, "₹ 0.12 Cr"},
	}
	for _, c := range cases {
		if got := FormatCrore(c.in); got != c.want {
			t.Fatalf("FormatCrore(%v)=%q, want %q", c.in, got, c.want)
		}
	}
}

func TestNewReportResponse(t *testing.T) {
	report := &models.Report{
		Entries: []models.ReconciledEntry{
			{MID: "A", TargetVolume: 900000010, ActualVolume: 1000.0},
			{MID: "B", TargetVolume: 500000, ActualVolume: 0},
		},
		Summary:     models.ReportSummary{MerchantCount: 2, ActiveCount: 1, ZeroVolumeCount: 1, TotalActualVolume: 1000.0},
		Degraded:    true,
		FetchErrors: []string{"2026-08-29: timeout"},
	}

	resp := NewReportResponse(report)

	if len(resp.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(resp.Rows))
	}
	if resp.Rows[0].ZeroVolume || !resp.Rows[1].ZeroVolume {
		t.Fatalf("zero-volume flags wrong: %+v", resp.Rows)
	}
	if resp.Rows[1].FormattedTPV != "₹ 0.00 Cr" {
		t.Fatalf("unexpected formatted tpv %q", resp.Rows[1].FormattedTPV)
	}
	if !resp.Degraded || len(resp.FetchErrors) != 1 {
		t.Fatalf("degraded info lost: %+v", resp)
	}
}
