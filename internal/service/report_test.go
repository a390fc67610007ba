package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mrankitsharma08/FQL/internal/domain/models"
	"github.com/mrankitsharma08/FQL/internal/normalize"
	"github.com/mrankitsharma08/FQL/internal/targets"
)

// stubFetcher returns canned rows or errors keyed by a substring of
// the query (the day predicate), so per-day behavior can differ.
type stubFetcher struct {
	mu      sync.Mutex
	rows    []models.RawRow
	err     error
	failOn  string // fail only queries containing this substring
	queries []string
}

func (s *stubFetcher) FetchRows(_ context.Context, query, _ string) ([]models.RawRow, error) {
	s.mu.Lock()
	s.queries = append(s.queries, query)
	s.mu.Unlock()

	if s.failOn != "" && strings.Contains(query, s.failOn) {
		return nil, errors.New("simulated outage")
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.rows, nil
}

var (
	day       = time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	twoTarget = []models.TargetEntry{
		{MID: "A", TargetVolume: 900000010},
		{MID: "B", TargetVolume: 500000},
	}
)

func TestBuildReport_ReferenceVector(t *testing.T) {
	f := &stubFetcher{rows: []models.RawRow{
		{"eventData.merchantId": "A", "sum(eventData.amount)": "100000"},
	}}
	svc := NewReportService(f, 0)

	report, err := svc.BuildReport(context.Background(), Params{Targets: twoTarget, Start: day})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(report.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(report.Entries))
	}
	if report.Entries[0].MID != "A" || report.Entries[0].ActualVolume != 1000.0 {
		t.Fatalf("entry A wrong: %+v", report.Entries[0])
	}
	if report.Entries[1].MID != "B" || report.Entries[1].ActualVolume != 0 {
		t.Fatalf("entry B wrong: %+v", report.Entries[1])
	}
	s := report.Summary
	if s.MerchantCount != 2 || s.ZeroVolumeCount != 1 || s.TotalActualVolume != 1000.0 {
		t.Fatalf("summary wrong: %+v", s)
	}
	if report.Degraded {
		t.Fatalf("report must not be degraded on clean fetch")
	}
}

func TestBuildReport_FetchFailureDegradesButIsFlagged(t *testing.T) {
	f := &stubFetcher{err: errors.New("connection refused")}
	svc := NewReportService(f, 0)

	report, err := svc.BuildReport(context.Background(), Params{Targets: twoTarget, Start: day})
	if err != nil {
		t.Fatalf("fetch failure must not fail the run: %v", err)
	}

	s := report.Summary
	if s.ZeroVolumeCount != s.MerchantCount || s.TotalActualVolume != 0 {
		t.Fatalf("degraded report must read all-zero: %+v", s)
	}
	// The distinction from a genuine zero day lives here.
	if !report.Degraded || len(report.FetchErrors) != 1 {
		t.Fatalf("degraded signal missing: degraded=%v errs=%v", report.Degraded, report.FetchErrors)
	}
	if !strings.Contains(report.FetchErrors[0], "2026-08-29") {
		t.Fatalf("fetch error must name the day: %v", report.FetchErrors[0])
	}
}

func TestBuildReport_PerDayFailureIsolation(t *testing.T) {
	// Three-day window; only the middle day fails.
	f := &stubFetcher{
		rows: []models.RawRow{
			{"eventData.merchantId": "A", "sum(eventData.amount)": "100000"},
		},
		failOn: "date.dayOfMonth = 30",
	}
	svc := NewReportService(f, 2)

	report, err := svc.BuildReport(context.Background(), Params{
		Targets: twoTarget,
		Start:   day,
		End:     day.AddDate(0, 0, 2),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Two healthy days of 1000.0 each, summed per MID.
	if got := report.Entries[0].ActualVolume; got != 2000.0 {
		t.Fatalf("expected surviving days to sum to 2000.0, got %v", got)
	}
	if !report.Degraded || len(report.FetchErrors) != 1 {
		t.Fatalf("expected exactly one degraded day: %v", report.FetchErrors)
	}
	if len(f.queries) != 3 {
		t.Fatalf("expected 3 per-day queries, got %d", len(f.queries))
	}
}

func TestBuildReport_SchemaErrorAborts(t *testing.T) {
	f := &stubFetcher{rows: []models.RawRow{
		{"eventData.merchantId": "A", "total": "100000"},
	}}
	svc := NewReportService(f, 0)

	_, err := svc.BuildReport(context.Background(), Params{Targets: twoTarget, Start: day})
	var se *normalize.SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
}

func TestBuildReport_InputValidation(t *testing.T) {
	f := &stubFetcher{}
	svc := NewReportService(f, 0)
	bad := -1
	okHour := 23

	cases := []struct {
		name string
		p    Params
	}{
		{"no targets", Params{Start: day}},
		{"no date", Params{Targets: twoTarget}},
		{"end before start", Params{Targets: twoTarget, Start: day, End: day.AddDate(0, 0, -1)}},
		{"hour out of range", Params{Targets: twoTarget, Start: day, Hour: &bad}},
		{"duplicate target MID", Params{
			Targets: []models.TargetEntry{{MID: "A"}, {MID: "A"}},
			Start:   day, Hour: &okHour,
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.BuildReport(context.Background(), tc.p)
			var ie *targets.InputError
			if !errors.As(err, &ie) {
				t.Fatalf("expected InputError, got %v", err)
			}
		})
	}
	if len(f.queries) != 0 {
		t.Fatalf("invalid input must not reach the fetcher")
	}
}

func TestBuildReport_ExplicitMIDsOverrideTargets(t *testing.T) {
	f := &stubFetcher{rows: []models.RawRow{}}
	svc := NewReportService(f, 0)

	_, err := svc.BuildReport(context.Background(), Params{
		Targets: twoTarget,
		MIDs:    []string{"ONLY_THIS_ONE"},
		Start:   day,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.queries) != 1 || !strings.Contains(f.queries[0], "'ONLY_THIS_ONE'") {
		t.Fatalf("explicit MIDs not used: %v", f.queries)
	}
	if strings.Contains(f.queries[0], "'A'") {
		t.Fatalf("target MIDs must not leak into an explicit MID query")
	}
}
