// Package service runs the reconciliation pipeline: build queries,
// fetch, normalize, reconcile, summarize. One linear run per request;
// no state survives the call.
package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mrankitsharma08/FQL/internal/domain/models"
	"github.com/mrankitsharma08/FQL/internal/fql"
	"github.com/mrankitsharma08/FQL/internal/logger"
	"github.com/mrankitsharma08/FQL/internal/moses"
	"github.com/mrankitsharma08/FQL/internal/normalize"
	"github.com/mrankitsharma08/FQL/internal/reconcile"
	"github.com/mrankitsharma08/FQL/internal/targets"
)

const defaultParallel = 5

// Params are the explicit inputs of one report run. There is no
// ambient state: cookie, window and dataset all travel here.
type Params struct {
	// Targets drives the report; every entry yields exactly one row.
	Targets []models.TargetEntry

	// MIDs restricts which merchants are queried. Empty means the
	// MIDs of the target dataset.
	MIDs []string

	// Start and End bound the window (whole days, inclusive). A zero
	// End means a single-day window.
	Start time.Time
	End   time.Time

	// Hour narrows every day to one hour of day, 0-23.
	Hour *int

	// Cookie is the caller's session header, forwarded verbatim.
	Cookie string

	// Mapping optionally declares the merchant/volume columns instead
	// of relying on discovery.
	Mapping normalize.Mapping
}

// ReportService produces reconciliation reports.
type ReportService interface {
	BuildReport(ctx context.Context, p Params) (*models.Report, error)
}

type reportService struct {
	fetcher  moses.Fetcher
	parallel int
}

// NewReportService wires a ReportService over the given fetcher.
// parallel caps how many per-day queries run at once (0 means 5).
func NewReportService(fetcher moses.Fetcher, parallel int) ReportService {
	if parallel <= 0 {
		parallel = defaultParallel
	}
	return &reportService{fetcher: fetcher, parallel: parallel}
}

// BuildReport runs the pipeline.
//
// One query is issued per day in the window, in parallel up to the
// configured cap. A failed day is absorbed as an empty row set and
// recorded on the report (Degraded, FetchErrors) so that an outage
// stays distinguishable from a genuine zero-volume day; it never
// fails the sibling days. Rows merge in ascending day order before
// normalization, so the merge is deterministic regardless of fetch
// completion order.
//
// Input and schema problems abort the run with an error instead.
func (s *reportService) BuildReport(ctx context.Context, p Params) (*models.Report, error) {
	if err := targets.Validate(p.Targets); err != nil {
		return nil, err
	}
	if p.Start.IsZero() {
		return nil, &targets.InputError{Msg: "report date is required"}
	}
	end := p.End
	if end.IsZero() {
		end = p.Start
	}
	if end.Before(p.Start) {
		return nil, &targets.InputError{Msg: "end date is before start date"}
	}
	if p.Hour != nil && (*p.Hour < 0 || *p.Hour > 23) {
		return nil, &targets.InputError{Msg: fmt.Sprintf("hour %d out of range [0,23]", *p.Hour)}
	}

	mids := p.MIDs
	if len(mids) == 0 {
		mids = targets.MIDs(p.Targets)
	}

	queries := fql.BuildRange(mids, p.Start, end, p.Hour)
	days := dayLabels(p.Start, end)

	logger.L().Info().
		Int("merchants", len(mids)).
		Int("days", len(queries)).
		Msg("report fetch start")

	// Per-day results keep their slot so the merge below is stable.
	rowsByDay := make([][]models.RawRow, len(queries))
	errsByDay := make([]error, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, s.parallel)

	for i, q := range queries {
		idx := i
		query := q
		sem <- struct{}{}

		g.Go(func() error {
			defer func() { <-sem }()
			rows, err := s.fetcher.FetchRows(gctx, query, p.Cookie)
			if err != nil {
				// Absorbed, not returned: one day's failure must not
				// cancel its siblings.
				logger.L().Warn().Str("day", days[idx]).Err(err).Msg("day fetch failed, degrading to empty")
				errsByDay[idx] = err
				return nil
			}
			rowsByDay[idx] = rows
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	var merged []models.RawRow
	var fetchErrs []string
	for i := range queries {
		if errsByDay[i] != nil {
			fetchErrs = append(fetchErrs, fmt.Sprintf("%s: %v", days[i], errsByDay[i]))
			continue
		}
		merged = append(merged, rowsByDay[i]...)
	}

	normalized, err := normalize.Rows(merged, p.Mapping)
	if err != nil {
		return nil, err
	}

	entries := reconcile.Merge(p.Targets, normalized)
	summary := reconcile.Summarize(entries)

	report := &models.Report{
		Window:      models.ReportWindow{Start: p.Start, End: end, Hour: p.Hour},
		Entries:     entries,
		Summary:     summary,
		Degraded:    len(fetchErrs) > 0,
		FetchErrors: fetchErrs,
	}

	logger.L().Info().
		Int("merchants", summary.MerchantCount).
		Int("zero_volume", summary.ZeroVolumeCount).
		Float64("total_actual", summary.TotalActualVolume).
		Bool("degraded", report.Degraded).
		Msg("report built")

	return report, nil
}

func dayLabels(start, end time.Time) []string {
	var labels []string
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, end.Location())
	for d := s; !d.After(e); d = d.AddDate(0, 0, 1) {
		labels = append(labels, d.Format("2006-01-02"))
	}
	return labels
}
