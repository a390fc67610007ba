package main

//
//  @title           Merchant TPV reconciliation API
//  @version         1.0
//  @description     Reconciles merchant volume targets against measured volume from the analytics query service.
//  @host            localhost:8080
//  @BasePath        /
//  @schemes         http
//
//  @tag.name        report
//  @tag.description Endpoints for building reconciliation reports
//
//  @tag.name        health
//  @tag.description Liveness and readiness probes

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/mrankitsharma08/FQL/config"
	_ "github.com/mrankitsharma08/FQL/docs" // swagger docs
	"github.com/mrankitsharma08/FQL/internal/app"
	"github.com/mrankitsharma08/FQL/internal/domain/dto"
	"github.com/mrankitsharma08/FQL/internal/domain/models"
	"github.com/mrankitsharma08/FQL/internal/ingestion"
	"github.com/mrankitsharma08/FQL/internal/logger"
	"github.com/mrankitsharma08/FQL/internal/moses"
	"github.com/mrankitsharma08/FQL/internal/service"
	"github.com/mrankitsharma08/FQL/internal/targets"
)

// startServer initializes and starts the HTTP server in a separate goroutine.
func startServer(router http.Handler, port string) *http.Server {
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.L().Info().Str("port", port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal().Err(err).Msg("server failed to start")
		}
	}()

	return server
}

// gracefulShutdown terminates the HTTP server and runs cleanup when
// SIGINT/SIGTERM arrives.
func gracefulShutdown(ctx context.Context, server *http.Server, cleanup func()) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	logger.L().Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L().Fatal().Err(err).Msg("server forced to shutdown")
	}

	cleanup()
	logger.L().Info().Msg("server exited gracefully")
}

// main is the entry point.
//
// Modes (selected via --mode flag):
//   - serve:  start the REST API.
//   - ingest: load a targets file (.json/.csv) into Postgres.
//   - report: run one reconciliation from the command line and print
//     the table, no server involved.
func main() {
	ctx := context.Background()

	config.LoadConfig()
	logger.Init()

	mode := flag.String("mode", "serve", "Mode: serve, ingest or report")
	port := flag.String("port", config.AppConfig.Server.Port, "Port for serve mode")
	targetsPath := flag.String("targets", "", "Targets file (.json or .csv), for ingest and report modes")
	mids := flag.String("mids", "", "Merchant IDs, comma-separated (report mode; default: target MIDs)")
	date := flag.String("date", "", "Report date YYYY-MM-DD (report mode)")
	endDate := flag.String("end", "", "Optional end date YYYY-MM-DD (report mode)")
	hour := flag.Int("hour", -1, "Optional hour of day 0-23 (report mode)")
	cookieFile := flag.String("cookie-file", "", "File holding the analytics session cookie (report mode)")
	flag.Parse()

	switch *mode {
	case "serve":
		logger.L().Info().Msg("starting API server")

		router, cleanup, err := app.InitializeApp()
		if err != nil {
			logger.L().Fatal().Err(err).Msg("app init error")
		}

		server := startServer(router, *port)
		gracefulShutdown(ctx, server, cleanup)

	case "ingest":
		if *targetsPath == "" {
			logger.L().Fatal().Msg("ingest mode requires -targets")
		}
		db, err := app.InitPostgres(config.AppConfig)
		if err != nil {
			logger.L().Fatal().Err(err).Msg("db connect error")
		}
		defer func() { _ = db.Close() }()

		n, err := ingestion.LoadFile(*targetsPath, db)
		if err != nil {
			logger.L().Fatal().Err(err).Msg("ingest failed")
		}
		logger.L().Info().Int("rows", n).Msg("ingest completed successfully")

	case "report":
		report, err := runReportMode(ctx, *targetsPath, *mids, *date, *endDate, *hour, *cookieFile)
		if err != nil {
			logger.L().Fatal().Err(err).Msg("report failed")
		}
		printReport(os.Stdout, report)

	default:
		logger.L().Fatal().Str("mode", *mode).Msg("unknown mode")
	}
}

// runReportMode assembles pipeline params from CLI flags and runs one
// report against the configured analytics endpoint.
func runReportMode(ctx context.Context, targetsPath, mids, date, endDate string, hour int, cookieFile string) (*models.Report, error) {
	if targetsPath == "" {
		return nil, fmt.Errorf("report mode requires -targets")
	}
	if date == "" {
		return nil, fmt.Errorf("report mode requires -date")
	}

	entries, err := ingestion.ParseFile(targetsPath)
	if err != nil {
		return nil, err
	}

	start, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, fmt.Errorf("invalid -date: %w", err)
	}
	var end time.Time
	if endDate != "" {
		end, err = time.Parse("2006-01-02", endDate)
		if err != nil {
			return nil, fmt.Errorf("invalid -end: %w", err)
		}
	}

	params := service.Params{
		Targets: entries,
		MIDs:    targets.ParseMIDs(mids),
		Start:   start,
		End:     end,
	}
	if hour >= 0 {
		params.Hour = &hour
	}
	if cookieFile != "" {
		raw, err := os.ReadFile(cookieFile)
		if err != nil {
			return nil, fmt.Errorf("read cookie file: %w", err)
		}
		params.Cookie = strings.TrimSpace(string(raw))
	}

	cfg := config.AppConfig
	fetcher := moses.NewClient(cfg.Moses.URL, cfg.Moses.Timeout)
	svc := service.NewReportService(fetcher, cfg.Moses.Parallel)

	return svc.BuildReport(ctx, params)
}

// printReport renders the reconciled table and summary to w.
func printReport(w io.Writer, report *models.Report) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MID\tTARGET\tACTUAL\tTPV\tZERO")
	for _, e := range report.Entries {
		fmt.Fprintf(tw, "%s\t%d\t%.2f\t%s\t%v\n",
			e.MID, e.TargetVolume, e.ActualVolume, dto.FormatCrore(e.ActualVolume), e.ActualVolume == 0)
	}
	_ = tw.Flush()

	s := report.Summary
	fmt.Fprintf(w, "\nmerchants=%d active=%d zero=%d total=%s\n",
		s.MerchantCount, s.ActiveCount, s.ZeroVolumeCount, dto.FormatCrore(s.TotalActualVolume))
	if report.Degraded {
		fmt.Fprintf(w, "WARNING: report degraded, some days failed to fetch:\n")
		for _, fe := range report.FetchErrors {
			fmt.Fprintf(w, "  - %s\n", fe)
		}
	}
}
