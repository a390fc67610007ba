package api

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrankitsharma08/FQL/internal/domain/dto"
	"github.com/mrankitsharma08/FQL/internal/domain/models"
	"github.com/mrankitsharma08/FQL/internal/normalize"
	"github.com/mrankitsharma08/FQL/internal/service"
	"github.com/mrankitsharma08/FQL/internal/storage"
	"github.com/mrankitsharma08/FQL/internal/targets"
)

// Handler provides HTTP handlers for the reconciliation report
// endpoint.
//
// Responsibilities:
//   - Validate the report request body and headers
//   - Resolve the target dataset (inline or stored)
//   - Run the pipeline through the service layer
//   - Map the error taxonomy to HTTP status codes
type Handler struct {
	svc  service.ReportService
	repo storage.TargetsRepository // nil when Postgres is not configured
}

// NewHandler constructs a Handler. repo may be nil; then every
// request must carry inline targets.
func NewHandler(svc service.ReportService, repo storage.TargetsRepository) *Handler {
	return &Handler{svc: svc, repo: repo}
}

// ReportRequest is the JSON body of POST /api/v1/report.
//
// Either MerchantIDs or MIDText restricts the queried merchants;
// both empty means the MIDs of the target dataset. Targets may be
// omitted when a dataset has been loaded into Postgres via ingest
// mode. The session cookie travels in the Cookie header, not here.
type ReportRequest struct {
	MerchantIDs []string             `json:"merchant_ids" example:"SPEELONLINE"`
	MIDText     string               `json:"mids" example:"SPEELONLINE, JASYATRATRAINONLINE"`
	Targets     []models.TargetEntry `json:"targets"`
	Date        string               `json:"date" example:"2026-08-29"`
	EndDate     string               `json:"end_date" example:"2026-08-30"`
	Hour        *int                 `json:"hour" example:"13"`

	// Optional explicit column mapping; discovery by naming
	// convention is the fallback.
	MerchantColumn string `json:"merchant_column"`
	VolumeColumn   string `json:"volume_column"`
}

// BuildReport handles POST /api/v1/report requests.
//
// BuildReport godoc
// @Summary      Build a TPV reconciliation report
// @Description  Reconciles merchant volume targets against measured volume for a day (or day range), optionally narrowed to one hour
// @Tags         report
// @Accept       json
// @Produce      json
// @Param        request  body      ReportRequest  true  "Report parameters"
// @Param        format   query     string         false "Set to csv for CSV output"
// @Param        Cookie   header    string         true  "Analytics session cookie"
// @Success      200      {object}  dto.ReportResponse     "Success"
// @Failure      400      {object}  dto.ErrorResponse      "Malformed input"
// @Failure      502      {object}  dto.ErrorResponse      "Upstream schema undiscoverable"
// @Failure      500      {object}  dto.ErrorResponse      "Internal Error"
// @Router       /api/v1/report [post]
func (h *Handler) BuildReport(c *gin.Context) {
	var req ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("invalid request body", err))
		return
	}

	start, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("invalid date format, expected YYYY-MM-DD", err))
		return
	}
	var end time.Time
	if req.EndDate != "" {
		end, err = time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse("invalid end_date format, expected YYYY-MM-DD", err))
			return
		}
	}

	entries, err := h.resolveTargets(req.Targets)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("cannot resolve target dataset", err))
		return
	}

	mids := req.MerchantIDs
	if len(mids) == 0 && req.MIDText != "" {
		mids = targets.ParseMIDs(req.MIDText)
	}

	params := service.Params{
		Targets: entries,
		MIDs:    mids,
		Start:   start,
		End:     end,
		Hour:    req.Hour,
		Cookie:  c.GetHeader("Cookie"),
		Mapping: normalize.Mapping{
			MerchantColumn: req.MerchantColumn,
			VolumeColumn:   req.VolumeColumn,
		},
	}

	report, err := h.svc.BuildReport(c.Request.Context(), params)
	if err != nil {
		status, msg := classify(err)
		c.JSON(status, dto.NewErrorResponse(msg, err))
		return
	}

	if c.Query("format") == "csv" {
		writeCSV(c, report)
		return
	}
	c.JSON(http.StatusOK, dto.NewReportResponse(report))
}

// resolveTargets prefers inline targets; with none it falls back to
// the dataset stored in Postgres.
func (h *Handler) resolveTargets(inline []models.TargetEntry) ([]models.TargetEntry, error) {
	if len(inline) > 0 {
		return inline, nil
	}
	if h.repo == nil {
		return nil, fmt.Errorf("no inline targets and no target store configured")
	}
	stored, err := h.repo.ListTargets()
	if err != nil {
		return nil, fmt.Errorf("load stored targets: %w", err)
	}
	if len(stored) == 0 {
		return nil, fmt.Errorf("no inline targets and no stored dataset; run ingest first")
	}
	return stored, nil
}

// classify maps the pipeline's error taxonomy onto HTTP statuses:
// input problems are the caller's to fix, schema problems come from
// upstream, everything else is generic.
func classify(err error) (int, string) {
	var ie *targets.InputError
	if errors.As(err, &ie) {
		return http.StatusBadRequest, "invalid report input"
	}
	var se *normalize.SchemaError
	if errors.As(err, &se) {
		return http.StatusBadGateway, "analytics response schema not recognized"
	}
	return http.StatusInternalServerError, "failed to build report"
}

// writeCSV streams the report rows as a CSV attachment.
func writeCSV(c *gin.Context, report *models.Report) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="tpv_report.csv"`)
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"MID", "Target_FTD_TPV", "Actual_TPV", "Formatted_TPV", "Zero_Volume"})
	for _, e := range report.Entries {
		_ = w.Write([]string{
			e.MID,
			strconv.FormatInt(e.TargetVolume, 10),
			strconv.FormatFloat(e.ActualVolume, 'f', -1, 64),
			dto.FormatCrore(e.ActualVolume),
			strconv.FormatBool(e.ActualVolume == 0),
		})
	}
	w.Flush()
}
