// Package normalize maps raw analytics rows into the canonical
// {MID, actual volume} shape.
//
// The analytics service does not guarantee a fixed name for the
// aggregated volume column, so the column is either declared by the
// caller through a Mapping or discovered by naming convention: the
// single key whose name contains "sum" or "amount" (case-insensitive).
// Discovery refuses to guess: zero or multiple distinct candidates
// is a SchemaError, never a silent zero.
package normalize

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mrankitsharma08/FQL/internal/domain/models"
	"github.com/mrankitsharma08/FQL/internal/fql"
)

// rawScale converts raw volumes (a sub-unit of the reporting
// currency) into reporting units. Applied exactly once per raw row.
const rawScale = 100

// SchemaError reports that the volume column could not be identified
// in the raw row set. It aborts the pipeline: defaulting to zero here
// would be indistinguishable from a genuine zero-volume merchant.
type SchemaError struct {
	Reason     string
	Candidates []string
}

func (e *SchemaError) Error() string {
	if len(e.Candidates) > 0 {
		return fmt.Sprintf("volume column: %s (candidates: %s)", e.Reason, strings.Join(e.Candidates, ", "))
	}
	return "volume column: " + e.Reason
}

// Mapping declares which columns carry merchant identity and volume.
// Empty fields fall back to the default merchant column and to
// discovery by naming convention, respectively.
type Mapping struct {
	MerchantColumn string
	VolumeColumn   string
}

// Rows normalizes a raw row set.
//
// An empty input yields an empty output without error. Every row must
// carry the merchant column and the resolved volume column; the
// volume value is coerced to a number and divided by 100.
func Rows(rows []models.RawRow, m Mapping) ([]models.NormalizedResult, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	merchantCol := m.MerchantColumn
	if merchantCol == "" {
		merchantCol = fql.MerchantColumn
	}

	volumeCol := m.VolumeColumn
	if volumeCol == "" {
		col, err := discoverVolumeColumn(rows, merchantCol)
		if err != nil {
			return nil, err
		}
		volumeCol = col
	}

	out := make([]models.NormalizedResult, 0, len(rows))
	for i, row := range rows {
		midVal, ok := row[merchantCol]
		if !ok {
			return nil, fmt.Errorf("row %d has no merchant column %q", i, merchantCol)
		}
		mid, ok := midVal.(string)
		if !ok || mid == "" {
			return nil, fmt.Errorf("row %d: merchant column %q is not a non-empty string", i, merchantCol)
		}

		rawVal, ok := row[volumeCol]
		if !ok {
			return nil, fmt.Errorf("row %d has no volume column %q", i, volumeCol)
		}
		v, err := toFloat(rawVal)
		if err != nil {
			return nil, fmt.Errorf("row %d: volume column %q: %w", i, volumeCol, err)
		}

		out = append(out, models.NormalizedResult{
			MID:          mid,
			ActualVolume: v / rawScale,
		})
	}
	return out, nil
}

// discoverVolumeColumn scans all row keys for names containing "sum"
// or "amount". Exactly one distinct candidate must exist across the
// whole set; anything else is a SchemaError.
func discoverVolumeColumn(rows []models.RawRow, merchantCol string) (string, error) {
	seen := map[string]struct{}{}
	for _, row := range rows {
		for k := range row {
			if k == merchantCol {
				continue
			}
			lower := strings.ToLower(k)
			if strings.Contains(lower, "sum") || strings.Contains(lower, "amount") {
				seen[k] = struct{}{}
			}
		}
	}

	candidates := make([]string, 0, len(seen))
	for k := range seen {
		candidates = append(candidates, k)
	}
	sort.Strings(candidates)

	switch len(candidates) {
	case 0:
		return "", &SchemaError{Reason: "no key contains \"sum\" or \"amount\""}
	case 1:
		return candidates[0], nil
	default:
		return "", &SchemaError{Reason: "more than one plausible key", Candidates: candidates}
	}
}

func toFloat(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, fmt.Errorf("value %q is not numeric", t)
		}
		return f, nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	default:
		return 0, fmt.Errorf("value of type %T is not numeric", v)
	}
}
