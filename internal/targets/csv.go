package targets

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mrankitsharma08/FQL/internal/domain/models"
)

// expectedHeader enforces the column order of CSV target files.
// If the header doesn't match exactly (order + count), loading fails.
var expectedHeader = []string{"MID", "Target_FTD_TPV"}

// ParseCSV reads a CSV target file (header "MID,Target_FTD_TPV") and
// validates the resulting dataset the same way ParseJSON does.
//
// It fails on a mismatched header, a wrong column count, or a
// non-integer target value, reporting the offending line.
func ParseCSV(r io.Reader) ([]models.TargetEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // checked explicitly per line

	header, err := cr.Read()
	if err != nil {
		return nil, &InputError{Msg: "read CSV header", Err: err}
	}
	if len(header) != len(expectedHeader) {
		return nil, &InputError{Msg: fmt.Sprintf("invalid header length: expected %d columns, got %d", len(expectedHeader), len(header))}
	}
	for i, h := range header {
		if strings.TrimSpace(h) != expectedHeader[i] {
			return nil, &InputError{Msg: fmt.Sprintf("invalid header at col %d: expected %q, got %q", i+1, expectedHeader[i], h)}
		}
	}

	var entries []models.TargetEntry
	line := 1 // header already read
	for {
		rec, err := cr.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, &InputError{Msg: fmt.Sprintf("read line after %d", line), Err: err}
		}
		line++

		if len(rec) != len(expectedHeader) {
			return nil, &InputError{Msg: fmt.Sprintf("invalid column count on line %d: expected %d got %d", line, len(expectedHeader), len(rec))}
		}

		target, err := strconv.ParseInt(strings.TrimSpace(rec[1]), 10, 64)
		if err != nil {
			return nil, &InputError{Msg: fmt.Sprintf("line %d: invalid Target_FTD_TPV %q", line, rec[1])}
		}

		entries = append(entries, models.TargetEntry{
			MID:          strings.TrimSpace(rec[0]),
			TargetVolume: target,
		})
	}

	if err := Validate(entries); err != nil {
		return nil, err
	}
	return entries, nil
}
