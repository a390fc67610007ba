// Package targets parses the target dataset: the caller-supplied list
// of merchants and their expected volumes for the window.
package targets

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mrankitsharma08/FQL/internal/domain/models"
)

// InputError reports a malformed target dataset. It aborts the
// pipeline before any remote call is made and carries enough context
// for the caller to fix the input.
type InputError struct {
	Msg string
	Err error
}

func (e *InputError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *InputError) Unwrap() error { return e.Err }

// ParseJSON decodes a JSON array of {"MID", "Target_FTD_TPV"} objects
// and validates it with Validate.
func ParseJSON(r io.Reader) ([]models.TargetEntry, error) {
	var entries []models.TargetEntry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, &InputError{Msg: "target dataset is not a valid JSON array", Err: err}
	}
	if err := Validate(entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Validate checks a decoded dataset: it must be non-empty, every MID
// non-blank, and MIDs unique within the set.
func Validate(entries []models.TargetEntry) error {
	if len(entries) == 0 {
		return &InputError{Msg: "target dataset is empty"}
	}
	seen := make(map[string]struct{}, len(entries))
	for i, e := range entries {
		mid := strings.TrimSpace(e.MID)
		if mid == "" {
			return &InputError{Msg: fmt.Sprintf("entry %d has a blank MID", i)}
		}
		if _, dup := seen[mid]; dup {
			return &InputError{Msg: fmt.Sprintf("duplicate MID %q in target dataset", mid)}
		}
		seen[mid] = struct{}{}
	}
	return nil
}

// ParseMIDs splits free-text merchant input into a clean identifier
// list. Identifiers may be separated by newlines or commas; blanks
// are dropped and surrounding whitespace trimmed.
func ParseMIDs(text string) []string {
	var mids []string
	for _, part := range strings.Split(strings.ReplaceAll(text, "\n", ","), ",") {
		if m := strings.TrimSpace(part); m != "" {
			mids = append(mids, m)
		}
	}
	return mids
}

// MIDs returns the merchant identifiers of a dataset in input order.
func MIDs(entries []models.TargetEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.MID
	}
	return out
}
