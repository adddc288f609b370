package validate

import (
	"fmt"
	"strings"
)

// MatchMode is how a table's column names are compared with expected names.
type MatchMode string

const (
	// MatchEqual requires the same set of names.
	MatchEqual MatchMode = "equal"
	// MatchSubset requires every table column to be expected.
	MatchSubset MatchMode = "subset"
	// MatchSuperset requires every expected column to be present.
	MatchSuperset MatchMode = "superset"
)

// DifferentColumnNameError reports a column set that does not satisfy the
// requested relation.
type DifferentColumnNameError struct {
	Mode    MatchMode
	Missing []string // expected but absent
	Extra   []string // present but not expected
}

func (e *DifferentColumnNameError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Extra) > 0 {
		parts = append(parts, "unexpected "+strings.Join(e.Extra, ", "))
	}
	return fmt.Sprintf("columns do not match (%s): %s", e.Mode, strings.Join(parts, "; "))
}

// CheckColumns compares the column names of a table with expected.
// Order does not matter.
func CheckColumns(cols, expected []string, mode MatchMode) error {
	have := make(map[string]bool, len(cols))
	for _, c := range cols {
		have[c] = true
	}
	want := make(map[string]bool, len(expected))
	for _, c := range expected {
		want[c] = true
	}

	var missing, extra []string
	for _, c := range expected {
		if !have[c] {
			missing = append(missing, c)
		}
	}
	for _, c := range cols {
		if !want[c] {
			extra = append(extra, c)
		}
	}

	var bad bool
	switch mode {
	case MatchEqual, "":
		bad = len(missing) > 0 || len(extra) > 0
	case MatchSubset:
		bad = len(extra) > 0
		missing = nil
	case MatchSuperset:
		bad = len(missing) > 0
		extra = nil
	default:
		return fmt.Errorf("unknown column match mode %q", mode)
	}
	if !bad {
		return nil
	}
	if mode == "" {
		mode = MatchEqual
	}
	return &DifferentColumnNameError{Mode: mode, Missing: missing, Extra: extra}
}
