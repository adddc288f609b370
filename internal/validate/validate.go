// Package validate checks columns and tables against declarative rules.
//
// Pure checks (CheckDtype, CheckNoValues, CheckValues) report what is wrong
// and never log. The Checker wraps them with the caller's failure policy:
// log a warning, return a *ViolationError, both, or neither.
package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// ErrUnsupportedDtype is returned for a dtype name the engine does not know.
var ErrUnsupportedDtype = errors.New("unsupported dtype")

// ErrBadRule is returned when a rule's values do not fit its mode.
var ErrBadRule = errors.New("invalid rule")

// Options is the failure policy of a single check call. The two flags are
// independent.
type Options struct {
	Log   bool
	Raise bool
}

// LogOnly logs violations and lets the caller carry on.
var LogOnly = Options{Log: true}

// Failure describes a failed value check.
type Failure struct {
	// Idxs are the offending row positions, ascending.
	Idxs []int
	// ExtraVals are reference values missing from the column (equal, subset).
	ExtraVals []any
}

// ViolationError is returned by a Checker when a check fails and Raise is set.
type ViolationError struct {
	Check   string
	Column  string
	Message string
	Failure *Failure
}

func (e *ViolationError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("%s check failed: %s", e.Check, e.Message)
	}
	return fmt.Sprintf("%s check failed for %s: %s", e.Check, e.Column, e.Message)
}

// Mode selects how CheckValues compares a column against a rule's values.
type Mode string

const (
	ModeRange    Mode = "range"
	ModeRegex    Mode = "regex"
	ModeNStd     Mode = "n-std"
	ModeEqual    Mode = "equal"
	ModeSubset   Mode = "subset"
	ModeSuperset Mode = "superset"
)

// ParseMode accepts the mode names used in rule files, including the
// "n_std" and "n std" spellings.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "range":
		return ModeRange, nil
	case "regex":
		return ModeRegex, nil
	case "n-std", "n_std", "n std":
		return ModeNStd, nil
	case "equal":
		return ModeEqual, nil
	case "subset":
		return ModeSubset, nil
	case "superset":
		return ModeSuperset, nil
	}
	return "", fmt.Errorf("%w: unknown mode %q", ErrBadRule, s)
}

// UnmarshalText lets modes be written with any accepted spelling.
func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Rule is a value check for one column.
type Rule struct {
	// Values depends on Mode: [low, high] for range, a pattern for regex,
	// k for n-std, and a list of reference values for the set modes.
	Values any  `yaml:"values"`
	Mode   Mode `yaml:"mode"`
	// IgnoreNulls drops null cells before checking.
	IgnoreNulls bool `yaml:"ignore_nulls,omitempty"`
}

// Checker applies checks under a failure policy and logs through log.
type Checker struct {
	log zerolog.Logger
}

// NewChecker returns a Checker that logs violations to log.
func NewChecker(log zerolog.Logger) *Checker {
	return &Checker{log: log}
}

// violation applies the failure policy.
func (c *Checker) violation(opts Options, v *ViolationError) error {
	if opts.Log {
		ev := c.log.Warn().Str("check", v.Check)
		if v.Column != "" {
			ev = ev.Str("column", v.Column)
		}
		if v.Failure != nil && len(v.Failure.Idxs) > 0 {
			ev = ev.Ints("idxs", v.Failure.Idxs)
		}
		ev.Msg(v.Message)
	}
	if opts.Raise {
		return v
	}
	return nil
}
