package validate

import (
	"fmt"
	"math"
	"regexp"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/mymoney/internal/table"
)

// CheckNoValues fails on every cell whose value is in forbidden.
func CheckNoValues(col []any, forbidden []any) *Failure {
	set := keySet(forbidden)
	var idxs []int
	for i, v := range col {
		if _, ok := set[key(v)]; ok {
			idxs = append(idxs, i)
		}
	}
	if len(idxs) == 0 {
		return nil
	}
	return &Failure{Idxs: idxs}
}

// CheckValues applies rule to col. It returns nil when the column passes,
// a Failure when it does not, and an error when the rule itself is unusable.
func CheckValues(col []any, rule Rule) (*Failure, error) {
	pos := make([]int, 0, len(col))
	for i, v := range col {
		if rule.IgnoreNulls && v == nil {
			continue
		}
		pos = append(pos, i)
	}

	switch rule.Mode {
	case ModeRange:
		return checkRange(col, pos, rule.Values)
	case ModeRegex:
		return checkRegex(col, pos, rule.Values)
	case ModeNStd:
		return checkNStd(col, pos, rule.Values)
	case ModeEqual, ModeSubset, ModeSuperset:
		ref, ok := rule.Values.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s needs a list of values, got %T", ErrBadRule, rule.Mode, rule.Values)
		}
		return checkSet(col, pos, ref, rule.Mode), nil
	}
	return nil, fmt.Errorf("%w: unknown mode %q", ErrBadRule, rule.Mode)
}

func checkRange(col []any, pos []int, values any) (*Failure, error) {
	bounds, ok := values.([]any)
	if !ok || len(bounds) != 2 {
		return nil, fmt.Errorf("%w: range needs exactly two values", ErrBadRule)
	}
	lo, okLo := Number(bounds[0])
	hi, okHi := Number(bounds[1])
	if !okLo || !okHi {
		return nil, fmt.Errorf("%w: range bounds must be numbers", ErrBadRule)
	}

	var idxs []int
	for _, i := range pos {
		if col[i] == nil {
			continue
		}
		f, ok := Number(col[i])
		if !ok {
			return nil, fmt.Errorf("%w: range on non-numeric value %v", ErrBadRule, col[i])
		}
		if f < lo || f > hi {
			idxs = append(idxs, i)
		}
	}
	return failureFrom(idxs), nil
}

func checkRegex(col []any, pos []int, values any) (*Failure, error) {
	pattern, ok := values.(string)
	if !ok {
		return nil, fmt.Errorf("%w: regex needs a pattern string", ErrBadRule)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRule, err)
	}

	var idxs []int
	for _, i := range pos {
		if !re.MatchString(table.Format(col[i])) {
			idxs = append(idxs, i)
		}
	}
	return failureFrom(idxs), nil
}

func checkNStd(col []any, pos []int, values any) (*Failure, error) {
	k, ok := Number(values)
	if !ok {
		return nil, fmt.Errorf("%w: n-std needs a number", ErrBadRule)
	}

	var nums []float64
	var at []int
	for _, i := range pos {
		if col[i] == nil {
			continue
		}
		f, ok := Number(col[i])
		if !ok {
			return nil, fmt.Errorf("%w: column does not contain numeric values", ErrBadRule)
		}
		nums = append(nums, f)
		at = append(at, i)
	}
	if len(nums) < 2 {
		return nil, nil
	}

	var sum float64
	for _, f := range nums {
		sum += f
	}
	mean := sum / float64(len(nums))
	var sq float64
	for _, f := range nums {
		sq += (f - mean) * (f - mean)
	}
	std := math.Sqrt(sq / float64(len(nums)-1))

	var idxs []int
	for n, f := range nums {
		if math.Abs(f-mean) > k*std {
			idxs = append(idxs, at[n])
		}
	}
	return failureFrom(idxs), nil
}

func checkSet(col []any, pos []int, ref []any, mode Mode) *Failure {
	refSet := keySet(ref)
	colSet := make(map[any]struct{}, len(pos))
	for _, i := range pos {
		colSet[key(col[i])] = struct{}{}
	}

	// Row positions whose value is not among the reference values.
	outside := func() []int {
		var idxs []int
		for _, i := range pos {
			if _, ok := refSet[key(col[i])]; !ok {
				idxs = append(idxs, i)
			}
		}
		return idxs
	}
	// Reference values that never appear in the column.
	missing := func() []any {
		var out []any
		seen := make(map[any]struct{}, len(ref))
		for _, v := range ref {
			k := key(v)
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			if _, ok := colSet[k]; !ok {
				out = append(out, v)
			}
		}
		return out
	}

	switch mode {
	case ModeEqual:
		idxs, extra := outside(), missing()
		if len(idxs) == 0 && len(extra) == 0 {
			return nil
		}
		return &Failure{Idxs: idxs, ExtraVals: extra}
	case ModeSubset:
		if extra := missing(); len(extra) > 0 {
			return &Failure{ExtraVals: extra}
		}
	case ModeSuperset:
		return failureFrom(outside())
	}
	return nil
}

func failureFrom(idxs []int) *Failure {
	if len(idxs) == 0 {
		return nil
	}
	return &Failure{Idxs: idxs}
}

// key normalizes a cell for set membership: every number becomes float64
// and times compare by instant.
func key(v any) any {
	if f, ok := Number(v); ok {
		return f
	}
	if t, ok := v.(time.Time); ok {
		return t.UTC()
	}
	return v
}

func keySet(vals []any) map[any]struct{} {
	set := make(map[any]struct{}, len(vals))
	for _, v := range vals {
		set[key(v)] = struct{}{}
	}
	return set
}

// Number converts numeric cells to float64. Booleans are not numbers.
func Number(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	case decimal.Decimal:
		return x.InexactFloat64(), true
	}
	return 0, false
}
