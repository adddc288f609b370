package validate

import (
	"fmt"
	"sort"

	"github.com/cleared-dev/mymoney/internal/table"
)

// HasDtype checks that col holds dtype values. An unknown dtype is always an
// error, regardless of opts.
func (c *Checker) HasDtype(name string, col []any, dtype string, opts Options) error {
	ok, err := CheckDtype(col, dtype)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	return c.violation(opts, &ViolationError{
		Check:   "dtype",
		Column:  name,
		Message: fmt.Sprintf("should be (%s), but is (%s)", dtype, DtypeName(col)),
	})
}

// HasNoValues checks that col contains none of forbidden.
func (c *Checker) HasNoValues(name string, col []any, forbidden []any, opts Options) error {
	f := CheckNoValues(col, forbidden)
	if f == nil {
		return nil
	}
	return c.violation(opts, &ViolationError{
		Check:   "no-values",
		Column:  name,
		Message: fmt.Sprintf("contains forbidden values at %v", f.Idxs),
		Failure: f,
	})
}

// HasValues checks col against rule.
func (c *Checker) HasValues(name string, col []any, rule Rule, opts Options) error {
	f, err := CheckValues(col, rule)
	if err != nil {
		return err
	}
	if f == nil {
		return nil
	}
	return c.violation(opts, &ViolationError{
		Check:   string(rule.Mode),
		Column:  name,
		Message: describe(rule, f),
		Failure: f,
	})
}

func describe(rule Rule, f *Failure) string {
	switch rule.Mode {
	case ModeRange:
		return fmt.Sprintf("values outside %v at %v", rule.Values, f.Idxs)
	case ModeRegex:
		return fmt.Sprintf("values not matching %q at %v", rule.Values, f.Idxs)
	case ModeNStd:
		return fmt.Sprintf("values beyond %v standard deviations at %v", rule.Values, f.Idxs)
	case ModeEqual:
		return fmt.Sprintf("not equal to %v: missing %v, unexpected at %v", rule.Values, f.ExtraVals, f.Idxs)
	case ModeSubset:
		return fmt.Sprintf("%v is not a subset of the column: missing %v", rule.Values, f.ExtraVals)
	case ModeSuperset:
		return fmt.Sprintf("%v is not a superset of the column: unexpected at %v", rule.Values, f.Idxs)
	}
	return fmt.Sprintf("failed at %v", f.Idxs)
}

// IsShape checks the row and column counts of t. -1 on either axis means
// any size.
func (c *Checker) IsShape(t *table.Table, rows, cols int, opts Options) error {
	if (rows < 0 || t.Len() == rows) && (cols < 0 || t.Width() == cols) {
		return nil
	}
	return c.violation(opts, &ViolationError{
		Check:   "shape",
		Message: fmt.Sprintf("expected (%d, %d), got (%d, %d)", rows, cols, t.Len(), t.Width()),
	})
}

// HasSchema checks column dtypes. Columns named in schema but absent from
// t are skipped.
func (c *Checker) HasSchema(t *table.Table, schema map[string]string, opts Options) error {
	for _, name := range sortedKeys(schema) {
		col, ok := t.Column(name)
		if !ok {
			continue
		}
		if err := c.HasDtype(name, col, schema[name], opts); err != nil {
			return err
		}
	}
	return nil
}

// HasDtypes is HasSchema under its other name.
func (c *Checker) HasDtypes(t *table.Table, dtypes map[string]string, opts Options) error {
	return c.HasSchema(t, dtypes, opts)
}

// HasTableValues applies rules per column and returns a validity mask with
// one entry per row of t: false for any row that failed any column's rule.
// Columns absent from t are skipped. An empty rule set yields an all-true mask.
func (c *Checker) HasTableValues(t *table.Table, rules map[string]Rule, opts Options) ([]bool, error) {
	mask := make([]bool, t.Len())
	for i := range mask {
		mask[i] = true
	}
	for _, name := range sortedKeys(rules) {
		col, ok := t.Column(name)
		if !ok {
			continue
		}
		rule := rules[name]
		f, err := CheckValues(col, rule)
		if err != nil {
			return nil, fmt.Errorf("checking %s: %w", name, err)
		}
		if f == nil {
			continue
		}
		for _, i := range f.Idxs {
			mask[i] = false
		}
		verr := &ViolationError{
			Check:   string(rule.Mode),
			Column:  name,
			Message: describe(rule, f),
			Failure: f,
		}
		if err := c.violation(opts, verr); err != nil {
			return mask, err
		}
	}
	return mask, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
