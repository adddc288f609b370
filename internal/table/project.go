package table

import "strings"

// DerivedPrefix marks adapter-derived columns in a sanity table.
const DerivedPrefix = "_new_"

// Project keeps only the derived columns of t and strips their prefix.
// It looks at column names only. A table without derived columns is
// already canonical and is returned as a copy, so Project is idempotent.
func Project(t *Table) *Table {
	var keep []string
	for _, c := range t.cols {
		if strings.HasPrefix(c, DerivedPrefix) {
			keep = append(keep, c)
		}
	}
	if len(keep) == 0 {
		return t.Clone()
	}
	out, _ := t.Select(keep...)
	for j, c := range out.cols {
		name := strings.TrimPrefix(c, DerivedPrefix)
		delete(out.index, c)
		out.cols[j] = name
		out.index[name] = j
	}
	return out
}

// Sanity joins the raw table with the derived columns, prefixing each
// derived column name. Both tables must have the same number of rows.
func Sanity(raw, derived *Table) (*Table, error) {
	out := raw.Clone()
	for _, c := range derived.cols {
		vals, _ := derived.Column(c)
		if err := out.AddColumn(DerivedPrefix+c, vals); err != nil {
			return nil, err
		}
	}
	return out, nil
}
