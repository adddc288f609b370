// Package archive keeps a copy of every ingested export and its sanity
// table, grouped by ingest day.
package archive

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/cleared-dev/mymoney/internal/importer"
)

const dayFormat = "2006-01-02"

// Archiver stores the raw export and the sanity table of a normalized file.
// Both methods return where the copy ended up.
type Archiver interface {
	ArchiveRaw(ctx context.Context, td *importer.TransformedData) (string, error)
	ArchiveSanity(ctx context.Context, td *importer.TransformedData) (string, error)
}

// Name returns the archive file name for td:
// "<institution> - <service> - <account> (<last date>).csv".
// The date reads "no date" when no record carries one.
func Name(td *importer.TransformedData) string {
	last := "no date"
	if d := td.LastDate(); !d.IsZero() {
		last = d.Format(dayFormat)
	}
	account := td.Account
	if account == "" {
		account = "default"
	}
	name := fmt.Sprintf("%s - %s - %s (%s).csv", td.Institution, td.Service, account, last)
	return strings.ReplaceAll(name, "/", "_")
}

// maxCopies bounds the numbered variants tried for one archive name.
const maxCopies = 1000

// numbered returns name for n == 1 and "<stem> [n].csv" after that.
func numbered(name string, n int) string {
	if n <= 1 {
		return name
	}
	ext := path.Ext(name)
	return fmt.Sprintf("%s [%d]%s", strings.TrimSuffix(name, ext), n, ext)
}

// objectPath joins kind ("raw" or "sanity"), the day folder and the n-th
// variant of the name.
func objectPath(kind string, day time.Time, td *importer.TransformedData, n int) string {
	return path.Join(kind, day.Format(dayFormat), numbered(Name(td), n))
}

// Multi runs several archivers in order and stops at the first error.
// A Local archiver that removes sources must come last.
type Multi []Archiver

func (m Multi) ArchiveRaw(ctx context.Context, td *importer.TransformedData) (string, error) {
	var where []string
	for _, a := range m {
		w, err := a.ArchiveRaw(ctx, td)
		if err != nil {
			return strings.Join(where, ", "), err
		}
		where = append(where, w)
	}
	return strings.Join(where, ", "), nil
}

func (m Multi) ArchiveSanity(ctx context.Context, td *importer.TransformedData) (string, error) {
	var where []string
	for _, a := range m {
		w, err := a.ArchiveSanity(ctx, td)
		if err != nil {
			return strings.Join(where, ", "), err
		}
		where = append(where, w)
	}
	return strings.Join(where, ", "), nil
}
