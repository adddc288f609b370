package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/cleared-dev/mymoney/internal/importer"
	"github.com/cleared-dev/mymoney/internal/store"
)

// Local archives under the data root: raw exports in data/raw/<day>/ and
// sanity tables in data/sanity/<day>/.
type Local struct {
	root       string
	keepSource bool
	now        func() time.Time
	log        zerolog.Logger
}

// NewLocal returns a Local archiver rooted at root. Unless keepSource is
// set, ArchiveRaw moves the export instead of copying it.
func NewLocal(root string, keepSource bool, log zerolog.Logger) *Local {
	return &Local{root: root, keepSource: keepSource, now: time.Now, log: log}
}

// create makes the archive file for td under dir/<day>. An existing file is
// never truncated: the next numbered name is used instead.
func (l *Local) create(dir string, td *importer.TransformedData) (*os.File, error) {
	day := filepath.Join(l.root, dir, l.now().Format(dayFormat))
	if err := os.MkdirAll(day, 0o755); err != nil {
		return nil, fmt.Errorf("creating archive dir: %w", err)
	}
	for n := 1; n <= maxCopies; n++ {
		p := filepath.Join(day, numbered(Name(td), n))
		f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("creating %s: %w", p, err)
		}
		return f, nil
	}
	return nil, fmt.Errorf("archive %s: %d copies of %q already exist", day, maxCopies, Name(td))
}

// ArchiveRaw copies td.Source into the raw archive.
func (l *Local) ArchiveRaw(_ context.Context, td *importer.TransformedData) (string, error) {
	in, err := os.Open(td.Source)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", td.Source, err)
	}
	defer in.Close()

	out, err := l.create(store.RawDir, td)
	if err != nil {
		return "", err
	}
	dst := out.Name()
	if err := finish(out, func(w io.Writer) error {
		_, err := io.Copy(w, in)
		return err
	}); err != nil {
		return "", err
	}
	if !l.keepSource {
		in.Close()
		if err := os.Remove(td.Source); err != nil {
			return dst, fmt.Errorf("removing source %s: %w", td.Source, err)
		}
	}
	l.log.Debug().Str("source", td.Source).Str("to", dst).Bool("kept", l.keepSource).Msg("raw archived")
	return dst, nil
}

// ArchiveSanity writes td.Sanity as CSV into the sanity archive.
func (l *Local) ArchiveSanity(_ context.Context, td *importer.TransformedData) (string, error) {
	if td.Sanity == nil {
		return "", fmt.Errorf("%s has no sanity table", td.Source)
	}
	out, err := l.create(store.SanityDir, td)
	if err != nil {
		return "", err
	}
	dst := out.Name()
	if err := finish(out, td.Sanity.WriteCSV); err != nil {
		return "", err
	}
	l.log.Debug().Str("to", dst).Msg("sanity archived")
	return dst, nil
}

// finish fills and closes f. A partial file is removed on failure.
func finish(f *os.File, fill func(io.Writer) error) error {
	if err := fill(f); err != nil {
		f.Close()
		os.Remove(f.Name())
		return fmt.Errorf("writing %s: %w", f.Name(), err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return fmt.Errorf("closing %s: %w", f.Name(), err)
	}
	return nil
}
