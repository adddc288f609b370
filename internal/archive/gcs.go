package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"time"

	"cloud.google.com/go/storage"
	"github.com/rs/zerolog"
	"google.golang.org/api/googleapi"

	"github.com/cleared-dev/mymoney/internal/importer"
)

// GCS uploads archives to a Cloud Storage bucket as raw/<day>/<name> and
// sanity/<day>/<name>, under an optional prefix.
type GCS struct {
	client *storage.Client
	bucket string
	prefix string
	now    func() time.Time
	log    zerolog.Logger

	// open returns a writer that only creates a new object; Close fails
	// with a precondition error when the name is taken. Swapped out in tests.
	open func(ctx context.Context, name string) io.WriteCloser
}

// NewGCS connects with application default credentials.
func NewGCS(ctx context.Context, bucket, prefix string, log zerolog.Logger) (*GCS, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	g := &GCS{client: client, bucket: bucket, prefix: prefix, now: time.Now, log: log}
	bkt := client.Bucket(bucket)
	g.open = func(ctx context.Context, name string) io.WriteCloser {
		w := bkt.Object(name).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
		w.ContentType = "text/csv"
		return w
	}
	return g, nil
}

// Close releases the storage client.
func (g *GCS) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

// upload writes a new kind/<day>/<name> object through fill. Taken names are
// skipped for the next numbered one, so an existing archive is never replaced.
func (g *GCS) upload(ctx context.Context, kind string, td *importer.TransformedData, fill func(io.Writer) error) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	day := g.now()
	for n := 1; n <= maxCopies; n++ {
		name := path.Join(g.prefix, objectPath(kind, day, td, n))
		w := g.open(ctx, name)
		if err := fill(w); err != nil {
			_ = w.Close()
			return "", fmt.Errorf("upload %s: %w", name, err)
		}
		err := w.Close()
		if objectExists(err) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("finalize upload %s: %w", name, err)
		}
		uri := fmt.Sprintf("gs://%s/%s", g.bucket, name)
		g.log.Debug().Str("to", uri).Msg("uploaded")
		return uri, nil
	}
	return "", fmt.Errorf("upload %s: %d copies of %q already exist", kind, maxCopies, Name(td))
}

func objectExists(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed
}

func (g *GCS) ArchiveRaw(ctx context.Context, td *importer.TransformedData) (string, error) {
	return g.upload(ctx, "raw", td, func(w io.Writer) error {
		f, err := os.Open(td.Source)
		if err != nil {
			return fmt.Errorf("open file %q: %w", td.Source, err)
		}
		defer f.Close()
		_, err = io.Copy(w, f)
		return err
	})
}

func (g *GCS) ArchiveSanity(ctx context.Context, td *importer.TransformedData) (string, error) {
	if td.Sanity == nil {
		return "", fmt.Errorf("%s has no sanity table", td.Source)
	}
	return g.upload(ctx, "sanity", td, td.Sanity.WriteCSV)
}
