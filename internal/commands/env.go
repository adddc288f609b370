package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/cleared-dev/mymoney/internal/archive"
	"github.com/cleared-dev/mymoney/internal/config"
	"github.com/cleared-dev/mymoney/internal/logging"
	"github.com/cleared-dev/mymoney/internal/store"
	"github.com/cleared-dev/mymoney/internal/store/sheetsstore"
	"github.com/cleared-dev/mymoney/internal/store/sqlitestore"
)

// env is the resolved data root with its configuration and logger.
type env struct {
	root string
	cfg  *config.Config
	log  zerolog.Logger
}

func loadEnv(flags *rootFlags) (*env, error) {
	root, err := filepath.Abs(config.DataDir(flags.dataDir))
	if err != nil {
		return nil, fmt.Errorf("resolving data root: %w", err)
	}
	cfg, err := config.LoadRoot(root)
	if err != nil {
		return nil, err
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	level, ok := logging.ParseLevel(cfg.LogLevel)
	if !ok {
		return nil, fmt.Errorf("unknown log level %q", cfg.LogLevel)
	}
	return &env{root: root, cfg: cfg, log: logging.New(level)}, nil
}

// openStore opens the configured backend. The returned close function is
// never nil.
func (e *env) openStore(ctx context.Context) (store.Store, func() error, error) {
	noop := func() error { return nil }
	kind, err := store.ParseKind(e.cfg.Storage.Backend)
	if err != nil {
		return nil, noop, err
	}

	switch kind {
	case store.KindSQLite:
		path := e.cfg.Storage.SQLitePath
		if !filepath.IsAbs(path) {
			path = filepath.Join(e.root, path)
		}
		s, err := sqlitestore.Open(path, e.log)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	case store.KindSheets:
		sc := e.cfg.Storage.Sheets
		s, err := sheetsstore.New(ctx, sc.Credentials, sc.SpreadsheetID, e.log)
		if err != nil {
			return nil, noop, err
		}
		return s, noop, nil
	default:
		return store.NewFlat(e.root), noop, nil
	}
}

// archiver returns the local archiver, preceded by a GCS archiver when a
// bucket is configured.
func (e *env) archiver(ctx context.Context) (archive.Archiver, func() error, error) {
	local := archive.NewLocal(e.root, e.cfg.Archive.KeepSource, e.log)
	if e.cfg.Archive.GCSBucket == "" {
		return local, func() error { return nil }, nil
	}
	gcs, err := archive.NewGCS(ctx, e.cfg.Archive.GCSBucket, e.cfg.Archive.GCSPrefix, e.log)
	if err != nil {
		return nil, func() error { return nil }, err
	}
	return archive.Multi{gcs, local}, gcs.Close, nil
}
