package importer

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/cleared-dev/mymoney/internal/model"
	"github.com/cleared-dev/mymoney/internal/table"
	"github.com/cleared-dev/mymoney/internal/validate"
)

// RawRecord is one export read with the signature it matched.
type RawRecord struct {
	Source      string
	Institution string
	Service     model.ServiceKind
	Account     string
	Signature   *Signature
	Table       *table.Table
}

// Detector identifies exports by trying every known signature.
type Detector struct {
	sigs *Signatures
	log  zerolog.Logger
}

// NewDetector creates a Detector over sigs.
func NewDetector(sigs *Signatures, log zerolog.Logger) *Detector {
	return &Detector{sigs: sigs, log: log}
}

// Detect reads the CSV at path with each signature in turn and returns the
// first that fits. A file no signature fits returns (nil, nil). The account
// defaults to the file name when account is empty.
func (d *Detector) Detect(path, account string) (*RawRecord, error) {
	if !IsCSV(path) {
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFileType)
	}
	if account == "" {
		account = AccountName(path)
	}

	for _, sig := range d.sigs.All() {
		t, err := Match(sig, path)
		if err != nil {
			d.log.Debug().Str("file", path).Str("signature", sig.Name()).Err(err).Msg("no match")
			continue
		}
		d.log.Info().Str("file", path).Str("signature", sig.Name()).Str("account", account).Msg("detected")
		return newRawRecord(path, account, sig, t), nil
	}

	d.log.Warn().Str("file", path).Msg("not found")
	return nil, nil
}

// DetectAs reads path as the given institution and service, skipping
// detection. It is the way in for exports that share a layout with another
// service, such as Wells Fargo credit card statements.
func (d *Detector) DetectAs(path, institution string, service model.ServiceKind, account string) (*RawRecord, error) {
	if !IsCSV(path) {
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFileType)
	}
	if account == "" {
		account = AccountName(path)
	}

	sig := d.sigs.Find(institution, service)
	if sig == nil {
		// A service that shares its layout with a sibling reads with the
		// sibling's options.
		for _, s := range d.sigs.All() {
			if s.Institution == institution {
				forced := *s
				forced.Service = service
				forced.Out = ""
				sig = &forced
				break
			}
		}
	}
	if sig == nil {
		return nil, fmt.Errorf("no signature for %s/%s", institution, service)
	}

	t, err := Match(sig, path)
	if err != nil {
		return nil, fmt.Errorf("reading %s as %s: %w", path, sig.Name(), err)
	}
	return newRawRecord(path, account, sig, t), nil
}

// DetectFolder runs Detect over every file Scan finds in dir. Files that no
// signature fits are skipped.
func (d *Detector) DetectFolder(dir string) ([]*RawRecord, error) {
	files, err := Scan(dir)
	if err != nil {
		return nil, err
	}

	var out []*RawRecord
	for _, f := range files {
		rec, err := d.Detect(f.Path, f.Account)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			out = append(out, rec)
		}
	}
	return out, nil
}

func newRawRecord(path, account string, sig *Signature, t *table.Table) *RawRecord {
	return &RawRecord{
		Source:      path,
		Institution: sig.Institution,
		Service:     sig.Service,
		Account:     account,
		Signature:   sig,
		Table:       t,
	}
}

// Match reads path with sig's options and checks that the result has sig's
// columns and passes its content checks.
func Match(sig *Signature, path string) (*table.Table, error) {
	t, err := table.ReadFile(path, sig.Read)
	if err != nil {
		return nil, err
	}
	if err := validate.CheckColumns(t.Columns(), sig.Columns, sig.Match); err != nil {
		return nil, err
	}
	for _, name := range sortedNames(sig.Checks) {
		col, ok := t.Column(name)
		if !ok {
			return nil, fmt.Errorf("content check: no column %q", name)
		}
		f, err := validate.CheckValues(col, sig.Checks[name])
		if err != nil {
			return nil, fmt.Errorf("content check %s: %w", name, err)
		}
		if f != nil {
			return nil, fmt.Errorf("content check %s failed at rows %v", name, f.Idxs)
		}
	}
	return t, nil
}
