// Package importer finds supported exports on disk, detects which
// institution and service produced each one, and normalizes them into
// canonical records.
package importer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFileType is returned for a path that is not a CSV file.
var ErrUnsupportedFileType = errors.New("unsupported file type")

// FileInfo describes a CSV file found by Scan.
type FileInfo struct {
	Name string
	Path string
	Size int64
	// Account is the name of the folder the file was found in, or empty for
	// files at the top level.
	Account string
}

// IsCSV reports whether path has a .csv extension, in any case.
func IsCSV(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".csv")
}

// AccountName derives the account name from a file name: everything before
// the first dot.
func AccountName(path string) string {
	base := filepath.Base(path)
	if i := strings.IndexByte(base, '.'); i >= 0 {
		return base[:i]
	}
	return base
}

// Scan returns the CSV files directly inside dir, plus the CSV files one
// level down in account folders. Deeper folders are not visited. Files come
// back in directory order.
func Scan(dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			inner, err := scanAccount(filepath.Join(dir, e.Name()), e.Name())
			if err != nil {
				return nil, err
			}
			files = append(files, inner...)
			continue
		}
		fi, ok, err := csvFile(dir, e, "")
		if err != nil {
			return nil, err
		}
		if ok {
			files = append(files, fi)
		}
	}
	return files, nil
}

func scanAccount(dir, account string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading account dir %s: %w", account, err)
	}
	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		fi, ok, err := csvFile(dir, e, account)
		if err != nil {
			return nil, err
		}
		if ok {
			files = append(files, fi)
		}
	}
	return files, nil
}

func csvFile(dir string, e os.DirEntry, account string) (FileInfo, bool, error) {
	if !IsCSV(e.Name()) {
		return FileInfo{}, false, nil
	}
	info, err := e.Info()
	if err != nil {
		return FileInfo{}, false, fmt.Errorf("stat %s: %w", e.Name(), err)
	}
	return FileInfo{
		Name:    e.Name(),
		Path:    filepath.Join(dir, e.Name()),
		Size:    info.Size(),
		Account: account,
	}, true, nil
}
