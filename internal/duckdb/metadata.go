package duckdb

import (
	"errors"
	"io/fs"
	"os"
	"time"
)

// FileFingerprint holds stat-based identity for a file.
type FileFingerprint struct {
	Path    string
	Size    int64 // -1 for a missing optional file
	ModTime time.Time
}

// StatFile creates a FileFingerprint from an on-disk file.
func StatFile(path string) (FileFingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// StatFiles fingerprints a list of source files. The first file is
// required; later files may be absent and are recorded with Size -1, so
// adding one later invalidates caches built without it.
func StatFiles(paths ...string) ([]FileFingerprint, error) {
	fps := make([]FileFingerprint, 0, len(paths))
	for i, p := range paths {
		fp, err := StatFile(p)
		if err != nil {
			if i == 0 || !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
			fp = FileFingerprint{Path: p, Size: -1}
		}
		fps = append(fps, fp)
	}
	return fps, nil
}
