package retention

import (
	"errors"
	"time"
)

// ErrInvalidMaxAge is returned when a sweep is requested without a positive age
var ErrInvalidMaxAge = errors.New("max age must be positive")

// StoredFile represents a delivered file sitting in the output directory
type StoredFile struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
}

// ExpiredAt reports whether the file is older than maxAge at time now
func (f StoredFile) ExpiredAt(now time.Time, maxAge time.Duration) bool {
	return f.ModTime.Before(now.Add(-maxAge))
}

// Store lists and removes delivered files.
// This is a port that can be implemented by different infrastructure adapters
type Store interface {
	// List returns the stored files, oldest first
	List() ([]StoredFile, error)
	Remove(name string) error
}

// SweepResult contains information about files deleted during a sweep
type SweepResult struct {
	RemovedFiles []RemovedFile
	FreedBytes   int64
	Kept         int
}

// RemovedFile represents a file that was deleted
type RemovedFile struct {
	Name string
	Size int64
}
